// Package email sends transactional notifications over SMTP. Templates are
// embedded; delivery failures are the caller's problem to log, never to
// propagate into the committing transaction.
package email

import "context"

// Attachment represents a file attachment for an email.
type Attachment struct {
	Content  []byte
	FileName string
	MIMEType string
}

// Sender is the delivery boundary. Subscribers depend on this, not on a
// concrete transport, so a disabled deployment can plug in NoopSender.
type Sender interface {
	SendInvoiceIssuedEmail(ctx context.Context, toEmail, invoiceNumber, periodLabel string, total int64, attachments ...Attachment) error
	SendCustomEmail(ctx context.Context, toEmail, subject, htmlContent string) error
}

// NoopSender discards every email. Used when SMTP is not configured.
type NoopSender struct{}

func (NoopSender) SendInvoiceIssuedEmail(ctx context.Context, toEmail, invoiceNumber, periodLabel string, total int64, attachments ...Attachment) error {
	return nil
}

func (NoopSender) SendCustomEmail(ctx context.Context, toEmail, subject, htmlContent string) error {
	return nil
}

var (
	_ Sender = (*SMTPSender)(nil)
	_ Sender = NoopSender{}
)
