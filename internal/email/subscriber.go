package email

import (
	"context"
	"fmt"

	"genba_backend/internal/events"
	"genba_backend/platform/logger"
)

// InvoiceSubscriber emails the office mailbox whenever an invoice is issued.
// Delivery is best-effort: a failed send is logged and the event is done.
type InvoiceSubscriber struct {
	sender Sender
	to     string
	log    *logger.Logger
}

// NewInvoiceSubscriber creates the subscriber and registers it on the bus.
func NewInvoiceSubscriber(bus events.Bus, sender Sender, to string, log *logger.Logger) *InvoiceSubscriber {
	sub := &InvoiceSubscriber{sender: sender, to: to, log: log}
	bus.Subscribe(events.InvoiceIssued{}.EventName(), sub)
	return sub
}

// Handle sends the invoice-issued notification.
func (s *InvoiceSubscriber) Handle(ctx context.Context, event events.Event) error {
	issued, ok := event.(events.InvoiceIssued)
	if !ok {
		return fmt.Errorf("unexpected event type %T for %s", event, event.EventName())
	}

	periodLabel := issued.PeriodFrom + "〜" + issued.PeriodTo
	if err := s.sender.SendInvoiceIssuedEmail(ctx, s.to, issued.InvoiceNumber, periodLabel, issued.Total); err != nil {
		s.log.Error("invoice issued email failed",
			"invoiceNumber", issued.InvoiceNumber,
			"error", err,
		)
	}
	return nil
}

var _ events.Handler = (*InvoiceSubscriber)(nil)
