package email

import (
	"context"
	"errors"
	"testing"

	"genba_backend/internal/events"
	"genba_backend/platform/logger"

	"github.com/google/uuid"
)

type recordingSender struct {
	NoopSender
	to      string
	number  string
	period  string
	total   int64
	calls   int
	sendErr error
}

func (r *recordingSender) SendInvoiceIssuedEmail(_ context.Context, toEmail, invoiceNumber, periodLabel string, total int64, _ ...Attachment) error {
	r.calls++
	r.to = toEmail
	r.number = invoiceNumber
	r.period = periodLabel
	r.total = total
	return r.sendErr
}

func TestInvoiceSubscriber_SendsOnInvoiceIssued(t *testing.T) {
	log := logger.New("development")
	bus := events.NewInMemoryBus(log)
	sender := &recordingSender{}
	NewInvoiceSubscriber(bus, sender, "office@example.com", log)

	err := bus.PublishSync(context.Background(), events.InvoiceIssued{
		BaseEvent:     events.NewBaseEvent(),
		InvoiceID:     uuid.New(),
		ProjectID:     uuid.New(),
		InvoiceNumber: "INV-2024-07-0001",
		PeriodFrom:    "2024-07-01",
		PeriodTo:      "2024-07-31",
		Total:         99000,
	})
	if err != nil {
		t.Fatalf("publish failed: %v", err)
	}
	if sender.calls != 1 {
		t.Fatalf("expected one send, got %d", sender.calls)
	}
	if sender.to != "office@example.com" {
		t.Fatalf("unexpected recipient %q", sender.to)
	}
	if sender.number != "INV-2024-07-0001" || sender.total != 99000 {
		t.Fatalf("unexpected payload: %+v", sender)
	}
	if sender.period != "2024-07-01〜2024-07-31" {
		t.Fatalf("unexpected period label %q", sender.period)
	}
}

func TestInvoiceSubscriber_SendFailureIsSwallowed(t *testing.T) {
	log := logger.New("development")
	bus := events.NewInMemoryBus(log)
	sender := &recordingSender{sendErr: errors.New("smtp down")}
	NewInvoiceSubscriber(bus, sender, "office@example.com", log)

	err := bus.PublishSync(context.Background(), events.InvoiceIssued{
		BaseEvent:     events.NewBaseEvent(),
		InvoiceNumber: "INV-2024-07-0002",
	})
	if err != nil {
		t.Fatalf("send failure must not propagate: %v", err)
	}
}

func TestFormatCurrencyJPY(t *testing.T) {
	if got := formatCurrencyJPY(1234567); got != "¥1,234,567" {
		t.Fatalf("unexpected formatting: %q", got)
	}
}
