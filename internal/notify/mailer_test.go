package notify

import (
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"
	gomail "gopkg.in/gomail.v2"

	"github.com/example/smartblinds/internal/config"
	"github.com/example/smartblinds/internal/datamodels/order"
)

type fakeSender struct {
	sent []*gomail.Message
	err  error
}

func (f *fakeSender) DialAndSend(m ...*gomail.Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, m...)
	return nil
}

func sampleOrder() *order.Order {
	return &order.Order{
		OrderRef:      "ORD-1001",
		CustomerName:  "Ana Horvat",
		CustomerEmail: "ana@example.com",
		TotalCents:    12000,
		Currency:      "eur",
		Status:        order.StatusReceived,
		Items: []order.OrderItem{
			{ProductName: "Roller Blind", Quantity: 2, UnitCents: 4999, SubtotalCents: 9998,
				Options: `{"color":"graphite"}`},
			{ProductName: "Sensor Hub", Quantity: 1, UnitCents: 2002, SubtotalCents: 2002},
		},
	}
}

func TestMailerSkippedWhenUnconfigured(t *testing.T) {
	m := NewMailer(&config.SMTPConfig{}, zap.NewNop())
	if got := m.SendOrderReceived(sampleOrder()); got != ResultSkipped {
		t.Errorf("result = %s, want skipped", got)
	}
}

func TestMailerSendsOrderReceived(t *testing.T) {
	s := &fakeSender{}
	m := newMailerWithSender(s, "shop@smartblinds.test", zap.NewNop())

	if got := m.SendOrderReceived(sampleOrder()); got != ResultSent {
		t.Fatalf("result = %s, want sent", got)
	}
	if len(s.sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(s.sent))
	}
	to := s.sent[0].GetHeader("To")
	if len(to) != 1 || to[0] != "ana@example.com" {
		t.Errorf("To = %v", to)
	}
}

func TestMailerReportsTransportFailure(t *testing.T) {
	s := &fakeSender{err: errors.New("smtp connect refused")}
	m := newMailerWithSender(s, "shop@smartblinds.test", zap.NewNop())

	if got := m.SendStatusChanged(sampleOrder(), order.StatusReceived, order.StatusShipped); got != ResultFailed {
		t.Errorf("result = %s, want failed", got)
	}
}

func TestRenderOrderReceived(t *testing.T) {
	_, body, err := renderOrderReceived(sampleOrder())
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	for _, want := range []string{
		"ORD-1001",
		"Ana Horvat",
		"Roller Blind",
		"€99.98", // per-line total, not unit price
		"€120.00",
		"graphite",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q", want)
		}
	}
}

func TestRenderStatusChangedPresentation(t *testing.T) {
	cases := []struct {
		status order.Status
		color  string
	}{
		{order.StatusProcessing, "#f59e0b"},
		{order.StatusShipped, "#22c55e"},
		{order.StatusCompleted, "#10b981"},
		{order.StatusCancelled, "#ef4444"},
		{order.StatusReceived, "#3b82f6"}, // generic fallback
	}
	for _, tc := range cases {
		t.Run(string(tc.status), func(t *testing.T) {
			subject, body, err := renderStatusChanged(sampleOrder(), order.StatusReceived, tc.status)
			if err != nil {
				t.Fatalf("render: %v", err)
			}
			if !strings.Contains(body, tc.color) {
				t.Errorf("body missing status color %s", tc.color)
			}
			if !strings.Contains(subject, string(tc.status)) {
				t.Errorf("subject %q missing status", subject)
			}
		})
	}
}

func TestMalformedOptionsDoNotBreakRendering(t *testing.T) {
	o := sampleOrder()
	o.Items[0].Options = `{"color":`
	if _, _, err := renderOrderReceived(o); err != nil {
		t.Fatalf("render with malformed options: %v", err)
	}
}
