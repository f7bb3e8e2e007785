package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/example/smartblinds/internal/apperr"
	"github.com/example/smartblinds/internal/payment"
)

type recordingGateway struct {
	calls  []payment.CreateParams
	result *payment.Intent
	err    error
}

func (g *recordingGateway) CreateIntent(ctx context.Context, p payment.CreateParams) (*payment.Intent, error) {
	g.calls = append(g.calls, p)
	if g.err != nil {
		return nil, g.err
	}
	return g.result, nil
}

func (g *recordingGateway) GetIntent(ctx context.Context, id string) (*payment.Intent, error) {
	return g.result, nil
}

func (g *recordingGateway) ConfirmIntent(ctx context.Context, id, pm string) (*payment.Intent, error) {
	return g.result, nil
}

func TestCreateIntentRejectsNonPositiveAmount(t *testing.T) {
	gw := &recordingGateway{}
	svc := NewPaymentService(gw, "eur", zap.NewNop())

	for _, amount := range []string{"0", "-1", "-49.99"} {
		_, err := svc.CreateIntent(context.Background(), CreateIntentRequest{
			Amount: decimal.RequireFromString(amount),
		})
		if !apperr.IsValidation(err) {
			t.Errorf("amount %s: expected validation error, got %v", amount, err)
		}
	}
	if len(gw.calls) != 0 {
		t.Errorf("gateway called %d times for invalid amounts, want 0", len(gw.calls))
	}
}

func TestCreateIntentMinorUnitsAndCurrency(t *testing.T) {
	gw := &recordingGateway{result: &payment.Intent{ID: "pi_1", ClientSecret: "cs_1"}}
	svc := NewPaymentService(gw, "usd", zap.NewNop())

	result, err := svc.CreateIntent(context.Background(), CreateIntentRequest{
		Amount:   decimal.RequireFromString("49.99"),
		Currency: "EUR",
		Customer: CustomerSummary{Name: "Ana Horvat", Email: "ana@example.com"},
		Items:    []IntentItem{{ProductName: "Roller Blind", Quantity: 2}},
	})
	if err != nil {
		t.Fatalf("CreateIntent: %v", err)
	}
	if result.PaymentIntentID != "pi_1" || result.ClientSecret != "cs_1" {
		t.Errorf("unexpected result: %+v", result)
	}

	if len(gw.calls) != 1 {
		t.Fatalf("gateway calls = %d, want 1", len(gw.calls))
	}
	call := gw.calls[0]
	if call.AmountMinor != 4999 {
		t.Errorf("amount minor = %d, want 4999", call.AmountMinor)
	}
	if call.Currency != "eur" {
		t.Errorf("currency = %q, want lower-cased eur", call.Currency)
	}
	if call.Metadata["customer_email"] != "ana@example.com" {
		t.Errorf("metadata customer_email = %q", call.Metadata["customer_email"])
	}
	if call.Metadata["item_count"] != "1" {
		t.Errorf("metadata item_count = %q, want 1", call.Metadata["item_count"])
	}
}

func TestCreateIntentDefaultsCurrency(t *testing.T) {
	gw := &recordingGateway{result: &payment.Intent{ID: "pi_1"}}
	svc := NewPaymentService(gw, "eur", zap.NewNop())

	if _, err := svc.CreateIntent(context.Background(), CreateIntentRequest{
		Amount: decimal.RequireFromString("10.00"),
	}); err != nil {
		t.Fatalf("CreateIntent: %v", err)
	}
	if gw.calls[0].Currency != "eur" {
		t.Errorf("currency = %q, want configured default eur", gw.calls[0].Currency)
	}
}

func TestCreateIntentPassesGatewayErrorThrough(t *testing.T) {
	gw := &recordingGateway{err: apperr.Gateway("Your card was declined.", nil)}
	svc := NewPaymentService(gw, "eur", zap.NewNop())

	_, err := svc.CreateIntent(context.Background(), CreateIntentRequest{
		Amount: decimal.RequireFromString("10.00"),
	})
	if err == nil {
		t.Fatal("expected gateway error")
	}
	if apperr.UserMessage(err) != "Your card was declined." {
		t.Errorf("message = %q, want the gateway's own message", apperr.UserMessage(err))
	}
}

func TestCreateIntentWithoutGatewayIsConfigurationError(t *testing.T) {
	svc := NewPaymentService(nil, "eur", zap.NewNop())

	_, err := svc.CreateIntent(context.Background(), CreateIntentRequest{
		Amount: decimal.RequireFromString("10.00"),
	})
	if apperr.KindOf(err) != apperr.KindConfiguration {
		t.Errorf("expected configuration error, got %v", err)
	}
}
