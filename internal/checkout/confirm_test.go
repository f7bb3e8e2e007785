package checkout

import (
	"context"
	"testing"

	"github.com/example/smartblinds/internal/apperr"
	"github.com/example/smartblinds/internal/payment"
)

type fakeGateway struct {
	confirmStatus string
	confirmErr    error
	confirms      int
}

func (g *fakeGateway) CreateIntent(ctx context.Context, p payment.CreateParams) (*payment.Intent, error) {
	return &payment.Intent{ID: "pi_test", ClientSecret: "pi_test_secret"}, nil
}

func (g *fakeGateway) GetIntent(ctx context.Context, id string) (*payment.Intent, error) {
	return &payment.Intent{ID: id, Status: g.confirmStatus}, nil
}

func (g *fakeGateway) ConfirmIntent(ctx context.Context, id, pm string) (*payment.Intent, error) {
	g.confirms++
	if g.confirmErr != nil {
		return nil, g.confirmErr
	}
	return &payment.Intent{ID: id, Status: g.confirmStatus}, nil
}

func TestCardConfirmationSucceeds(t *testing.T) {
	gw := &fakeGateway{confirmStatus: payment.IntentSucceeded}
	c := NewCardConfirmation(gw, "pi_1")

	if c.State() != StateIdle {
		t.Fatalf("initial state = %s, want idle", c.State())
	}

	intent, err := c.Submit(context.Background(), "pm_card_visa")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if intent.Status != payment.IntentSucceeded {
		t.Errorf("intent status = %s", intent.Status)
	}
	if c.State() != StateSucceeded {
		t.Errorf("state = %s, want succeeded", c.State())
	}

	// A succeeded confirmation must not be resubmitted.
	if _, err := c.Submit(context.Background(), "pm_card_visa"); err == nil {
		t.Error("expected resubmit of a succeeded payment to be rejected")
	}
	if gw.confirms != 1 {
		t.Errorf("gateway confirmed %d times, want 1", gw.confirms)
	}
}

func TestCardConfirmationFailureAllowsRetry(t *testing.T) {
	gw := &fakeGateway{confirmErr: apperr.Gateway("Your card was declined.", nil)}
	c := NewCardConfirmation(gw, "pi_1")

	if _, err := c.Submit(context.Background(), "pm_card_visa"); err == nil {
		t.Fatal("expected decline error")
	}
	if c.State() != StateFailed {
		t.Fatalf("state = %s, want failed", c.State())
	}
	if c.LastError() != "Your card was declined." {
		t.Errorf("LastError = %q, want the gateway's message", c.LastError())
	}

	// The user fixes the card and retries.
	c.Reset()
	if c.State() != StateIdle {
		t.Fatalf("state after reset = %s, want idle", c.State())
	}
	gw.confirmErr = nil
	gw.confirmStatus = payment.IntentSucceeded
	if _, err := c.Submit(context.Background(), "pm_card_mastercard"); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if c.State() != StateSucceeded {
		t.Errorf("state = %s, want succeeded", c.State())
	}
}

func TestCardConfirmationNonSucceededStatusIsFailure(t *testing.T) {
	gw := &fakeGateway{confirmStatus: payment.IntentRequiresAction}
	c := NewCardConfirmation(gw, "pi_1")

	if _, err := c.Submit(context.Background(), "pm_card_visa"); err == nil {
		t.Fatal("expected a non-succeeded terminal status to fail the flow")
	}
	if c.State() != StateFailed {
		t.Errorf("state = %s, want failed", c.State())
	}
}

func TestCardConfirmationGuards(t *testing.T) {
	gw := &fakeGateway{confirmStatus: payment.IntentSucceeded}
	c := NewCardConfirmation(gw, "pi_1")

	// Incomplete card input never reaches the gateway.
	if _, err := c.Submit(context.Background(), ""); err == nil {
		t.Error("expected empty payment method to be rejected")
	}
	if gw.confirms != 0 {
		t.Errorf("gateway called %d times for incomplete input", gw.confirms)
	}
}
