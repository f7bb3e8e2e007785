package checkout

import (
	"context"
	"sync"

	"github.com/example/smartblinds/internal/apperr"
	"github.com/example/smartblinds/internal/payment"
)

// State is the card-confirmation progress for one checkout attempt.
type State string

const (
	StateIdle       State = "idle"
	StateProcessing State = "processing"
	StateSucceeded  State = "succeeded"
	StateFailed     State = "failed"
)

// CardConfirmation drives one payment intent through confirmation:
// idle -> processing -> succeeded | failed. A failed attempt exposes
// the gateway's message and may be resubmitted; a second submit while
// processing is rejected. Abandoning mid-processing leaves no
// server-side order — persistence only happens after success.
type CardConfirmation struct {
	mu       sync.Mutex
	gw       payment.Gateway
	intentID string
	state    State
	lastErr  string
}

// NewCardConfirmation prepares a confirmation for an already-created
// payment intent.
func NewCardConfirmation(gw payment.Gateway, intentID string) *CardConfirmation {
	return &CardConfirmation{gw: gw, intentID: intentID, state: StateIdle}
}

// State returns the current state.
func (c *CardConfirmation) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// LastError returns the gateway's message from the last failure.
func (c *CardConfirmation) LastError() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Submit confirms the intent with the given payment method. Guarded:
// only one attempt runs at a time, and a succeeded confirmation is
// not resubmitted.
func (c *CardConfirmation) Submit(ctx context.Context, paymentMethod string) (*payment.Intent, error) {
	c.mu.Lock()
	switch c.state {
	case StateProcessing:
		c.mu.Unlock()
		return nil, apperr.Validation("payment is already being processed")
	case StateSucceeded:
		c.mu.Unlock()
		return nil, apperr.Validation("payment already succeeded")
	}
	if paymentMethod == "" {
		c.mu.Unlock()
		return nil, apperr.Validation("card details are incomplete")
	}
	c.state = StateProcessing
	c.mu.Unlock()

	intent, err := c.gw.ConfirmIntent(ctx, c.intentID, paymentMethod)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.state = StateFailed
		c.lastErr = apperr.UserMessage(err)
		return nil, err
	}
	// Any terminal status other than succeeded counts as a failure
	// for this flow.
	if intent.Status != payment.IntentSucceeded {
		c.state = StateFailed
		c.lastErr = "payment was not completed (status: " + intent.Status + ")"
		return intent, apperr.Gateway(c.lastErr, nil)
	}
	c.state = StateSucceeded
	c.lastErr = ""
	return intent, nil
}

// Reset returns a failed confirmation to idle for resubmission.
func (c *CardConfirmation) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateFailed {
		c.state = StateIdle
	}
}
