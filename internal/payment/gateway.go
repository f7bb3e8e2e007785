package payment

import "context"

// Intent statuses echoed from the gateway. Only IntentSucceeded is a
// success for the checkout flow; anything else is a failure.
const (
	IntentSucceeded      = "succeeded"
	IntentRequiresAction = "requires_action"
)

// Intent is the storefront's view of a gateway payment intent. Card
// data never appears here; only the id, the browser-safe client
// secret and the status echo are kept.
type Intent struct {
	ID           string
	ClientSecret string
	Status       string
	AmountMinor  int64
	Currency     string
}

// CreateParams describes one payment attempt. Amounts are minor
// units; metadata is non-sensitive context for gateway dashboards.
type CreateParams struct {
	AmountMinor int64
	Currency    string
	Description string
	Metadata    map[string]string
}

// Gateway is the port to the external card-payment processor.
type Gateway interface {
	CreateIntent(ctx context.Context, p CreateParams) (*Intent, error)
	GetIntent(ctx context.Context, id string) (*Intent, error)
	// ConfirmIntent submits a payment method for the intent. Used by
	// server-side drivers and tests; browsers confirm against the
	// gateway directly with the client secret.
	ConfirmIntent(ctx context.Context, id, paymentMethod string) (*Intent, error)
}
