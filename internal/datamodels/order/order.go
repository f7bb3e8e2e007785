package order

import (
	"context"
	"encoding/json"
	"time"
)

// Status is the lifecycle state of an order.
type Status string

const (
	StatusReceived   Status = "received"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// AllStatuses in lifecycle order, for validation and admin listings.
var AllStatuses = []Status{
	StatusReceived,
	StatusProcessing,
	StatusShipped,
	StatusCompleted,
	StatusCancelled,
}

// ParseStatus validates a raw status value.
func ParseStatus(raw string) (Status, bool) {
	s := Status(raw)
	for _, known := range AllStatuses {
		if s == known {
			return s, true
		}
	}
	return "", false
}

// Transitions is the reviewable set of allowed status changes.
// Every pair is currently allowed: admins correct orders manually
// (completed back to received included), so tightening the lifecycle
// is an edit to this table, not to the service code.
var Transitions = map[Status][]Status{
	StatusReceived:   {StatusProcessing, StatusShipped, StatusCompleted, StatusCancelled},
	StatusProcessing: {StatusReceived, StatusShipped, StatusCompleted, StatusCancelled},
	StatusShipped:    {StatusReceived, StatusProcessing, StatusCompleted, StatusCancelled},
	StatusCompleted:  {StatusReceived, StatusProcessing, StatusShipped, StatusCancelled},
	StatusCancelled:  {StatusReceived, StatusProcessing, StatusShipped, StatusCompleted},
}

// CanTransitionTo reports whether s -> next is in the table.
// A no-op transition (s == next) is always permitted; callers treat
// it as silent and skip notification.
func (s Status) CanTransitionTo(next Status) bool {
	if s == next {
		return true
	}
	for _, allowed := range Transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Order is the durable record of a placed purchase. OrderRef is the
// caller-chosen external reference and the sole idempotency key.
type Order struct {
	ID              int64  `gorm:"primaryKey" json:"-"`
	OrderRef        string `gorm:"uniqueIndex;size:64;not null" json:"orderId"`
	CustomerName    string `gorm:"size:128;not null" json:"customerName"`
	CustomerEmail   string `gorm:"index;size:128;not null" json:"customerEmail"`
	CustomerPhone   string `gorm:"size:32" json:"customerPhone"`
	ShippingAddress string `gorm:"size:512" json:"shippingAddress"`
	// Amounts are stored in minor units (cents).
	TotalCents      int64       `gorm:"not null" json:"totalCents"`
	TaxCents        int64       `json:"taxCents"`
	ShippingCents   int64       `json:"shippingCents"`
	Currency        string      `gorm:"size:8;not null" json:"currency"`
	PaymentIntentID string      `gorm:"index;size:64" json:"paymentIntentId"`
	Notes           string      `gorm:"size:512" json:"notes"`
	Status          Status      `gorm:"index;size:16;not null" json:"status"`
	Items           []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt       time.Time   `json:"createdAt"`
	UpdatedAt       time.Time   `json:"updatedAt"`
}

// OrderItem is one configured line of the cart. Options holds the
// customization choices (color, dimensions, ...) serialized as JSON.
type OrderItem struct {
	ID            int64  `gorm:"primaryKey" json:"-"`
	OrderID       int64  `gorm:"index;not null" json:"-"`
	ProductName   string `gorm:"size:128;not null" json:"productName"`
	Quantity      int    `gorm:"not null" json:"quantity"`
	UnitCents     int64  `gorm:"not null" json:"unitCents"`
	SubtotalCents int64  `gorm:"not null" json:"subtotalCents"`
	Options       string `gorm:"size:2048" json:"-"`
}

// ParsedOptions decodes the stored options bag. Malformed JSON
// degrades to an empty map so one bad row never poisons a listing.
func (i *OrderItem) ParsedOptions() map[string]string {
	out := map[string]string{}
	if i.Options == "" {
		return out
	}
	if err := json.Unmarshal([]byte(i.Options), &out); err != nil {
		return map[string]string{}
	}
	return out
}

// EncodeOptions serializes an options bag for storage.
func EncodeOptions(opts map[string]string) string {
	if len(opts) == 0 {
		return ""
	}
	b, err := json.Marshal(opts)
	if err != nil {
		return ""
	}
	return string(b)
}

// Filter narrows a listing to one order reference and/or one
// customer email. Zero value matches everything.
type Filter struct {
	OrderRef string
	Email    string
}

// ErrDuplicateRef reports an insert that hit the unique order_ref
// index. Repositories return it so the service can fetch and return
// the already-created order.
type duplicateRefError struct{}

func (duplicateRefError) Error() string { return "order ref already exists" }

var ErrDuplicateRef error = duplicateRefError{}

// Repository is the storage port for orders.
type Repository interface {
	// Create inserts o and its items in one transaction. When the
	// order ref already exists it returns ErrDuplicateRef and writes
	// nothing.
	Create(ctx context.Context, o *Order) error
	GetByRef(ctx context.Context, ref string) (*Order, error)
	List(ctx context.Context, f Filter, limit, offset int) ([]*Order, error)
	Count(ctx context.Context, f Filter) (int64, error)
	UpdateStatus(ctx context.Context, ref string, s Status) error
	// Delete removes the order and all of its items, returning the
	// deleted snapshot.
	Delete(ctx context.Context, ref string) (*Order, error)
}
