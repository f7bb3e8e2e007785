package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/example/smartblinds/internal/apperr"
	"github.com/example/smartblinds/internal/checkout"
	"github.com/example/smartblinds/internal/payment"
)

// CustomerSummary is the non-sensitive customer context attached to a
// payment intent for gateway-side dashboards.
type CustomerSummary struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// IntentItem is the cart summary sent along with an intent request.
type IntentItem struct {
	ProductName string `json:"productName"`
	Quantity    int    `json:"quantity"`
}

// CreateIntentRequest asks the gateway for a new payment intent.
// Amount is in major units.
type CreateIntentRequest struct {
	Amount   decimal.Decimal
	Currency string
	Customer CustomerSummary
	Items    []IntentItem
	Metadata map[string]string
}

// IntentResult carries what the browser needs to finish card
// collection without the backend ever seeing card data.
type IntentResult struct {
	ClientSecret    string `json:"clientSecret"`
	PaymentIntentID string `json:"paymentIntentId"`
}

// PaymentService prepares gateway payment intents. Purely advisory:
// nothing is persisted here, the durability boundary is order
// confirmation.
type PaymentService struct {
	gw              payment.Gateway
	defaultCurrency string
	log             *zap.Logger
}

// NewPaymentService creates the payment service. gw may be nil when
// the gateway is not configured; CreateIntent then reports a
// configuration error instead of crashing the process.
func NewPaymentService(gw payment.Gateway, defaultCurrency string, log *zap.Logger) *PaymentService {
	if defaultCurrency == "" {
		defaultCurrency = "eur"
	}
	return &PaymentService{gw: gw, defaultCurrency: defaultCurrency, log: log}
}

// CreateIntent validates the request and asks the gateway for an
// intent over round(amount*100) minor units. Gateway errors pass the
// gateway's message through; the caller may simply re-invoke for a
// fresh intent.
func (s *PaymentService) CreateIntent(ctx context.Context, req CreateIntentRequest) (*IntentResult, error) {
	if req.Amount.Sign() <= 0 {
		return nil, apperr.Validation("amount must be greater than zero")
	}
	if s.gw == nil {
		return nil, apperr.Configuration("payment gateway is not configured")
	}

	currency := strings.ToLower(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = s.defaultCurrency
	}

	metadata := map[string]string{
		"customer_name":  req.Customer.Name,
		"customer_email": req.Customer.Email,
		"customer_phone": req.Customer.Phone,
		"item_count":     strconv.Itoa(len(req.Items)),
	}
	for k, v := range req.Metadata {
		metadata[k] = v
	}

	intent, err := s.gw.CreateIntent(ctx, payment.CreateParams{
		AmountMinor: checkout.MinorUnits(req.Amount),
		Currency:    currency,
		Description: fmt.Sprintf("Smartblinds order (%d items)", len(req.Items)),
		Metadata:    metadata,
	})
	if err != nil {
		GetMonitor().RecordGatewayError()
		s.log.Warn("create payment intent failed",
			zap.String("customer_email", req.Customer.Email),
			zap.Error(err))
		return nil, err
	}

	s.log.Info("payment intent created",
		zap.String("payment_intent_id", intent.ID),
		zap.Int64("amount_minor", intent.AmountMinor),
		zap.String("currency", currency))
	return &IntentResult{
		ClientSecret:    intent.ClientSecret,
		PaymentIntentID: intent.ID,
	}, nil
}
