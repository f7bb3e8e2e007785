package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	radix "github.com/mediocregopher/radix/v3"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/example/smartblinds/internal/apperr"
	"github.com/example/smartblinds/internal/checkout"
	"github.com/example/smartblinds/internal/datamodels/order"
	"github.com/example/smartblinds/internal/payment"
	"github.com/example/smartblinds/internal/repository/mysql"
)

// confirmGuardKey marks an order ref as claimed during confirmation.
// Fast-path duplicate guard only; the unique index on order_ref is
// the authority.
const (
	confirmGuardKey    = "order:confirm:%s"
	confirmGuardExpiry = 86400 // seconds
)

// ConfirmItem is one cart line being persisted. UnitPrice in major
// units.
type ConfirmItem struct {
	ProductName string
	Quantity    int
	UnitPrice   decimal.Decimal
	Options     map[string]string
}

// ConfirmOrderRequest persists an order after a successful charge.
type ConfirmOrderRequest struct {
	OrderRef        string
	PaymentIntentID string
	Customer        ConfirmCustomer
	Items           []ConfirmItem
	TotalAmount     decimal.Decimal
	TaxAmount       decimal.Decimal
	ShippingCost    decimal.Decimal
	Currency        string
	Notes           string
}

type ConfirmCustomer struct {
	Name    string
	Email   string
	Phone   string
	Address string
}

// ConfirmResult reports the persisted order and whether this call
// created it (false on an idempotent retry).
type ConfirmResult struct {
	Order   *order.Order
	Created bool
}

// StatusUpdateResult reports a status transition.
type StatusUpdateResult struct {
	Order          *order.Order
	PreviousStatus order.Status
	NewStatus      order.Status
	Changed        bool
}

// Notifier triggers best-effort customer email; satisfied by
// NotificationService.
type Notifier interface {
	OrderReceived(ctx context.Context, o *order.Order)
	StatusChanged(ctx context.Context, o *order.Order, previous, current order.Status)
}

// OrderService orchestrates the order lifecycle: confirmation after
// payment, admin status transitions and deletes, with notification
// always secondary to the durable write.
type OrderService struct {
	repo     order.Repository
	gw       payment.Gateway
	notifier Notifier
	redis    radix.Client
	log      *zap.Logger
}

// NewOrderService creates the order service. gw and redis may be nil;
// the related safeguards are skipped in degraded mode.
func NewOrderService(repo order.Repository, gw payment.Gateway, notifier Notifier, redis radix.Client, log *zap.Logger) *OrderService {
	return &OrderService{repo: repo, gw: gw, notifier: notifier, redis: redis, log: log}
}

// ConfirmOrder is the durability boundary of the checkout flow. It
// verifies the payment server-side, then inserts the order and its
// items once: a retry with the same ref returns the existing order.
// The "order received" email is best-effort and never fails the call.
func (s *OrderService) ConfirmOrder(ctx context.Context, req ConfirmOrderRequest) (*ConfirmResult, error) {
	if err := s.validateConfirm(&req); err != nil {
		return nil, err
	}

	// Close the trust gap: the client's claim that the charge
	// succeeded is checked against the gateway's authoritative
	// intent status before anything is written.
	if s.gw != nil && req.PaymentIntentID != "" {
		intent, err := s.gw.GetIntent(ctx, req.PaymentIntentID)
		if err != nil {
			GetMonitor().RecordGatewayError()
			return nil, err
		}
		if intent.Status != payment.IntentSucceeded {
			GetMonitor().RecordGatewayError()
			return nil, apperr.Gateway(
				fmt.Sprintf("payment has not succeeded (status: %s)", intent.Status), nil)
		}
	}

	if existing, claimed := s.claimRef(ctx, req.OrderRef); !claimed {
		if existing != nil {
			GetMonitor().RecordDuplicateConfirm()
			return &ConfirmResult{Order: existing, Created: false}, nil
		}
		// Guard was set but the order is not readable; fall through
		// to the database, which decides authoritatively.
	}

	o := s.buildOrder(&req)
	if err := s.repo.Create(ctx, o); err != nil {
		if errors.Is(err, order.ErrDuplicateRef) {
			GetMonitor().RecordDuplicateConfirm()
			existing, getErr := s.repo.GetByRef(ctx, req.OrderRef)
			if getErr != nil {
				GetMonitor().RecordPersistenceError()
				return nil, apperr.Persistence("failed to load existing order", getErr)
			}
			return &ConfirmResult{Order: existing, Created: false}, nil
		}
		// Release the fast-path claim so the client can retry the
		// confirmation; no money moves again.
		s.releaseRef(req.OrderRef)
		GetMonitor().RecordPersistenceError()
		return nil, apperr.Persistence("failed to save order", err)
	}

	GetMonitor().RecordOrderCreated()
	s.log.Info("order created",
		zap.String("order_ref", o.OrderRef),
		zap.Int64("total_cents", o.TotalCents),
		zap.Int("items", len(o.Items)))

	s.notifier.OrderReceived(ctx, o)
	return &ConfirmResult{Order: o, Created: true}, nil
}

func (s *OrderService) validateConfirm(req *ConfirmOrderRequest) error {
	if req.OrderRef == "" {
		req.OrderRef = "ORD-" + strings.ToUpper(uuid.NewString()[:8])
	}
	if len(req.Items) == 0 {
		return apperr.Validation("order must contain at least one item")
	}
	if req.Customer.Name == "" || req.Customer.Email == "" {
		return apperr.Validation("customer name and email are required")
	}
	if req.TotalAmount.Sign() <= 0 {
		return apperr.Validation("total amount must be greater than zero")
	}
	for _, it := range req.Items {
		if it.Quantity <= 0 {
			return apperr.Validation("item quantity must be greater than zero")
		}
	}
	return nil
}

func (s *OrderService) buildOrder(req *ConfirmOrderRequest) *order.Order {
	currency := strings.ToLower(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = "eur"
	}
	o := &order.Order{
		OrderRef:        req.OrderRef,
		CustomerName:    req.Customer.Name,
		CustomerEmail:   req.Customer.Email,
		CustomerPhone:   req.Customer.Phone,
		ShippingAddress: req.Customer.Address,
		TotalCents:      checkout.MinorUnits(req.TotalAmount),
		TaxCents:        checkout.MinorUnits(req.TaxAmount),
		ShippingCents:   checkout.MinorUnits(req.ShippingCost),
		Currency:        currency,
		PaymentIntentID: req.PaymentIntentID,
		Notes:           req.Notes,
		Status:          order.StatusReceived,
	}
	for _, it := range req.Items {
		unit := checkout.MinorUnits(it.UnitPrice)
		o.Items = append(o.Items, order.OrderItem{
			ProductName:   it.ProductName,
			Quantity:      it.Quantity,
			UnitCents:     unit,
			SubtotalCents: unit * int64(it.Quantity),
			Options:       order.EncodeOptions(it.Options),
		})
	}
	return o
}

// claimRef takes the redis fast-path guard for ref. Returns
// (existing, false) when the ref was already claimed.
func (s *OrderService) claimRef(ctx context.Context, ref string) (*order.Order, bool) {
	if s.redis == nil {
		return nil, true
	}
	key := fmt.Sprintf(confirmGuardKey, ref)
	var set int
	if err := s.redis.Do(radix.Cmd(&set, "SETNX", key, "1")); err != nil {
		// Redis trouble never blocks checkout.
		s.log.Warn("confirmation guard unavailable", zap.Error(err))
		return nil, true
	}
	if set == 1 {
		_ = s.redis.Do(radix.FlatCmd(nil, "EXPIRE", key, confirmGuardExpiry))
		return nil, true
	}
	existing, err := s.repo.GetByRef(ctx, ref)
	if err != nil {
		return nil, false
	}
	return existing, false
}

func (s *OrderService) releaseRef(ref string) {
	if s.redis == nil {
		return
	}
	_ = s.redis.Do(radix.Cmd(nil, "DEL", fmt.Sprintf(confirmGuardKey, ref)))
}

// GetByRef loads one order.
func (s *OrderService) GetByRef(ctx context.Context, ref string) (*order.Order, error) {
	o, err := s.repo.GetByRef(ctx, ref)
	if err != nil {
		if mysql.IsNotFound(err) {
			return nil, apperr.NotFound("order not found")
		}
		GetMonitor().RecordPersistenceError()
		return nil, apperr.Persistence("failed to load order", err)
	}
	return o, nil
}

// UpdateStatus applies an admin-driven status transition. Equal
// statuses are a silent no-op: no write, no notification. An actual
// change triggers exactly one notification attempt whose outcome does
// not affect the reported result.
func (s *OrderService) UpdateStatus(ctx context.Context, ref, rawStatus string) (*StatusUpdateResult, error) {
	next, ok := order.ParseStatus(rawStatus)
	if !ok {
		return nil, apperr.Validation(fmt.Sprintf("invalid status %q", rawStatus))
	}

	o, err := s.GetByRef(ctx, ref)
	if err != nil {
		return nil, err
	}

	previous := o.Status
	if previous == next {
		return &StatusUpdateResult{
			Order:          o,
			PreviousStatus: previous,
			NewStatus:      next,
			Changed:        false,
		}, nil
	}
	if !previous.CanTransitionTo(next) {
		return nil, apperr.Validation(
			fmt.Sprintf("transition %s -> %s is not allowed", previous, next))
	}

	if err := s.repo.UpdateStatus(ctx, ref, next); err != nil {
		if mysql.IsNotFound(err) {
			return nil, apperr.NotFound("order not found")
		}
		GetMonitor().RecordPersistenceError()
		return nil, apperr.Persistence("failed to update order status", err)
	}

	GetMonitor().RecordStatusUpdate(string(next))
	o.Status = next
	s.log.Info("order status updated",
		zap.String("order_ref", ref),
		zap.String("previous", string(previous)),
		zap.String("new", string(next)))

	s.notifier.StatusChanged(ctx, o, previous, next)
	return &StatusUpdateResult{
		Order:          o,
		PreviousStatus: previous,
		NewStatus:      next,
		Changed:        true,
	}, nil
}

// DeleteOrder hard-deletes an order and its items.
func (s *OrderService) DeleteOrder(ctx context.Context, ref string) (*order.Order, error) {
	deleted, err := s.repo.Delete(ctx, ref)
	if err != nil {
		if mysql.IsNotFound(err) {
			return nil, apperr.NotFound("order not found")
		}
		GetMonitor().RecordPersistenceError()
		return nil, apperr.Persistence("failed to delete order", err)
	}
	s.releaseRef(ref)
	s.log.Info("order deleted", zap.String("order_ref", ref))
	return deleted, nil
}
