package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/example/smartblinds/internal/apperr"
	"github.com/example/smartblinds/internal/datamodels/order"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// OrderItemView is an item with its options bag normalized back to a
// structured map.
type OrderItemView struct {
	ProductName   string            `json:"productName"`
	Quantity      int               `json:"quantity"`
	UnitCents     int64             `json:"unitCents"`
	SubtotalCents int64             `json:"subtotalCents"`
	Options       map[string]string `json:"options"`
}

// OrderView is the read-model shape returned by listings.
type OrderView struct {
	OrderRef        string          `json:"orderId"`
	Status          order.Status    `json:"status"`
	CustomerName    string          `json:"customerName"`
	CustomerEmail   string          `json:"customerEmail"`
	CustomerPhone   string          `json:"customerPhone"`
	ShippingAddress string          `json:"shippingAddress"`
	TotalCents      int64           `json:"totalCents"`
	TaxCents        int64           `json:"taxCents"`
	ShippingCents   int64           `json:"shippingCents"`
	Currency        string          `json:"currency"`
	PaymentIntentID string          `json:"paymentIntentId"`
	Notes           string          `json:"notes"`
	Items           []OrderItemView `json:"items"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// Listing is one page of orders plus the pagination summary.
type Listing struct {
	Orders []OrderView `json:"orders"`
	Limit  int         `json:"limit"`
	Offset int         `json:"offset"`
	Total  int64       `json:"total"`
}

// QueryService is the read path: admin listings and customer-facing
// lookup by order ref or email.
type QueryService struct {
	repo order.Repository
	log  *zap.Logger
}

func NewQueryService(repo order.Repository, log *zap.Logger) *QueryService {
	return &QueryService{repo: repo, log: log}
}

// List returns orders newest-first. The total count is fetched
// independently and its failure degrades to 0 rather than failing
// the page.
func (s *QueryService) List(ctx context.Context, f order.Filter, limit, offset int) (*Listing, error) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}

	list, err := s.repo.List(ctx, f, limit, offset)
	if err != nil {
		GetMonitor().RecordPersistenceError()
		return nil, apperr.Persistence("failed to list orders", err)
	}

	total, err := s.repo.Count(ctx, f)
	if err != nil {
		s.log.Warn("order count failed, reporting 0", zap.Error(err))
		total = 0
	}

	out := &Listing{
		Orders: make([]OrderView, 0, len(list)),
		Limit:  limit,
		Offset: offset,
		Total:  total,
	}
	for _, o := range list {
		out.Orders = append(out.Orders, toView(o))
	}
	return out, nil
}

func toView(o *order.Order) OrderView {
	v := OrderView{
		OrderRef:        o.OrderRef,
		Status:          o.Status,
		CustomerName:    o.CustomerName,
		CustomerEmail:   o.CustomerEmail,
		CustomerPhone:   o.CustomerPhone,
		ShippingAddress: o.ShippingAddress,
		TotalCents:      o.TotalCents,
		TaxCents:        o.TaxCents,
		ShippingCents:   o.ShippingCents,
		Currency:        o.Currency,
		PaymentIntentID: o.PaymentIntentID,
		Notes:           o.Notes,
		Items:           make([]OrderItemView, 0, len(o.Items)),
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
	for i := range o.Items {
		it := &o.Items[i]
		v.Items = append(v.Items, OrderItemView{
			ProductName:   it.ProductName,
			Quantity:      it.Quantity,
			UnitCents:     it.UnitCents,
			SubtotalCents: it.SubtotalCents,
			// Malformed stored JSON degrades to an empty map for
			// this one item; the listing itself never fails on it.
			Options: it.ParsedOptions(),
		})
	}
	return v
}
