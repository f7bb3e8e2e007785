package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/example/smartblinds/internal/datamodels/order"
)

func seedOrder(repo *fakeRepo, ref, email, options string) {
	repo.nextID++
	repo.orders[ref] = &order.Order{
		ID:            repo.nextID,
		OrderRef:      ref,
		CustomerName:  "Ana Horvat",
		CustomerEmail: email,
		TotalCents:    12000,
		Currency:      "eur",
		Status:        order.StatusReceived,
		Items: []order.OrderItem{
			{ProductName: "Roller Blind", Quantity: 1, UnitCents: 12000, SubtotalCents: 12000, Options: options},
		},
	}
}

func TestListNormalizesOptions(t *testing.T) {
	repo := newFakeRepo()
	seedOrder(repo, "ORD-1", "ana@example.com", `{"color":"white"}`)
	svc := NewQueryService(repo, zap.NewNop())

	listing, err := svc.List(context.Background(), order.Filter{}, 0, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(listing.Orders) != 1 {
		t.Fatalf("orders = %d, want 1", len(listing.Orders))
	}
	if got := listing.Orders[0].Items[0].Options["color"]; got != "white" {
		t.Errorf("options[color] = %q, want white", got)
	}
}

func TestListDegradesMalformedOptionsPerItem(t *testing.T) {
	repo := newFakeRepo()
	seedOrder(repo, "ORD-1", "ana@example.com", `{"color":`)
	seedOrder(repo, "ORD-2", "ana@example.com", `{"color":"beige"}`)
	svc := NewQueryService(repo, zap.NewNop())

	listing, err := svc.List(context.Background(), order.Filter{}, 0, 0)
	if err != nil {
		t.Fatalf("listing must not fail on one malformed options bag: %v", err)
	}
	if len(listing.Orders) != 2 {
		t.Fatalf("orders = %d, want 2", len(listing.Orders))
	}
	for _, o := range listing.Orders {
		opts := o.Items[0].Options
		if opts == nil {
			t.Errorf("order %s: options must be a map, not nil", o.OrderRef)
		}
		if o.OrderRef == "ORD-1" && len(opts) != 0 {
			t.Errorf("malformed options should degrade to empty, got %v", opts)
		}
		if o.OrderRef == "ORD-2" && opts["color"] != "beige" {
			t.Errorf("valid options lost: %v", opts)
		}
	}
}

func TestListCountFailureDegradesToZero(t *testing.T) {
	repo := newFakeRepo()
	seedOrder(repo, "ORD-1", "ana@example.com", "")
	repo.countErr = errors.New("count timeout")
	svc := NewQueryService(repo, zap.NewNop())

	listing, err := svc.List(context.Background(), order.Filter{}, 0, 0)
	if err != nil {
		t.Fatalf("count failure must not fail the listing: %v", err)
	}
	if listing.Total != 0 {
		t.Errorf("total = %d, want degraded 0", listing.Total)
	}
	if len(listing.Orders) != 1 {
		t.Errorf("orders = %d, want 1", len(listing.Orders))
	}
}

func TestListFilter(t *testing.T) {
	repo := newFakeRepo()
	seedOrder(repo, "ORD-1", "ana@example.com", "")
	seedOrder(repo, "ORD-2", "ivan@example.com", "")
	svc := NewQueryService(repo, zap.NewNop())

	listing, err := svc.List(context.Background(), order.Filter{Email: "ivan@example.com"}, 0, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(listing.Orders) != 1 || listing.Orders[0].OrderRef != "ORD-2" {
		t.Errorf("unexpected filtered result: %+v", listing.Orders)
	}
}

func TestListPaginationClamps(t *testing.T) {
	svc := NewQueryService(newFakeRepo(), zap.NewNop())

	listing, err := svc.List(context.Background(), order.Filter{}, 1000, -5)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if listing.Limit != maxPageSize {
		t.Errorf("limit = %d, want clamped to %d", listing.Limit, maxPageSize)
	}
	if listing.Offset != 0 {
		t.Errorf("offset = %d, want clamped to 0", listing.Offset)
	}

	listing, err = svc.List(context.Background(), order.Filter{}, 0, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if listing.Limit != defaultPageSize {
		t.Errorf("limit = %d, want default %d", listing.Limit, defaultPageSize)
	}
}
