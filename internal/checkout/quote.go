package checkout

import (
	"github.com/shopspring/decimal"

	"github.com/example/smartblinds/internal/apperr"
)

// CartItem is one configured blind in the cart before checkout.
// UnitPrice is in major units (e.g. 49.99).
type CartItem struct {
	ProductName string
	Quantity    int
	UnitPrice   decimal.Decimal
	Options     map[string]string
}

// Quote is the priced cart: per-line subtotals plus the total the
// payment intent will be created for. Pure data, no state.
type Quote struct {
	Lines    []QuoteLine
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Shipping decimal.Decimal
	Total    decimal.Decimal
}

type QuoteLine struct {
	Item     CartItem
	Subtotal decimal.Decimal
}

// BuildQuote prices a cart. taxRate is a fraction (0.25 for 25%).
func BuildQuote(items []CartItem, taxRate, shipping decimal.Decimal) (*Quote, error) {
	if len(items) == 0 {
		return nil, apperr.Validation("cart must contain at least one item")
	}

	q := &Quote{
		Lines:    make([]QuoteLine, 0, len(items)),
		Shipping: shipping,
	}
	for _, it := range items {
		if it.Quantity <= 0 {
			return nil, apperr.Validation("item quantity must be greater than zero")
		}
		if it.UnitPrice.Sign() <= 0 {
			return nil, apperr.Validation("item price must be greater than zero")
		}
		sub := it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
		q.Lines = append(q.Lines, QuoteLine{Item: it, Subtotal: sub})
		q.Subtotal = q.Subtotal.Add(sub)
	}

	q.Tax = q.Subtotal.Mul(taxRate).Round(2)
	q.Total = q.Subtotal.Add(q.Tax).Add(q.Shipping).Round(2)
	return q, nil
}

// MinorUnits converts a major-unit amount to gateway minor units,
// round(amount * 100).
func MinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}
