// Package pricing resolves the effective selling price of a product from the
// discounts that are active at a given instant.
//
// Multiple applicable discounts are additive: percentage discounts are all
// computed against the original selling price and fixed discounts subtract
// their flat amount, then the result is floored at zero. Two 10% and 20%
// discounts on a 100.00 item therefore yield 70.00, not 72.00.
package pricing

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"retaildesk/backend/internal/domain"
)

var hundred = decimal.NewFromInt(100)

type Resolver struct {
	now func() time.Time
}

type Option func(*Resolver)

// WithClock overrides the wall clock used to evaluate discount windows.
func WithClock(now func() time.Time) Option {
	return func(r *Resolver) {
		if now != nil {
			r.now = now
		}
	}
}

func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{now: func() time.Time { return time.Now().UTC() }}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// DiscountedPrice returns the selling price after every applicable discount.
func (r *Resolver) DiscountedPrice(product domain.Product, discounts []domain.Discount) decimal.Decimal {
	price, _ := Price(product, discounts, r.now())
	return price
}

// Quote prices product against the discounts that apply to it right now.
func (r *Resolver) Quote(product domain.Product, discounts []domain.Discount) domain.PriceQuote {
	price, ids := reduce(product, r.Applicable(product, discounts))
	return domain.PriceQuote{
		ProductID:       product.ID,
		OriginalPrice:   product.SellingPrice,
		DiscountedPrice: price,
		DiscountIDs:     ids,
	}
}

// Active returns the discounts that are switched on and inside their date
// window right now, regardless of product scope.
func (r *Resolver) Active(discounts []domain.Discount) []domain.Discount {
	now := r.now()
	active := make([]domain.Discount, 0, len(discounts))
	for _, d := range discounts {
		if d.Active && InWindow(d, now) {
			active = append(active, d)
		}
	}
	return active
}

// Applicable returns the discounts in scope for product and inside their
// window right now, in input order.
func (r *Resolver) Applicable(product domain.Product, discounts []domain.Discount) []domain.Discount {
	return applicable(product, discounts, r.now())
}

func applicable(product domain.Product, discounts []domain.Discount, now time.Time) []domain.Discount {
	out := make([]domain.Discount, 0, len(discounts))
	for _, d := range discounts {
		if Applies(d, product, now) {
			out = append(out, d)
		}
	}
	return out
}

// InWindow treats a missing start or end date as unbounded. Both bounds are
// inclusive.
func InWindow(d domain.Discount, now time.Time) bool {
	if d.StartDate != nil && now.Before(*d.StartDate) {
		return false
	}
	if d.EndDate != nil && now.After(*d.EndDate) {
		return false
	}
	return true
}

// Applies reports whether d affects product at now. Scope lists are ignored
// when ApplyToAll is set.
func Applies(d domain.Discount, product domain.Product, now time.Time) bool {
	if !d.Active || !InWindow(d, now) {
		return false
	}
	if d.ApplyToAll {
		return true
	}
	return slices.Contains(d.AppliedProducts, product.ID) || slices.Contains(d.AppliedCategories, product.Category)
}

// Price applies the additive policy and returns the discounted price together
// with the IDs of the discounts that contributed, in input order.
func Price(product domain.Product, discounts []domain.Discount, now time.Time) (decimal.Decimal, []string) {
	return reduce(product, applicable(product, discounts, now))
}

// reduce subtracts every discount in applied from the selling price. Negative
// values and unknown types contribute nothing.
func reduce(product domain.Product, applied []domain.Discount) (decimal.Decimal, []string) {
	original := product.SellingPrice
	if original.IsNegative() {
		return decimal.Zero, nil
	}

	reduction := decimal.Zero
	var ids []string
	for _, d := range applied {
		if d.Value.IsNegative() {
			continue
		}
		switch d.Type {
		case domain.DiscountPercentage:
			reduction = reduction.Add(original.Mul(d.Value).Div(hundred))
		case domain.DiscountFixed:
			reduction = reduction.Add(d.Value)
		default:
			continue
		}
		ids = append(ids, d.ID)
	}

	price := original.Sub(reduction)
	if price.IsNegative() {
		return decimal.Zero, ids
	}
	return price, ids
}
