package pricing

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"retaildesk/backend/internal/domain"
)

var fixedNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func newTestResolver() *Resolver {
	return NewResolver(WithClock(func() time.Time { return fixedNow }))
}

func dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func assertPrice(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.Truef(t, dec(want).Equal(got), "expected price %s, got %s", want, got)
}

func ptrTime(t time.Time) *time.Time {
	return &t
}

func item(id, category, price string) domain.Product {
	return domain.Product{ID: id, Category: category, SellingPrice: dec(price)}
}

func TestAdditivePercentagesDoNotCompound(t *testing.T) {
	r := newTestResolver()
	product := item("p1", "Dresses", "100")
	discounts := []domain.Discount{
		{ID: "d10", Type: domain.DiscountPercentage, Value: dec("10"), ApplyToAll: true, Active: true},
		{ID: "d20", Type: domain.DiscountPercentage, Value: dec("20"), ApplyToAll: true, Active: true},
	}

	assertPrice(t, "70", r.DiscountedPrice(product, discounts))
}

func TestFixedAndPercentageAreSummedAgainstOriginal(t *testing.T) {
	r := newTestResolver()
	product := item("p1", "Bags", "80")
	discounts := []domain.Discount{
		{ID: "pct", Type: domain.DiscountPercentage, Value: dec("25"), AppliedCategories: []string{"Bags"}, Active: true},
		{ID: "flat", Type: domain.DiscountFixed, Value: dec("5.50"), AppliedProducts: []string{"p1"}, Active: true},
	}

	quote := r.Quote(product, discounts)
	assertPrice(t, "54.50", quote.DiscountedPrice)
	assertPrice(t, "80", quote.OriginalPrice)
	assert.Equal(t, []string{"pct", "flat"}, quote.DiscountIDs)
}

func TestPriceFloorsAtZero(t *testing.T) {
	r := newTestResolver()
	product := item("p1", "Accessories", "9")
	discounts := []domain.Discount{
		{ID: "big", Type: domain.DiscountFixed, Value: dec("7"), ApplyToAll: true, Active: true},
		{ID: "half", Type: domain.DiscountPercentage, Value: dec("50"), ApplyToAll: true, Active: true},
	}

	assertPrice(t, "0", r.DiscountedPrice(product, discounts))
}

func TestInactiveDiscountNeverApplies(t *testing.T) {
	r := newTestResolver()
	product := item("p1", "Dresses", "50")
	discounts := []domain.Discount{{
		ID:         "off",
		Type:       domain.DiscountPercentage,
		Value:      dec("30"),
		ApplyToAll: true,
		Active:     false,
		StartDate:  ptrTime(fixedNow.Add(-time.Hour)),
		EndDate:    ptrTime(fixedNow.Add(time.Hour)),
	}}

	assertPrice(t, "50", r.DiscountedPrice(product, discounts))
	assert.Empty(t, r.Active(discounts))
}

func TestCategoryScopeDoesNotLeak(t *testing.T) {
	r := newTestResolver()
	discounts := []domain.Discount{{
		ID: "bags", Type: domain.DiscountPercentage, Value: dec("10"), AppliedCategories: []string{"Bags"}, Active: true,
	}}

	assertPrice(t, "60", r.DiscountedPrice(item("dress", "Dresses", "60"), discounts))
	assertPrice(t, "54", r.DiscountedPrice(item("tote", "Bags", "60"), discounts))
}

func TestApplyToAllIgnoresScopeLists(t *testing.T) {
	d := domain.Discount{
		Type: domain.DiscountFixed, Value: dec("1"), ApplyToAll: true, Active: true,
		AppliedCategories: []string{"Bags"}, AppliedProducts: []string{"other"},
	}

	assert.True(t, Applies(d, item("p1", "Shoes", "10"), fixedNow))
}

func TestWindowBoundsAreInclusive(t *testing.T) {
	start := fixedNow.Add(-24 * time.Hour)
	end := fixedNow
	d := domain.Discount{
		Type: domain.DiscountFixed, Value: dec("2"), ApplyToAll: true, Active: true,
		StartDate: &start, EndDate: &end,
	}
	product := item("p1", "Shoes", "10")

	tests := []struct {
		name string
		now  time.Time
		want bool
	}{
		{name: "at start", now: start, want: true},
		{name: "at end", now: end, want: true},
		{name: "before start", now: start.Add(-time.Millisecond), want: false},
		{name: "after end", now: end.Add(time.Millisecond), want: false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Applies(d, product, tc.now))
		})
	}
}

func TestOpenEndedWindow(t *testing.T) {
	d := domain.Discount{
		Type: domain.DiscountFixed, Value: dec("2"), ApplyToAll: true, Active: true,
		StartDate: ptrTime(fixedNow.AddDate(-1, 0, 0)),
	}

	assert.True(t, InWindow(d, fixedNow.AddDate(5, 0, 0)))
	assert.False(t, InWindow(d, fixedNow.AddDate(-2, 0, 0)))
}

func TestActiveFiltersByWindowNotScope(t *testing.T) {
	r := newTestResolver()
	discounts := []domain.Discount{
		{ID: "current", Active: true, AppliedCategories: []string{"Bags"}},
		{ID: "expired", Active: true, EndDate: ptrTime(fixedNow.Add(-time.Minute))},
		{ID: "future", Active: true, StartDate: ptrTime(fixedNow.Add(time.Minute))},
	}

	active := r.Active(discounts)
	if assert.Len(t, active, 1) {
		assert.Equal(t, "current", active[0].ID)
	}
}

func TestPriceNeverExceedsSellingPrice(t *testing.T) {
	r := newTestResolver()
	product := item("p1", "Dresses", "40")
	discounts := []domain.Discount{
		{ID: "neg", Type: domain.DiscountFixed, Value: dec("-10"), ApplyToAll: true, Active: true},
		{ID: "odd", Type: domain.DiscountType("bogus"), Value: dec("10"), ApplyToAll: true, Active: true},
	}

	got := r.DiscountedPrice(product, discounts)
	assert.True(t, got.LessThanOrEqual(product.SellingPrice))
	assert.False(t, got.IsNegative())
	assert.Empty(t, r.Quote(product, discounts).DiscountIDs)
}

func TestNoDiscountsReturnsSellingPrice(t *testing.T) {
	r := newTestResolver()
	assertPrice(t, "12.34", r.DiscountedPrice(item("p1", "Bags", "12.34"), nil))
}

func TestApplicableFiltersByScopeAndWindow(t *testing.T) {
	r := newTestResolver()
	product := item("p1", "Shoes", "50")
	discounts := []domain.Discount{
		{ID: "shoes", Type: domain.DiscountFixed, Value: dec("5"), AppliedCategories: []string{"Shoes"}, Active: true},
		{ID: "bags", Type: domain.DiscountFixed, Value: dec("5"), AppliedCategories: []string{"Bags"}, Active: true},
		{ID: "off", Type: domain.DiscountFixed, Value: dec("5"), ApplyToAll: true},
		{ID: "later", Type: domain.DiscountFixed, Value: dec("5"), ApplyToAll: true, Active: true, StartDate: ptrTime(fixedNow.Add(time.Hour))},
	}

	applicable := r.Applicable(product, discounts)
	if assert.Len(t, applicable, 1) {
		assert.Equal(t, "shoes", applicable[0].ID)
	}

	quote := r.Quote(product, discounts)
	assert.Equal(t, []string{"shoes"}, quote.DiscountIDs)
	assertPrice(t, "45", quote.DiscountedPrice)
}
