// Package cart holds staged point-of-sale lines before they are committed as
// transactions.
package cart

import (
	"fmt"
	"maps"
	"slices"

	"github.com/shopspring/decimal"

	"retaildesk/backend/internal/store"
)

var ErrInvalidLine = fmt.Errorf("%w: invalid cart line", store.ErrInvalidInput)

// Line is a staged entry. UnitPrice is fixed when the line is added.
type Line struct {
	ProductID    string            `json:"product_id"`
	Name         string            `json:"name"`
	Quantity     int               `json:"quantity"`
	UnitPrice    decimal.Decimal   `json:"unit_price"`
	LineDiscount decimal.Decimal   `json:"line_discount"`
	Variants     map[string]string `json:"variants,omitempty"`
	DiscountIDs  []string          `json:"discount_ids,omitempty"`
}

// NetPrice is the unit price after the manual discount, floored at zero.
func (l Line) NetPrice() decimal.Decimal {
	net := l.UnitPrice.Sub(l.LineDiscount)
	if net.IsNegative() {
		return decimal.Zero
	}
	return net
}

func (l Line) Total() decimal.Decimal {
	return l.NetPrice().Mul(decimal.NewFromInt(int64(l.Quantity)))
}

func (l Line) matches(productID string, variants map[string]string) bool {
	return l.ProductID == productID && sameVariants(l.Variants, variants)
}

// Patch changes selected fields of a staged line. Nil fields are left as is.
type Patch struct {
	Quantity     *int
	UnitPrice    *decimal.Decimal
	LineDiscount *decimal.Decimal
}

// Cart is not safe for concurrent use.
type Cart struct {
	lines []Line
}

func New() *Cart {
	return &Cart{}
}

func validate(l Line) error {
	if l.ProductID == "" {
		return fmt.Errorf("%w: product is required", ErrInvalidLine)
	}
	if l.Quantity < 1 {
		return fmt.Errorf("%w: quantity must be at least 1", ErrInvalidLine)
	}
	if l.UnitPrice.IsNegative() {
		return fmt.Errorf("%w: unit price must not be negative", ErrInvalidLine)
	}
	if l.LineDiscount.IsNegative() {
		return fmt.Errorf("%w: discount must not be negative", ErrInvalidLine)
	}
	return nil
}

// Add stages l. A line for the same product with an identical variant
// selection absorbs the quantity instead of creating a second entry.
func (c *Cart) Add(l Line) error {
	if err := validate(l); err != nil {
		return err
	}
	for i := range c.lines {
		if c.lines[i].matches(l.ProductID, l.Variants) {
			c.lines[i].Quantity += l.Quantity
			return nil
		}
	}
	l.Variants = maps.Clone(l.Variants)
	l.DiscountIDs = slices.Clone(l.DiscountIDs)
	c.lines = append(c.lines, l)
	return nil
}

// Edit applies patch to the line matching productID and variants. It reports
// false when no such line is staged.
func (c *Cart) Edit(productID string, variants map[string]string, patch Patch) (bool, error) {
	idx := -1
	for i := range c.lines {
		if c.lines[i].matches(productID, variants) {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false, nil
	}

	next := c.lines[idx]
	if patch.Quantity != nil {
		next.Quantity = *patch.Quantity
	}
	if patch.UnitPrice != nil {
		next.UnitPrice = *patch.UnitPrice
	}
	if patch.LineDiscount != nil {
		next.LineDiscount = *patch.LineDiscount
	}
	if err := validate(next); err != nil {
		return true, err
	}
	c.lines[idx] = next
	return true, nil
}

// Find returns a copy of the staged line for productID and variants.
func (c *Cart) Find(productID string, variants map[string]string) (Line, bool) {
	for _, l := range c.lines {
		if l.matches(productID, variants) {
			l.Variants = maps.Clone(l.Variants)
			l.DiscountIDs = slices.Clone(l.DiscountIDs)
			return l, true
		}
	}
	return Line{}, false
}

// Remove drops the line at index. Out of range indexes are ignored.
func (c *Cart) Remove(index int) {
	if index < 0 || index >= len(c.lines) {
		return
	}
	c.lines = slices.Delete(c.lines, index, index+1)
}

// Lines returns a copy of the staged lines in insertion order.
func (c *Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	for i, l := range c.lines {
		l.Variants = maps.Clone(l.Variants)
		l.DiscountIDs = slices.Clone(l.DiscountIDs)
		out[i] = l
	}
	return out
}

func (c *Cart) Len() int {
	return len(c.lines)
}

func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.lines {
		total = total.Add(l.Total())
	}
	return total
}

func (c *Cart) Clear() {
	c.lines = nil
}

// An empty selection and a nil map are the same selection.
func sameVariants(a, b map[string]string) bool {
	if len(a) == 0 && len(b) == 0 {
		return true
	}
	return maps.Equal(a, b)
}
