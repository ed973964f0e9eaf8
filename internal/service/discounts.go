package service

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"retaildesk/backend/internal/domain"
	"retaildesk/backend/internal/store"
	"retaildesk/backend/internal/xid"
)

var maxPercentage = decimal.NewFromInt(100)

func (s *Service) ListDiscounts(_ context.Context) []domain.Discount {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneSlice(s.discounts)
}

// ActiveDiscounts returns discounts switched on and inside their date window
// now, whatever their product scope.
func (s *Service) ActiveDiscounts(_ context.Context) []domain.Discount {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.resolver.Active(s.discounts)
}

// DiscountedPrice quotes the current price of a product after every
// applicable discount.
func (s *Service) DiscountedPrice(_ context.Context, productID string) (domain.PriceQuote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.productIndex(productID)
	if idx < 0 {
		return domain.PriceQuote{}, notFound("product", productID)
	}
	return s.resolver.Quote(s.products[idx], s.discounts), nil
}

func (s *Service) CreateDiscount(ctx context.Context, req domain.DiscountRequest) (domain.Discount, error) {
	req, err := normalizeDiscount(req)
	if err != nil {
		return domain.Discount{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	discount := domain.Discount{
		ID:        xid.New("disc"),
		CreatedAt: now,
	}
	applyDiscountRequest(&discount, req, now)
	s.discounts = append(s.discounts, discount)
	s.save(ctx, store.KeyDiscounts, s.discounts)
	return discount, nil
}

// UpdateDiscount replaces every editable field. UsageCount and CreatedAt are
// kept.
func (s *Service) UpdateDiscount(ctx context.Context, id string, req domain.DiscountRequest) (domain.Discount, error) {
	req, err := normalizeDiscount(req)
	if err != nil {
		return domain.Discount{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.discountIndex(id)
	if idx < 0 {
		return domain.Discount{}, notFound("discount", id)
	}
	applyDiscountRequest(&s.discounts[idx], req, s.now())
	s.save(ctx, store.KeyDiscounts, s.discounts)
	return s.discounts[idx], nil
}

func (s *Service) DeleteDiscount(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.discountIndex(id)
	if idx < 0 {
		return notFound("discount", id)
	}
	s.discounts = slices.Delete(s.discounts, idx, idx+1)
	s.save(ctx, store.KeyDiscounts, s.discounts)
	return nil
}

func (s *Service) discountIndex(id string) int {
	return slices.IndexFunc(s.discounts, func(d domain.Discount) bool { return d.ID == id })
}

func normalizeDiscount(req domain.DiscountRequest) (domain.DiscountRequest, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Type = domain.DiscountType(strings.ToLower(strings.TrimSpace(string(req.Type))))

	if req.Name == "" {
		return req, invalid("discount name is required")
	}
	if req.Value.IsNegative() {
		return req, invalid("discount value must not be negative")
	}
	switch req.Type {
	case domain.DiscountPercentage:
		if req.Value.GreaterThan(maxPercentage) {
			return req, invalid("percentage discount must not exceed 100")
		}
	case domain.DiscountFixed:
	default:
		return req, invalid("unknown discount type %q", req.Type)
	}
	if req.StartDate != nil && req.EndDate != nil && req.EndDate.Before(*req.StartDate) {
		return req, invalid("discount ends before it starts")
	}
	req.AppliedCategories = compactStrings(req.AppliedCategories)
	req.AppliedProducts = compactStrings(req.AppliedProducts)
	return req, nil
}

func applyDiscountRequest(d *domain.Discount, req domain.DiscountRequest, now time.Time) {
	d.Name = req.Name
	d.Type = req.Type
	d.Value = req.Value
	d.ApplyToAll = req.ApplyToAll
	d.AppliedCategories = req.AppliedCategories
	d.AppliedProducts = req.AppliedProducts
	d.StartDate = utcPtr(req.StartDate)
	d.EndDate = utcPtr(req.EndDate)
	d.Active = req.Active
	d.UpdatedAt = now
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}

func compactStrings(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || slices.Contains(out, v) {
			continue
		}
		out = append(out, v)
	}
	return out
}
