package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"retaildesk/backend/internal/domain"
	"retaildesk/backend/internal/store"
)

type Store struct {
	mu     sync.RWMutex
	values map[string][]byte
	writes int
}

func New() *Store {
	return &Store{values: make(map[string][]byte)}
}

// NewSeeded returns a store pre-populated with a small boutique catalog for
// demo mode and tests.
func NewSeeded() *Store {
	now := time.Now().UTC()
	categories := []domain.ProductCategory{
		{ID: "cat-dresses", Name: "Dresses", CreatedAt: now},
		{ID: "cat-bags", Name: "Bags", CreatedAt: now},
		{ID: "cat-shoes", Name: "Shoes", CreatedAt: now},
		{ID: "cat-accessories", Name: "Accessories", CreatedAt: now},
	}
	products := []domain.Product{
		seedProduct("prod-dress-01", "DRS-001", "Linen Summer Dress", "Dresses", 24, 5, "18.00", "45.00", now,
			domain.Variant{Name: "Size", Value: "S"}, domain.Variant{Name: "Size", Value: "M"}, domain.Variant{Name: "Size", Value: "L"}),
		seedProduct("prod-dress-02", "DRS-002", "Wrap Midi Dress", "Dresses", 12, 4, "25.00", "60.00", now,
			domain.Variant{Name: "Color", Value: "Black"}, domain.Variant{Name: "Color", Value: "Red"}),
		seedProduct("prod-bag-01", "BAG-001", "Canvas Tote", "Bags", 30, 6, "8.50", "22.00", now),
		seedProduct("prod-bag-02", "BAG-002", "Leather Crossbody", "Bags", 6, 3, "40.00", "95.00", now),
		seedProduct("prod-shoe-01", "SHO-001", "Espadrille Flats", "Shoes", 18, 5, "14.00", "38.00", now,
			domain.Variant{Name: "Size", Value: "38"}, domain.Variant{Name: "Size", Value: "39"}, domain.Variant{Name: "Size", Value: "40"}),
		seedProduct("prod-acc-01", "ACC-001", "Silk Scarf", "Accessories", 40, 8, "6.00", "19.00", now),
		seedProduct("prod-acc-02", "ACC-002", "Beaded Bracelet", "Accessories", 3, 5, "2.50", "9.00", now),
	}
	discounts := []domain.Discount{
		{
			ID:                "disc-bags-10",
			Name:              "Bag Week",
			Type:              domain.DiscountPercentage,
			Value:             decimal.NewFromInt(10),
			AppliedCategories: []string{"Bags"},
			Active:            true,
			CreatedAt:         now,
			UpdatedAt:         now,
		},
	}
	branches := []domain.Branch{
		{ID: "branch-main", Name: "Main Street", Address: "12 Main Street", Active: true, CreatedAt: now},
		{ID: "branch-mall", Name: "City Mall", Address: "Level 2, City Mall", Active: true, CreatedAt: now},
	}
	staff := []domain.Staff{
		{ID: "staff-owner", Name: "Store Owner", Email: "owner@retaildesk.local", Role: domain.RoleAdmin, BranchID: "branch-main", Active: true, CreatedAt: now},
		{ID: "staff-mall", Name: "Mall Cashier", Email: "cashier@retaildesk.local", Role: domain.RoleCashier, BranchID: "branch-mall", Active: true, CreatedAt: now},
	}
	info := domain.BusinessInfo{Name: "RetailDesk Boutique", Currency: "USD", UpdatedAt: now}

	s := New()
	for key, value := range map[string]any{
		store.KeyCategories:    categories,
		store.KeyProducts:      products,
		store.KeyDiscounts:     discounts,
		store.KeyBranches:      branches,
		store.KeyStaff:         staff,
		store.KeyBusinessInfo:  info,
		store.KeyCurrentBranch: "branch-main",
	} {
		payload, err := json.Marshal(value)
		if err != nil {
			panic(fmt.Sprintf("memory: encode seed %s: %v", key, err))
		}
		s.values[key] = payload
	}
	return s
}

func seedProduct(id, sku, name, category string, qty, threshold int, cost, price string, now time.Time, variants ...domain.Variant) domain.Product {
	return domain.Product{
		ID:                id,
		SKU:               sku,
		Name:              name,
		Category:          category,
		Supplier:          "Local Atelier",
		Quantity:          qty,
		LowStockThreshold: threshold,
		PurchaseCost:      decimal.RequireFromString(cost),
		SellingPrice:      decimal.RequireFromString(price),
		TaxRate:           decimal.Zero,
		Variants:          variants,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

func (s *Store) Load(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.values[key]
	if !ok {
		return nil, store.ErrNotFound
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

func (s *Store) Save(_ context.Context, key string, value []byte) error {
	if key == "" {
		return store.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored := make([]byte, len(value))
	copy(stored, value)
	s.values[key] = stored
	s.writes++
	return nil
}

// Writes reports how many saves the store has accepted.
func (s *Store) Writes() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.writes
}
