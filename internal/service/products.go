package service

import (
	"context"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"retaildesk/backend/internal/domain"
	"retaildesk/backend/internal/store"
	"retaildesk/backend/internal/xid"
)

var maxTaxRate = decimal.NewFromInt(100)

func (s *Service) ListProducts(_ context.Context) []domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneSlice(s.products)
}

func (s *Service) GetProduct(_ context.Context, id string) (domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := s.productIndex(id)
	if idx < 0 {
		return domain.Product{}, notFound("product", id)
	}
	return s.products[idx], nil
}

func (s *Service) CreateProduct(ctx context.Context, req domain.ProductCreateRequest) (domain.Product, error) {
	req.SKU = normalizeSKU(req.SKU)
	req.Name = strings.TrimSpace(req.Name)
	req.Category = strings.TrimSpace(req.Category)

	if req.SKU == "" || req.Name == "" {
		return domain.Product{}, invalid("sku and name are required")
	}
	if req.Quantity < 0 || req.LowStockThreshold < 0 {
		return domain.Product{}, invalid("quantity and threshold must not be negative")
	}
	if err := validatePricing(req.PurchaseCost, req.SellingPrice, req.TaxRate); err != nil {
		return domain.Product{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.skuTaken(req.SKU, "") {
		return domain.Product{}, conflict("sku %s already exists", req.SKU)
	}

	now := s.now()
	product := domain.Product{
		ID:                xid.New("prod"),
		SKU:               req.SKU,
		Name:              req.Name,
		Category:          req.Category,
		Supplier:          strings.TrimSpace(req.Supplier),
		Description:       strings.TrimSpace(req.Description),
		Quantity:          req.Quantity,
		LowStockThreshold: req.LowStockThreshold,
		PurchaseCost:      req.PurchaseCost,
		SellingPrice:      req.SellingPrice,
		TaxRate:           req.TaxRate,
		TaxInclusive:      req.TaxInclusive,
		Variants:          slices.Clone(req.Variants),
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	s.products = append(s.products, product)
	s.save(ctx, store.KeyProducts, s.products)
	return product, nil
}

func (s *Service) UpdateProduct(ctx context.Context, id string, req domain.ProductUpdateRequest) (domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.productIndex(id)
	if idx < 0 {
		return domain.Product{}, notFound("product", id)
	}

	next := s.products[idx]
	if req.SKU != nil {
		next.SKU = normalizeSKU(*req.SKU)
	}
	if req.Name != nil {
		next.Name = strings.TrimSpace(*req.Name)
	}
	if req.Category != nil {
		next.Category = strings.TrimSpace(*req.Category)
	}
	if req.Supplier != nil {
		next.Supplier = strings.TrimSpace(*req.Supplier)
	}
	if req.Description != nil {
		next.Description = strings.TrimSpace(*req.Description)
	}
	if req.LowStockThreshold != nil {
		next.LowStockThreshold = *req.LowStockThreshold
	}
	if req.PurchaseCost != nil {
		next.PurchaseCost = *req.PurchaseCost
	}
	if req.SellingPrice != nil {
		next.SellingPrice = *req.SellingPrice
	}
	if req.TaxRate != nil {
		next.TaxRate = *req.TaxRate
	}
	if req.TaxInclusive != nil {
		next.TaxInclusive = *req.TaxInclusive
	}
	if req.Variants != nil {
		next.Variants = slices.Clone(req.Variants)
	}

	if next.SKU == "" || next.Name == "" {
		return domain.Product{}, invalid("sku and name are required")
	}
	if next.LowStockThreshold < 0 {
		return domain.Product{}, invalid("threshold must not be negative")
	}
	if err := validatePricing(next.PurchaseCost, next.SellingPrice, next.TaxRate); err != nil {
		return domain.Product{}, err
	}
	if s.skuTaken(next.SKU, next.ID) {
		return domain.Product{}, conflict("sku %s already exists", next.SKU)
	}

	next.UpdatedAt = s.now()
	s.products[idx] = next
	s.save(ctx, store.KeyProducts, s.products)
	return next, nil
}

// DeleteProduct removes the product only. Transactions keep their dangling
// product reference.
func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.productIndex(id)
	if idx < 0 {
		return notFound("product", id)
	}
	s.products = slices.Delete(s.products, idx, idx+1)
	s.save(ctx, store.KeyProducts, s.products)
	return nil
}

// LowStockProducts lists products whose quantity is at or below their
// threshold.
func (s *Service) LowStockProducts(_ context.Context) []domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()

	low := make([]domain.Product, 0)
	for _, p := range s.products {
		if p.IsLowStock() {
			low = append(low, p)
		}
	}
	return low
}

func (s *Service) ListCategories(_ context.Context) []domain.ProductCategory {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneSlice(s.categories)
}

func (s *Service) CreateCategory(ctx context.Context, req domain.CategoryRequest) (domain.ProductCategory, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.ProductCategory{}, invalid("category name is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.categoryNameTaken(name, "") {
		return domain.ProductCategory{}, conflict("category %s already exists", name)
	}
	category := domain.ProductCategory{
		ID:          xid.New("cat"),
		Name:        name,
		Description: strings.TrimSpace(req.Description),
		CreatedAt:   s.now(),
	}
	s.categories = append(s.categories, category)
	s.save(ctx, store.KeyCategories, s.categories)
	return category, nil
}

// UpdateCategory renames a category. Products keep the old category string.
func (s *Service) UpdateCategory(ctx context.Context, id string, req domain.CategoryRequest) (domain.ProductCategory, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.ProductCategory{}, invalid("category name is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := slices.IndexFunc(s.categories, func(c domain.ProductCategory) bool { return c.ID == id })
	if idx < 0 {
		return domain.ProductCategory{}, notFound("category", id)
	}
	if s.categoryNameTaken(name, id) {
		return domain.ProductCategory{}, conflict("category %s already exists", name)
	}
	s.categories[idx].Name = name
	s.categories[idx].Description = strings.TrimSpace(req.Description)
	s.save(ctx, store.KeyCategories, s.categories)
	return s.categories[idx], nil
}

func (s *Service) DeleteCategory(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := slices.IndexFunc(s.categories, func(c domain.ProductCategory) bool { return c.ID == id })
	if idx < 0 {
		return notFound("category", id)
	}
	s.categories = slices.Delete(s.categories, idx, idx+1)
	s.save(ctx, store.KeyCategories, s.categories)
	return nil
}

func (s *Service) productIndex(id string) int {
	return slices.IndexFunc(s.products, func(p domain.Product) bool { return p.ID == id })
}

func (s *Service) skuTaken(sku string, exceptID string) bool {
	return slices.ContainsFunc(s.products, func(p domain.Product) bool {
		return p.ID != exceptID && strings.EqualFold(p.SKU, sku)
	})
}

func (s *Service) categoryNameTaken(name string, exceptID string) bool {
	return slices.ContainsFunc(s.categories, func(c domain.ProductCategory) bool {
		return c.ID != exceptID && strings.EqualFold(c.Name, name)
	})
}

func normalizeSKU(sku string) string {
	return strings.ToUpper(strings.TrimSpace(sku))
}

func validatePricing(cost, price, taxRate decimal.Decimal) error {
	if cost.IsNegative() || price.IsNegative() {
		return invalid("prices must not be negative")
	}
	if taxRate.IsNegative() || taxRate.GreaterThan(maxTaxRate) {
		return invalid("tax rate must be between 0 and 100")
	}
	return nil
}
