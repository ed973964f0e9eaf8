package service

import (
	"context"
	"slices"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"retaildesk/backend/internal/cart"
	"retaildesk/backend/internal/domain"
	"retaildesk/backend/internal/store"
	"retaildesk/backend/internal/xid"
)

func (s *Service) ListTransactions(_ context.Context) []domain.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneSlice(s.transactions)
}

// AddTransaction records a direct stock movement outside the cart. Sales take
// stock away, purchases add it and adjustments apply a signed delta clamped
// at zero.
func (s *Service) AddTransaction(ctx context.Context, draft domain.TransactionDraft) (domain.Transaction, error) {
	draft.ProductID = strings.TrimSpace(draft.ProductID)
	if draft.ProductID == "" {
		return domain.Transaction{}, invalid("product is required")
	}
	switch draft.Type {
	case domain.TransactionSale, domain.TransactionPurchase:
		if draft.Quantity < 1 {
			return domain.Transaction{}, invalid("quantity must be at least 1")
		}
	case domain.TransactionAdjustment:
		if draft.Quantity == 0 {
			return domain.Transaction{}, invalid("adjustment quantity must not be zero")
		}
	default:
		return domain.Transaction{}, invalid("unknown transaction type %q", draft.Type)
	}
	if draft.OriginalPrice != nil && draft.OriginalPrice.IsNegative() {
		return domain.Transaction{}, invalid("original price must not be negative")
	}
	if draft.ActualPrice != nil && draft.ActualPrice.IsNegative() {
		return domain.Transaction{}, invalid("actual price must not be negative")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.productIndex(draft.ProductID)
	if idx < 0 {
		return domain.Transaction{}, notFound("product", draft.ProductID)
	}
	product := &s.products[idx]

	original := product.SellingPrice
	if draft.Type == domain.TransactionPurchase {
		original = product.PurchaseCost
	}
	if draft.OriginalPrice != nil {
		original = *draft.OriginalPrice
	}
	actual := original
	if draft.ActualPrice != nil {
		actual = *draft.ActualPrice
	}

	switch draft.Type {
	case domain.TransactionSale:
		product.Quantity -= draft.Quantity
	case domain.TransactionPurchase:
		product.Quantity += draft.Quantity
	case domain.TransactionAdjustment:
		product.Quantity = max(0, product.Quantity+draft.Quantity)
	}
	now := s.now()
	product.UpdatedAt = now

	tx := domain.Transaction{
		ID:            xid.New("tx"),
		ProductID:     product.ID,
		BranchID:      s.effectiveBranchLocked(ctx),
		Type:          draft.Type,
		Quantity:      draft.Quantity,
		OriginalPrice: original,
		ActualPrice:   actual,
		PriceDelta:    actual.Sub(original),
		TotalAmount:   actual.Mul(decimal.NewFromInt(int64(draft.Quantity))),
		Customer:      strings.TrimSpace(draft.Customer),
		PaymentMethod: strings.TrimSpace(draft.PaymentMethod),
		Notes:         strings.TrimSpace(draft.Notes),
		CreatedAt:     now,
		CreatedBy:     s.actorEmail(ctx),
	}
	s.transactions = append(s.transactions, tx)

	if product.IsLowStock() {
		s.log.Info("product low on stock",
			zap.String("product_id", product.ID),
			zap.Int("quantity", product.Quantity),
			zap.Int("threshold", product.LowStockThreshold),
		)
	}

	s.save(ctx, store.KeyProducts, s.products)
	s.save(ctx, store.KeyTransactions, s.transactions)
	return tx, nil
}

// AddLineToCart stages a product at its discounted price as of now. The price
// is not re-evaluated at commit.
func (s *Service) AddLineToCart(_ context.Context, c *cart.Cart, req domain.AddLineRequest) (cart.Line, error) {
	s.mu.RLock()
	idx := s.productIndex(req.ProductID)
	if idx < 0 {
		s.mu.RUnlock()
		return cart.Line{}, notFound("product", req.ProductID)
	}
	product := s.products[idx]
	quote := s.resolver.Quote(product, s.discounts)
	s.mu.RUnlock()

	for name, value := range req.Variants {
		if !containsVariant(product.Variants, name, value) {
			return cart.Line{}, invalid("product %s has no variant %s=%s", product.ID, name, value)
		}
	}

	line := cart.Line{
		ProductID:    product.ID,
		Name:         product.Name,
		Quantity:     req.Quantity,
		UnitPrice:    quote.DiscountedPrice,
		LineDiscount: req.LineDiscount,
		Variants:     req.Variants,
		DiscountIDs:  quote.DiscountIDs,
	}
	if err := c.Add(line); err != nil {
		return cart.Line{}, err
	}
	staged, _ := c.Find(product.ID, req.Variants)
	return staged, nil
}

// EditLine patches the staged line for the product and variant selection in
// req. Editing a line that is not staged changes nothing.
func (s *Service) EditLine(_ context.Context, c *cart.Cart, req domain.EditLineRequest) error {
	found, err := c.Edit(req.ProductID, req.Variants, cart.Patch{
		Quantity:     req.Quantity,
		UnitPrice:    req.UnitPrice,
		LineDiscount: req.LineDiscount,
	})
	if err != nil {
		return err
	}
	if !found {
		s.log.Debug("edit ignored, line not staged", zap.String("product_id", req.ProductID))
	}
	return nil
}

func (s *Service) RemoveLine(_ context.Context, c *cart.Cart, index int) {
	c.Remove(index)
}

// CommitCart turns every staged line into a sale. Lines whose product has been
// deleted are skipped. The cart is cleared once the sales are recorded.
func (s *Service) CommitCart(ctx context.Context, c *cart.Cart) (domain.CommitResult, error) {
	lines := c.Lines()
	if len(lines) == 0 {
		return domain.CommitResult{}, invalid("cart is empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	createdBy := s.actorEmail(ctx)
	branchID := s.effectiveBranchLocked(ctx)

	result := domain.CommitResult{
		Transactions: make([]domain.Transaction, 0, len(lines)),
		Total:        decimal.Zero,
	}
	usedDiscounts := false
	for _, line := range lines {
		idx := s.productIndex(line.ProductID)
		if idx < 0 {
			s.log.Warn("skipping cart line for missing product", zap.String("product_id", line.ProductID))
			result.Skipped = append(result.Skipped, line.ProductID)
			continue
		}
		product := &s.products[idx]

		actual := line.NetPrice()
		total := line.Total()
		tx := domain.Transaction{
			ID:            xid.New("tx"),
			ProductID:     product.ID,
			BranchID:      branchID,
			Type:          domain.TransactionSale,
			Quantity:      line.Quantity,
			OriginalPrice: line.UnitPrice,
			ActualPrice:   actual,
			PriceDelta:    actual.Sub(line.UnitPrice),
			TotalAmount:   total,
			Variants:      line.Variants,
			CreatedAt:     now,
			CreatedBy:     createdBy,
		}
		s.transactions = append(s.transactions, tx)
		result.Transactions = append(result.Transactions, tx)
		result.Total = result.Total.Add(total)

		product.Quantity -= line.Quantity
		product.UpdatedAt = now
		if product.IsLowStock() {
			warning := domain.LowStockWarning{
				ProductID: product.ID,
				Name:      product.Name,
				Quantity:  product.Quantity,
				Threshold: product.LowStockThreshold,
			}
			result.LowStock = append(result.LowStock, warning)
			s.log.Info("product low on stock",
				zap.String("product_id", product.ID),
				zap.Int("quantity", product.Quantity),
				zap.Int("threshold", product.LowStockThreshold),
			)
		}

		for _, discountID := range line.DiscountIDs {
			if i := s.discountIndex(discountID); i >= 0 {
				s.discounts[i].UsageCount++
				usedDiscounts = true
			}
		}
	}

	c.Clear()
	if len(result.Transactions) > 0 {
		s.save(ctx, store.KeyProducts, s.products)
		s.save(ctx, store.KeyTransactions, s.transactions)
	}
	if usedDiscounts {
		s.save(ctx, store.KeyDiscounts, s.discounts)
	}
	return result, nil
}

// lowStockCount is used by the session summary log line on login.
func (s *Service) lowStockCount() int {
	count := 0
	for _, p := range s.products {
		if p.IsLowStock() {
			count++
		}
	}
	return count
}

func containsVariant(variants []domain.Variant, name, value string) bool {
	return slices.ContainsFunc(variants, func(v domain.Variant) bool {
		return v.Name == name && v.Value == value
	})
}
