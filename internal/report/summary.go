// Package report aggregates transactions and expenses into financial summaries.
package report

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"retaildesk/backend/internal/domain"
)

// TopSellerLimit caps the top selling product list.
const TopSellerLimit = 5

// Summarize computes the summary for [start, end], both bounds inclusive.
// Sales whose product has since been deleted are reported under
// domain.UnknownProductName.
func Summarize(transactions []domain.Transaction, expenses []domain.Expense, products []domain.Product, start, end time.Time) domain.FinancialSummary {
	summary := domain.FinancialSummary{
		Start:              start,
		End:                end,
		TotalSales:         decimal.Zero,
		TotalExpenses:      decimal.Zero,
		TotalPurchases:     decimal.Zero,
		TopSellingProducts: []domain.TopSeller{},
		ExpensesByCategory: []domain.ExpenseCategoryTotal{},
	}

	names := make(map[string]string, len(products))
	for _, p := range products {
		names[p.ID] = p.Name
	}

	sellers := make([]domain.TopSeller, 0)
	sellerIdx := make(map[string]int)
	for _, tx := range transactions {
		if !inRange(tx.CreatedAt, start, end) {
			continue
		}
		switch tx.Type {
		case domain.TransactionSale:
			summary.TotalSales = summary.TotalSales.Add(tx.TotalAmount)
			summary.SalesCount++
			summary.ItemsSold += tx.Quantity

			i, ok := sellerIdx[tx.ProductID]
			if !ok {
				name, known := names[tx.ProductID]
				if !known {
					name = domain.UnknownProductName
				}
				i = len(sellers)
				sellerIdx[tx.ProductID] = i
				sellers = append(sellers, domain.TopSeller{ProductID: tx.ProductID, Name: name, Revenue: decimal.Zero})
			}
			sellers[i].Quantity += tx.Quantity
			sellers[i].Revenue = sellers[i].Revenue.Add(tx.TotalAmount)
		case domain.TransactionPurchase:
			summary.TotalPurchases = summary.TotalPurchases.Add(tx.TotalAmount)
		}
	}

	byCategory := make(map[string]decimal.Decimal)
	for _, e := range expenses {
		if !inRange(e.Date, start, end) {
			continue
		}
		summary.TotalExpenses = summary.TotalExpenses.Add(e.Amount)
		byCategory[e.Category] = byCategory[e.Category].Add(e.Amount)
	}
	for category, amount := range byCategory {
		summary.ExpensesByCategory = append(summary.ExpensesByCategory, domain.ExpenseCategoryTotal{Category: category, Amount: amount})
	}
	sort.Slice(summary.ExpensesByCategory, func(i, j int) bool {
		return summary.ExpensesByCategory[i].Category < summary.ExpensesByCategory[j].Category
	})

	sort.SliceStable(sellers, func(i, j int) bool {
		return sellers[i].Revenue.GreaterThan(sellers[j].Revenue)
	})
	if len(sellers) > TopSellerLimit {
		sellers = sellers[:TopSellerLimit]
	}
	summary.TopSellingProducts = sellers
	summary.Profit = summary.TotalSales.Sub(summary.TotalExpenses)
	return summary
}

func inRange(t, start, end time.Time) bool {
	return !t.Before(start) && !t.After(end)
}
