// Package seed imports a YAML fixture of categories, products, discounts and
// organisation records into the entity store.
package seed

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"retaildesk/backend/internal/domain"
	"retaildesk/backend/internal/store"
)

const dateLayout = "2006-01-02"

type Fixture struct {
	Business   *Business  `yaml:"business"`
	Categories []Category `yaml:"categories"`
	Products   []Product  `yaml:"products"`
	Discounts  []Discount `yaml:"discounts"`
	Branches   []Branch   `yaml:"branches"`
	Staff      []Staff    `yaml:"staff"`
	Expenses   []Expense  `yaml:"expenses"`
}

type Business struct {
	Name     string `yaml:"name"`
	Address  string `yaml:"address"`
	Phone    string `yaml:"phone"`
	Email    string `yaml:"email"`
	Currency string `yaml:"currency"`
	TaxID    string `yaml:"tax_id"`
}

type Category struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// Money values are strings so they keep their exact decimal form.
type Product struct {
	SKU               string           `yaml:"sku"`
	Name              string           `yaml:"name"`
	Category          string           `yaml:"category"`
	Supplier          string           `yaml:"supplier"`
	Description       string           `yaml:"description"`
	Quantity          int              `yaml:"quantity"`
	LowStockThreshold int              `yaml:"low_stock_threshold"`
	PurchaseCost      string           `yaml:"purchase_cost"`
	SellingPrice      string           `yaml:"selling_price"`
	TaxRate           string           `yaml:"tax_rate"`
	TaxInclusive      bool             `yaml:"tax_inclusive"`
	Variants          []domain.Variant `yaml:"variants"`
}

type Discount struct {
	Name       string   `yaml:"name"`
	Type       string   `yaml:"type"`
	Value      string   `yaml:"value"`
	ApplyToAll bool     `yaml:"apply_to_all"`
	Categories []string `yaml:"categories"`
	Products   []string `yaml:"products"`
	Start      string   `yaml:"start"`
	End        string   `yaml:"end"`
	Active     *bool    `yaml:"active"`
}

type Branch struct {
	Name    string `yaml:"name"`
	Address string `yaml:"address"`
	Phone   string `yaml:"phone"`
	Current bool   `yaml:"current"`
}

type Staff struct {
	Name   string `yaml:"name"`
	Email  string `yaml:"email"`
	Role   string `yaml:"role"`
	Branch string `yaml:"branch"`
	Phone  string `yaml:"phone"`
}

type Expense struct {
	Category      string `yaml:"category"`
	Amount        string `yaml:"amount"`
	Date          string `yaml:"date"`
	Notes         string `yaml:"notes"`
	PaymentMethod string `yaml:"payment_method"`
	Recurring     bool   `yaml:"recurring"`
	Frequency     string `yaml:"frequency"`
}

// Importer is the subset of the entity store the seeder writes through.
type Importer interface {
	SetBusinessInfo(ctx context.Context, info domain.BusinessInfo) (domain.BusinessInfo, error)
	CreateCategory(ctx context.Context, req domain.CategoryRequest) (domain.ProductCategory, error)
	CreateProduct(ctx context.Context, req domain.ProductCreateRequest) (domain.Product, error)
	ListProducts(ctx context.Context) []domain.Product
	CreateDiscount(ctx context.Context, req domain.DiscountRequest) (domain.Discount, error)
	CreateBranch(ctx context.Context, req domain.BranchRequest) (domain.Branch, error)
	SetCurrentBranch(ctx context.Context, id string) (domain.Branch, error)
	CreateStaff(ctx context.Context, req domain.StaffRequest) (domain.Staff, error)
	CreateExpense(ctx context.Context, req domain.ExpenseRequest) (domain.Expense, error)
}

// Result counts what Apply created. Records that already exist are skipped.
type Result struct {
	Created int
	Skipped int
}

func Parse(data []byte) (*Fixture, error) {
	var f Fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse seed YAML: %w", err)
	}
	return &f, nil
}

func LoadFromFile(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	return Parse(data)
}

// Apply writes the fixture through imp. Discount product scopes and staff
// branches refer to products by SKU and branches by name.
func Apply(ctx context.Context, imp Importer, f *Fixture) (Result, error) {
	var res Result
	track := func(err error, what string) error {
		switch {
		case err == nil:
			res.Created++
			return nil
		case errors.Is(err, store.ErrConflict):
			res.Skipped++
			return nil
		default:
			return fmt.Errorf("seed %s: %w", what, err)
		}
	}

	if f.Business != nil {
		_, err := imp.SetBusinessInfo(ctx, domain.BusinessInfo{
			Name:     f.Business.Name,
			Address:  f.Business.Address,
			Phone:    f.Business.Phone,
			Email:    f.Business.Email,
			Currency: f.Business.Currency,
			TaxID:    f.Business.TaxID,
		})
		if err := track(err, "business info"); err != nil {
			return res, err
		}
	}

	for _, c := range f.Categories {
		_, err := imp.CreateCategory(ctx, domain.CategoryRequest{Name: c.Name, Description: c.Description})
		if err := track(err, "category "+c.Name); err != nil {
			return res, err
		}
	}

	for _, p := range f.Products {
		req, err := p.request()
		if err != nil {
			return res, fmt.Errorf("seed product %s: %w", p.SKU, err)
		}
		_, err = imp.CreateProduct(ctx, req)
		if err := track(err, "product "+p.SKU); err != nil {
			return res, err
		}
	}

	skuToID := make(map[string]string)
	for _, p := range imp.ListProducts(ctx) {
		skuToID[p.SKU] = p.ID
	}
	for _, d := range f.Discounts {
		req, err := d.request(skuToID)
		if err != nil {
			return res, fmt.Errorf("seed discount %s: %w", d.Name, err)
		}
		_, err = imp.CreateDiscount(ctx, req)
		if err := track(err, "discount "+d.Name); err != nil {
			return res, err
		}
	}

	branchIDs := make(map[string]string)
	for _, b := range f.Branches {
		created, err := imp.CreateBranch(ctx, domain.BranchRequest{Name: b.Name, Address: b.Address, Phone: b.Phone, Active: true})
		if err := track(err, "branch "+b.Name); err != nil {
			return res, err
		}
		branchIDs[b.Name] = created.ID
		if b.Current && created.ID != "" {
			if _, err := imp.SetCurrentBranch(ctx, created.ID); err != nil {
				return res, fmt.Errorf("seed current branch: %w", err)
			}
		}
	}

	for _, m := range f.Staff {
		branchID := ""
		if m.Branch != "" {
			id, ok := branchIDs[m.Branch]
			if !ok {
				return res, fmt.Errorf("seed staff %s: %w: branch %q is not in the fixture", m.Email, store.ErrInvalidInput, m.Branch)
			}
			branchID = id
		}
		_, err := imp.CreateStaff(ctx, domain.StaffRequest{
			Name:     m.Name,
			Email:    m.Email,
			Role:     m.Role,
			BranchID: branchID,
			Phone:    m.Phone,
			Active:   true,
		})
		if err := track(err, "staff "+m.Email); err != nil {
			return res, err
		}
	}

	for _, e := range f.Expenses {
		req, err := e.request()
		if err != nil {
			return res, fmt.Errorf("seed expense %s: %w", e.Category, err)
		}
		_, err = imp.CreateExpense(ctx, req)
		if err := track(err, "expense "+e.Category); err != nil {
			return res, err
		}
	}

	return res, nil
}

func (p Product) request() (domain.ProductCreateRequest, error) {
	cost, err := parseMoney(p.PurchaseCost)
	if err != nil {
		return domain.ProductCreateRequest{}, err
	}
	price, err := parseMoney(p.SellingPrice)
	if err != nil {
		return domain.ProductCreateRequest{}, err
	}
	tax, err := parseMoney(p.TaxRate)
	if err != nil {
		return domain.ProductCreateRequest{}, err
	}
	return domain.ProductCreateRequest{
		SKU:               p.SKU,
		Name:              p.Name,
		Category:          p.Category,
		Supplier:          p.Supplier,
		Description:       p.Description,
		Quantity:          p.Quantity,
		LowStockThreshold: p.LowStockThreshold,
		PurchaseCost:      cost,
		SellingPrice:      price,
		TaxRate:           tax,
		TaxInclusive:      p.TaxInclusive,
		Variants:          p.Variants,
	}, nil
}

func (d Discount) request(skuToID map[string]string) (domain.DiscountRequest, error) {
	value, err := parseMoney(d.Value)
	if err != nil {
		return domain.DiscountRequest{}, err
	}
	start, err := parseDate(d.Start, false)
	if err != nil {
		return domain.DiscountRequest{}, err
	}
	end, err := parseDate(d.End, true)
	if err != nil {
		return domain.DiscountRequest{}, err
	}

	products := make([]string, 0, len(d.Products))
	for _, sku := range d.Products {
		id, ok := skuToID[strings.ToUpper(strings.TrimSpace(sku))]
		if !ok {
			return domain.DiscountRequest{}, fmt.Errorf("%w: unknown sku %q", store.ErrInvalidInput, sku)
		}
		products = append(products, id)
	}

	active := true
	if d.Active != nil {
		active = *d.Active
	}
	return domain.DiscountRequest{
		Name:              d.Name,
		Type:              domain.DiscountType(d.Type),
		Value:             value,
		ApplyToAll:        d.ApplyToAll,
		AppliedCategories: d.Categories,
		AppliedProducts:   products,
		StartDate:         start,
		EndDate:           end,
		Active:            active,
	}, nil
}

func (e Expense) request() (domain.ExpenseRequest, error) {
	amount, err := parseMoney(e.Amount)
	if err != nil {
		return domain.ExpenseRequest{}, err
	}
	date, err := parseDate(e.Date, false)
	if err != nil {
		return domain.ExpenseRequest{}, err
	}
	req := domain.ExpenseRequest{
		Category:      e.Category,
		Amount:        amount,
		Notes:         e.Notes,
		PaymentMethod: e.PaymentMethod,
		Recurring:     e.Recurring,
		Frequency:     e.Frequency,
	}
	if date != nil {
		req.Date = *date
	}
	return req, nil
}

func parseMoney(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, nil
	}
	v, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q is not a number", store.ErrInvalidInput, raw)
	}
	return v, nil
}

// parseDate reads a YYYY-MM-DD date in UTC. An end date covers the whole day.
func parseDate(raw string, endOfDay bool) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %q is not a YYYY-MM-DD date", store.ErrInvalidInput, raw)
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Millisecond)
	}
	return &t, nil
}
