package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionSale       TransactionType = "sale"
	TransactionPurchase   TransactionType = "purchase"
	TransactionAdjustment TransactionType = "adjustment"
)

type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

// UnknownProductName labels report rows whose product no longer exists.
const UnknownProductName = "Unknown Product"

type Variant struct {
	Name  string `json:"name" yaml:"name"`
	Value string `json:"value" yaml:"value"`
}

type Product struct {
	ID                string          `json:"id"`
	SKU               string          `json:"sku"`
	Name              string          `json:"name"`
	Category          string          `json:"category"`
	Supplier          string          `json:"supplier,omitempty"`
	Description       string          `json:"description,omitempty"`
	Quantity          int             `json:"quantity"`
	LowStockThreshold int             `json:"low_stock_threshold"`
	PurchaseCost      decimal.Decimal `json:"purchase_cost"`
	SellingPrice      decimal.Decimal `json:"selling_price"`
	TaxRate           decimal.Decimal `json:"tax_rate"`
	TaxInclusive      bool            `json:"tax_inclusive"`
	Variants          []Variant       `json:"variants,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// IsLowStock reports quantity at or below the product threshold.
func (p Product) IsLowStock() bool {
	return p.Quantity <= p.LowStockThreshold
}

type ProductCreateRequest struct {
	SKU               string          `json:"sku"`
	Name              string          `json:"name"`
	Category          string          `json:"category"`
	Supplier          string          `json:"supplier"`
	Description       string          `json:"description"`
	Quantity          int             `json:"quantity"`
	LowStockThreshold int             `json:"low_stock_threshold"`
	PurchaseCost      decimal.Decimal `json:"purchase_cost"`
	SellingPrice      decimal.Decimal `json:"selling_price"`
	TaxRate           decimal.Decimal `json:"tax_rate"`
	TaxInclusive      bool            `json:"tax_inclusive"`
	Variants          []Variant       `json:"variants"`
}

type ProductUpdateRequest struct {
	SKU               *string          `json:"sku,omitempty"`
	Name              *string          `json:"name,omitempty"`
	Category          *string          `json:"category,omitempty"`
	Supplier          *string          `json:"supplier,omitempty"`
	Description       *string          `json:"description,omitempty"`
	LowStockThreshold *int             `json:"low_stock_threshold,omitempty"`
	PurchaseCost      *decimal.Decimal `json:"purchase_cost,omitempty"`
	SellingPrice      *decimal.Decimal `json:"selling_price,omitempty"`
	TaxRate           *decimal.Decimal `json:"tax_rate,omitempty"`
	TaxInclusive      *bool            `json:"tax_inclusive,omitempty"`
	Variants          []Variant        `json:"variants,omitempty"`
}

type ProductCategory struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type CategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type Discount struct {
	ID                string          `json:"id"`
	Name              string          `json:"name"`
	Type              DiscountType    `json:"type"`
	Value             decimal.Decimal `json:"value"`
	ApplyToAll        bool            `json:"apply_to_all"`
	AppliedCategories []string        `json:"applied_categories,omitempty"`
	AppliedProducts   []string        `json:"applied_products,omitempty"`
	StartDate         *time.Time      `json:"start_date,omitempty"`
	EndDate           *time.Time      `json:"end_date,omitempty"`
	Active            bool            `json:"active"`
	UsageCount        int             `json:"usage_count"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

type DiscountRequest struct {
	Name              string          `json:"name"`
	Type              DiscountType    `json:"type"`
	Value             decimal.Decimal `json:"value"`
	ApplyToAll        bool            `json:"apply_to_all"`
	AppliedCategories []string        `json:"applied_categories"`
	AppliedProducts   []string        `json:"applied_products"`
	StartDate         *time.Time      `json:"start_date,omitempty"`
	EndDate           *time.Time      `json:"end_date,omitempty"`
	Active            bool            `json:"active"`
}

type PriceQuote struct {
	ProductID       string          `json:"product_id"`
	OriginalPrice   decimal.Decimal `json:"original_price"`
	DiscountedPrice decimal.Decimal `json:"discounted_price"`
	DiscountIDs     []string        `json:"discount_ids,omitempty"`
}

type Transaction struct {
	ID            string            `json:"id"`
	ProductID     string            `json:"product_id"`
	BranchID      string            `json:"branch_id,omitempty"`
	Type          TransactionType   `json:"type"`
	Quantity      int               `json:"quantity"`
	OriginalPrice decimal.Decimal   `json:"original_price"`
	ActualPrice   decimal.Decimal   `json:"actual_price"`
	PriceDelta    decimal.Decimal   `json:"price_delta"`
	TotalAmount   decimal.Decimal   `json:"total_amount"`
	Variants      map[string]string `json:"variants,omitempty"`
	Customer      string            `json:"customer,omitempty"`
	PaymentMethod string            `json:"payment_method,omitempty"`
	Notes         string            `json:"notes,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	CreatedBy     string            `json:"created_by"`
}

// TransactionDraft is the input of the non-cart transaction flow. A nil price
// falls back to the product's current price for the transaction type.
type TransactionDraft struct {
	ProductID     string           `json:"product_id"`
	Type          TransactionType  `json:"type"`
	Quantity      int              `json:"quantity"`
	OriginalPrice *decimal.Decimal `json:"original_price,omitempty"`
	ActualPrice   *decimal.Decimal `json:"actual_price,omitempty"`
	Customer      string           `json:"customer,omitempty"`
	PaymentMethod string           `json:"payment_method,omitempty"`
	Notes         string           `json:"notes,omitempty"`
}

type AddLineRequest struct {
	ProductID    string            `json:"product_id"`
	Quantity     int               `json:"quantity"`
	LineDiscount decimal.Decimal   `json:"line_discount"`
	Variants     map[string]string `json:"variants,omitempty"`
}

type EditLineRequest struct {
	ProductID    string            `json:"product_id"`
	Variants     map[string]string `json:"variants,omitempty"`
	Quantity     *int              `json:"quantity,omitempty"`
	UnitPrice    *decimal.Decimal  `json:"unit_price,omitempty"`
	LineDiscount *decimal.Decimal  `json:"line_discount,omitempty"`
}

type LowStockWarning struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	Threshold int    `json:"threshold"`
}

type CommitResult struct {
	Transactions []Transaction     `json:"transactions"`
	Total        decimal.Decimal   `json:"total"`
	Skipped      []string          `json:"skipped_product_ids,omitempty"`
	LowStock     []LowStockWarning `json:"low_stock,omitempty"`
}

type Expense struct {
	ID            string          `json:"id"`
	Category      string          `json:"category"`
	Amount        decimal.Decimal `json:"amount"`
	Date          time.Time       `json:"date"`
	Notes         string          `json:"notes,omitempty"`
	PaymentMethod string          `json:"payment_method,omitempty"`
	Recurring     bool            `json:"recurring"`
	Frequency     string          `json:"frequency,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

type ExpenseRequest struct {
	Category      string          `json:"category"`
	Amount        decimal.Decimal `json:"amount"`
	Date          time.Time       `json:"date"`
	Notes         string          `json:"notes"`
	PaymentMethod string          `json:"payment_method"`
	Recurring     bool            `json:"recurring"`
	Frequency     string          `json:"frequency"`
}

type Branch struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

type BranchRequest struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
	Active  bool   `json:"active"`
}

type Staff struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	BranchID  string    `json:"branch_id,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

type StaffRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	BranchID string `json:"branch_id"`
	Phone    string `json:"phone"`
	Active   bool   `json:"active"`
}

type BusinessInfo struct {
	Name      string    `json:"name"`
	Address   string    `json:"address,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Email     string    `json:"email,omitempty"`
	Currency  string    `json:"currency,omitempty"`
	TaxID     string    `json:"tax_id,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

type TopSeller struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	Revenue   decimal.Decimal `json:"revenue"`
}

type ExpenseCategoryTotal struct {
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
}

type FinancialSummary struct {
	Start              time.Time              `json:"start"`
	End                time.Time              `json:"end"`
	TotalSales         decimal.Decimal        `json:"total_sales"`
	TotalExpenses      decimal.Decimal        `json:"total_expenses"`
	Profit             decimal.Decimal        `json:"profit"`
	TotalPurchases     decimal.Decimal        `json:"total_purchases"`
	SalesCount         int                    `json:"sales_count"`
	ItemsSold          int                    `json:"items_sold"`
	TopSellingProducts []TopSeller            `json:"top_selling_products"`
	ExpensesByCategory []ExpenseCategoryTotal `json:"expenses_by_category"`
}

// UserAccount is the persisted login credential for the local session.
type UserAccount struct {
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"password_hash"`
	Role         string    `json:"role"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
}

type SessionUser struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

type Session struct {
	Authenticated bool         `json:"authenticated"`
	User          *SessionUser `json:"user,omitempty"`
	LoggedInAt    *time.Time   `json:"logged_in_at,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string      `json:"access_token"`
	ExpiresAt   string      `json:"expires_at"`
	User        SessionUser `json:"user"`
}

type Actor struct {
	Email string
	Role  string
}

const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleCashier = "cashier"
)
