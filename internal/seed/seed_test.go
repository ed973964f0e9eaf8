package seed

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retaildesk/backend/internal/service"
	"retaildesk/backend/internal/store"
	"retaildesk/backend/internal/store/memory"
)

const fixtureYAML = `
business:
  name: Harbour Goods
  currency: eur
categories:
  - name: Bags
  - name: Shoes
products:
  - sku: bag-100
    name: Market Basket
    category: Bags
    quantity: 12
    low_stock_threshold: 3
    purchase_cost: "7.25"
    selling_price: "19.90"
  - sku: sho-100
    name: Canvas Sneaker
    category: Shoes
    quantity: 8
    low_stock_threshold: 2
    purchase_cost: "20"
    selling_price: "54.00"
    variants:
      - name: Size
        value: "40"
      - name: Size
        value: "41"
discounts:
  - name: Basket launch
    type: fixed
    value: "2.40"
    products: [BAG-100]
    start: "2026-01-01"
    end: "2026-01-31"
  - name: Dormant
    type: percentage
    value: "15"
    apply_to_all: true
    active: false
branches:
  - name: Harbour Front
    current: true
  - name: Old Town
staff:
  - name: Mara
    email: mara@harbour.example
    role: manager
    branch: Old Town
expenses:
  - category: Rent
    amount: "900"
    date: "2026-01-05"
`

func newImporter(t *testing.T) *service.Service {
	t.Helper()
	svc := service.New(memory.New(), nil)
	require.NoError(t, svc.Load(context.Background()))
	return svc
}

func TestApplyFixture(t *testing.T) {
	f, err := Parse([]byte(fixtureYAML))
	require.NoError(t, err)
	svc := newImporter(t)
	ctx := context.Background()

	res, err := Apply(ctx, svc, f)
	require.NoError(t, err)
	assert.Equal(t, 11, res.Created)
	assert.Zero(t, res.Skipped)

	assert.Equal(t, "EUR", svc.BusinessInfo(ctx).Currency)
	products := svc.ListProducts(ctx)
	require.Len(t, products, 2)
	assert.Equal(t, "BAG-100", products[0].SKU)
	assert.Equal(t, "19.9", products[0].SellingPrice.String())
	assert.Len(t, products[1].Variants, 2)

	discounts := svc.ListDiscounts(ctx)
	require.Len(t, discounts, 2)
	assert.Equal(t, []string{products[0].ID}, discounts[0].AppliedProducts)
	require.NotNil(t, discounts[0].EndDate)
	assert.Equal(t, time.Date(2026, 1, 31, 23, 59, 59, 999000000, time.UTC), *discounts[0].EndDate)
	assert.False(t, discounts[1].Active)

	current, err := svc.CurrentBranch(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Harbour Front", current.Name)

	staff := svc.ListStaff(ctx)
	require.Len(t, staff, 1)
	assert.Equal(t, svc.ListBranches(ctx)[1].ID, staff[0].BranchID)

	expenses := svc.ListExpenses(ctx)
	require.Len(t, expenses, 1)
	assert.Equal(t, time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC), expenses[0].Date)
}

func TestApplySkipsExistingRecords(t *testing.T) {
	f, err := Parse([]byte(`
categories:
  - name: Bags
products:
  - sku: BAG-1
    name: Tote
    selling_price: "10"
`))
	require.NoError(t, err)
	svc := newImporter(t)
	ctx := context.Background()

	_, err = Apply(ctx, svc, f)
	require.NoError(t, err)
	res, err := Apply(ctx, svc, f)
	require.NoError(t, err)

	assert.Zero(t, res.Created)
	assert.Equal(t, 2, res.Skipped)
	assert.Len(t, svc.ListProducts(ctx), 1)
}

func TestApplyRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{name: "bad price", yaml: "products:\n  - sku: X\n    name: X\n    selling_price: cheap\n"},
		{name: "bad date", yaml: "expenses:\n  - category: Rent\n    amount: \"5\"\n    date: 05/01/2026\n"},
		{name: "unknown sku", yaml: "discounts:\n  - name: D\n    type: fixed\n    value: \"1\"\n    products: [NOPE]\n"},
		{name: "unknown branch", yaml: "staff:\n  - name: S\n    email: s@example.com\n    role: cashier\n    branch: Nowhere\n"},
		{name: "invalid percentage", yaml: "discounts:\n  - name: D\n    type: percentage\n    value: \"150\"\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f, err := Parse([]byte(tc.yaml))
			require.NoError(t, err)

			_, err = Apply(context.Background(), newImporter(t), f)
			assert.ErrorIs(t, err, store.ErrInvalidInput)
		})
	}
}

func TestParseRejectsMalformedYAML(t *testing.T) {
	_, err := Parse([]byte("products: [unterminated"))
	assert.Error(t, err)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(fixtureYAML), 0o600))

	f, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Len(t, f.Products, 2)

	_, err = LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
