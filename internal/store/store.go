package store

import (
	"context"
	"errors"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrConflict     = errors.New("conflict")
)

// Persistence keys. Each key holds one JSON document that is overwritten
// whole on every save.
const (
	KeyProducts      = "products"
	KeyTransactions  = "transactions"
	KeyExpenses      = "expenses"
	KeyBranches      = "branches"
	KeyStaff         = "staff"
	KeyBusinessInfo  = "business-info"
	KeyCurrentBranch = "current-branch"
	KeyCategories    = "categories"
	KeyDiscounts     = "discounts"
	KeySession       = "session"
	KeyUsers         = "users"
)

// Keys lists every key the entity store loads at startup.
var Keys = []string{
	KeyProducts,
	KeyTransactions,
	KeyExpenses,
	KeyBranches,
	KeyStaff,
	KeyBusinessInfo,
	KeyCurrentBranch,
	KeyCategories,
	KeyDiscounts,
	KeySession,
	KeyUsers,
}

// Backend is a key/value persistence layer. Load returns ErrNotFound when the
// key has never been saved. Writes are last-writer-wins.
type Backend interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, value []byte) error
}
