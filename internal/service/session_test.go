package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retaildesk/backend/internal/domain"
	"retaildesk/backend/internal/store"
	"retaildesk/backend/internal/store/memory"
)

func TestEnsureAdminOnlyOnEmptyUserList(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.EnsureAdmin(ctx, "Owner@RetailDesk.local", "correct-horse")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = svc.EnsureAdmin(ctx, "other@retaildesk.local", "another-pass")
	require.NoError(t, err)
	assert.False(t, created)
}

func TestEnsureAdminRequiresCredentials(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.EnsureAdmin(context.Background(), "", "")
	assert.ErrorIs(t, err, store.ErrInvalidInput)
}

func TestLoginRecordsSession(t *testing.T) {
	svc, backend := newTestService(t)
	ctx := context.Background()
	_, err := svc.EnsureAdmin(ctx, "owner@retaildesk.local", "correct-horse")
	require.NoError(t, err)

	_, err = svc.Login(ctx, "owner@retaildesk.local", "wrong-horse")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.False(t, svc.CurrentSession(ctx).Authenticated)

	user, err := svc.Login(ctx, " OWNER@retaildesk.local ", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, user.Role)

	session := svc.CurrentSession(ctx)
	require.True(t, session.Authenticated)
	assert.Equal(t, "owner@retaildesk.local", session.User.Email)
	assert.Equal(t, testNow, *session.LoggedInAt)

	reloaded := New(backend, nil)
	require.NoError(t, reloaded.Load(ctx))
	assert.True(t, reloaded.CurrentSession(ctx).Authenticated)

	svc.Logout(ctx)
	assert.False(t, svc.CurrentSession(ctx).Authenticated)
	assert.Nil(t, svc.CurrentSession(ctx).User)
}

func TestPasswordHashIsNotStoredInPlainText(t *testing.T) {
	backend := memory.New()
	svc := New(backend, nil)
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, "cashier@retaildesk.local", "Cashier", domain.RoleCashier, "till-password")
	require.NoError(t, err)

	raw, err := backend.Load(ctx, store.KeyUsers)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "till-password")
	assert.Contains(t, string(raw), "$2a$")
}

func TestCreateUserValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, "a@b.c", "A", "owner", "long-enough")
	assert.ErrorIs(t, err, store.ErrInvalidInput)
	_, err = svc.CreateUser(ctx, "a@b.c", "A", domain.RoleCashier, "short")
	assert.ErrorIs(t, err, store.ErrInvalidInput)

	_, err = svc.CreateUser(ctx, "a@b.c", "A", domain.RoleCashier, "long-enough")
	require.NoError(t, err)
	_, err = svc.CreateUser(ctx, "A@B.C", "A", domain.RoleCashier, "long-enough")
	assert.ErrorIs(t, err, store.ErrConflict)
}

func TestEffectiveBranchMatchesStaffEmailExactly(t *testing.T) {
	svc, _ := newTestService(t)

	ctx := WithActor(context.Background(), domain.Actor{Email: "cashier@retaildesk.local", Role: domain.RoleCashier})
	branch, err := svc.EffectiveBranch(ctx)
	require.NoError(t, err)
	assert.Equal(t, "branch-mall", branch.ID)

	upper := WithActor(context.Background(), domain.Actor{Email: "CASHIER@retaildesk.local", Role: domain.RoleCashier})
	branch, err = svc.EffectiveBranch(upper)
	require.NoError(t, err)
	assert.Equal(t, "branch-main", branch.ID, "case mismatch falls back to the current branch")
}

func TestTransactionsCarryActorAndBranch(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := WithActor(context.Background(), domain.Actor{Email: "cashier@retaildesk.local", Role: domain.RoleCashier})

	tx, err := svc.AddTransaction(ctx, domain.TransactionDraft{ProductID: "prod-acc-01", Type: domain.TransactionSale, Quantity: 1})
	require.NoError(t, err)

	assert.Equal(t, "cashier@retaildesk.local", tx.CreatedBy)
	assert.Equal(t, "branch-mall", tx.BranchID)
}

func TestEffectiveBranchWithoutAnyBranch(t *testing.T) {
	svc := New(memory.New(), nil)

	_, err := svc.EffectiveBranch(context.Background())
	assert.ErrorIs(t, err, store.ErrNotFound)
}
