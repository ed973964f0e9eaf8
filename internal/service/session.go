package service

import (
	"context"
	"errors"
	"slices"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"retaildesk/backend/internal/domain"
	"retaildesk/backend/internal/store"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInactiveAccount    = errors.New("account is inactive")
)

const minPasswordLength = 8

// CreateUser registers a login account with a bcrypt hash of password.
func (s *Service) CreateUser(ctx context.Context, email, name, role, password string) (domain.SessionUser, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	name = strings.TrimSpace(name)
	role = strings.ToLower(strings.TrimSpace(role))
	if email == "" {
		return domain.SessionUser{}, invalid("email is required")
	}
	if !isKnownRole(role) {
		return domain.SessionUser{}, invalid("unknown role %q", role)
	}
	if len(password) < minPasswordLength {
		return domain.SessionUser{}, invalid("password must be at least %d characters", minPasswordLength)
	}

	hash, err := hashPassword(password)
	if err != nil {
		return domain.SessionUser{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.userIndex(email) >= 0 {
		return domain.SessionUser{}, conflict("user %s already exists", email)
	}
	account := domain.UserAccount{
		Email:        email,
		Name:         defaultString(name, email),
		PasswordHash: hash,
		Role:         role,
		Active:       true,
		CreatedAt:    s.now(),
	}
	s.users = append(s.users, account)
	s.save(ctx, store.KeyUsers, s.users)
	return sessionUser(account), nil
}

// EnsureAdmin creates an admin account when no account exists yet. It reports
// whether one was created.
func (s *Service) EnsureAdmin(ctx context.Context, email, password string) (bool, error) {
	s.mu.RLock()
	empty := len(s.users) == 0
	s.mu.RUnlock()
	if !empty {
		return false, nil
	}
	if strings.TrimSpace(email) == "" || password == "" {
		return false, invalid("admin email and password are required to bootstrap the first account")
	}
	if _, err := s.CreateUser(ctx, email, "Owner", domain.RoleAdmin, password); err != nil {
		return false, err
	}
	return true, nil
}

// Login verifies the credentials and records the authenticated session.
func (s *Service) Login(ctx context.Context, email, password string) (domain.SessionUser, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.userIndex(email)
	if idx < 0 || !verifyPassword(s.users[idx].PasswordHash, password) {
		return domain.SessionUser{}, ErrInvalidCredentials
	}
	account := s.users[idx]
	if !account.Active {
		return domain.SessionUser{}, ErrInactiveAccount
	}

	user := sessionUser(account)
	now := s.now()
	s.session = domain.Session{Authenticated: true, User: &user, LoggedInAt: &now}
	s.save(ctx, store.KeySession, s.session)
	s.log.Info("session started", zap.String("email", user.Email), zap.Int("low_stock_products", s.lowStockCount()))
	return user, nil
}

func (s *Service) Logout(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.session = domain.Session{}
	s.save(ctx, store.KeySession, s.session)
}

func (s *Service) CurrentSession(_ context.Context) domain.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session := s.session
	if session.User != nil {
		user := *session.User
		session.User = &user
	}
	return session
}

// EffectiveBranch resolves the branch of the acting user through the staff
// member whose email matches exactly. Without a match it falls back to the
// current branch selection.
func (s *Service) EffectiveBranch(ctx context.Context) (domain.Branch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id := s.effectiveBranchLocked(ctx)
	idx := s.branchIndex(id)
	if id == "" || idx < 0 {
		return domain.Branch{}, notFound("branch", id)
	}
	return s.branches[idx], nil
}

func (s *Service) effectiveBranchLocked(ctx context.Context) string {
	email := s.actorEmail(ctx)
	for _, member := range s.staff {
		if member.Email == email && member.BranchID != "" {
			return member.BranchID
		}
	}
	return s.currentBranch
}

func (s *Service) userIndex(email string) int {
	return slices.IndexFunc(s.users, func(u domain.UserAccount) bool { return u.Email == email })
}

func sessionUser(account domain.UserAccount) domain.SessionUser {
	return domain.SessionUser{Email: account.Email, Name: account.Name, Role: account.Role}
}

func verifyPassword(stored string, input string) bool {
	if stored == "" || strings.TrimSpace(input) == "" || !isPasswordHash(stored) {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(input)) == nil
}

func hashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

func isPasswordHash(value string) bool {
	return strings.HasPrefix(value, "$2a$") || strings.HasPrefix(value, "$2b$") || strings.HasPrefix(value, "$2y$")
}
