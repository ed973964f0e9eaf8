package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"retaildesk/backend/internal/domain"
	"retaildesk/backend/internal/logger"
	"retaildesk/backend/internal/pricing"
	"retaildesk/backend/internal/store"
)

type actorContextKey struct{}

func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

func ActorFromContext(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(domain.Actor)
	return actor, ok
}

// Service owns every collection of the shop and writes the affected
// collection back to the backend after each mutation. Write failures are
// logged and swallowed so the in-memory state stays usable.
type Service struct {
	mu       sync.RWMutex
	backend  store.Backend
	log      *zap.Logger
	resolver *pricing.Resolver
	now      func() time.Time

	products      []domain.Product
	categories    []domain.ProductCategory
	discounts     []domain.Discount
	transactions  []domain.Transaction
	expenses      []domain.Expense
	branches      []domain.Branch
	staff         []domain.Staff
	business      domain.BusinessInfo
	currentBranch string
	session       domain.Session
	users         []domain.UserAccount
}

type Option func(*Service)

// WithClock pins the time used for timestamps and discount windows.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func New(backend store.Backend, log *zap.Logger, opts ...Option) *Service {
	s := &Service{
		backend: backend,
		log:     logger.OrNop(log).Named("service"),
		now:     func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	s.resolver = pricing.NewResolver(pricing.WithClock(s.now))
	return s
}

// Load replaces the in-memory state with whatever the backend holds. Missing
// keys leave the collection empty; an undecodable value is logged and its
// collection starts empty.
func (s *Service) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	decoders := map[string]func([]byte) error{
		store.KeyProducts:      decodeInto(&s.products),
		store.KeyCategories:    decodeInto(&s.categories),
		store.KeyDiscounts:     decodeInto(&s.discounts),
		store.KeyTransactions:  decodeInto(&s.transactions),
		store.KeyExpenses:      decodeInto(&s.expenses),
		store.KeyBranches:      decodeInto(&s.branches),
		store.KeyStaff:         decodeInto(&s.staff),
		store.KeyBusinessInfo:  decodeInto(&s.business),
		store.KeyCurrentBranch: decodeInto(&s.currentBranch),
		store.KeySession:       decodeInto(&s.session),
		store.KeyUsers:         decodeInto(&s.users),
	}
	for _, key := range store.Keys {
		decode, ok := decoders[key]
		if !ok {
			continue
		}
		raw, err := s.backend.Load(ctx, key)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return fmt.Errorf("load %s: %w", key, err)
		}
		if err := decode(raw); err != nil {
			s.log.Warn("discarding undecodable value", zap.String("key", key), zap.Error(err))
		}
	}
	return nil
}

// decodeInto returns a decoder that only touches dst once raw decodes
// cleanly. On error dst is reset to its zero value.
func decodeInto[T any](dst *T) func([]byte) error {
	return func(raw []byte) error {
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			var zero T
			*dst = zero
			return err
		}
		*dst = v
		return nil
	}
}

// save persists value under key. Callers hold s.mu.
func (s *Service) save(ctx context.Context, key string, value any) {
	payload, err := json.Marshal(value)
	if err != nil {
		s.log.Warn("failed to encode collection", zap.String("key", key), zap.Error(err))
		return
	}
	if err := s.backend.Save(ctx, key, payload); err != nil {
		s.log.Warn("failed to persist collection", zap.String("key", key), zap.Error(err))
	}
}

// actorEmail names who performed a mutation: the request actor, then the
// logged-in session user, then "system".
func (s *Service) actorEmail(ctx context.Context) string {
	if actor, ok := ActorFromContext(ctx); ok && actor.Email != "" {
		return actor.Email
	}
	if s.session.Authenticated && s.session.User != nil {
		return s.session.User.Email
	}
	return "system"
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", store.ErrInvalidInput, fmt.Sprintf(format, args...))
}

func notFound(kind, id string) error {
	return fmt.Errorf("%w: %s %q", store.ErrNotFound, kind, id)
}

func conflict(format string, args ...any) error {
	return fmt.Errorf("%w: %s", store.ErrConflict, fmt.Sprintf(format, args...))
}

func defaultString(value string, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

func cloneSlice[T any](in []T) []T {
	out := make([]T, len(in))
	copy(out, in)
	return out
}
