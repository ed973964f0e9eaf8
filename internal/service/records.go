package service

import (
	"context"
	"net/mail"
	"slices"
	"strings"

	"retaildesk/backend/internal/domain"
	"retaildesk/backend/internal/store"
	"retaildesk/backend/internal/xid"
)

func (s *Service) ListExpenses(_ context.Context) []domain.Expense {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneSlice(s.expenses)
}

func (s *Service) CreateExpense(ctx context.Context, req domain.ExpenseRequest) (domain.Expense, error) {
	req, err := s.normalizeExpense(req)
	if err != nil {
		return domain.Expense{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	expense := domain.Expense{ID: xid.New("exp"), CreatedAt: s.now()}
	applyExpenseRequest(&expense, req)
	s.expenses = append(s.expenses, expense)
	s.save(ctx, store.KeyExpenses, s.expenses)
	return expense, nil
}

func (s *Service) UpdateExpense(ctx context.Context, id string, req domain.ExpenseRequest) (domain.Expense, error) {
	req, err := s.normalizeExpense(req)
	if err != nil {
		return domain.Expense{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := slices.IndexFunc(s.expenses, func(e domain.Expense) bool { return e.ID == id })
	if idx < 0 {
		return domain.Expense{}, notFound("expense", id)
	}
	applyExpenseRequest(&s.expenses[idx], req)
	s.save(ctx, store.KeyExpenses, s.expenses)
	return s.expenses[idx], nil
}

func (s *Service) DeleteExpense(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := slices.IndexFunc(s.expenses, func(e domain.Expense) bool { return e.ID == id })
	if idx < 0 {
		return notFound("expense", id)
	}
	s.expenses = slices.Delete(s.expenses, idx, idx+1)
	s.save(ctx, store.KeyExpenses, s.expenses)
	return nil
}

func (s *Service) normalizeExpense(req domain.ExpenseRequest) (domain.ExpenseRequest, error) {
	req.Category = strings.TrimSpace(req.Category)
	if req.Category == "" {
		return req, invalid("expense category is required")
	}
	if !req.Amount.IsPositive() {
		return req, invalid("expense amount must be greater than zero")
	}
	if req.Date.IsZero() {
		req.Date = s.now()
	}
	req.Date = req.Date.UTC()
	req.Frequency = strings.TrimSpace(req.Frequency)
	if !req.Recurring {
		req.Frequency = ""
	}
	return req, nil
}

func applyExpenseRequest(e *domain.Expense, req domain.ExpenseRequest) {
	e.Category = req.Category
	e.Amount = req.Amount
	e.Date = req.Date
	e.Notes = strings.TrimSpace(req.Notes)
	e.PaymentMethod = strings.TrimSpace(req.PaymentMethod)
	e.Recurring = req.Recurring
	e.Frequency = req.Frequency
}

func (s *Service) ListBranches(_ context.Context) []domain.Branch {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneSlice(s.branches)
}

func (s *Service) CreateBranch(ctx context.Context, req domain.BranchRequest) (domain.Branch, error) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return domain.Branch{}, invalid("branch name is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	branch := domain.Branch{
		ID:        xid.New("branch"),
		Name:      req.Name,
		Address:   strings.TrimSpace(req.Address),
		Phone:     strings.TrimSpace(req.Phone),
		Active:    req.Active,
		CreatedAt: s.now(),
	}
	s.branches = append(s.branches, branch)
	s.save(ctx, store.KeyBranches, s.branches)
	return branch, nil
}

func (s *Service) UpdateBranch(ctx context.Context, id string, req domain.BranchRequest) (domain.Branch, error) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return domain.Branch{}, invalid("branch name is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.branchIndex(id)
	if idx < 0 {
		return domain.Branch{}, notFound("branch", id)
	}
	b := &s.branches[idx]
	b.Name = req.Name
	b.Address = strings.TrimSpace(req.Address)
	b.Phone = strings.TrimSpace(req.Phone)
	b.Active = req.Active
	s.save(ctx, store.KeyBranches, s.branches)
	return *b, nil
}

// DeleteBranch clears the current branch selection when it points at the
// deleted branch. Staff keep their branch reference.
func (s *Service) DeleteBranch(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.branchIndex(id)
	if idx < 0 {
		return notFound("branch", id)
	}
	s.branches = slices.Delete(s.branches, idx, idx+1)
	s.save(ctx, store.KeyBranches, s.branches)
	if s.currentBranch == id {
		s.currentBranch = ""
		s.save(ctx, store.KeyCurrentBranch, s.currentBranch)
	}
	return nil
}

func (s *Service) CurrentBranch(_ context.Context) (domain.Branch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.branchIndex(s.currentBranch)
	if s.currentBranch == "" || idx < 0 {
		return domain.Branch{}, notFound("branch", s.currentBranch)
	}
	return s.branches[idx], nil
}

func (s *Service) SetCurrentBranch(ctx context.Context, id string) (domain.Branch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.branchIndex(id)
	if idx < 0 {
		return domain.Branch{}, notFound("branch", id)
	}
	s.currentBranch = id
	s.save(ctx, store.KeyCurrentBranch, s.currentBranch)
	return s.branches[idx], nil
}

func (s *Service) branchIndex(id string) int {
	return slices.IndexFunc(s.branches, func(b domain.Branch) bool { return b.ID == id })
}

func (s *Service) ListStaff(_ context.Context) []domain.Staff {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneSlice(s.staff)
}

func (s *Service) CreateStaff(ctx context.Context, req domain.StaffRequest) (domain.Staff, error) {
	req, err := normalizeStaff(req)
	if err != nil {
		return domain.Staff{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkStaff(req, ""); err != nil {
		return domain.Staff{}, err
	}
	member := domain.Staff{ID: xid.New("staff"), CreatedAt: s.now()}
	applyStaffRequest(&member, req)
	s.staff = append(s.staff, member)
	s.save(ctx, store.KeyStaff, s.staff)
	return member, nil
}

func (s *Service) UpdateStaff(ctx context.Context, id string, req domain.StaffRequest) (domain.Staff, error) {
	req, err := normalizeStaff(req)
	if err != nil {
		return domain.Staff{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := slices.IndexFunc(s.staff, func(m domain.Staff) bool { return m.ID == id })
	if idx < 0 {
		return domain.Staff{}, notFound("staff", id)
	}
	if err := s.checkStaff(req, id); err != nil {
		return domain.Staff{}, err
	}
	applyStaffRequest(&s.staff[idx], req)
	s.save(ctx, store.KeyStaff, s.staff)
	return s.staff[idx], nil
}

func (s *Service) DeleteStaff(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := slices.IndexFunc(s.staff, func(m domain.Staff) bool { return m.ID == id })
	if idx < 0 {
		return notFound("staff", id)
	}
	s.staff = slices.Delete(s.staff, idx, idx+1)
	s.save(ctx, store.KeyStaff, s.staff)
	return nil
}

func normalizeStaff(req domain.StaffRequest) (domain.StaffRequest, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.Role = strings.ToLower(strings.TrimSpace(req.Role))
	req.BranchID = strings.TrimSpace(req.BranchID)

	if req.Name == "" || req.Email == "" {
		return req, invalid("staff name and email are required")
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return req, invalid("staff email %q is not valid", req.Email)
	}
	if !isKnownRole(req.Role) {
		return req, invalid("unknown staff role %q", req.Role)
	}
	return req, nil
}

func (s *Service) checkStaff(req domain.StaffRequest, exceptID string) error {
	if req.BranchID != "" && s.branchIndex(req.BranchID) < 0 {
		return notFound("branch", req.BranchID)
	}
	taken := slices.ContainsFunc(s.staff, func(m domain.Staff) bool {
		return m.ID != exceptID && strings.EqualFold(m.Email, req.Email)
	})
	if taken {
		return conflict("staff email %s already exists", req.Email)
	}
	return nil
}

func applyStaffRequest(m *domain.Staff, req domain.StaffRequest) {
	m.Name = req.Name
	m.Email = req.Email
	m.Role = req.Role
	m.BranchID = req.BranchID
	m.Phone = strings.TrimSpace(req.Phone)
	m.Active = req.Active
}

func isKnownRole(role string) bool {
	switch role {
	case domain.RoleAdmin, domain.RoleManager, domain.RoleCashier:
		return true
	default:
		return false
	}
}

func (s *Service) BusinessInfo(_ context.Context) domain.BusinessInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.business
}

func (s *Service) SetBusinessInfo(ctx context.Context, info domain.BusinessInfo) (domain.BusinessInfo, error) {
	info.Name = strings.TrimSpace(info.Name)
	if info.Name == "" {
		return domain.BusinessInfo{}, invalid("business name is required")
	}
	info.Address = strings.TrimSpace(info.Address)
	info.Phone = strings.TrimSpace(info.Phone)
	info.Email = strings.TrimSpace(info.Email)
	info.Currency = strings.ToUpper(defaultString(strings.TrimSpace(info.Currency), "USD"))
	info.TaxID = strings.TrimSpace(info.TaxID)

	s.mu.Lock()
	defer s.mu.Unlock()

	info.UpdatedAt = s.now()
	s.business = info
	s.save(ctx, store.KeyBusinessInfo, s.business)
	return info, nil
}
