// Package storage provides abstractions for ledger persistence.
package storage

import (
	"context"
	"errors"

	"github.com/splitr-app/splitr/internal/models"
)

var (
	// ErrNotFound is returned when a referenced entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrFilterUnsupported is returned by a Store that cannot serve a
	// filtered query (e.g. a required index is absent). Callers recover by
	// scanning and filtering in memory; see Reader.
	ErrFilterUnsupported = errors.New("filter not supported by this store")
)

// GroupScope selects how a filter constrains the group dimension.
type GroupScope int

const (
	// ScopeAny matches both personal and group records.
	ScopeAny GroupScope = iota
	// ScopePersonal matches records with no group association.
	ScopePersonal
	// ScopeGroup matches records belonging to the filter's GroupID.
	ScopeGroup
)

// ExpenseFilter narrows an expense listing. Zero values mean "no
// constraint" except Scope, which defaults to ScopeAny.
type ExpenseFilter struct {
	// PayerID restricts to expenses paid by this user.
	PayerID string

	// Scope and GroupID restrict the group dimension.
	Scope   GroupScope
	GroupID string

	// DateFrom/DateTo restrict the expense date to [DateFrom, DateTo).
	// Zero disables the respective bound.
	DateFrom int64
	DateTo   int64
}

// Match reports whether e satisfies the filter. This is the in-memory
// equivalent of the indexed query and is what Reader applies after a
// fallback scan, so the two paths cannot drift apart.
func (f ExpenseFilter) Match(e *models.Expense) bool {
	if f.PayerID != "" && e.PaidByUserID != f.PayerID {
		return false
	}
	switch f.Scope {
	case ScopePersonal:
		if !e.Personal() {
			return false
		}
	case ScopeGroup:
		if e.GroupID != f.GroupID {
			return false
		}
	}
	if f.DateFrom != 0 && e.Date < f.DateFrom {
		return false
	}
	if f.DateTo != 0 && e.Date >= f.DateTo {
		return false
	}
	return true
}

// SettlementFilter narrows a settlement listing.
type SettlementFilter struct {
	// Participant restricts to settlements paid or received by this user.
	Participant string

	// Scope and GroupID restrict the group dimension.
	Scope   GroupScope
	GroupID string
}

// Match reports whether s satisfies the filter.
func (f SettlementFilter) Match(s *models.Settlement) bool {
	if f.Participant != "" && !s.Involves(f.Participant) {
		return false
	}
	switch f.Scope {
	case ScopePersonal:
		if !s.Personal() {
			return false
		}
	case ScopeGroup:
		if s.GroupID != f.GroupID {
			return false
		}
	}
	return true
}

// Store defines the persistence operations the reconciliation engine and
// its collaborators need. The aggregators only read; the write methods are
// the collaborator surface used by the API's mutation endpoints and tests.
//
// ListExpenses and ListSettlements may return ErrFilterUnsupported for
// filters the backend cannot serve; read through a Reader to get the
// documented scan-and-filter degradation instead.
type Store interface {
	// ListExpenses returns expenses matching the filter.
	ListExpenses(ctx context.Context, f ExpenseFilter) ([]*models.Expense, error)

	// ListSettlements returns settlements matching the filter.
	ListSettlements(ctx context.Context, f SettlementFilter) ([]*models.Settlement, error)

	// GetGroup retrieves a group with its member list.
	// Returns ErrNotFound if the id does not resolve.
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)

	// ListGroups returns all groups.
	ListGroups(ctx context.Context) ([]*models.Group, error)

	// GetUser retrieves a user by id. Returns ErrNotFound if absent.
	GetUser(ctx context.Context, userID string) (*models.User, error)

	// GetUsersByIDs retrieves multiple users keyed by id.
	// Ids that do not resolve are omitted.
	GetUsersByIDs(ctx context.Context, ids []string) (map[string]*models.User, error)

	// GetUserByEmail retrieves a user by email, or nil if absent.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// CreateUser persists a new user.
	CreateUser(ctx context.Context, user *models.User) error

	// CreateGroup persists a new group, populating ID and CreatedAt.
	CreateGroup(ctx context.Context, group *models.Group) error

	// CreateExpense persists a new expense, populating ID and CreatedAt.
	CreateExpense(ctx context.Context, expense *models.Expense) error

	// CreateSettlement persists a new settlement, populating ID and
	// CreatedAt.
	CreateSettlement(ctx context.Context, settlement *models.Settlement) error

	// Close releases any resources held by the store.
	Close() error
}
