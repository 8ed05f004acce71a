package service

import (
	"context"
	"errors"
	"time"

	"github.com/splitr-app/splitr/internal/models"
	"github.com/splitr-app/splitr/internal/storage"
)

const testTimeout = 5 * time.Second

var errStoreDown = errors.New("store down")

// fakeStore is an in-memory Store for service tests. Flags simulate the
// degraded modes the engine must survive: filtersUnsupported makes every
// filtered listing fail the way a store with a missing index would, and
// failAll makes every read fail outright.
type fakeStore struct {
	users       map[string]*models.User
	groups      []*models.Group
	expenses    []*models.Expense
	settlements []*models.Settlement

	filtersUnsupported bool
	failAll            bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{users: make(map[string]*models.User)}
}

func (s *fakeStore) addUser(id, name string) *models.User {
	u := &models.User{ID: id, Name: name, Email: id + "@example.com"}
	s.users[id] = u
	return u
}

func (s *fakeStore) ListExpenses(_ context.Context, f storage.ExpenseFilter) ([]*models.Expense, error) {
	if s.failAll {
		return nil, errStoreDown
	}
	if s.filtersUnsupported && f != (storage.ExpenseFilter{}) {
		return nil, storage.ErrFilterUnsupported
	}
	var out []*models.Expense
	for _, e := range s.expenses {
		if f.Match(e) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *fakeStore) ListSettlements(_ context.Context, f storage.SettlementFilter) ([]*models.Settlement, error) {
	if s.failAll {
		return nil, errStoreDown
	}
	if s.filtersUnsupported && f != (storage.SettlementFilter{}) {
		return nil, storage.ErrFilterUnsupported
	}
	var out []*models.Settlement
	for _, st := range s.settlements {
		if f.Match(st) {
			out = append(out, st)
		}
	}
	return out, nil
}

func (s *fakeStore) GetGroup(_ context.Context, groupID string) (*models.Group, error) {
	if s.failAll {
		return nil, errStoreDown
	}
	for _, g := range s.groups {
		if g.ID == groupID {
			return g, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (s *fakeStore) ListGroups(context.Context) ([]*models.Group, error) {
	if s.failAll {
		return nil, errStoreDown
	}
	return s.groups, nil
}

func (s *fakeStore) GetUser(_ context.Context, userID string) (*models.User, error) {
	if s.failAll {
		return nil, errStoreDown
	}
	if u, ok := s.users[userID]; ok {
		return u, nil
	}
	return nil, storage.ErrNotFound
}

func (s *fakeStore) GetUsersByIDs(_ context.Context, ids []string) (map[string]*models.User, error) {
	if s.failAll {
		return nil, errStoreDown
	}
	out := make(map[string]*models.User)
	for _, id := range ids {
		if u, ok := s.users[id]; ok {
			out[id] = u
		}
	}
	return out, nil
}

func (s *fakeStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (s *fakeStore) CreateUser(_ context.Context, user *models.User) error {
	s.users[user.ID] = user
	return nil
}

func (s *fakeStore) CreateGroup(_ context.Context, group *models.Group) error {
	s.groups = append(s.groups, group)
	return nil
}

func (s *fakeStore) CreateExpense(_ context.Context, expense *models.Expense) error {
	s.expenses = append(s.expenses, expense)
	return nil
}

func (s *fakeStore) CreateSettlement(_ context.Context, settlement *models.Settlement) error {
	s.settlements = append(s.settlements, settlement)
	return nil
}

func (s *fakeStore) Close() error { return nil }

// member builds a registered membership entry.
func member(userID string) models.Membership {
	return models.Membership{
		User:     models.MemberRef{UserID: userID, Email: userID + "@example.com"},
		Role:     "member",
		JoinedAt: 1,
	}
}

// invited builds a pending membership entry with no account.
func invited(email string) models.Membership {
	return models.Membership{
		User:     models.MemberRef{Email: email},
		Role:     "member",
		JoinedAt: 1,
	}
}
