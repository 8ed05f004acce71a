package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/splitr-app/splitr/internal/ledger"
	"github.com/splitr-app/splitr/internal/models"
	"github.com/splitr-app/splitr/internal/storage"
)

// GroupBalance is one group's summary row: the subject's overall position
// within the group collapsed to a single scalar. Positive means the
// subject is owed overall.
type GroupBalance struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	MemberCount int     `json:"memberCount"`
	Balance     float64 `json:"balance"`
}

// GroupLedger is the full ledger view of a single group, served only to
// its members.
type GroupLedger struct {
	Group       *models.Group        `json:"group"`
	Expenses    []*models.Expense    `json:"expenses"`
	Settlements []*models.Settlement `json:"settlements"`
}

// GroupService aggregates balances scoped to groups.
type GroupService struct {
	reader  *storage.Reader
	timeout time.Duration
}

// NewGroupService creates a GroupService reading through the given store.
func NewGroupService(store storage.Store, timeout time.Duration) *GroupService {
	return &GroupService{reader: storage.NewReader(store), timeout: timeout}
}

// GetGroupBalances returns a summary row for every group the subject
// belongs to. The membership filter is the authorization here: no explicit
// failure for non-members, they just see nothing. A nil subject or any
// internal fault yields the empty list.
func (s *GroupService) GetGroupBalances(ctx context.Context, subject *models.User) []GroupBalance {
	if subject == nil {
		return []GroupBalance{}
	}

	balances, err := s.computeGroupBalances(ctx, subject)
	if err != nil {
		slog.Error("group balance aggregation failed, serving default", "user_id", subject.ID, "error", err)
		return []GroupBalance{}
	}
	return balances
}

func (s *GroupService) computeGroupBalances(ctx context.Context, subject *models.User) ([]GroupBalance, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	groups, err := s.reader.ListGroups(ctx)
	if err != nil {
		return nil, err
	}

	balances := []GroupBalance{}
	for _, g := range groups {
		if !g.HasMember(subject.ID) {
			continue
		}

		expenses, settlements, err := s.groupRecords(ctx, g.ID)
		if err != nil {
			return nil, fmt.Errorf("group %s: %w", g.ID, err)
		}

		balances = append(balances, GroupBalance{
			ID:          g.ID,
			Name:        g.Name,
			Description: g.Description,
			MemberCount: len(g.Members),
			Balance:     ledger.GroupBalance(subject.ID, expenses, settlements),
		})
	}

	return balances, nil
}

// GetGroupLedger returns one group's expenses and settlements.
//
// Unlike the summary reads, this fails explicitly: ErrUnauthenticated for
// a nil subject, ErrNotMember when the subject is not in the member list,
// and storage.ErrNotFound when the group id does not resolve. Returning
// empty data instead would be indistinguishable from "no balance".
func (s *GroupService) GetGroupLedger(ctx context.Context, subject *models.User, groupID string) (*GroupLedger, error) {
	if subject == nil {
		return nil, ErrUnauthenticated
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	group, err := s.reader.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !group.HasMember(subject.ID) {
		return nil, ErrNotMember
	}

	expenses, settlements, err := s.groupRecords(ctx, groupID)
	if err != nil {
		return nil, err
	}

	if expenses == nil {
		expenses = []*models.Expense{}
	}
	if settlements == nil {
		settlements = []*models.Settlement{}
	}
	return &GroupLedger{Group: group, Expenses: expenses, Settlements: settlements}, nil
}

// groupRecords fetches one group's expenses and settlements. Settlements
// are fetched by group only; the netting step ignores records that do not
// involve the subject.
func (s *GroupService) groupRecords(ctx context.Context, groupID string) ([]*models.Expense, []*models.Settlement, error) {
	expenses, err := s.reader.Expenses(ctx, storage.ExpenseFilter{
		Scope:   storage.ScopeGroup,
		GroupID: groupID,
	})
	if err != nil {
		return nil, nil, err
	}

	settlements, err := s.reader.Settlements(ctx, storage.SettlementFilter{
		Scope:   storage.ScopeGroup,
		GroupID: groupID,
	})
	if err != nil {
		return nil, nil, err
	}

	return expenses, settlements, nil
}
