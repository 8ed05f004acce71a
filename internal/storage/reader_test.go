package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/splitr-app/splitr/internal/models"
)

// flakyStore serves unfiltered listings but refuses every filtered query,
// as a store with a missing index would.
type flakyStore struct {
	Store
	expenses    []*models.Expense
	settlements []*models.Settlement
}

func (s *flakyStore) ListExpenses(_ context.Context, f ExpenseFilter) ([]*models.Expense, error) {
	if f != (ExpenseFilter{}) {
		return nil, ErrFilterUnsupported
	}
	return s.expenses, nil
}

func (s *flakyStore) ListSettlements(_ context.Context, f SettlementFilter) ([]*models.Settlement, error) {
	if f != (SettlementFilter{}) {
		return nil, ErrFilterUnsupported
	}
	return s.settlements, nil
}

func TestReader_ExpenseFallback(t *testing.T) {
	store := &flakyStore{
		expenses: []*models.Expense{
			{ID: "e1", PaidByUserID: "alice", Date: 100},
			{ID: "e2", PaidByUserID: "alice", GroupID: "g1", Date: 200},
			{ID: "e3", PaidByUserID: "bob", Date: 300},
		},
	}
	r := NewReader(store)

	got, err := r.Expenses(context.Background(), ExpenseFilter{PayerID: "alice", Scope: ScopePersonal})
	if err != nil {
		t.Fatalf("Expenses() error = %v", err)
	}
	if len(got) != 1 || got[0].ID != "e1" {
		t.Errorf("Expenses() = %v, want just e1", got)
	}

	got, err = r.Expenses(context.Background(), ExpenseFilter{DateFrom: 150, DateTo: 300})
	if err != nil {
		t.Fatalf("Expenses() error = %v", err)
	}
	if len(got) != 1 || got[0].ID != "e2" {
		t.Errorf("Expenses() date range = %v, want just e2", got)
	}
}

func TestReader_SettlementFallback(t *testing.T) {
	store := &flakyStore{
		settlements: []*models.Settlement{
			{ID: "s1", PaidByUserID: "alice", ReceivedByUserID: "bob"},
			{ID: "s2", PaidByUserID: "bob", ReceivedByUserID: "carol", GroupID: "g1"},
		},
	}
	r := NewReader(store)

	got, err := r.Settlements(context.Background(), SettlementFilter{Participant: "alice", Scope: ScopePersonal})
	if err != nil {
		t.Fatalf("Settlements() error = %v", err)
	}
	if len(got) != 1 || got[0].ID != "s1" {
		t.Errorf("Settlements() = %v, want just s1", got)
	}
}

type failingStore struct {
	Store
}

var errBoom = errors.New("boom")

func (s *failingStore) ListExpenses(context.Context, ExpenseFilter) ([]*models.Expense, error) {
	return nil, errBoom
}

func TestReader_PropagatesOtherErrors(t *testing.T) {
	r := NewReader(&failingStore{})
	_, err := r.Expenses(context.Background(), ExpenseFilter{PayerID: "alice"})
	if !errors.Is(err, errBoom) {
		t.Errorf("expected underlying error, got %v", err)
	}
}

func TestExpenseFilterMatch(t *testing.T) {
	e := &models.Expense{
		PaidByUserID: "alice",
		GroupID:      "g1",
		Date:         500,
	}

	tests := []struct {
		name string
		f    ExpenseFilter
		want bool
	}{
		{"empty matches", ExpenseFilter{}, true},
		{"payer matches", ExpenseFilter{PayerID: "alice"}, true},
		{"payer mismatch", ExpenseFilter{PayerID: "bob"}, false},
		{"group scope matches", ExpenseFilter{Scope: ScopeGroup, GroupID: "g1"}, true},
		{"group scope mismatch", ExpenseFilter{Scope: ScopeGroup, GroupID: "g2"}, false},
		{"personal scope excludes grouped", ExpenseFilter{Scope: ScopePersonal}, false},
		{"date lower bound inclusive", ExpenseFilter{DateFrom: 500}, true},
		{"date upper bound exclusive", ExpenseFilter{DateTo: 500}, false},
		{"date in range", ExpenseFilter{DateFrom: 400, DateTo: 600}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.f.Match(e); got != tt.want {
				t.Errorf("Match() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSettlementFilterMatch(t *testing.T) {
	s := &models.Settlement{PaidByUserID: "alice", ReceivedByUserID: "bob"}

	if !(SettlementFilter{Participant: "bob", Scope: ScopePersonal}).Match(s) {
		t.Error("receiver should match participant filter")
	}
	if (SettlementFilter{Participant: "carol"}).Match(s) {
		t.Error("uninvolved user should not match")
	}
	if (SettlementFilter{Scope: ScopeGroup, GroupID: "g1"}).Match(s) {
		t.Error("personal settlement should not match group scope")
	}
}
