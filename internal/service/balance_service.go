// Package service implements the read-side aggregation operations over the
// ledger: personal and group balances, spending statistics, and
// contact/group discovery.
//
// Every public operation is a boundary adapter over a fallible compute
// function: the compute functions return errors freely, and the boundary
// maps a nil subject or any internal fault to the operation's documented
// zero-valued default, logging the fault. Callers of summary reads never
// see a raw failure. Membership-scoped detail reads (the group ledger) are
// the exception; they fail explicitly.
package service

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/splitr-app/splitr/internal/ledger"
	"github.com/splitr-app/splitr/internal/models"
	"github.com/splitr-app/splitr/internal/storage"
)

// profileFetchLimit bounds concurrent counterparty profile lookups within
// a single aggregation call.
const profileFetchLimit = 4

// CounterpartyBalance is one entry in the owe lists. Amount is always
// strictly positive; direction is carried by which list the entry is in.
type CounterpartyBalance struct {
	UserID   string  `json:"userId"`
	Name     string  `json:"name"`
	ImageURL string  `json:"imageUrl,omitempty"`
	Amount   float64 `json:"amount"`
}

// OweDetails holds the per-counterparty breakdown, each list sorted
// descending by amount. A counterparty appears in at most one list.
type OweDetails struct {
	YouOwe       []CounterpartyBalance `json:"youOwe"`
	YouAreOwedBy []CounterpartyBalance `json:"youAreOwedBy"`
}

// BalanceSummary is the personal (1-to-1) balance view for one subject.
type BalanceSummary struct {
	YouOwe       float64    `json:"youOwe"`
	YouAreOwed   float64    `json:"youAreOwed"`
	TotalBalance float64    `json:"totalBalance"`
	OweDetails   OweDetails `json:"oweDetails"`
}

// EmptyBalanceSummary returns the zero-valued default shape served to
// unauthenticated callers and on internal faults.
func EmptyBalanceSummary() BalanceSummary {
	return BalanceSummary{
		OweDetails: OweDetails{
			YouOwe:       []CounterpartyBalance{},
			YouAreOwedBy: []CounterpartyBalance{},
		},
	}
}

// BalanceService aggregates personal (ungrouped) balances.
type BalanceService struct {
	reader  *storage.Reader
	timeout time.Duration
}

// NewBalanceService creates a BalanceService reading through the given
// store. timeout bounds each aggregation's store access.
func NewBalanceService(store storage.Store, timeout time.Duration) *BalanceService {
	return &BalanceService{reader: storage.NewReader(store), timeout: timeout}
}

// GetBalances computes the subject's personal balance summary. A nil
// subject or any internal fault yields the zero-valued default; this
// operation never fails.
func (s *BalanceService) GetBalances(ctx context.Context, subject *models.User) BalanceSummary {
	if subject == nil {
		return EmptyBalanceSummary()
	}

	summary, err := s.computeBalances(ctx, subject)
	if err != nil {
		slog.Error("balance aggregation failed, serving default", "user_id", subject.ID, "error", err)
		return EmptyBalanceSummary()
	}
	return summary
}

func (s *BalanceService) computeBalances(ctx context.Context, subject *models.User) (BalanceSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	expenses, err := s.personalExpenses(ctx, subject.ID)
	if err != nil {
		return BalanceSummary{}, err
	}

	settlements, err := s.reader.Settlements(ctx, storage.SettlementFilter{
		Participant: subject.ID,
		Scope:       storage.ScopePersonal,
	})
	if err != nil {
		return BalanceSummary{}, err
	}

	nets := ledger.NetBalances(subject.ID, expenses, settlements)

	ids := make([]string, 0, len(nets))
	for id := range nets {
		ids = append(ids, id)
	}
	profiles := s.resolveProfiles(ctx, ids)

	summary := EmptyBalanceSummary()
	for id, net := range nets {
		entry := CounterpartyBalance{UserID: id, Name: "Unknown"}
		if u := profiles[id]; u != nil {
			entry.Name = u.Name
			entry.ImageURL = u.ImageURL
		}
		if net > 0 {
			entry.Amount = net
			summary.YouAreOwed += net
			summary.OweDetails.YouAreOwedBy = append(summary.OweDetails.YouAreOwedBy, entry)
		} else {
			entry.Amount = -net
			summary.YouOwe += -net
			summary.OweDetails.YouOwe = append(summary.OweDetails.YouOwe, entry)
		}
	}
	summary.TotalBalance = summary.YouAreOwed - summary.YouOwe

	sortByAmountDesc(summary.OweDetails.YouOwe)
	sortByAmountDesc(summary.OweDetails.YouAreOwedBy)

	return summary, nil
}

// personalExpenses gathers the ungrouped expenses the subject paid plus
// those where the subject appears in the splits but did not pay.
func (s *BalanceService) personalExpenses(ctx context.Context, subjectID string) ([]*models.Expense, error) {
	paid, err := s.reader.Expenses(ctx, storage.ExpenseFilter{
		PayerID: subjectID,
		Scope:   storage.ScopePersonal,
	})
	if err != nil {
		return nil, err
	}

	personal, err := s.reader.Expenses(ctx, storage.ExpenseFilter{Scope: storage.ScopePersonal})
	if err != nil {
		return nil, err
	}

	expenses := paid
	for _, e := range personal {
		if e.PaidByUserID != subjectID && e.SplitFor(subjectID) != nil {
			expenses = append(expenses, e)
		}
	}
	return expenses, nil
}

// resolveProfiles fetches counterparty profiles concurrently and merges
// them by id. Ids that fail to resolve are simply absent; callers fall
// back to the "Unknown" placeholder.
func (s *BalanceService) resolveProfiles(ctx context.Context, ids []string) map[string]*models.User {
	var mu sync.Mutex
	profiles := make(map[string]*models.User, len(ids))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(profileFetchLimit)
	for _, id := range ids {
		id := id
		g.Go(func() error {
			user, err := s.reader.GetUser(ctx, id)
			if err != nil {
				return nil // skipped, placeholder applies
			}
			mu.Lock()
			profiles[id] = user
			mu.Unlock()
			return nil
		})
	}
	g.Wait()

	return profiles
}

// sortByAmountDesc sorts entries descending by amount, with the user id as
// a tiebreaker so output is deterministic.
func sortByAmountDesc(entries []CounterpartyBalance) {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Amount != entries[j].Amount {
			return entries[i].Amount > entries[j].Amount
		}
		return entries[i].UserID < entries[j].UserID
	})
}
