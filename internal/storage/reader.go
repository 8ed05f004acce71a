package storage

import (
	"context"
	"errors"
	"log/slog"

	"github.com/splitr-app/splitr/internal/models"
)

// Reader wraps a Store with the degraded-query recovery the aggregators
// rely on: when a filtered listing fails with ErrFilterUnsupported, Reader
// retries as an unfiltered scan and applies the filter's Match in memory.
// Same result, different cost; the degradation is logged and never
// surfaced.
//
// Reader is stateless and safe for concurrent use.
type Reader struct {
	store Store
}

// NewReader wraps store.
func NewReader(store Store) *Reader {
	return &Reader{store: store}
}

// Expenses lists expenses matching f, degrading to a scan if needed.
func (r *Reader) Expenses(ctx context.Context, f ExpenseFilter) ([]*models.Expense, error) {
	expenses, err := r.store.ListExpenses(ctx, f)
	if err == nil {
		return expenses, nil
	}
	if !errors.Is(err, ErrFilterUnsupported) {
		return nil, err
	}

	slog.Warn("filtered expense query unsupported, falling back to scan", "filter", f)
	all, err := r.store.ListExpenses(ctx, ExpenseFilter{})
	if err != nil {
		return nil, err
	}

	var matched []*models.Expense
	for _, e := range all {
		if f.Match(e) {
			matched = append(matched, e)
		}
	}
	return matched, nil
}

// Settlements lists settlements matching f, degrading to a scan if needed.
func (r *Reader) Settlements(ctx context.Context, f SettlementFilter) ([]*models.Settlement, error) {
	settlements, err := r.store.ListSettlements(ctx, f)
	if err == nil {
		return settlements, nil
	}
	if !errors.Is(err, ErrFilterUnsupported) {
		return nil, err
	}

	slog.Warn("filtered settlement query unsupported, falling back to scan", "filter", f)
	all, err := r.store.ListSettlements(ctx, SettlementFilter{})
	if err != nil {
		return nil, err
	}

	var matched []*models.Settlement
	for _, s := range all {
		if f.Match(s) {
			matched = append(matched, s)
		}
	}
	return matched, nil
}

// GetGroup passes through to the underlying store.
func (r *Reader) GetGroup(ctx context.Context, groupID string) (*models.Group, error) {
	return r.store.GetGroup(ctx, groupID)
}

// ListGroups passes through to the underlying store.
func (r *Reader) ListGroups(ctx context.Context) ([]*models.Group, error) {
	return r.store.ListGroups(ctx)
}

// GetUser passes through to the underlying store.
func (r *Reader) GetUser(ctx context.Context, userID string) (*models.User, error) {
	return r.store.GetUser(ctx, userID)
}

// GetUsersByIDs passes through to the underlying store.
func (r *Reader) GetUsersByIDs(ctx context.Context, ids []string) (map[string]*models.User, error) {
	return r.store.GetUsersByIDs(ctx, ids)
}
