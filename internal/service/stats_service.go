package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/splitr-app/splitr/internal/models"
	"github.com/splitr-app/splitr/internal/storage"
)

// MonthTotal is one calendar month's spend. Month is the Unix timestamp of
// the month start in UTC.
type MonthTotal struct {
	Month int64   `json:"month"`
	Total float64 `json:"total"`
}

// StatsService computes per-subject spending statistics.
//
// Spend is always measured as the subject's own split amount, never the
// gross expense: paying for the table is not spending the whole bill.
type StatsService struct {
	reader  *storage.Reader
	timeout time.Duration
}

// NewStatsService creates a StatsService reading through the given store.
func NewStatsService(store storage.Store, timeout time.Duration) *StatsService {
	return &StatsService{reader: storage.NewReader(store), timeout: timeout}
}

// TotalSpent sums the subject's split amounts over expenses dated within
// the given year. A nil subject or any internal fault yields 0.
func (s *StatsService) TotalSpent(ctx context.Context, subject *models.User, year int) float64 {
	if subject == nil {
		return 0
	}

	total, err := s.computeTotalSpent(ctx, subject, year)
	if err != nil {
		slog.Error("total spent aggregation failed, serving default", "user_id", subject.ID, "year", year, "error", err)
		return 0
	}
	return total
}

func (s *StatsService) computeTotalSpent(ctx context.Context, subject *models.User, year int) (float64, error) {
	expenses, err := s.yearExpenses(ctx, subject.ID, year)
	if err != nil {
		return 0, err
	}

	var total float64
	for _, e := range expenses {
		if split := e.SplitFor(subject.ID); split != nil {
			total += split.Amount
		}
	}
	return total, nil
}

// MonthlySpending buckets the subject's spend by calendar month of the
// requested year. It always returns exactly 12 buckets in chronological
// order, zero-filled; a nil subject or internal fault yields 12 zero
// buckets.
func (s *StatsService) MonthlySpending(ctx context.Context, subject *models.User, year int) []MonthTotal {
	buckets := emptyMonths(year)
	if subject == nil {
		return buckets
	}

	filled, err := s.computeMonthlySpending(ctx, subject, year, buckets)
	if err != nil {
		slog.Error("monthly spending aggregation failed, serving default", "user_id", subject.ID, "year", year, "error", err)
		return emptyMonths(year)
	}
	return filled
}

func (s *StatsService) computeMonthlySpending(ctx context.Context, subject *models.User, year int, buckets []MonthTotal) ([]MonthTotal, error) {
	expenses, err := s.yearExpenses(ctx, subject.ID, year)
	if err != nil {
		return nil, err
	}

	index := make(map[int64]int, len(buckets))
	for i, b := range buckets {
		index[b.Month] = i
	}

	for _, e := range expenses {
		split := e.SplitFor(subject.ID)
		if split == nil {
			continue
		}
		if i, ok := index[monthStart(e.Date)]; ok {
			buckets[i].Total += split.Amount
		}
	}

	return buckets, nil
}

// yearExpenses fetches expenses dated within the year that involve the
// subject as payer or participant. The date window excludes records of
// other years up front, so bucketing by the expense's own date stays
// within the 12 requested months.
func (s *StatsService) yearExpenses(ctx context.Context, subjectID string, year int) ([]*models.Expense, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	from, to := yearWindow(year)
	expenses, err := s.reader.Expenses(ctx, storage.ExpenseFilter{DateFrom: from, DateTo: to})
	if err != nil {
		return nil, err
	}

	var involved []*models.Expense
	for _, e := range expenses {
		if e.Involves(subjectID) {
			involved = append(involved, e)
		}
	}
	return involved, nil
}

// yearWindow returns [Jan 1 year, Jan 1 year+1) as Unix timestamps, UTC.
func yearWindow(year int) (int64, int64) {
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	return from.Unix(), from.AddDate(1, 0, 0).Unix()
}

// monthStart truncates a Unix timestamp to its UTC month start.
func monthStart(ts int64) int64 {
	t := time.Unix(ts, 0).UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC).Unix()
}

// emptyMonths returns the 12 zero buckets for a year, ascending.
func emptyMonths(year int) []MonthTotal {
	buckets := make([]MonthTotal, 12)
	for i := range buckets {
		buckets[i].Month = time.Date(year, time.Month(i+1), 1, 0, 0, 0, 0, time.UTC).Unix()
	}
	return buckets
}
