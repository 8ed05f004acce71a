package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/splitr-app/splitr/internal/models"
	"github.com/splitr-app/splitr/internal/storage"
)

// CreateExpense persists a new expense and its splits.
func (s *SQLiteStore) CreateExpense(ctx context.Context, expense *models.Expense) error {
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	if expense.CreatedAt == 0 {
		expense.CreatedAt = time.Now().Unix()
	}
	if expense.Date == 0 {
		expense.Date = expense.CreatedAt
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO expenses (id, description, amount, category, date, paid_by_user_id, split_type, group_id, created_by, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		expense.ID, expense.Description, expense.Amount, nullable(expense.Category),
		expense.Date, expense.PaidByUserID, expense.SplitType, nullable(expense.GroupID),
		expense.CreatedBy, expense.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}

	for i, split := range expense.Splits {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO expense_splits (expense_id, position, user_id, amount, paid) VALUES (?, ?, ?, ?, ?)",
			expense.ID, i, split.UserID, split.Amount, split.Paid,
		)
		if err != nil {
			return fmt.Errorf("failed to insert split: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// ListExpenses returns expenses matching the filter, splits included.
func (s *SQLiteStore) ListExpenses(ctx context.Context, f storage.ExpenseFilter) ([]*models.Expense, error) {
	query := `SELECT id, description, amount, category, date, paid_by_user_id, split_type, group_id, created_by, created_at
		 FROM expenses`
	var (
		clauses []string
		args    []any
	)
	if f.PayerID != "" {
		clauses = append(clauses, "paid_by_user_id = ?")
		args = append(args, f.PayerID)
	}
	switch f.Scope {
	case storage.ScopePersonal:
		clauses = append(clauses, "group_id IS NULL")
	case storage.ScopeGroup:
		clauses = append(clauses, "group_id = ?")
		args = append(args, f.GroupID)
	}
	if f.DateFrom != 0 {
		clauses = append(clauses, "date >= ?")
		args = append(args, f.DateFrom)
	}
	if f.DateTo != 0 {
		clauses = append(clauses, "date < ?")
		args = append(args, f.DateTo)
	}
	for i, c := range clauses {
		if i == 0 {
			query += " WHERE " + c
		} else {
			query += " AND " + c
		}
	}
	query += " ORDER BY date DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []*models.Expense
	for rows.Next() {
		e := &models.Expense{}
		var category, groupID sql.NullString
		if err := rows.Scan(&e.ID, &e.Description, &e.Amount, &category, &e.Date,
			&e.PaidByUserID, &e.SplitType, &groupID, &e.CreatedBy, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		e.Category = category.String
		e.GroupID = groupID.String
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}

	if err := s.loadSplits(ctx, expenses); err != nil {
		return nil, err
	}

	return expenses, nil
}

// loadSplits attaches splits to the given expenses in one query.
func (s *SQLiteStore) loadSplits(ctx context.Context, expenses []*models.Expense) error {
	if len(expenses) == 0 {
		return nil
	}

	byID := make(map[string]*models.Expense, len(expenses))
	args := make([]any, len(expenses))
	for i, e := range expenses {
		byID[e.ID] = e
		args[i] = e.ID
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT expense_id, user_id, amount, paid FROM expense_splits
		 WHERE expense_id IN (`+placeholders(len(expenses))+`) ORDER BY expense_id, position`,
		args...,
	)
	if err != nil {
		return fmt.Errorf("failed to load splits: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			expenseID string
			split     models.Split
		)
		if err := rows.Scan(&expenseID, &split.UserID, &split.Amount, &split.Paid); err != nil {
			return fmt.Errorf("failed to scan split: %w", err)
		}
		if e, ok := byID[expenseID]; ok {
			e.Splits = append(e.Splits, split)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate splits: %w", err)
	}

	return nil
}
