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

// CreateSettlement persists a new settlement.
func (s *SQLiteStore) CreateSettlement(ctx context.Context, settlement *models.Settlement) error {
	if settlement.ID == "" {
		settlement.ID = uuid.New().String()
	}
	if settlement.CreatedAt == 0 {
		settlement.CreatedAt = time.Now().Unix()
	}
	if settlement.Date == 0 {
		settlement.Date = settlement.CreatedAt
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO settlements (id, amount, note, date, paid_by_user_id, received_by_user_id, group_id, created_by, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		settlement.ID, settlement.Amount, nullable(settlement.Note), settlement.Date,
		settlement.PaidByUserID, settlement.ReceivedByUserID, nullable(settlement.GroupID),
		settlement.CreatedBy, settlement.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert settlement: %w", err)
	}

	for _, expenseID := range settlement.RelatedExpenseIDs {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO settlement_expenses (settlement_id, expense_id) VALUES (?, ?)",
			settlement.ID, expenseID,
		)
		if err != nil {
			return fmt.Errorf("failed to insert related expense: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// ListSettlements returns settlements matching the filter.
func (s *SQLiteStore) ListSettlements(ctx context.Context, f storage.SettlementFilter) ([]*models.Settlement, error) {
	query := `SELECT id, amount, note, date, paid_by_user_id, received_by_user_id, group_id, created_by, created_at
		 FROM settlements`
	var (
		clauses []string
		args    []any
	)
	if f.Participant != "" {
		clauses = append(clauses, "(paid_by_user_id = ? OR received_by_user_id = ?)")
		args = append(args, f.Participant, f.Participant)
	}
	switch f.Scope {
	case storage.ScopePersonal:
		clauses = append(clauses, "group_id IS NULL")
	case storage.ScopeGroup:
		clauses = append(clauses, "group_id = ?")
		args = append(args, f.GroupID)
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
		return nil, fmt.Errorf("failed to list settlements: %w", err)
	}
	defer rows.Close()

	var settlements []*models.Settlement
	for rows.Next() {
		st := &models.Settlement{}
		var note, groupID sql.NullString
		if err := rows.Scan(&st.ID, &st.Amount, &note, &st.Date,
			&st.PaidByUserID, &st.ReceivedByUserID, &groupID, &st.CreatedBy, &st.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan settlement: %w", err)
		}
		st.Note = note.String
		st.GroupID = groupID.String
		settlements = append(settlements, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate settlements: %w", err)
	}

	if err := s.loadRelatedExpenses(ctx, settlements); err != nil {
		return nil, err
	}

	return settlements, nil
}

// loadRelatedExpenses attaches related expense ids in one query.
func (s *SQLiteStore) loadRelatedExpenses(ctx context.Context, settlements []*models.Settlement) error {
	if len(settlements) == 0 {
		return nil
	}

	byID := make(map[string]*models.Settlement, len(settlements))
	args := make([]any, len(settlements))
	for i, st := range settlements {
		byID[st.ID] = st
		args[i] = st.ID
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT settlement_id, expense_id FROM settlement_expenses
		 WHERE settlement_id IN (`+placeholders(len(settlements))+`)`,
		args...,
	)
	if err != nil {
		return fmt.Errorf("failed to load related expenses: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var settlementID, expenseID string
		if err := rows.Scan(&settlementID, &expenseID); err != nil {
			return fmt.Errorf("failed to scan related expense: %w", err)
		}
		if st, ok := byID[settlementID]; ok {
			st.RelatedExpenseIDs = append(st.RelatedExpenseIDs, expenseID)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate related expenses: %w", err)
	}

	return nil
}
