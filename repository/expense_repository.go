// repository/expense_repository.go
package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fadhlanhapp/settleup-engine/models"
)

// ExpenseRepository handles database operations for expenses
type ExpenseRepository struct {
	db *DB
}

// NewExpenseRepository creates a new ExpenseRepository
func NewExpenseRepository(db *DB) *ExpenseRepository {
	return &ExpenseRepository{db: db}
}

// StoreExpense saves an expense and its shares in one transaction
func (r *ExpenseRepository) StoreExpense(ctx context.Context, expense *models.Expense) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx, r.db.Rebind(
		`INSERT INTO expenses (group_id, payer_id, amount, description, created_at)
         VALUES (?, ?, ?, ?, ?)
         RETURNING id`),
		expense.GroupID, expense.PayerID, expense.Amount, expense.Description,
		formatTimestamp(expense.CreatedAt),
	).Scan(&expense.ID)
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}

	for _, share := range expense.Shares {
		var percentage sql.NullFloat64
		if share.Percentage != nil {
			percentage = sql.NullFloat64{Float64: *share.Percentage, Valid: true}
		}
		_, err = tx.ExecContext(ctx, r.db.Rebind(
			"INSERT INTO expense_shares (expense_id, member_id, amount, percentage) VALUES (?, ?, ?, ?)"),
			expense.ID, share.MemberID, share.Amount, percentage,
		)
		if err != nil {
			return fmt.Errorf("failed to insert expense share: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetExpensesByGroupID retrieves a group's expenses with their shares, oldest first
func (r *ExpenseRepository) GetExpensesByGroupID(ctx context.Context, groupID int64) ([]models.Expense, error) {
	rows, err := r.db.QueryContext(ctx, r.db.Rebind(
		`SELECT id, group_id, payer_id, amount, description, created_at
         FROM expenses
         WHERE group_id = ?
         ORDER BY id`), groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to query expenses: %w", err)
	}
	defer rows.Close()

	expenses := []models.Expense{}
	index := map[int64]int{}
	for rows.Next() {
		var (
			expense   models.Expense
			createdAt string
		)
		if err := rows.Scan(&expense.ID, &expense.GroupID, &expense.PayerID, &expense.Amount,
			&expense.Description, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expense.CreatedAt = parseTimestamp(createdAt)
		expense.Shares = []models.ExpenseShare{}
		index[expense.ID] = len(expenses)
		expenses = append(expenses, expense)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating expenses: %w", err)
	}

	shareRows, err := r.db.QueryContext(ctx, r.db.Rebind(
		`SELECT s.expense_id, s.member_id, s.amount, s.percentage
         FROM expense_shares s
         JOIN expenses e ON e.id = s.expense_id
         WHERE e.group_id = ?
         ORDER BY s.expense_id, s.id`), groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to query expense shares: %w", err)
	}
	defer shareRows.Close()

	for shareRows.Next() {
		var (
			expenseID  int64
			share      models.ExpenseShare
			percentage sql.NullFloat64
		)
		if err := shareRows.Scan(&expenseID, &share.MemberID, &share.Amount, &percentage); err != nil {
			return nil, fmt.Errorf("failed to scan expense share: %w", err)
		}
		if percentage.Valid {
			value := percentage.Float64
			share.Percentage = &value
		}
		if i, ok := index[expenseID]; ok {
			expenses[i].Shares = append(expenses[i].Shares, share)
		}
	}
	if err := shareRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating expense shares: %w", err)
	}

	return expenses, nil
}
