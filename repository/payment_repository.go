package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/fadhlanhapp/settleup-engine/models"
	"github.com/fadhlanhapp/settleup-engine/utils"
)

const paymentColumns = `id, group_id, from_member_id, to_member_id, amount, confirmed, note, payment_method, created_at`

// PaymentRepository handles payment data operations
type PaymentRepository struct {
	db *DB
}

// NewPaymentRepository creates a new payment repository
func NewPaymentRepository(db *DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// CreatePayment creates a new payment record
func (r *PaymentRepository) CreatePayment(ctx context.Context, payment *models.Payment) error {
	query := r.db.Rebind(`
		INSERT INTO payments (group_id, from_member_id, to_member_id, amount, confirmed, note, payment_method, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`)
	err := r.db.QueryRowContext(ctx, query, payment.GroupID, payment.FromMemberID, payment.ToMemberID,
		payment.Amount, payment.Confirmed, payment.Note, payment.PaymentMethod,
		formatTimestamp(payment.CreatedAt)).Scan(&payment.ID)
	if err != nil {
		return fmt.Errorf("failed to insert payment: %w", err)
	}

	return nil
}

// GetPaymentsByGroupID retrieves all payments for a specific group, oldest first
func (r *PaymentRepository) GetPaymentsByGroupID(ctx context.Context, groupID int64) ([]models.Payment, error) {
	query := r.db.Rebind(`
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE group_id = ?
		ORDER BY id
	`)
	rows, err := r.db.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to query payments: %w", err)
	}
	defer rows.Close()

	payments := []models.Payment{}
	for rows.Next() {
		payment, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, *payment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating payments: %w", err)
	}

	return payments, nil
}

// GetPaymentByID retrieves a payment by its ID
func (r *PaymentRepository) GetPaymentByID(ctx context.Context, paymentID int64) (*models.Payment, error) {
	query := r.db.Rebind(`
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE id = ?
	`)
	payment, err := scanPayment(r.db.QueryRowContext(ctx, query, paymentID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, utils.ErrNotFound
	}
	return payment, err
}

// ConfirmPayment flips a pending payment to confirmed. Confirming twice
// returns ErrConflict; an unknown id returns ErrNotFound.
func (r *PaymentRepository) ConfirmPayment(ctx context.Context, paymentID int64) error {
	query := r.db.Rebind(`UPDATE payments SET confirmed = ?, confirmed_at = ? WHERE id = ? AND confirmed = ?`)
	result, err := r.db.ExecContext(ctx, query, true, formatTimestamp(time.Now()), paymentID, false)
	if err != nil {
		return fmt.Errorf("failed to confirm payment: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to confirm payment: %w", err)
	}
	if affected > 0 {
		return nil
	}

	if _, err := r.GetPaymentByID(ctx, paymentID); err != nil {
		return err
	}
	return utils.ErrConflict
}

func scanPayment(row rowScanner) (*models.Payment, error) {
	var (
		payment   models.Payment
		createdAt string
	)
	err := row.Scan(&payment.ID, &payment.GroupID, &payment.FromMemberID, &payment.ToMemberID,
		&payment.Amount, &payment.Confirmed, &payment.Note, &payment.PaymentMethod, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan payment: %w", err)
	}
	payment.CreatedAt = parseTimestamp(createdAt)
	return &payment, nil
}
