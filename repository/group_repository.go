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

// GroupRepository handles groups, members and memberships, and assembles
// group snapshots from the expense and payment tables
type GroupRepository struct {
	db       *DB
	expenses *ExpenseRepository
	payments *PaymentRepository
}

// NewGroupRepository creates a new GroupRepository
func NewGroupRepository(db *DB, expenses *ExpenseRepository, payments *PaymentRepository) *GroupRepository {
	return &GroupRepository{db: db, expenses: expenses, payments: payments}
}

// CreateMember stores a member and returns its id
func (r *GroupRepository) CreateMember(ctx context.Context, name, email string) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, r.db.Rebind(
		"INSERT INTO members (name, email, created_at) VALUES (?, ?, ?) RETURNING id"),
		name, email, formatTimestamp(time.Now()),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert member: %w", err)
	}
	return id, nil
}

// CreateGroup stores a group and returns its id
func (r *GroupRepository) CreateGroup(ctx context.Context, name string) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, r.db.Rebind(
		"INSERT INTO expense_groups (name, created_at) VALUES (?, ?) RETURNING id"),
		name, formatTimestamp(time.Now()),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert group: %w", err)
	}
	return id, nil
}

// AddGroupMember adds a member to a group. Adding an existing member is a no-op.
func (r *GroupRepository) AddGroupMember(ctx context.Context, groupID, memberID int64) error {
	if err := r.exists(ctx, "SELECT 1 FROM expense_groups WHERE id = ?", groupID); err != nil {
		return err
	}
	if err := r.exists(ctx, "SELECT 1 FROM members WHERE id = ?", memberID); err != nil {
		return err
	}

	_, err := r.db.ExecContext(ctx, r.db.Rebind(
		`INSERT INTO group_members (group_id, member_id, joined_at) VALUES (?, ?, ?)
         ON CONFLICT (group_id, member_id) DO NOTHING`),
		groupID, memberID, formatTimestamp(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("failed to add member to group: %w", err)
	}
	return nil
}

// CreateExpense stores an expense with its shares
func (r *GroupRepository) CreateExpense(ctx context.Context, expense *models.Expense) error {
	return r.expenses.StoreExpense(ctx, expense)
}

// ListGroupsForMember returns the groups a member belongs to
func (r *GroupRepository) ListGroupsForMember(ctx context.Context, memberID int64) ([]models.GroupRef, error) {
	rows, err := r.db.QueryContext(ctx, r.db.Rebind(
		`SELECT g.id, g.name
         FROM expense_groups g
         JOIN group_members gm ON gm.group_id = g.id
         WHERE gm.member_id = ?
         ORDER BY g.id`), memberID)
	if err != nil {
		return nil, fmt.Errorf("failed to query member groups: %w", err)
	}
	defer rows.Close()

	refs := []models.GroupRef{}
	for rows.Next() {
		var ref models.GroupRef
		if err := rows.Scan(&ref.ID, &ref.Name); err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		refs = append(refs, ref)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating groups: %w", err)
	}
	return refs, nil
}

// GetGroupSnapshot loads a group with its members, expenses and payments
func (r *GroupRepository) GetGroupSnapshot(ctx context.Context, groupID int64) (*models.Group, error) {
	group := &models.Group{ID: groupID}
	err := r.db.QueryRowContext(ctx, r.db.Rebind("SELECT name FROM expense_groups WHERE id = ?"), groupID).
		Scan(&group.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.ErrNotFound
		}
		return nil, fmt.Errorf("failed to query group: %w", err)
	}

	if group.Members, err = r.groupMembers(ctx, groupID); err != nil {
		return nil, err
	}
	if group.Expenses, err = r.expenses.GetExpensesByGroupID(ctx, groupID); err != nil {
		return nil, err
	}
	payments, err := r.payments.GetPaymentsByGroupID(ctx, groupID)
	if err != nil {
		return nil, err
	}

	group.PendingPayments = []models.Payment{}
	group.ConfirmedPayments = []models.Payment{}
	for _, payment := range payments {
		if payment.Confirmed {
			group.ConfirmedPayments = append(group.ConfirmedPayments, payment)
		} else {
			group.PendingPayments = append(group.PendingPayments, payment)
		}
	}

	amounts := make([]float64, 0, len(group.Expenses))
	for i := range group.Expenses {
		group.Expenses[i].PayerName = group.MemberName(group.Expenses[i].PayerID)
		amounts = append(amounts, group.Expenses[i].Amount)
	}
	total := utils.SumMoney(amounts...)
	group.TotalAmount = &total

	return group, nil
}

func (r *GroupRepository) groupMembers(ctx context.Context, groupID int64) ([]models.Member, error) {
	rows, err := r.db.QueryContext(ctx, r.db.Rebind(
		`SELECT m.id, m.name, m.email
         FROM members m
         JOIN group_members gm ON gm.member_id = m.id
         WHERE gm.group_id = ?
         ORDER BY m.id`), groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to query group members: %w", err)
	}
	defer rows.Close()

	members := []models.Member{}
	for rows.Next() {
		var member models.Member
		if err := rows.Scan(&member.ID, &member.Name, &member.Email); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, member)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating members: %w", err)
	}
	return members, nil
}

func (r *GroupRepository) exists(ctx context.Context, query string, id int64) error {
	var one int
	err := r.db.QueryRowContext(ctx, r.db.Rebind(query), id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return utils.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to check existence: %w", err)
	}
	return nil
}
