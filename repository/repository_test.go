package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fadhlanhapp/settleup-engine/config"
	"github.com/fadhlanhapp/settleup-engine/models"
	"github.com/fadhlanhapp/settleup-engine/utils"
)

type fixture struct {
	groups   *GroupRepository
	payments *PaymentRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cfg := &config.Config{
		DBDriver:     config.DriverSQLite,
		SQLiteDBPath: filepath.Join(t.TempDir(), "nested", "settleup.db"),
	}
	db, err := Open(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	payments := NewPaymentRepository(db)
	return &fixture{
		groups:   NewGroupRepository(db, NewExpenseRepository(db), payments),
		payments: payments,
	}
}

func (f *fixture) seedGroup(t *testing.T, name string, members ...string) (int64, []int64) {
	t.Helper()
	ctx := context.Background()
	groupID, err := f.groups.CreateGroup(ctx, name)
	require.NoError(t, err)

	var ids []int64
	for _, member := range members {
		id, err := f.groups.CreateMember(ctx, member, "")
		require.NoError(t, err)
		require.NoError(t, f.groups.AddGroupMember(ctx, groupID, id))
		ids = append(ids, id)
	}
	return groupID, ids
}

func TestRebind(t *testing.T) {
	pg := &DB{Driver: config.DriverPostgres}
	assert.Equal(t, "SELECT * FROM t WHERE a = $1 AND b = $2", pg.Rebind("SELECT * FROM t WHERE a = ? AND b = ?"))

	lite := &DB{Driver: config.DriverSQLite}
	assert.Equal(t, "SELECT ? ", lite.Rebind("SELECT ? "))
}

func TestGroupRepository_SnapshotRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	groupID, ids := f.seedGroup(t, "Cabin", "Ana", "Ben")
	ana, ben := ids[0], ids[1]

	// Adding twice is a no-op
	require.NoError(t, f.groups.AddGroupMember(ctx, groupID, ben))

	half := 50.0
	createdAt := time.Date(2024, 3, 9, 18, 30, 0, 0, time.UTC)
	expense := &models.Expense{
		GroupID:     groupID,
		Amount:      120.5,
		PayerID:     ana,
		Description: "Firewood",
		CreatedAt:   createdAt,
		Shares: []models.ExpenseShare{
			{MemberID: ana, Amount: 60.25, Percentage: &half},
			{MemberID: ben, Amount: 60.25, Percentage: &half},
		},
	}
	require.NoError(t, f.groups.CreateExpense(ctx, expense))
	assert.NotZero(t, expense.ID)

	pending := &models.Payment{GroupID: groupID, FromMemberID: ben, ToMemberID: ana, Amount: 20, Note: "partial"}
	require.NoError(t, f.payments.CreatePayment(ctx, pending))
	confirmed := &models.Payment{GroupID: groupID, FromMemberID: ben, ToMemberID: ana, Amount: 10, PaymentMethod: "cash"}
	require.NoError(t, f.payments.CreatePayment(ctx, confirmed))
	require.NoError(t, f.payments.ConfirmPayment(ctx, confirmed.ID))

	group, err := f.groups.GetGroupSnapshot(ctx, groupID)
	require.NoError(t, err)

	assert.Equal(t, "Cabin", group.Name)
	assert.Equal(t, []models.Member{{ID: ana, Name: "Ana"}, {ID: ben, Name: "Ben"}}, group.Members)
	require.Len(t, group.Expenses, 1)
	stored := group.Expenses[0]
	assert.Equal(t, expense.ID, stored.ID)
	assert.Equal(t, 120.5, stored.Amount)
	assert.Equal(t, "Ana", stored.PayerName)
	assert.True(t, stored.CreatedAt.Equal(createdAt))
	require.Len(t, stored.Shares, 2)
	require.NotNil(t, stored.Shares[1].Percentage)
	assert.Equal(t, 50.0, *stored.Shares[1].Percentage)
	require.NotNil(t, group.TotalAmount)
	assert.Equal(t, 120.5, *group.TotalAmount)

	require.Len(t, group.PendingPayments, 1)
	assert.Equal(t, "partial", group.PendingPayments[0].Note)
	assert.False(t, group.PendingPayments[0].Confirmed)
	require.Len(t, group.ConfirmedPayments, 1)
	assert.True(t, group.ConfirmedPayments[0].Confirmed)
	assert.Equal(t, "cash", group.ConfirmedPayments[0].PaymentMethod)
}

func TestGroupRepository_ListGroupsForMember(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	first, ids := f.seedGroup(t, "Flat", "Ana")
	second, err := f.groups.CreateGroup(ctx, "Trip")
	require.NoError(t, err)
	require.NoError(t, f.groups.AddGroupMember(ctx, second, ids[0]))

	refs, err := f.groups.ListGroupsForMember(ctx, ids[0])
	require.NoError(t, err)
	assert.Equal(t, []models.GroupRef{{ID: first, Name: "Flat"}, {ID: second, Name: "Trip"}}, refs)

	refs, err = f.groups.ListGroupsForMember(ctx, 9999)
	require.NoError(t, err)
	assert.Empty(t, refs)
}

func TestGroupRepository_NotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	groupID, _ := f.seedGroup(t, "Flat")

	_, err := f.groups.GetGroupSnapshot(ctx, groupID+1)
	assert.ErrorIs(t, err, utils.ErrNotFound)

	assert.ErrorIs(t, f.groups.AddGroupMember(ctx, groupID, 4242), utils.ErrNotFound)
	assert.ErrorIs(t, f.groups.AddGroupMember(ctx, groupID+1, 1), utils.ErrNotFound)
}

func TestPaymentRepository_ConfirmIsOneWay(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	groupID, ids := f.seedGroup(t, "Flat", "Ana", "Ben")

	payment := &models.Payment{GroupID: groupID, FromMemberID: ids[1], ToMemberID: ids[0], Amount: 12.34}
	require.NoError(t, f.payments.CreatePayment(ctx, payment))

	require.NoError(t, f.payments.ConfirmPayment(ctx, payment.ID))
	assert.ErrorIs(t, f.payments.ConfirmPayment(ctx, payment.ID), utils.ErrConflict)
	assert.ErrorIs(t, f.payments.ConfirmPayment(ctx, payment.ID+100), utils.ErrNotFound)

	stored, err := f.payments.GetPaymentByID(ctx, payment.ID)
	require.NoError(t, err)
	assert.True(t, stored.Confirmed)
	assert.Equal(t, 12.34, stored.Amount)
	assert.False(t, stored.CreatedAt.IsZero())

	_, err = f.payments.GetPaymentByID(ctx, payment.ID+100)
	assert.ErrorIs(t, err, utils.ErrNotFound)
}
