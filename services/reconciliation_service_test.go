package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fadhlanhapp/settleup-engine/models"
	"github.com/fadhlanhapp/settleup-engine/utils"
)

const payer int64 = 1

func taggedNote(expenseID int64, shareAmount float64) string {
	return EncodePaymentNote(models.PaymentIntentMetadata{
		Type:        utils.NoteTypeExpenseSharePayment,
		ExpenseID:   int64Ptr(expenseID),
		ShareAmount: ptr(shareAmount),
	})
}

func dinner() *models.Expense {
	return &models.Expense{
		ID:      7,
		Amount:  45,
		PayerID: payer,
		Shares: []models.ExpenseShare{
			{MemberID: payer, Amount: 15},
			{MemberID: 5, Amount: 15},
			{MemberID: 9, Amount: 15},
		},
	}
}

func statusFor(t *testing.T, state models.ExpensePaymentState, memberID int64) models.ShareSettlementStatus {
	t.Helper()
	for _, status := range state.ShareStatuses {
		if status.MemberID == memberID {
			return status
		}
	}
	t.Fatalf("no share status for member %d", memberID)
	return models.ShareSettlementStatus{}
}

func TestReconcile_MetadataMatchWinsAndConsumesOnlyTaggedPayment(t *testing.T) {
	pending := []models.Payment{
		{ID: 100, FromMemberID: 5, ToMemberID: payer, Amount: 15, Note: "for the taxi"},
		{ID: 101, FromMemberID: 5, ToMemberID: payer, Amount: 15, Note: taggedNote(7, 15)},
	}

	state := ReconcileExpensePayments(dinner(), pending, nil, payer)

	share := statusFor(t, state, 5)
	assert.Equal(t, models.ShareStatusPending, share.Status)
	assert.Equal(t, models.MatchKindMetadata, share.MatchKind)
	require.NotNil(t, share.Payment)
	assert.Equal(t, int64(101), share.Payment.ID)
	assert.Equal(t, "Payment recorded for $15.00", share.DisplayNote)

	assert.Equal(t, models.ShareStatusUnpaid, statusFor(t, state, 9).Status)
	assert.Len(t, state.ShareStatuses, 2, "payer's own share is not listed")
}

func TestReconcile_HeuristicSingleCandidate(t *testing.T) {
	expense := &models.Expense{
		ID: 3, Amount: 16, PayerID: payer,
		Shares: []models.ExpenseShare{{MemberID: payer, Amount: 8}, {MemberID: 9, Amount: 8.00}},
	}
	payment := models.Payment{ID: 55, FromMemberID: 9, ToMemberID: payer, Amount: 8.00, Note: "gracias"}

	confirmedState := ReconcileExpensePayments(expense, nil, []models.Payment{payment}, payer)
	share := statusFor(t, confirmedState, 9)
	assert.Equal(t, models.ShareStatusConfirmed, share.Status)
	assert.Equal(t, models.MatchKindHeuristic, share.MatchKind)
	assert.Equal(t, "gracias", share.DisplayNote)

	pendingState := ReconcileExpensePayments(expense, []models.Payment{payment}, nil, payer)
	assert.Equal(t, models.ShareStatusPending, statusFor(t, pendingState, 9).Status)
}

func TestReconcile_HeuristicNeedsExactlyOneCandidateAndMatchingAmount(t *testing.T) {
	expense := &models.Expense{
		ID: 3, Amount: 16, PayerID: payer,
		Shares: []models.ExpenseShare{{MemberID: 9, Amount: 8}},
	}

	twoCandidates := []models.Payment{
		{ID: 1, FromMemberID: 9, ToMemberID: payer, Amount: 8},
		{ID: 2, FromMemberID: 9, ToMemberID: payer, Amount: 8},
	}
	state := ReconcileExpensePayments(expense, twoCandidates, nil, payer)
	assert.Equal(t, models.ShareStatusUnpaid, statusFor(t, state, 9).Status)

	offByACent := []models.Payment{{ID: 3, FromMemberID: 9, ToMemberID: payer, Amount: 8.01}}
	state = ReconcileExpensePayments(expense, offByACent, nil, payer)
	assert.Equal(t, models.ShareStatusUnpaid, statusFor(t, state, 9).Status)

	wrongReceiver := []models.Payment{{ID: 5, FromMemberID: 9, ToMemberID: 42, Amount: 8}}
	state = ReconcileExpensePayments(expense, wrongReceiver, nil, payer)
	assert.Equal(t, models.ShareStatusUnpaid, statusFor(t, state, 9).Status)
}

func TestReconcile_HeuristicIgnoresTagForAnotherExpense(t *testing.T) {
	expense := &models.Expense{
		ID: 7, Amount: 30, PayerID: payer,
		Shares: []models.ExpenseShare{{MemberID: 5, Amount: 15}},
	}

	taggedElsewhere := []models.Payment{{ID: 4, FromMemberID: 5, ToMemberID: payer, Amount: 15, Note: taggedNote(8, 15)}}
	state := ReconcileExpensePayments(expense, taggedElsewhere, nil, payer)

	status := statusFor(t, state, 5)
	assert.Equal(t, models.ShareStatusPending, status.Status)
	assert.Equal(t, models.MatchKindHeuristic, status.MatchKind)
	require.NotNil(t, status.Payment)
	assert.Equal(t, int64(4), status.Payment.ID)
}

func TestReconcile_PendingTakesPrecedenceOverConfirmed(t *testing.T) {
	pending := []models.Payment{{ID: 1, FromMemberID: 5, ToMemberID: payer, Amount: 15, Note: taggedNote(7, 15)}}
	confirmed := []models.Payment{{ID: 2, FromMemberID: 5, ToMemberID: payer, Amount: 15, Note: taggedNote(7, 15), Confirmed: true}}

	state := ReconcileExpensePayments(dinner(), pending, confirmed, payer)

	share := statusFor(t, state, 5)
	assert.Equal(t, models.ShareStatusPending, share.Status)
	assert.Equal(t, int64(1), share.Payment.ID)
}

func TestReconcile_NoDoubleAttribution(t *testing.T) {
	expense := &models.Expense{
		ID: 11, Amount: 30, PayerID: payer,
		Shares: []models.ExpenseShare{
			{MemberID: 5, Amount: 10},
			{MemberID: 5, Amount: 10},
			{MemberID: 6, Amount: 10},
		},
	}
	pending := []models.Payment{
		{ID: 1, FromMemberID: 5, ToMemberID: payer, Amount: 10, Note: taggedNote(11, 10)},
		{ID: 2, FromMemberID: 6, ToMemberID: payer, Amount: 10},
	}
	confirmed := []models.Payment{
		{ID: 3, FromMemberID: 5, ToMemberID: payer, Amount: 10, Confirmed: true},
	}

	state := ReconcileExpensePayments(expense, pending, confirmed, payer)

	seen := map[int64]bool{}
	for _, status := range state.ShareStatuses {
		if status.Payment == nil {
			continue
		}
		assert.False(t, seen[status.Payment.ID], "payment %d attributed twice", status.Payment.ID)
		seen[status.Payment.ID] = true
	}
	assert.Equal(t, map[int64]bool{1: true, 2: true, 3: true}, seen)
	assert.Equal(t, models.ShareStatusPending, state.ShareStatuses[0].Status)
	assert.Equal(t, models.ShareStatusConfirmed, state.ShareStatuses[1].Status)
	assert.Equal(t, models.ShareStatusPending, state.ShareStatuses[2].Status)
}

func TestReconcile_DoesNotMutateInputs(t *testing.T) {
	pending := []models.Payment{
		{ID: 1, FromMemberID: 5, ToMemberID: payer, Amount: 15},
		{ID: 2, FromMemberID: 9, ToMemberID: payer, Amount: 15},
	}
	before := append([]models.Payment(nil), pending...)

	ReconcileExpensePayments(dinner(), pending, nil, payer)
	assert.Equal(t, before, pending)
}

func TestReconcile_ViewerStates(t *testing.T) {
	expense := dinner()

	state := ReconcileExpensePayments(expense, nil, nil, 5)
	assert.True(t, state.CanPay)
	assert.True(t, state.ShowPayButton)
	assert.False(t, state.Settled)
	assert.Equal(t, models.ViewerStatusPayNow, state.ViewerStatus)

	pending := []models.Payment{{ID: 1, FromMemberID: 5, ToMemberID: payer, Amount: 15, Note: taggedNote(7, 15)}}
	state = ReconcileExpensePayments(expense, pending, nil, 5)
	assert.False(t, state.ShowPayButton)
	assert.False(t, state.Settled)
	assert.Equal(t, models.ViewerStatusPending, state.ViewerStatus)
	require.NotNil(t, state.PendingPayment)
	assert.Equal(t, int64(1), state.PendingPayment.ID)

	confirmed := []models.Payment{{ID: 2, FromMemberID: 5, ToMemberID: payer, Amount: 15, Confirmed: true}}
	state = ReconcileExpensePayments(expense, nil, confirmed, 5)
	assert.True(t, state.Settled)
	assert.Equal(t, models.ViewerStatusConfirmed, state.ViewerStatus)

	state = ReconcileExpensePayments(expense, nil, nil, payer)
	assert.True(t, state.IsPayer)
	assert.False(t, state.CanPay)
	assert.True(t, state.Settled)
	assert.Equal(t, models.ViewerStatusSettled, state.ViewerStatus)

	state = ReconcileExpensePayments(expense, nil, nil, 77)
	assert.Nil(t, state.ViewerShare)
	assert.Equal(t, models.ViewerStatusNone, state.ViewerStatus)
}

func TestReconcile_NegligibleShareIsNeverPayable(t *testing.T) {
	expense := &models.Expense{
		ID: 4, Amount: 10, PayerID: payer,
		Shares: []models.ExpenseShare{{MemberID: payer, Amount: 9.991}, {MemberID: 5, Amount: 0.009}},
	}

	state := ReconcileExpensePayments(expense, nil, nil, 5)
	assert.False(t, state.HasShareToPay)
	assert.False(t, state.ShowPayButton)
	assert.True(t, state.Settled)
	assert.Empty(t, state.ShareStatuses)
}

func TestReconcile_UnknownPayer(t *testing.T) {
	expense := &models.Expense{ID: 4, Amount: 10, Shares: []models.ExpenseShare{{MemberID: 5, Amount: 10}}}

	state := ReconcileExpensePayments(expense, nil, nil, 5)
	assert.False(t, state.CanPay)
	assert.Empty(t, state.ShareStatuses)
}

func TestReconciliationService_ExpensePaymentState(t *testing.T) {
	store := newFakeStore()
	store.addGroup(&models.Group{
		ID:       1,
		Name:     "Trip",
		Members:  []models.Member{{ID: payer, Name: "Pat"}, {ID: 5, Name: "Eve"}, {ID: 9, Name: "Ivan"}},
		Expenses: []models.Expense{*dinner()},
		PendingPayments: []models.Payment{
			{ID: 1, FromMemberID: 9, ToMemberID: payer, Amount: 15, Note: taggedNote(7, 15)},
		},
	})
	service := NewReconciliationService(store)

	state, err := service.ExpensePaymentState(context.Background(), 1, 7, payer)
	require.NoError(t, err)
	assert.Equal(t, "Eve", statusFor(t, *state, 5).MemberName)
	assert.Equal(t, models.ShareStatusPending, statusFor(t, *state, 9).Status)

	_, err = service.ExpensePaymentState(context.Background(), 1, 8, payer)
	var appErr *utils.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 404, appErr.Code)
}
