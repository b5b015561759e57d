package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fadhlanhapp/settleup-engine/models"
	"github.com/fadhlanhapp/settleup-engine/utils"
)

func paymentFixture() (*fakeStore, *recordingPublisher, *PaymentService) {
	store := newFakeStore()
	store.addGroup(&models.Group{
		ID:      1,
		Name:    "Flat",
		Members: []models.Member{{ID: 1, Name: "Ana"}, {ID: 2, Name: "Ben"}},
	})
	publisher := &recordingPublisher{}
	return store, publisher, NewPaymentService(store, store, publisher)
}

func appErrorCode(t *testing.T, err error) int {
	t.Helper()
	var appErr *utils.AppError
	require.ErrorAs(t, err, &appErr)
	return appErr.Code
}

func TestPaymentService_CreatePaymentEncodesIntent(t *testing.T) {
	_, publisher, service := paymentFixture()

	payment, err := service.CreatePayment(context.Background(), 1, &models.CreatePaymentRequest{
		FromMemberID:  2,
		ToMemberID:    1,
		Amount:        15.004,
		PaymentMethod: "Efectivo",
		Metadata: &models.PaymentIntentMetadata{
			Type:      utils.NoteTypeExpenseSharePayment,
			ExpenseID: int64Ptr(7),
		},
	})

	require.NoError(t, err)
	assert.Equal(t, 15.0, payment.Amount)
	assert.False(t, payment.Confirmed)
	assert.Equal(t, "cash", payment.PaymentMethod)

	metadata := DecodePaymentNote(payment.Note)
	require.NotNil(t, metadata)
	assert.Equal(t, int64(7), *metadata.ExpenseID)
	assert.Equal(t, "Efectivo", metadata.PaymentMethod)
	assert.Equal(t, []string{"1:payment.created"}, publisher.events)
}

func TestPaymentService_CreatePaymentValidation(t *testing.T) {
	_, _, service := paymentFixture()
	ctx := context.Background()

	_, err := service.CreatePayment(ctx, 1, &models.CreatePaymentRequest{FromMemberID: 1, ToMemberID: 1, Amount: 5})
	assert.Equal(t, http.StatusBadRequest, appErrorCode(t, err))

	_, err = service.CreatePayment(ctx, 1, &models.CreatePaymentRequest{FromMemberID: 2, ToMemberID: 1, Amount: 0.004})
	assert.Equal(t, http.StatusBadRequest, appErrorCode(t, err))

	_, err = service.CreatePayment(ctx, 1, &models.CreatePaymentRequest{FromMemberID: 3, ToMemberID: 1, Amount: 5})
	assert.Equal(t, http.StatusBadRequest, appErrorCode(t, err))

	_, err = service.CreatePayment(ctx, 9, &models.CreatePaymentRequest{FromMemberID: 2, ToMemberID: 1, Amount: 5})
	assert.Equal(t, http.StatusNotFound, appErrorCode(t, err))
}

func TestPaymentService_ConfirmPaymentIsOneWayAndReceiverOnly(t *testing.T) {
	_, publisher, service := paymentFixture()
	ctx := context.Background()

	payment, err := service.CreatePayment(ctx, 1, &models.CreatePaymentRequest{FromMemberID: 2, ToMemberID: 1, Amount: 20})
	require.NoError(t, err)
	assert.Empty(t, payment.Note)

	_, err = service.ConfirmPayment(ctx, payment.ID, 2)
	assert.Equal(t, http.StatusForbidden, appErrorCode(t, err))

	confirmed, err := service.ConfirmPayment(ctx, payment.ID, 1)
	require.NoError(t, err)
	assert.True(t, confirmed.Confirmed)

	_, err = service.ConfirmPayment(ctx, payment.ID, 1)
	assert.Equal(t, http.StatusConflict, appErrorCode(t, err))

	_, err = service.ConfirmPayment(ctx, 4242, 1)
	assert.Equal(t, http.StatusNotFound, appErrorCode(t, err))

	assert.Equal(t, []string{"1:payment.created", "1:payment.confirmed"}, publisher.events)
}

func TestPaymentService_ConfirmedPaymentSettlesShare(t *testing.T) {
	store, _, service := paymentFixture()
	ctx := context.Background()
	store.groups[1].Expenses = []models.Expense{{
		ID: 7, Amount: 30, PayerID: 1,
		Shares: []models.ExpenseShare{{MemberID: 1, Amount: 15}, {MemberID: 2, Amount: 15}},
	}}

	payment, err := service.CreatePayment(ctx, 1, &models.CreatePaymentRequest{
		FromMemberID: 2, ToMemberID: 1, Amount: 15,
		Metadata: &models.PaymentIntentMetadata{Type: utils.NoteTypeExpenseSharePayment, ExpenseID: int64Ptr(7)},
	})
	require.NoError(t, err)

	reconciler := NewReconciliationService(store)
	state, err := reconciler.ExpensePaymentState(ctx, 1, 7, 2)
	require.NoError(t, err)
	assert.Equal(t, models.ViewerStatusPending, state.ViewerStatus)

	_, err = service.ConfirmPayment(ctx, payment.ID, 1)
	require.NoError(t, err)

	state, err = reconciler.ExpensePaymentState(ctx, 1, 7, 2)
	require.NoError(t, err)
	assert.Equal(t, models.ViewerStatusConfirmed, state.ViewerStatus)

	settlement, err := NewSettlementService(store).SettleGroup(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, settlement.Transfers)
}
