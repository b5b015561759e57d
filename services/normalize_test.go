package services

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fadhlanhapp/settleup-engine/models"
)

const heterogeneousSnapshot = `{
	"id": "12",
	"name": "Beach house",
	"members": [{"id": 1, "name": "Ana"}, {"memberId": "2", "name": "Ben"}, {"name": "ghost"}],
	"expenses": [
		{"id": 5, "amount": "90", "paidBy": {"id": 1, "name": "Ana"}, "note": "Groceries", "date": "2024-04-02",
		 "shares": [{"memberId": 1, "amount": 45}, {"member": {"id": 2}, "amount": "45"}, {"memberId": 3, "amount": "?"}]},
		{"id": 6, "amount": "n/a", "payer": 2},
		{"id": 7, "amount": 12, "payerId": 3, "tag": "taxi", "createdAt": "2024-04-03T08:00:00Z", "shares": []}
	],
	"aggregatedShares": [{"memberId": 1, "balance": "45"}, {"memberId": "x", "balance": 1}],
	"balanceOriginal": {"1": 45, "2": -45, "total": 0},
	"pendingPayments": [
		{"id": 20, "amount": 45, "fromMember": {"id": 2, "name": "Ben"}, "toMember": 1, "note": "gracias"},
		{"id": 21, "amount": 5, "fromMember": null, "toMember": 1}
	],
	"confirmedPayments": [{"id": 22, "amount": "10", "fromMemberId": 2, "toMemberId": "1", "confirmed": false}]
}`

func TestNormalizeGroup_HeterogeneousShapes(t *testing.T) {
	var raw models.RawGroupSnapshot
	require.NoError(t, json.Unmarshal([]byte(heterogeneousSnapshot), &raw))

	group := NormalizeGroup(&raw)

	assert.Equal(t, int64(12), group.ID)
	assert.Equal(t, []models.Member{{ID: 1, Name: "Ana"}, {ID: 2, Name: "Ben"}}, group.Members)

	require.Len(t, group.Expenses, 2, "expense without a usable amount is dropped")
	groceries := group.Expenses[0]
	assert.Equal(t, int64(1), groceries.PayerID)
	assert.Equal(t, "Groceries", groceries.Description)
	assert.Equal(t, int64(12), groceries.GroupID)
	assert.True(t, groceries.CreatedAt.Equal(time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, []models.ExpenseShare{{MemberID: 1, Amount: 45}, {MemberID: 2, Amount: 45}}, groceries.Shares)

	taxi := group.Expenses[1]
	assert.Equal(t, int64(3), taxi.PayerID)
	assert.Equal(t, "taxi", taxi.Description)

	require.Len(t, group.AggregatedShares, 1)
	assert.Equal(t, models.BalanceMap{{MemberID: 1, Balance: 45}, {MemberID: 2, Balance: -45}}, group.BalanceOriginal)

	require.Len(t, group.PendingPayments, 1)
	assert.Equal(t, int64(2), group.PendingPayments[0].FromMemberID)
	assert.False(t, group.PendingPayments[0].Confirmed)

	require.Len(t, group.ConfirmedPayments, 1)
	assert.True(t, group.ConfirmedPayments[0].Confirmed, "list membership decides confirmation")
	assert.Equal(t, 10.0, group.ConfirmedPayments[0].Amount)
}
