package services

import (
	"github.com/fadhlanhapp/settleup-engine/models"
	"github.com/fadhlanhapp/settleup-engine/utils"
)

// AggregateGroupBalances returns each member's rounded net balance
func AggregateGroupBalances(group *models.Group) models.BalanceMap {
	balances, _ := AggregateGroupBalancesWithSource(group)
	return balances
}

// AggregateGroupBalancesWithSource picks the first usable source in priority
// order: adjusted map, original map, aggregated summaries, raw expenses.
func AggregateGroupBalancesWithSource(group *models.Group) (models.BalanceMap, models.BalanceSource) {
	if len(group.BalanceAdjusted) > 0 {
		return roundBalances(group.BalanceAdjusted), models.BalanceSourceAdjusted
	}
	if len(group.BalanceOriginal) > 0 {
		return roundBalances(group.BalanceOriginal), models.BalanceSourceOriginal
	}
	if balances := balancesFromAggregatedShares(group.AggregatedShares); len(balances) > 0 {
		return roundBalances(balances), models.BalanceSourceAggregated
	}
	if balances := balancesFromExpenses(group.Expenses, group.ConfirmedPayments); len(balances) > 0 {
		return roundBalances(balances), models.BalanceSourceExpenses
	}
	return models.BalanceMap{}, models.BalanceSourceNone
}

// balancesFromAggregatedShares sums balance, or balanceBeforePayments when
// balance is absent. Rows with neither are skipped.
func balancesFromAggregatedShares(shares []models.AggregatedShare) models.BalanceMap {
	var balances models.BalanceMap
	for _, share := range shares {
		value := share.Balance
		if value == nil {
			value = share.BalanceBeforePayments
		}
		if value == nil {
			continue
		}
		balances.Add(share.MemberID, *value)
	}
	return balances
}

// balancesFromExpenses credits the payer, debits every share holder, then
// nets confirmed payments.
func balancesFromExpenses(expenses []models.Expense, confirmed []models.Payment) models.BalanceMap {
	var balances models.BalanceMap
	for _, expense := range expenses {
		if expense.PayerID != 0 {
			balances.Add(expense.PayerID, expense.Amount)
		}
		for _, share := range expense.Shares {
			balances.Add(share.MemberID, -share.Amount)
		}
	}

	// The payer's debt shrinks and the receiver's credit shrinks
	for _, payment := range confirmed {
		balances.Add(payment.FromMemberID, payment.Amount)
		balances.Add(payment.ToMemberID, -payment.Amount)
	}
	return balances
}

func roundBalances(balances models.BalanceMap) models.BalanceMap {
	rounded := make(models.BalanceMap, 0, len(balances))
	for _, entry := range balances {
		if !utils.IsFinite(entry.Balance) {
			continue
		}
		rounded = append(rounded, models.MemberBalance{
			MemberID: entry.MemberID,
			Balance:  utils.RoundMoney(entry.Balance),
		})
	}
	return rounded
}
