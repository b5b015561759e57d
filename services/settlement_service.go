package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/fadhlanhapp/settleup-engine/models"
	"github.com/fadhlanhapp/settleup-engine/utils"
)

// SettlementService serves settlement views for persisted groups
type SettlementService struct {
	groups GroupProvider
}

// NewSettlementService creates a new settlement service
func NewSettlementService(groups GroupProvider) *SettlementService {
	return &SettlementService{
		groups: groups,
	}
}

// SettleGroup loads a group and computes its balances and suggested transfers
func (s *SettlementService) SettleGroup(ctx context.Context, groupID int64) (*models.GroupSettlement, error) {
	group, err := s.groups.GetGroupSnapshot(ctx, groupID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.NewNotFoundError("Group")
		}
		return nil, fmt.Errorf("load group %d: %w", groupID, err)
	}

	result := SettleSnapshot(group)
	RecordSettlement(result.Transfers)
	return result, nil
}

// SettleSnapshot computes the settlement view of an in-memory snapshot
func SettleSnapshot(group *models.Group) *models.GroupSettlement {
	balances, source := AggregateGroupBalancesWithSource(group)
	return &models.GroupSettlement{
		GroupID:   group.ID,
		GroupName: group.Name,
		Source:    source,
		Balances:  balances,
		Transfers: ComputeSettlements(balances),
	}
}

// ComputeSettlements matches debtors to creditors greedily in map order.
// Each debtor walks the creditors in order and pays what it can to each.
func ComputeSettlements(balances models.BalanceMap) []models.SettlementTransfer {
	debtors := extractDebtors(balances)
	creditors := extractCreditors(balances)

	transfers := []models.SettlementTransfer{}
	for i := range debtors {
		debtor := &debtors[i]
		for j := range creditors {
			if utils.IsNegligible(debtor.Remaining) {
				break
			}
			creditor := &creditors[j]
			if utils.IsNegligible(creditor.Remaining) {
				continue
			}

			amount := utils.RoundMoney(utils.Min(debtor.Remaining, creditor.Remaining))
			if amount > utils.NegligibleThreshold {
				transfers = append(transfers, models.SettlementTransfer{
					From:   debtor.MemberID,
					To:     creditor.MemberID,
					Amount: amount,
				})
			}

			debtor.Remaining = utils.RoundMoney(debtor.Remaining - amount)
			creditor.Remaining = utils.RoundMoney(creditor.Remaining - amount)
		}
	}

	return transfers
}

// memberAmount tracks what a debtor still owes or a creditor is still owed
type memberAmount struct {
	MemberID  int64
	Remaining float64
}

// extractCreditors extracts members who are owed money
func extractCreditors(balances models.BalanceMap) []memberAmount {
	var creditors []memberAmount
	for _, entry := range balances {
		if entry.Balance > utils.NegligibleThreshold {
			creditors = append(creditors, memberAmount{
				MemberID:  entry.MemberID,
				Remaining: utils.RoundMoney(entry.Balance),
			})
		}
	}
	return creditors
}

// extractDebtors extracts members who owe money, stored as positive amounts
func extractDebtors(balances models.BalanceMap) []memberAmount {
	var debtors []memberAmount
	for _, entry := range balances {
		if entry.Balance < -utils.NegligibleThreshold {
			debtors = append(debtors, memberAmount{
				MemberID:  entry.MemberID,
				Remaining: utils.RoundMoney(-entry.Balance),
			})
		}
	}
	return debtors
}
