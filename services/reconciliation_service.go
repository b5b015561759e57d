package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/fadhlanhapp/settleup-engine/models"
	"github.com/fadhlanhapp/settleup-engine/utils"
)

// ReconciliationService serves payment states for persisted expenses
type ReconciliationService struct {
	groups GroupProvider
}

// NewReconciliationService creates a new reconciliation service
func NewReconciliationService(groups GroupProvider) *ReconciliationService {
	return &ReconciliationService{groups: groups}
}

// ExpensePaymentState reconciles one persisted expense for a viewer
func (s *ReconciliationService) ExpensePaymentState(ctx context.Context, groupID, expenseID, viewerID int64) (*models.ExpensePaymentState, error) {
	group, err := s.groups.GetGroupSnapshot(ctx, groupID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.NewNotFoundError("Group")
		}
		return nil, fmt.Errorf("load group %d: %w", groupID, err)
	}

	expense, ok := group.FindExpense(expenseID)
	if !ok {
		return nil, utils.NewNotFoundError("Expense")
	}

	state := ReconcileExpensePayments(expense, group.PendingPayments, group.ConfirmedPayments, viewerID)
	AttachMemberNames(&state, group)
	RecordReconciliation(&state)
	return &state, nil
}

// AttachMemberNames fills share status names from a group's member list
func AttachMemberNames(state *models.ExpensePaymentState, group *models.Group) {
	for i := range state.ShareStatuses {
		if state.ShareStatuses[i].MemberName == "" {
			state.ShareStatuses[i].MemberName = group.MemberName(state.ShareStatuses[i].MemberID)
		}
	}
}

// candidate is a payment with its note decoded once
type candidate struct {
	payment  models.Payment
	metadata *models.PaymentIntentMetadata
}

// ReconcileExpensePayments works out who has paid their share of an expense.
//
// Shares are visited in order. For each non-payer share the pending pool is
// searched first and the confirmed pool only when nothing pending matched.
// A matched payment leaves its pool, so no payment settles two shares.
func ReconcileExpensePayments(expense *models.Expense, pending, confirmed []models.Payment, viewerID int64) models.ExpensePaymentState {
	payerID := expense.PayerID
	state := models.ExpensePaymentState{
		ExpenseID:     expense.ID,
		PayerID:       payerID,
		ViewerID:      viewerID,
		ShareStatuses: []models.ShareSettlementStatus{},
	}

	if share, ok := expense.ShareFor(viewerID); ok {
		viewerShare := share
		state.ViewerShare = &viewerShare
		state.HasShareToPay = share.Amount > utils.NegligibleThreshold
	}
	state.IsPayer = payerID != 0 && payerID == viewerID
	state.CanPay = payerID != 0 && state.HasShareToPay && !state.IsPayer

	if payerID != 0 {
		state.ShareStatuses = reconcileShares(expense, poolFor(pending, payerID), poolFor(confirmed, payerID))
	}

	if state.CanPay {
		for _, status := range state.ShareStatuses {
			if status.MemberID != viewerID {
				continue
			}
			switch status.Status {
			case models.ShareStatusPending:
				state.PendingPayment = status.Payment
				state.PendingDisplayNote = status.DisplayNote
			case models.ShareStatusConfirmed:
				state.ConfirmedPayment = status.Payment
				state.ConfirmedDisplayNote = status.DisplayNote
			}
			break
		}
	}

	state.ShowPayButton = state.CanPay && state.PendingPayment == nil && state.ConfirmedPayment == nil
	state.Settled = !state.ShowPayButton &&
		(!state.CanPay || state.ConfirmedPayment != nil || (!state.HasShareToPay && state.PendingPayment == nil))
	state.ViewerStatus = viewerStatus(&state)

	return state
}

func viewerStatus(state *models.ExpensePaymentState) models.ViewerStatus {
	switch {
	case state.CanPay && state.PendingPayment != nil:
		return models.ViewerStatusPending
	case state.CanPay && state.ConfirmedPayment != nil:
		return models.ViewerStatusConfirmed
	case state.CanPay:
		return models.ViewerStatusPayNow
	case state.IsPayer || state.ViewerShare != nil:
		return models.ViewerStatusSettled
	}
	return models.ViewerStatusNone
}

// reconcileShares folds the remaining pools through every eligible share
func reconcileShares(expense *models.Expense, pendingPool, confirmedPool []candidate) []models.ShareSettlementStatus {
	statuses := []models.ShareSettlementStatus{}
	for _, share := range expense.Shares {
		if share.MemberID == 0 || share.MemberID == expense.PayerID || share.Amount <= utils.NegligibleThreshold {
			continue
		}

		status := models.ShareSettlementStatus{
			MemberID: share.MemberID,
			Amount:   share.Amount,
			Status:   models.ShareStatusUnpaid,
		}

		var match *candidate
		var kind models.MatchKind
		match, kind, pendingPool = matchShare(expense.ID, share, pendingPool)
		if match != nil {
			status.Status = models.ShareStatusPending
		} else {
			match, kind, confirmedPool = matchShare(expense.ID, share, confirmedPool)
			if match != nil {
				status.Status = models.ShareStatusConfirmed
			}
		}

		if match != nil {
			payment := match.payment
			status.MatchKind = kind
			status.Payment = &payment
			status.DisplayNote = FormatPaymentNote(payment.Note)
		}
		statuses = append(statuses, status)
	}
	return statuses
}

// poolFor collects the payments made to the expense payer
func poolFor(payments []models.Payment, payerID int64) []candidate {
	pool := []candidate{}
	for _, payment := range payments {
		if payment.ToMemberID != payerID {
			continue
		}
		pool = append(pool, candidate{payment: payment, metadata: DecodePaymentNote(payment.Note)})
	}
	return pool
}

// matchShare finds the payment settling one share and returns the pool
// without it. A payment tagged with this expense wins outright. Otherwise a
// lone payment from the member whose amount equals the share is accepted.
func matchShare(expenseID int64, share models.ExpenseShare, pool []candidate) (*candidate, models.MatchKind, []candidate) {
	var fromMember []int
	for i, c := range pool {
		if c.payment.FromMemberID == share.MemberID {
			fromMember = append(fromMember, i)
		}
	}

	for _, i := range fromMember {
		if taggedFor(pool[i].metadata, expenseID) {
			matched := pool[i]
			return &matched, models.MatchKindMetadata, without(pool, i)
		}
	}

	if len(fromMember) == 1 {
		i := fromMember[0]
		if utils.IsNegligible(pool[i].payment.Amount-share.Amount) {
			matched := pool[i]
			return &matched, models.MatchKindHeuristic, without(pool, i)
		}
	}

	return nil, "", pool
}

// taggedFor reports whether metadata names expenseID as the expense it pays
func taggedFor(metadata *models.PaymentIntentMetadata, expenseID int64) bool {
	return metadata != nil &&
		metadata.Type == utils.NoteTypeExpenseSharePayment &&
		metadata.ExpenseID != nil &&
		*metadata.ExpenseID == expenseID
}

// without returns a copy of pool minus index i
func without(pool []candidate, i int) []candidate {
	out := make([]candidate, 0, len(pool)-1)
	out = append(out, pool[:i]...)
	return append(out, pool[i+1:]...)
}
