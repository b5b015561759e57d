package services

import (
	"github.com/fadhlanhapp/settleup-engine/models"
	"github.com/fadhlanhapp/settleup-engine/utils"
)

// NormalizeGroup converts a provider snapshot into the canonical group shape.
// It never fails: unusable rows are dropped, absent numbers stay absent.
func NormalizeGroup(raw *models.RawGroupSnapshot) models.Group {
	group := models.Group{
		Name:              raw.Name,
		TotalAmount:       raw.TotalAmount.Ptr(),
		Members:           NormalizeMembers(raw.Members),
		Expenses:          []models.Expense{},
		BalanceOriginal:   raw.BalanceOriginal.Clone(),
		BalanceAdjusted:   raw.BalanceAdjusted.Clone(),
		ConfirmedPayments: NormalizePayments(raw.ConfirmedPayments, true),
		PendingPayments:   NormalizePayments(raw.PendingPayments, false),
	}
	if raw.ID.Valid {
		group.ID = raw.ID.Value
	}

	for _, rawExpense := range raw.Expenses {
		if expense, ok := NormalizeExpense(rawExpense); ok {
			if expense.GroupID == 0 {
				expense.GroupID = group.ID
			}
			group.Expenses = append(group.Expenses, expense)
		}
	}

	for _, rawShare := range raw.AggregatedShares {
		if !rawShare.MemberID.Valid {
			continue
		}
		group.AggregatedShares = append(group.AggregatedShares, models.AggregatedShare{
			MemberID:              rawShare.MemberID.Value,
			MemberName:            rawShare.MemberName,
			TotalPaid:             rawShare.TotalPaid.Ptr(),
			TotalOwed:             rawShare.TotalOwed.Ptr(),
			Balance:               rawShare.Balance.Ptr(),
			BalanceBeforePayments: rawShare.BalanceBeforePayments.Ptr(),
			BalanceAdjustment:     rawShare.BalanceAdjustment.Ptr(),
			TotalAmount:           rawShare.TotalAmount.Ptr(),
		})
	}

	// Fill in names the member list lacks from expense payer objects
	for _, expense := range group.Expenses {
		if expense.PayerName != "" && group.MemberName(expense.PayerID) == "" {
			group.Members = append(group.Members, models.Member{ID: expense.PayerID, Name: expense.PayerName})
		}
	}

	return group
}

// NormalizeMembers keeps members with a usable id
func NormalizeMembers(raws []models.RawMember) []models.Member {
	members := []models.Member{}
	for _, raw := range raws {
		id := raw.ID
		if !id.Valid {
			id = raw.MemberID
		}
		if !id.Valid {
			continue
		}
		members = append(members, models.Member{ID: id.Value, Name: raw.Name, Email: raw.Email})
	}
	return members
}

// NormalizeExpense resolves payer and description aliases. Expenses without a
// finite amount are rejected since they carry no usable data.
func NormalizeExpense(raw models.RawExpense) (models.Expense, bool) {
	if !raw.Amount.Valid {
		return models.Expense{}, false
	}

	expense := models.Expense{
		Amount:      raw.Amount.Value,
		Description: utils.FirstNonEmpty(raw.Description, raw.Note, raw.Tag),
		CreatedAt:   raw.CreatedAt.Time,
		Shares:      []models.ExpenseShare{},
	}
	if raw.ID.Valid {
		expense.ID = raw.ID.Value
	}
	if raw.GroupID.Valid {
		expense.GroupID = raw.GroupID.Value
	}
	if expense.CreatedAt.IsZero() {
		expense.CreatedAt = raw.Date.Time
	}

	switch {
	case raw.Payer.Valid:
		expense.PayerID, expense.PayerName = raw.Payer.ID, raw.Payer.Name
	case raw.PaidBy.Valid:
		expense.PayerID, expense.PayerName = raw.PaidBy.ID, raw.PaidBy.Name
	case raw.PayerID.Valid:
		expense.PayerID = raw.PayerID.Value
	}

	for _, rawShare := range raw.Shares {
		memberID := rawShare.MemberID
		if !memberID.Valid && rawShare.Member.Valid {
			memberID = models.NewFlexID(rawShare.Member.ID)
		}
		if !memberID.Valid || !rawShare.Amount.Valid {
			continue
		}
		expense.Shares = append(expense.Shares, models.ExpenseShare{
			MemberID:   memberID.Value,
			Amount:     rawShare.Amount.Value,
			Percentage: rawShare.Percentage.Ptr(),
		})
	}

	return expense, true
}

// NormalizePayments keeps payments with both endpoints and an amount.
// The list a payment arrives in decides its confirmed flag.
func NormalizePayments(raws []models.RawPayment, confirmed bool) []models.Payment {
	payments := []models.Payment{}
	for _, raw := range raws {
		from := resolveRef(raw.FromMember, raw.FromMemberID)
		to := resolveRef(raw.ToMember, raw.ToMemberID)
		if from == 0 || to == 0 || !raw.Amount.Valid {
			continue
		}
		payment := models.Payment{
			FromMemberID:  from,
			ToMemberID:    to,
			Amount:        raw.Amount.Value,
			Confirmed:     confirmed,
			Note:          raw.Note,
			PaymentMethod: raw.PaymentMethod,
			CreatedAt:     raw.CreatedAt.Time,
		}
		if raw.ID.Valid {
			payment.ID = raw.ID.Value
		}
		if raw.GroupID.Valid {
			payment.GroupID = raw.GroupID.Value
		}
		payments = append(payments, payment)
	}
	return payments
}

func resolveRef(ref models.MemberRef, id models.FlexID) int64 {
	if ref.Valid {
		return ref.ID
	}
	if id.Valid {
		return id.Value
	}
	return 0
}
