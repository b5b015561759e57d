// models/models.go
package models

import "time"

// Member represents a participant in a group
type Member struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// GroupRef is a group as listed by the membership provider
type GroupRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// ExpenseShare is the portion of one expense owed by one member
type ExpenseShare struct {
	MemberID   int64    `json:"memberId"`
	Amount     float64  `json:"amount"`
	Percentage *float64 `json:"percentage,omitempty"`
}

// Expense represents a shared expense fronted by one member
type Expense struct {
	ID          int64          `json:"id"`
	GroupID     int64          `json:"groupId,omitempty"`
	Amount      float64        `json:"amount"`
	PayerID     int64          `json:"payerId"`
	PayerName   string         `json:"payerName,omitempty"`
	Description string         `json:"description,omitempty"`
	CreatedAt   time.Time      `json:"createdAt"`
	Shares      []ExpenseShare `json:"shares"`
}

// ShareFor returns the share held by memberID, if any
func (e *Expense) ShareFor(memberID int64) (ExpenseShare, bool) {
	for _, share := range e.Shares {
		if share.MemberID == memberID {
			return share, true
		}
	}
	return ExpenseShare{}, false
}

// AggregatedShare is a precomputed per-member summary for a group.
// Nil fields were absent or unparseable upstream.
type AggregatedShare struct {
	MemberID              int64    `json:"memberId"`
	MemberName            string   `json:"memberName,omitempty"`
	TotalPaid             *float64 `json:"totalPaid,omitempty"`
	TotalOwed             *float64 `json:"totalOwed,omitempty"`
	Balance               *float64 `json:"balance,omitempty"`
	BalanceBeforePayments *float64 `json:"balanceBeforePayments,omitempty"`
	BalanceAdjustment     *float64 `json:"balanceAdjustment,omitempty"`
	TotalAmount           *float64 `json:"totalAmount,omitempty"`
}

// Group is the canonical snapshot every engine operation works on
type Group struct {
	ID                int64             `json:"id"`
	Name              string            `json:"name"`
	TotalAmount       *float64          `json:"totalAmount,omitempty"`
	Members           []Member          `json:"members"`
	Expenses          []Expense         `json:"expenses"`
	AggregatedShares  []AggregatedShare `json:"aggregatedShares,omitempty"`
	BalanceOriginal   BalanceMap        `json:"balanceOriginal,omitempty"`
	BalanceAdjusted   BalanceMap        `json:"balanceAdjusted,omitempty"`
	ConfirmedPayments []Payment         `json:"confirmedPayments"`
	PendingPayments   []Payment         `json:"pendingPayments"`
}

// MemberName looks up a member's display name
func (g *Group) MemberName(memberID int64) string {
	for _, member := range g.Members {
		if member.ID == memberID {
			return member.Name
		}
	}
	for _, share := range g.AggregatedShares {
		if share.MemberID == memberID && share.MemberName != "" {
			return share.MemberName
		}
	}
	return ""
}

// HasMember reports whether memberID belongs to the group
func (g *Group) HasMember(memberID int64) bool {
	for _, member := range g.Members {
		if member.ID == memberID {
			return true
		}
	}
	return false
}

// FindExpense returns the expense with the given id
func (g *Group) FindExpense(expenseID int64) (*Expense, bool) {
	for i := range g.Expenses {
		if g.Expenses[i].ID == expenseID {
			return &g.Expenses[i], true
		}
	}
	return nil, false
}

// SettlementTransfer represents a suggested payment from a debtor to a creditor
type SettlementTransfer struct {
	From   int64   `json:"from"`
	To     int64   `json:"to"`
	Amount float64 `json:"amount"`
}
