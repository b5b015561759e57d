package models

import (
	"time"
)

// BalanceSource names which snapshot field balances were derived from
type BalanceSource string

const (
	BalanceSourceAdjusted   BalanceSource = "adjusted"
	BalanceSourceOriginal   BalanceSource = "original"
	BalanceSourceAggregated BalanceSource = "aggregated"
	BalanceSourceExpenses   BalanceSource = "expenses"
	BalanceSourceNone       BalanceSource = "none"
)

// BalanceAggregation is the response for a balance aggregation
type BalanceAggregation struct {
	Balances BalanceMap    `json:"balances"`
	Source   BalanceSource `json:"source"`
}

// GroupSettlement is the settlement view of one group
type GroupSettlement struct {
	GroupID   int64                `json:"groupId"`
	GroupName string               `json:"groupName"`
	Source    BalanceSource        `json:"source"`
	Balances  BalanceMap           `json:"balances"`
	Transfers []SettlementTransfer `json:"transfers"`
}

// ShareStatus is the settlement status of one expense share
type ShareStatus string

const (
	ShareStatusUnpaid    ShareStatus = "unpaid"
	ShareStatusPending   ShareStatus = "pending"
	ShareStatusConfirmed ShareStatus = "confirmed"
)

// MatchKind records how a payment was attributed to a share
type MatchKind string

const (
	MatchKindMetadata  MatchKind = "metadata"
	MatchKindHeuristic MatchKind = "heuristic"
)

// ViewerStatus drives the viewer's own pay button or badge
type ViewerStatus string

const (
	ViewerStatusPayNow    ViewerStatus = "pay_now"
	ViewerStatusPending   ViewerStatus = "pending"
	ViewerStatusConfirmed ViewerStatus = "confirmed"
	ViewerStatusSettled   ViewerStatus = "settled"
	ViewerStatusNone      ViewerStatus = "none"
)

// ShareSettlementStatus is the status of one non-payer share
type ShareSettlementStatus struct {
	MemberID    int64       `json:"memberId"`
	MemberName  string      `json:"memberName,omitempty"`
	Amount      float64     `json:"amount"`
	Status      ShareStatus `json:"status"`
	MatchKind   MatchKind   `json:"matchKind,omitempty"`
	Payment     *Payment    `json:"payment,omitempty"`
	DisplayNote string      `json:"displayNote,omitempty"`
}

// ExpensePaymentState is the reconciled payment state of one expense
type ExpensePaymentState struct {
	ExpenseID            int64                   `json:"expenseId"`
	PayerID              int64                   `json:"payerId"`
	ViewerID             int64                   `json:"viewerId"`
	ViewerShare          *ExpenseShare           `json:"viewerShare,omitempty"`
	HasShareToPay        bool                    `json:"hasShareToPay"`
	IsPayer              bool                    `json:"isPayer"`
	CanPay               bool                    `json:"canPay"`
	ShowPayButton        bool                    `json:"showPayButton"`
	Settled              bool                    `json:"settled"`
	ViewerStatus         ViewerStatus            `json:"viewerStatus"`
	PendingPayment       *Payment                `json:"pendingPayment,omitempty"`
	PendingDisplayNote   string                  `json:"pendingDisplayNote,omitempty"`
	ConfirmedPayment     *Payment                `json:"confirmedPayment,omitempty"`
	ConfirmedDisplayNote string                  `json:"confirmedDisplayNote,omitempty"`
	ShareStatuses        []ShareSettlementStatus `json:"shareStatuses"`
}

// ActivityStatus tags an activity entry from the viewer's perspective
type ActivityStatus string

const (
	ActivityOwedToYou ActivityStatus = "owedToYou"
	ActivityYouOwe    ActivityStatus = "youOwe"
	ActivityNeutral   ActivityStatus = "neutral"
)

// DashboardSummary totals the viewer's position across groups
type DashboardSummary struct {
	YouOwe    float64 `json:"youOwe"`
	OwedToYou float64 `json:"owedToYou"`
	Net       float64 `json:"net"`
}

// DistributionEntry is one group's share of total expense volume.
// GroupID 0 is the folded "other" bucket.
type DistributionEntry struct {
	GroupID    int64   `json:"groupId"`
	GroupName  string  `json:"groupName"`
	Amount     float64 `json:"amount"`
	Percentage float64 `json:"percentage"`
}

// ActivityEntry is one expense in the recent activity feed
type ActivityEntry struct {
	ID          string         `json:"id"`
	GroupID     int64          `json:"groupId"`
	GroupName   string         `json:"groupName"`
	ExpenseID   int64          `json:"expenseId"`
	Description string         `json:"description"`
	Amount      float64        `json:"amount"`
	PayerID     int64          `json:"payerId"`
	PayerName   string         `json:"payerName,omitempty"`
	ViewerShare float64        `json:"viewerShare"`
	Status      ActivityStatus `json:"status"`
	CreatedAt   *time.Time     `json:"createdAt,omitempty"`
}

// GroupSummary is the viewer's position within one group
type GroupSummary struct {
	GroupID     int64                `json:"groupId"`
	GroupName   string               `json:"groupName"`
	TotalAmount float64              `json:"totalAmount"`
	YouOwe      float64              `json:"youOwe"`
	OwedToYou   float64              `json:"owedToYou"`
	Source      BalanceSource        `json:"source"`
	Transfers   []SettlementTransfer `json:"transfers"`
}

// Dashboard is the cross-group view for one member
type Dashboard struct {
	ViewerID       int64               `json:"viewerId"`
	Summary        DashboardSummary    `json:"summary"`
	Distribution   []DistributionEntry `json:"distribution"`
	Activity       []ActivityEntry     `json:"activity"`
	Groups         []GroupSummary      `json:"groups"`
	FailedGroupIDs []int64             `json:"failedGroupIds"`
}

// GroupResult is the outcome of fetching one group's snapshot
type GroupResult struct {
	Ref   GroupRef
	Group *Group
	Err   error
}
