package models

// ComputeSettlementsRequest carries an ordered balance map
type ComputeSettlementsRequest struct {
	Balances BalanceMap `json:"balances"`
}

// ComputeSettlementsResponse lists suggested transfers
type ComputeSettlementsResponse struct {
	Transfers []SettlementTransfer `json:"transfers"`
}

// ReconcileExpenseRequest carries one expense and the group's payment lists
type ReconcileExpenseRequest struct {
	Expense           RawExpense   `json:"expense"`
	PendingPayments   []RawPayment `json:"pendingPayments"`
	ConfirmedPayments []RawPayment `json:"confirmedPayments"`
	Members           []RawMember  `json:"members"`
	ViewerID          FlexID       `json:"viewerId"`
}

// BuildDashboardRequest carries already-fetched group snapshots
type BuildDashboardRequest struct {
	ViewerID       FlexID             `json:"viewerId"`
	Groups         []RawGroupSnapshot `json:"groups"`
	FailedGroupIDs []int64            `json:"failedGroupIds"`
}

// CreateGroupRequest represents the request body for creating a group
type CreateGroupRequest struct {
	Name    string  `json:"name" binding:"required"`
	Members []int64 `json:"members"`
}

// CreateMemberRequest represents the request body for registering a member
type CreateMemberRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email"`
}

// AddGroupMemberRequest adds an existing member to a group
type AddGroupMemberRequest struct {
	MemberID int64 `json:"memberId" binding:"required"`
}

// ShareRequest is one share of a new expense
type ShareRequest struct {
	MemberID   int64    `json:"memberId" binding:"required"`
	Amount     float64  `json:"amount"`
	Percentage *float64 `json:"percentage"`
}

// CreateExpenseRequest represents the request body for adding an expense
type CreateExpenseRequest struct {
	PayerID     int64          `json:"payerId" binding:"required"`
	Amount      float64        `json:"amount" binding:"required,gt=0"`
	Description string         `json:"description"`
	Shares      []ShareRequest `json:"shares"`
	SplitEqual  []int64        `json:"splitEqual"`
}
