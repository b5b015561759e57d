package utils

const (
	// Monetary tolerances
	NegligibleThreshold = 0.009
	MoneyDecimalPlaces  = 2

	// Payment note metadata types
	NoteTypeExpenseSharePayment = "expense_share_payment"
	NoteTypeManualPayment       = "manual_payment"

	// Dashboard
	DistributionMaxEntries = 4
	DistributionKeepTop    = 3
	ActivityLimit          = 10

	// HTTP status messages
	ErrInvalidRequest   = "Invalid request"
	ErrInvalidMemberID  = "Invalid member id"
	ErrInvalidGroupID   = "Invalid group id"
	ErrInvalidExpenseID = "Invalid expense id"
	ErrInvalidPaymentID = "Invalid payment id"
)
