package models

import "time"

// Payment represents a transfer recorded between two members of a group
type Payment struct {
	ID            int64     `json:"id" db:"id"`
	GroupID       int64     `json:"groupId" db:"group_id"`
	FromMemberID  int64     `json:"fromMemberId" db:"from_member_id"`
	ToMemberID    int64     `json:"toMemberId" db:"to_member_id"`
	Amount        float64   `json:"amount" db:"amount"`
	Confirmed     bool      `json:"confirmed" db:"confirmed"`
	Note          string    `json:"note,omitempty" db:"note"`
	PaymentMethod string    `json:"paymentMethod,omitempty" db:"payment_method"`
	CreatedAt     time.Time `json:"createdAt" db:"created_at"`
}

// PaymentIntentMetadata is the structured intent carried in a payment note
type PaymentIntentMetadata struct {
	Type               string   `json:"type,omitempty"`
	ExpenseID          *int64   `json:"expenseId,omitempty"`
	ExpenseDescription string   `json:"expenseDescription,omitempty"`
	ShareAmount        *float64 `json:"shareAmount,omitempty"`
	Memo               string   `json:"memo,omitempty"`
	PaymentMethod      string   `json:"paymentMethod,omitempty"`
	AttachmentFileName string   `json:"attachmentFileName,omitempty"`
	TargetMemberID     *int64   `json:"targetMemberId,omitempty"`
	FromReminder       bool     `json:"fromReminder,omitempty"`
}

// CreatePaymentRequest represents the request body for recording a payment
type CreatePaymentRequest struct {
	FromMemberID  int64                  `json:"fromMemberId" binding:"required"`
	ToMemberID    int64                  `json:"toMemberId" binding:"required"`
	Amount        float64                `json:"amount" binding:"required,gt=0"`
	PaymentMethod string                 `json:"paymentMethod"`
	Metadata      *PaymentIntentMetadata `json:"metadata"`
}

// ConfirmPaymentRequest identifies the member confirming a payment
type ConfirmPaymentRequest struct {
	MemberID int64 `json:"memberId" binding:"required"`
}

// EncodeNoteRequest wraps metadata to encode
type EncodeNoteRequest struct {
	Metadata PaymentIntentMetadata `json:"metadata"`
}

// EncodeNoteResponse carries an encoded note
type EncodeNoteResponse struct {
	Note string `json:"note"`
}

// DecodeNoteRequest carries a raw note to decode
type DecodeNoteRequest struct {
	Note string `json:"note"`
}

// DecodeNoteResponse carries decoded metadata, nil for free text
type DecodeNoteResponse struct {
	Metadata    *PaymentIntentMetadata `json:"metadata"`
	DisplayNote string                 `json:"displayNote"`
}
