package services

import (
	"context"
	"log/slog"

	"github.com/fadhlanhapp/settleup-engine/models"
)

// GroupProvider returns group detail snapshots
type GroupProvider interface {
	GetGroupSnapshot(ctx context.Context, groupID int64) (*models.Group, error)
}

// MembershipProvider lists the groups a member belongs to
type MembershipProvider interface {
	ListGroupsForMember(ctx context.Context, memberID int64) ([]models.GroupRef, error)
}

// PaymentStore persists payments
type PaymentStore interface {
	CreatePayment(ctx context.Context, payment *models.Payment) error
	GetPaymentByID(ctx context.Context, paymentID int64) (*models.Payment, error)
	ConfirmPayment(ctx context.Context, paymentID int64) error
}

// GroupStore persists groups, members and expenses
type GroupStore interface {
	GroupProvider
	MembershipProvider
	CreateGroup(ctx context.Context, name string) (int64, error)
	CreateMember(ctx context.Context, name, email string) (int64, error)
	AddGroupMember(ctx context.Context, groupID, memberID int64) error
	CreateExpense(ctx context.Context, expense *models.Expense) error
}

// EventPublisher announces that a group's snapshot changed
type EventPublisher interface {
	PublishGroupChanged(ctx context.Context, groupID int64, reason string) error
}

// Reasons carried by group-changed events
const (
	ReasonExpenseCreated   = "expense.created"
	ReasonMemberAdded      = "member.added"
	ReasonPaymentCreated   = "payment.created"
	ReasonPaymentConfirmed = "payment.confirmed"
)

// publishGroupChanged announces a change; delivery failures never fail the write
func publishGroupChanged(ctx context.Context, publisher EventPublisher, groupID int64, reason string) {
	if publisher == nil {
		return
	}
	if err := publisher.PublishGroupChanged(ctx, groupID, reason); err != nil {
		slog.WarnContext(ctx, "Failed to publish group change",
			"group_id", groupID,
			"reason", reason,
			"error", err)
	}
}
