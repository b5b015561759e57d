package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fadhlanhapp/settleup-engine/models"
	"github.com/fadhlanhapp/settleup-engine/utils"
)

// PaymentService handles payment business logic
type PaymentService struct {
	payments  PaymentStore
	groups    GroupProvider
	publisher EventPublisher
}

// NewPaymentService creates a new payment service
func NewPaymentService(payments PaymentStore, groups GroupProvider, publisher EventPublisher) *PaymentService {
	return &PaymentService{
		payments:  payments,
		groups:    groups,
		publisher: publisher,
	}
}

// CreatePayment records a pending payment, encoding any intent into its note
func (s *PaymentService) CreatePayment(ctx context.Context, groupID int64, req *models.CreatePaymentRequest) (*models.Payment, error) {
	if err := utils.ValidateDistinct(req.FromMemberID, req.ToMemberID, "cannot pay to yourself"); err != nil {
		return nil, err
	}
	if err := utils.ValidatePositive(req.Amount, "amount"); err != nil {
		return nil, err
	}
	amount := utils.RoundMoney(req.Amount)
	if utils.IsNegligible(amount) {
		return nil, utils.NewValidationError("amount must be at least 0.01")
	}

	group, err := s.groups.GetGroupSnapshot(ctx, groupID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.NewNotFoundError("Group")
		}
		return nil, fmt.Errorf("load group %d: %w", groupID, err)
	}
	if !group.HasMember(req.FromMemberID) || !group.HasMember(req.ToMemberID) {
		return nil, utils.NewValidationError("both members must belong to the group")
	}

	method := strings.TrimSpace(req.PaymentMethod)
	var note string
	if req.Metadata != nil {
		metadata := *req.Metadata
		if metadata.Type == "" {
			metadata.Type = utils.NoteTypeManualPayment
		}
		if metadata.PaymentMethod == "" {
			metadata.PaymentMethod = method
		}
		if method == "" {
			method = metadata.PaymentMethod
		}
		note = EncodePaymentNote(metadata)
	}

	payment := &models.Payment{
		GroupID:       groupID,
		FromMemberID:  req.FromMemberID,
		ToMemberID:    req.ToMemberID,
		Amount:        amount,
		Note:          note,
		PaymentMethod: DescribePaymentMethod(method),
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.payments.CreatePayment(ctx, payment); err != nil {
		return nil, fmt.Errorf("create payment: %w", err)
	}

	publishGroupChanged(ctx, s.publisher, groupID, ReasonPaymentCreated)
	return payment, nil
}

// ConfirmPayment moves a payment from pending to confirmed. Only the
// receiving member may confirm, and only once.
func (s *PaymentService) ConfirmPayment(ctx context.Context, paymentID, memberID int64) (*models.Payment, error) {
	payment, err := s.payments.GetPaymentByID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.NewNotFoundError("Payment")
		}
		return nil, fmt.Errorf("load payment %d: %w", paymentID, err)
	}

	if payment.ToMemberID != memberID {
		return nil, utils.NewForbiddenError("only the receiving member can confirm a payment")
	}
	if payment.Confirmed {
		return nil, utils.NewConflictError("payment is already confirmed")
	}

	if err := s.payments.ConfirmPayment(ctx, paymentID); err != nil {
		if errors.Is(err, utils.ErrConflict) {
			return nil, utils.NewConflictError("payment is already confirmed")
		}
		return nil, fmt.Errorf("confirm payment %d: %w", paymentID, err)
	}
	payment.Confirmed = true

	publishGroupChanged(ctx, s.publisher, payment.GroupID, ReasonPaymentConfirmed)
	return payment, nil
}
