package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/fadhlanhapp/settleup-engine/models"
	"github.com/fadhlanhapp/settleup-engine/utils"
)

// GroupService handles group, membership and expense writes
type GroupService struct {
	store     GroupStore
	publisher EventPublisher
}

// NewGroupService creates a new group service
func NewGroupService(store GroupStore, publisher EventPublisher) *GroupService {
	return &GroupService{store: store, publisher: publisher}
}

// CreateMember registers a member
func (s *GroupService) CreateMember(ctx context.Context, req *models.CreateMemberRequest) (*models.Member, error) {
	if err := utils.ValidateRequired(req.Name, "name"); err != nil {
		return nil, err
	}
	id, err := s.store.CreateMember(ctx, req.Name, req.Email)
	if err != nil {
		return nil, fmt.Errorf("create member: %w", err)
	}
	return &models.Member{ID: id, Name: req.Name, Email: req.Email}, nil
}

// CreateGroup creates a group with its initial members
func (s *GroupService) CreateGroup(ctx context.Context, req *models.CreateGroupRequest) (*models.Group, error) {
	if err := utils.ValidateRequired(req.Name, "name"); err != nil {
		return nil, err
	}
	for _, memberID := range req.Members {
		if err := utils.ValidateID(memberID, "member id"); err != nil {
			return nil, err
		}
	}

	groupID, err := s.store.CreateGroup(ctx, req.Name)
	if err != nil {
		return nil, fmt.Errorf("create group: %w", err)
	}
	for _, memberID := range req.Members {
		if err := s.addGroupMember(ctx, groupID, memberID); err != nil {
			return nil, err
		}
	}
	return s.GetGroup(ctx, groupID)
}

// GetGroup returns a group snapshot
func (s *GroupService) GetGroup(ctx context.Context, groupID int64) (*models.Group, error) {
	group, err := s.store.GetGroupSnapshot(ctx, groupID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.NewNotFoundError("Group")
		}
		return nil, fmt.Errorf("load group %d: %w", groupID, err)
	}
	return group, nil
}

// AddMember adds an existing member to a group
func (s *GroupService) AddMember(ctx context.Context, groupID, memberID int64) error {
	if _, err := s.GetGroup(ctx, groupID); err != nil {
		return err
	}
	if err := utils.ValidateID(memberID, "member id"); err != nil {
		return err
	}
	if err := s.addGroupMember(ctx, groupID, memberID); err != nil {
		return err
	}
	publishGroupChanged(ctx, s.publisher, groupID, ReasonMemberAdded)
	return nil
}

func (s *GroupService) addGroupMember(ctx context.Context, groupID, memberID int64) error {
	if err := s.store.AddGroupMember(ctx, groupID, memberID); err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return utils.NewNotFoundError(fmt.Sprintf("Member %d", memberID))
		}
		return fmt.Errorf("add member %d: %w", memberID, err)
	}
	return nil
}

// AddExpense records an expense with explicit shares or an equal split
func (s *GroupService) AddExpense(ctx context.Context, groupID int64, req *models.CreateExpenseRequest) (*models.Expense, error) {
	group, err := s.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if err := utils.ValidatePositive(req.Amount, "amount"); err != nil {
		return nil, err
	}
	if !group.HasMember(req.PayerID) {
		return nil, utils.NewValidationError("payer is not a member of the group")
	}

	amount := utils.RoundMoney(req.Amount)
	var shares []models.ExpenseShare
	switch {
	case len(req.Shares) > 0:
		shares, err = explicitShares(group, amount, req.Shares)
	case len(req.SplitEqual) > 0:
		shares, err = equalShares(group, amount, req.SplitEqual)
	default:
		err = utils.NewValidationError("shares or splitEqual is required")
	}
	if err != nil {
		return nil, err
	}

	expense := &models.Expense{
		GroupID:     groupID,
		Amount:      amount,
		PayerID:     req.PayerID,
		Description: req.Description,
		CreatedAt:   time.Now().UTC(),
		Shares:      shares,
	}
	if err := s.store.CreateExpense(ctx, expense); err != nil {
		return nil, fmt.Errorf("create expense: %w", err)
	}

	publishGroupChanged(ctx, s.publisher, groupID, ReasonExpenseCreated)
	return expense, nil
}

func explicitShares(group *models.Group, amount float64, requested []models.ShareRequest) ([]models.ExpenseShare, error) {
	shares := make([]models.ExpenseShare, 0, len(requested))
	amounts := make([]float64, 0, len(requested))
	for _, share := range requested {
		if !group.HasMember(share.MemberID) {
			return nil, utils.NewValidationError(fmt.Sprintf("member %d is not in the group", share.MemberID))
		}
		if !utils.IsFinite(share.Amount) || share.Amount < 0 {
			return nil, utils.NewValidationError("share amount cannot be negative")
		}
		shares = append(shares, models.ExpenseShare{
			MemberID:   share.MemberID,
			Amount:     utils.RoundMoney(share.Amount),
			Percentage: share.Percentage,
		})
		amounts = append(amounts, share.Amount)
	}
	if !utils.IsNegligible(utils.SumMoney(amounts...) - amount) {
		return nil, utils.NewValidationError("shares must add up to the expense amount")
	}
	return shares, nil
}

// equalShares splits amount in whole cents; leftover cents go to the first members
func equalShares(group *models.Group, amount float64, memberIDs []int64) ([]models.ExpenseShare, error) {
	for _, memberID := range memberIDs {
		if !group.HasMember(memberID) {
			return nil, utils.NewValidationError(fmt.Sprintf("member %d is not in the group", memberID))
		}
	}

	cents := int64(math.Round(amount * 100))
	count := int64(len(memberIDs))
	base, remainder := cents/count, cents%count

	shares := make([]models.ExpenseShare, 0, len(memberIDs))
	for i, memberID := range memberIDs {
		share := base
		if int64(i) < remainder {
			share++
		}
		shares = append(shares, models.ExpenseShare{
			MemberID: memberID,
			Amount:   float64(share) / 100,
		})
	}
	return shares, nil
}
