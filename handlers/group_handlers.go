package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/fadhlanhapp/settleup-engine/models"
	"github.com/fadhlanhapp/settleup-engine/services"
	"github.com/fadhlanhapp/settleup-engine/utils"
)

// GroupHandler handles group, member and expense requests
type GroupHandler struct {
	groupService          *services.GroupService
	settlementService     *services.SettlementService
	reconciliationService *services.ReconciliationService
}

// NewGroupHandler creates a new group handler
func NewGroupHandler(groups *services.GroupService, settlements *services.SettlementService, reconciliation *services.ReconciliationService) *GroupHandler {
	return &GroupHandler{
		groupService:          groups,
		settlementService:     settlements,
		reconciliationService: reconciliation,
	}
}

// CreateMember handles POST /members
func (h *GroupHandler) CreateMember(c *gin.Context) {
	var request models.CreateMemberRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.HandleError(c, utils.NewBadRequestError(utils.ErrInvalidRequest))
		return
	}

	member, err := h.groupService.CreateMember(c.Request.Context(), &request)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.HandleCreated(c, member)
}

// CreateGroup handles POST /groups
func (h *GroupHandler) CreateGroup(c *gin.Context) {
	var request models.CreateGroupRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.HandleError(c, utils.NewBadRequestError(utils.ErrInvalidRequest))
		return
	}

	group, err := h.groupService.CreateGroup(c.Request.Context(), &request)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.HandleCreated(c, group)
}

// GetGroup handles GET /groups/:groupId
func (h *GroupHandler) GetGroup(c *gin.Context) {
	groupID, ok := idParam(c, "groupId", utils.ErrInvalidGroupID)
	if !ok {
		return
	}

	group, err := h.groupService.GetGroup(c.Request.Context(), groupID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.HandleSuccess(c, group)
}

// AddMember handles POST /groups/:groupId/members
func (h *GroupHandler) AddMember(c *gin.Context) {
	groupID, ok := idParam(c, "groupId", utils.ErrInvalidGroupID)
	if !ok {
		return
	}
	var request models.AddGroupMemberRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.HandleError(c, utils.NewBadRequestError(utils.ErrInvalidRequest))
		return
	}

	ctx := c.Request.Context()
	if err := h.groupService.AddMember(ctx, groupID, request.MemberID); err != nil {
		utils.HandleError(c, err)
		return
	}
	group, err := h.groupService.GetGroup(ctx, groupID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.HandleSuccess(c, group)
}

// AddExpense handles POST /groups/:groupId/expenses
func (h *GroupHandler) AddExpense(c *gin.Context) {
	groupID, ok := idParam(c, "groupId", utils.ErrInvalidGroupID)
	if !ok {
		return
	}
	var request models.CreateExpenseRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.HandleError(c, utils.NewBadRequestError(utils.ErrInvalidRequest))
		return
	}

	expense, err := h.groupService.AddExpense(c.Request.Context(), groupID, &request)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.HandleCreated(c, expense)
}

// GetSettlements handles GET /groups/:groupId/settlements
func (h *GroupHandler) GetSettlements(c *gin.Context) {
	groupID, ok := idParam(c, "groupId", utils.ErrInvalidGroupID)
	if !ok {
		return
	}

	settlement, err := h.settlementService.SettleGroup(c.Request.Context(), groupID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.HandleSuccess(c, settlement)
}

// GetPaymentState handles GET /groups/:groupId/expenses/:expenseId/payment-state?viewerId=
func (h *GroupHandler) GetPaymentState(c *gin.Context) {
	groupID, ok := idParam(c, "groupId", utils.ErrInvalidGroupID)
	if !ok {
		return
	}
	expenseID, ok := idParam(c, "expenseId", utils.ErrInvalidExpenseID)
	if !ok {
		return
	}
	viewerID, err := strconv.ParseInt(c.Query("viewerId"), 10, 64)
	if err != nil || viewerID <= 0 {
		utils.HandleError(c, utils.NewBadRequestError(utils.ErrInvalidMemberID))
		return
	}

	state, err := h.reconciliationService.ExpensePaymentState(c.Request.Context(), groupID, expenseID, viewerID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.HandleSuccess(c, state)
}
