package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/fadhlanhapp/settleup-engine/models"
	"github.com/fadhlanhapp/settleup-engine/services"
	"github.com/fadhlanhapp/settleup-engine/utils"
)

var errNotFetched = errors.New("group snapshot was not fetched")

// EngineHandler serves the stateless engine operations over caller-supplied snapshots
type EngineHandler struct{}

// NewEngineHandler creates a new engine handler
func NewEngineHandler() *EngineHandler {
	return &EngineHandler{}
}

// AggregateBalances handles POST /balances/aggregate
func (h *EngineHandler) AggregateBalances(c *gin.Context) {
	var raw models.RawGroupSnapshot
	if err := c.ShouldBindJSON(&raw); err != nil {
		utils.HandleError(c, utils.NewBadRequestError(utils.ErrInvalidRequest))
		return
	}

	group := services.NormalizeGroup(&raw)
	balances, source := services.AggregateGroupBalancesWithSource(&group)
	utils.HandleSuccess(c, models.BalanceAggregation{Balances: balances, Source: source})
}

// ComputeSettlements handles POST /settlements/compute
func (h *EngineHandler) ComputeSettlements(c *gin.Context) {
	var request models.ComputeSettlementsRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.HandleError(c, utils.NewBadRequestError(utils.ErrInvalidRequest))
		return
	}

	transfers := services.ComputeSettlements(request.Balances)
	services.RecordSettlement(transfers)
	utils.HandleSuccess(c, models.ComputeSettlementsResponse{Transfers: transfers})
}

// ReconcileExpense handles POST /expenses/reconcile
func (h *EngineHandler) ReconcileExpense(c *gin.Context) {
	var request models.ReconcileExpenseRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.HandleError(c, utils.NewBadRequestError(utils.ErrInvalidRequest))
		return
	}
	if !request.ViewerID.Valid {
		utils.HandleError(c, utils.NewBadRequestError(utils.ErrInvalidMemberID))
		return
	}

	expense, ok := services.NormalizeExpense(request.Expense)
	if !ok {
		utils.HandleError(c, utils.NewValidationError("expense amount is required"))
		return
	}

	state := services.ReconcileExpensePayments(&expense,
		services.NormalizePayments(request.PendingPayments, false),
		services.NormalizePayments(request.ConfirmedPayments, true),
		request.ViewerID.Value)
	services.AttachMemberNames(&state, &models.Group{Members: services.NormalizeMembers(request.Members)})
	services.RecordReconciliation(&state)

	utils.HandleSuccess(c, state)
}

// BuildDashboard handles POST /dashboard/build
func (h *EngineHandler) BuildDashboard(c *gin.Context) {
	var request models.BuildDashboardRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.HandleError(c, utils.NewBadRequestError(utils.ErrInvalidRequest))
		return
	}
	if !request.ViewerID.Valid {
		utils.HandleError(c, utils.NewBadRequestError(utils.ErrInvalidMemberID))
		return
	}

	results := make([]models.GroupResult, 0, len(request.Groups)+len(request.FailedGroupIDs))
	for i := range request.Groups {
		group := services.NormalizeGroup(&request.Groups[i])
		results = append(results, models.GroupResult{
			Ref:   models.GroupRef{ID: group.ID, Name: group.Name},
			Group: &group,
		})
	}
	for _, groupID := range request.FailedGroupIDs {
		results = append(results, models.GroupResult{Ref: models.GroupRef{ID: groupID}, Err: errNotFetched})
	}

	utils.HandleSuccess(c, services.BuildDashboard(results, request.ViewerID.Value))
}

// EncodeNote handles POST /payments/notes/encode
func (h *EngineHandler) EncodeNote(c *gin.Context) {
	var request models.EncodeNoteRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.HandleError(c, utils.NewBadRequestError(utils.ErrInvalidRequest))
		return
	}

	utils.HandleSuccess(c, models.EncodeNoteResponse{Note: services.EncodePaymentNote(request.Metadata)})
}

// DecodeNote handles POST /payments/notes/decode
func (h *EngineHandler) DecodeNote(c *gin.Context) {
	var request models.DecodeNoteRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.HandleError(c, utils.NewBadRequestError(utils.ErrInvalidRequest))
		return
	}

	utils.HandleSuccess(c, models.DecodeNoteResponse{
		Metadata:    services.DecodePaymentNote(request.Note),
		DisplayNote: services.FormatPaymentNote(request.Note),
	})
}
