package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/fadhlanhapp/settleup-engine/models"
	"github.com/fadhlanhapp/settleup-engine/services"
	"github.com/fadhlanhapp/settleup-engine/utils"
)

// PaymentHandler handles payment-related HTTP requests
type PaymentHandler struct {
	paymentService *services.PaymentService
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(paymentService *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// CreatePayment handles POST /groups/:groupId/payments
func (h *PaymentHandler) CreatePayment(c *gin.Context) {
	groupID, ok := idParam(c, "groupId", utils.ErrInvalidGroupID)
	if !ok {
		return
	}
	var req models.CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.HandleError(c, utils.NewBadRequestError(utils.ErrInvalidRequest))
		return
	}

	payment, err := h.paymentService.CreatePayment(c.Request.Context(), groupID, &req)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.HandleCreated(c, payment)
}

// ConfirmPayment handles PATCH /payments/:paymentId/confirm
func (h *PaymentHandler) ConfirmPayment(c *gin.Context) {
	paymentID, ok := idParam(c, "paymentId", utils.ErrInvalidPaymentID)
	if !ok {
		return
	}
	var req models.ConfirmPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.HandleError(c, utils.NewBadRequestError(utils.ErrInvalidRequest))
		return
	}

	payment, err := h.paymentService.ConfirmPayment(c.Request.Context(), paymentID, req.MemberID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.HandleSuccess(c, payment)
}
