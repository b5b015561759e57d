package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fadhlanhapp/settleup-engine/handlers"
)

// SetupRoutes configures all API routes for the application
func SetupRoutes(router *gin.Engine, h *handlers.Handlers) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		// Stateless engine endpoints
		v1.POST("/balances/aggregate", h.Engine.AggregateBalances)
		v1.POST("/settlements/compute", h.Engine.ComputeSettlements)
		v1.POST("/expenses/reconcile", h.Engine.ReconcileExpense)
		v1.POST("/dashboard/build", h.Engine.BuildDashboard)
		v1.POST("/payments/notes/encode", h.Engine.EncodeNote)
		v1.POST("/payments/notes/decode", h.Engine.DecodeNote)

		// Member endpoints
		v1.POST("/members", h.Group.CreateMember)
		v1.GET("/members/:memberId/dashboard", h.Dashboard.GetMemberDashboard)

		// Group endpoints
		v1.POST("/groups", h.Group.CreateGroup)
		v1.GET("/groups/:groupId", h.Group.GetGroup)
		v1.POST("/groups/:groupId/members", h.Group.AddMember)
		v1.POST("/groups/:groupId/expenses", h.Group.AddExpense)
		v1.GET("/groups/:groupId/settlements", h.Group.GetSettlements)
		v1.GET("/groups/:groupId/expenses/:expenseId/payment-state", h.Group.GetPaymentState)
		v1.GET("/groups/:groupId/export", h.Excel.ExportGroup)

		// Payment endpoints
		v1.POST("/groups/:groupId/payments", h.Payment.CreatePayment)
		v1.PATCH("/payments/:paymentId/confirm", h.Payment.ConfirmPayment)
	}
}
