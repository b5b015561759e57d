package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/fadhlanhapp/settleup-engine/services"
	"github.com/fadhlanhapp/settleup-engine/utils"
)

// DashboardHandler serves the cross-group dashboard
type DashboardHandler struct {
	dashboardService *services.DashboardService
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(dashboardService *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// GetMemberDashboard handles GET /members/:memberId/dashboard
func (h *DashboardHandler) GetMemberDashboard(c *gin.Context) {
	memberID, ok := idParam(c, "memberId", utils.ErrInvalidMemberID)
	if !ok {
		return
	}

	dashboard, err := h.dashboardService.LoadDashboard(c.Request.Context(), memberID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.HandleSuccess(c, dashboard)
}
