package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/fadhlanhapp/settleup-engine/services"
	"github.com/fadhlanhapp/settleup-engine/utils"
)

// RequestIDHeader carries the per-request id
const RequestIDHeader = "X-Request-ID"

// HandlerServices contains all service dependencies
type HandlerServices struct {
	GroupService          *services.GroupService
	PaymentService        *services.PaymentService
	SettlementService     *services.SettlementService
	ReconciliationService *services.ReconciliationService
	DashboardService      *services.DashboardService
	ExcelService          *services.ExcelService
}

// Handlers bundles the HTTP handlers served under /api/v1
type Handlers struct {
	Engine    *EngineHandler
	Group     *GroupHandler
	Payment   *PaymentHandler
	Dashboard *DashboardHandler
	Excel     *ExcelHandler
}

// NewHandlers wires every handler to its services
func NewHandlers(svc *HandlerServices) *Handlers {
	return &Handlers{
		Engine:    NewEngineHandler(),
		Group:     NewGroupHandler(svc.GroupService, svc.SettlementService, svc.ReconciliationService),
		Payment:   NewPaymentHandler(svc.PaymentService),
		Dashboard: NewDashboardHandler(svc.DashboardService),
		Excel:     NewExcelHandler(svc.ExcelService),
	}
}

// RequestID tags every request and response with an id, reusing the
// caller's X-Request-ID when present
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = utils.GenerateID()
		}
		c.Set("request_id", id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// idParam reads a positive integer path parameter, answering 400 when it is not one
func idParam(c *gin.Context, name, message string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		utils.HandleError(c, utils.NewBadRequestError(message))
		return 0, false
	}
	return id, true
}
