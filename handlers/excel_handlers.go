package handlers

import (
	"fmt"
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/fadhlanhapp/settleup-engine/services"
	"github.com/fadhlanhapp/settleup-engine/utils"
)

// ExcelHandler serves spreadsheet exports
type ExcelHandler struct {
	excelService *services.ExcelService
}

// NewExcelHandler creates a new Excel handler
func NewExcelHandler(excelService *services.ExcelService) *ExcelHandler {
	return &ExcelHandler{excelService: excelService}
}

// ExportGroup handles GET /groups/:groupId/export
func (h *ExcelHandler) ExportGroup(c *gin.Context) {
	groupID, ok := idParam(c, "groupId", utils.ErrInvalidGroupID)
	if !ok {
		return
	}

	excelFile, filename, err := h.excelService.ExportGroup(c.Request.Context(), groupID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	defer excelFile.Close()

	// Set headers for file download
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	c.Header("Content-Transfer-Encoding", "binary")

	// Headers are already out; a failed write can only be logged
	if err := excelFile.Write(c.Writer); err != nil {
		slog.ErrorContext(c.Request.Context(), "Failed to write Excel file", "group_id", groupID, "error", err)
	}
}
