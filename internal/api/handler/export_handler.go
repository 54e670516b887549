package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"barberbook/backend/internal/dto"
	"barberbook/backend/internal/service"
	"barberbook/backend/pkg/response"
)

// ExportHandler serves the timesheet export endpoint.
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler creates an ExportHandler.
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// Timesheet streams the tenant timesheet as an Excel download.
// GET /api/v1/export/timesheet?from=...&to=...
func (h *ExportHandler) Timesheet(c *gin.Context) {
	tenantID, ok := MustGetTenantID(c)
	if !ok {
		return
	}

	var req dto.ExportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "from and to are required RFC 3339 timestamps")
		return
	}

	buf, filename, err := h.exportSvc.ExportTimesheet(c.Request.Context(), tenantID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrExportBadRange):
			response.BadRequest(c, 10001, "from and to must be RFC 3339 timestamps")
		case errors.Is(err, service.ErrExportNoRecords):
			response.NotFound(c, 41001, "no clock records in the requested range")
		default:
			response.InternalError(c)
		}
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		buf.Bytes())
}
