package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-gpa-api/internal/models"
	"github.com/noah-isme/sma-gpa-api/internal/service"
	"github.com/noah-isme/sma-gpa-api/pkg/response"
)

type schoolGPAProvider interface {
	SchoolAverageGPA(ctx context.Context) (models.SchoolGPA, error)
}

type rosterProvider interface {
	Roster(ctx context.Context) (*models.GPARoster, error)
	Render(ctx context.Context, format string) (*service.ReportFile, error)
}

// ReportHandler serves school-wide GPA figures and reports.
type ReportHandler struct {
	gpa     schoolGPAProvider
	reports rosterProvider
}

// NewReportHandler constructs a report handler.
func NewReportHandler(gpa schoolGPAProvider, reports rosterProvider) *ReportHandler {
	return &ReportHandler{gpa: gpa, reports: reports}
}

// SchoolGPA godoc
// @Summary School average GPA
// @Tags GPA
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /gpa/school [get]
func (h *ReportHandler) SchoolGPA(c *gin.Context) {
	result, err := h.gpa.SchoolAverageGPA(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// GPARoster godoc
// @Summary GPA roster report
// @Tags Reports
// @Produce json
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "json (default), csv or pdf"
// @Success 200 {object} response.Envelope
// @Router /reports/gpa [get]
func (h *ReportHandler) GPARoster(c *gin.Context) {
	format := strings.ToLower(strings.TrimSpace(c.DefaultQuery("format", service.ReportFormatJSON)))
	if format == service.ReportFormatJSON {
		roster, err := h.reports.Roster(c.Request.Context())
		if err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusOK, roster)
		return
	}

	file, err := h.reports.Render(c.Request.Context(), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Body)
}
