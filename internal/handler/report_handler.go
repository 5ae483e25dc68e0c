package handler

import (
	"context"
	"fmt"
	"net/http"

	"sgo/internal/service"
	"sgo/pkg/response"

	"github.com/gin-gonic/gin"
)

type ReportHandler struct {
	reportService service.ReportService
}

func NewReportHandler(reportService service.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

func (h *ReportHandler) RegisterRoutes(router *gin.RouterGroup) {
	reports := router.Group("/api/reports/expenses")
	{
		reports.GET("", h.GetExpenseReport)
		reports.GET("/export", h.ExportExcel)
		reports.GET("/export/pdf", h.ExportPDF)
	}
}

// GetExpenseReport
// @Summary      Expense report
// @Description  Detailed lines plus totals by project and by cost center. Not paginated.
// @Tags         reports
// @Produce      json
// @Security     BearerAuth
// @Param        project_ids       query     []string  false  "Project IDs (repeated or comma-separated)"  collectionFormat(multi)
// @Param        cost_center_id    query     string    false  "Cost center ID"
// @Param        start_date        query     string    false  "YYYY-MM-DD"
// @Param        end_date          query     string    false  "YYYY-MM-DD (inclusive)"
// @Param        head_office_only  query     bool      false  "Only expenses without project"
// @Param        order             query     string    false  "asc or desc"
// @Success      200               {object}  response.Response{data=service.ExpenseReportResponse}
// @Failure      400               {object}  response.Response
// @Router       /api/reports/expenses [get]
func (h *ReportHandler) GetExpenseReport(c *gin.Context) {
	q, ok := expenseQuery(c)
	if !ok {
		return
	}
	report, err := h.reportService.GetExpenseReport(c.Request.Context(), currentActor(c), q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, report))
}

// ExportExcel
// @Summary      Export expense report as xlsx
// @Tags         reports
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security     BearerAuth
// @Param        start_date  query  string  false  "YYYY-MM-DD"
// @Param        end_date    query  string  false  "YYYY-MM-DD (inclusive)"
// @Success      200  {file}  file
// @Failure      400  {object}  response.Response
// @Router       /api/reports/expenses/export [get]
func (h *ReportHandler) ExportExcel(c *gin.Context) {
	h.export(c, h.reportService.ExportExpenseReportExcel)
}

// ExportPDF
// @Summary      Export expense report as PDF
// @Tags         reports
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        start_date  query  string  false  "YYYY-MM-DD"
// @Param        end_date    query  string  false  "YYYY-MM-DD (inclusive)"
// @Success      200  {file}  file
// @Failure      400  {object}  response.Response
// @Router       /api/reports/expenses/export/pdf [get]
func (h *ReportHandler) ExportPDF(c *gin.Context) {
	h.export(c, h.reportService.ExportExpenseReportPDF)
}

type exportFunc func(ctx context.Context, actor service.Actor, q service.ExpenseQuery) (*service.ReportFile, error)

func (h *ReportHandler) export(c *gin.Context, render exportFunc) {
	q, ok := expenseQuery(c)
	if !ok {
		return
	}
	file, err := render(c.Request.Context(), currentActor(c), q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, file.Filename))
	c.Data(http.StatusOK, file.ContentType, file.Data)
}
