package handler

import (
	"net/http"
	"strconv"

	"sgo/internal/service"
	"sgo/pkg/pagination"
	"sgo/pkg/response"

	"github.com/gin-gonic/gin"
)

type ExpenseHandler struct {
	expenseService service.ExpenseService
}

func NewExpenseHandler(expenseService service.ExpenseService) *ExpenseHandler {
	return &ExpenseHandler{expenseService: expenseService}
}

func (h *ExpenseHandler) RegisterRoutes(router *gin.RouterGroup) {
	expenses := router.Group("/api/projectexpenses")
	{
		expenses.GET("", h.ListExpenses)
		expenses.POST("", h.CreateExpense)
		expenses.GET("/:id", h.GetExpense)
		expenses.PUT("/:id", h.UpdateExpense)
		expenses.DELETE("/:id", h.DeleteExpense)
	}
}

// expenseQuery reads the filter shared by the expense list and the reports.
// project_ids may be repeated or comma-separated.
func expenseQuery(c *gin.Context) (service.ExpenseQuery, bool) {
	q := service.ExpenseQuery{
		ProjectIDs:   c.QueryArray("project_ids"),
		ContractID:   c.Query("contract_id"),
		CostCenterID: c.Query("cost_center_id"),
		StartDate:    c.Query("start_date"),
		EndDate:      c.Query("end_date"),
		Order:        c.Query("order"),
	}
	if raw := c.Query("head_office_only"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			badRequest(c, "head_office_only must be true or false")
			return q, false
		}
		q.HeadOfficeOnly = v
	}
	return q, true
}

// ListExpenses
// @Summary      List expenses
// @Description  Expenses of the caller's company, ordered by date
// @Tags         expenses
// @Produce      json
// @Security     BearerAuth
// @Param        project_ids       query     []string  false  "Project IDs (repeated or comma-separated)"  collectionFormat(multi)
// @Param        contract_id       query     string    false  "Contract ID"
// @Param        cost_center_id    query     string    false  "Cost center ID"
// @Param        start_date        query     string    false  "YYYY-MM-DD"
// @Param        end_date          query     string    false  "YYYY-MM-DD (inclusive)"
// @Param        head_office_only  query     bool      false  "Only expenses without project"
// @Param        order             query     string    false  "asc or desc"
// @Param        page              query     int       false  "Page number (default 1)"
// @Param        limit             query     int       false  "Items per page (default 20)"
// @Success      200               {object}  response.Response{data=response.Page}
// @Failure      400               {object}  response.Response
// @Router       /api/projectexpenses [get]
func (h *ExpenseHandler) ListExpenses(c *gin.Context) {
	q, ok := expenseQuery(c)
	if !ok {
		return
	}
	p := pagination.Parse(c)
	q.Page, q.Limit = p.Page, p.Limit

	expenses, total, err := h.expenseService.ListExpenses(c.Request.Context(), currentActor(c), q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, expenses, total, p.Page, p.Limit))
}

// CreateExpense
// @Summary      Create expense
// @Description  Details are checked against the cost center field schema
// @Tags         expenses
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateExpenseRequest  true  "Expense"
// @Success      201      {object}  response.Response{data=service.ExpenseResponse}
// @Failure      400      {object}  response.Response
// @Failure      422      {object}  response.Response
// @Router       /api/projectexpenses [post]
func (h *ExpenseHandler) CreateExpense(c *gin.Context) {
	var req service.CreateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	expense, err := h.expenseService.CreateExpense(c.Request.Context(), currentActor(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, expense))
}

// GetExpense
// @Summary      Get expense
// @Tags         expenses
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Expense ID"
// @Success      200  {object}  response.Response{data=service.ExpenseResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/projectexpenses/{id} [get]
func (h *ExpenseHandler) GetExpense(c *gin.Context) {
	expense, err := h.expenseService.GetExpense(c.Request.Context(), currentActor(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, expense))
}

// UpdateExpense
// @Summary      Update expense
// @Description  Send the version read earlier to detect concurrent edits
// @Tags         expenses
// @Accept       json
// @Security     BearerAuth
// @Param        id       path  string                        true  "Expense ID"
// @Param        payload  body  service.UpdateExpenseRequest  true  "Expense"
// @Success      204
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/projectexpenses/{id} [put]
func (h *ExpenseHandler) UpdateExpense(c *gin.Context) {
	var req service.UpdateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	if err := h.expenseService.UpdateExpense(c.Request.Context(), currentActor(c), c.Param("id"), req); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DeleteExpense
// @Summary      Delete expense
// @Tags         expenses
// @Security     BearerAuth
// @Param        id   path  string  true  "Expense ID"
// @Success      204
// @Failure      404  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /api/projectexpenses/{id} [delete]
func (h *ExpenseHandler) DeleteExpense(c *gin.Context) {
	if err := h.expenseService.DeleteExpense(c.Request.Context(), currentActor(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
