package handler

import (
	"net/http"

	"sgo/internal/middleware"
	"sgo/internal/service"
	"sgo/pkg/response"

	"github.com/gin-gonic/gin"
)

type CostCenterHandler struct {
	costCenterService service.CostCenterService
}

func NewCostCenterHandler(costCenterService service.CostCenterService) *CostCenterHandler {
	return &CostCenterHandler{costCenterService: costCenterService}
}

func (h *CostCenterHandler) RegisterRoutes(router *gin.RouterGroup) {
	costCenters := router.Group("/api/costcenters")
	{
		costCenters.GET("", h.ListCostCenters)
		costCenters.GET("/:id/fields", h.GetFields)
		costCenters.POST("", middleware.AllowRoles(managers...), h.CreateCostCenter)
		costCenters.DELETE("/:id", middleware.AllowRoles(managers...), h.DeleteCostCenter)
	}
}

// ListCostCenters
// @Summary      List cost centers
// @Description  Global catalog entries plus the caller's company entries, by name
// @Tags         costcenters
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]service.CostCenterResponse}
// @Router       /api/costcenters [get]
func (h *CostCenterHandler) ListCostCenters(c *gin.Context) {
	list, err := h.costCenterService.ListCostCenters(c.Request.Context(), currentActor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, list))
}

// GetFields
// @Summary      Detail fields of a cost center
// @Tags         costcenters
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Cost center ID"
// @Success      200  {object}  response.Response{data=service.CostCenterFieldsResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/costcenters/{id}/fields [get]
func (h *CostCenterHandler) GetFields(c *gin.Context) {
	fields, err := h.costCenterService.GetFields(c.Request.Context(), currentActor(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, fields))
}

// CreateCostCenter
// @Summary      Create cost center
// @Tags         costcenters
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateCostCenterRequest  true  "Cost center"
// @Success      201      {object}  response.Response{data=service.CostCenterResponse}
// @Failure      403      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Failure      422      {object}  response.Response
// @Router       /api/costcenters [post]
func (h *CostCenterHandler) CreateCostCenter(c *gin.Context) {
	var req service.CreateCostCenterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload: "+err.Error())
		return
	}
	created, err := h.costCenterService.CreateCostCenter(c.Request.Context(), currentActor(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, created))
}

// DeleteCostCenter
// @Summary      Delete cost center
// @Tags         costcenters
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Cost center ID"
// @Success      200  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /api/costcenters/{id} [delete]
func (h *CostCenterHandler) DeleteCostCenter(c *gin.Context) {
	if err := h.costCenterService.DeleteCostCenter(c.Request.Context(), currentActor(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Cost center deleted successfully"))
}
