package handler

import (
	"net/http"

	"sgo/internal/middleware"
	"sgo/internal/service"
	"sgo/pkg/pagination"
	"sgo/pkg/response"

	"github.com/gin-gonic/gin"
)

type ContractHandler struct {
	contractService service.ContractService
}

func NewContractHandler(contractService service.ContractService) *ContractHandler {
	return &ContractHandler{contractService: contractService}
}

func (h *ContractHandler) RegisterRoutes(router *gin.RouterGroup) {
	contracts := router.Group("/api/contracts")
	{
		contracts.GET("", h.ListContracts)
		contracts.GET("/:id", h.GetContract)
		contracts.POST("", middleware.AllowRoles(managers...), h.CreateContract)
		contracts.PUT("/:id", middleware.AllowRoles(managers...), h.UpdateContract)
		contracts.DELETE("/:id", middleware.AllowRoles(managers...), h.DeleteContract)
	}
}

// ListContracts
// @Summary      List contracts
// @Tags         contracts
// @Produce      json
// @Security     BearerAuth
// @Param        project_id  query     string  false  "Project ID"
// @Param        page        query     int     false  "Page number (default 1)"
// @Param        limit       query     int     false  "Items per page (default 20)"
// @Success      200         {object}  response.Response{data=response.Page}
// @Router       /api/contracts [get]
func (h *ContractHandler) ListContracts(c *gin.Context) {
	p := pagination.Parse(c)
	contracts, total, err := h.contractService.ListContracts(c.Request.Context(), currentActor(c), c.Query("project_id"), p.Page, p.Limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, contracts, total, p.Page, p.Limit))
}

// GetContract
// @Summary      Get contract
// @Tags         contracts
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Contract ID"
// @Success      200  {object}  response.Response{data=service.ContractResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/contracts/{id} [get]
func (h *ContractHandler) GetContract(c *gin.Context) {
	contract, err := h.contractService.GetContract(c.Request.Context(), currentActor(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, contract))
}

// CreateContract
// @Summary      Create contract
// @Tags         contracts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.ContractRequest  true  "Contract"
// @Success      201      {object}  response.Response{data=service.ContractResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/contracts [post]
func (h *ContractHandler) CreateContract(c *gin.Context) {
	var req service.ContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload: "+err.Error())
		return
	}
	contract, err := h.contractService.CreateContract(c.Request.Context(), currentActor(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, contract))
}

// UpdateContract
// @Summary      Update contract
// @Tags         contracts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                   true  "Contract ID"
// @Param        payload  body      service.ContractRequest  true  "Contract"
// @Success      200      {object}  response.Response{data=service.ContractResponse}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/contracts/{id} [put]
func (h *ContractHandler) UpdateContract(c *gin.Context) {
	var req service.ContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload: "+err.Error())
		return
	}
	contract, err := h.contractService.UpdateContract(c.Request.Context(), currentActor(c), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, contract))
}

// DeleteContract
// @Summary      Delete contract
// @Description  Refused with 409 while invoices or expenses reference the contract
// @Tags         contracts
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Contract ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /api/contracts/{id} [delete]
func (h *ContractHandler) DeleteContract(c *gin.Context) {
	if err := h.contractService.DeleteContract(c.Request.Context(), currentActor(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Contract deleted successfully"))
}
