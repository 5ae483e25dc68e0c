package handler

import (
	"net/http"

	"sgo/internal/middleware"
	"sgo/internal/service"
	"sgo/pkg/pagination"
	"sgo/pkg/response"

	"github.com/gin-gonic/gin"
)

type ProjectHandler struct {
	projectService service.ProjectService
	teamService    service.TeamService
}

func NewProjectHandler(projectService service.ProjectService, teamService service.TeamService) *ProjectHandler {
	return &ProjectHandler{projectService: projectService, teamService: teamService}
}

func (h *ProjectHandler) RegisterRoutes(router *gin.RouterGroup) {
	projects := router.Group("/api/projects")
	{
		projects.GET("", h.ListProjects)
		projects.GET("/:id", h.GetProject)
		projects.POST("", middleware.AllowRoles(managers...), h.CreateProject)
		projects.PUT("/:id", middleware.AllowRoles(managers...), h.UpdateProject)
		projects.DELETE("/:id", middleware.AllowRoles(managers...), h.DeleteProject)

		projects.GET("/:id/team", h.ListTeam)
		projects.POST("/:id/team", middleware.AllowRoles(managers...), h.AllocateEmployee)
	}
	router.PUT("/api/team-allocations/:id/end", middleware.AllowRoles(managers...), h.EndAllocation)
}

// ListProjects
// @Summary      List projects
// @Tags         projects
// @Produce      json
// @Security     BearerAuth
// @Param        status  query     string  false  "planning, active, paused or finished"
// @Param        page    query     int     false  "Page number (default 1)"
// @Param        limit   query     int     false  "Items per page (default 20)"
// @Success      200     {object}  response.Response{data=response.Page}
// @Router       /api/projects [get]
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	p := pagination.Parse(c)
	projects, total, err := h.projectService.ListProjects(c.Request.Context(), currentActor(c), c.Query("status"), p.Page, p.Limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, projects, total, p.Page, p.Limit))
}

// GetProject
// @Summary      Get project
// @Tags         projects
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Project ID"
// @Success      200  {object}  response.Response{data=service.ProjectResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/projects/{id} [get]
func (h *ProjectHandler) GetProject(c *gin.Context) {
	project, err := h.projectService.GetProject(c.Request.Context(), currentActor(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, project))
}

// CreateProject
// @Summary      Create project
// @Tags         projects
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.ProjectRequest  true  "Project"
// @Success      201      {object}  response.Response{data=service.ProjectResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/projects [post]
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	var req service.ProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload: "+err.Error())
		return
	}
	project, err := h.projectService.CreateProject(c.Request.Context(), currentActor(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, project))
}

// UpdateProject
// @Summary      Update project
// @Tags         projects
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                  true  "Project ID"
// @Param        payload  body      service.ProjectRequest  true  "Project"
// @Success      200      {object}  response.Response{data=service.ProjectResponse}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/projects/{id} [put]
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	var req service.ProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload: "+err.Error())
		return
	}
	project, err := h.projectService.UpdateProject(c.Request.Context(), currentActor(c), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, project))
}

// DeleteProject
// @Summary      Delete project
// @Description  Refused with 409 while contracts, expenses or allocations reference the project
// @Tags         projects
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Project ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /api/projects/{id} [delete]
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	if err := h.projectService.DeleteProject(c.Request.Context(), currentActor(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Project deleted successfully"))
}

// ListTeam
// @Summary      List project team
// @Description  Current and ended allocations with their estimated cost
// @Tags         team
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Project ID"
// @Success      200  {object}  response.Response{data=[]service.AllocationResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/projects/{id}/team [get]
func (h *ProjectHandler) ListTeam(c *gin.Context) {
	team, err := h.teamService.ListTeam(c.Request.Context(), currentActor(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, team))
}

// AllocateEmployee
// @Summary      Allocate employee
// @Tags         team
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                           true  "Project ID"
// @Param        payload  body      service.AllocateEmployeeRequest  true  "Allocation"
// @Success      201      {object}  response.Response{data=service.AllocationResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/projects/{id}/team [post]
func (h *ProjectHandler) AllocateEmployee(c *gin.Context) {
	var req service.AllocateEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload: "+err.Error())
		return
	}
	allocation, err := h.teamService.AllocateEmployee(c.Request.Context(), currentActor(c), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, allocation))
}

// EndAllocation
// @Summary      End allocation
// @Description  Sets the end date (default today). The allocation stays in the team history.
// @Tags         team
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                        true   "Allocation ID"
// @Param        payload  body      service.EndAllocationRequest  false  "End date"
// @Success      200      {object}  response.Response{data=service.AllocationResponse}
// @Failure      409      {object}  response.Response
// @Router       /api/team-allocations/{id}/end [put]
func (h *ProjectHandler) EndAllocation(c *gin.Context) {
	var req service.EndAllocationRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "Invalid request payload: "+err.Error())
			return
		}
	}
	allocation, err := h.teamService.EndAllocation(c.Request.Context(), currentActor(c), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, allocation))
}
