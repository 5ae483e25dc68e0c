package handler

import (
	"errors"
	"net/http"

	"sgo/internal/logger"
	"sgo/internal/middleware"
	"sgo/internal/model"
	"sgo/internal/service"
	"sgo/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Role sets used by the routes.
var (
	adminOnly = []string{model.RoleAdmin}
	managers  = []string{model.RoleAdmin, model.RoleManager}
)

// respondError maps service errors to status codes. Unknown errors are logged and
// answered with a generic message.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrUnprocessable):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, service.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, service.ErrForbidden):
		status = http.StatusForbidden
	}

	if status == http.StatusInternalServerError {
		logger.FromContext(c.Request.Context()).Error("request failed",
			zap.String("route", c.FullPath()),
			zap.Error(err))
		c.JSON(status, response.Error(status, "Internal server error"))
		return
	}
	c.JSON(status, response.Error(status, err.Error()))
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, msg))
}

// currentActor reads the identity stored by middleware.RequireRole.
func currentActor(c *gin.Context) service.Actor {
	actor := service.Actor{Role: c.GetString(middleware.ContextUserRole)}
	if id, ok := c.Get(middleware.ContextUserID); ok {
		actor.UserID, _ = id.(uuid.UUID)
	}
	if id, ok := c.Get(middleware.ContextCompanyID); ok {
		actor.CompanyID, _ = id.(uuid.UUID)
	}
	return actor
}
