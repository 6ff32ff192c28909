package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"userapp/internal/core/model/response"
	"userapp/internal/core/port"
)

type HealthHandler struct {
	svc port.UserService
}

func NewHealthHandler(svc port.UserService) *HealthHandler {
	return &HealthHandler{svc: svc}
}

func (h *HealthHandler) Health(c *gin.Context) {
	count, err := h.svc.Count(c.Request.Context())

	if err != nil {
		c.JSON(http.StatusServiceUnavailable, response.ErrorResponse{
			Error: response.ResponseError{Code: "UNAVAILABLE", Message: err.Error()},
		})
		return
	}

	c.JSON(http.StatusOK, response.HealthResponse{Status: "ok", Users: count})
}
