package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HydrationHandler implements the water intake endpoint
type HydrationHandler struct {
	service HydrationService
	logger  *zap.Logger
}

// NewHydrationHandler creates a new HydrationHandler
func NewHydrationHandler(service HydrationService, logger *zap.Logger) *HydrationHandler {
	return &HydrationHandler{
		service: service,
		logger:  logger,
	}
}

// LogGlass adds one glass of water
func (h *HydrationHandler) LogGlass(c *gin.Context) {
	userID := c.Param("userId")

	resp, err := h.service.LogGlass(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err, "Failed to log water intake", zap.String("user_id", userID))
		return
	}

	c.JSON(http.StatusOK, resp)
}
