package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/vcscsvcscs/medimind-backend/pkg/api"
	"go.uber.org/zap"
)

const maxAuditLimit = 500

// UserHandler implements the user and daily reward endpoints
type UserHandler struct {
	service UserService
	logger  *zap.Logger
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(service UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		service: service,
		logger:  logger,
	}
}

// CreateUser registers a user
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req api.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid request body", zap.Error(err))
		badRequest(c, "Invalid request body", err)
		return
	}

	user, err := h.service.CreateUser(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err, "Failed to create user")
		return
	}

	c.JSON(http.StatusCreated, user)
}

// GetUser returns the profile and game state
func (h *UserHandler) GetUser(c *gin.Context) {
	userID := c.Param("id")

	user, err := h.service.GetUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err, "Failed to get user", zap.String("user_id", userID))
		return
	}

	c.JSON(http.StatusOK, user)
}

// UpdateUser merges a partial update
func (h *UserHandler) UpdateUser(c *gin.Context) {
	var req api.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid request body", zap.Error(err))
		badRequest(c, "Invalid request body", err)
		return
	}

	user, achievements, err := h.service.UpdateUser(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err, "Failed to update user", zap.String("user_id", req.ID))
		return
	}

	if len(achievements) > 0 {
		h.logger.Info("user update earned achievements",
			zap.String("user_id", user.ID),
			zap.Strings("achievements", achievements),
		)
	}

	c.JSON(http.StatusOK, user)
}

// ClaimToday claims the daily reward
func (h *UserHandler) ClaimToday(c *gin.Context) {
	userID := c.Param("userId")

	resp, err := h.service.ClaimToday(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err, "Failed to claim daily reward", zap.String("user_id", userID))
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ClaimStatus reports whether the reward can still be claimed today
func (h *UserHandler) ClaimStatus(c *gin.Context) {
	userID := c.Param("userId")

	status, err := h.service.ClaimStatus(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err, "Failed to get claim status", zap.String("user_id", userID))
		return
	}

	c.JSON(http.StatusOK, status)
}

// AuditTrail lists the user's recent audit entries; ?limit= caps the count
func (h *UserHandler) AuditTrail(c *gin.Context) {
	userID := c.Param("id")

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > maxAuditLimit {
			badRequest(c, "limit must be between 1 and 500", err)
			return
		}
		limit = parsed
	}

	entries, err := h.service.AuditTrail(c.Request.Context(), userID, limit)
	if err != nil {
		respondError(c, h.logger, err, "Failed to list audit trail", zap.String("user_id", userID))
		return
	}

	c.JSON(http.StatusOK, entries)
}
