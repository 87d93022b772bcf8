package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vcscsvcscs/medimind-backend/internal/service"
	"github.com/vcscsvcscs/medimind-backend/pkg/api"
	"go.uber.org/zap"
)

// stringPtr creates a pointer to a string
func stringPtr(s string) *string {
	return &s
}

// badRequest responds 400 for a body or path parameter that could not be parsed
func badRequest(c *gin.Context, message string, err error) {
	resp := api.ErrorResponse{
		Code:    api.CodeValidation,
		Message: message,
	}
	if err != nil {
		resp.Details = stringPtr(err.Error())
	}
	c.JSON(http.StatusBadRequest, resp)
}

// respondError maps service errors to status codes. Only unexpected errors are logged at error level.
func respondError(c *gin.Context, logger *zap.Logger, err error, message string, fields ...zap.Field) {
	var validation *service.ValidationError

	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, api.ErrorResponse{
			Code:    api.CodeValidation,
			Message: validation.Error(),
		})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{
			Code:    api.CodeNotFound,
			Message: "Resource not found",
			Details: stringPtr(err.Error()),
		})
	case errors.Is(err, service.ErrAlreadyClaimed):
		c.JSON(http.StatusConflict, api.ErrorResponse{
			Code:    api.CodeAlreadyClaimed,
			Message: "Daily reward already claimed today",
		})
	default:
		logger.Error(message, append(fields, zap.Error(err))...)
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{
			Code:    api.CodeInternal,
			Message: message,
			Details: stringPtr(err.Error()),
		})
	}
}
