package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/vcscsvcscs/medimind-backend/internal/alert"
	"github.com/vcscsvcscs/medimind-backend/pkg/api"
	"go.uber.org/zap"
)

// AlertHandler serves pending reminder alerts and their tones
type AlertHandler struct {
	feed   AlertFeed
	tones  ToneSource
	logger *zap.Logger
}

// NewAlertHandler creates a new AlertHandler
func NewAlertHandler(feed AlertFeed, tones ToneSource, logger *zap.Logger) *AlertHandler {
	return &AlertHandler{
		feed:   feed,
		tones:  tones,
		logger: logger,
	}
}

// Drain returns and clears the user's pending alerts
func (h *AlertHandler) Drain(c *gin.Context) {
	c.JSON(http.StatusOK, h.feed.Drain(c.Param("userId")))
}

// Tone serves a palette tone as WAV audio
func (h *AlertHandler) Tone(c *gin.Context) {
	name := strings.TrimSuffix(c.Param("tone"), ".wav")

	data, err := h.tones.WAVByName(c.Request.Context(), name)
	if err != nil {
		if errors.Is(err, alert.ErrUnknownTone) {
			c.JSON(http.StatusNotFound, api.ErrorResponse{
				Code:    api.CodeNotFound,
				Message: "Unknown tone",
				Details: stringPtr(name),
			})
			return
		}
		h.logger.Error("failed to render tone", zap.Error(err), zap.String("tone", name))
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{
			Code:    api.CodeInternal,
			Message: "Failed to render tone",
			Details: stringPtr(err.Error()),
		})
		return
	}

	c.Header("Cache-Control", "public, max-age=86400")
	c.Data(http.StatusOK, "audio/wav", data)
}
