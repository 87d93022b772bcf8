package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/vcscsvcscs/medimind-backend/pkg/api"
	"go.uber.org/zap"
)

// MedicineHandler implements the medicine API endpoints
type MedicineHandler struct {
	service MedicineService
	reports ReportService
	logger  *zap.Logger
}

// NewMedicineHandler creates a new MedicineHandler
func NewMedicineHandler(service MedicineService, reports ReportService, logger *zap.Logger) *MedicineHandler {
	return &MedicineHandler{
		service: service,
		reports: reports,
		logger:  logger,
	}
}

// ListMedicines returns every medicine of a user
func (h *MedicineHandler) ListMedicines(c *gin.Context) {
	userID := c.Param("userId")

	medicines, err := h.service.ListMedicines(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err, "Failed to list medicines", zap.String("user_id", userID))
		return
	}

	c.JSON(http.StatusOK, medicines)
}

// TodaySchedule returns today's doses in time order
func (h *MedicineHandler) TodaySchedule(c *gin.Context) {
	userID := c.Param("userId")

	schedule, err := h.service.TodaySchedule(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err, "Failed to build today's schedule", zap.String("user_id", userID))
		return
	}

	c.JSON(http.StatusOK, schedule)
}

// Summary returns today's adherence summary
func (h *MedicineHandler) Summary(c *gin.Context) {
	userID := c.Param("userId")

	summary, err := h.service.Summary(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err, "Failed to summarize adherence", zap.String("user_id", userID))
		return
	}

	c.JSON(http.StatusOK, summary)
}

// Reminders returns today's untaken doses
func (h *MedicineHandler) Reminders(c *gin.Context) {
	userID := c.Param("userId")

	reminders, err := h.service.Reminders(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err, "Failed to list reminders", zap.String("user_id", userID))
		return
	}

	c.JSON(http.StatusOK, reminders)
}

// AddMedicine creates a medicine
func (h *MedicineHandler) AddMedicine(c *gin.Context) {
	var req api.AddMedicineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid request body", zap.Error(err))
		badRequest(c, "Invalid request body", err)
		return
	}

	med, err := h.service.AddMedicine(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err, "Failed to add medicine", zap.String("user_id", req.UserID))
		return
	}

	c.JSON(http.StatusCreated, med)
}

// UpdateMedicine applies a partial update
func (h *MedicineHandler) UpdateMedicine(c *gin.Context) {
	medicineID := c.Param("id")

	var req api.UpdateMedicineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid request body", zap.Error(err))
		badRequest(c, "Invalid request body", err)
		return
	}

	med, err := h.service.UpdateMedicine(c.Request.Context(), medicineID, req)
	if err != nil {
		respondError(c, h.logger, err, "Failed to update medicine", zap.String("medicine_id", medicineID))
		return
	}

	c.JSON(http.StatusOK, med)
}

// ToggleDose flips the taken state of one slot
func (h *MedicineHandler) ToggleDose(c *gin.Context) {
	medicineID := c.Param("id")

	slot, err := strconv.Atoi(c.Param("slot"))
	if err != nil {
		badRequest(c, "slot must be a number between 1 and 3", err)
		return
	}

	med, achievements, err := h.service.ToggleDose(c.Request.Context(), medicineID, slot)
	if err != nil {
		respondError(c, h.logger, err, "Failed to toggle dose",
			zap.String("medicine_id", medicineID),
			zap.Int("slot", slot),
		)
		return
	}

	if achievements == nil {
		achievements = []string{}
	}

	c.JSON(http.StatusOK, api.ToggleResponse{
		Medicine:     *med,
		Achievements: achievements,
	})
}

// DeleteMedicine removes a medicine
func (h *MedicineHandler) DeleteMedicine(c *gin.Context) {
	medicineID := c.Param("id")

	if err := h.service.DeleteMedicine(c.Request.Context(), medicineID); err != nil {
		respondError(c, h.logger, err, "Failed to delete medicine", zap.String("medicine_id", medicineID))
		return
	}

	c.Status(http.StatusNoContent)
}

// ResetDay clears today's taken flags of a user
func (h *MedicineHandler) ResetDay(c *gin.Context) {
	userID := c.Param("userId")

	reset, err := h.service.ResetDay(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err, "Failed to reset day", zap.String("user_id", userID))
		return
	}

	c.JSON(http.StatusOK, api.ResetResponse{MedicinesReset: reset})
}

// Report streams today's adherence report as a PDF download
func (h *MedicineHandler) Report(c *gin.Context) {
	userID := c.Param("userId")

	report, err := h.reports.GenerateReport(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err, "Failed to generate report", zap.String("user_id", userID))
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+report.Filename)
	c.Data(http.StatusOK, "application/pdf", report.Data)
}
