// Package api holds the request and response bodies of the HTTP API
package api

import (
	"time"

	"github.com/vcscsvcscs/medimind-backend/pkg/model"
)

// Error codes returned in ErrorResponse.Code
const (
	CodeValidation     = "VALIDATION_ERROR"
	CodeNotFound       = "NOT_FOUND"
	CodeAlreadyClaimed = "ALREADY_CLAIMED"
	CodeInternal       = "INTERNAL_ERROR"
)

// ErrorResponse is the body of every non-2xx response
type ErrorResponse struct {
	Code    string  `json:"code"`
	Message string  `json:"message"`
	Details *string `json:"details,omitempty"`
}

// AddMedicineRequest is the body of POST /api/medicine/add
type AddMedicineRequest struct {
	UserID       string  `json:"user_id"`
	Name         string  `json:"name"`
	Dosage       string  `json:"dosage"`
	Time1        string  `json:"time1"`
	Time2        string  `json:"time2"`
	Time3        string  `json:"time3"`
	DurationDays *int    `json:"duration_days,omitempty"`
	Notes        *string `json:"notes,omitempty"`
}

// UpdateMedicineRequest is the body of PUT /api/medicine/{id}; nil fields are left unchanged
type UpdateMedicineRequest struct {
	Name         *string `json:"name,omitempty"`
	Dosage       *string `json:"dosage,omitempty"`
	Time1        *string `json:"time1,omitempty"`
	Time2        *string `json:"time2,omitempty"`
	Time3        *string `json:"time3,omitempty"`
	DurationDays *int    `json:"duration_days,omitempty"`
	Notes        *string `json:"notes,omitempty"`
}

// CreateUserRequest is the body of POST /api/user
type CreateUserRequest struct {
	Name                 string `json:"name"`
	Email                string `json:"email"`
	NotificationSound    string `json:"notification_sound"`
	NotificationsEnabled *bool  `json:"notifications_enabled,omitempty"`
}

// UpdateUserRequest is the body of PUT /api/user/update
type UpdateUserRequest struct {
	ID string `json:"id"`
	model.UserPatch
}

// ToggleResponse is returned after a dose was toggled
type ToggleResponse struct {
	Medicine     model.Medicine `json:"medicine"`
	Achievements []string       `json:"achievements"`
}

// ClaimResponse is returned by a successful claim
type ClaimResponse struct {
	Points        int         `json:"points"`
	Level         model.Level `json:"level"`
	Streak        int         `json:"streak"`
	Bonus         int         `json:"bonus"`
	CanClaimToday bool        `json:"can_claim_today"`
}

// HydrationResponse is returned after a glass was logged
type HydrationResponse struct {
	WaterIntake  int      `json:"water_intake"`
	Achievements []string `json:"achievements"`
}

// ResetResponse is returned by the daily reset
type ResetResponse struct {
	MedicinesReset int64 `json:"medicines_reset"`
}

// HealthResponse is the body of GET /health
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]string `json:"checks"`
}
