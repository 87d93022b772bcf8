package handler

import (
	"context"

	"github.com/vcscsvcscs/medimind-backend/internal/alert"
	"github.com/vcscsvcscs/medimind-backend/internal/audit"
	"github.com/vcscsvcscs/medimind-backend/internal/gamification"
	"github.com/vcscsvcscs/medimind-backend/internal/service"
	"github.com/vcscsvcscs/medimind-backend/pkg/api"
	"github.com/vcscsvcscs/medimind-backend/pkg/model"
)

// MedicineService is the medicine business logic used by MedicineHandler
type MedicineService interface {
	AddMedicine(ctx context.Context, req api.AddMedicineRequest) (*model.Medicine, error)
	ListMedicines(ctx context.Context, userID string) ([]model.Medicine, error)
	TodaySchedule(ctx context.Context, userID string) ([]model.DoseOccurrence, error)
	Summary(ctx context.Context, userID string) (*model.AdherenceSummary, error)
	Reminders(ctx context.Context, userID string) ([]model.DoseOccurrence, error)
	UpdateMedicine(ctx context.Context, medicineID string, req api.UpdateMedicineRequest) (*model.Medicine, error)
	ToggleDose(ctx context.Context, medicineID string, slot int) (*model.Medicine, []string, error)
	DeleteMedicine(ctx context.Context, medicineID string) error
	ResetDay(ctx context.Context, userID string) (int64, error)
}

// ReportService generates adherence reports
type ReportService interface {
	GenerateReport(ctx context.Context, userID string) (*service.Report, error)
}

// UserService is the user and reward logic used by UserHandler
type UserService interface {
	CreateUser(ctx context.Context, req api.CreateUserRequest) (*model.User, error)
	GetUser(ctx context.Context, userID string) (*model.User, error)
	UpdateUser(ctx context.Context, req api.UpdateUserRequest) (*model.User, []string, error)
	ClaimToday(ctx context.Context, userID string) (*api.ClaimResponse, error)
	ClaimStatus(ctx context.Context, userID string) (*gamification.ClaimStatus, error)
	AuditTrail(ctx context.Context, userID string, limit int) ([]audit.Entry, error)
}

// HydrationService logs water intake
type HydrationService interface {
	LogGlass(ctx context.Context, userID string) (*api.HydrationResponse, error)
}

// AlertFeed holds alerts waiting for a client poll
type AlertFeed interface {
	Drain(userID string) []alert.Alert
}

// ToneSource renders palette tones to WAV
type ToneSource interface {
	WAVByName(ctx context.Context, name string) ([]byte, error)
}

// Pinger checks database connectivity
type Pinger interface {
	Ping(ctx context.Context) error
}

var (
	_ MedicineService  = (*service.MedicineService)(nil)
	_ ReportService    = (*service.ReportService)(nil)
	_ UserService      = (*service.UserService)(nil)
	_ HydrationService = (*service.HydrationService)(nil)
	_ AlertFeed        = (*alert.Feed)(nil)
	_ ToneSource       = (*alert.Library)(nil)
)
