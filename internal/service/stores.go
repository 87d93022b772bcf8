package service

import (
	"context"
	"time"

	"github.com/vcscsvcscs/medimind-backend/internal/audit"
	"github.com/vcscsvcscs/medimind-backend/pkg/model"
)

// MedicineStore persists medicine records
type MedicineStore interface {
	Create(ctx context.Context, med *model.Medicine) error
	FindByUserID(ctx context.Context, userID string) ([]model.Medicine, error)
	FindByID(ctx context.Context, medicineID string) (*model.Medicine, error)
	Update(ctx context.Context, med *model.Medicine) error
	SetSlotTaken(ctx context.Context, medicineID string, slot int, taken bool, takenAt *time.Time) (*model.Medicine, error)
	Delete(ctx context.Context, medicineID string) error
	ResetTakenFlags(ctx context.Context, userID string) (int64, error)
}

// UserStore persists users
type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	FindByID(ctx context.Context, userID string) (*model.User, error)
	UpdateProfile(ctx context.Context, userID string, p model.ProfileUpdate) error
	UpdateGameState(ctx context.Context, userID string, state model.GameState) error
	IncrementWaterIntake(ctx context.Context, userID string) (int, error)
	NotificationSound(ctx context.Context, userID string) (string, error)
	ListReminderRecipients(ctx context.Context) ([]string, error)
}

// AuditTrail lists recorded audit entries
type AuditTrail interface {
	List(ctx context.Context, userID string, limit int) ([]audit.Entry, error)
}

// recordAudit writes an audit entry; failures are logged by the recorder and never fail the operation
func recordAudit(ctx context.Context, recorder audit.Recorder, entry audit.Entry) {
	if recorder == nil {
		return
	}
	_ = recorder.Record(ctx, entry)
}
