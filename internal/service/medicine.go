package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vcscsvcscs/medimind-backend/internal/adherence"
	"github.com/vcscsvcscs/medimind-backend/internal/audit"
	"github.com/vcscsvcscs/medimind-backend/pkg/api"
	"github.com/vcscsvcscs/medimind-backend/pkg/model"
	"go.uber.org/zap"
)

// DefaultDurationDays applies when an added medicine omits its duration
const DefaultDurationDays = 30

// AchievementEvaluator re-evaluates a user's daily achievements after a state change
type AchievementEvaluator interface {
	Reevaluate(ctx context.Context, userID string) ([]string, error)
}

// MedicineService handles medicine records, the daily schedule and adherence
type MedicineService struct {
	medicines    MedicineStore
	users        UserStore
	achievements AchievementEvaluator
	audit        audit.Recorder
	logger       *zap.Logger
	now          func() time.Time
}

// NewMedicineService creates a new MedicineService
func NewMedicineService(medicines MedicineStore, users UserStore, achievements AchievementEvaluator, recorder audit.Recorder, logger *zap.Logger) *MedicineService {
	return &MedicineService{
		medicines:    medicines,
		users:        users,
		achievements: achievements,
		audit:        recorder,
		logger:       logger,
		now:          time.Now,
	}
}

// WithClock replaces the wall clock, for tests
func (s *MedicineService) WithClock(now func() time.Time) *MedicineService {
	s.now = now
	return s
}

// AddMedicine validates and stores a new medicine starting today
func (s *MedicineService) AddMedicine(ctx context.Context, req api.AddMedicineRequest) (*model.Medicine, error) {
	if err := requireID("user_id", req.UserID); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, invalid("name", "medicine name is required")
	}

	times, err := normalizeTimes([model.MaxSlots]string{req.Time1, req.Time2, req.Time3})
	if err != nil {
		return nil, err
	}
	if times == [model.MaxSlots]string{} {
		return nil, invalid("time1", "at least one dose time is required")
	}

	duration := DefaultDurationDays
	if req.DurationDays != nil {
		duration = *req.DurationDays
	}
	if duration <= 0 {
		return nil, invalid("duration_days", "must be greater than zero")
	}

	if _, err := s.users.FindByID(ctx, req.UserID); err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	med := &model.Medicine{
		ID:           uuid.New().String(),
		UserID:       req.UserID,
		Name:         name,
		Dosage:       strings.TrimSpace(req.Dosage),
		DurationDays: duration,
		StartDate:    model.DateOf(s.now()),
		Notes:        req.Notes,
	}
	for i, t := range times {
		med.Slots[i].Time = t
	}

	if err := s.medicines.Create(ctx, med); err != nil {
		s.logger.Error("failed to add medicine",
			zap.Error(err),
			zap.String("user_id", req.UserID),
			zap.String("name", name),
		)
		return nil, fmt.Errorf("failed to add medicine: %w", err)
	}

	recordAudit(ctx, s.audit, audit.Entry{
		UserID:        med.UserID,
		OperationType: audit.OperationCreate,
		ResourceType:  audit.ResourceMedicine,
		ResourceID:    med.ID,
	})

	s.logger.Info("medicine added",
		zap.String("medicine_id", med.ID),
		zap.String("user_id", med.UserID),
		zap.Int("duration_days", med.DurationDays),
	)

	return med, nil
}

// ListMedicines returns every medicine of a user, active or not
func (s *MedicineService) ListMedicines(ctx context.Context, userID string) ([]model.Medicine, error) {
	if err := requireID("user_id", userID); err != nil {
		return nil, err
	}

	medicines, err := s.medicines.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list medicines: %w", err)
	}

	return medicines, nil
}

// TodaySchedule returns today's doses of the user in time order
func (s *MedicineService) TodaySchedule(ctx context.Context, userID string) ([]model.DoseOccurrence, error) {
	return s.scheduleOn(ctx, userID, s.now())
}

// Summary returns today's adherence summary of the user
func (s *MedicineService) Summary(ctx context.Context, userID string) (*model.AdherenceSummary, error) {
	occurrences, err := s.TodaySchedule(ctx, userID)
	if err != nil {
		return nil, err
	}

	summary := adherence.Summarize(occurrences)
	return &summary, nil
}

// Reminders returns today's untaken doses of the user
func (s *MedicineService) Reminders(ctx context.Context, userID string) ([]model.DoseOccurrence, error) {
	occurrences, err := s.TodaySchedule(ctx, userID)
	if err != nil {
		return nil, err
	}

	return adherence.PendingDoses(occurrences), nil
}

func (s *MedicineService) scheduleOn(ctx context.Context, userID string, day time.Time) ([]model.DoseOccurrence, error) {
	medicines, err := s.ListMedicines(ctx, userID)
	if err != nil {
		return nil, err
	}

	return adherence.BuildSchedule(medicines, day), nil
}

// UpdateMedicine applies a partial update. A slot whose time changes loses its taken state.
func (s *MedicineService) UpdateMedicine(ctx context.Context, medicineID string, req api.UpdateMedicineRequest) (*model.Medicine, error) {
	if err := requireID("medicine_id", medicineID); err != nil {
		return nil, err
	}

	med, err := s.medicines.FindByID(ctx, medicineID)
	if err != nil {
		return nil, fmt.Errorf("failed to load medicine: %w", err)
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, invalid("name", "medicine name is required")
		}
		med.Name = name
	}
	if req.Dosage != nil {
		med.Dosage = strings.TrimSpace(*req.Dosage)
	}
	if req.DurationDays != nil {
		if *req.DurationDays <= 0 {
			return nil, invalid("duration_days", "must be greater than zero")
		}
		med.DurationDays = *req.DurationDays
	}
	if req.Notes != nil {
		med.Notes = req.Notes
	}

	requested := [model.MaxSlots]*string{req.Time1, req.Time2, req.Time3}
	current := [model.MaxSlots]string{}
	for i := range current {
		current[i] = med.Slots[i].Time
		if requested[i] != nil {
			current[i] = *requested[i]
		}
	}

	times, err := normalizeTimes(current)
	if err != nil {
		return nil, err
	}
	if times == [model.MaxSlots]string{} {
		return nil, invalid("time1", "at least one dose time is required")
	}

	for i, t := range times {
		if med.Slots[i].Time != t {
			med.Slots[i] = model.Slot{Time: t}
		}
	}

	if err := s.medicines.Update(ctx, med); err != nil {
		s.logger.Error("failed to update medicine",
			zap.Error(err),
			zap.String("medicine_id", medicineID),
		)
		return nil, fmt.Errorf("failed to update medicine: %w", err)
	}

	recordAudit(ctx, s.audit, audit.Entry{
		UserID:        med.UserID,
		OperationType: audit.OperationUpdate,
		ResourceType:  audit.ResourceMedicine,
		ResourceID:    med.ID,
	})

	return med, nil
}

// ToggleDose flips a slot's taken state, then re-evaluates the user's achievements.
// Achievement failures are logged and retried on the next trigger; they do not fail the toggle.
func (s *MedicineService) ToggleDose(ctx context.Context, medicineID string, slot int) (*model.Medicine, []string, error) {
	if err := requireID("medicine_id", medicineID); err != nil {
		return nil, nil, err
	}
	if slot < 1 || slot > model.MaxSlots {
		return nil, nil, invalid("slot", fmt.Sprintf("must be between 1 and %d", model.MaxSlots))
	}

	med, err := s.medicines.FindByID(ctx, medicineID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load medicine: %w", err)
	}

	current := med.Slots[slot-1]
	if !current.Scheduled() {
		return nil, nil, invalid("slot", "slot has no scheduled time")
	}

	taken := !current.Taken
	var takenAt *time.Time
	if taken {
		now := s.now()
		takenAt = &now
	}

	updated, err := s.medicines.SetSlotTaken(ctx, medicineID, slot, taken, takenAt)
	if err != nil {
		s.logger.Error("failed to toggle dose",
			zap.Error(err),
			zap.String("medicine_id", medicineID),
			zap.Int("slot", slot),
		)
		return nil, nil, fmt.Errorf("failed to toggle dose: %w", err)
	}

	recordAudit(ctx, s.audit, audit.Entry{
		UserID:         updated.UserID,
		OperationType:  audit.OperationToggle,
		ResourceType:   audit.ResourceMedicine,
		ResourceID:     updated.ID,
		AdditionalData: map[string]interface{}{"slot": slot, "taken": taken},
	})

	s.logger.Info("dose toggled",
		zap.String("medicine_id", medicineID),
		zap.String("user_id", updated.UserID),
		zap.Int("slot", slot),
		zap.Bool("taken", taken),
	)

	var awarded []string
	if taken && s.achievements != nil {
		awarded, err = s.achievements.Reevaluate(ctx, updated.UserID)
		if err != nil {
			s.logger.Warn("achievement evaluation failed after toggle",
				zap.Error(err),
				zap.String("user_id", updated.UserID),
			)
		}
	}

	return updated, awarded, nil
}

// DeleteMedicine removes a medicine record
func (s *MedicineService) DeleteMedicine(ctx context.Context, medicineID string) error {
	if err := requireID("medicine_id", medicineID); err != nil {
		return err
	}

	med, err := s.medicines.FindByID(ctx, medicineID)
	if err != nil {
		return fmt.Errorf("failed to load medicine: %w", err)
	}

	if err := s.medicines.Delete(ctx, medicineID); err != nil {
		s.logger.Error("failed to delete medicine",
			zap.Error(err),
			zap.String("medicine_id", medicineID),
		)
		return fmt.Errorf("failed to delete medicine: %w", err)
	}

	recordAudit(ctx, s.audit, audit.Entry{
		UserID:        med.UserID,
		OperationType: audit.OperationDelete,
		ResourceType:  audit.ResourceMedicine,
		ResourceID:    medicineID,
	})

	return nil
}

// ResetDay clears today's taken flags of one user
func (s *MedicineService) ResetDay(ctx context.Context, userID string) (int64, error) {
	if err := requireID("user_id", userID); err != nil {
		return 0, err
	}

	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return 0, fmt.Errorf("failed to load user: %w", err)
	}

	reset, err := s.medicines.ResetTakenFlags(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to reset day: %w", err)
	}

	recordAudit(ctx, s.audit, audit.Entry{
		UserID:        userID,
		OperationType: audit.OperationReset,
		ResourceType:  audit.ResourceMedicine,
		ResourceID:    userID,
	})

	return reset, nil
}

// Recipients lists the users the reminder scheduler polls
func (s *MedicineService) Recipients(ctx context.Context) ([]string, error) {
	return s.users.ListReminderRecipients(ctx)
}

// PendingDoses returns the user's untaken doses on day
func (s *MedicineService) PendingDoses(ctx context.Context, userID string, day time.Time) ([]model.DoseOccurrence, error) {
	occurrences, err := s.scheduleOn(ctx, userID, day)
	if err != nil {
		return nil, err
	}
	return adherence.PendingDoses(occurrences), nil
}

// normalizeTimes validates and zero-pads each slot time; empty slots stay empty
func normalizeTimes(raw [model.MaxSlots]string) ([model.MaxSlots]string, error) {
	var out [model.MaxSlots]string
	for i, value := range raw {
		normalized, err := adherence.NormalizeClock(strings.TrimSpace(value))
		if err != nil {
			return out, invalid(fmt.Sprintf("time%d", i+1), "must be a time of day in HH:mm format")
		}
		out[i] = normalized
	}
	return out, nil
}
