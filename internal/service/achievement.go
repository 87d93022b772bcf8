package service

import (
	"context"
	"fmt"

	"github.com/vcscsvcscs/medimind-backend/internal/adherence"
	"github.com/vcscsvcscs/medimind-backend/internal/audit"
	"github.com/vcscsvcscs/medimind-backend/internal/gamification"
	"go.uber.org/zap"
)

// AchievementService evaluates the once-per-day achievements against a user's current day
type AchievementService struct {
	medicines MedicineStore
	users     UserStore
	engine    *gamification.Engine
	audit     audit.Recorder
	logger    *zap.Logger
}

// NewAchievementService creates a new AchievementService
func NewAchievementService(medicines MedicineStore, users UserStore, engine *gamification.Engine, recorder audit.Recorder, logger *zap.Logger) *AchievementService {
	return &AchievementService{
		medicines: medicines,
		users:     users,
		engine:    engine,
		audit:     recorder,
		logger:    logger,
	}
}

// Snapshot reads the user's hydration and today's adherence
func (s *AchievementService) Snapshot(ctx context.Context, userID string) (gamification.Snapshot, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return gamification.Snapshot{}, fmt.Errorf("failed to load user: %w", err)
	}

	medicines, err := s.medicines.FindByUserID(ctx, userID)
	if err != nil {
		return gamification.Snapshot{}, fmt.Errorf("failed to list medicines: %w", err)
	}

	return gamification.Snapshot{
		HydrationGlasses: user.WaterIntake,
		Summary:          adherence.Summarize(adherence.BuildSchedule(medicines, s.engine.Now())),
	}, nil
}

// Reevaluate awards every achievement the user now qualifies for and returns their kinds
func (s *AchievementService) Reevaluate(ctx context.Context, userID string) ([]string, error) {
	snapshot, err := s.Snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}

	kinds, err := s.engine.Evaluate(ctx, userID, snapshot)

	awarded := make([]string, 0, len(kinds))
	for _, kind := range kinds {
		awarded = append(awarded, string(kind))
		recordAudit(ctx, s.audit, audit.Entry{
			UserID:        userID,
			OperationType: audit.OperationAward,
			ResourceType:  audit.ResourceAchievement,
			ResourceID:    string(kind),
		})
	}

	if err != nil {
		s.logger.Error("failed to evaluate achievements",
			zap.Error(err),
			zap.String("user_id", userID),
		)
		return awarded, fmt.Errorf("failed to evaluate achievements: %w", err)
	}

	return awarded, nil
}
