package service

import (
	"context"
	"fmt"

	"github.com/vcscsvcscs/medimind-backend/internal/audit"
	"github.com/vcscsvcscs/medimind-backend/pkg/api"
	"go.uber.org/zap"
)

// HydrationService logs water intake
type HydrationService struct {
	users        UserStore
	achievements AchievementEvaluator
	audit        audit.Recorder
	logger       *zap.Logger
}

// NewHydrationService creates a new HydrationService
func NewHydrationService(users UserStore, achievements AchievementEvaluator, recorder audit.Recorder, logger *zap.Logger) *HydrationService {
	return &HydrationService{
		users:        users,
		achievements: achievements,
		audit:        recorder,
		logger:       logger,
	}
}

// LogGlass adds one glass to today's intake and re-evaluates achievements
func (s *HydrationService) LogGlass(ctx context.Context, userID string) (*api.HydrationResponse, error) {
	if err := requireID("user_id", userID); err != nil {
		return nil, err
	}

	intake, err := s.users.IncrementWaterIntake(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to log water intake: %w", err)
	}

	recordAudit(ctx, s.audit, audit.Entry{
		UserID:         userID,
		OperationType:  audit.OperationUpdate,
		ResourceType:   audit.ResourceUser,
		ResourceID:     userID,
		AdditionalData: map[string]interface{}{"water_intake": intake},
	})

	awarded := []string{}
	if s.achievements != nil {
		kinds, err := s.achievements.Reevaluate(ctx, userID)
		if err != nil {
			s.logger.Warn("achievement evaluation failed after hydration",
				zap.Error(err),
				zap.String("user_id", userID),
			)
		}
		awarded = append(awarded, kinds...)
	}

	return &api.HydrationResponse{
		WaterIntake:  intake,
		Achievements: awarded,
	}, nil
}
