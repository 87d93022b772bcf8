package service

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"github.com/vcscsvcscs/medimind-backend/internal/alert"
	"github.com/vcscsvcscs/medimind-backend/internal/audit"
	"github.com/vcscsvcscs/medimind-backend/internal/gamification"
	"github.com/vcscsvcscs/medimind-backend/pkg/api"
	"github.com/vcscsvcscs/medimind-backend/pkg/model"
	"go.uber.org/zap"
)

// UserService handles user profiles and the daily reward
type UserService struct {
	users        UserStore
	engine       *gamification.Engine
	achievements AchievementEvaluator
	trail        AuditTrail
	audit        audit.Recorder
	logger       *zap.Logger
}

// NewUserService creates a new UserService. trail may be nil when audit history is not kept.
func NewUserService(users UserStore, engine *gamification.Engine, achievements AchievementEvaluator, trail AuditTrail, recorder audit.Recorder, logger *zap.Logger) *UserService {
	return &UserService{
		users:        users,
		engine:       engine,
		achievements: achievements,
		trail:        trail,
		audit:        recorder,
		logger:       logger,
	}
}

// CreateUser registers a new user with a fresh game state
func (s *UserService) CreateUser(ctx context.Context, req api.CreateUserRequest) (*model.User, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, invalid("name", "is required")
	}

	email, err := validateEmail(req.Email)
	if err != nil {
		return nil, err
	}

	sound, err := validateSound(req.NotificationSound)
	if err != nil {
		return nil, err
	}

	enabled := true
	if req.NotificationsEnabled != nil {
		enabled = *req.NotificationsEnabled
	}

	user := &model.User{
		ID:                   uuid.New().String(),
		Name:                 name,
		Email:                email,
		NotificationSound:    sound,
		NotificationsEnabled: enabled,
		GameState: model.GameState{
			Level: gamification.LevelOf(0),
		},
	}

	if err := s.users.Create(ctx, user); err != nil {
		s.logger.Error("failed to create user",
			zap.Error(err),
			zap.String("email", email),
		)
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	recordAudit(ctx, s.audit, audit.Entry{
		UserID:        user.ID,
		OperationType: audit.OperationCreate,
		ResourceType:  audit.ResourceUser,
		ResourceID:    user.ID,
	})

	s.logger.Info("user created", zap.String("user_id", user.ID))

	return user, nil
}

// GetUser returns the user profile and game state
func (s *UserService) GetUser(ctx context.Context, userID string) (*model.User, error) {
	if err := requireID("user_id", userID); err != nil {
		return nil, err
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	return user, nil
}

// UpdateUser merges a partial update into the stored user and returns the result with
// any achievements the change earned. Profile fields are written directly. Game state
// fields go through the engine so they never overwrite a concurrent claim or award.
func (s *UserService) UpdateUser(ctx context.Context, req api.UpdateUserRequest) (*model.User, []string, error) {
	if err := requireID("id", req.ID); err != nil {
		return nil, nil, err
	}

	if err := validateGamePatch(req.UserPatch); err != nil {
		return nil, nil, err
	}

	user, err := s.users.FindByID(ctx, req.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load user: %w", err)
	}

	profile, err := mergeProfile(user, req.UserPatch)
	if err != nil {
		return nil, nil, err
	}

	if err := s.users.UpdateProfile(ctx, req.ID, profile); err != nil {
		s.logger.Error("failed to update user",
			zap.Error(err),
			zap.String("user_id", req.ID),
		)
		return nil, nil, fmt.Errorf("failed to update user: %w", err)
	}

	if gamification.HasGameFields(req.UserPatch) {
		if _, err := s.engine.ApplyPatch(ctx, req.ID, req.UserPatch); err != nil {
			return nil, nil, fmt.Errorf("failed to update game state: %w", err)
		}
	}

	recordAudit(ctx, s.audit, audit.Entry{
		UserID:        req.ID,
		OperationType: audit.OperationUpdate,
		ResourceType:  audit.ResourceUser,
		ResourceID:    req.ID,
	})

	var awarded []string
	if profile.WaterIntake != nil && *profile.WaterIntake > user.WaterIntake && s.achievements != nil {
		awarded, err = s.achievements.Reevaluate(ctx, req.ID)
		if err != nil {
			s.logger.Warn("achievement evaluation failed after user update",
				zap.Error(err),
				zap.String("user_id", req.ID),
			)
		}
	}

	updated, err := s.users.FindByID(ctx, req.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load user: %w", err)
	}

	return updated, awarded, nil
}

// mergeProfile validates the profile fields of patch and merges them over the stored profile
func mergeProfile(user *model.User, patch model.UserPatch) (model.ProfileUpdate, error) {
	profile := model.ProfileUpdate{
		Name:                 user.Name,
		Email:                user.Email,
		NotificationSound:    user.NotificationSound,
		NotificationsEnabled: user.NotificationsEnabled,
	}

	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return profile, invalid("name", "must not be empty")
		}
		profile.Name = name
	}
	if patch.Email != nil {
		email, err := validateEmail(*patch.Email)
		if err != nil {
			return profile, err
		}
		profile.Email = email
	}
	if patch.WaterIntake != nil {
		if *patch.WaterIntake < 0 {
			return profile, invalid("water_intake", "must not be negative")
		}
		water := *patch.WaterIntake
		profile.WaterIntake = &water
	}
	if patch.NotificationSound != nil {
		sound, err := validateSound(*patch.NotificationSound)
		if err != nil {
			return profile, err
		}
		profile.NotificationSound = sound
	}
	if patch.NotificationsEnabled != nil {
		profile.NotificationsEnabled = *patch.NotificationsEnabled
	}

	return profile, nil
}

func validateGamePatch(patch model.UserPatch) error {
	if patch.Points != nil && *patch.Points < 0 {
		return invalid("points", "must not be negative")
	}
	if patch.Streak != nil && *patch.Streak < 0 {
		return invalid("streak", "must not be negative")
	}
	if patch.PerfectDays != nil && *patch.PerfectDays < 0 {
		return invalid("perfect_days", "must not be negative")
	}
	if patch.PerfectMedicineDays != nil && *patch.PerfectMedicineDays < 0 {
		return invalid("perfect_medicine_days", "must not be negative")
	}
	return nil
}

// NotificationSound returns the user's preferred reminder tone
func (s *UserService) NotificationSound(ctx context.Context, userID string) (string, error) {
	return s.users.NotificationSound(ctx, userID)
}

// ClaimToday claims the daily reward
func (s *UserService) ClaimToday(ctx context.Context, userID string) (*api.ClaimResponse, error) {
	if err := requireID("user_id", userID); err != nil {
		return nil, err
	}

	result, err := s.engine.ClaimToday(ctx, userID)
	if err != nil {
		return nil, err
	}

	recordAudit(ctx, s.audit, audit.Entry{
		UserID:         userID,
		OperationType:  audit.OperationClaim,
		ResourceType:   audit.ResourceReward,
		ResourceID:     userID,
		AdditionalData: map[string]interface{}{"streak": result.State.Streak, "bonus": result.Bonus},
	})

	return &api.ClaimResponse{
		Points:        result.State.Points,
		Level:         result.State.Level,
		Streak:        result.State.Streak,
		Bonus:         result.Bonus,
		CanClaimToday: result.CanClaimToday,
	}, nil
}

// ClaimStatus reports whether today's reward can still be claimed
func (s *UserService) ClaimStatus(ctx context.Context, userID string) (*gamification.ClaimStatus, error) {
	if err := requireID("user_id", userID); err != nil {
		return nil, err
	}
	return s.engine.ClaimStatus(ctx, userID)
}

// AuditTrail returns the user's most recent audit entries
func (s *UserService) AuditTrail(ctx context.Context, userID string, limit int) ([]audit.Entry, error) {
	if err := requireID("user_id", userID); err != nil {
		return nil, err
	}
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if s.trail == nil {
		return []audit.Entry{}, nil
	}

	entries, err := s.trail.List(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit trail: %w", err)
	}
	return entries, nil
}

func validateEmail(raw string) (string, error) {
	email := strings.TrimSpace(raw)
	if email == "" {
		return "", invalid("email", "is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return "", invalid("email", "is not a valid address")
	}
	return email, nil
}

// validateSound accepts a palette tone, "none", or empty for the default tone
func validateSound(raw string) (string, error) {
	sound := strings.ToLower(strings.TrimSpace(raw))
	if sound == "" {
		return alert.ToneDefault, nil
	}
	if sound == alert.ToneNone {
		return sound, nil
	}
	if _, ok := alert.Lookup(sound); !ok {
		return "", invalid("notification_sound", fmt.Sprintf("unknown tone %q", sound))
	}
	return sound, nil
}
