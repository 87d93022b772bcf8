package gamification

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/vcscsvcscs/medimind-backend/internal/metrics"
	"github.com/vcscsvcscs/medimind-backend/pkg/model"
	"go.uber.org/zap"
)

// UserStore reads users and persists their game state
type UserStore interface {
	FindByID(ctx context.Context, userID string) (*model.User, error)
	UpdateGameState(ctx context.Context, userID string, state model.GameState) error
}

// ClaimStatus tells a client whether today's reward is still available
type ClaimStatus struct {
	CanClaimToday bool `json:"can_claim_today"`
	Streak        int  `json:"streak"`
}

// Engine applies claims and achievements to stored users. Game state writes are serialized.
type Engine struct {
	users   UserStore
	markers *MarkerStore
	metrics *metrics.Metrics
	logger  *zap.Logger
	now     func() time.Time

	mu sync.Mutex
}

// NewEngine creates a new Engine
func NewEngine(users UserStore, markers *MarkerStore, m *metrics.Metrics, logger *zap.Logger) *Engine {
	if markers == nil {
		markers = NewMarkerStore()
	}
	return &Engine{
		users:   users,
		markers: markers,
		metrics: m,
		logger:  logger,
		now:     time.Now,
	}
}

// WithClock replaces the wall clock, for tests
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// Now returns the engine's current time
func (e *Engine) Now() time.Time {
	return e.now()
}

// ClaimToday claims the daily reward for the user
func (e *Engine) ClaimToday(ctx context.Context, userID string) (*ClaimResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	user, err := e.users.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	result, err := Claim(user.GameState, e.now())
	if err != nil {
		if errors.Is(err, ErrAlreadyClaimed) {
			e.metrics.Claim("already_claimed")
		}
		return nil, err
	}

	if err := e.users.UpdateGameState(ctx, userID, result.State); err != nil {
		e.metrics.Claim("failed")
		e.logger.Error("failed to persist claim",
			zap.Error(err),
			zap.String("user_id", userID),
		)
		return nil, fmt.Errorf("failed to persist claim: %w", err)
	}

	e.metrics.Claim("claimed")
	e.logger.Info("daily reward claimed",
		zap.String("user_id", userID),
		zap.Int("streak", result.State.Streak),
		zap.Int("bonus", result.Bonus),
		zap.String("level", string(result.State.Level)),
	)

	return &result, nil
}

// ClaimStatus reports whether the user can still claim today
func (e *Engine) ClaimStatus(ctx context.Context, userID string) (*ClaimStatus, error) {
	user, err := e.users.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	return &ClaimStatus{
		CanClaimToday: CanClaim(user.GameState, e.now()),
		Streak:        user.Streak,
	}, nil
}

// Evaluate awards every achievement the snapshot qualifies for and returns the kinds awarded
func (e *Engine) Evaluate(ctx context.Context, userID string, snapshot Snapshot) ([]Kind, error) {
	var awarded []Kind
	var errs []error

	for _, kind := range []Kind{KindPerfectMedicineDay, KindPerfectDay} {
		ok, err := e.evaluate(ctx, userID, kind, snapshot)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if ok {
			awarded = append(awarded, kind)
		}
	}

	return awarded, errors.Join(errs...)
}

// EvaluatePerfectDay awards the perfect day achievement at most once per day
func (e *Engine) EvaluatePerfectDay(ctx context.Context, userID string, snapshot Snapshot) (bool, error) {
	return e.evaluate(ctx, userID, KindPerfectDay, snapshot)
}

// EvaluatePerfectMedicineDay awards the perfect medicine day achievement at most once per day
func (e *Engine) EvaluatePerfectMedicineDay(ctx context.Context, userID string, snapshot Snapshot) (bool, error) {
	return e.evaluate(ctx, userID, KindPerfectMedicineDay, snapshot)
}

func (e *Engine) evaluate(ctx context.Context, userID string, kind Kind, snapshot Snapshot) (bool, error) {
	if !qualifies(kind, snapshot) {
		return false, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	today := e.now()
	if !e.markers.Reserve(userID, kind, today) {
		return false, nil
	}

	user, err := e.users.FindByID(ctx, userID)
	if err != nil {
		e.markers.Release(userID, kind, today)
		return false, fmt.Errorf("failed to load user: %w", err)
	}

	// Awarded earlier today by a previous process
	if last := lastAwarded(user.GameState, kind); last != nil && model.SameDay(*last, today) {
		return false, nil
	}

	if err := e.users.UpdateGameState(ctx, userID, award(user.GameState, kind, today)); err != nil {
		e.markers.Release(userID, kind, today)
		e.metrics.AchievementRolledBack(string(kind))
		e.logger.Error("failed to persist achievement",
			zap.Error(err),
			zap.String("user_id", userID),
			zap.String("kind", string(kind)),
		)
		return false, fmt.Errorf("failed to persist %s: %w", kind, err)
	}

	e.metrics.AchievementAwarded(string(kind))
	e.logger.Info("achievement awarded",
		zap.String("user_id", userID),
		zap.String("kind", string(kind)),
	)

	return true, nil
}
