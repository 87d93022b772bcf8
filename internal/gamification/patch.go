package gamification

import (
	"context"
	"fmt"
	"time"

	"github.com/vcscsvcscs/medimind-backend/pkg/model"
	"go.uber.org/zap"
)

// HasGameFields reports whether the patch touches any game state field
func HasGameFields(patch model.UserPatch) bool {
	return patch.Points != nil ||
		patch.Level != nil ||
		patch.Streak != nil ||
		patch.LastClaimDate != nil ||
		patch.PerfectDays != nil ||
		patch.PerfectMedicineDays != nil ||
		patch.LastPerfectDay != nil ||
		patch.LastPerfectMedicineDay != nil
}

// MergePatch applies the game fields of patch to state. Achievement counters and markers
// never move backwards and the level is always derived from the points; a patched level
// is ignored. Negative values must be rejected by the caller.
func MergePatch(state model.GameState, patch model.UserPatch) model.GameState {
	if patch.Points != nil {
		state.Points = *patch.Points
	}
	if patch.Streak != nil {
		state.Streak = *patch.Streak
	}
	if patch.LastClaimDate != nil {
		claimed := model.DateOf(*patch.LastClaimDate)
		state.LastClaimDate = &claimed
	}
	if patch.PerfectDays != nil && *patch.PerfectDays > state.PerfectDays {
		state.PerfectDays = *patch.PerfectDays
	}
	if patch.PerfectMedicineDays != nil && *patch.PerfectMedicineDays > state.PerfectMedicineDays {
		state.PerfectMedicineDays = *patch.PerfectMedicineDays
	}
	state.LastPerfectDay = laterDate(state.LastPerfectDay, patch.LastPerfectDay)
	state.LastPerfectMedicineDay = laterDate(state.LastPerfectMedicineDay, patch.LastPerfectMedicineDay)
	state.Level = LevelOf(state.Points)

	return state
}

func laterDate(stored, patched *time.Time) *time.Time {
	if patched == nil {
		return stored
	}
	day := model.DateOf(*patched)
	if stored != nil && !day.After(*stored) {
		return stored
	}
	return &day
}

// ApplyPatch merges the game fields of patch into the stored state of the user and
// persists the result. The read and the write happen under the same lock as claims and
// achievement awards.
func (e *Engine) ApplyPatch(ctx context.Context, userID string, patch model.UserPatch) (model.GameState, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	user, err := e.users.FindByID(ctx, userID)
	if err != nil {
		return model.GameState{}, fmt.Errorf("failed to load user: %w", err)
	}

	state := MergePatch(user.GameState, patch)
	if err := e.users.UpdateGameState(ctx, userID, state); err != nil {
		e.logger.Error("failed to persist game state patch",
			zap.Error(err),
			zap.String("user_id", userID),
		)
		return model.GameState{}, fmt.Errorf("failed to persist game state: %w", err)
	}

	return state, nil
}
