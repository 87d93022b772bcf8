package gamification

import (
	"errors"
	"time"

	"github.com/vcscsvcscs/medimind-backend/pkg/model"
)

// ErrAlreadyClaimed is returned when the daily reward was already claimed today
var ErrAlreadyClaimed = errors.New("daily reward already claimed today")

// ClaimResult is the outcome of a successful claim
type ClaimResult struct {
	State         model.GameState `json:"state"`
	Bonus         int             `json:"bonus"`
	CanClaimToday bool            `json:"can_claim_today"`
}

// CanClaim reports whether the daily reward is still available on today
func CanClaim(state model.GameState, today time.Time) bool {
	return state.LastClaimDate == nil || !model.SameDay(*state.LastClaimDate, today)
}

// Claim computes the game state after claiming today's reward. A gap of more than
// one day since the last claim restarts the streak.
func Claim(state model.GameState, today time.Time) (ClaimResult, error) {
	if !CanClaim(state, today) {
		return ClaimResult{}, ErrAlreadyClaimed
	}

	streak := state.Streak
	if state.LastClaimDate == nil || model.DaysBetween(*state.LastClaimDate, today) > 1 {
		streak = 0
	}
	streak++

	bonus := BonusFor(streak)
	claimedOn := model.DateOf(today)

	next := state
	next.Streak = streak
	next.Points = state.Points + bonus
	next.Level = LevelOf(next.Points)
	next.LastClaimDate = &claimedOn

	return ClaimResult{State: next, Bonus: bonus, CanClaimToday: false}, nil
}
