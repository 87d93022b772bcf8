package gamification

import (
	"time"

	"github.com/vcscsvcscs/medimind-backend/pkg/model"
)

// PerfectDayGlasses is the hydration goal of a perfect day
const PerfectDayGlasses = 8

// Kind identifies a once-per-day achievement
type Kind string

const (
	KindPerfectDay         Kind = "perfect_day"
	KindPerfectMedicineDay Kind = "perfect_medicine_day"
)

// Snapshot is the read-only state achievements are evaluated against
type Snapshot struct {
	HydrationGlasses int
	Summary          model.AdherenceSummary
}

// IsPerfectDay reports whether the hydration goal was met and every scheduled dose taken
func IsPerfectDay(s Snapshot) bool {
	return s.HydrationGlasses >= PerfectDayGlasses && s.Summary.Complete()
}

// IsPerfectMedicineDay reports whether every scheduled dose was taken
func IsPerfectMedicineDay(s Snapshot) bool {
	return s.Summary.Complete()
}

// qualifies dispatches the predicate of kind
func qualifies(kind Kind, s Snapshot) bool {
	switch kind {
	case KindPerfectDay:
		return IsPerfectDay(s)
	case KindPerfectMedicineDay:
		return IsPerfectMedicineDay(s)
	default:
		return false
	}
}

// lastAwarded returns the persisted marker of kind
func lastAwarded(state model.GameState, kind Kind) *time.Time {
	if kind == KindPerfectDay {
		return state.LastPerfectDay
	}
	return state.LastPerfectMedicineDay
}

// award returns state with kind awarded on day
func award(state model.GameState, kind Kind, day time.Time) model.GameState {
	marked := model.DateOf(day)
	if kind == KindPerfectDay {
		state.PerfectDays++
		state.LastPerfectDay = &marked
	} else {
		state.PerfectMedicineDays++
		state.LastPerfectMedicineDay = &marked
	}
	return state
}
