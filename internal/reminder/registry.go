package reminder

import (
	"sync"
	"time"

	"github.com/vcscsvcscs/medimind-backend/pkg/model"
)

// Key identifies one dose on one calendar day
type Key struct {
	MedicineID string
	Slot       int
	Date       string // YYYY-MM-DD
}

// KeyFor builds the dedup key of a dose on the calendar day of now
func KeyFor(dose model.DoseOccurrence, now time.Time) Key {
	return Key{
		MedicineID: dose.MedicineID,
		Slot:       dose.Slot,
		Date:       now.Format(model.DateLayout),
	}
}

// Registry records which doses already fired a reminder. It lives for the process only.
type Registry struct {
	mu    sync.Mutex
	fired map[Key]bool
}

// NewRegistry creates an empty Registry
func NewRegistry() *Registry {
	return &Registry{
		fired: make(map[Key]bool),
	}
}

// MarkIfAbsent records key and reports true, or reports false when it was already recorded
func (r *Registry) MarkIfAbsent(key Key) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.fired[key] {
		return false
	}
	r.fired[key] = true
	return true
}

// Has reports whether key was recorded
func (r *Registry) Has(key Key) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.fired[key]
}

// Len returns the number of recorded keys
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.fired)
}

// PruneBefore drops keys of days earlier than day and returns how many were removed
func (r *Registry) PruneBefore(day time.Time) int {
	cutoff := day.Format(model.DateLayout)

	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for key := range r.fired {
		// YYYY-MM-DD compares chronologically as a string
		if key.Date < cutoff {
			delete(r.fired, key)
			removed++
		}
	}
	return removed
}
