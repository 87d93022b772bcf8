package gamification

import (
	"sync"
	"time"

	"github.com/vcscsvcscs/medimind-backend/pkg/model"
)

type markerKey struct {
	userID string
	kind   Kind
}

// MarkerStore records which achievements were awarded on which day. A reservation
// is taken before the award is written and released if the write fails.
type MarkerStore struct {
	mu    sync.Mutex
	marks map[markerKey]string
}

// NewMarkerStore creates an empty MarkerStore
func NewMarkerStore() *MarkerStore {
	return &MarkerStore{marks: make(map[markerKey]string)}
}

// Reserve marks kind as awarded to the user on day. It returns false if it already was.
func (s *MarkerStore) Reserve(userID string, kind Kind, day time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := markerKey{userID, kind}
	date := day.Format(model.DateLayout)
	if s.marks[key] == date {
		return false
	}
	s.marks[key] = date
	return true
}

// Release undoes a reservation for day. A newer reservation is left in place.
func (s *MarkerStore) Release(userID string, kind Kind, day time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := markerKey{userID, kind}
	if s.marks[key] == day.Format(model.DateLayout) {
		delete(s.marks, key)
	}
}

// Marked reports whether kind is marked for the user on day
func (s *MarkerStore) Marked(userID string, kind Kind, day time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.marks[markerKey{userID, kind}] == day.Format(model.DateLayout)
}
