package alert

import (
	"sync"
	"time"

	"github.com/vcscsvcscs/medimind-backend/pkg/model"
)

// DefaultFeedCapacity bounds the alerts queued per user between polls
const DefaultFeedCapacity = 50

// Alert is one reminder delivered to a user's feed
type Alert struct {
	ID            string             `json:"id"`
	MedicineID    string             `json:"medicine_id"`
	Slot          int                `json:"slot"`
	ScheduledTime string             `json:"time"`
	Notification  model.Notification `json:"notification"`
	Tone          string             `json:"tone,omitempty"`
	ToneURL       string             `json:"tone_url,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
}

// Feed queues alerts per user until the client polls them
type Feed struct {
	mu       sync.Mutex
	queues   map[string][]Alert
	capacity int
}

// NewFeed creates a feed holding at most capacity alerts per user
func NewFeed(capacity int) *Feed {
	if capacity <= 0 {
		capacity = DefaultFeedCapacity
	}
	return &Feed{
		queues:   make(map[string][]Alert),
		capacity: capacity,
	}
}

// Publish appends an alert to the user's queue, dropping the oldest when full
func (f *Feed) Publish(userID string, alert Alert) {
	f.mu.Lock()
	defer f.mu.Unlock()

	queue := append(f.queues[userID], alert)
	if len(queue) > f.capacity {
		queue = queue[len(queue)-f.capacity:]
	}
	f.queues[userID] = queue
}

// Drain returns and removes every queued alert for the user, oldest first
func (f *Feed) Drain(userID string) []Alert {
	f.mu.Lock()
	defer f.mu.Unlock()

	queue := f.queues[userID]
	delete(f.queues, userID)

	if queue == nil {
		return []Alert{}
	}
	return queue
}

// Pending returns the number of queued alerts for the user
func (f *Feed) Pending(userID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queues[userID])
}
