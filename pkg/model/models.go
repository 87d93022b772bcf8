package model

import "time"

// MaxSlots is the number of daily dose slots a medicine can configure
const MaxSlots = 3

// DateLayout is the calendar date format used for dedup keys and markers
const DateLayout = "2006-01-02"

// ClockLayout is the wall-clock format of a slot's scheduled time
const ClockLayout = "15:04"

// Slot is one configurable daily dose time of a medicine
type Slot struct {
	Time    string     `json:"time"` // HH:mm, empty when the slot is unused
	Taken   bool       `json:"taken"`
	TakenAt *time.Time `json:"taken_at,omitempty"`
}

// Scheduled reports whether the slot participates in scheduling
func (s Slot) Scheduled() bool {
	return s.Time != ""
}

// Medicine represents a medicine record with up to three daily slots
type Medicine struct {
	ID           string         `json:"id"`
	UserID       string         `json:"user_id"`
	Name         string         `json:"name"`
	Dosage       string         `json:"dosage"`
	Slots        [MaxSlots]Slot `json:"slots"`
	DurationDays int            `json:"duration_days"`
	StartDate    time.Time      `json:"start_date"`
	Notes        *string        `json:"notes,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// EndDate returns the first calendar day on which the medicine is no longer taken
func (m *Medicine) EndDate() time.Time {
	return DateOf(m.StartDate).AddDate(0, 0, m.DurationDays)
}

// ActiveOn reports whether day falls within [StartDate, EndDate)
func (m *Medicine) ActiveOn(day time.Time) bool {
	d := DateOf(day)
	return !d.Before(DateOf(m.StartDate)) && d.Before(m.EndDate())
}

// DaysRemaining returns the number of calendar days between day and EndDate
func (m *Medicine) DaysRemaining(day time.Time) int {
	return DaysBetween(DateOf(day), m.EndDate())
}

// DoseOccurrence is one slot's dose for a specific calendar day. It is derived, never stored.
type DoseOccurrence struct {
	MedicineID    string     `json:"medicine_id"`
	Slot          int        `json:"slot"`
	MedicineName  string     `json:"medicine_name"`
	Dosage        string     `json:"dosage"`
	ScheduledTime string     `json:"time"`
	Taken         bool       `json:"taken"`
	TakenAt       *time.Time `json:"taken_at,omitempty"`
	DaysRemaining int        `json:"days_remaining"`
}

// AdherenceSummary is the day's dose totals
type AdherenceSummary struct {
	TotalMedicines      int `json:"total_medicines"`
	TotalDoses          int `json:"total_doses"`
	TakenDoses          int `json:"taken_doses"`
	RemainingDoses      int `json:"remaining_doses"`
	AdherencePercentage int `json:"adherence_percentage"`
}

// Complete reports whether every scheduled dose was taken and at least one was scheduled
func (s AdherenceSummary) Complete() bool {
	return s.TotalDoses > 0 && s.TakenDoses == s.TotalDoses
}

// Level is a gamification tier derived from points
type Level string

const (
	LevelBronze   Level = "Bronze"
	LevelSilver   Level = "Silver"
	LevelGold     Level = "Gold"
	LevelPlatinum Level = "Platinum"
	LevelDiamond  Level = "Diamond"
)

// GameState is the gamification part of a user record
type GameState struct {
	Points                 int        `json:"points"`
	Level                  Level      `json:"level"`
	Streak                 int        `json:"streak"`
	LastClaimDate          *time.Time `json:"last_claim_date,omitempty"`
	PerfectDays            int        `json:"perfect_days"`
	PerfectMedicineDays    int        `json:"perfect_medicine_days"`
	LastPerfectDay         *time.Time `json:"last_perfect_day,omitempty"`
	LastPerfectMedicineDay *time.Time `json:"last_perfect_medicine_day,omitempty"`
}

// User represents a user of the application
type User struct {
	ID                   string    `json:"id"`
	Name                 string    `json:"name"`
	Email                string    `json:"email"`
	WaterIntake          int       `json:"water_intake"`
	NotificationSound    string    `json:"notification_sound"`
	NotificationsEnabled bool      `json:"notifications_enabled"`
	GameState
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserPatch is a partial user update; nil fields are left unchanged
type UserPatch struct {
	Name                   *string    `json:"name,omitempty"`
	Email                  *string    `json:"email,omitempty"`
	WaterIntake            *int       `json:"water_intake,omitempty"`
	NotificationSound      *string    `json:"notification_sound,omitempty"`
	NotificationsEnabled   *bool      `json:"notifications_enabled,omitempty"`
	Points                 *int       `json:"points,omitempty"`
	Level                  *Level     `json:"level,omitempty"`
	Streak                 *int       `json:"streak,omitempty"`
	LastClaimDate          *time.Time `json:"last_claim_date,omitempty"`
	PerfectDays            *int       `json:"perfect_days,omitempty"`
	PerfectMedicineDays    *int       `json:"perfect_medicine_days,omitempty"`
	LastPerfectDay         *time.Time `json:"last_perfect_day,omitempty"`
	LastPerfectMedicineDay *time.Time `json:"last_perfect_medicine_day,omitempty"`
}

// ProfileUpdate holds validated profile columns. A nil WaterIntake leaves hydration unchanged.
type ProfileUpdate struct {
	Name                 string
	Email                string
	NotificationSound    string
	NotificationsEnabled bool
	WaterIntake          *int
}

// Notification is the system notification contract delivered to clients
type Notification struct {
	Title              string `json:"title"`
	Body               string `json:"body"`
	Tag                string `json:"tag"`
	RequireInteraction bool   `json:"requireInteraction"`
}

// DateOf truncates t to local midnight of its calendar day
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// SameDay reports whether a and b fall on the same calendar day
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// DaysBetween returns the number of calendar days from a to b
func DaysBetween(a, b time.Time) int {
	// Use UTC dates so DST transitions do not shorten a day
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	from := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	to := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(to.Sub(from).Hours() / 24)
}
