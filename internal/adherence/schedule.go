// Package adherence derives the day's dose schedule and adherence totals from medicine records.
// Everything in this package is a pure function of its inputs.
package adherence

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/vcscsvcscs/medimind-backend/pkg/model"
)

// BuildSchedule expands each medicine active on day into one DoseOccurrence per scheduled slot,
// ordered by scheduled time, then medicine id, then slot.
func BuildSchedule(medicines []model.Medicine, day time.Time) []model.DoseOccurrence {
	occurrences := make([]model.DoseOccurrence, 0, len(medicines)*model.MaxSlots)

	for i := range medicines {
		med := &medicines[i]
		if !med.ActiveOn(day) {
			continue
		}

		daysRemaining := med.DaysRemaining(day)
		for idx, slot := range med.Slots {
			if !slot.Scheduled() {
				continue
			}
			occurrences = append(occurrences, model.DoseOccurrence{
				MedicineID:    med.ID,
				Slot:          idx + 1,
				MedicineName:  med.Name,
				Dosage:        med.Dosage,
				ScheduledTime: slot.Time,
				Taken:         slot.Taken,
				TakenAt:       slot.TakenAt,
				DaysRemaining: daysRemaining,
			})
		}
	}

	sort.SliceStable(occurrences, func(i, j int) bool {
		a, b := occurrences[i], occurrences[j]
		if a.ScheduledTime != b.ScheduledTime {
			return a.ScheduledTime < b.ScheduledTime
		}
		if a.MedicineID != b.MedicineID {
			return a.MedicineID < b.MedicineID
		}
		return a.Slot < b.Slot
	})

	return occurrences
}

// PendingDoses returns the occurrences not yet marked taken, preserving order
func PendingDoses(occurrences []model.DoseOccurrence) []model.DoseOccurrence {
	pending := make([]model.DoseOccurrence, 0, len(occurrences))
	for _, occ := range occurrences {
		if !occ.Taken {
			pending = append(pending, occ)
		}
	}
	return pending
}

// ParseClock converts an "HH:mm" wall-clock time into minutes since midnight
func ParseClock(value string) (int, error) {
	hours, minutes, ok := strings.Cut(strings.TrimSpace(value), ":")
	if !ok || len(hours) == 0 || len(hours) > 2 || len(minutes) != 2 {
		return 0, fmt.Errorf("invalid time %q: expected HH:mm", value)
	}

	h, err := strconv.Atoi(hours)
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("invalid hour in %q", value)
	}
	m, err := strconv.Atoi(minutes)
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid minute in %q", value)
	}

	return h*60 + m, nil
}

// NormalizeClock validates an "HH:mm" value and returns it zero-padded.
// An empty value stays empty so unused slots round-trip unchanged.
func NormalizeClock(value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", nil
	}
	minutes, err := ParseClock(value)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60), nil
}

// MinuteOfDay returns the minutes elapsed since local midnight of t
func MinuteOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}
