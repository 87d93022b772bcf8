package repository

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a requested row does not exist
var ErrNotFound = errors.New("not found")

// localDate moves a DATE column value, decoded at UTC midnight, to local midnight of the same calendar day
func localDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

func localDatePtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := localDate(*t)
	return &v
}
