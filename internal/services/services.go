package services

import (
	"errors"
	"time"

	"gorm.io/datatypes"
)

// ErrPermissionDenied is returned when the actor is neither an admin nor the
// creator of the record.
var ErrPermissionDenied = errors.New("permission denied")

// today returns the calendar date of now.
func today(now time.Time) datatypes.Date {
	y, m, d := now.Date()
	return datatypes.Date(time.Date(y, m, d, 0, 0, 0, 0, now.Location()))
}
