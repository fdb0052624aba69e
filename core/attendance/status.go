package attendance

import (
	"github.com/checkcheck/backend/core/datetime"
)

// Status is the verdict derived from a student's first check-in of the day.
type Status string

const (
	OnTime Status = "on_time"
	Late   Status = "late"
	Absent Status = "absent"
)

var (
	// OnTimeLimit is the first instant counted as late.
	OnTimeLimit = datetime.MustClock(7, 30, 0)
	// LateLimit is the first instant counted as absent.
	LateLimit = datetime.MustClock(8, 30, 0)

	statusLabels = map[Status]string{
		OnTime: "출석",
		Late:   "지각",
		Absent: "결석",
	}
)

// Label is the name printed on reports.
func (s Status) Label() string {
	return statusLabels[s]
}

// Classify maps a time of day onto a Status:
// before 07:30:00 is on time, before 08:30:00 is late, anything later is absent.
func Classify(c datetime.Clock) Status {
	switch {
	case c.Before(OnTimeLimit):
		return OnTime
	case c.Before(LateLimit):
		return Late
	default:
		return Absent
	}
}

// ClassifyEvent classifies a check-in timestamp; the zero Timestamp (no check-in) is absent.
func ClassifyEvent(ts datetime.Timestamp) Status {
	if ts.IsZero() {
		return Absent
	}
	return Classify(ts.Clock())
}
