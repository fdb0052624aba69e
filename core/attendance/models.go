package attendance

import (
	"github.com/checkcheck/backend/core"
	"github.com/checkcheck/backend/core/datetime"
)

// Event is one fingerprint scan. Name and StudentNumber are copied from the roster at check-in time.
type Event struct {
	ID            int64              `json:"id" db:"id"`
	FingerprintID string             `json:"fid" db:"fingerprint_id"`
	Name          string             `json:"name" db:"name"`
	StudentNumber string             `json:"student_number" db:"student_number"`
	Timestamp     datetime.Timestamp `json:"timestamp" db:"checked_at"`
}

func (ev Event) Status() Status {
	return ClassifyEvent(ev.Timestamp)
}

// NewCheckIn is what the fingerprint device posts.
type NewCheckIn struct {
	FingerprintID string `json:"fid" validate:"required,fid"`
	Timestamp     string `json:"timestamp" validate:"required,timestamp"`
}

func (nc *NewCheckIn) Validate() error {
	nc.FingerprintID = core.CleanString(nc.FingerprintID)
	nc.Timestamp = core.CleanString(nc.Timestamp)

	return core.Validate.Struct(nc)
}
