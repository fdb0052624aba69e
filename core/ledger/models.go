package ledger

import (
	"encoding/json"

	"github.com/checkcheck/backend/core"
	"github.com/checkcheck/backend/core/attendance"
	"github.com/checkcheck/backend/core/datetime"
)

type Operation string

const (
	Addition     Operation = "addition"
	Modification Operation = "modification"

	// NoneSentinel is rendered in place of the original timestamp of an addition.
	NoneSentinel = "none"
	// DefaultActor is recorded when a correction names nobody.
	DefaultActor = "system-admin"
)

// Entry is one line of the correction log. Entries are never updated or deleted.
type Entry struct {
	ID                int64
	FingerprintID     string
	Name              string
	StudentNumber     string
	TransactedAt      datetime.Timestamp
	OriginalTimestamp datetime.Timestamp // zero for additions
	ModifiedTimestamp datetime.Timestamp
	Operation         Operation
	Reason            string
	Actor             string
}

// Original renders OriginalTimestamp, or NoneSentinel when there is none.
func (e Entry) Original() string {
	if e.OriginalTimestamp.IsZero() {
		return NoneSentinel
	}
	return e.OriginalTimestamp.String()
}

func (e Entry) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID                int64              `json:"id"`
		FingerprintID     string             `json:"fid"`
		Name              string             `json:"name"`
		StudentNumber     string             `json:"student_number"`
		TransactedAt      datetime.Timestamp `json:"transacted_at"`
		OriginalTimestamp string             `json:"original_timestamp"`
		ModifiedTimestamp datetime.Timestamp `json:"modified_timestamp"`
		Operation         Operation          `json:"operation"`
		Reason            string             `json:"reason"`
		Actor             string             `json:"actor"`
	}{
		ID:                e.ID,
		FingerprintID:     e.FingerprintID,
		Name:              e.Name,
		StudentNumber:     e.StudentNumber,
		TransactedAt:      e.TransactedAt,
		OriginalTimestamp: e.Original(),
		ModifiedTimestamp: e.ModifiedTimestamp,
		Operation:         e.Operation,
		Reason:            e.Reason,
		Actor:             e.Actor,
	})
}

// NewAddition is a manually entered check-in the device missed.
type NewAddition struct {
	StudentNumber string `json:"student_number" validate:"required,stdnum"`
	Date          string `json:"date" validate:"required,isodate"`
	Hour          *int   `json:"hour" validate:"required,min=0,max=23"`
	Minute        *int   `json:"minute" validate:"required,min=0,max=59"`
	Reason        string `json:"reason" validate:"required,notblank"`
	Actor         string `json:"actor"`
}

func (na *NewAddition) Validate() error {
	na.StudentNumber = core.CleanString(na.StudentNumber)
	na.Date = core.CleanString(na.Date)
	na.Reason = core.CleanString(na.Reason)
	na.Actor = core.CleanString(na.Actor)

	return core.Validate.Struct(na)
}

// Timestamp assembles the entered date and time. Only meaningful once Validate passed.
func (na NewAddition) Timestamp() datetime.Timestamp {
	return assemble(na.Date, na.Hour, na.Minute)
}

// Status previews how the entered time will be classified.
func (na NewAddition) Status() attendance.Status {
	return attendance.ClassifyEvent(na.Timestamp())
}

// NewModification moves an existing check-in of StudentNumber from OriginalTimestamp to a new date and time.
type NewModification struct {
	StudentNumber     string `json:"student_number" validate:"required,stdnum"`
	OriginalTimestamp string `json:"original_timestamp" validate:"required,timestamp"`
	Date              string `json:"date" validate:"required,isodate"`
	Hour              *int   `json:"hour" validate:"required,min=0,max=23"`
	Minute            *int   `json:"minute" validate:"required,min=0,max=59"`
	Reason            string `json:"reason" validate:"required,notblank"`
	Actor             string `json:"actor"`
}

func (nm *NewModification) Validate() error {
	nm.StudentNumber = core.CleanString(nm.StudentNumber)
	nm.OriginalTimestamp = core.CleanString(nm.OriginalTimestamp)
	nm.Date = core.CleanString(nm.Date)
	nm.Reason = core.CleanString(nm.Reason)
	nm.Actor = core.CleanString(nm.Actor)

	if err := core.Validate.Struct(nm); err != nil {
		return err
	}
	if nm.Original().Equal(nm.Timestamp()) {
		return core.NewValidationError(nil, core.FieldError{
			Field: "date",
			Error: "the new date and time must differ from the original timestamp",
		})
	}
	return nil
}

func (nm NewModification) Original() datetime.Timestamp {
	ts, _ := datetime.ParseTimestamp(nm.OriginalTimestamp)
	return ts
}

func (nm NewModification) Timestamp() datetime.Timestamp {
	return assemble(nm.Date, nm.Hour, nm.Minute)
}

func (nm NewModification) Status() attendance.Status {
	return attendance.ClassifyEvent(nm.Timestamp())
}

func assemble(date string, hour, minute *int) datetime.Timestamp {
	d, err := datetime.ParseDate(date)
	if err != nil || hour == nil || minute == nil {
		return datetime.Timestamp{}
	}
	c, err := datetime.NewClock(*hour, *minute, 0)
	if err != nil {
		return datetime.Timestamp{}
	}
	return d.At(c)
}
