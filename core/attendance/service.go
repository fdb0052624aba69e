package attendance

import (
	"context"

	"github.com/kat-co/vala"
	"github.com/pkg/errors"

	"github.com/checkcheck/backend/core"
	"github.com/checkcheck/backend/core/datetime"
	"github.com/checkcheck/backend/core/student"
)

const (
	DefaultRecentLimit = 4
	MaxRecentLimit     = 50
)

var (
	// errors
	ErrNotFound         = core.NewNotFoundError("attendance event not found")
	ErrUnknownDevice    = core.NewNotFoundError("fingerprint id is not registered to any student")
	ErrAlreadyCheckedIn = core.NewConflictError("fid", "student has already checked in on this date")
)

type (
	Repository interface {
		CreateEvent(ctx context.Context, ev Event, exec ...core.DBExecutor) (Event, error)
		HasEventOnDate(ctx context.Context, fid string, date datetime.Date, exec ...core.DBExecutor) (bool, error)
		// GetEvent returns the oldest event matching (number, ts) exactly.
		GetEvent(ctx context.Context, number string, ts datetime.Timestamp, exec ...core.DBExecutor) (Event, error)
		// The Query* methods order by timestamp ascending unless stated otherwise.
		QueryEventsForStudent(ctx context.Context, number string, exec ...core.DBExecutor) ([]Event, error)
		QueryEventsOnDate(ctx context.Context, date datetime.Date, exec ...core.DBExecutor) ([]Event, error)
		QueryEventsInMonth(ctx context.Context, month datetime.YearMonth, exec ...core.DBExecutor) ([]Event, error)
		// QueryRecentOnDate orders newest first.
		QueryRecentOnDate(ctx context.Context, date datetime.Date, limit int, exec ...core.DBExecutor) ([]Event, error)
		// UpdateEventTimestamp moves one event matching (number, original) exactly to modified.
		// It returns ErrNotFound when no event matches.
		UpdateEventTimestamp(ctx context.Context, number string, original, modified datetime.Timestamp, exec ...core.DBExecutor) (int64, error)
		// EarliestPerStudentOnDate maps student numbers to their first timestamp on date.
		EarliestPerStudentOnDate(ctx context.Context, date datetime.Date, exec ...core.DBExecutor) (map[string]datetime.Timestamp, error)
	}

	Service struct {
		repo     Repository
		students student.Repository
		logger   core.Logger
	}
)

func NewService(repo Repository, students student.Repository, logger core.Logger) *Service {
	vala.BeginValidation().Validate(
		core.NotNil(repo, "repo"),
		core.NotNil(students, "students"),
		core.NotNil(logger, "logger"),
	).CheckAndPanic()

	return &Service{repo: repo, students: students, logger: logger}
}

func (svc *Service) resolve(ctx context.Context, fid string) (student.Student, error) {
	st, err := svc.students.GetStudentByFingerprint(ctx, fid)
	if err != nil {
		if err == student.ErrNotFound {
			return student.Student{}, ErrUnknownDevice
		}
		return student.Student{}, errors.Wrap(err, "resolving fingerprint id")
	}
	return st, nil
}

// RecordCheckIn appends an event for the student behind fid, even if one already exists that day.
func (svc *Service) RecordCheckIn(ctx context.Context, fid string, ts datetime.Timestamp) (Event, error) {
	st, err := svc.resolve(ctx, core.CleanString(fid))
	if err != nil {
		return Event{}, err
	}
	ev, err := svc.repo.CreateEvent(ctx, Event{
		FingerprintID: st.FingerprintID,
		Name:          st.Name,
		StudentNumber: st.Number,
		Timestamp:     ts,
	})
	if err != nil {
		return Event{}, errors.Wrap(err, "recording check-in")
	}
	return ev, nil
}

// CheckIn is the device flow: verify the fingerprint, refuse a second check-in on the same date, record.
func (svc *Service) CheckIn(ctx context.Context, nc NewCheckIn) (Event, error) {
	if err := nc.Validate(); err != nil {
		return Event{}, err
	}
	ts, _ := datetime.ParseTimestamp(nc.Timestamp)

	if _, err := svc.resolve(ctx, nc.FingerprintID); err != nil {
		return Event{}, err
	}
	exists, err := svc.repo.HasEventOnDate(ctx, nc.FingerprintID, ts.Date())
	if err != nil {
		return Event{}, errors.Wrap(err, "checking existing check-in")
	}
	if exists {
		return Event{}, ErrAlreadyCheckedIn
	}
	return svc.RecordCheckIn(ctx, nc.FingerprintID, ts)
}

func (svc *Service) HasEventOnDate(ctx context.Context, fid string, date datetime.Date) (bool, error) {
	return svc.repo.HasEventOnDate(ctx, core.CleanString(fid), date)
}

func (svc *Service) EventsForStudent(ctx context.Context, number string) ([]Event, error) {
	return svc.repo.QueryEventsForStudent(ctx, core.CleanString(number))
}

func (svc *Service) EventsOnDate(ctx context.Context, date datetime.Date) ([]Event, error) {
	return svc.repo.QueryEventsOnDate(ctx, date)
}

func (svc *Service) EventsInMonth(ctx context.Context, month datetime.YearMonth) ([]Event, error) {
	return svc.repo.QueryEventsInMonth(ctx, month)
}

// Recent returns the latest check-ins of date, newest first.
// limit falls back to DefaultRecentLimit and is capped at MaxRecentLimit.
func (svc *Service) Recent(ctx context.Context, date datetime.Date, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	if limit > MaxRecentLimit {
		limit = MaxRecentLimit
	}
	return svc.repo.QueryRecentOnDate(ctx, date, limit)
}
