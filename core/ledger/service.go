package ledger

import (
	"context"

	"github.com/kat-co/vala"
	"github.com/pkg/errors"

	"github.com/checkcheck/backend/core"
	"github.com/checkcheck/backend/core/attendance"
	"github.com/checkcheck/backend/core/datetime"
	"github.com/checkcheck/backend/core/student"
)

var (
	// errors
	ErrReasonRequired = core.NewValidationError(nil, core.FieldError{Field: "reason", Error: "a reason is required"})
)

type (
	Repository interface {
		AppendEntry(ctx context.Context, e Entry, exec ...core.DBExecutor) (Entry, error)
		// QueryEntries returns entries transacted in [from, to), newest first.
		QueryEntries(ctx context.Context, from, to datetime.Timestamp, exec ...core.DBExecutor) ([]Entry, error)
		// QueryMonths returns the distinct months holding at least one entry, newest first.
		QueryMonths(ctx context.Context, exec ...core.DBExecutor) ([]datetime.YearMonth, error)
	}

	Service struct {
		db       core.DB
		repo     Repository
		events   attendance.Repository
		students student.Repository
		logger   core.Logger
	}
)

func NewService(db core.DB, repo Repository, events attendance.Repository, students student.Repository, logger core.Logger) *Service {
	vala.BeginValidation().Validate(
		core.NotNil(db, "db"),
		core.NotNil(repo, "repo"),
		core.NotNil(events, "events"),
		core.NotNil(students, "students"),
		core.NotNil(logger, "logger"),
	).CheckAndPanic()

	return &Service{db: db, repo: repo, events: events, students: students, logger: logger}
}

func actorOrDefault(actor string) string {
	if actor = core.CleanString(actor); actor == "" {
		return DefaultActor
	}
	return actor
}

// RecordAddition logs ev as a manual addition. Callers invoke it only after ev was stored.
func (svc *Service) RecordAddition(ctx context.Context, ev attendance.Event, reason, actor string, exec ...core.DBExecutor) (Entry, error) {
	if reason = core.CleanString(reason); reason == "" {
		return Entry{}, ErrReasonRequired
	}
	return svc.repo.AppendEntry(ctx, Entry{
		FingerprintID:     ev.FingerprintID,
		Name:              ev.Name,
		StudentNumber:     ev.StudentNumber,
		TransactedAt:      datetime.Now(),
		ModifiedTimestamp: ev.Timestamp,
		Operation:         Addition,
		Reason:            reason,
		Actor:             actorOrDefault(actor),
	}, exec...)
}

// RecordModification logs that the event of number at original now sits at modified.
// Callers invoke it only after the event was moved.
func (svc *Service) RecordModification(
	ctx context.Context,
	original, modified datetime.Timestamp,
	number, reason, actor string,
	exec ...core.DBExecutor,
) (Entry, error) {
	if reason = core.CleanString(reason); reason == "" {
		return Entry{}, ErrReasonRequired
	}
	st, err := svc.students.GetStudentByNumber(ctx, number, exec...)
	if err != nil {
		return Entry{}, errors.Wrap(err, "resolving student")
	}
	return svc.repo.AppendEntry(ctx, Entry{
		FingerprintID:     st.FingerprintID,
		Name:              st.Name,
		StudentNumber:     st.Number,
		TransactedAt:      datetime.Now(),
		OriginalTimestamp: original,
		ModifiedTimestamp: modified,
		Operation:         Modification,
		Reason:            reason,
		Actor:             actorOrDefault(actor),
	}, exec...)
}

// ApplyAddition stores the entered check-in and its log entry in one transaction.
func (svc *Service) ApplyAddition(ctx context.Context, na NewAddition) (Entry, error) {
	if err := na.Validate(); err != nil {
		return Entry{}, err
	}
	st, err := svc.students.GetStudentByNumber(ctx, na.StudentNumber)
	if err != nil {
		return Entry{}, err
	}

	var entry Entry
	err = core.RunInTx(ctx, svc.db, func(tx core.DBExecutor) error {
		ev, err := svc.events.CreateEvent(ctx, attendance.Event{
			FingerprintID: st.FingerprintID,
			Name:          st.Name,
			StudentNumber: st.Number,
			Timestamp:     na.Timestamp(),
		}, tx)
		if err != nil {
			return err
		}
		if entry, err = svc.RecordAddition(ctx, ev, na.Reason, na.Actor, tx); err != nil {
			return &core.LedgerWriteError{Err: err, RolledBack: true}
		}
		return nil
	})
	if err = svc.settle(err, "addition", st.Number, na.Actor); err != nil {
		return Entry{}, err
	}
	return entry, nil
}

// ApplyModification moves an existing check-in and logs it in one transaction.
// When the original event is gone (e.g. a concurrent correction moved it first) it fails with attendance.ErrNotFound.
func (svc *Service) ApplyModification(ctx context.Context, nm NewModification) (Entry, error) {
	if err := nm.Validate(); err != nil {
		return Entry{}, err
	}
	original, modified := nm.Original(), nm.Timestamp()

	var entry Entry
	err := core.RunInTx(ctx, svc.db, func(tx core.DBExecutor) error {
		if _, err := svc.events.UpdateEventTimestamp(ctx, nm.StudentNumber, original, modified, tx); err != nil {
			return err
		}
		var err error
		if entry, err = svc.RecordModification(ctx, original, modified, nm.StudentNumber, nm.Reason, nm.Actor, tx); err != nil {
			return &core.LedgerWriteError{Err: err, RolledBack: true}
		}
		return nil
	})
	if err = svc.settle(err, "modification", nm.StudentNumber, nm.Actor); err != nil {
		return Entry{}, err
	}
	return entry, nil
}

// settle reports ledger write failures, downgrading RolledBack when the rollback did not go through.
func (svc *Service) settle(err error, op, number, actor string) error {
	if err == nil {
		return nil
	}
	var rbErr *core.RollbackError
	if errors.As(err, &rbErr) {
		if lwErr, ok := rbErr.Err.(*core.LedgerWriteError); ok {
			err = &core.LedgerWriteError{Err: lwErr.Err, RolledBack: false}
		}
	}
	if _, ok := err.(*core.LedgerWriteError); ok {
		svc.logger.Error("correction log write failed", err, core.Actor(actorOrDefault(actor)), map[string]interface{}{
			"operation":      op,
			"student_number": number,
		})
	}
	return err
}

// QueryByMonth returns the entries transacted during month, newest first.
func (svc *Service) QueryByMonth(ctx context.Context, month datetime.YearMonth) ([]Entry, error) {
	return svc.repo.QueryEntries(ctx, month.FirstDay().Start(), month.Next().FirstDay().Start())
}

// AvailableMonths lists the months holding corrections, newest first.
func (svc *Service) AvailableMonths(ctx context.Context) ([]datetime.YearMonth, error) {
	return svc.repo.QueryMonths(ctx)
}
