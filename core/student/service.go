package student

import (
	"context"

	"github.com/kat-co/vala"
	"github.com/pkg/errors"

	"github.com/checkcheck/backend/core"
)

var (
	// errors
	ErrNotFound          = core.NewNotFoundError("student not found")
	ErrFingerprintExists = core.NewConflictError("fid", "a student with this fingerprint id already exists")
	ErrNumberExists      = core.NewConflictError("student_number", "a student with this student number already exists")
)

type (
	Repository interface {
		// CreateStudent returns ErrFingerprintExists or ErrNumberExists on unique violations.
		CreateStudent(ctx context.Context, st Student, exec ...core.DBExecutor) (Student, error)
		GetStudentByFingerprint(ctx context.Context, fid string, exec ...core.DBExecutor) (Student, error)
		GetStudentByNumber(ctx context.Context, number string, exec ...core.DBExecutor) (Student, error)
		QueryStudents(ctx context.Context, exec ...core.DBExecutor) ([]Student, error)
		CountStudents(ctx context.Context, exec ...core.DBExecutor) (int, error)
	}

	Service struct {
		repo   Repository
		logger core.Logger
	}
)

func NewService(repo Repository, logger core.Logger) *Service {
	vala.BeginValidation().Validate(
		core.NotNil(repo, "repo"),
		core.NotNil(logger, "logger"),
	).CheckAndPanic()

	return &Service{repo: repo, logger: logger}
}

// Create registers a new student; the fingerprint id and student number must both be free.
func (svc *Service) Create(ctx context.Context, ns NewStudent) (Student, error) {
	if err := ns.Validate(); err != nil {
		return Student{}, err
	}

	if _, err := svc.repo.GetStudentByFingerprint(ctx, ns.FingerprintID); err == nil {
		return Student{}, ErrFingerprintExists
	} else if err != ErrNotFound {
		return Student{}, errors.Wrap(err, "checking fingerprint id")
	}
	if _, err := svc.repo.GetStudentByNumber(ctx, ns.Number); err == nil {
		return Student{}, ErrNumberExists
	} else if err != ErrNotFound {
		return Student{}, errors.Wrap(err, "checking student number")
	}

	st, err := svc.repo.CreateStudent(ctx, Student{
		FingerprintID: ns.FingerprintID,
		Number:        ns.Number,
		Name:          ns.Name,
	})
	if err != nil {
		return Student{}, errors.Wrap(err, "creating student")
	}
	svc.logger.Info("student registered", map[string]interface{}{
		"fid":            st.FingerprintID,
		"student_number": st.Number,
	})
	return st, nil
}

func (svc *Service) GetByFingerprint(ctx context.Context, fid string) (Student, error) {
	return svc.repo.GetStudentByFingerprint(ctx, core.CleanString(fid))
}

func (svc *Service) GetByNumber(ctx context.Context, number string) (Student, error) {
	return svc.repo.GetStudentByNumber(ctx, core.CleanString(number))
}

// List returns the roster ordered by (grade, class, sequence).
func (svc *Service) List(ctx context.Context) ([]Student, error) {
	students, err := svc.repo.QueryStudents(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "querying students")
	}
	SortStudents(students)
	return students, nil
}

func (svc *Service) Count(ctx context.Context) (int, error) {
	return svc.repo.CountStudents(ctx)
}
