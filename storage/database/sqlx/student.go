package sqlxrepos

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/checkcheck/backend/core"
	"github.com/checkcheck/backend/core/student"
)

const studentColumns = "id, fingerprint_id, student_number, name"

type studentRepository struct {
	repository
}

var _ student.Repository = (*studentRepository)(nil)

func NewStudentRepository(db core.DB, timeout time.Duration) *studentRepository {
	return &studentRepository{repository: newRepository(db, timeout)}
}

func (repo studentRepository) CreateStudent(ctx context.Context, st student.Student, exec ...core.DBExecutor) (student.Student, error) {
	ctx, cancel := repo.withTimeout(ctx)
	defer cancel()

	id, err := insert(ctx, repo.executor(exec),
		"INSERT INTO students (fingerprint_id, student_number, name) VALUES (?, ?, ?)",
		st.FingerprintID, st.Number, st.Name,
	)
	if err != nil {
		if isUniqueViolation(err) {
			if strings.Contains(err.Error(), "fingerprint_id") {
				return student.Student{}, student.ErrFingerprintExists
			}
			return student.Student{}, student.ErrNumberExists
		}
		return student.Student{}, wrapErr(err, "inserting student")
	}
	st.ID = id
	return st, nil
}

func (repo studentRepository) getBy(ctx context.Context, column, value string, exec []core.DBExecutor) (student.Student, error) {
	ctx, cancel := repo.withTimeout(ctx)
	defer cancel()

	ex := repo.executor(exec)
	var st student.Student
	err := ex.GetContext(ctx, &st, ex.Rebind("SELECT "+studentColumns+" FROM students WHERE "+column+" = ?"), value)
	if err != nil {
		if err == sql.ErrNoRows {
			return student.Student{}, student.ErrNotFound
		}
		return student.Student{}, wrapErr(err, "selecting student")
	}
	return st, nil
}

func (repo studentRepository) GetStudentByFingerprint(ctx context.Context, fid string, exec ...core.DBExecutor) (student.Student, error) {
	return repo.getBy(ctx, "fingerprint_id", fid, exec)
}

func (repo studentRepository) GetStudentByNumber(ctx context.Context, number string, exec ...core.DBExecutor) (student.Student, error) {
	return repo.getBy(ctx, "student_number", number, exec)
}

func (repo studentRepository) QueryStudents(ctx context.Context, exec ...core.DBExecutor) ([]student.Student, error) {
	ctx, cancel := repo.withTimeout(ctx)
	defer cancel()

	students := make([]student.Student, 0)
	err := repo.executor(exec).SelectContext(ctx, &students, "SELECT "+studentColumns+" FROM students ORDER BY student_number")
	if err != nil {
		return nil, wrapErr(err, "selecting students")
	}
	return students, nil
}

func (repo studentRepository) CountStudents(ctx context.Context, exec ...core.DBExecutor) (int, error) {
	ctx, cancel := repo.withTimeout(ctx)
	defer cancel()

	var count int
	if err := repo.executor(exec).GetContext(ctx, &count, "SELECT COUNT(*) FROM students"); err != nil {
		return 0, wrapErr(err, "counting students")
	}
	return count, nil
}
