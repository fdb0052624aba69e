package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/checkcheck/backend/core"
	"github.com/checkcheck/backend/core/attendance"
	"github.com/checkcheck/backend/core/datetime"
)

const eventColumns = "id, fingerprint_id, name, student_number, checked_at"

type attendanceRepository struct {
	repository
}

var _ attendance.Repository = (*attendanceRepository)(nil)

func NewAttendanceRepository(db core.DB, timeout time.Duration) *attendanceRepository {
	return &attendanceRepository{repository: newRepository(db, timeout)}
}

// dayBounds returns the [from, to) checked_at range of date.
func dayBounds(date datetime.Date) (string, string) {
	return date.Start().String(), date.AddDays(1).Start().String()
}

func (repo attendanceRepository) CreateEvent(ctx context.Context, ev attendance.Event, exec ...core.DBExecutor) (attendance.Event, error) {
	ctx, cancel := repo.withTimeout(ctx)
	defer cancel()

	id, err := insert(ctx, repo.executor(exec),
		"INSERT INTO attendance_events (fingerprint_id, name, student_number, checked_at) VALUES (?, ?, ?, ?)",
		ev.FingerprintID, ev.Name, ev.StudentNumber, ev.Timestamp,
	)
	if err != nil {
		return attendance.Event{}, wrapErr(err, "inserting attendance event")
	}
	ev.ID = id
	return ev, nil
}

func (repo attendanceRepository) HasEventOnDate(ctx context.Context, fid string, date datetime.Date, exec ...core.DBExecutor) (bool, error) {
	ctx, cancel := repo.withTimeout(ctx)
	defer cancel()

	ex := repo.executor(exec)
	from, to := dayBounds(date)
	var count int
	err := ex.GetContext(ctx, &count, ex.Rebind(
		"SELECT COUNT(*) FROM attendance_events WHERE fingerprint_id = ? AND checked_at >= ? AND checked_at < ?",
	), fid, from, to)
	if err != nil {
		return false, wrapErr(err, "checking attendance")
	}
	return count > 0, nil
}

func (repo attendanceRepository) GetEvent(ctx context.Context, number string, ts datetime.Timestamp, exec ...core.DBExecutor) (attendance.Event, error) {
	ctx, cancel := repo.withTimeout(ctx)
	defer cancel()

	ex := repo.executor(exec)
	var ev attendance.Event
	err := ex.GetContext(ctx, &ev, ex.Rebind(
		"SELECT "+eventColumns+" FROM attendance_events WHERE student_number = ? AND checked_at = ? ORDER BY id LIMIT 1",
	), number, ts)
	if err != nil {
		if err == sql.ErrNoRows {
			return attendance.Event{}, attendance.ErrNotFound
		}
		return attendance.Event{}, wrapErr(err, "selecting attendance event")
	}
	return ev, nil
}

func (repo attendanceRepository) query(ctx context.Context, exec []core.DBExecutor, where string, args ...interface{}) ([]attendance.Event, error) {
	ctx, cancel := repo.withTimeout(ctx)
	defer cancel()

	ex := repo.executor(exec)
	events := make([]attendance.Event, 0)
	err := ex.SelectContext(ctx, &events, ex.Rebind(
		"SELECT "+eventColumns+" FROM attendance_events WHERE "+where+" ORDER BY checked_at, id",
	), args...)
	if err != nil {
		return nil, wrapErr(err, "selecting attendance events")
	}
	return events, nil
}

func (repo attendanceRepository) QueryEventsForStudent(ctx context.Context, number string, exec ...core.DBExecutor) ([]attendance.Event, error) {
	return repo.query(ctx, exec, "student_number = ?", number)
}

func (repo attendanceRepository) QueryEventsOnDate(ctx context.Context, date datetime.Date, exec ...core.DBExecutor) ([]attendance.Event, error) {
	from, to := dayBounds(date)
	return repo.query(ctx, exec, "checked_at >= ? AND checked_at < ?", from, to)
}

func (repo attendanceRepository) QueryEventsInMonth(ctx context.Context, month datetime.YearMonth, exec ...core.DBExecutor) ([]attendance.Event, error) {
	from, to := month.FirstDay().Start().String(), month.Next().FirstDay().Start().String()
	return repo.query(ctx, exec, "checked_at >= ? AND checked_at < ?", from, to)
}

func (repo attendanceRepository) QueryRecentOnDate(ctx context.Context, date datetime.Date, limit int, exec ...core.DBExecutor) ([]attendance.Event, error) {
	ctx, cancel := repo.withTimeout(ctx)
	defer cancel()

	ex := repo.executor(exec)
	from, to := dayBounds(date)
	events := make([]attendance.Event, 0, limit)
	err := ex.SelectContext(ctx, &events, ex.Rebind(
		"SELECT "+eventColumns+" FROM attendance_events WHERE checked_at >= ? AND checked_at < ? ORDER BY checked_at DESC, id DESC LIMIT ?",
	), from, to, limit)
	if err != nil {
		return nil, wrapErr(err, "selecting recent attendance events")
	}
	return events, nil
}

// UpdateEventTimestamp picks the oldest matching row, then updates it only if it still holds original,
// so that of two concurrent moves of the same event exactly one affects a row.
func (repo attendanceRepository) UpdateEventTimestamp(
	ctx context.Context,
	number string,
	original, modified datetime.Timestamp,
	exec ...core.DBExecutor,
) (int64, error) {
	ev, err := repo.GetEvent(ctx, number, original, exec...)
	if err != nil {
		return 0, err
	}

	ctx, cancel := repo.withTimeout(ctx)
	defer cancel()

	ex := repo.executor(exec)
	res, err := ex.ExecContext(ctx, ex.Rebind(
		"UPDATE attendance_events SET checked_at = ? WHERE id = ? AND checked_at = ?",
	), modified, ev.ID, original)
	if err != nil {
		return 0, wrapErr(err, "updating attendance event")
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, wrapErr(err, "updating attendance event")
	}
	if affected == 0 {
		return 0, attendance.ErrNotFound
	}
	return affected, nil
}

func (repo attendanceRepository) EarliestPerStudentOnDate(ctx context.Context, date datetime.Date, exec ...core.DBExecutor) (map[string]datetime.Timestamp, error) {
	ctx, cancel := repo.withTimeout(ctx)
	defer cancel()

	ex := repo.executor(exec)
	from, to := dayBounds(date)
	var rows []struct {
		StudentNumber string             `db:"student_number"`
		First         datetime.Timestamp `db:"first_at"`
	}
	err := ex.SelectContext(ctx, &rows, ex.Rebind(
		"SELECT student_number, MIN(checked_at) AS first_at FROM attendance_events "+
			"WHERE checked_at >= ? AND checked_at < ? GROUP BY student_number",
	), from, to)
	if err != nil {
		return nil, wrapErr(err, "selecting first check-ins")
	}
	earliest := make(map[string]datetime.Timestamp, len(rows))
	for _, row := range rows {
		earliest[row.StudentNumber] = row.First
	}
	return earliest, nil
}
