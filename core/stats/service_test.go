package stats_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/checkcheck/backend/core/attendance"
	"github.com/checkcheck/backend/core/datetime"
	"github.com/checkcheck/backend/core/ledger"
	"github.com/checkcheck/backend/core/stats"
	"github.com/checkcheck/backend/core/student"
	"github.com/checkcheck/backend/storage/database/sqlx"
	"github.com/checkcheck/backend/tests"
)

type fixture struct {
	svc      *stats.Service
	ledger   *ledger.Service
	events   attendance.Repository
	students student.Repository
	logger   *testutil.Logger
}

func setup(t *testing.T) fixture {
	db := testutil.OpenDB(t)
	f := fixture{
		events:   sqlxrepos.NewAttendanceRepository(db, time.Second),
		students: sqlxrepos.NewStudentRepository(db, time.Second),
		logger:   testutil.NewLogger(),
	}
	f.svc = stats.NewService(f.students, f.events, f.logger)
	f.ledger = ledger.NewService(db, sqlxrepos.NewLedgerRepository(db, time.Second), f.events, f.students, f.logger)
	return f
}

func TestService_DailyCounts(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	date := datetime.MustDate("2024-03-15")

	kim := testutil.CreateStudent(t, f.students, "11", "3101", "Kim")
	lee := testutil.CreateStudent(t, f.students, "12", "3102", "Lee")
	park := testutil.CreateStudent(t, f.students, "13", "3201", "Park")
	testutil.CreateStudent(t, f.students, "14", "3202", "Choi")

	testutil.CreateEvent(t, f.events, kim, "2024-03-15 07:29:59")
	testutil.CreateEvent(t, f.events, kim, "2024-03-15 07:45:00") // later scans are ignored
	testutil.CreateEvent(t, f.events, lee, "2024-03-15 07:30:00")
	testutil.CreateEvent(t, f.events, park, "2024-03-15 08:30:00")
	testutil.CreateEvent(t, f.events, park, "2024-03-16 07:00:00")

	want := stats.DailyCounts{Date: date, Present: 1, Late: 1, Absent: 2, Total: 4}
	got, err := f.svc.DailyCounts(ctx, date)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	again, err := f.svc.DailyCounts(ctx, date)
	require.NoError(t, err)
	assert.Equal(t, got, again)
	assert.Empty(t, f.logger.Entries("warn"))
}

func TestService_DailyCounts_negativeAbsent(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	date := datetime.MustDate("2024-03-15")

	kim := testutil.CreateStudent(t, f.students, "11", "3101", "Kim")
	testutil.CreateEvent(t, f.events, kim, "2024-03-15 07:00:00")
	// events of numbers missing from the roster
	testutil.CreateEvent(t, f.events, student.Student{FingerprintID: "90", Number: "3901", Name: "Ghost"}, "2024-03-15 07:00:00")
	testutil.CreateEvent(t, f.events, student.Student{FingerprintID: "91", Number: "3902", Name: "Ghost"}, "2024-03-15 07:40:00")

	got, err := f.svc.DailyCounts(ctx, date)
	require.NoError(t, err)
	assert.Equal(t, stats.DailyCounts{Date: date, Present: 2, Late: 1, Absent: -2, Total: 1, IntegrityWarning: true}, got)
	assert.Len(t, f.logger.Entries("warn"), 1)
}

func TestService_MonthlyGrid(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	month := datetime.MustYearMonth("2024-03")

	kim := testutil.CreateStudent(t, f.students, "11", "3101", "Kim")
	lee := testutil.CreateStudent(t, f.students, "12", "3201", "Lee")
	testutil.CreateStudent(t, f.students, "13", "3102", "Park")

	testutil.CreateEvent(t, f.events, kim, "2024-03-04 07:10:00")
	testutil.CreateEvent(t, f.events, kim, "2024-03-05 07:50:00")
	testutil.CreateEvent(t, f.events, kim, "2024-03-05 07:00:00")
	testutil.CreateEvent(t, f.events, lee, "2024-03-05 08:31:00")
	testutil.CreateEvent(t, f.events, lee, "2024-02-29 07:00:00")

	grid, err := f.svc.MonthlyGrid(ctx, month, "")
	require.NoError(t, err)
	require.Len(t, grid.Dates, 2)
	assert.Equal(t, "2024-03-04", grid.Dates[0].String())
	assert.Equal(t, "2024-03-05", grid.Dates[1].String())

	require.Len(t, grid.Rows, 3)
	assert.Equal(t, "3101", grid.Rows[0].Student.Number)
	assert.Equal(t, []attendance.Status{attendance.OnTime, attendance.OnTime}, grid.Rows[0].Statuses)
	assert.Equal(t, 2, grid.Rows[0].OnTime)
	assert.Equal(t, "3102", grid.Rows[1].Student.Number)
	assert.Equal(t, []attendance.Status{attendance.Absent, attendance.Absent}, grid.Rows[1].Statuses)
	assert.Equal(t, 2, grid.Rows[1].Absent)
	assert.Equal(t, "3201", grid.Rows[2].Student.Number)
	assert.Equal(t, []attendance.Status{attendance.Absent, attendance.Absent}, grid.Rows[2].Statuses)

	grid, err = f.svc.MonthlyGrid(ctx, month, "2")
	require.NoError(t, err)
	require.Len(t, grid.Rows, 1)
	assert.Equal(t, "Lee", grid.Rows[0].Student.Name)

	_, err = f.svc.MonthlyGrid(ctx, month, "12")
	assert.Equal(t, stats.ErrInvalidClass, err)

	grid, err = f.svc.MonthlyGrid(ctx, datetime.MustYearMonth("2024-05"), "")
	require.NoError(t, err)
	assert.Empty(t, grid.Dates)
	assert.Len(t, grid.Rows, 3)
}

func TestService_ExportMonthlyGrid(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	kim := testutil.CreateStudent(t, f.students, "11", "3101", "Kim")
	testutil.CreateStudent(t, f.students, "12", "3102", "Lee")
	testutil.CreateEvent(t, f.events, kim, "2024-03-04 07:40:00")

	grid, err := f.svc.MonthlyGrid(ctx, datetime.MustYearMonth("2024-03"), "")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, f.svc.ExportMonthlyGrid(ctx, grid, &buf))

	wb, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = wb.Close() }()

	rows, err := wb.GetRows("2024-03")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"학번", "이름", "4일", "출석", "지각", "결석"}, rows[0])
	assert.Equal(t, []string{"3101", "Kim", "지각", "0", "1", "0"}, rows[1])
	assert.Equal(t, []string{"3102", "Lee", "결석", "0", "0", "1"}, rows[2])
}

func TestService_groupCounts(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	for i, number := range []string{"1101", "1102", "1201", "2101", "3301", "77"} {
		testutil.CreateStudent(t, f.students, string(rune('1'+i)), number, "S")
	}

	grades, err := f.svc.GradeCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"1": 3, "2": 1, "3": 1, student.Unknown: 1}, grades)

	classes, err := f.svc.ClassCounts(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"1": 2, "2": 1}, classes)

	classes, err = f.svc.ClassCounts(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"1": 3, "2": 1, "3": 1, student.Unknown: 1}, classes)

	_, err = f.svc.ClassCounts(ctx, "a")
	assert.Equal(t, stats.ErrInvalidGrade, err)
}

func TestService_RecentActivities(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	kim := testutil.CreateStudent(t, f.students, "11", "3101", "Kim")
	for _, ts := range []string{"2024-03-15 07:00:00", "2024-03-15 07:31:00", "2024-03-15 08:40:00", "2024-03-15 09:00:00", "2024-03-15 10:00:00"} {
		testutil.CreateEvent(t, f.events, kim, ts)
	}

	activities, err := f.svc.RecentActivities(ctx, datetime.MustDate("2024-03-15"), 0)
	require.NoError(t, err)
	require.Len(t, activities, attendance.DefaultRecentLimit)
	assert.Equal(t, "2024-03-15 10:00:00", activities[0].Timestamp.String())
	assert.Equal(t, attendance.Absent, activities[0].Status)
	assert.Equal(t, "2024-03-15 07:31:00", activities[3].Timestamp.String())
	assert.Equal(t, attendance.Late, activities[3].Status)
}

// A student with no check-in is absent, becomes present through a manual
// addition, then absent again once the time is corrected past 08:30.
func TestScenario_correctionsDriveDailyCounts(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	date := datetime.MustDate("2024-03-15")
	testutil.CreateStudent(t, f.students, "11", "3102", "Kim")
	h7, m15, h8, m45 := 7, 15, 8, 45

	counts, err := f.svc.DailyCounts(ctx, date)
	require.NoError(t, err)
	assert.Equal(t, stats.DailyCounts{Date: date, Absent: 1, Total: 1}, counts)

	_, err = f.ledger.ApplyAddition(ctx, ledger.NewAddition{
		StudentNumber: "3102", Date: "2024-03-15", Hour: &h7, Minute: &m15, Reason: "지문 인식 오류",
	})
	require.NoError(t, err)
	entries, err := f.ledger.QueryByMonth(ctx, datetime.Today().Month())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, ledger.Addition, entries[0].Operation)

	counts, err = f.svc.DailyCounts(ctx, date)
	require.NoError(t, err)
	assert.Equal(t, stats.DailyCounts{Date: date, Present: 1, Total: 1}, counts)

	_, err = f.ledger.ApplyModification(ctx, ledger.NewModification{
		StudentNumber: "3102", OriginalTimestamp: "2024-03-15 07:15:00",
		Date: "2024-03-15", Hour: &h8, Minute: &m45, Reason: "시간 오류 정정",
	})
	require.NoError(t, err)
	entries, err = f.ledger.QueryByMonth(ctx, datetime.Today().Month())
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, ledger.Modification, entries[0].Operation)
	assert.Equal(t, "2024-03-15 07:15:00", entries[0].Original())
	assert.Equal(t, "2024-03-15 08:45:00", entries[0].ModifiedTimestamp.String())

	counts, err = f.svc.DailyCounts(ctx, date)
	require.NoError(t, err)
	assert.Equal(t, stats.DailyCounts{Date: date, Absent: 1, Total: 1}, counts)
}
