package stats

import (
	"context"
	"sort"

	"github.com/kat-co/vala"
	"github.com/pkg/errors"

	"github.com/checkcheck/backend/core"
	"github.com/checkcheck/backend/core/attendance"
	"github.com/checkcheck/backend/core/datetime"
	"github.com/checkcheck/backend/core/student"
)

var (
	// errors
	ErrInvalidClass = core.NewValidationError(nil, core.FieldError{Field: "class", Error: "class must be a single digit"})
	ErrInvalidGrade = core.NewValidationError(nil, core.FieldError{Field: "grade", Error: "grade must be a single digit"})
)

type Service struct {
	students student.Repository
	events   attendance.Repository
	logger   core.Logger
}

func NewService(students student.Repository, events attendance.Repository, logger core.Logger) *Service {
	vala.BeginValidation().Validate(
		core.NotNil(students, "students"),
		core.NotNil(events, "events"),
		core.NotNil(logger, "logger"),
	).CheckAndPanic()

	return &Service{students: students, events: events, logger: logger}
}

func checkDigit(s string, err error) error {
	if s != "" && (len(s) != 1 || !core.IsDigits(s)) {
		return err
	}
	return nil
}

// DailyCounts classifies every student's first check-in of date.
func (svc *Service) DailyCounts(ctx context.Context, date datetime.Date) (DailyCounts, error) {
	total, err := svc.students.CountStudents(ctx)
	if err != nil {
		return DailyCounts{}, errors.Wrap(err, "counting students")
	}
	earliest, err := svc.events.EarliestPerStudentOnDate(ctx, date)
	if err != nil {
		return DailyCounts{}, errors.Wrap(err, "querying first check-ins")
	}

	counts := DailyCounts{Date: date, Total: total}
	for _, ts := range earliest {
		switch attendance.ClassifyEvent(ts) {
		case attendance.OnTime:
			counts.Present++
		case attendance.Late:
			counts.Late++
		}
	}
	counts.Absent = counts.Total - counts.Present - counts.Late
	if counts.Absent < 0 {
		counts.IntegrityWarning = true
		svc.logger.Warn("negative absent count", map[string]interface{}{
			"date":    date.String(),
			"total":   counts.Total,
			"present": counts.Present,
			"late":    counts.Late,
			"absent":  counts.Absent,
		})
	}
	return counts, nil
}

// MonthlyGrid builds the status matrix of month, limited to one class digit when class is not empty.
func (svc *Service) MonthlyGrid(ctx context.Context, month datetime.YearMonth, class string) (MonthlyGrid, error) {
	if err := checkDigit(class, ErrInvalidClass); err != nil {
		return MonthlyGrid{}, err
	}
	students, err := svc.students.QueryStudents(ctx)
	if err != nil {
		return MonthlyGrid{}, errors.Wrap(err, "querying students")
	}
	student.SortStudents(students)
	events, err := svc.events.QueryEventsInMonth(ctx, month)
	if err != nil {
		return MonthlyGrid{}, errors.Wrap(err, "querying events")
	}

	// day -> student number -> first check-in
	firsts := make(map[string]map[string]datetime.Timestamp)
	days := make(map[string]datetime.Date)
	for _, ev := range events {
		day := ev.Timestamp.Date()
		key := day.String()
		if _, ok := firsts[key]; !ok {
			firsts[key] = make(map[string]datetime.Timestamp)
			days[key] = day
		}
		if prev, ok := firsts[key][ev.StudentNumber]; !ok || ev.Timestamp.Before(prev) {
			firsts[key][ev.StudentNumber] = ev.Timestamp
		}
	}
	dates := make([]datetime.Date, 0, len(days))
	for _, d := range days {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	grid := MonthlyGrid{Month: month, Class: class, Dates: dates, Rows: make([]GridRow, 0, len(students))}
	for _, st := range students {
		id := st.Identifier()
		if class != "" && id.Class != class {
			continue
		}
		row := GridRow{Student: st, Identifier: id, Statuses: make([]attendance.Status, len(dates))}
		for i, d := range dates {
			status := attendance.ClassifyEvent(firsts[d.String()][st.Number])
			row.Statuses[i] = status
			switch status {
			case attendance.OnTime:
				row.OnTime++
			case attendance.Late:
				row.Late++
			default:
				row.Absent++
			}
		}
		grid.Rows = append(grid.Rows, row)
	}
	return grid, nil
}

// ClassCounts counts students per class digit, within grade when it is not empty.
func (svc *Service) ClassCounts(ctx context.Context, grade string) (map[string]int, error) {
	if err := checkDigit(grade, ErrInvalidGrade); err != nil {
		return nil, err
	}
	students, err := svc.students.QueryStudents(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "querying students")
	}
	return student.CountByClass(students, grade), nil
}

func (svc *Service) GradeCounts(ctx context.Context) (map[string]int, error) {
	students, err := svc.students.QueryStudents(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "querying students")
	}
	return student.CountByGrade(students), nil
}

// RecentActivities returns the latest check-ins of date with their status, newest first.
func (svc *Service) RecentActivities(ctx context.Context, date datetime.Date, limit int) ([]Activity, error) {
	if limit <= 0 {
		limit = attendance.DefaultRecentLimit
	}
	if limit > attendance.MaxRecentLimit {
		limit = attendance.MaxRecentLimit
	}
	events, err := svc.events.QueryRecentOnDate(ctx, date, limit)
	if err != nil {
		return nil, errors.Wrap(err, "querying recent check-ins")
	}
	activities := make([]Activity, 0, len(events))
	for _, ev := range events {
		activities = append(activities, Activity{Event: ev, Status: ev.Status()})
	}
	return activities, nil
}
