package stats

import (
	"github.com/checkcheck/backend/core/attendance"
	"github.com/checkcheck/backend/core/datetime"
	"github.com/checkcheck/backend/core/student"
)

// DailyCounts summarises one day. Absent is derived as Total - Present - Late and
// is reported as is even when negative; IntegrityWarning is then set.
type DailyCounts struct {
	Date             datetime.Date `json:"date"`
	Present          int           `json:"present"`
	Late             int           `json:"late"`
	Absent           int           `json:"absent"`
	Total            int           `json:"total"`
	IntegrityWarning bool          `json:"integrity_warning"`
}

type GridRow struct {
	Student    student.Student     `json:"student"`
	Identifier student.Identifier  `json:"identifier"`
	Statuses   []attendance.Status `json:"statuses"` // one per MonthlyGrid.Dates
	OnTime     int                 `json:"on_time"`
	Late       int                 `json:"late"`
	Absent     int                 `json:"absent"`
}

// MonthlyGrid is the student x school day status matrix of a month.
// Dates only holds days with at least one check-in.
type MonthlyGrid struct {
	Month datetime.YearMonth `json:"month"`
	Class string             `json:"class,omitempty"`
	Dates []datetime.Date    `json:"dates"`
	Rows  []GridRow          `json:"rows"`
}

type Activity struct {
	attendance.Event
	Status attendance.Status `json:"status"`
}
