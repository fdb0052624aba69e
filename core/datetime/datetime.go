// Package datetime holds the naive wall-clock types shared by the roster,
// attendance and ledger packages. Values carry no time zone: they are what the
// fingerprint device printed, and they are persisted as zero padded text so
// that string order and chronological order agree.
package datetime

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const (
	TimestampLayout = "2006-01-02 15:04:05"
	DateLayout      = "2006-01-02"
	MonthLayout     = "2006-01"
	ClockLayout     = "15:04:05"
)

var (
	ErrInvalidTimestamp = errors.New("invalid timestamp, expected YYYY-MM-DD HH:MM:SS")
	ErrInvalidDate      = errors.New("invalid date, expected YYYY-MM-DD")
	ErrInvalidMonth     = errors.New("invalid month, expected YYYY-MM")
	ErrInvalidClock     = errors.New("invalid time, expected HH:MM or HH:MM:SS")

	// accepted on input; the first one is canonical
	timestampLayouts = []string{
		TimestampLayout,
		"2006/01/02 15:04:05",
		"2006-01-02T15:04:05",
		"2006-01-02 15:04",
	}
)

// Timestamp is a naive date and time of day with second precision.
type Timestamp struct {
	t time.Time
}

// FromTime drops the location and sub-second part of t.
func FromTime(t time.Time) Timestamp {
	return Timestamp{t: time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC)}
}

// Now returns the current local wall-clock time.
func Now() Timestamp {
	return FromTime(time.Now())
}

func ParseTimestamp(s string) (Timestamp, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Timestamp{t: t}, nil
		}
	}
	return Timestamp{}, ErrInvalidTimestamp
}

// MustTimestamp is ParseTimestamp that panics; meant for constants and tests.
func MustTimestamp(s string) Timestamp {
	ts, err := ParseTimestamp(s)
	if err != nil {
		panic(err)
	}
	return ts
}

func (ts Timestamp) IsZero() bool { return ts.t.IsZero() }

func (ts Timestamp) String() string {
	if ts.IsZero() {
		return ""
	}
	return ts.t.Format(TimestampLayout)
}

func (ts Timestamp) Date() Date { return Date{t: time.Date(ts.t.Year(), ts.t.Month(), ts.t.Day(), 0, 0, 0, 0, time.UTC)} }
func (ts Timestamp) Clock() Clock { return Clock{sec: ts.t.Hour()*3600 + ts.t.Minute()*60 + ts.t.Second()} }
func (ts Timestamp) Time() time.Time {
	return ts.t
}

// Compare returns -1, 0 or +1 as ts is before, equal to or after other.
func (ts Timestamp) Compare(other Timestamp) int {
	switch {
	case ts.t.Before(other.t):
		return -1
	case ts.t.After(other.t):
		return 1
	default:
		return 0
	}
}

func (ts Timestamp) Before(other Timestamp) bool { return ts.Compare(other) < 0 }
func (ts Timestamp) Equal(other Timestamp) bool { return ts.Compare(other) == 0 }

func (ts Timestamp) MarshalJSON() ([]byte, error) {
	if ts.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(ts.String())
}

func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	var s *string
	if err := json.Unmarshal(data, &s); err != nil {
		return ErrInvalidTimestamp
	}
	if s == nil || *s == "" {
		*ts = Timestamp{}
		return nil
	}
	parsed, err := ParseTimestamp(*s)
	if err != nil {
		return err
	}
	*ts = parsed
	return nil
}

// Value stores the canonical text form.
func (ts Timestamp) Value() (driver.Value, error) {
	if ts.IsZero() {
		return nil, nil
	}
	return ts.String(), nil
}

func (ts *Timestamp) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*ts = Timestamp{}
		return nil
	case time.Time:
		*ts = FromTime(v)
		return nil
	case []byte:
		return ts.scanString(string(v))
	case string:
		return ts.scanString(v)
	default:
		return fmt.Errorf("datetime: cannot scan %T into Timestamp", src)
	}
}

func (ts *Timestamp) scanString(s string) error {
	parsed, err := ParseTimestamp(s)
	if err != nil {
		return errors.Wrapf(err, "scanning %q", s)
	}
	*ts = parsed
	return nil
}

// Date is a calendar day.
type Date struct {
	t time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{t: t}, nil
}

func MustDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Today returns the current local date.
func Today() Date {
	return Now().Date()
}

func (d Date) IsZero() bool { return d.t.IsZero() }
func (d Date) String() string { return d.t.Format(DateLayout) }
func (d Date) Day() int { return d.t.Day() }
func (d Date) Month() YearMonth {
	return YearMonth{t: time.Date(d.t.Year(), d.t.Month(), 1, 0, 0, 0, 0, time.UTC)}
}
func (d Date) AddDays(n int) Date { return Date{t: d.t.AddDate(0, 0, n)} }

// At combines the date with a time of day.
func (d Date) At(c Clock) Timestamp {
	return Timestamp{t: d.t.Add(time.Duration(c.sec) * time.Second)}
}

// Start is the first instant of the day; the day spans [Start, AddDays(1).Start).
func (d Date) Start() Timestamp { return Timestamp{t: d.t} }

func (d Date) Before(other Date) bool { return d.t.Before(other.t) }

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// YearMonth is a calendar month.
type YearMonth struct {
	t time.Time
}

func ParseYearMonth(s string) (YearMonth, error) {
	t, err := time.Parse(MonthLayout, strings.TrimSpace(s))
	if err != nil {
		return YearMonth{}, ErrInvalidMonth
	}
	return YearMonth{t: t}, nil
}

func MustYearMonth(s string) YearMonth {
	ym, err := ParseYearMonth(s)
	if err != nil {
		panic(err)
	}
	return ym
}

func (ym YearMonth) IsZero() bool { return ym.t.IsZero() }
func (ym YearMonth) String() string { return ym.t.Format(MonthLayout) }
func (ym YearMonth) FirstDay() Date { return Date{t: ym.t} }
func (ym YearMonth) Next() YearMonth { return YearMonth{t: ym.t.AddDate(0, 1, 0)} }

// Contains reports whether d falls in the month.
func (ym YearMonth) Contains(d Date) bool {
	return d.t.Year() == ym.t.Year() && d.t.Month() == ym.t.Month()
}

func (ym YearMonth) MarshalJSON() ([]byte, error) {
	return json.Marshal(ym.String())
}

// Clock is a time of day, in seconds since midnight.
type Clock struct {
	sec int
}

func NewClock(hour, minute, second int) (Clock, error) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 || second < 0 || second > 59 {
		return Clock{}, ErrInvalidClock
	}
	return Clock{sec: hour*3600 + minute*60 + second}, nil
}

func MustClock(hour, minute, second int) Clock {
	c, err := NewClock(hour, minute, second)
	if err != nil {
		panic(err)
	}
	return c
}

// ParseClock accepts HH:MM and HH:MM:SS (24-hour).
func ParseClock(s string) (Clock, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{ClockLayout, "15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return Clock{sec: t.Hour()*3600 + t.Minute()*60 + t.Second()}, nil
		}
	}
	return Clock{}, ErrInvalidClock
}

func (c Clock) Hour() int { return c.sec / 3600 }
func (c Clock) Minute() int { return c.sec % 3600 / 60 }
func (c Clock) Second() int { return c.sec % 60 }
func (c Clock) Seconds() int { return c.sec }
func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", c.Hour(), c.Minute(), c.Second())
}

// HourMinute renders HH:MM.
func (c Clock) HourMinute() string { return c.String()[:5] }

func (c Clock) Before(other Clock) bool { return c.sec < other.sec }
