package testutil

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/jmoiron/sqlx"

	"github.com/checkcheck/backend/core"
	"github.com/checkcheck/backend/core/attendance"
	"github.com/checkcheck/backend/core/datetime"
	"github.com/checkcheck/backend/core/student"
	"github.com/checkcheck/backend/storage/database"
)

// OpenDB returns a migrated, private in-memory database closed at the end of the test.
func OpenDB(t *testing.T) *sqlx.DB {
	conf := &core.Config{Database: core.DatabaseConfig{Engine: core.EngineSQLite}}
	db, err := database.Open(conf)
	if err != nil {
		t.Fatalf("OpenDB() failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err = database.Migrate(db, core.EngineSQLite); err != nil {
		t.Fatalf("OpenDB() failed: %v", err)
	}
	return db
}

func CreateStudent(t *testing.T, repo student.Repository, fid, number, name string) student.Student {
	st, err := repo.CreateStudent(context.Background(), student.Student{
		FingerprintID: fid,
		Number:        number,
		Name:          name,
	})
	if err != nil {
		t.Fatalf("CreateStudent() failed: %v", err)
	}
	return st
}

// CreateEvent stores a check-in of st at ts (YYYY-MM-DD HH:MM:SS).
func CreateEvent(t *testing.T, repo attendance.Repository, st student.Student, ts string) attendance.Event {
	ev, err := repo.CreateEvent(context.Background(), attendance.Event{
		FingerprintID: st.FingerprintID,
		Name:          st.Name,
		StudentNumber: st.Number,
		Timestamp:     datetime.MustTimestamp(ts),
	})
	if err != nil {
		t.Fatalf("CreateEvent() failed: %v", err)
	}
	return ev
}

type LogEntry struct {
	Level string
	Msg   string
	Args  []interface{}
}

// Logger records log calls instead of printing them.
type Logger struct {
	mu      sync.Mutex
	entries []LogEntry
}

var _ core.Logger = (*Logger)(nil)

func NewLogger() *Logger {
	return &Logger{}
}

func (l *Logger) log(level, msg string, args []interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, LogEntry{Level: level, Msg: msg, Args: args})
}

// Entries returns the recorded calls of level, or all of them when level is empty.
func (l *Logger) Entries(level string) []LogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	entries := make([]LogEntry, 0, len(l.entries))
	for _, e := range l.entries {
		if level == "" || e.Level == level {
			entries = append(entries, e)
		}
	}
	return entries
}

func (l *Logger) Debug(msg string, args ...interface{}) { l.log("debug", msg, args) }
func (l *Logger) Info(msg string, args ...interface{})  { l.log("info", msg, args) }
func (l *Logger) Warn(msg string, args ...interface{})  { l.log("warn", msg, args) }
func (l *Logger) Error(msg string, args ...interface{}) { l.log("error", msg, args) }
func (l *Logger) Fatal(msg string, args ...interface{}) {
	l.log("fatal", msg, args)
	panic(fmt.Sprintf("fatal: %s", msg))
}
