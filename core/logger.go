package core

// Actor identifies the staff member behind a request; loggers attach it to reports.
type Actor string

// Logger is any service that can log messages.
// args may carry errors, map[string]interface{} extras and one Actor.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
