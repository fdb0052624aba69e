package logsvc

import (
	"log"

	"github.com/rollbar/rollbar-go"
	"github.com/rollbar/rollbar-go/errors"

	"github.com/checkcheck/backend/core"
)

// RollbarLogger writes every entry to a std logger and reports it to Rollbar once enabled.
// Debug entries stay local and are dropped outside debug mode.
type RollbarLogger struct {
	std   *log.Logger
	debug bool
}

var _ core.Logger = (*RollbarLogger)(nil)

func NewRollbarLogger(std *log.Logger, conf *core.Config) *RollbarLogger {
	rollbar.SetToken(conf.RollbarToken)
	rollbar.SetEnvironment(conf.Env)
	rollbar.SetServerHost(conf.Server.Host)
	rollbar.SetCodeVersion(conf.Build)
	rollbar.SetStackTracer(errors.StackTracer)
	rollbar.SetEnabled(false)
	return &RollbarLogger{std: std, debug: conf.Debug}
}

func (l RollbarLogger) Enable(enabled bool) {
	rollbar.SetEnabled(enabled)
}

// Close flushes the report queue.
func (l RollbarLogger) Close() {
	rollbar.Wait()
}

// prepare turns (msg, args) into rollbar arguments. The first core.Actor found becomes the
// rollbar person and is not sent as data; errors and extras maps pass through.
func (l RollbarLogger) prepare(msg string, args []interface{}) []interface{} {
	data := make([]interface{}, 0, len(args)+1)
	data = append(data, msg)
	var person core.Actor
	for _, arg := range args {
		actor, ok := arg.(core.Actor)
		if !ok {
			data = append(data, arg)
			continue
		}
		if person == "" {
			person = actor
		}
	}
	if person == "" {
		rollbar.ClearPerson()
	} else {
		rollbar.SetPerson(string(person), string(person), "")
	}
	return data
}

func (l RollbarLogger) print(level, msg string, args []interface{}) {
	l.std.Printf("%s %s", level, msg)
	for _, arg := range args {
		if actor, ok := arg.(core.Actor); ok {
			l.std.Printf("\tactor=%s", actor)
			continue
		}
		l.std.Printf("\t%+v", arg)
	}
}

func (l RollbarLogger) report(level string, send func(...interface{}), msg string, args []interface{}) {
	send(l.prepare(msg, args)...)
	l.print(level, msg, args)
}

func (l RollbarLogger) Debug(msg string, args ...interface{}) {
	if l.debug {
		l.print("DEBUG", msg, args)
	}
}

func (l RollbarLogger) Info(msg string, args ...interface{}) {
	l.report("INFO", rollbar.Info, msg, args)
}

func (l RollbarLogger) Warn(msg string, args ...interface{}) {
	l.report("WARN", rollbar.Warning, msg, args)
}

func (l RollbarLogger) Error(msg string, args ...interface{}) {
	l.report("ERROR", rollbar.Error, msg, args)
}

func (l RollbarLogger) Fatal(msg string, args ...interface{}) {
	l.report("FATAL", rollbar.Critical, msg, args)
	rollbar.Wait()
	l.std.Fatal(msg)
}
