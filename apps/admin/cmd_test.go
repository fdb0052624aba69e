package main

import (
	"bytes"
	"database/sql"
	"fmt"
	"strconv"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/checkcheck/backend/core"
	"github.com/checkcheck/backend/core/stats"
	"github.com/checkcheck/backend/core/student"
	"github.com/checkcheck/backend/storage/database"
	"github.com/checkcheck/backend/storage/database/sqlx"
	"github.com/checkcheck/backend/tests"
)

var studentRepo student.Repository

func setup(t *testing.T) (*commandLine, *bytes.Buffer) {
	// set up DB & repos
	db := testutil.OpenDB(t)
	studentRepo = sqlxrepos.NewStudentRepository(db, 0)
	events := sqlxrepos.NewAttendanceRepository(db, 0)
	logger := testutil.NewLogger()

	// start CLI
	var out bytes.Buffer
	return &commandLine{
		db:       db,
		engine:   core.EngineSQLite,
		out:      &out,
		students: student.NewService(studentRepo, logger),
		stats:    stats.NewService(studentRepo, events, logger),
	}, &out
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	wantOut    string
}

func runCLITests(t *testing.T, cli *commandLine, out *bytes.Buffer, tests []cliTest) {
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			out.Reset()
			if err := cli.run(args); err != nil {
				if tt.wantErr != nil {
					if errors.Cause(err) != tt.wantErr {
						t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
					}
				} else if tt.wantErrStr != "" {
					if err.Error() != tt.wantErrStr {
						t.Errorf("cli.run() error.Error() = %s, wantErrStr %s", err.Error(), tt.wantErrStr)
					}
				} else {
					t.Errorf("cli.run() unexpected error = %v", err)
				}
				return
			}
			if tt.wantOut != "" {
				assert.Equal(t, tt.wantOut, out.String())
			}
		})
	}
}

func Test_commandLine_usage(t *testing.T) {
	cli, out := setup(t)

	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
	}
	runCLITests(t, cli, out, tests)
}

func Test_commandLine_migrate(t *testing.T) {
	cli, out := setup(t)

	defer func() { gooseRunFunc = database.Run }()
	gooseRunFunc = func(command string, db *sql.DB, engine string, args ...string) error {
		if engine != core.EngineSQLite {
			return fmt.Errorf("unexpected engine %q", engine)
		}
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to":
			if len(args) == 0 {
				return fmt.Errorf("up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION")
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		case "create":
			if len(args) == 0 {
				return fmt.Errorf("create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]")
			}
		case "down-to":
			if len(args) == 0 {
				return fmt.Errorf("down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION")
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	tests := []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "create: no args", args: []string{"migrate", "create"}, wantErrStr: "create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]"},
		{name: "down-to: no args", args: []string{"migrate", "down-to"}, wantErrStr: "down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION"},
		{name: "down-to: non-int arg", args: []string{"migrate", "down-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-by-one", args: []string{"migrate", "up-by-one"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "down-to", args: []string{"migrate", "down-to", "1"}},
		{name: "redo", args: []string{"migrate", "redo"}},
		{name: "reset", args: []string{"migrate", "reset"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "version", args: []string{"migrate", "version"}},
		{name: "create", args: []string{"migrate", "create", "guardians", "sql"}},
		{name: "fix", args: []string{"migrate", "fix"}},
	}
	runCLITests(t, cli, out, tests)
}

func Test_commandLine_migrateStatus(t *testing.T) {
	cli, out := setup(t)

	// the real goose run against the already migrated test DB
	runCLITests(t, cli, out, []cliTest{
		{name: "version", args: []string{"migrate", "version"}},
		{name: "up to date", args: []string{"migrate", "up"}},
	})

	cli.engine = "oracle"
	err := cli.run([]string{"admin", "migrate", "up"})
	assert.EqualError(t, err, `unsupported database engine "oracle"`)
}

func Test_commandLine_students(t *testing.T) {
	cli, out := setup(t)

	tests := []cliTest{
		{name: "no args", args: []string{"addstudent"}, wantErr: errHelp},
		{name: "missing name", args: []string{"addstudent", "-fid", "11", "-number", "3102"}, wantErr: errHelp},
		{name: "unknown flag", args: []string{"addstudent", "-lol", "1"}, wantErrStr: "flag provided but not defined: -lol"},
		{
			name:    "add",
			args:    []string{"addstudent", "-fid", "11", "-number", "3102", "-name", " Kim "},
			wantOut: "registered 3102 Kim (fid 11)\n",
		},
		{name: "add: fid taken", args: []string{"addstudent", "-fid", "11", "-number", "1215", "-name", "Lee"}, wantErr: student.ErrFingerprintExists},
		{name: "add: number taken", args: []string{"addstudent", "-fid", "12", "-number", "3102", "-name", "Lee"}, wantErr: student.ErrNumberExists},
		{name: "add another", args: []string{"addstudent", "-fid", "12", "-number", "1215", "-name", "Lee"}},
		{name: "list", args: []string{"students"}, wantOut: "1215\t12\tLee\n3102\t11\tKim\n"},
	}
	runCLITests(t, cli, out, tests)
}

func Test_commandLine_daily(t *testing.T) {
	cli, out := setup(t)

	events := sqlxrepos.NewAttendanceRepository(cli.db, 0)
	kim := testutil.CreateStudent(t, studentRepo, "11", "3102", "Kim")
	testutil.CreateStudent(t, studentRepo, "12", "1215", "Lee")
	testutil.CreateEvent(t, events, kim, "2024-03-15 07:40:00")

	tests := []cliTest{
		{name: "bad date", args: []string{"daily", "-date", "15/03/2024"}, wantErrStr: "invalid date, expected YYYY-MM-DD"},
		{name: "counts", args: []string{"daily", "-date", "2024-03-15"}, wantOut: "2024-03-15: present 0, late 1, absent 1 (total 2)\n"},
		{name: "empty day", args: []string{"daily", "-date", "2024-03-16"}, wantOut: "2024-03-16: present 0, late 0, absent 2 (total 2)\n"},
	}
	runCLITests(t, cli, out, tests)
}
