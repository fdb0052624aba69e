package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/jmoiron/sqlx"

	"github.com/checkcheck/backend/core/datetime"
	"github.com/checkcheck/backend/core/stats"
	"github.com/checkcheck/backend/core/student"
)

var errHelp = errors.New("help provided")

type commandLine struct {
	db       *sqlx.DB
	engine   string
	out      io.Writer
	students *student.Service
	stats    *stats.Service
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  migrate COMMAND [ARGS]                      - run a goose command (up, down, status, ...)")
	fmt.Fprintln(cli.out, "  addstudent -fid FID -number NUM -name NAME  - register a student")
	fmt.Fprintln(cli.out, "  students                                    - list registered students")
	fmt.Fprintln(cli.out, "  daily [-date YYYY-MM-DD]                    - print the attendance counts of a day")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	addStudentCmd := flag.NewFlagSet("addstudent", flag.ContinueOnError)
	addStudentCmd.SetOutput(cli.out)
	addStudentFid := addStudentCmd.String("fid", "", "The fingerprint id enrolled on the device.")
	addStudentNumber := addStudentCmd.String("number", "", "The 3 or 4 digit student number.")
	addStudentName := addStudentCmd.String("name", "", "The student's name.")

	dailyCmd := flag.NewFlagSet("daily", flag.ContinueOnError)
	dailyCmd.SetOutput(cli.out)
	dailyDate := dailyCmd.String("date", "", "The day to count (defaults to today).")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])

	case "addstudent":
		if err := addStudentCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addStudentFid == "" || *addStudentNumber == "" || *addStudentName == "" {
			addStudentCmd.Usage()
			return errHelp
		}
		return cli.addStudent(*addStudentFid, *addStudentNumber, *addStudentName)

	case "students":
		return cli.listStudents()

	case "daily":
		if err := dailyCmd.Parse(args[2:]); err != nil {
			return err
		}
		date := datetime.Today()
		if *dailyDate != "" {
			var err error
			if date, err = datetime.ParseDate(*dailyDate); err != nil {
				return err
			}
		}
		return cli.daily(date)

	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) addStudent(fid, number, name string) error {
	st, err := cli.students.Create(context.Background(), student.NewStudent{
		FingerprintID: fid,
		Number:        number,
		Name:          name,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "registered %s %s (fid %s)\n", st.Number, st.Name, st.FingerprintID)
	return nil
}

func (cli *commandLine) listStudents() error {
	students, err := cli.students.List(context.Background())
	if err != nil {
		return err
	}
	for _, st := range students {
		fmt.Fprintf(cli.out, "%s\t%s\t%s\n", st.Number, st.FingerprintID, st.Name)
	}
	return nil
}

func (cli *commandLine) daily(date datetime.Date) error {
	counts, err := cli.stats.DailyCounts(context.Background(), date)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "%s: present %d, late %d, absent %d (total %d)\n",
		counts.Date, counts.Present, counts.Late, counts.Absent, counts.Total)
	if counts.IntegrityWarning {
		fmt.Fprintln(cli.out, "warning: more check-ins than registered students")
	}
	return nil
}
