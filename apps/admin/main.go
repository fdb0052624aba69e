package main

import (
	"fmt"
	"log"
	"os"

	"github.com/checkcheck/backend/core"
	"github.com/checkcheck/backend/core/stats"
	"github.com/checkcheck/backend/core/student"
	logsvc "github.com/checkcheck/backend/services/logger"
	"github.com/checkcheck/backend/storage/database"
	"github.com/checkcheck/backend/storage/database/sqlx"
)

func main() {
	conf := core.NewConfig()

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	// set up DB
	db, err := database.Open(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("opening database: %v", err), err)
	}

	// start CLI
	timeout := conf.Database.QueryTimeout
	studentRepo := sqlxrepos.NewStudentRepository(db, timeout)
	cli := commandLine{
		db:       db,
		engine:   conf.Database.Engine,
		out:      os.Stdout,
		students: student.NewService(studentRepo, logger),
		stats:    stats.NewService(studentRepo, sqlxrepos.NewAttendanceRepository(db, timeout), logger),
	}
	err = cli.run(os.Args)
	_ = db.Close()
	logger.Close()
	if err != nil {
		if err != errHelp {
			fmt.Fprintf(os.Stderr, "\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}
