package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"os"

	echoapi "github.com/checkcheck/backend/apps/api/echo"
	"github.com/checkcheck/backend/core"
	"github.com/checkcheck/backend/core/attendance"
	"github.com/checkcheck/backend/core/ledger"
	"github.com/checkcheck/backend/core/stats"
	"github.com/checkcheck/backend/core/student"
	logsvc "github.com/checkcheck/backend/services/logger"
	"github.com/checkcheck/backend/storage/database"
	"github.com/checkcheck/backend/storage/database/sqlx"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	// set up loggers
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)
	defer logger.Close()

	dbLogger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	dbLogger.Enable(!conf.Debug)

	// set up DB
	db, err := database.Open(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("opening database: %v", err), err)
	}
	defer func() {
		if err = db.Close(); err != nil {
			dbLogger.Error("Failed to close", err)
		}
	}()
	if err = database.Migrate(db, conf.Database.Engine); err != nil {
		dbLogger.Fatal(fmt.Sprintf("migrating database: %v", err), err)
	}

	// set up repos & services
	timeout := conf.Database.QueryTimeout
	studentRepo := sqlxrepos.NewStudentRepository(db, timeout)
	eventRepo := sqlxrepos.NewAttendanceRepository(db, timeout)
	ledgerRepo := sqlxrepos.NewLedgerRepository(db, timeout)

	server := echoapi.NewServer(echoapi.ServerDeps{
		Conf:          conf,
		Logger:        logger,
		StudentSvc:    student.NewService(studentRepo, logger),
		AttendanceSvc: attendance.NewService(eventRepo, studentRepo, logger),
		LedgerSvc:     ledger.NewService(db, ledgerRepo, eventRepo, studentRepo, logger),
		StatsSvc:      stats.NewService(studentRepo, eventRepo, logger),
	})

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	// Expose important info under /debug/vars.
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)
	expvar.NewString("dbEngine").Set(conf.Database.Engine)

	// =========================================================================
	// Start API Service

	go server.Start()

	// =========================================================================
	// Shutdown

	select {
	case err := <-server.Errors():
		logger.Error(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shut down and shed load
		if err := server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Error(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}
