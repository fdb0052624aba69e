package database

import (
	"context"
	"database/sql"
	"embed"
	"path"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/checkcheck/backend/core"
)

//go:embed migrations
var migrations embed.FS

// gooseDialects maps engines to goose dialects.
var gooseDialects = map[string]string{
	core.EnginePostgres: "postgres",
	core.EngineMySQL:    "mysql",
	core.EngineSQLite:   "sqlite3",
}

func init() {
	// modernc.org/sqlite registers as "sqlite", which sqlx does not know.
	sqlx.BindDriver(core.EngineSQLite, sqlx.QUESTION)
}

// Open opens and pings the configured database.
func Open(conf *core.Config) (*sqlx.DB, error) {
	if _, ok := gooseDialects[conf.Database.Engine]; !ok {
		return nil, errors.Errorf("unsupported database engine %q", conf.Database.Engine)
	}
	db, err := sqlx.Open(conf.Database.Engine, conf.Database.DSN())
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}
	if conf.Database.MaxOpenConns > 0 {
		db.SetMaxOpenConns(conf.Database.MaxOpenConns)
	}
	if conf.Database.Engine == core.EngineSQLite && conf.Database.Path == "" {
		// every connection to :memory: gets its own empty database
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
	}

	if err = ping(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// ping waits for the database to be ready. Waits 100ms longer between each attempt.
func ping(db *sqlx.DB) error {
	var err error
	maxAttempts := 30
	for attempts := 1; attempts <= maxAttempts; attempts++ {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		err = db.PingContext(ctx)
		cancel()
		if err == nil {
			break
		}
		time.Sleep(time.Duration(attempts) * 100 * time.Millisecond)
	}

	if err != nil {
		return errors.Wrap(err, "DB ping timeout")
	}
	return nil
}

// MigrationsDir returns the embedded migrations directory of engine, and prepares goose for it.
func MigrationsDir(engine string) (string, error) {
	dialect, ok := gooseDialects[engine]
	if !ok {
		return "", errors.Errorf("unsupported database engine %q", engine)
	}
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect(dialect); err != nil {
		return "", errors.Wrap(err, "setting migration dialect")
	}
	return path.Join("migrations", engine), nil
}

// Run runs a goose command (up, down, status, ...) against db.
func Run(command string, db *sql.DB, engine string, args ...string) error {
	dir, err := MigrationsDir(engine)
	if err != nil {
		return err
	}
	if err = goose.Run(command, db, dir, args...); err != nil {
		return errors.Wrapf(err, "running migration command %q", command)
	}
	return nil
}

// Migrate brings the schema up to date.
func Migrate(db *sqlx.DB, engine string) error {
	return Run("up", db.DB, engine)
}
