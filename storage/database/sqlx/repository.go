package sqlxrepos

import (
	"context"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/checkcheck/backend/core"
)

// repository holds what every sqlx repository needs: the default executor and the per-query timeout.
type repository struct {
	db      core.DB
	timeout time.Duration
}

func newRepository(db core.DB, timeout time.Duration) repository {
	return repository{db: db, timeout: timeout}
}

// executor picks the caller's transaction when there is one.
func (repo repository) executor(exec []core.DBExecutor) core.DBExecutor {
	if len(exec) > 0 && exec[0] != nil {
		return exec[0]
	}
	return repo.db
}

func (repo repository) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if repo.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, repo.timeout)
}

// insert runs an INSERT written with ? placeholders and returns the new row id.
func insert(ctx context.Context, exec core.DBExecutor, query string, args ...interface{}) (int64, error) {
	if exec.DriverName() == core.EnginePostgres {
		var id int64
		err := exec.QueryRowxContext(ctx, exec.Rebind(query+" RETURNING id"), args...).Scan(&id)
		return id, err
	}
	res, err := exec.ExecContext(ctx, exec.Rebind(query), args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// wrapErr wraps err with msg, flagging connection failures and timeouts as *core.StoreError.
func wrapErr(err error, msg string) error {
	if core.IsUnavailable(err) {
		return core.NewStoreError(errors.Wrap(err, msg))
	}
	return errors.Wrap(err, msg)
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == 1062
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code()&0xff == sqlite3.SQLITE_CONSTRAINT && strings.Contains(liteErr.Error(), "UNIQUE")
	}
	return false
}
