package sqlxrepos

import (
	"context"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/checkcheck/backend/core"
	"github.com/checkcheck/backend/core/datetime"
	"github.com/checkcheck/backend/core/ledger"
)

const entryColumns = "id, fingerprint_id, name, student_number, transacted_at, original_timestamp, " +
	"modified_timestamp, operation, reason, actor"

type ledgerRepository struct {
	repository
}

var _ ledger.Repository = (*ledgerRepository)(nil)

func NewLedgerRepository(db core.DB, timeout time.Duration) *ledgerRepository {
	return &ledgerRepository{repository: newRepository(db, timeout)}
}

// entryRow is the correction_ledger row; original_timestamp is NULL for additions.
type entryRow struct {
	ID                int64              `db:"id"`
	FingerprintID     string             `db:"fingerprint_id"`
	Name              string             `db:"name"`
	StudentNumber     string             `db:"student_number"`
	TransactedAt      datetime.Timestamp `db:"transacted_at"`
	OriginalTimestamp null.String        `db:"original_timestamp"`
	ModifiedTimestamp datetime.Timestamp `db:"modified_timestamp"`
	Operation         string             `db:"operation"`
	Reason            string             `db:"reason"`
	Actor             string             `db:"actor"`
}

func (row entryRow) entry() (ledger.Entry, error) {
	var original datetime.Timestamp
	if row.OriginalTimestamp.Valid {
		if err := original.Scan(row.OriginalTimestamp.String); err != nil {
			return ledger.Entry{}, err
		}
	}
	return ledger.Entry{
		ID:                row.ID,
		FingerprintID:     row.FingerprintID,
		Name:              row.Name,
		StudentNumber:     row.StudentNumber,
		TransactedAt:      row.TransactedAt,
		OriginalTimestamp: original,
		ModifiedTimestamp: row.ModifiedTimestamp,
		Operation:         ledger.Operation(row.Operation),
		Reason:            row.Reason,
		Actor:             row.Actor,
	}, nil
}

func (repo ledgerRepository) AppendEntry(ctx context.Context, e ledger.Entry, exec ...core.DBExecutor) (ledger.Entry, error) {
	ctx, cancel := repo.withTimeout(ctx)
	defer cancel()

	original := null.NewString(e.OriginalTimestamp.String(), !e.OriginalTimestamp.IsZero())
	id, err := insert(ctx, repo.executor(exec),
		"INSERT INTO correction_ledger (fingerprint_id, name, student_number, transacted_at, original_timestamp, "+
			"modified_timestamp, operation, reason, actor) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		e.FingerprintID, e.Name, e.StudentNumber, e.TransactedAt, original,
		e.ModifiedTimestamp, string(e.Operation), e.Reason, e.Actor,
	)
	if err != nil {
		return ledger.Entry{}, wrapErr(err, "inserting correction log entry")
	}
	e.ID = id
	return e, nil
}

func (repo ledgerRepository) QueryEntries(ctx context.Context, from, to datetime.Timestamp, exec ...core.DBExecutor) ([]ledger.Entry, error) {
	ctx, cancel := repo.withTimeout(ctx)
	defer cancel()

	ex := repo.executor(exec)
	var rows []entryRow
	err := ex.SelectContext(ctx, &rows, ex.Rebind(
		"SELECT "+entryColumns+" FROM correction_ledger WHERE transacted_at >= ? AND transacted_at < ? "+
			"ORDER BY transacted_at DESC, id DESC",
	), from, to)
	if err != nil {
		return nil, wrapErr(err, "selecting correction log entries")
	}

	entries := make([]ledger.Entry, 0, len(rows))
	for _, row := range rows {
		e, err := row.entry()
		if err != nil {
			return nil, wrapErr(err, "reading correction log entry")
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func (repo ledgerRepository) QueryMonths(ctx context.Context, exec ...core.DBExecutor) ([]datetime.YearMonth, error) {
	ctx, cancel := repo.withTimeout(ctx)
	defer cancel()

	var raw []string
	err := repo.executor(exec).SelectContext(ctx, &raw,
		"SELECT DISTINCT SUBSTR(transacted_at, 1, 7) AS month FROM correction_ledger ORDER BY month DESC",
	)
	if err != nil {
		return nil, wrapErr(err, "selecting correction months")
	}

	months := make([]datetime.YearMonth, 0, len(raw))
	for _, s := range raw {
		ym, err := datetime.ParseYearMonth(s)
		if err != nil {
			return nil, wrapErr(err, "reading correction month")
		}
		months = append(months, ym)
	}
	return months, nil
}
