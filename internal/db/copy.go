package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"
)

// Match selects the rows a bulk load replaces.
type Match struct {
	Column string
	Value  any
}

// ReplaceRows deletes the rows of table matching m and bulk-inserts rows in
// their place using the COPY protocol, all in one transaction.
func ReplaceRows(ctx context.Context, pool Pool, table string, m Match, columns []string, rows [][]any) (int64, error) {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return 0, eris.Wrap(err, "db: begin tx")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	del := fmt.Sprintf("DELETE FROM %s WHERE %s = $1",
		pgx.Identifier{table}.Sanitize(), pgx.Identifier{m.Column}.Sanitize())
	if _, err := tx.Exec(ctx, del, m.Value); err != nil {
		return 0, eris.Wrapf(err, "db: clear %s", table)
	}

	var n int64
	if len(rows) > 0 {
		n, err = tx.CopyFrom(ctx, pgx.Identifier{table}, columns, pgx.CopyFromRows(rows))
		if err != nil {
			return 0, eris.Wrapf(err, "db: COPY INTO %s", table)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, eris.Wrap(err, "db: commit")
	}
	return n, nil
}
