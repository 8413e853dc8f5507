package db

import (
	"context"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var areas = Match{Column: "collection", Value: "countries"}

func TestReplaceRows_Success(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "areas" WHERE "collection" = \$1`).
		WithArgs("countries").
		WillReturnResult(pgxmock.NewResult("DELETE", 2))
	mock.ExpectCopyFrom(pgx.Identifier{"areas"}, []string{"collection", "name"}).WillReturnResult(3)
	mock.ExpectCommit()

	rows := [][]any{{"countries", "a"}, {"countries", "b"}, {"countries", "c"}}
	n, err := ReplaceRows(context.Background(), mock, "areas", areas, []string{"collection", "name"}, rows)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReplaceRows_EmptyRowsOnlyClears(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "areas"`).
		WithArgs("countries").
		WillReturnResult(pgxmock.NewResult("DELETE", 5))
	mock.ExpectCommit()

	n, err := ReplaceRows(context.Background(), mock, "areas", areas, []string{"collection"}, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReplaceRows_CopyErrorRollsBack(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "areas"`).
		WithArgs("countries").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectCopyFrom(pgx.Identifier{"areas"}, []string{"collection"}).WillReturnError(fmt.Errorf("copy failed"))
	mock.ExpectRollback()

	_, err = ReplaceRows(context.Background(), mock, "areas", areas, []string{"collection"}, [][]any{{"countries"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "COPY INTO areas")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReplaceRows_BeginError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin().WillReturnError(fmt.Errorf("no connection"))

	_, err = ReplaceRows(context.Background(), mock, "areas", areas, []string{"collection"}, nil)
	assert.ErrorContains(t, err, "begin tx")
	assert.NoError(t, mock.ExpectationsWereMet())
}
