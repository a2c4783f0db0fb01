package tool

import (
	"context"
	"regexp"
	"testing"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresTableNames(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	db := NewPostgresDatabaseWithPool(mock)

	mock.ExpectQuery(regexp.QuoteMeta("FROM information_schema.tables")).
		WithArgs("public").
		WillReturnRows(pgxmock.NewRows([]string{"table_name"}).AddRow("albums").AddRow("artists"))

	names, err := db.TableNames(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"albums", "artists"}, names)
	assert.Equal(t, "PostgreSQL", db.Dialect())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresTableInfo(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	db := NewPostgresDatabaseWithPool(mock, WithSchema("music"), WithSampleRows(1))

	mock.ExpectQuery(regexp.QuoteMeta("FROM information_schema.columns")).
		WithArgs("music", "artists").
		WillReturnRows(pgxmock.NewRows([]string{"column_name", "data_type", "is_nullable"}).
			AddRow("id", "integer", "NO").
			AddRow("name", "text", "YES"))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "music"."artists" LIMIT 1`)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name"}).AddRow(int32(1), "AC/DC"))

	info, err := db.TableInfo(context.Background(), []string{"artists"})
	require.NoError(t, err)
	assert.Contains(t, info, `CREATE TABLE "artists" (`)
	assert.Contains(t, info, `"id" INTEGER NOT NULL`)
	assert.Contains(t, info, `"name" TEXT`)
	assert.Contains(t, info, "1 rows from artists table:")
	assert.Contains(t, info, "1\tAC/DC")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresTableInfoMissingTable(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	db := NewPostgresDatabaseWithPool(mock)

	mock.ExpectQuery(regexp.QuoteMeta("FROM information_schema.columns")).
		WithArgs("public", "ghosts").
		WillReturnRows(pgxmock.NewRows([]string{"column_name", "data_type", "is_nullable"}))

	_, err = db.TableInfo(context.Background(), []string{"ghosts"})
	assert.ErrorIs(t, err, ErrTableNotFound)
}

func TestPostgresQuery(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	db := NewPostgresDatabaseWithPool(mock)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT name, total FROM invoices")).
		WillReturnRows(pgxmock.NewRows([]string{"name", "total"}).
			AddRow("Alice", 12.5).
			AddRow("Bob", nil))

	res, err := db.Query(context.Background(), "SELECT name, total FROM invoices")
	require.NoError(t, err)
	assert.Equal(t, "name | total\nAlice | 12.5\nBob | NULL", res.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}
