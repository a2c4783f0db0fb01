package tool

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteDatabase implements Database on a SQLite file through mattn/go-sqlite3.
type SQLiteDatabase struct {
	db         *sql.DB
	sampleRows int
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	sampleRows int
	schema     string
}

// WithSampleRows sets how many sample rows TableInfo includes (default 3).
// Zero disables sample rows.
func WithSampleRows(n int) DatabaseOption {
	return func(o *databaseOptions) {
		o.sampleRows = n
	}
}

// WithSchema sets the PostgreSQL schema to inspect (default "public").
func WithSchema(schema string) DatabaseOption {
	return func(o *databaseOptions) {
		o.schema = schema
	}
}

func newDatabaseOptions(opts []DatabaseOption) databaseOptions {
	o := databaseOptions{sampleRows: 3, schema: "public"}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// OpenSQLite opens the SQLite database at dsn.
func OpenSQLite(dsn string, opts ...DatabaseOption) (*SQLiteDatabase, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// In-memory databases exist per connection.
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return NewSQLiteDatabase(db, opts...), nil
}

// NewSQLiteDatabase wraps an existing connection.
func NewSQLiteDatabase(db *sql.DB, opts ...DatabaseOption) *SQLiteDatabase {
	o := newDatabaseOptions(opts)
	return &SQLiteDatabase{db: db, sampleRows: o.sampleRows}
}

// DB returns the underlying connection.
func (s *SQLiteDatabase) DB() *sql.DB {
	return s.db
}

// Dialect implements Database.
func (s *SQLiteDatabase) Dialect() string {
	return "SQLite"
}

// TableNames implements Database.
func (s *SQLiteDatabase) TableNames(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan table name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// TableInfo implements Database.
func (s *SQLiteDatabase) TableInfo(ctx context.Context, tables []string) (string, error) {
	var parts []string
	for _, table := range tables {
		var ddl string
		err := s.db.QueryRowContext(ctx,
			"SELECT sql FROM sqlite_master WHERE type = 'table' AND name = ?", table).Scan(&ddl)
		if err == sql.ErrNoRows {
			return "", fmt.Errorf("%w: %s", ErrTableNotFound, table)
		}
		if err != nil {
			return "", fmt.Errorf("failed to describe table %s: %w", table, err)
		}

		info := ddl
		if s.sampleRows > 0 {
			sample, err := s.Query(ctx, fmt.Sprintf("SELECT * FROM %s LIMIT %d", quoteIdent(table), s.sampleRows))
			if err != nil {
				return "", fmt.Errorf("failed to sample table %s: %w", table, err)
			}
			info += "\n\n" + sampleRowsComment(table, sample)
		}
		parts = append(parts, info)
	}
	return strings.Join(parts, "\n\n\n"), nil
}

// Query implements Database.
func (s *SQLiteDatabase) Query(ctx context.Context, query string) (*QueryResult, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	res := &QueryResult{Columns: columns}
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		res.Rows = append(res.Rows, values)
	}
	return res, rows.Err()
}

// Close implements Database.
func (s *SQLiteDatabase) Close() error {
	return s.db.Close()
}
