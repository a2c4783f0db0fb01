package tool

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DBPool defines the interface for database connection pool
type DBPool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Close()
}

// PostgresDatabase implements Database on PostgreSQL through pgx.
type PostgresDatabase struct {
	pool       DBPool
	schema     string
	sampleRows int
}

// OpenPostgres creates a connection pool for connString.
func OpenPostgres(ctx context.Context, connString string, opts ...DatabaseOption) (*PostgresDatabase, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}
	return NewPostgresDatabaseWithPool(pool, opts...), nil
}

// NewPostgresDatabaseWithPool creates a database with an existing pool.
// Useful for testing with mocks
func NewPostgresDatabaseWithPool(pool DBPool, opts ...DatabaseOption) *PostgresDatabase {
	o := newDatabaseOptions(opts)
	return &PostgresDatabase{pool: pool, schema: o.schema, sampleRows: o.sampleRows}
}

// Dialect implements Database.
func (p *PostgresDatabase) Dialect() string {
	return "PostgreSQL"
}

// TableNames implements Database.
func (p *PostgresDatabase) TableNames(ctx context.Context) ([]string, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT table_name FROM information_schema.tables
		WHERE table_schema = $1 AND table_type = 'BASE TABLE'
		ORDER BY table_name`, p.schema)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	names, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to scan table names: %w", err)
	}
	return names, nil
}

type columnInfo struct {
	Name     string
	DataType string
	Nullable string
}

// TableInfo implements Database. PostgreSQL has no stored CREATE statement,
// so one is assembled from information_schema.columns.
func (p *PostgresDatabase) TableInfo(ctx context.Context, tables []string) (string, error) {
	var parts []string
	for _, table := range tables {
		rows, err := p.pool.Query(ctx, `
			SELECT column_name, data_type, is_nullable FROM information_schema.columns
			WHERE table_schema = $1 AND table_name = $2
			ORDER BY ordinal_position`, p.schema, table)
		if err != nil {
			return "", fmt.Errorf("failed to describe table %s: %w", table, err)
		}
		columns, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (columnInfo, error) {
			var c columnInfo
			err := row.Scan(&c.Name, &c.DataType, &c.Nullable)
			return c, err
		})
		if err != nil {
			return "", fmt.Errorf("failed to describe table %s: %w", table, err)
		}
		if len(columns) == 0 {
			return "", fmt.Errorf("%w: %s", ErrTableNotFound, table)
		}

		var defs []string
		for _, c := range columns {
			def := "\t" + quoteIdent(c.Name) + " " + strings.ToUpper(c.DataType)
			if c.Nullable == "NO" {
				def += " NOT NULL"
			}
			defs = append(defs, def)
		}
		info := fmt.Sprintf("CREATE TABLE %s (\n%s\n)", quoteIdent(table), strings.Join(defs, ",\n"))

		if p.sampleRows > 0 {
			sample, err := p.Query(ctx, fmt.Sprintf("SELECT * FROM %s.%s LIMIT %d",
				quoteIdent(p.schema), quoteIdent(table), p.sampleRows))
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
func (p *PostgresDatabase) Query(ctx context.Context, query string) (*QueryResult, error) {
	rows, err := p.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	res := &QueryResult{}
	for _, fd := range rows.FieldDescriptions() {
		res.Columns = append(res.Columns, fd.Name)
	}
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, err
		}
		res.Rows = append(res.Rows, values)
	}
	return res, rows.Err()
}

// Close implements Database.
func (p *PostgresDatabase) Close() error {
	p.pool.Close()
	return nil
}
