package tool

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrTableNotFound is returned when a requested table does not exist.
	ErrTableNotFound = errors.New("table not found")

	// ErrWriteStatement is returned by a read-only toolkit for statements that modify data.
	ErrWriteStatement = errors.New("only read-only statements are allowed")

	// ErrEmptyQuery is returned when a query tool receives no SQL.
	ErrEmptyQuery = errors.New("empty query")
)

// Database is the read access the SQL tools need.
type Database interface {
	// Dialect names the SQL dialect, e.g. "SQLite" or "PostgreSQL".
	Dialect() string

	// TableNames lists the user tables, sorted.
	TableNames(ctx context.Context) ([]string, error)

	// TableInfo describes the given tables: their definition and a few sample rows.
	TableInfo(ctx context.Context, tables []string) (string, error)

	// Query runs a statement and returns all of its rows.
	Query(ctx context.Context, query string) (*QueryResult, error)

	Close() error
}

// QueryResult holds the rows returned by a query.
type QueryResult struct {
	Columns []string
	Rows    [][]any
}

// String renders the result as a pipe separated table with a header line.
// An empty result renders as an empty string.
func (r *QueryResult) String() string {
	if r == nil || len(r.Rows) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(strings.Join(r.Columns, " | "))
	for _, row := range r.Rows {
		sb.WriteByte('\n')
		for i, v := range row {
			if i > 0 {
				sb.WriteString(" | ")
			}
			sb.WriteString(formatValue(v))
		}
	}
	return sb.String()
}

func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return string(x)
	case string:
		return x
	case time.Time:
		return x.Format(time.RFC3339)
	default:
		return fmt.Sprint(x)
	}
}

// quoteIdent quotes an identifier for SQLite and PostgreSQL.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// sampleRowsComment formats sample rows the way they are appended to a schema.
func sampleRowsComment(table string, res *QueryResult) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "/*\n%d rows from %s table:\n", len(res.Rows), table)
	sb.WriteString(strings.Join(res.Columns, "\t"))
	for _, row := range res.Rows {
		sb.WriteByte('\n')
		for i, v := range row {
			if i > 0 {
				sb.WriteByte('\t')
			}
			s := formatValue(v)
			if len(s) > 100 {
				s = s[:100]
			}
			sb.WriteString(s)
		}
	}
	sb.WriteString("\n*/")
	return sb.String()
}

// ParseTableNames splits a comma separated list of table names.
func ParseTableNames(input string) []string {
	var names []string
	for _, name := range strings.Split(input, ",") {
		name = strings.Trim(strings.TrimSpace(name), "`\"'[]")
		if name != "" {
			names = append(names, name)
		}
	}
	return names
}
