package tool

import (
	"errors"

	"github.com/pilgrim-ai/pilgrim/log"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/tools"
)

// SQLToolkit bundles the SQL tools around one database.
type SQLToolkit struct {
	db       Database
	llm      llms.Model
	readOnly bool
	maxRows  int
	logger   log.Logger
}

// ToolkitOption configures a SQLToolkit.
type ToolkitOption func(*SQLToolkit)

// WithReadOnly makes the query tool reject statements that modify data.
func WithReadOnly(readOnly bool) ToolkitOption {
	return func(k *SQLToolkit) {
		k.readOnly = readOnly
	}
}

// WithMaxRows truncates query results to n rows. Zero keeps every row.
func WithMaxRows(n int) ToolkitOption {
	return func(k *SQLToolkit) {
		k.maxRows = n
	}
}

// WithLogger sets the logger of the toolkit.
func WithLogger(logger log.Logger) ToolkitOption {
	return func(k *SQLToolkit) {
		k.logger = logger
	}
}

// NewSQLToolkit creates a toolkit over db. llm is used by the query checker.
func NewSQLToolkit(db Database, llm llms.Model, opts ...ToolkitOption) (*SQLToolkit, error) {
	if db == nil {
		return nil, errors.New("database is required")
	}
	if llm == nil {
		return nil, errors.New("model is required for the query checker")
	}

	k := &SQLToolkit{
		db:       db,
		llm:      llm,
		readOnly: true,
	}
	for _, opt := range opts {
		opt(k)
	}
	if k.logger == nil {
		k.logger = log.Default()
	}
	k.logger.Debug("sql toolkit ready (dialect %s, read-only %v)", db.Dialect(), k.readOnly)
	return k, nil
}

// Dialect returns the SQL dialect of the database.
func (k *SQLToolkit) Dialect() string {
	return k.db.Dialect()
}

// Database returns the wrapped database.
func (k *SQLToolkit) Database() Database {
	return k.db
}

// Tools returns the list tables, schema, query checker and query tools, in that order.
func (k *SQLToolkit) Tools() []tools.Tool {
	return []tools.Tool{
		&ListTablesTool{db: k.db},
		&SchemaTool{db: k.db},
		&QueryCheckerTool{llm: k.llm, dialect: k.db.Dialect()},
		&QueryTool{db: k.db, readOnly: k.readOnly, maxRows: k.maxRows},
	}
}

// ToolMap returns the tools keyed by name.
func (k *SQLToolkit) ToolMap() map[string]tools.Tool {
	m := make(map[string]tools.Tool)
	for _, t := range k.Tools() {
		m[t.Name()] = t
	}
	return m
}

// Close closes the database.
func (k *SQLToolkit) Close() error {
	return k.db.Close()
}
