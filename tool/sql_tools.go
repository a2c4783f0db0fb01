package tool

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
)

// Names of the SQL tools.
const (
	ListTablesToolName   = "sql_db_list_tables"
	SchemaToolName       = "sql_db_schema"
	QueryCheckerToolName = "sql_db_query_checker"
	QueryToolName        = "sql_db_query"
)

func stringParameter(name, description string) map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			name: map[string]any{
				"type":        "string",
				"description": description,
			},
		},
		"required":             []string{name},
		"additionalProperties": false,
	}
}

// ListTablesTool lists the tables of the database.
type ListTablesTool struct {
	db Database
}

// Name implements tools.Tool.
func (t *ListTablesTool) Name() string {
	return ListTablesToolName
}

// Description implements tools.Tool.
func (t *ListTablesTool) Description() string {
	return "Input is an empty string, output is a comma-separated list of tables in the database."
}

// Parameters returns the JSON schema of the tool input.
func (t *ListTablesTool) Parameters() map[string]any {
	return stringParameter("input", "An empty string")
}

// Call implements tools.Tool.
func (t *ListTablesTool) Call(ctx context.Context, _ string) (string, error) {
	names, err := t.db.TableNames(ctx)
	if err != nil {
		return "", err
	}
	return strings.Join(names, ", "), nil
}

// SchemaTool describes tables and shows sample rows.
type SchemaTool struct {
	db Database
}

// Name implements tools.Tool.
func (t *SchemaTool) Name() string {
	return SchemaToolName
}

// Description implements tools.Tool.
func (t *SchemaTool) Description() string {
	return "Input to this tool is a comma-separated list of tables, output is the schema and sample rows for those tables. " +
		"Be sure that the tables actually exist by calling " + ListTablesToolName + " first! " +
		"Example Input: table1, table2, table3"
}

// Parameters returns the JSON schema of the tool input.
func (t *SchemaTool) Parameters() map[string]any {
	return stringParameter("table_names", "A comma-separated list of the table names for which to return the schema")
}

// Call implements tools.Tool.
func (t *SchemaTool) Call(ctx context.Context, input string) (string, error) {
	tables := ParseTableNames(input)
	if len(tables) == 0 {
		return "", fmt.Errorf("%w: no table names given", ErrTableNotFound)
	}
	return t.db.TableInfo(ctx, tables)
}

const queryCheckerPrompt = `%s
Double check the %s query above for common mistakes, including:
- Using NOT IN with NULL values
- Using UNION when UNION ALL should have been used
- Using BETWEEN for exclusive ranges
- Data type mismatch in predicates
- Properly quoting identifiers
- Using the correct number of arguments for functions
- Casting to the correct data type
- Using the proper columns for joins

If there are any of the above mistakes, rewrite the query. If there are no mistakes, just reproduce the original query.

Output the final SQL query only.

SQL Query: `

// QueryCheckerTool asks a model to review a query before it is executed.
type QueryCheckerTool struct {
	llm     llms.Model
	dialect string
}

// Name implements tools.Tool.
func (t *QueryCheckerTool) Name() string {
	return QueryCheckerToolName
}

// Description implements tools.Tool.
func (t *QueryCheckerTool) Description() string {
	return "Use this tool to double check if your query is correct before executing it. " +
		"Always use this tool before executing a query with " + QueryToolName + "!"
}

// Parameters returns the JSON schema of the tool input.
func (t *QueryCheckerTool) Parameters() map[string]any {
	return stringParameter("query", "A detailed and SQL query to be checked")
}

// Call implements tools.Tool.
func (t *QueryCheckerTool) Call(ctx context.Context, input string) (string, error) {
	if strings.TrimSpace(input) == "" {
		return "", ErrEmptyQuery
	}
	out, err := llms.GenerateFromSinglePrompt(ctx, t.llm, fmt.Sprintf(queryCheckerPrompt, input, t.dialect))
	if err != nil {
		return "", fmt.Errorf("query check failed: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// QueryTool executes a query and returns the rows as text.
type QueryTool struct {
	db       Database
	readOnly bool
	maxRows  int
}

// Name implements tools.Tool.
func (t *QueryTool) Name() string {
	return QueryToolName
}

// Description implements tools.Tool.
func (t *QueryTool) Description() string {
	return "Input to this tool is a detailed and correct SQL query, output is a result from the database. " +
		"If the query is not correct, an error message will be returned. " +
		"If an error is returned, rewrite the query, check the query, and try again. " +
		"If you encounter an issue with Unknown column 'xxxx' in 'field list', use " + SchemaToolName + " to query the correct table fields."
}

// Parameters returns the JSON schema of the tool input.
func (t *QueryTool) Parameters() map[string]any {
	return stringParameter("query", "A detailed and correct SQL query")
}

// Call implements tools.Tool.
func (t *QueryTool) Call(ctx context.Context, input string) (string, error) {
	query := strings.TrimSpace(input)
	if query == "" {
		return "", ErrEmptyQuery
	}
	if t.readOnly && !IsReadOnlyQuery(query) {
		return "", ErrWriteStatement
	}

	res, err := t.db.Query(ctx, query)
	if err != nil {
		return "", fmt.Errorf("query failed: %w", err)
	}
	if t.maxRows > 0 && len(res.Rows) > t.maxRows {
		total := len(res.Rows)
		res.Rows = res.Rows[:t.maxRows]
		return fmt.Sprintf("%s\n(%d of %d rows)", res, t.maxRows, total), nil
	}
	return res.String(), nil
}
