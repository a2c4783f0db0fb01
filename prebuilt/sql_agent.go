package prebuilt

import (
	"errors"
	"fmt"

	"github.com/pilgrim-ai/pilgrim/graph"
	"github.com/pilgrim-ai/pilgrim/tool"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/tools"
)

// NodeLLMWithSQLTools is the entry node of the SQL agent.
const NodeLLMWithSQLTools = "llm_with_sql_tools"

// ErrMissingTool is returned when a toolkit lacks one of the SQL tools.
var ErrMissingTool = errors.New("toolkit is missing a required tool")

// SQLToolkit provides the database tools of the SQL agent.
type SQLToolkit interface {
	Tools() []tools.Tool
	Dialect() string
}

// SQLTopK is the default number of rows the agent is told to ask for.
const SQLTopK = 5

const sqlSystemPrompt = `You are an agent designed to interact with a SQL database.
Given an input question, create a syntactically correct %[1]s query to run, then look at the results of the query and return the answer.
Unless the user specifies a specific number of examples they wish to obtain, always limit your query to at most %[2]d results.
You can order the results by a relevant column to return the most interesting examples in the database.
Never query for all the columns from a specific table, only ask for the relevant columns given the question.
You have access to tools for interacting with the database.
Only use the below tools. Only use the information returned by the below tools to construct your final answer.
You MUST double check your query before executing it. If you get an error while executing a query, rewrite the query and try again.

DO NOT make any DML statements (INSERT, UPDATE, DELETE, DROP etc.) to the database.

To start you should ALWAYS look at the tables in the database to see what you can query.
Do NOT skip this step.
Then you should query the schema of the most relevant tables.`

// SQLSystemPrompt returns the system instruction of the SQL agent for a dialect.
func SQLSystemPrompt(dialect string) string {
	if dialect == "" {
		dialect = "SQL"
	}
	return fmt.Sprintf(sqlSystemPrompt, dialect, SQLTopK)
}

// NewSQLAgent builds the SQL agent graph: "llm_with_sql_tools" answers the
// question, calling the toolkit's list tables, schema, query checker and query
// tools through the "tools" node until it produces a final answer.
// WithExplanation adds the "explain" node after tool-assisted answers.
func NewSQLAgent(model llms.Model, toolkit SQLToolkit, opts ...AgentOption) (*graph.CompiledGraph, error) {
	cfg := agentConfig{systemMessage: SQLSystemPrompt(toolkit.Dialect())}
	for _, opt := range opts {
		opt(&cfg)
	}

	byName := make(map[string]tools.Tool)
	for _, t := range toolkit.Tools() {
		byName[t.Name()] = t
	}

	var sqlTools []tools.Tool
	for _, name := range []string{
		tool.ListTablesToolName,
		tool.SchemaToolName,
		tool.QueryCheckerToolName,
		tool.QueryToolName,
	} {
		t, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingTool, name)
		}
		sqlTools = append(sqlTools, t)
	}

	return buildToolAgent(NodeLLMWithSQLTools, "tool-aware model with SQL tools", model, sqlTools, cfg)
}
