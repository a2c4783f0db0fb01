// Pilgrim - graph-routed SQL agents in Go
//
// Pilgrim answers natural-language questions about a SQL database. A chat
// model that can call SQL tools is placed in a small directed graph; an
// execution engine walks the graph, merging every node's output into a shared
// state until the model answers or a step limit is hit.
//
// # Quick Start
//
//	package main
//
//	import (
//		"context"
//		"fmt"
//
//		"github.com/pilgrim-ai/pilgrim/graph"
//		"github.com/pilgrim-ai/pilgrim/prebuilt"
//		"github.com/pilgrim-ai/pilgrim/tool"
//		"github.com/tmc/langchaingo/llms"
//		"github.com/tmc/langchaingo/llms/openai"
//	)
//
//	func main() {
//		llm, _ := openai.New()
//		db, _ := tool.OpenSQLite("chinook.db")
//		toolkit, _ := tool.NewSQLToolkit(db, llm)
//		defer toolkit.Close()
//
//		agent, _ := prebuilt.NewSQLAgent(llm, toolkit, prebuilt.WithExplanation())
//
//		state, err := agent.Invoke(context.Background(),
//			graph.NewMessagesState(llms.TextParts(llms.ChatMessageTypeHuman, "Which artist has the most albums?")),
//			graph.WithMaxSteps(25),
//		)
//		if err != nil {
//			panic(err)
//		}
//		last, _ := state.LastMessage()
//		fmt.Println(prebuilt.MessageText(last))
//	}
//
// # Package Structure
//
// graph/
// State, nodes, fixed and conditional edges, the compile-time checks and the
// execution engine. Listeners observe runs (logging, OpenTelemetry, streaming)
// and the exporter draws graphs as Mermaid, DOT, ASCII or PNG.
//
// prebuilt/
// Model and tool nodes, routers, and the SQL and ReAct agent graphs.
//
// tool/
// The SQL toolkit: list tables, describe schema, check query, run query, over
// SQLite (go-sqlite3) or PostgreSQL (pgx).
//
// llms/openai/
// A langchaingo llms.Model backed by github.com/sashabaranov/go-openai.
//
// store/
// Run records and their stores: in memory, SQLite, PostgreSQL and Redis. A
// store.Recorder saves every finished run.
//
// report/
// Markdown, HTML and terminal renderings of a run.
//
// config/
// Layered configuration from defaults, YAML, .env and PILGRIM_* variables.
//
// log/
// The logger interface with standard library and golog implementations.
//
// cmd/pilgrim/
// The command line client.
package pilgrim // import "github.com/pilgrim-ai/pilgrim"
