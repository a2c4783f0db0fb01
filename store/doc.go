// Package store persists the outcome of agent runs.
//
// A RunRecord captures one run: the question, the final answer, the status,
// the number of executed steps and the complete message log encoded as JSON
// friendly parts. Implementations of RunStore live in sub packages:
//   - memory: in-process map, useful for tests and one-shot CLI runs
//   - sqlite: single file database through mattn/go-sqlite3
//   - postgres: PostgreSQL through jackc/pgx
//   - redis: Redis through redis/go-redis, with optional expiration
//
// # Recording runs
//
// NewRecorder returns a graph.NodeListener that saves a record whenever a run
// ends, successfully or not:
//
//	runs := memory.NewMemoryRunStore()
//	recorder := store.NewRecorder(runs, logger)
//
//	final, err := agent.Invoke(ctx, state, graph.WithListeners(recorder))
//
//	record, err := runs.Load(ctx, runID)
//	fmt.Println(record.Answer)
package store
