// Package log is the leveled logging interface used across pilgrim, backed by
// github.com/kataras/golog.
//
//	logger := log.NewGologLogger("[pilgrim] ", log.LevelDebug)
//	logger.Info("running %s", "llm_with_sql_tools")
//
// Components that take a Logger fall back to Default when given nil; pass
// Discard to silence them.
package log
