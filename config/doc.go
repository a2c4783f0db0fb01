// Package config loads the pilgrim application configuration.
//
// Values are layered: Default, then an optional YAML file, then an optional
// .env file, then PILGRIM_* environment variables. Later layers only
// override the fields they set.
//
//	model:
//	  provider: openai
//	  name: gpt-4o-mini
//	database:
//	  driver: sqlite3
//	  dsn: chinook.db
//	agent:
//	  max_steps: 25
//	  explain: true
//
// The same fields can be set through the environment, for example
// PILGRIM_MODEL_NAME, PILGRIM_DATABASE_DSN or PILGRIM_AGENT_EXPLAIN.
package config
