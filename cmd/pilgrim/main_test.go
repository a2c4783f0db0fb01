package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pilgrim-ai/pilgrim/config"
	"github.com/pilgrim-ai/pilgrim/graph"
	"github.com/pilgrim-ai/pilgrim/store"
	"github.com/pilgrim-ai/pilgrim/store/sqlite"
)

const listTablesCall = `{"id":"1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"","tool_calls":[{"id":"call_1","type":"function","function":{"name":"sql_db_list_tables","arguments":"{\"input\":\"\"}"}}]},"finish_reason":"tool_calls"}]}`

const finalAnswer = `{"id":"2","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"The database has an artists table."},"finish_reason":"stop"}]}`

func newChinook(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "chinook.db")
	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()
	_, err = db.Exec(`CREATE TABLE artists (id INTEGER PRIMARY KEY, name TEXT);
INSERT INTO artists (name) VALUES ('AC/DC'), ('Accept');`)
	require.NoError(t, err)
	return path
}

// newModelServer answers with the given bodies in order, repeating the last one.
func newModelServer(t *testing.T, bodies ...string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := int(calls.Add(1)) - 1
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, bodies[min(n, len(bodies)-1)])
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func setEnv(t *testing.T, srv *httptest.Server, dbPath, runsPath string) {
	t.Helper()
	t.Setenv("PILGRIM_MODEL_PROVIDER", config.ProviderGoOpenAI)
	t.Setenv("PILGRIM_MODEL_BASE_URL", srv.URL+"/v1")
	t.Setenv("PILGRIM_MODEL_API_KEY", "test-key")
	t.Setenv("PILGRIM_DATABASE_DSN", dbPath)
	t.Setenv("PILGRIM_STORE_KIND", config.StoreSQLite)
	t.Setenv("PILGRIM_STORE_DSN", runsPath)
	t.Setenv("PILGRIM_LOG_LEVEL", "error")
}

func loadRuns(t *testing.T, path string) []*store.RunRecord {
	t.Helper()
	s, err := sqlite.NewSqliteRunStore(sqlite.SqliteOptions{Path: path})
	require.NoError(t, err)
	defer s.Close()
	runs, err := s.List(context.Background())
	require.NoError(t, err)
	return runs
}

func TestRunAnswersAndRecords(t *testing.T) {
	srv, calls := newModelServer(t, listTablesCall, finalAnswer)
	dir := t.TempDir()
	runsPath := filepath.Join(dir, "runs.db")
	htmlPath := filepath.Join(dir, "report.html")
	setEnv(t, srv, newChinook(t), runsPath)

	err := run(context.Background(), options{maxSteps: -1, htmlPath: htmlPath}, "Which tables exist?")
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())

	runs := loadRuns(t, runsPath)
	require.Len(t, runs, 1)
	r := runs[0]
	assert.Equal(t, store.StatusSucceeded, r.Status)
	assert.Equal(t, "Which tables exist?", r.Question)
	assert.Equal(t, "The database has an artists table.", r.Answer)
	assert.Equal(t, 3, r.Steps)
	require.Len(t, r.Messages, 4)
	assert.Equal(t, "artists", r.Messages[2].Parts[0].Text)

	page, err := os.ReadFile(htmlPath)
	require.NoError(t, err)
	assert.Contains(t, string(page), "The database has an artists table.")
	assert.Contains(t, string(page), "flowchart TD")
}

func TestRunStepLimit(t *testing.T) {
	srv, _ := newModelServer(t, listTablesCall)
	runsPath := filepath.Join(t.TempDir(), "runs.db")
	setEnv(t, srv, newChinook(t), runsPath)

	err := run(context.Background(), options{maxSteps: 3}, "Loop forever")
	var limitErr *graph.GraphExecutionLimitError
	require.ErrorAs(t, err, &limitErr)
	assert.Equal(t, 3, limitErr.Limit)

	runs := loadRuns(t, runsPath)
	require.Len(t, runs, 1)
	assert.Equal(t, store.StatusFailed, runs[0].Status)
	assert.NotEmpty(t, runs[0].Error)
}

func TestRunInvalidConfig(t *testing.T) {
	t.Setenv("PILGRIM_STORE_KIND", "s3")
	err := run(context.Background(), options{maxSteps: -1}, "anything")
	require.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestAgentOptions(t *testing.T) {
	cfg := config.Default()
	assert.Len(t, agentOptions(cfg, nil), 1)

	cfg.Agent.Explain = true
	cfg.Agent.HandleToolErrors = true
	cfg.Agent.SystemPrompt = "custom"
	zero := 0.0
	cfg.Model.Temperature = &zero
	assert.Len(t, agentOptions(cfg, nil), 4)
}

func TestZeroTemperatureReachesModel(t *testing.T) {
	var temperatures []any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		temperatures = append(temperatures, body["temperature"])
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, finalAnswer)
	}))
	t.Cleanup(srv.Close)
	setEnv(t, srv, newChinook(t), filepath.Join(t.TempDir(), "runs.db"))
	t.Setenv("PILGRIM_MODEL_TEMPERATURE", "0")

	require.NoError(t, run(context.Background(), options{maxSteps: -1}, "Hello"))
	require.Len(t, temperatures, 1)
	require.NotNil(t, temperatures[0], "temperature omitted")
	assert.InDelta(t, 0, temperatures[0].(float64), 1e-9)
}

func TestNewModel(t *testing.T) {
	m, err := newModel(config.ModelConfig{Provider: config.ProviderGoOpenAI, Name: "m", BaseURL: "http://localhost:1/v1"})
	require.NoError(t, err)
	assert.NotNil(t, m)

	m, err = newModel(config.ModelConfig{Provider: config.ProviderOllama, Name: "llama3", BaseURL: "http://localhost:11434"})
	require.NoError(t, err)
	assert.NotNil(t, m)

	_, err = newModel(config.ModelConfig{Provider: "parrot"})
	assert.Error(t, err)
}

func TestOpenDatabase(t *testing.T) {
	db, err := openDatabase(context.Background(), config.DatabaseConfig{Driver: config.DriverSQLite, DSN: newChinook(t)})
	require.NoError(t, err)
	defer db.Close()

	names, err := db.TableNames(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"artists"}, names)

	_, err = openDatabase(context.Background(), config.DatabaseConfig{Driver: "mysql"})
	assert.Error(t, err)
}

func TestOpenStore(t *testing.T) {
	ctx := context.Background()

	s, err := openStore(ctx, config.StoreConfig{Kind: config.StoreNone})
	require.NoError(t, err)
	assert.Nil(t, s)

	s, err = openStore(ctx, config.StoreConfig{Kind: config.StoreMemory})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = openStore(ctx, config.StoreConfig{Kind: config.StoreSQLite, DSN: filepath.Join(t.TempDir(), "runs.db")})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	mr := miniredis.RunT(t)
	s, err = openStore(ctx, config.StoreConfig{Kind: config.StoreRedis, Addr: mr.Addr(), Prefix: "test:"})
	require.NoError(t, err)
	runs, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, runs)
	require.NoError(t, s.Close())

	_, err = openStore(ctx, config.StoreConfig{Kind: "s3"})
	assert.Error(t, err)
}
