package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"slices"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/pilgrim-ai/pilgrim/log"
)

// EnvPrefix is the prefix of every environment variable read by Load.
const EnvPrefix = "pilgrim"

// Model providers.
const (
	ProviderOpenAI   = "openai"
	ProviderOllama   = "ollama"
	ProviderGoOpenAI = "goopenai"
)

// Database drivers.
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// Run store kinds.
const (
	StoreNone     = "none"
	StoreMemory   = "memory"
	StoreSQLite   = "sqlite"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
)

// ErrInvalidConfig is wrapped by every Validate failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the application configuration.
type Config struct {
	Model    ModelConfig    `yaml:"model" envconfig:"model"`
	Database DatabaseConfig `yaml:"database" envconfig:"database"`
	Agent    AgentConfig    `yaml:"agent" envconfig:"agent"`
	Store    StoreConfig    `yaml:"store" envconfig:"store"`
	Diagram  DiagramConfig  `yaml:"diagram" envconfig:"diagram"`
	Tracing  TracingConfig  `yaml:"tracing" envconfig:"tracing"`
	LogLevel string         `yaml:"log_level" envconfig:"log_level"`
}

// ModelConfig selects the chat model.
type ModelConfig struct {
	Provider string `yaml:"provider" envconfig:"provider"`
	Name     string `yaml:"name" envconfig:"name"`
	BaseURL  string `yaml:"base_url" envconfig:"base_url"`
	APIKey   string `yaml:"api_key" envconfig:"api_key"`
	// Temperature is nil unless configured, so an explicit 0 is kept.
	Temperature *float64 `yaml:"temperature" envconfig:"temperature"`
}

// DatabaseConfig describes the database the SQL tools query.
type DatabaseConfig struct {
	Driver     string `yaml:"driver" envconfig:"driver"`
	DSN        string `yaml:"dsn" envconfig:"dsn"`
	Schema     string `yaml:"schema" envconfig:"schema"`
	ReadOnly   bool   `yaml:"read_only" envconfig:"read_only"`
	MaxRows    int    `yaml:"max_rows" envconfig:"max_rows"`
	SampleRows int    `yaml:"sample_rows" envconfig:"sample_rows"`
}

// AgentConfig tunes the agent graph and its runs.
type AgentConfig struct {
	MaxSteps         int    `yaml:"max_steps" envconfig:"max_steps"`
	Explain          bool   `yaml:"explain" envconfig:"explain"`
	HandleToolErrors bool   `yaml:"handle_tool_errors" envconfig:"handle_tool_errors"`
	SystemPrompt     string `yaml:"system_prompt" envconfig:"system_prompt"`
}

// StoreConfig selects where finished runs are recorded.
type StoreConfig struct {
	Kind string `yaml:"kind" envconfig:"kind"`

	// DSN is the SQLite file path or the PostgreSQL connection string.
	DSN   string `yaml:"dsn" envconfig:"dsn"`
	Table string `yaml:"table" envconfig:"table"`

	// Redis
	Addr     string        `yaml:"addr" envconfig:"addr"`
	Password string        `yaml:"password" envconfig:"password"`
	DB       int           `yaml:"db" envconfig:"db"`
	Prefix   string        `yaml:"prefix" envconfig:"prefix"`
	TTL      time.Duration `yaml:"ttl" envconfig:"ttl"`
}

// DiagramConfig configures the Mermaid PNG renderer.
type DiagramConfig struct {
	RendererURL string        `yaml:"renderer_url" envconfig:"renderer_url"`
	Attempts    int           `yaml:"attempts" envconfig:"attempts"`
	Delay       time.Duration `yaml:"delay" envconfig:"delay"`
}

// TracingConfig turns on OpenTelemetry spans for runs. Finished spans are
// written to the log.
type TracingConfig struct {
	Enabled     bool   `yaml:"enabled" envconfig:"enabled"`
	ServiceName string `yaml:"service_name" envconfig:"service_name"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Model: ModelConfig{
			Provider: ProviderOpenAI,
			Name:     "gpt-4o-mini",
		},
		Database: DatabaseConfig{
			Driver:     DriverSQLite,
			DSN:        "chinook.db",
			Schema:     "public",
			ReadOnly:   true,
			MaxRows:    100,
			SampleRows: 3,
		},
		Agent: AgentConfig{
			MaxSteps: 25,
		},
		Store: StoreConfig{
			Kind:   StoreNone,
			Table:  "runs",
			Addr:   "localhost:6379",
			Prefix: "pilgrim:",
		},
		Diagram: DiagramConfig{
			RendererURL: "https://mermaid.ink",
			Attempts:    5,
			Delay:       2 * time.Second,
		},
		Tracing: TracingConfig{
			ServiceName: "pilgrim",
		},
		LogLevel: "info",
	}
}

// Load builds the configuration from the defaults, the YAML file at path,
// the dotenv file at envFile and the environment. Empty paths are skipped
// and a missing dotenv file is not an error.
func Load(path, envFile string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := cfg.decodeYAML(data); err != nil {
			return nil, err
		}
	}

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load env file %s: %w", envFile, err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromYAML applies YAML data on top of the defaults. Unknown keys are rejected.
func FromYAML(data []byte) (*Config, error) {
	cfg := Default()
	if err := cfg.decodeYAML(data); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) decodeYAML(data []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parse yaml: %w", err)
	}
	return nil
}

// Validate reports the first invalid field.
func (c *Config) Validate() error {
	if !slices.Contains([]string{ProviderOpenAI, ProviderOllama, ProviderGoOpenAI}, c.Model.Provider) {
		return fmt.Errorf("%w: unknown model provider %q", ErrInvalidConfig, c.Model.Provider)
	}
	if t := c.Model.Temperature; t != nil && (*t < 0 || *t > 2) {
		return fmt.Errorf("%w: model temperature %v out of range [0, 2]", ErrInvalidConfig, *t)
	}
	if !slices.Contains([]string{DriverSQLite, DriverPostgres}, c.Database.Driver) {
		return fmt.Errorf("%w: unknown database driver %q", ErrInvalidConfig, c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("%w: database dsn is required", ErrInvalidConfig)
	}
	if c.Database.MaxRows < 0 || c.Database.SampleRows < 0 {
		return fmt.Errorf("%w: database row limits must not be negative", ErrInvalidConfig)
	}
	if c.Agent.MaxSteps < 0 {
		return fmt.Errorf("%w: agent max_steps must not be negative", ErrInvalidConfig)
	}
	switch c.Store.Kind {
	case StoreNone, StoreMemory:
	case StoreSQLite, StorePostgres:
		if c.Store.DSN == "" {
			return fmt.Errorf("%w: store dsn is required for kind %q", ErrInvalidConfig, c.Store.Kind)
		}
	case StoreRedis:
		if c.Store.Addr == "" {
			return fmt.Errorf("%w: store addr is required for kind %q", ErrInvalidConfig, c.Store.Kind)
		}
	default:
		return fmt.Errorf("%w: unknown store kind %q", ErrInvalidConfig, c.Store.Kind)
	}
	if c.Diagram.Attempts < 0 || c.Diagram.Delay < 0 {
		return fmt.Errorf("%w: diagram attempts and delay must not be negative", ErrInvalidConfig)
	}
	if c.Tracing.Enabled && c.Tracing.ServiceName == "" {
		return fmt.Errorf("%w: tracing service_name is required", ErrInvalidConfig)
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}
