package main

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	lcopenai "github.com/tmc/langchaingo/llms/openai"

	"github.com/pilgrim-ai/pilgrim/config"
	"github.com/pilgrim-ai/pilgrim/llms/openai"
	"github.com/pilgrim-ai/pilgrim/store"
	"github.com/pilgrim-ai/pilgrim/store/memory"
	"github.com/pilgrim-ai/pilgrim/store/postgres"
	"github.com/pilgrim-ai/pilgrim/store/redis"
	"github.com/pilgrim-ai/pilgrim/store/sqlite"
	"github.com/pilgrim-ai/pilgrim/tool"
)

func newModel(cfg config.ModelConfig) (llms.Model, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI:
		opts := []lcopenai.Option{lcopenai.WithModel(cfg.Name)}
		if cfg.APIKey != "" {
			opts = append(opts, lcopenai.WithToken(cfg.APIKey))
		}
		if cfg.BaseURL != "" {
			opts = append(opts, lcopenai.WithBaseURL(cfg.BaseURL))
		}
		llm, err := lcopenai.New(opts...)
		if err != nil {
			return nil, err
		}
		return llm, nil
	case config.ProviderOllama:
		opts := []ollama.Option{ollama.WithModel(cfg.Name)}
		if cfg.BaseURL != "" {
			opts = append(opts, ollama.WithServerURL(cfg.BaseURL))
		}
		llm, err := ollama.New(opts...)
		if err != nil {
			return nil, err
		}
		return llm, nil
	case config.ProviderGoOpenAI:
		opts := []openai.Option{openai.WithModel(cfg.Name)}
		if cfg.APIKey != "" {
			opts = append(opts, openai.WithAPIKey(cfg.APIKey))
		}
		if cfg.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
		}
		if cfg.Temperature != nil {
			opts = append(opts, openai.WithTemperature(*cfg.Temperature))
		}
		llm, err := openai.New(opts...)
		if err != nil {
			return nil, err
		}
		return llm, nil
	default:
		return nil, fmt.Errorf("unknown model provider %q", cfg.Provider)
	}
}

func openDatabase(ctx context.Context, cfg config.DatabaseConfig) (tool.Database, error) {
	opts := []tool.DatabaseOption{tool.WithSampleRows(cfg.SampleRows)}
	switch cfg.Driver {
	case config.DriverSQLite:
		db, err := tool.OpenSQLite(cfg.DSN, opts...)
		if err != nil {
			return nil, err
		}
		return db, nil
	case config.DriverPostgres:
		if cfg.Schema != "" {
			opts = append(opts, tool.WithSchema(cfg.Schema))
		}
		db, err := tool.OpenPostgres(ctx, cfg.DSN, opts...)
		if err != nil {
			return nil, err
		}
		return db, nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}

// openStore returns nil when runs are not recorded.
func openStore(ctx context.Context, cfg config.StoreConfig) (store.RunStore, error) {
	switch cfg.Kind {
	case config.StoreNone, "":
		return nil, nil
	case config.StoreMemory:
		return memory.NewMemoryRunStore(), nil
	case config.StoreSQLite:
		s, err := sqlite.NewSqliteRunStore(sqlite.SqliteOptions{Path: cfg.DSN, TableName: cfg.Table})
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.StorePostgres:
		s, err := postgres.NewPostgresRunStore(ctx, postgres.PostgresOptions{ConnString: cfg.DSN, TableName: cfg.Table})
		if err != nil {
			return nil, err
		}
		if err := s.InitSchema(ctx); err != nil {
			s.Close()
			return nil, err
		}
		return s, nil
	case config.StoreRedis:
		return redis.NewRedisRunStore(redis.RedisOptions{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
			Prefix:   cfg.Prefix,
			TTL:      cfg.TTL,
		}), nil
	default:
		return nil, fmt.Errorf("unknown store kind %q", cfg.Kind)
	}
}
