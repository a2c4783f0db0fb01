// Command pilgrim answers a question about a SQL database with a tool-using
// agent graph.
//
//	pilgrim -config pilgrim.yaml -explain "Which artist has the most albums?"
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tmc/langchaingo/llms"

	"github.com/pilgrim-ai/pilgrim/config"
	"github.com/pilgrim-ai/pilgrim/graph"
	"github.com/pilgrim-ai/pilgrim/log"
	"github.com/pilgrim-ai/pilgrim/prebuilt"
	"github.com/pilgrim-ai/pilgrim/report"
	"github.com/pilgrim-ai/pilgrim/store"
	"github.com/pilgrim-ai/pilgrim/tool"
)

type options struct {
	configPath  string
	envFile     string
	maxSteps    int
	explain     bool
	diagramPath string
	htmlPath    string
	quiet       bool
	trace       bool
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "", "YAML configuration file")
	flag.StringVar(&opts.envFile, "env", ".env", "dotenv file loaded before the environment")
	flag.IntVar(&opts.maxSteps, "max-steps", -1, "step limit of the run (overrides the configuration)")
	flag.BoolVar(&opts.explain, "explain", false, "add an explanation step after the query result")
	flag.StringVar(&opts.diagramPath, "diagram", "", "write the agent graph as PNG to this file")
	flag.StringVar(&opts.htmlPath, "html", "", "write an HTML report of the run to this file")
	flag.BoolVar(&opts.quiet, "quiet", false, "only log errors")
	flag.BoolVar(&opts.trace, "trace", false, "log OpenTelemetry spans of the run")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] \"question\"\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	question := strings.TrimSpace(strings.Join(flag.Args(), " "))
	if question == "" {
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, opts, question); err != nil {
		fmt.Fprintln(os.Stderr, "pilgrim:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options, question string) error {
	cfg, err := config.Load(opts.configPath, opts.envFile)
	if err != nil {
		return err
	}
	if opts.maxSteps >= 0 {
		cfg.Agent.MaxSteps = opts.maxSteps
	}
	if opts.explain {
		cfg.Agent.Explain = true
	}
	if opts.quiet {
		cfg.LogLevel = "error"
	}
	if opts.trace {
		cfg.Tracing.Enabled = true
	}

	level, _ := log.ParseLevel(cfg.LogLevel)
	logger := log.NewGologLogger("[pilgrim] ", level)
	log.SetDefault(logger)

	model, err := newModel(cfg.Model)
	if err != nil {
		return err
	}

	db, err := openDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	toolkit, err := tool.NewSQLToolkit(db, model,
		tool.WithReadOnly(cfg.Database.ReadOnly),
		tool.WithMaxRows(cfg.Database.MaxRows),
		tool.WithLogger(logger),
	)
	if err != nil {
		db.Close()
		return err
	}
	defer toolkit.Close()

	agent, err := prebuilt.NewSQLAgent(model, toolkit, agentOptions(cfg, logger)...)
	if err != nil {
		return err
	}

	runID := uuid.NewString()
	listeners := []graph.NodeListener{graph.NewLoggingListener(logger, false)}
	runs, err := openStore(ctx, cfg.Store)
	if err != nil {
		return err
	}
	if runs != nil {
		defer runs.Close()
		listeners = append(listeners, store.NewRecorder(runs, logger))
	}
	if cfg.Tracing.Enabled {
		tracer, shutdown := newTracing(cfg.Tracing, logger)
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				logger.Warn("tracing shutdown: %v", err)
			}
		}()
		listeners = append(listeners, tracer)
	}

	// The final event carries the executed step count.
	var record *store.RunRecord
	startedAt := time.Now()
	listeners = append(listeners, graph.NodeListenerFunc(func(_ context.Context, ev graph.Event) {
		if ev.Type == graph.EventChainEnd || ev.Type == graph.EventChainError {
			record = store.NewRunRecord(ev.RunID, ev.State, ev.Step, ev.Err, startedAt, ev.Timestamp)
		}
	}))

	state, runErr := agent.Invoke(ctx,
		graph.NewMessagesState(llms.TextParts(llms.ChatMessageTypeHuman, question)),
		graph.WithRunID(runID),
		graph.WithMaxSteps(cfg.Agent.MaxSteps),
		graph.WithListeners(listeners...),
	)
	if record == nil {
		record = store.NewRunRecord(runID, state, 0, runErr, startedAt, time.Now())
	}

	fmt.Println(report.Terminal(record, report.DefaultTheme()))

	var mermaid string
	if opts.diagramPath != "" || opts.htmlPath != "" {
		mermaid = graph.NewExporter(agent).DrawMermaid()
	}
	if opts.diagramPath != "" {
		if err := writeDiagram(ctx, agent, cfg.Diagram, logger, opts.diagramPath); err != nil {
			logger.Error("%v", err)
		}
	}
	if opts.htmlPath != "" {
		if err := writeHTML(record, mermaid, opts.htmlPath); err != nil {
			logger.Error("%v", err)
		}
	}

	return runErr
}

func agentOptions(cfg *config.Config, logger log.Logger) []prebuilt.AgentOption {
	toolOpts := []prebuilt.ToolNodeOption{prebuilt.WithToolLogger(logger)}
	if cfg.Agent.HandleToolErrors {
		toolOpts = append(toolOpts, prebuilt.WithToolErrorHandling())
	}
	opts := []prebuilt.AgentOption{prebuilt.WithToolNodeOptions(toolOpts...)}
	if cfg.Agent.Explain {
		opts = append(opts, prebuilt.WithExplanation())
	}
	if cfg.Agent.SystemPrompt != "" {
		opts = append(opts, prebuilt.WithPrompt(cfg.Agent.SystemPrompt))
	}
	if cfg.Model.Temperature != nil {
		opts = append(opts, prebuilt.WithModelOptions(llms.WithTemperature(*cfg.Model.Temperature)))
	}
	return opts
}

func writeDiagram(ctx context.Context, agent *graph.CompiledGraph, cfg config.DiagramConfig, logger log.Logger, path string) error {
	d := graph.DrawMermaidPNG(ctx, agent, &graph.MermaidRenderer{
		BaseURL:     cfg.RendererURL,
		MaxAttempts: cfg.Attempts,
		Delay:       cfg.Delay,
		Logger:      logger,
	})
	if d.PNG == nil {
		return fmt.Errorf("diagram not rendered after %d attempts (%s)", d.Attempts, d.Outcome)
	}
	if err := os.WriteFile(path, d.PNG, 0o644); err != nil {
		return fmt.Errorf("write diagram: %w", err)
	}
	logger.Info("diagram written to %s", path)
	return nil
}

func writeHTML(record *store.RunRecord, mermaid, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	if err := report.WriteHTML(f, record, mermaid); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
