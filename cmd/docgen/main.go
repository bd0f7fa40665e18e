package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/docgen/internal/config"
	"git.home.luguber.info/inful/docgen/internal/document"
	"git.home.luguber.info/inful/docgen/internal/generator"
	"git.home.luguber.info/inful/docgen/internal/metrics"
	"git.home.luguber.info/inful/docgen/internal/render"
	"git.home.luguber.info/inful/docgen/internal/server"
	"git.home.luguber.info/inful/docgen/internal/store"
	"git.home.luguber.info/inful/docgen/internal/workflow"
)

var CLI struct {
	Config  string `short:"c" help:"Configuration file path" default:"config.yaml"`
	Verbose bool   `short:"v" help:"Enable verbose logging"`

	Generate struct {
		Topic     string `arg:"" help:"Topic to generate a document for"`
		Type      string `short:"t" help:"Document type (slide or paper)" default:""`
		PageLimit int    `short:"p" help:"Page limit" default:"0"`
		Output    string `short:"o" help:"Output file path (defaults to <topic>.md)"`
		HTML      bool   `help:"Also write an HTML rendering next to the Markdown"`
		StopAt    string `help:"Stop after the named step (title_generated, outline_generated)"`
	} `cmd:"" help:"Generate a document for a topic and write it to disk"`

	Serve struct{} `cmd:"" help:"Start the HTTP API server"`

	Init struct {
		Force bool `help:"Overwrite existing configuration file"`
	} `cmd:"" help:"Initialize a new configuration file"`
}

func main() {
	ctx := kong.Parse(&CLI)

	logLevel := slog.LevelInfo
	if CLI.Verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	switch ctx.Command() {
	case "generate <topic>":
		cfg, err := config.Load(CLI.Config)
		if err != nil {
			slog.Error("Failed to load configuration", "error", err)
			os.Exit(1)
		}
		applyLogging(cfg, logLevel)
		if err := runGenerate(cfg); err != nil {
			slog.Error("Generate failed", "error", err)
			os.Exit(1)
		}
	case "serve":
		cfg, err := config.Load(CLI.Config)
		if err != nil {
			slog.Error("Failed to load configuration", "error", err)
			os.Exit(1)
		}
		applyLogging(cfg, logLevel)
		if err := runServe(cfg); err != nil {
			slog.Error("Serve failed", "error", err)
			os.Exit(1)
		}
	case "init":
		slog.Info("Initializing configuration", "path", CLI.Config, "force", CLI.Init.Force)
		if err := config.Init(CLI.Config, CLI.Init.Force); err != nil {
			slog.Error("Init failed", "error", err)
			os.Exit(1)
		}
	}
}

// applyLogging rebuilds the default logger from the loaded configuration.
// The verbose flag wins over the configured level.
func applyLogging(cfg *config.Config, flagLevel slog.Level) {
	level := flagLevel
	if !CLI.Verbose {
		switch cfg.Logging.Level {
		case "debug":
			level = slog.LevelDebug
		case "warn":
			level = slog.LevelWarn
		case "error":
			level = slog.LevelError
		default:
			level = slog.LevelInfo
		}
	}
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Logging.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}

func buildGenerator(cfg *config.Config) (generator.TextGenerator, error) {
	gen, err := generator.New(cfg.GeneratorSettings())
	if err != nil {
		return nil, err
	}
	return generator.WithRetry(gen, cfg.RetryConfig()), nil
}

func runGenerate(cfg *config.Config) error {
	gen, err := buildGenerator(cfg)
	if err != nil {
		return err
	}

	docTypeName := CLI.Generate.Type
	if docTypeName == "" {
		docTypeName = cfg.Defaults.DocumentType
	}
	docType, err := document.ParseType(docTypeName)
	if err != nil {
		return err
	}
	pageLimit := CLI.Generate.PageLimit
	if pageLimit == 0 {
		pageLimit = cfg.Defaults.PageLimit
	}

	wf := workflow.New(gen, workflow.WithSectionConcurrency(cfg.Defaults.SectionConcurrency))

	slog.Info("Starting document workflow",
		"topic", CLI.Generate.Topic,
		"type", docType,
		"page_limit", pageLimit)

	st, err := wf.Run(context.Background(), workflow.Request{
		Topic:     CLI.Generate.Topic,
		Type:      docType,
		PageLimit: pageLimit,
		StopAt:    document.Step(CLI.Generate.StopAt),
	})
	if err != nil {
		return err
	}
	if st.ErrorMessage != "" {
		slog.Warn("Workflow completed with degraded steps", "detail", st.ErrorMessage)
	}

	if CLI.Generate.StopAt != "" && !st.CurrentStep.HasContent() {
		// Partial runs have nothing to render; print the state instead.
		fmt.Printf("current_step: %s\ntitle: %s\n", st.CurrentStep, st.Title)
		for i, sec := range st.Outline {
			fmt.Printf("  %d. %s\n", i+1, sec.Title)
		}
		return nil
	}

	data, ext, err := render.Document(st)
	if err != nil {
		return err
	}

	outPath := CLI.Generate.Output
	if outPath == "" {
		outPath = CLI.Generate.Topic + "." + ext
	}
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}
	slog.Info("Document written", "path", outPath)

	if CLI.Generate.HTML {
		htmlData, err := render.HTML(st.Title, data)
		if err != nil {
			return err
		}
		htmlPath := outPath[:len(outPath)-len(filepath.Ext(outPath))] + ".html"
		if err := os.WriteFile(htmlPath, htmlData, 0o644); err != nil {
			return fmt.Errorf("failed to write html: %w", err)
		}
		slog.Info("HTML written", "path", htmlPath)
	}
	return nil
}

// swappableGenerator lets a config reload replace the backend without
// restarting the in-flight server.
type swappableGenerator struct {
	mu  sync.RWMutex
	gen generator.TextGenerator
}

func (s *swappableGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	s.mu.RLock()
	gen := s.gen
	s.mu.RUnlock()
	return gen.Generate(ctx, prompt)
}

func (s *swappableGenerator) swap(gen generator.TextGenerator) {
	s.mu.Lock()
	s.gen = gen
	s.mu.Unlock()
}

func openStore(cfg *config.Config) (store.Store, error) {
	switch cfg.Storage.Backend {
	case "sqlite":
		return store.NewSQLiteStore(filepath.Join(cfg.Storage.DataDir, "docgen.db"))
	default:
		return store.NewJSONStore(cfg.Storage.DataDir)
	}
}

func runServe(cfg *config.Config) error {
	gen, err := buildGenerator(cfg)
	if err != nil {
		return err
	}
	swappable := &swappableGenerator{gen: gen}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	retention, interval := cfg.RetentionWindow()
	janitor, err := store.NewJanitor(st, interval, retention)
	if err != nil {
		return err
	}
	janitor.Start()
	defer func() {
		if err := janitor.Stop(); err != nil {
			slog.Warn("Failed to stop janitor", "error", err)
		}
	}()

	var recorder metrics.Recorder = metrics.NoopRecorder{}
	opts := server.Options{}
	if cfg.Server.EnableMetrics {
		reg := prom.NewRegistry()
		recorder = metrics.NewPrometheusRecorder(reg)
		opts.MetricsHandler = metrics.HTTPHandler(reg)
	}

	wf := workflow.New(swappable,
		workflow.WithRecorder(recorder),
		workflow.WithSectionConcurrency(cfg.Defaults.SectionConcurrency))

	srv := server.New(cfg, wf, st, opts)

	watcher, err := config.NewWatcher(CLI.Config, func(next *config.Config) {
		newGen, err := buildGenerator(next)
		if err != nil {
			slog.Warn("Reloaded config has an invalid generator, keeping previous", "error", err)
			return
		}
		swappable.swap(newGen)
		slog.Info("Generator settings applied from reloaded configuration",
			"provider", next.Generator.Provider,
			"model", next.Generator.Model)
		if next.Server.Listen != cfg.Server.Listen || next.Storage != cfg.Storage {
			slog.Warn("Server or storage changes require a restart to take effect")
		}
	})
	if err != nil {
		return err
	}
	watcher.Start()
	defer watcher.Stop()

	ctx := context.Background()
	if err := srv.Start(ctx); err != nil {
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	slog.Info("Shutting down", "signal", sig.String())

	shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	return srv.Stop(shutdownCtx)
}
