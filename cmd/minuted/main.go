// Package main runs the minuted daemon: it extracts decisions and
// action items from meeting transcripts, presents them for approval in
// Slack, and persists approved items to GitHub and Airtable.
//
// Usage:
//
//	MINUTED_SLACK_BOT_TOKEN=xoxb-... \
//	MINUTED_GITHUB_TOKEN=ghp_... \
//	MINUTED_AIRTABLE_API_KEY=pat... \
//	MINUTED_ANTHROPIC_API_KEY=sk-ant-... \
//	./minuted -config config.yaml
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/minuted/internal/approval"
	"github.com/fyrsmithlabs/minuted/internal/config"
	"github.com/fyrsmithlabs/minuted/internal/docsink"
	"github.com/fyrsmithlabs/minuted/internal/extraction"
	"github.com/fyrsmithlabs/minuted/internal/logging"
	"github.com/fyrsmithlabs/minuted/internal/orchestrator"
	"github.com/fyrsmithlabs/minuted/internal/project"
	"github.com/fyrsmithlabs/minuted/internal/proposal"
	"github.com/fyrsmithlabs/minuted/internal/recordsink"
	"github.com/fyrsmithlabs/minuted/internal/server"
	"github.com/fyrsmithlabs/minuted/internal/slack"
	"github.com/fyrsmithlabs/minuted/internal/telemetry"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to config file (default ~/.config/minuted/config.yaml)")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.LoadWithFile(*configPath)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger, err := logging.NewLogger(&logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Fields: map[string]string{"service": "minuted"},
	})
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	if !cfg.Slack.BotToken.IsSet() {
		return fmt.Errorf("slack bot token not set")
	}
	if !cfg.GitHub.Token.IsSet() {
		return fmt.Errorf("github token not set")
	}
	if !cfg.Airtable.APIKey.IsSet() {
		return fmt.Errorf("airtable api key not set")
	}
	if !cfg.Anthropic.APIKey.IsSet() {
		return fmt.Errorf("anthropic api key not set")
	}

	registry := project.NewRegistry(cfg.Projects)

	generator, err := extraction.NewAnthropicGenerator(extraction.Config{
		APIKey:  cfg.Anthropic.APIKey.Value(),
		Model:   cfg.Anthropic.Model,
		BaseURL: cfg.Anthropic.BaseURL,
		Timeout: int(cfg.Anthropic.Timeout.Duration().Seconds()),
	})
	if err != nil {
		return fmt.Errorf("creating extraction generator: %w", err)
	}
	extractor := extraction.NewExtractor(generator)

	docs, err := docsink.NewSink(ctx, cfg.GitHub.Token.Value(), registry, logger)
	if err != nil {
		return fmt.Errorf("creating document sink: %w", err)
	}

	recordClient, err := recordsink.NewClient(cfg.Airtable.APIKey.Value(), cfg.Airtable.APIRoot)
	if err != nil {
		return fmt.Errorf("creating record client: %w", err)
	}
	records := recordsink.NewSink(recordClient, registry, cfg.Airtable.Table, logger)

	messenger, err := slack.NewClient(cfg.Slack.BotToken.Value(), cfg.Slack.APIRoot)
	if err != nil {
		return fmt.Errorf("creating slack client: %w", err)
	}

	store := proposal.NewStore(proposal.WithTTL(cfg.Proposals.TTL.Duration()))
	metrics := telemetry.NewMetrics()

	pipe := orchestrator.NewPipeline(
		extractor,
		store,
		approval.NewMachine(docs, records),
		messenger,
		logger,
		metrics,
	)

	srv := server.NewServer(cfg.Server, pipe, cfg.Projects, metrics.Handler(), logger)

	logger.Info(ctx, "minuted starting",
		zap.Int("port", cfg.Server.Port),
		zap.Int("projects", len(cfg.Projects)),
		zap.Duration("proposal_ttl", cfg.Proposals.TTL.Duration()),
	)

	if err := srv.Start(ctx); err != nil && err != http.ErrServerClosed {
		return err
	}

	logger.Info(ctx, "server stopped gracefully")
	return nil
}
