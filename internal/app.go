// Package internal provides the App struct that wires all components of
// flowfolio together and initializes the CLI layer.
package internal

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-hclog"
	"github.com/valter-silva-au/flowfolio/internal/cli"
	"github.com/valter-silva-au/flowfolio/internal/core"
	"github.com/valter-silva-au/flowfolio/internal/integration"
	"github.com/valter-silva-au/flowfolio/internal/observability"
	"github.com/valter-silva-au/flowfolio/internal/storage"
	"github.com/valter-silva-au/flowfolio/pkg/models"
)

// EventLogFileName is the JSONL event log kept next to .folioconfig.
const EventLogFileName = ".folio_events.jsonl"

// App holds all service dependencies for flowfolio.
type App struct {
	BasePath string
	Config   *models.GlobalConfig
	Logger   hclog.Logger

	// Configuration
	ConfigMgr core.ConfigurationManager

	// Storage layer
	Slot storage.Slot

	// Core services
	Catalog    core.CatalogStore
	Completion integration.CompletionClient

	// Observability
	EventLog    observability.EventLog
	MetricsCalc observability.MetricsCalculator
}

// Options overrides parts of the wiring. The zero value is the production
// setup.
type Options struct {
	// LogOutput receives log lines. Defaults to os.Stderr.
	LogOutput io.Writer
}

// NewApp creates and wires all components of flowfolio. basePath is the
// directory holding .folioconfig and the default data files.
func NewApp(basePath string, opts Options) (*App, error) {
	app := &App{BasePath: basePath}
	if opts.LogOutput == nil {
		opts.LogOutput = os.Stderr
	}

	// --- Configuration ---
	app.ConfigMgr = core.NewConfigurationManager(basePath)
	cfg, err := app.ConfigMgr.LoadGlobalConfig()
	if err != nil {
		return nil, err
	}
	if err := app.ConfigMgr.ValidateConfig(cfg); err != nil {
		return nil, err
	}
	app.Config = cfg
	app.Logger = observability.NewLogger(cfg.LogLevel, opts.LogOutput)

	// --- Observability ---
	eventLogPath := filepath.Join(basePath, EventLogFileName)
	app.EventLog, err = observability.NewJSONLEventLog(eventLogPath)
	if err != nil {
		// Non-fatal: run without events and metrics.
		app.Logger.Warn("event log disabled", "path", eventLogPath, "error", err)
		app.EventLog = nil
	}
	var events core.EventLogger
	if app.EventLog != nil {
		events = &eventLogAdapter{log: app.EventLog}
		app.MetricsCalc = observability.NewMetricsCalculator(app.EventLog)
	}

	// --- Storage layer ---
	app.Slot, err = storage.Open(cfg.Storage, basePath)
	if err != nil {
		_ = app.Close()
		return nil, fmt.Errorf("opening %s storage: %w", cfg.Storage.Backend, err)
	}

	// --- Core services ---
	app.Catalog = core.NewCatalogStore(app.Slot, core.CatalogStoreOptions{
		Key:    cfg.Storage.Key,
		Logger: app.Logger,
		Events: events,
	})
	app.Catalog.Load(context.Background())

	if cfg.Assistant.APIKey == "" {
		app.Logger.Warn("no assistant API key configured; replies will fall back to the error text")
	}
	app.Completion = integration.NewCompletionClient(integration.CompletionConfig{
		Endpoint: cfg.Assistant.Endpoint,
		APIKey:   cfg.Assistant.APIKey,
	})
	completer := &completerAdapter{client: app.Completion}

	// --- Wire CLI package-level variables ---
	cli.BasePath = basePath
	cli.Catalog = app.Catalog
	cli.Logger = app.Logger
	cli.NewEditor = func(existing *models.WorkflowRecord) core.CatalogEditor {
		return core.NewCatalogEditor(app.Catalog, existing, core.EditorOptions{Logger: app.Logger})
	}
	cli.NewAssistant = func() core.AssistantSession {
		return core.NewAssistantSession(app.Catalog, completer, core.AssistantOptions{
			Model:   cfg.Assistant.Model,
			Timeout: cfg.Assistant.Timeout,
			Logger:  app.Logger,
			Events:  events,
		})
	}

	cli.ConfirmDelete = cfg.ConfirmDelete
	cli.CreatorMode = cfg.CreatorMode
	cli.ServerAddr = cfg.ServerAddr
	cli.ChatSessionTTL = cfg.ChatSessionTTL
	cli.MaxChatSessions = cfg.MaxChatSessions

	cli.EventLog = app.EventLog
	cli.MetricsCalc = app.MetricsCalc

	return app, nil
}

// Close releases the storage slot and the event log file handle. It is safe
// to call on a partially initialized App.
func (a *App) Close() error {
	var firstErr error
	if a.Slot != nil {
		if err := a.Slot.Close(); err != nil {
			firstErr = fmt.Errorf("closing storage: %w", err)
		}
	}
	if a.EventLog != nil {
		if err := a.EventLog.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("closing event log: %w", err)
		}
	}
	return firstErr
}

// ResolveBasePath determines the flowfolio data directory. It checks the
// FOLIO_HOME env var, then walks up from the working directory looking for
// .folioconfig, then falls back to the working directory.
func ResolveBasePath() string {
	if home := os.Getenv("FOLIO_HOME"); home != "" {
		return home
	}
	dir, err := os.Getwd()
	if err != nil {
		return "."
	}
	cwd := dir
	for {
		if _, err := os.Stat(filepath.Join(dir, core.ConfigFileName)); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return cwd
}

// --- Adapters ---

// eventLogAdapter adapts observability.EventLog to core.EventLogger.
type eventLogAdapter struct {
	log observability.EventLog
}

func (a *eventLogAdapter) LogEvent(eventType string, data map[string]any) error {
	return a.log.Write(observability.Event{Type: eventType, Data: data})
}

// completerAdapter adapts integration.CompletionClient to core.Completer.
type completerAdapter struct {
	client integration.CompletionClient
}

func (a *completerAdapter) Complete(ctx context.Context, req core.CompletionRequest) (string, error) {
	resp, err := a.client.Complete(ctx, integration.CompletionRequest{
		Model:             req.Model,
		UserText:          req.UserText,
		SystemInstruction: req.SystemInstruction,
	})
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}
