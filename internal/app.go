// Package internal provides the App struct that wires all components of the
// agent communication hub together and initializes the CLI layer.
package internal

import (
	"os"
	"path/filepath"

	"github.com/agenthub/hubctl/internal/cli"
	"github.com/agenthub/hubctl/internal/core"
	"github.com/agenthub/hubctl/internal/observability"
	"github.com/agenthub/hubctl/internal/storage"
	"github.com/agenthub/hubctl/pkg/models"
)

// App holds all service dependencies for the hub.
type App struct {
	BasePath string

	// Configuration
	ConfigMgr core.ConfigManager
	Config    *models.HubConfig

	// Storage layer
	StatusStore storage.StatusStore
	Assignments storage.AssignmentStore
	AgentFiles  storage.AgentFiles

	// Core services
	Doc     *core.InstructionsDoc
	Tracker core.ProgressTracker

	// Observability
	EventLog    observability.EventLog
	AlertEngine observability.AlertEngine
	MetricsCalc observability.MetricsCalculator
	Notifier    observability.Notifier
}

// NewApp creates and wires all components of the hub. basePath is the hub
// base directory where the shared documents live (typically HUB_HOME or the
// directory containing instructions.md).
func NewApp(basePath string) (*App, error) {
	app := &App{BasePath: basePath}

	// --- Configuration ---
	app.ConfigMgr = core.NewConfigManager(basePath)
	cfg, err := app.ConfigMgr.Load()
	if err != nil {
		cfg = core.DefaultHubConfig()
	}
	app.Config = cfg

	// --- Storage layer ---
	app.StatusStore = storage.NewStatusStore(basePath)
	app.Assignments = storage.NewAssignmentStore(basePath)
	app.AgentFiles = storage.NewAgentFiles(basePath)

	// --- Core services ---
	app.Doc = core.NewInstructionsDoc(filepath.Join(basePath, "instructions.md"))
	app.Tracker = core.NewProgressTracker(basePath, app.StatusStore, app.Assignments)

	// --- Observability ---
	eventLogPath := filepath.Join(basePath, ".hub_events.jsonl")
	app.EventLog, err = observability.NewEventLog(eventLogPath)
	if err != nil {
		// Non-fatal: disable event logging if the file can't be created.
		app.EventLog = nil
	}
	if app.EventLog != nil {
		app.MetricsCalc = observability.NewMetricsCalculator(app.EventLog)
	}

	var channels []observability.Notifier
	if cfg.Notifications.SlackWebhookURL != "" {
		channels = append(channels, observability.NewSlackNotifier(cfg.Notifications.SlackWebhookURL))
	}
	if len(cfg.Notifications.MailRecipients) > 0 {
		transport := observability.NewCommandMailTransport()
		channels = append(channels, observability.NewMailNotifier(transport, cfg.Notifications.MailRecipients))
	}
	if len(channels) > 0 {
		app.Notifier = observability.NewMultiNotifier(channels...)
	}

	alertLog := observability.NewAlertLog(filepath.Join(basePath, "alerts.log"))
	app.AlertEngine = observability.NewAlertEngine(
		app.StatusStore,
		app.Doc,
		cfg.Thresholds,
		cfg.AlertTypes,
		alertLog,
		app.Notifier,
		app.EventLog,
	)

	// --- Wire CLI package-level variables ---
	cli.BasePath = basePath
	cli.Config = app.Config
	cli.Doc = app.Doc
	cli.StatusStore = app.StatusStore
	cli.Assignments = app.Assignments
	cli.AgentFiles = app.AgentFiles
	cli.Tracker = app.Tracker

	cli.EventLog = app.EventLog
	cli.AlertEngine = app.AlertEngine
	cli.MetricsCalc = app.MetricsCalc
	cli.Notifier = app.Notifier

	return app, nil
}

// Close releases resources held by the App, such as the event log file handle.
// It is safe to call Close on an App whose EventLog is nil.
func (a *App) Close() error {
	if a.EventLog != nil {
		return a.EventLog.Close()
	}
	return nil
}

// ResolveBasePath determines the hub base directory. It checks the HUB_HOME
// env var, then walks up from the current directory looking for
// instructions.md, and falls back to the current directory.
func ResolveBasePath() string {
	if home := os.Getenv("HUB_HOME"); home != "" {
		return home
	}
	dir, err := os.Getwd()
	if err != nil {
		return "."
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "instructions.md")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	cwd, _ := os.Getwd()
	return cwd
}
