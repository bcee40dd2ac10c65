package cli

import (
	"github.com/agenthub/hubctl/internal/core"
	"github.com/agenthub/hubctl/internal/observability"
	"github.com/agenthub/hubctl/internal/storage"
	"github.com/agenthub/hubctl/pkg/models"
)

// Service instances, set during app initialization in app.go.
var (
	BasePath string
	Config   *models.HubConfig

	Doc         *core.InstructionsDoc
	StatusStore storage.StatusStore
	Assignments storage.AssignmentStore
	AgentFiles  storage.AgentFiles
	Tracker     core.ProgressTracker

	EventLog    observability.EventLog
	AlertEngine observability.AlertEngine
	MetricsCalc observability.MetricsCalculator
	Notifier    observability.Notifier
)
