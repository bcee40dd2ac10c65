package core

import (
	"github.com/agenthub/hubctl/internal/observability"
	"github.com/agenthub/hubctl/pkg/models"
	"github.com/spf13/viper"
)

// DefaultHubConfig returns the built-in configuration: default thresholds
// and toggles, the inverted polling cadence, and no notification channels.
func DefaultHubConfig() *models.HubConfig {
	return &models.HubConfig{
		Thresholds: observability.DefaultThresholds(),
		AlertTypes: observability.DefaultToggles(),
		Intervals: models.PollIntervals{
			WaitingSeconds: 10,
			WorkingSeconds: 60,
			AlertSeconds:   60,
		},
	}
}

// ConfigManager loads the hub configuration from the .hubrc file.
type ConfigManager interface {
	Load() (*models.HubConfig, error)
}

type viperConfigManager struct {
	basePath string
}

// NewConfigManager creates a ConfigManager that reads .hubrc (YAML) from the
// given base directory.
func NewConfigManager(basePath string) ConfigManager {
	return &viperConfigManager{basePath: basePath}
}

// Load reads .hubrc via Viper. A missing file, an unreadable file, or
// invalid values all fall back to built-in defaults: configuration problems
// are never fatal.
func (cm *viperConfigManager) Load() (*models.HubConfig, error) {
	cfg := DefaultHubConfig()

	v := viper.New()
	v.SetConfigName(".hubrc")
	v.SetConfigType("yaml")
	v.AddConfigPath(cm.basePath)

	v.SetDefault("thresholds.agent_idle_minutes", cfg.Thresholds.AgentIdleMinutes)
	v.SetDefault("thresholds.task_overdue_hours", cfg.Thresholds.TaskOverdueHours)
	v.SetDefault("thresholds.system_down_minutes", cfg.Thresholds.SystemDownMinutes)
	v.SetDefault("thresholds.productivity_threshold", cfg.Thresholds.ProductivityThreshold)
	v.SetDefault("alert_types.agent_blocked", cfg.AlertTypes.AgentBlocked)
	v.SetDefault("alert_types.agent_idle", cfg.AlertTypes.AgentIdle)
	v.SetDefault("alert_types.task_overdue", cfg.AlertTypes.TaskOverdue)
	v.SetDefault("alert_types.system_down", cfg.AlertTypes.SystemDown)
	v.SetDefault("alert_types.urgent_message", cfg.AlertTypes.UrgentMessage)
	v.SetDefault("alert_types.low_productivity", cfg.AlertTypes.LowProductivity)
	v.SetDefault("intervals.waiting_seconds", cfg.Intervals.WaitingSeconds)
	v.SetDefault("intervals.working_seconds", cfg.Intervals.WorkingSeconds)
	v.SetDefault("intervals.alert_seconds", cfg.Intervals.AlertSeconds)

	if err := v.ReadInConfig(); err != nil {
		// Missing or malformed config falls back to defaults.
		return cfg, nil
	}

	loaded := &models.HubConfig{
		Agents: v.GetStringSlice("agents"),
		Thresholds: models.AlertThresholds{
			AgentIdleMinutes:      v.GetInt("thresholds.agent_idle_minutes"),
			TaskOverdueHours:      v.GetInt("thresholds.task_overdue_hours"),
			SystemDownMinutes:     v.GetInt("thresholds.system_down_minutes"),
			ProductivityThreshold: v.GetInt("thresholds.productivity_threshold"),
		},
		AlertTypes: models.AlertToggles{
			AgentBlocked:    v.GetBool("alert_types.agent_blocked"),
			AgentIdle:       v.GetBool("alert_types.agent_idle"),
			TaskOverdue:     v.GetBool("alert_types.task_overdue"),
			SystemDown:      v.GetBool("alert_types.system_down"),
			UrgentMessage:   v.GetBool("alert_types.urgent_message"),
			LowProductivity: v.GetBool("alert_types.low_productivity"),
		},
		Intervals: models.PollIntervals{
			WaitingSeconds: v.GetInt("intervals.waiting_seconds"),
			WorkingSeconds: v.GetInt("intervals.working_seconds"),
			AlertSeconds:   v.GetInt("intervals.alert_seconds"),
		},
		Notifications: models.NotificationConfig{
			SlackWebhookURL: v.GetString("notifications.slack_webhook_url"),
			MailRecipients:  v.GetStringSlice("notifications.mail_recipients"),
		},
	}

	sanitizeConfig(loaded)
	return loaded, nil
}

// sanitizeConfig replaces non-positive numeric settings with defaults.
// Invalid values degrade to defaults rather than failing.
func sanitizeConfig(cfg *models.HubConfig) {
	defaults := DefaultHubConfig()

	if cfg.Thresholds.AgentIdleMinutes <= 0 {
		cfg.Thresholds.AgentIdleMinutes = defaults.Thresholds.AgentIdleMinutes
	}
	if cfg.Thresholds.TaskOverdueHours <= 0 {
		cfg.Thresholds.TaskOverdueHours = defaults.Thresholds.TaskOverdueHours
	}
	if cfg.Thresholds.SystemDownMinutes <= 0 {
		cfg.Thresholds.SystemDownMinutes = defaults.Thresholds.SystemDownMinutes
	}
	if cfg.Thresholds.ProductivityThreshold <= 0 {
		cfg.Thresholds.ProductivityThreshold = defaults.Thresholds.ProductivityThreshold
	}
	if cfg.Intervals.WaitingSeconds <= 0 {
		cfg.Intervals.WaitingSeconds = defaults.Intervals.WaitingSeconds
	}
	if cfg.Intervals.WorkingSeconds <= 0 {
		cfg.Intervals.WorkingSeconds = defaults.Intervals.WorkingSeconds
	}
	if cfg.Intervals.AlertSeconds <= 0 {
		cfg.Intervals.AlertSeconds = defaults.Intervals.AlertSeconds
	}
}
