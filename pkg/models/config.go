package models

// AlertThresholds configures when alert conditions fire.
type AlertThresholds struct {
	AgentIdleMinutes      int `yaml:"agent_idle_minutes" mapstructure:"agent_idle_minutes"`
	TaskOverdueHours      int `yaml:"task_overdue_hours" mapstructure:"task_overdue_hours"`
	SystemDownMinutes     int `yaml:"system_down_minutes" mapstructure:"system_down_minutes"`
	ProductivityThreshold int `yaml:"productivity_threshold" mapstructure:"productivity_threshold"`
}

// AlertToggles enables or disables individual alert rule families.
type AlertToggles struct {
	AgentBlocked    bool `yaml:"agent_blocked" mapstructure:"agent_blocked"`
	AgentIdle       bool `yaml:"agent_idle" mapstructure:"agent_idle"`
	TaskOverdue     bool `yaml:"task_overdue" mapstructure:"task_overdue"`
	SystemDown      bool `yaml:"system_down" mapstructure:"system_down"`
	UrgentMessage   bool `yaml:"urgent_message" mapstructure:"urgent_message"`
	LowProductivity bool `yaml:"low_productivity" mapstructure:"low_productivity"`
}

// PollIntervals holds the adaptive polling cadence in seconds. Waiting agents
// poll more frequently than working ones.
type PollIntervals struct {
	WaitingSeconds int `yaml:"waiting_seconds" mapstructure:"waiting_seconds"`
	WorkingSeconds int `yaml:"working_seconds" mapstructure:"working_seconds"`
	AlertSeconds   int `yaml:"alert_seconds" mapstructure:"alert_seconds"`
}

// NotificationConfig holds external notification channel settings.
type NotificationConfig struct {
	SlackWebhookURL string   `yaml:"slack_webhook_url" mapstructure:"slack_webhook_url"`
	MailRecipients  []string `yaml:"mail_recipients" mapstructure:"mail_recipients"`
}

// HubConfig is the full hub configuration read from .hubrc via Viper.
type HubConfig struct {
	Agents        []string           `yaml:"agents" mapstructure:"agents"`
	Thresholds    AlertThresholds    `yaml:"thresholds" mapstructure:"thresholds"`
	AlertTypes    AlertToggles       `yaml:"alert_types" mapstructure:"alert_types"`
	Intervals     PollIntervals      `yaml:"intervals" mapstructure:"intervals"`
	Notifications NotificationConfig `yaml:"notifications" mapstructure:"notifications"`
}
