package config

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	Storage       StorageConfig
	Reminder      ReminderConfig
	Notifications NotificationConfig
	Alerts        AlertConfig
	Jobs          JobsConfig
	Logging       LoggingConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port            string
	Environment     string
	ShutdownTimeout time.Duration
	AllowedOrigins  []string
}

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// StorageConfig holds Azure Blob Storage configuration. Storage is optional: without
// credentials tones stay in memory and reports are not archived.
type StorageConfig struct {
	AccountName string
	AccountKey  string
	Container   string
}

// Enabled reports whether blob storage credentials are configured
func (s StorageConfig) Enabled() bool {
	return s.AccountName != "" || s.AccountKey != ""
}

// ReminderConfig holds reminder scheduler configuration
type ReminderConfig struct {
	Interval      time.Duration
	WindowMinutes int
	Urgent        bool
}

// NotificationConfig holds the outbound webhook configuration. An empty URL disables it.
type NotificationConfig struct {
	WebhookURL       string
	Timeout          time.Duration
	FailureThreshold uint32
	OpenTimeout      time.Duration
}

// AlertConfig holds in-app alert configuration
type AlertConfig struct {
	FeedCapacity   int
	ToneSampleRate int
}

// JobsConfig holds recurring job configuration
type JobsConfig struct {
	ResetSchedule string
	Timeout       time.Duration
	RetryInterval time.Duration
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string // json or console
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)
	v.AutomaticEnv()
	bindEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.shutdowntimeout", 30*time.Second)
	v.SetDefault("server.allowedorigins", []string{"*"})

	// Database defaults
	v.SetDefault("database.maxopenconns", 25)
	v.SetDefault("database.maxidleconns", 5)
	v.SetDefault("database.connmaxlifetime", 5*time.Minute)

	v.SetDefault("storage.container", "medimind")

	// Reminder defaults
	v.SetDefault("reminder.interval", 30*time.Second)
	v.SetDefault("reminder.windowminutes", 1)
	v.SetDefault("reminder.urgent", false)

	// Notification webhook defaults
	v.SetDefault("notifications.timeout", 5*time.Second)
	v.SetDefault("notifications.failurethreshold", 5)
	v.SetDefault("notifications.opentimeout", time.Minute)

	v.SetDefault("alerts.feedcapacity", 50)
	v.SetDefault("alerts.tonesamplerate", 22050)

	v.SetDefault("jobs.resetschedule", "0 0 * * *")
	v.SetDefault("jobs.timeout", time.Minute)
	v.SetDefault("jobs.retryinterval", 5*time.Minute)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

func bindEnvVars(v *viper.Viper) {
	// Server
	v.BindEnv("server.port", "PORT")
	v.BindEnv("server.environment", "ENV", "ENVIRONMENT")
	v.BindEnv("server.allowedorigins", "CORS_ALLOWED_ORIGINS")

	// Database
	v.BindEnv("database.url", "DATABASE_URL")

	// Azure Storage
	v.BindEnv("storage.accountname", "AZURE_STORAGE_ACCOUNT_NAME")
	v.BindEnv("storage.accountkey", "AZURE_STORAGE_ACCOUNT_KEY")
	v.BindEnv("storage.container", "AZURE_STORAGE_CONTAINER")

	// Reminders
	v.BindEnv("reminder.interval", "REMINDER_INTERVAL")
	v.BindEnv("reminder.windowminutes", "REMINDER_WINDOW_MINUTES")
	v.BindEnv("reminder.urgent", "REMINDER_URGENT")

	// Notification webhook
	v.BindEnv("notifications.webhookurl", "NOTIFICATION_WEBHOOK_URL")
	v.BindEnv("notifications.timeout", "NOTIFICATION_WEBHOOK_TIMEOUT")
	v.BindEnv("notifications.failurethreshold", "NOTIFICATION_WEBHOOK_FAILURE_THRESHOLD")
	v.BindEnv("notifications.opentimeout", "NOTIFICATION_WEBHOOK_OPEN_TIMEOUT")

	// Alerts
	v.BindEnv("alerts.feedcapacity", "ALERT_FEED_CAPACITY")
	v.BindEnv("alerts.tonesamplerate", "ALERT_TONE_SAMPLE_RATE")

	// Jobs
	v.BindEnv("jobs.resetschedule", "DAILY_RESET_SCHEDULE")
	v.BindEnv("jobs.timeout", "DAILY_RESET_TIMEOUT")
	v.BindEnv("jobs.retryinterval", "DAILY_RESET_RETRY_INTERVAL")

	// Logging
	v.BindEnv("logging.level", "LOG_LEVEL")
	v.BindEnv("logging.format", "LOG_FORMAT")
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("database.url is required")
	}

	if c.Storage.Enabled() && (c.Storage.AccountName == "" || c.Storage.AccountKey == "") {
		return fmt.Errorf("azure storage requires both account name and account key")
	}
	if c.Storage.Enabled() && c.Storage.Container == "" {
		return fmt.Errorf("storage.container is required when azure storage is configured")
	}

	if c.Reminder.Interval <= 0 {
		return fmt.Errorf("reminder.interval must be positive")
	}
	if c.Reminder.WindowMinutes < 1 || c.Reminder.WindowMinutes > 30 {
		return fmt.Errorf("reminder.windowminutes must be between 1 and 30")
	}

	if c.Notifications.WebhookURL != "" && c.Notifications.Timeout <= 0 {
		return fmt.Errorf("notifications.timeout must be positive")
	}

	if c.Alerts.FeedCapacity <= 0 {
		return fmt.Errorf("alerts.feedcapacity must be positive")
	}
	if c.Alerts.ToneSampleRate < 8000 || c.Alerts.ToneSampleRate > 96000 {
		return fmt.Errorf("alerts.tonesamplerate must be between 8000 and 96000")
	}

	if _, err := cron.ParseStandard(c.Jobs.ResetSchedule); err != nil {
		return fmt.Errorf("jobs.resetschedule is not a valid cron expression: %w", err)
	}

	return nil
}
