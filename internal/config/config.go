package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all runtime configuration loaded from environment
// variables. Every field has a sensible default; only DATABASE_URL is
// required (FCM_CREDENTIALS_FILE is required unless push is disabled).
type Config struct {
	// Server
	HTTPPort        string        `envconfig:"HTTP_PORT" default:"8080"`
	ReadTimeout     time.Duration `envconfig:"READ_TIMEOUT" default:"5s"`
	WriteTimeout    time.Duration `envconfig:"WRITE_TIMEOUT" default:"10s"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`

	// Database
	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`
	DBMaxConns  int32  `envconfig:"DB_MAX_CONNS" default:"25"`
	DBMinConns  int32  `envconfig:"DB_MIN_CONNS" default:"5"`

	// Mail transport
	SMTPHost     string `envconfig:"SMTP_HOST" default:"localhost"`
	SMTPPort     int    `envconfig:"SMTP_PORT" default:"587"`
	SMTPUsername string `envconfig:"SMTP_USERNAME"`
	SMTPPassword string `envconfig:"SMTP_PASSWORD"`
	MailFrom     string `envconfig:"MAIL_FROM" default:"noreply@pawfectcare.app"`

	// Push transport
	FCMCredentialsFile string `envconfig:"FCM_CREDENTIALS_FILE"`

	// Mail delivery
	MailWorkers   int `envconfig:"MAIL_WORKERS" default:"5"`
	QueueCapacity int `envconfig:"QUEUE_CAPACITY" default:"5000"`

	// Rate limiting: maximum sends per second per channel
	RateLimit int `envconfig:"RATE_LIMIT_PER_CHANNEL" default:"100"`

	// Recovery worker: poll cadence, and how old a pending record must
	// be before it is considered lost and re-enqueued.
	RecoveryInterval  time.Duration `envconfig:"RECOVERY_INTERVAL" default:"30s"`
	PendingStaleAfter time.Duration `envconfig:"PENDING_STALE_AFTER" default:"5m"`

	// Scheduled jobs (cron expressions, server local time)
	CleanupSchedule  string `envconfig:"CLEANUP_SCHEDULE" default:"0 2 * * *"`
	ReminderSchedule string `envconfig:"REMINDER_SCHEDULE" default:"0 9 * * *"`

	// Retention window for swept notification records
	RetentionDays int `envconfig:"RETENTION_DAYS" default:"30"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return &cfg, nil
}
