package config

import (
	"errors"
	"io/fs"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// ----------------------------
	// Mail
	// ----------------------------
	MailProvider  string  `envconfig:"MAIL_PROVIDER" default:"smtp"`
	MailFrom      string  `envconfig:"MAIL_FROM" default:"rsvp@ourwedding.example"`
	MailFromName  string  `envconfig:"MAIL_FROM_NAME" default:"The Happy Couple"`
	MailRateLimit float64 `envconfig:"MAIL_RATE_LIMIT" default:"2"`

	SMTPHost     string `envconfig:"SMTP_HOST" default:""`
	SMTPPort     int    `envconfig:"SMTP_PORT" default:"587"`
	SMTPUser     string `envconfig:"SMTP_USER" default:""`
	SMTPPassword string `envconfig:"SMTP_PASSWORD" default:""`

	BrevoAPIKey string `envconfig:"BREVO_API_KEY" default:""`

	// ----------------------------
	// Reminders
	// ----------------------------
	ReminderTimezone string        `envconfig:"REMINDER_TIMEZONE" default:"America/Chicago"`
	ReminderInterval time.Duration `envconfig:"REMINDER_INTERVAL" default:"1h"`

	// ----------------------------
	// HTTP API
	// ----------------------------
	APIPort       string `envconfig:"API_PORT" default:"8080"`
	AdminToken    string `envconfig:"ADMIN_TOKEN" default:""`
	RSVPRateLimit int    `envconfig:"RSVP_RATE_LIMIT" default:"10"`

	// ----------------------------
	// Metrics / Logging
	// ----------------------------
	MetricsPort string `envconfig:"METRICS_PORT" default:"9090"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	// ----------------------------
	// Events
	// ----------------------------
	AMQPURL   string `envconfig:"AMQP_URL" default:""`
	AMQPQueue string `envconfig:"AMQP_QUEUE" default:"reminder_events"`

	// ----------------------------
	// Database
	// ----------------------------
	DatabaseURL    string        `envconfig:"DATABASE_URL" required:"true"`
	DBConnectRetry time.Duration `envconfig:"DB_CONNECT_RETRY" default:"30s"`
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	var cfg Config
	err := envconfig.Process("", &cfg)
	return &cfg, err
}

// Location resolves the reference timezone used for reminder day buckets.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.ReminderTimezone)
}
