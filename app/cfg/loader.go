package cfg

import (
	"cmp"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Database configuration
	DBHost     string `long:"db-host" env:"DB_HOST" default:"localhost" description:"Database host"`
	DBPort     string `long:"db-port" env:"DB_PORT" default:"5432" description:"Database port"`
	DBUser     string `long:"db-user" env:"DB_USER" default:"newsalert" description:"Database user"`
	DBPassword string `long:"db-password" env:"DB_PASSWORD" default:"newsalert" description:"Database password (required)" required:"true"`
	DBName     string `long:"db-name" env:"DB_NAME" default:"newsalert" description:"Database name"`
	DBSSLMode  string `long:"db-sslmode" env:"DB_SSLMODE" default:"disable" description:"Database SSL mode"`

	// News ingestion configuration
	NewsAPIKey      string `long:"newsapi-key" env:"NEWS_API_KEY" description:"NewsAPI key (fetching fails without it unless sample data is allowed)"`
	NewsAPIURL      string `long:"newsapi-url" env:"NEWS_API_URL" default:"https://newsapi.org/v2" description:"NewsAPI base URL"`
	SourcesDir      string `long:"sources-dir" env:"SOURCES_DIR" default:"./sources" description:"Directory containing ingestion source definition files"`
	AllowSampleData bool   `long:"allow-sample-data" env:"ALLOW_SAMPLE_DATA" description:"Serve built-in sample articles when NewsAPI is not configured (development only)"`
	FetchSchedule   string `long:"fetch-schedule" env:"FETCH_SCHEDULE" default:"@every 15m" description:"Cron schedule for news fetching"`

	// Alert processing configuration
	ProcessSchedule string `long:"process-schedule" env:"PROCESS_SCHEDULE" default:"@every 5m" description:"Cron schedule for alert processing"`
	LookbackHours   int    `long:"lookback-hours" env:"LOOKBACK_HOURS" default:"24" description:"How far back to look for candidate articles"`
	WorkerCount     int    `long:"worker-count" env:"WORKER_COUNT" default:"5" description:"Number of background workers"`

	// Email configuration
	SendGridAPIKey  string `long:"sendgrid-key" env:"SENDGRID_API_KEY" description:"SendGrid API key for alert emails"`
	FromEmail       string `long:"from-email" env:"FROM_EMAIL" default:"alerts@localhost" description:"From address for alert emails"`
	FromName        string `long:"from-name" env:"FROM_NAME" default:"News Alerts" description:"From name for alert emails"`
	EmailRatePerSec int    `long:"email-rate" env:"EMAIL_RATE_PER_SEC" default:"2" description:"Maximum outbound emails per second"`

	// HTTP server configuration
	Port         string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	APIAccessKey string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for authentication (optional)"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"NewsAlert/1.0" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, America/New_York)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		DBHost:          raw.DBHost,
		DBPort:          raw.DBPort,
		DBUser:          raw.DBUser,
		DBPassword:      raw.DBPassword,
		DBName:          raw.DBName,
		DBSSLMode:       raw.DBSSLMode,
		NewsAPIKey:      raw.NewsAPIKey,
		NewsAPIURL:      raw.NewsAPIURL,
		SourcesDir:      raw.SourcesDir,
		AllowSampleData: raw.AllowSampleData,
		FetchSchedule:   raw.FetchSchedule,
		ProcessSchedule: raw.ProcessSchedule,
		LookbackHours:   raw.LookbackHours,
		WorkerCount:     raw.WorkerCount,
		SendGridAPIKey:  raw.SendGridAPIKey,
		FromEmail:       raw.FromEmail,
		FromName:        raw.FromName,
		EmailRatePerSec: raw.EmailRatePerSec,
		Port:            raw.Port,
		APIAccessKey:    raw.APIAccessKey,
		UserAgent:       raw.UserAgent,
		Timezone:        raw.Timezone,
		Debug:           raw.Debug,
		Version:         GetVersion(),
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
		}
	}
	return nil
}
