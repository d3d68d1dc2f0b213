package cfg

type Cfg struct {
	// Database configuration
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// News ingestion configuration
	NewsAPIKey      string
	NewsAPIURL      string
	SourcesDir      string
	AllowSampleData bool
	FetchSchedule   string

	// Alert processing configuration
	ProcessSchedule string
	LookbackHours   int
	WorkerCount     int

	// Email configuration
	SendGridAPIKey  string
	FromEmail       string
	FromName        string
	EmailRatePerSec int

	// HTTP server configuration
	Port         string
	APIAccessKey string

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
