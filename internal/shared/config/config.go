package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server    ServerConfig
	Firestore FirestoreConfig
	Bankfeed  BankfeedConfig
	Sync      SyncConfig
	Scheduler SchedulerConfig
	TLS       TLSConfig
	Telemetry TelemetryConfig
}

type ServerConfig struct {
	Port         string
	Host         string
	AllowedHosts []string
}

type FirestoreConfig struct {
	ProjectID       string
	CredentialsFile string
}

type BankfeedConfig struct {
	BaseURL       string
	PartnerID     string
	PartnerSecret string
	AppKey        string
}

type SyncConfig struct {
	HistoryMonths int
	WindowDays    int
	PageLimit     int
}

type SchedulerConfig struct {
	Enabled       bool
	ScheduleTimes []string
	WorkerCount   int
	JobDelay      time.Duration
	QueueSize     int
	RunOnStartup  bool
}

type TLSConfig struct {
	Enabled      bool
	CertPath     string
	KeyPath      string
	RedirectHTTP bool
}

type TelemetryConfig struct {
	Enabled      bool
	ServiceName  string
	Environment  string
	OTLPEndpoint string
	MetricsPort  string
}

func Load() (*Config, error) {

	// Parse sync configuration
	historyMonths, err := strconv.Atoi(getEnv("SYNC_HISTORY_MONTHS", "3"))
	if err != nil {
		return nil, fmt.Errorf("invalid SYNC_HISTORY_MONTHS: %w", err)
	}
	windowDays, err := strconv.Atoi(getEnv("SYNC_WINDOW_DAYS", "180"))
	if err != nil {
		return nil, fmt.Errorf("invalid SYNC_WINDOW_DAYS: %w", err)
	}
	pageLimit, err := strconv.Atoi(getEnv("SYNC_PAGE_LIMIT", "1000"))
	if err != nil {
		return nil, fmt.Errorf("invalid SYNC_PAGE_LIMIT: %w", err)
	}

	// Parse scheduler configuration
	schedulerEnabled := getBoolEnv("SCHEDULER_ENABLED", true)
	schedulerTimes := strings.Split(getEnv("SCHEDULER_TIMES", "06:00,18:00"), ",")
	schedulerWorkers, err := strconv.Atoi(getEnv("SCHEDULER_WORKERS", "3"))
	if err != nil {
		return nil, fmt.Errorf("invalid SCHEDULER_WORKERS: %w", err)
	}
	schedulerJobDelay, err := time.ParseDuration(getEnv("SCHEDULER_JOB_DELAY", "1s"))
	if err != nil {
		return nil, fmt.Errorf("invalid SCHEDULER_JOB_DELAY: %w", err)
	}
	schedulerQueueSize, err := strconv.Atoi(getEnv("SCHEDULER_QUEUE_SIZE", "100"))
	if err != nil {
		return nil, fmt.Errorf("invalid SCHEDULER_QUEUE_SIZE: %w", err)
	}
	schedulerRunOnStartup := getBoolEnv("SCHEDULER_RUN_ON_STARTUP", false)

	// Parse allowed hosts (comma-separated list)
	allowedHostsStr := getEnv("ALLOWED_HOSTS", "")
	var allowedHosts []string
	if allowedHostsStr != "" {
		for _, host := range strings.Split(allowedHostsStr, ",") {
			host = strings.TrimSpace(host)
			if host != "" {
				allowedHosts = append(allowedHosts, host)
			}
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			Host:         getEnv("HOST", "0.0.0.0"),
			AllowedHosts: allowedHosts,
		},
		Firestore: FirestoreConfig{
			ProjectID:       getEnv("FIRESTORE_PROJECT_ID", ""),
			CredentialsFile: getEnv("FIREBASE_CREDENTIALS_FILE", ""),
		},
		Bankfeed: BankfeedConfig{
			BaseURL:       getEnv("BANKFEED_BASE_URL", ""),
			PartnerID:     getEnv("BANKFEED_PARTNER_ID", ""),
			PartnerSecret: getEnv("BANKFEED_PARTNER_SECRET", ""),
			AppKey:        getEnv("BANKFEED_APP_KEY", ""),
		},
		Sync: SyncConfig{
			HistoryMonths: historyMonths,
			WindowDays:    windowDays,
			PageLimit:     pageLimit,
		},
		Scheduler: SchedulerConfig{
			Enabled:       schedulerEnabled,
			ScheduleTimes: schedulerTimes,
			WorkerCount:   schedulerWorkers,
			JobDelay:      schedulerJobDelay,
			QueueSize:     schedulerQueueSize,
			RunOnStartup:  schedulerRunOnStartup,
		},
		TLS: TLSConfig{
			Enabled:      getBoolEnv("TLS_ENABLED", false),
			CertPath:     getEnv("TLS_CERT_PATH", ""),
			KeyPath:      getEnv("TLS_KEY_PATH", ""),
			RedirectHTTP: getBoolEnv("TLS_REDIRECT_HTTP", false),
		},
		Telemetry: TelemetryConfig{
			Enabled:      getBoolEnv("OTEL_ENABLED", false),
			ServiceName:  getEnv("OTEL_SERVICE_NAME", "fresco-sync"),
			Environment:  getEnv("OTEL_ENVIRONMENT", "development"),
			OTLPEndpoint: getEnv("OTEL_EXPORTER_ENDPOINT", "localhost:4317"),
			MetricsPort:  getEnv("METRICS_PORT", "9091"),
		},
	}

	// Validate required fields
	if cfg.Firestore.ProjectID == "" {
		return nil, fmt.Errorf("FIRESTORE_PROJECT_ID is required")
	}

	// Missing aggregator partner credentials are deliberately not fatal
	// here: the token source surfaces them as a configuration error at
	// first use, so the webhook surface can still start and report health.

	// Validate sync bounds
	if cfg.Sync.HistoryMonths < 1 {
		return nil, fmt.Errorf("SYNC_HISTORY_MONTHS must be at least 1")
	}
	if cfg.Sync.WindowDays < 1 || cfg.Sync.WindowDays > 180 {
		return nil, fmt.Errorf("SYNC_WINDOW_DAYS must be between 1 and 180 (aggregator range ceiling)")
	}
	if cfg.Sync.PageLimit < 1 {
		return nil, fmt.Errorf("SYNC_PAGE_LIMIT must be at least 1")
	}

	// Validate TLS configuration
	if cfg.TLS.Enabled {
		if cfg.TLS.CertPath == "" {
			return nil, fmt.Errorf("TLS_CERT_PATH is required when TLS_ENABLED=true")
		}
		if cfg.TLS.KeyPath == "" {
			return nil, fmt.Errorf("TLS_KEY_PATH is required when TLS_ENABLED=true")
		}
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	// Accept: true, false, 1, 0, yes, no (case-insensitive)
	switch strings.ToLower(value) {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	default:
		return defaultValue
	}
}
