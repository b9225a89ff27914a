package config

import (
	"time"

	"github.com/spf13/viper"
)

type StoreBackend string

const (
	StoreBackendSQLite StoreBackend = "sqlite" // gorm + sqlite (default)
	StoreBackendBolt   StoreBackend = "bolt"   // single-file bbolt key/value store
)

type FetcherKind string

const (
	FetcherAuto    FetcherKind = "auto"    // browser when capture is enabled, else http
	FetcherHTTP    FetcherKind = "http"    // plain HTTP client, no session cookies
	FetcherBrowser FetcherKind = "browser" // fetch() inside the capture browser
)

type (
	Config struct {
		HTTP
		Global
		Database
		Store
		Capture
		Assembly
		Export
		Tasks
		Log
	}

	HTTP struct {
		Port           int32
		Host           string
		EventKeepalive time.Duration // SSE comment interval on idle streams
		MCPEnabled     bool          // mount the MCP streamable HTTP endpoint at /mcp
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
	Database struct {
		Path string
	}
	Store struct {
		Backend  StoreBackend
		BoltPath string
	}
	Capture struct {
		Enabled     bool
		Headless    bool
		StartURL    string
		UserDataDir string
		DedupSize   int           // How many recent request URLs are remembered
		DedupWindow time.Duration // A repeat inside this window is treated as a burst duplicate
		AuditDir    string        // JSON copies of failed capture events; empty disables
	}
	Assembly struct {
		PageTimeout          time.Duration
		FailOnAllPagesFailed bool
		UserAgent            string
		Fetcher              FetcherKind
		CacheDir             string // page image cache; empty disables caching
		SpoolDir             string // temp files while building; empty uses the OS default
	}
	Export struct {
		Dir             string
		Retention       time.Duration
		CleanupSchedule string // Cron format: "0 * * * *" = hourly
	}
	Tasks struct {
		Enabled         bool
		Workers         int
		ReleaseAfter    time.Duration
		CleanupInterval time.Duration
	}
	Log struct {
		Level       string
		Development bool
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8188)
	v.SetDefault("host", "127.0.0.1")
	v.SetDefault("event_keepalive", "30s")
	v.SetDefault("mcp_enabled", true)
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("database_path", DefaultDatabasePath)

	v.SetDefault("store_backend", string(StoreBackendSQLite))
	v.SetDefault("bolt_path", DefaultBoltPath)

	// Capture defaults
	v.SetDefault("capture_enabled", false)
	v.SetDefault("capture_headless", false) // the user reads in this window
	v.SetDefault("capture_start_url", "about:blank")
	v.SetDefault("capture_user_data_dir", "")
	v.SetDefault("capture_dedup_size", 64)
	v.SetDefault("capture_dedup_window", "2s")
	v.SetDefault("capture_audit_dir", "")

	// Assembly defaults
	v.SetDefault("assembly_page_timeout", "60s")
	v.SetDefault("assembly_fail_on_all_pages_failed", false)
	v.SetDefault("assembly_user_agent", DefaultUserAgent)
	v.SetDefault("assembly_fetcher", string(FetcherAuto))
	v.SetDefault("assembly_cache_dir", "")
	v.SetDefault("assembly_spool_dir", "")

	// Export defaults
	v.SetDefault("export_dir", "./exports")
	v.SetDefault("export_retention", "168h") // 7 days
	v.SetDefault("export_cleanup_schedule", "0 * * * *")

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 1)
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")

	v.SetDefault("log_level", "info")
	v.SetDefault("log_development", false)

	return &Config{
		HTTP: HTTP{
			Port:           v.GetInt32("PORT"),
			Host:           v.GetString("HOST"),
			EventKeepalive: v.GetDuration("EVENT_KEEPALIVE"),
			MCPEnabled:     v.GetBool("MCP_ENABLED"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		Store: Store{
			Backend:  StoreBackend(v.GetString("STORE_BACKEND")),
			BoltPath: v.GetString("BOLT_PATH"),
		},
		Capture: Capture{
			Enabled:     v.GetBool("CAPTURE_ENABLED"),
			Headless:    v.GetBool("CAPTURE_HEADLESS"),
			StartURL:    v.GetString("CAPTURE_START_URL"),
			UserDataDir: v.GetString("CAPTURE_USER_DATA_DIR"),
			DedupSize:   v.GetInt("CAPTURE_DEDUP_SIZE"),
			DedupWindow: v.GetDuration("CAPTURE_DEDUP_WINDOW"),
			AuditDir:    v.GetString("CAPTURE_AUDIT_DIR"),
		},
		Assembly: Assembly{
			PageTimeout:          v.GetDuration("ASSEMBLY_PAGE_TIMEOUT"),
			FailOnAllPagesFailed: v.GetBool("ASSEMBLY_FAIL_ON_ALL_PAGES_FAILED"),
			UserAgent:            v.GetString("ASSEMBLY_USER_AGENT"),
			Fetcher:              FetcherKind(v.GetString("ASSEMBLY_FETCHER")),
			CacheDir:             v.GetString("ASSEMBLY_CACHE_DIR"),
			SpoolDir:             v.GetString("ASSEMBLY_SPOOL_DIR"),
		},
		Export: Export{
			Dir:             v.GetString("EXPORT_DIR"),
			Retention:       v.GetDuration("EXPORT_RETENTION"),
			CleanupSchedule: v.GetString("EXPORT_CLEANUP_SCHEDULE"),
		},
		Tasks: Tasks{
			Enabled:         v.GetBool("TASKS_ENABLED"),
			Workers:         v.GetInt("TASK_WORKERS"),
			ReleaseAfter:    v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval: v.GetDuration("TASK_CLEANUP_INTERVAL"),
		},
		Log: Log{
			Level:       v.GetString("LOG_LEVEL"),
			Development: v.GetBool("LOG_DEVELOPMENT"),
		},
	}
}
