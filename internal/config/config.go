package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds the application configuration loaded from env files, the
// environment and command-line flags. It is resolved once at startup.
type Config struct {
	AppName  string `mapstructure:"app_name"`
	Env      string `mapstructure:"app_env"`
	LogLevel string `mapstructure:"log_level"`

	APIBase         string `mapstructure:"api_base"`
	HealthcheckPath string `mapstructure:"healthcheck_path"`
	BackendURL      string `mapstructure:"backend_url"`
	BackendDocsPath string `mapstructure:"backend_docs_path"`

	RequestTimeoutSeconds int64         `mapstructure:"request_timeout_seconds"`
	RequestTimeout        time.Duration `mapstructure:"-"`
	WatchIntervalSeconds  int64         `mapstructure:"watch_interval"`
	WatchInterval         time.Duration `mapstructure:"-"`

	PublishersFile string `mapstructure:"publishers_file"`

	StorageType            string        `mapstructure:"storage_type"`
	BBoltPath              string        `mapstructure:"bbolt_path"`
	StorageTTLSeconds      int64         `mapstructure:"storage_ttl_seconds"`
	StorageCleanupSeconds  int64         `mapstructure:"storage_cleanup_interval_seconds"`
	StorageTTL             time.Duration `mapstructure:"-"`
	StorageCleanupInterval time.Duration `mapstructure:"-"`
}

// envAliases lets the browser-era variable names keep working.
var envAliases = map[string][]string{
	"api_base":          {"API_BASE", "REACT_APP_API_BASE"},
	"healthcheck_path":  {"HEALTHCHECK_PATH", "REACT_APP_HEALTHCHECK_PATH"},
	"backend_url":       {"BACKEND_URL", "REACT_APP_BACKEND_URL"},
	"backend_docs_path": {"BACKEND_DOCS_PATH", "REACT_APP_BACKEND_DOCS_PATH"},
}

// flagKeys maps command-line flag names to config keys.
var flagKeys = map[string]string{
	"api-base":        "api_base",
	"health-path":     "healthcheck_path",
	"log-level":       "log_level",
	"timeout":         "request_timeout_seconds",
	"interval":        "watch_interval",
	"storage":         "storage_type",
	"bbolt-path":      "bbolt_path",
	"publishers-file": "publishers_file",
}

// NewFlagSet declares the flags Load understands.
func NewFlagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.String("api-base", "", "backend base URL (env API_BASE)")
	fs.String("health-path", "", "health-check path (env HEALTHCHECK_PATH)")
	fs.String("log-level", "", "log level: debug, info, warn, error")
	fs.Int64("timeout", 0, "request timeout in seconds, 0 disables")
	fs.Int64("interval", 0, "watch interval in seconds")
	fs.String("storage", "", "call history storage: none or bbolt")
	fs.String("bbolt-path", "", "call history database path")
	fs.String("publishers-file", "", "call report publishers file (YAML or JSON)")
	return fs
}

// Load reads configuration from environment variables, configs/.env and,
// when fs is non-nil, the flags that were explicitly set.
func Load(fs *pflag.FlagSet) (*Config, error) {
	_ = godotenv.Load("configs/.env")

	v := viper.New()

	v.SetDefault("app_name", "kavia-console")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("api_base", "http://localhost:3001")
	v.SetDefault("healthcheck_path", "/health")
	v.SetDefault("backend_url", "http://localhost:3001")
	v.SetDefault("backend_docs_path", "/swagger-ui.html")
	v.SetDefault("request_timeout_seconds", 15)
	v.SetDefault("watch_interval", 60) // seconds
	v.SetDefault("publishers_file", "")
	v.SetDefault("storage_type", "none")
	v.SetDefault("bbolt_path", "./data/history.db")
	v.SetDefault("storage_ttl_seconds", int64((7*24*time.Hour)/time.Second))
	v.SetDefault("storage_cleanup_interval_seconds", int64((6*time.Hour)/time.Second))

	v.AutomaticEnv()
	for key, names := range envAliases {
		if err := v.BindEnv(append([]string{key}, names...)...); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	if fs != nil {
		for name, key := range flagKeys {
			f := fs.Lookup(name)
			if f == nil || !f.Changed {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("bind flag %s: %w", name, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.APIBase == "" {
		return nil, fmt.Errorf("api_base must not be empty")
	}
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))

	if cfg.RequestTimeoutSeconds < 0 {
		return nil, fmt.Errorf("invalid request_timeout_seconds (must be zero or positive seconds)")
	}
	cfg.RequestTimeout = time.Duration(cfg.RequestTimeoutSeconds) * time.Second

	if cfg.WatchIntervalSeconds <= 0 {
		return nil, fmt.Errorf("invalid watch_interval (must be positive seconds)")
	}
	cfg.WatchInterval = time.Duration(cfg.WatchIntervalSeconds) * time.Second

	if cfg.StorageTTLSeconds <= 0 {
		return nil, fmt.Errorf("invalid storage_ttl_seconds (must be positive seconds)")
	}
	if cfg.StorageCleanupSeconds <= 0 {
		return nil, fmt.Errorf("invalid storage_cleanup_interval_seconds (must be positive seconds)")
	}
	cfg.StorageTTL = time.Duration(cfg.StorageTTLSeconds) * time.Second
	cfg.StorageCleanupInterval = time.Duration(cfg.StorageCleanupSeconds) * time.Second

	return &cfg, nil
}
