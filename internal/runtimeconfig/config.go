package runtimeconfig

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrStorageProviderUnknown = errors.New("portal config: storage provider is invalid")
var ErrStorageDSNRequired = errors.New("portal config: storage dsn is required for postgres")

// ErrCacheRequiresDatabase ensures the read cache is only enabled over a bun store.
var ErrCacheRequiresDatabase = errors.New("portal config: cache requires a sqlite or postgres storage provider")
var ErrCacheTTLInvalid = errors.New("portal config: cache ttl must be positive")

var ErrLoggingProviderRequired = errors.New("portal config: logging provider is required when logging feature is enabled")
var ErrLoggingProviderUnknown = errors.New("portal config: logging provider is invalid")
var ErrLoggingLevelInvalid = errors.New("portal config: logging level is invalid")
var ErrLoggingFormatInvalid = errors.New("portal config: logging format is invalid")

var ErrNotificationSenderUnknown = errors.New("portal config: notification sender is invalid")
var ErrSMTPHostRequired = errors.New("portal config: smtp host is required for the smtp sender")
var ErrNotificationAddressInvalid = errors.New("portal config: notification address is invalid")
var ErrNotificationUserInvalid = errors.New("portal config: notification user keys must be uuids")

var ErrBulkLimitInvalid = errors.New("portal config: bulk limits must be zero or positive")
var ErrHTTPAddrRequired = errors.New("portal config: http address is required")

// Config aggregates runtime settings for the publishing portal. Every field
// can be loaded from the environment with cleanenv.
type Config struct {
	Storage       StorageConfig
	Cache         CacheConfig
	Logging       LoggingConfig
	Notifications NotificationsConfig
	Bulk          BulkConfig
	HTTP          HTTPConfig
	Auth          AuthConfig
	Features      Features
}

// StorageConfig selects the content store.
type StorageConfig struct {
	// Provider is one of memory, sqlite or postgres.
	Provider    string `env:"PORTAL_STORAGE_PROVIDER" env-default:"memory"`
	DSN         string `env:"PORTAL_STORAGE_DSN"`
	AutoMigrate bool   `env:"PORTAL_STORAGE_AUTO_MIGRATE" env-default:"true"`
}

// CacheConfig captures the public read cache.
type CacheConfig struct {
	Enabled    bool          `env:"PORTAL_CACHE_ENABLED" env-default:"false"`
	DefaultTTL time.Duration `env:"PORTAL_CACHE_TTL" env-default:"1m"`
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string   `env:"PORTAL_LOG_PROVIDER" env-default:"gologger"`
	Level     string   `env:"PORTAL_LOG_LEVEL" env-default:"info"`
	Format    string   `env:"PORTAL_LOG_FORMAT" env-default:"json"`
	AddSource bool     `env:"PORTAL_LOG_ADD_SOURCE" env-default:"false"`
	Focus     []string `env:"PORTAL_LOG_FOCUS" env-separator:","`
}

// NotificationsConfig controls lifecycle notifications.
type NotificationsConfig struct {
	Enabled  bool   `env:"PORTAL_NOTIFY_ENABLED" env-default:"true"`
	SiteName string `env:"PORTAL_SITE_NAME" env-default:"School Portal"`
	// Sender is one of log, memory or smtp.
	Sender      string            `env:"PORTAL_NOTIFY_SENDER" env-default:"log"`
	SMTP        SMTPConfig        `env-prefix:"PORTAL_SMTP_"`
	Admins      []string          `env:"PORTAL_NOTIFY_ADMINS" env-separator:","`
	Users       map[string]string `env:"PORTAL_NOTIFY_USERS"`
	HistorySize int               `env:"PORTAL_NOTIFY_HISTORY" env-default:"200"`
	Timeout     time.Duration     `env:"PORTAL_NOTIFY_TIMEOUT" env-default:"10s"`
}

// SMTPConfig addresses the relay used by the smtp sender.
type SMTPConfig struct {
	Host     string `env:"HOST"`
	Port     int    `env:"PORT" env-default:"587"`
	Username string `env:"USERNAME"`
	Password string `env:"PASSWORD"`
	From     string `env:"FROM" env-default:"noreply@localhost"`
}

// BulkConfig bounds bulk operations.
type BulkConfig struct {
	Concurrency int `env:"PORTAL_BULK_CONCURRENCY" env-default:"4"`
	MaxItems    int `env:"PORTAL_BULK_MAX_ITEMS" env-default:"500"`
}

// HTTPConfig configures the API server.
type HTTPConfig struct {
	Addr            string        `env:"PORTAL_HTTP_ADDR" env-default:":8080"`
	AdminBasePath   string        `env:"PORTAL_HTTP_ADMIN_BASE" env-default:"/admin/api"`
	PublicBasePath  string        `env:"PORTAL_HTTP_PUBLIC_BASE" env-default:"/api"`
	ShutdownTimeout time.Duration `env:"PORTAL_HTTP_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// AuthConfig holds the bearer token secret.
type AuthConfig struct {
	JWTSecret string `env:"PORTAL_JWT_SECRET"`
}

// Features toggles optional behaviour.
type Features struct {
	Activity bool `env:"PORTAL_FEATURE_ACTIVITY" env-default:"true"`
	Logger   bool `env:"PORTAL_FEATURE_LOGGER" env-default:"true"`
}

// DefaultConfig returns defaults matching the cleanenv env-default tags.
func DefaultConfig() Config {
	return Config{
		Storage: StorageConfig{
			Provider:    "memory",
			AutoMigrate: true,
		},
		Cache: CacheConfig{
			DefaultTTL: time.Minute,
		},
		Logging: LoggingConfig{
			Provider: "gologger",
			Level:    "info",
			Format:   "json",
		},
		Notifications: NotificationsConfig{
			Enabled:     true,
			SiteName:    "School Portal",
			Sender:      "log",
			SMTP:        SMTPConfig{Port: 587, From: "noreply@localhost"},
			Users:       map[string]string{},
			HistorySize: 200,
			Timeout:     10 * time.Second,
		},
		Bulk: BulkConfig{
			Concurrency: 4,
			MaxItems:    500,
		},
		HTTP: HTTPConfig{
			Addr:            ":8080",
			AdminBasePath:   "/admin/api",
			PublicBasePath:  "/api",
			ShutdownTimeout: 10 * time.Second,
		},
		Features: Features{
			Activity: true,
			Logger:   true,
		},
	}
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	provider := normalize(cfg.Storage.Provider)
	if !isSupportedStorage(provider) {
		return fmt.Errorf("%w: %s", ErrStorageProviderUnknown, cfg.Storage.Provider)
	}
	if provider == "postgres" && strings.TrimSpace(cfg.Storage.DSN) == "" {
		return ErrStorageDSNRequired
	}
	if cfg.Cache.Enabled {
		if provider == "memory" {
			return ErrCacheRequiresDatabase
		}
		if cfg.Cache.DefaultTTL <= 0 {
			return ErrCacheTTLInvalid
		}
	}
	if cfg.Features.Logger {
		logProvider := normalize(cfg.Logging.Provider)
		if logProvider == "" {
			return ErrLoggingProviderRequired
		}
		if !isSupportedProvider(logProvider) {
			return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, logProvider)
		}
		if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
			return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
		}
		if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
			return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
		}
	}
	if err := cfg.Notifications.validate(); err != nil {
		return err
	}
	if cfg.Bulk.Concurrency < 0 || cfg.Bulk.MaxItems < 0 {
		return ErrBulkLimitInvalid
	}
	if strings.TrimSpace(cfg.HTTP.Addr) == "" {
		return ErrHTTPAddrRequired
	}
	return nil
}

func (cfg NotificationsConfig) validate() error {
	if !cfg.Enabled {
		return nil
	}
	switch normalize(cfg.Sender) {
	case "log", "memory":
	case "smtp":
		if strings.TrimSpace(cfg.SMTP.Host) == "" {
			return ErrSMTPHostRequired
		}
		if _, err := mail.ParseAddress(cfg.SMTP.From); err != nil {
			return fmt.Errorf("%w: from %q", ErrNotificationAddressInvalid, cfg.SMTP.From)
		}
	default:
		return fmt.Errorf("%w: %s", ErrNotificationSenderUnknown, cfg.Sender)
	}
	for _, address := range cfg.Admins {
		if _, err := mail.ParseAddress(strings.TrimSpace(address)); err != nil {
			return fmt.Errorf("%w: %q", ErrNotificationAddressInvalid, address)
		}
	}
	for key, address := range cfg.Users {
		if _, err := uuid.Parse(strings.TrimSpace(key)); err != nil {
			return fmt.Errorf("%w: %q", ErrNotificationUserInvalid, key)
		}
		if _, err := mail.ParseAddress(strings.TrimSpace(address)); err != nil {
			return fmt.Errorf("%w: %q", ErrNotificationAddressInvalid, address)
		}
	}
	return nil
}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func isSupportedStorage(provider string) bool {
	switch provider {
	case "memory", "sqlite", "postgres":
		return true
	default:
		return false
	}
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "gologger", "noop":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
