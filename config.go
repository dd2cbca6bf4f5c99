package cms

import "github.com/autophileaozora/smk-kristen5-website-sub003/internal/runtimeconfig"

var (
	ErrStorageProviderUnknown     = runtimeconfig.ErrStorageProviderUnknown
	ErrStorageDSNRequired         = runtimeconfig.ErrStorageDSNRequired
	ErrCacheRequiresDatabase      = runtimeconfig.ErrCacheRequiresDatabase
	ErrCacheTTLInvalid            = runtimeconfig.ErrCacheTTLInvalid
	ErrLoggingProviderRequired    = runtimeconfig.ErrLoggingProviderRequired
	ErrLoggingProviderUnknown     = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid        = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid       = runtimeconfig.ErrLoggingFormatInvalid
	ErrNotificationSenderUnknown  = runtimeconfig.ErrNotificationSenderUnknown
	ErrSMTPHostRequired           = runtimeconfig.ErrSMTPHostRequired
	ErrNotificationAddressInvalid = runtimeconfig.ErrNotificationAddressInvalid
	ErrNotificationUserInvalid    = runtimeconfig.ErrNotificationUserInvalid
	ErrBulkLimitInvalid           = runtimeconfig.ErrBulkLimitInvalid
	ErrHTTPAddrRequired           = runtimeconfig.ErrHTTPAddrRequired
)

type (
	Config              = runtimeconfig.Config
	StorageConfig       = runtimeconfig.StorageConfig
	CacheConfig         = runtimeconfig.CacheConfig
	LoggingConfig       = runtimeconfig.LoggingConfig
	NotificationsConfig = runtimeconfig.NotificationsConfig
	SMTPConfig          = runtimeconfig.SMTPConfig
	BulkConfig          = runtimeconfig.BulkConfig
	HTTPConfig          = runtimeconfig.HTTPConfig
	AuthConfig          = runtimeconfig.AuthConfig
	Features            = runtimeconfig.Features
)

// DefaultConfig returns the defaults used when no environment is set.
func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}

// LoadConfig reads configuration from path (optional) and the environment.
func LoadConfig(path string) (Config, error) {
	return runtimeconfig.Load(path)
}

// ConfigUsage lists the environment variables LoadConfig understands.
func ConfigUsage() string {
	return runtimeconfig.Usage()
}
