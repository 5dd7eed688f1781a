package config

import "time"

const (
	defaultHTTPAddress    = "0.0.0.0:8080"
	defaultRequestTimeout = 30 * time.Second
	defaultRemoteTimeout  = 15 * time.Second
	defaultLeaseTTL       = 5 * time.Minute
	defaultRemoteMode     = "local"
	defaultDriver         = "pgx"
)

// applyDefaults fills in safe defaults for optional fields left empty by
// every configuration source.
func (cfg *StructuredConfig) applyDefaults() {
	if cfg.Server.HTTPAddress == "" {
		cfg.Server.HTTPAddress = defaultHTTPAddress
	}
	if cfg.Server.RequestTimeout <= 0 {
		cfg.Server.RequestTimeout = defaultRequestTimeout
	}
	if cfg.Remote.Mode == "" {
		cfg.Remote.Mode = defaultRemoteMode
	}
	if cfg.Remote.RequestTimeout <= 0 {
		cfg.Remote.RequestTimeout = defaultRemoteTimeout
	}
	if cfg.Sync.LeaseTTL <= 0 {
		cfg.Sync.LeaseTTL = defaultLeaseTTL
	}
	if cfg.Storage.DB.Driver == "" {
		cfg.Storage.DB.Driver = defaultDriver
	}
	if cfg.Remote.DB.Driver == "" {
		cfg.Remote.DB.Driver = "sqlite3"
	}
}

// validate checks that the final merged [StructuredConfig] satisfies the
// invariants the engine depends on at startup.
func (cfg *StructuredConfig) validate() error {
	if cfg.Storage.DB.DSN == "" {
		return ErrInvalidStorageConfigs
	}

	switch cfg.Remote.Mode {
	case "http":
		if cfg.Remote.BaseURL == "" {
			return ErrInvalidRemoteConfigs
		}
	case "local":
		if cfg.Remote.DB.DSN == "" {
			return ErrInvalidRemoteConfigs
		}
	default:
		return ErrInvalidRemoteConfigs
	}

	if cfg.App.TokenSignKey == "" || cfg.App.TokenIssuer == "" {
		return ErrInvalidAppConfigs
	}

	if cfg.Sync.Interval > 0 && cfg.Sync.JobUserID <= 0 {
		return ErrInvalidSyncConfigs
	}

	return nil
}
