package config

import "errors"

// Validation errors returned by [StructuredConfig.validate] when required
// configuration groups are incomplete or invalid.
var (
	// ErrInvalidStorageConfigs indicates invalid local storage settings
	// (for example, an empty DSN).
	ErrInvalidStorageConfigs = errors.New("invalid storage configuration")
	// ErrInvalidRemoteConfigs indicates invalid remote gateway settings
	// (unknown mode, missing base URL for http mode, or missing DSN for
	// local mode).
	ErrInvalidRemoteConfigs = errors.New("invalid remote configuration")
	// ErrInvalidAppConfigs indicates missing token signing settings.
	ErrInvalidAppConfigs = errors.New("invalid app configuration")
	// ErrInvalidSyncConfigs indicates an enabled background sync job with
	// no user to sync.
	ErrInvalidSyncConfigs = errors.New("invalid sync configuration")
)
