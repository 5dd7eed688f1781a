package models

import "time"

// CurrentSchemaVersion is bumped on breaking changes to any syncable entity
// shape. A watermark persisted under a different version forces a full sync.
const CurrentSchemaVersion = 3

// SyncMeta is the per-user sync watermark: the point up to which local and
// remote history have been mutually exchanged, plus the in-progress lease
// that serializes sync attempts for one user.
//
// The row is created lazily on first access with zero watermarks and a nil
// LastSyncAt, which is what makes NeedsFullSync report true for a user who
// has never synced.
type SyncMeta struct {
	UserID        int64      `json:"user_id"`
	LastSyncedUSN int64      `json:"last_synced_usn"`
	ServerUSN     int64      `json:"server_usn"`
	LastSyncAt    *time.Time `json:"last_sync_at,omitempty"`
	SchemaVersion int        `json:"schema_version"`
	IsSyncing     bool       `json:"is_syncing"`

	// SyncStartedAt stamps the moment the in-progress lease was acquired.
	// A lease older than the configured expiry is treated as abandoned
	// (crashed process) and may be taken over by the next attempt.
	SyncStartedAt *time.Time `json:"sync_started_at,omitempty"`
}

// SyncStatus is the operational snapshot returned by the status endpoint.
type SyncStatus struct {
	Meta     SyncMeta `json:"meta"`
	LocalUSN int64    `json:"local_usn"`
	NeedFull bool     `json:"needs_full_sync"`
}

// SyncDirection selects which side of a full sync is authoritative.
type SyncDirection string

const (
	SyncUpload   SyncDirection = "upload"
	SyncDownload SyncDirection = "download"
)
