package models

import "time"

// Resolution names the winning side of a resolved entity conflict.
type Resolution string

const (
	LocalWins  Resolution = "local_wins"
	RemoteWins Resolution = "remote_wins"
)

// Conflict records that both replicas modified the same entity since the
// last agreed watermark and which side won. Conflicts are produced only
// while applying a remote changeset; they are returned to the caller for
// observability and never raised as errors.
type Conflict struct {
	EntityType     EntityType `json:"entity_type"`
	EntityID       string     `json:"entity_id"`
	Resolution     Resolution `json:"resolution"`
	LocalModified  time.Time  `json:"local_modified"`
	RemoteModified time.Time  `json:"remote_modified"`
}

// RecordMeta is the ledger metadata of one side of a conflicting entity:
// the inputs the conflict resolver decides on. Both fields come from ledger
// entries (local side) or change records (remote side), never from the wall
// clock, so resolution is deterministic across retries.
type RecordMeta struct {
	USN        int64     `json:"usn"`
	ModifiedAt time.Time `json:"modified_at"`
}
