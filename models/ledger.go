package models

import "time"

// LedgerEntry is one append-only record of the per-user change ledger.
// Every create/update/delete applied to a syncable entity produces exactly
// one entry carrying the next update sequence number (USN) for that user.
// Entries are immutable once written; only a full download clears them.
type LedgerEntry struct {
	ID         int64      `json:"id"`
	UserID     int64      `json:"user_id"`
	EntityType EntityType `json:"entity_type"`
	EntityID   string     `json:"entity_id"`
	ChangeType ChangeType `json:"change_type"`
	USN        int64      `json:"usn"`
	ModifiedAt time.Time  `json:"modified_at"`
}
