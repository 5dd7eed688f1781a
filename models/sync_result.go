package models

// SyncResult is the outcome of one sync operation (incremental, apply, or
// full). Success=false is not an error: it signals a non-fatal condition
// such as a concurrent sync in progress or a schema mismatch that requires
// a full sync, with NewUSN left at the unchanged watermark.
type SyncResult struct {
	Success         bool       `json:"success"`
	SentChanges     int        `json:"sent_changes"`
	ReceivedChanges int        `json:"received_changes"`
	Conflicts       []Conflict `json:"conflicts,omitempty"`
	NewUSN          int64      `json:"new_usn"`
}
