package service

import "github.com/flashdeck/flashdeck/models"

// conflictResolver implements last-modified-wins resolution. The newer
// modification timestamp wins; on equal timestamps the higher USN wins; on
// a full tie the remote side wins, so every replica converges on the same
// state regardless of which one resolves first.
type conflictResolver struct{}

func NewConflictResolver() ConflictResolver {
	return conflictResolver{}
}

// Resolve implements [ConflictResolver].
func (conflictResolver) Resolve(local, remote models.RecordMeta) models.Resolution {
	if local.ModifiedAt.After(remote.ModifiedAt) {
		return models.LocalWins
	}
	if remote.ModifiedAt.After(local.ModifiedAt) {
		return models.RemoteWins
	}
	if local.USN > remote.USN {
		return models.LocalWins
	}
	return models.RemoteWins
}
