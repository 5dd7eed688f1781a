package adapter

import (
	"context"
	"fmt"

	"github.com/flashdeck/flashdeck/internal/logger"
	"github.com/flashdeck/flashdeck/models"
)

// localRemoteGateway drives a [SyncBackend] in the same process, bypassing
// the network entirely. It backs the "local" remote mode: the simulated
// remote is a second database wired to its own service stack, which makes
// the full engine exercisable on one machine.
type localRemoteGateway struct {
	backend SyncBackend
	logger  *logger.Logger
}

func NewLocalRemoteGateway(backend SyncBackend, log *logger.Logger) RemoteGateway {
	return &localRemoteGateway{backend: backend, logger: log}
}

// FetchChanges implements [RemoteGateway].
func (l *localRemoteGateway) FetchChanges(ctx context.Context, userID, sinceUSN int64) (models.Changeset, error) {
	changes, err := l.backend.ChangesSince(ctx, userID, sinceUSN)
	if err != nil {
		return models.Changeset{}, fmt.Errorf("local fetch changes: %w", err)
	}
	return changes, nil
}

// PushChanges implements [RemoteGateway].
func (l *localRemoteGateway) PushChanges(ctx context.Context, userID int64, changes models.Changeset) (int64, error) {
	usn, err := l.backend.RecordChanges(ctx, userID, changes)
	if err != nil {
		return 0, fmt.Errorf("local push changes: %w", err)
	}
	return usn, nil
}

// FetchSnapshot implements [RemoteGateway].
func (l *localRemoteGateway) FetchSnapshot(ctx context.Context, userID int64) (models.Collection, int64, error) {
	snapshot, usn, err := l.backend.Snapshot(ctx, userID)
	if err != nil {
		return models.Collection{}, 0, fmt.Errorf("local fetch snapshot: %w", err)
	}
	return snapshot, usn, nil
}

// PushSnapshot implements [RemoteGateway].
func (l *localRemoteGateway) PushSnapshot(ctx context.Context, userID int64, snapshot models.Collection) (int64, error) {
	usn, err := l.backend.ReplaceSnapshot(ctx, userID, snapshot)
	if err != nil {
		return 0, fmt.Errorf("local push snapshot: %w", err)
	}
	return usn, nil
}
