// Package adapter connects the sync engine to its remote counterpart. The
// engine only ever talks to the [RemoteGateway] contract; the two
// implementations are an HTTP gateway for a real remote server and a local
// gateway that drives a second database in the same process.
package adapter

import (
	"context"

	"github.com/flashdeck/flashdeck/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/remote_gateway_mock.go -package=mock

// RemoteGateway is the remote side of a sync session as seen by the engine.
//
// FetchChanges and FetchSnapshot return the remote's current USN alongside
// the payload: the changeset carries it in its USN field, the snapshot as a
// separate value. PushChanges and PushSnapshot return the remote USN after
// the pushed records were recorded.
type RemoteGateway interface {
	FetchChanges(ctx context.Context, userID, sinceUSN int64) (models.Changeset, error)
	PushChanges(ctx context.Context, userID int64, changes models.Changeset) (int64, error)
	FetchSnapshot(ctx context.Context, userID int64) (models.Collection, int64, error)
	PushSnapshot(ctx context.Context, userID int64, snapshot models.Collection) (int64, error)
}

// SyncBackend is the server-role surface a gateway ultimately lands on. The
// HTTP remote handlers and the local gateway both drive one of these.
type SyncBackend interface {
	ChangesSince(ctx context.Context, userID, sinceUSN int64) (models.Changeset, error)
	RecordChanges(ctx context.Context, userID int64, changes models.Changeset) (int64, error)
	Snapshot(ctx context.Context, userID int64) (models.Collection, int64, error)
	ReplaceSnapshot(ctx context.Context, userID int64, snapshot models.Collection) (int64, error)
}
