package http

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/flashdeck/flashdeck/internal/config"
	"github.com/flashdeck/flashdeck/internal/logger"
	"github.com/flashdeck/flashdeck/internal/service"
	"github.com/flashdeck/flashdeck/internal/utils"
	"github.com/flashdeck/flashdeck/models"
	"github.com/stretchr/testify/require"
)

// ---- Stub: SyncService ----

type stubSyncSvc struct {
	statusFn      func(ctx context.Context, userID int64) (models.SyncStatus, error)
	incrementalFn func(ctx context.Context, userID int64) (models.SyncResult, error)
	fullFn        func(ctx context.Context, userID int64, direction models.SyncDirection) (models.SyncResult, error)
}

func (s *stubSyncSvc) Status(ctx context.Context, userID int64) (models.SyncStatus, error) {
	if s.statusFn != nil {
		return s.statusFn(ctx, userID)
	}
	return models.SyncStatus{}, nil
}

func (s *stubSyncSvc) NeedsFullSync(context.Context, int64) (bool, error) {
	return false, nil
}

func (s *stubSyncSvc) IncrementalSync(ctx context.Context, userID int64) (models.SyncResult, error) {
	if s.incrementalFn != nil {
		return s.incrementalFn(ctx, userID)
	}
	return models.SyncResult{Success: true}, nil
}

func (s *stubSyncSvc) ApplyRemoteChanges(context.Context, int64, models.Changeset) (models.SyncResult, error) {
	return models.SyncResult{Success: true}, nil
}

func (s *stubSyncSvc) FullSync(ctx context.Context, userID int64, direction models.SyncDirection) (models.SyncResult, error) {
	if s.fullFn != nil {
		return s.fullFn(ctx, userID, direction)
	}
	return models.SyncResult{Success: true}, nil
}

// ---- Stub: LedgerService ----

type stubLedgerSvc struct {
	recordFn func(ctx context.Context, userID int64, changes models.Changeset) (int64, error)
}

func (s *stubLedgerSvc) RecordChanges(ctx context.Context, userID int64, changes models.Changeset) (int64, error) {
	if s.recordFn != nil {
		return s.recordFn(ctx, userID, changes)
	}
	return 0, nil
}

func (s *stubLedgerSvc) LocalUSN(context.Context, int64) (int64, error) { return 0, nil }

// ---- Stub: ChangesetService ----

type stubChangesetSvc struct {
	changesFn func(ctx context.Context, userID, sinceUSN int64) (models.Changeset, error)
}

func (s *stubChangesetSvc) ChangesSince(ctx context.Context, userID, sinceUSN int64) (models.Changeset, error) {
	if s.changesFn != nil {
		return s.changesFn(ctx, userID, sinceUSN)
	}
	return models.Changeset{}, nil
}

func (s *stubChangesetSvc) Snapshot(context.Context, int64) (models.Collection, error) {
	return models.Collection{}, nil
}

// ---- Stub: RemoteSyncService ----

type stubRemoteSvc struct {
	changesFn  func(ctx context.Context, userID, sinceUSN int64) (models.Changeset, error)
	recordFn   func(ctx context.Context, userID int64, changes models.Changeset) (int64, error)
	snapshotFn func(ctx context.Context, userID int64) (models.Collection, int64, error)
	replaceFn  func(ctx context.Context, userID int64, snapshot models.Collection) (int64, error)
}

func (s *stubRemoteSvc) ChangesSince(ctx context.Context, userID, sinceUSN int64) (models.Changeset, error) {
	if s.changesFn != nil {
		return s.changesFn(ctx, userID, sinceUSN)
	}
	return models.Changeset{}, nil
}

func (s *stubRemoteSvc) RecordChanges(ctx context.Context, userID int64, changes models.Changeset) (int64, error) {
	if s.recordFn != nil {
		return s.recordFn(ctx, userID, changes)
	}
	return 0, nil
}

func (s *stubRemoteSvc) Snapshot(ctx context.Context, userID int64) (models.Collection, int64, error) {
	if s.snapshotFn != nil {
		return s.snapshotFn(ctx, userID)
	}
	return models.Collection{}, 0, nil
}

func (s *stubRemoteSvc) ReplaceSnapshot(ctx context.Context, userID int64, snapshot models.Collection) (int64, error) {
	if s.replaceFn != nil {
		return s.replaceFn(ctx, userID, snapshot)
	}
	return 0, nil
}

// ---- Helpers ----

func testAppConfig() config.App {
	return config.App{
		TokenSignKey:  "test-sign-key",
		TokenIssuer:   "flashdeck-test",
		TokenDuration: time.Hour,
		Version:       "test-version",
	}
}

func newTestHandler(services *service.Services) *Handler {
	if services.Sync == nil {
		services.Sync = &stubSyncSvc{}
	}
	if services.Ledger == nil {
		services.Ledger = &stubLedgerSvc{}
	}
	if services.Changeset == nil {
		services.Changeset = &stubChangesetSvc{}
	}
	if services.Remote == nil {
		services.Remote = &stubRemoteSvc{}
	}
	return NewHandler(services, testAppConfig(), logger.Nop())
}

func validAuthHeader(t *testing.T, userID int64) string {
	t.Helper()
	app := testAppConfig()
	token, err := utils.GenerateJWTToken(app.TokenIssuer, userID, app.TokenDuration, app.TokenSignKey)
	require.NoError(t, err)
	return "Bearer " + token.SignedString
}

func authed(t *testing.T, req *http.Request, userID int64) *http.Request {
	t.Helper()
	req.Header.Set("Authorization", validAuthHeader(t, userID))
	return req
}
