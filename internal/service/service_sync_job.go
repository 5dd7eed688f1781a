package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/flashdeck/flashdeck/internal/logger"
)

type syncJob struct {
	syncService SyncService
	logger      *logger.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewSyncJob creates a syncJob that runs IncrementalSync on a ticker. The
// job is idle until Start is called.
func NewSyncJob(syncService SyncService, log *logger.Logger) SyncJob {
	return &syncJob{syncService: syncService, logger: log}
}

// Start implements [SyncJob]. It stops any previously running job, then
// launches a background goroutine that syncs every interval. If interval
// is zero or negative it defaults to 5 minutes. The goroutine exits when
// ctx is cancelled or Stop is called.
func (j *syncJob) Start(ctx context.Context, userID int64, interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	j.Stop()

	j.mu.Lock()
	jobCtx, cancel := context.WithCancel(ctx)
	j.cancel = cancel
	j.wg.Add(1)
	j.mu.Unlock()

	go func() {
		defer j.wg.Done()
		t := time.NewTicker(interval)
		defer t.Stop()

		for {
			select {
			case <-jobCtx.Done():
				return
			case <-t.C:
				j.runOnce(jobCtx, userID)
			}
		}
	}()
}

func (j *syncJob) runOnce(ctx context.Context, userID int64) {
	_, err := j.syncService.IncrementalSync(ctx, userID)
	switch {
	case err == nil:
	case errors.Is(err, ErrSyncInProgress):
		// Another sync beat the ticker; skip this round.
	case errors.Is(err, ErrFullSyncRequired):
		j.logger.Warn().
			Str("func", "syncJob.runOnce").
			Int64("user_id", userID).
			Msg("background sync blocked: full sync required")
	default:
		j.logger.Err(err).
			Str("func", "syncJob.runOnce").
			Int64("user_id", userID).
			Msg("background sync failed")
	}
}

// Stop implements [SyncJob]. It cancels the background goroutine's context
// and blocks until the goroutine has fully exited. Safe to call when the
// job is not running.
func (j *syncJob) Stop() {
	j.mu.Lock()
	cancel := j.cancel
	j.cancel = nil
	j.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	j.wg.Wait()
}
