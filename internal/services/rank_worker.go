package services

import (
	"context"
	"sync"
	"time"

	"opphub/internal/config"
	"opphub/internal/repositories"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// RankWorker recomputes user ranks off the award path. Requests are queued
// through a buffered channel; failures are retried with backoff and then
// logged, never surfaced to the caller that triggered them. A ticker runs the
// full-leaderboard recompute periodically.
type RankWorker struct {
	summaries repositories.SummaryRepository
	cfg       *config.PointsConfig
	logger    *zap.Logger

	queue  chan int64
	stopCh chan struct{}
	wg     sync.WaitGroup
	once   sync.Once
}

// NewRankWorker creates a stopped worker; call Start to begin processing.
func NewRankWorker(summaries repositories.SummaryRepository, cfg *config.PointsConfig, logger *zap.Logger) *RankWorker {
	return &RankWorker{
		summaries: summaries,
		cfg:       cfg,
		logger:    logger,
		queue:     make(chan int64, cfg.RankQueueSize),
		stopCh:    make(chan struct{}),
	}
}

// Start launches the processing goroutine.
func (w *RankWorker) Start() {
	w.wg.Add(1)
	go w.run()
	w.logger.Info("Rank worker started",
		zap.Int("queue_size", w.cfg.RankQueueSize),
		zap.Duration("recompute_interval", w.cfg.RecomputeInterval),
	)
}

// Stop drains nothing further and waits for the in-flight recompute to finish.
func (w *RankWorker) Stop() {
	w.once.Do(func() { close(w.stopCh) })
	w.wg.Wait()
	w.logger.Info("Rank worker stopped")
}

// Enqueue schedules a rank recompute for one user without blocking. When the
// queue is full the request is dropped; the periodic full recompute covers the
// loss.
func (w *RankWorker) Enqueue(userID int64) {
	select {
	case w.queue <- userID:
	default:
		w.logger.Warn("Rank queue full, dropping recompute request",
			zap.Int64("user_id", userID),
		)
	}
}

// RecomputeAll runs the batch rank assignment synchronously, for the admin
// endpoint and the periodic tick.
func (w *RankWorker) RecomputeAll(ctx context.Context) (int64, error) {
	return w.summaries.RecomputeAllRanks(ctx)
}

func (w *RankWorker) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.cfg.RecomputeInterval)
	defer ticker.Stop()

	for {
		select {
		case userID := <-w.queue:
			w.recompute(userID)
		case <-ticker.C:
			w.recomputeAllLogged()
		case <-w.stopCh:
			return
		}
	}
}

// recompute updates one user's rank, retrying transient failures before
// giving up. The leaderboard may lag when this fails; the award has already
// committed.
func (w *RankWorker) recompute(userID int64) {
	operation := func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return w.summaries.RecomputeRank(ctx, userID)
	}

	policy := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3)
	if err := backoff.Retry(operation, policy); err != nil {
		w.logger.Error("Rank recompute failed",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
	}
}

func (w *RankWorker) recomputeAllLogged() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	start := time.Now()
	updated, err := w.summaries.RecomputeAllRanks(ctx)
	if err != nil {
		w.logger.Error("Full rank recompute failed", zap.Error(err))
		return
	}
	w.logger.Info("Full rank recompute finished",
		zap.Int64("rows_updated", updated),
		zap.Duration("duration", time.Since(start)),
	)
}
