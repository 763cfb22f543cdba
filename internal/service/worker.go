package service

import (
	"context"
	"errors"
	"time"

	"github.com/voyagen/xtreamvault/internal/cache"
)

// workerPoll bounds each blocking dequeue. BRPOP ignores ctx cancellation,
// so this is also the worst-case shutdown delay. Redis rounds below 1s up.
const workerPoll = time.Second

// RunWorker dequeues refresh jobs from Redis and runs them until ctx is cancelled.
func (p *Parser) RunWorker(ctx context.Context, r *cache.Redis) {
	logger := p.logger.With("worker", "refresh")
	logger.Info("refresh worker started")
	for {
		select {
		case <-ctx.Done():
			logger.Info("refresh worker stopping")
			return
		default:
		}

		job, err := cache.Dequeue(ctx, r, cache.RefreshQueue, workerPoll)
		if err != nil {
			logger.Error("dequeue", "err", err)
			select {
			case <-ctx.Done():
			case <-time.After(2 * time.Second):
			}
			continue
		}
		if job == nil {
			continue // timeout, loop back to check ctx
		}

		logger.Info("processing refresh job", "force", job.Force, "requested_at", job.RequestedAt)
		refresh := p.Refresh
		if job.Force {
			refresh = p.ForceRefresh
		}
		if _, err := refresh(ctx); err != nil {
			if errors.Is(err, ErrRefreshRunning) {
				logger.Info("refresh already running elsewhere")
				continue
			}
			logger.Error("refresh", "err", err)
		}
	}
}
