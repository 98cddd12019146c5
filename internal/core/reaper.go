package core

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// reap periodically requeues jobs stuck in Processing, eg. because the worker running
// them died.
func (s *Service) reap(ctx context.Context) error {
	tick := time.NewTicker(s.opts.ReapFrequency)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-tick.C:
			_, err := s.reapOnce(ctx)
			if err != nil && ctx.Err() == nil {
				s.log.Warn("failed to requeue stale jobs", zap.Error(err))
			}
		}
	}
}

func (s *Service) reapOnce(ctx context.Context) ([]string, error) {
	ids, err := s.db.RequeueStale(ctx, time.Now().Add(-s.opts.ReapAfter))
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		s.log.Warn("requeued stale job", zap.String("job_id", id), zap.Duration("reap_after", s.opts.ReapAfter))
	}
	return ids, nil
}
