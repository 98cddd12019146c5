package core

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/RaythaHQ/raytha-sub006/pkg/dispatch"
)

// consume dispatches events from sources returned by open, reopening the source after
// a pause whenever it fails or closes. Only returns once ctx is done.
func (s *Service) consume(ctx context.Context, name string, open func(ctx context.Context) (dispatch.Source, error)) error {
	log := s.log.With(zap.String("source", name))
	for {
		src, err := open(ctx)
		if err == nil {
			log.Info("consuming events")
			err = s.dsp.Consume(ctx, src)
			cerr := src.Close()
			if cerr != nil {
				log.Debug("failed to close event source", zap.Error(cerr))
			}
		}
		if ctx.Err() != nil {
			return nil
		}
		if err != nil {
			log.Warn("event source failed", zap.Error(err))
		} else {
			log.Info("event source closed")
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(s.opts.ReconnectDelay):
		}
	}
}
