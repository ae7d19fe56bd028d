package session

import (
	"context"
	"time"

	"github.com/ramsesyok/billiards/internal/models"
	"go.uber.org/zap"
)

// Runner advances realtime sessions one frame per tick and publishes each
// frame.
type Runner struct {
	manager   *Manager
	publisher FramePublisher
	interval  time.Duration
	dt        float64
	logger    *zap.Logger
}

// NewRunner builds a runner ticking frameRate times per second.
func NewRunner(m *Manager, publisher FramePublisher, frameRate int) *Runner {
	if frameRate <= 0 {
		frameRate = 60
	}
	return &Runner{
		manager:   m,
		publisher: publisher,
		interval:  time.Second / time.Duration(frameRate),
		dt:        1.0 / float64(frameRate),
		logger:    m.logger.Named("runner"),
	}
}

// Run ticks until ctx is cancelled.
func (r *Runner) Run(ctx context.Context) error {
	r.logger.Info("Runner started", zap.Duration("interval", r.interval))
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("Runner stopping")
			return nil
		case <-ticker.C:
			r.Tick(ctx)
		}
	}
}

// Tick advances every running realtime session by one frame.
func (r *Runner) Tick(ctx context.Context) {
	for _, s := range r.manager.realtime() {
		frame, end := s.advance(r.dt, 1, r.manager.now())
		if r.publisher != nil {
			if err := r.publisher.PublishFrame(ctx, s.ID, frame); err != nil {
				r.logger.Warn("Failed to publish frame",
					zap.String("session_id", s.ID), zap.Int("frame", frame.Number), zap.Error(err))
			}
		}
		if end != nil {
			r.manager.finish(ctx, s.ID, end, models.RunStatusSettled)
		}
	}
}

// RunReaper deletes idle sessions every interval until ctx is cancelled.
func RunReaper(ctx context.Context, m *Manager, interval, maxIdle time.Duration) error {
	logger := m.logger.Named("reaper")
	logger.Info("Reaper started", zap.Duration("interval", interval), zap.Duration("max_idle", maxIdle))
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Reaper stopping")
			return nil
		case <-ticker.C:
			if n := m.ReapIdle(ctx, maxIdle); n > 0 {
				logger.Info("Reaped idle sessions", zap.Int("count", n))
			}
		}
	}
}
