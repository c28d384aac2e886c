package sim

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/ukydev/smart-intersection/internal/models"
)

// DefaultTickInterval is roughly one frame at 60Hz.
const DefaultTickInterval = 16 * time.Millisecond

// FrameSink receives the frame produced by every tick.
type FrameSink interface {
	PublishFrame(ctx context.Context, frame models.Frame) error
}

// Runner paces a World with a wall-clock ticker.
type Runner struct {
	World    *World
	Interval time.Duration
	Sink     FrameSink
	Now      func() time.Time
}

// Run ticks the world until ctx is cancelled. Sink failures are logged and do
// not stop the simulation.
func (r *Runner) Run(ctx context.Context) error {
	interval := r.Interval
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	now := r.Now
	if now == nil {
		now = time.Now
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.WithFields(log.Fields{
		"run_id":   r.World.RunID(),
		"interval": interval,
	}).Info("Starting intersection simulation")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			res := r.World.Tick(now())
			if len(res.Finished) > 0 {
				log.WithFields(log.Fields{"tick": res.Tick, "finished": len(res.Finished), "active": res.Active}).Debug("Vehicles cleared the crossing")
			}
			if r.Sink == nil {
				continue
			}
			if err := r.Sink.PublishFrame(ctx, r.World.Frame()); err != nil {
				log.WithError(err).WithField("tick", res.Tick).Warn("Failed to publish frame")
			}
		}
	}
}
