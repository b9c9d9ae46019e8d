package orchestrator

import (
	"context"
	"time"
)

const DefaultHeartbeatInterval = time.Second

// RunHeartbeat publishes a heartbeat every interval until ctx is done.
// Each publish is acknowledged before the next wait starts.
func (e *Emitter) RunHeartbeat(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultHeartbeatInterval
	}
	t := time.NewTicker(interval)
	defer t.Stop()

	e.log.WithField("interval", interval).Debug("heartbeat started")
	for {
		select {
		case <-ctx.Done():
			e.log.Debug("heartbeat stopped")
			return
		case <-t.C:
		}
		if err := e.EmitHeartbeat(ctx); err != nil && ctx.Err() == nil {
			e.log.WithError(err).Warn("heartbeat not published")
		}
	}
}
