package orchestrator

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sourcegraph/conc"

	cfg "github.com/maastricht-university/dialog-coordination/config"
)

// Agent runs the heartbeat and the dialog pipeline against one bus.
type Agent struct {
	pipeline  *Pipeline
	emitter   *Emitter
	heartbeat time.Duration
	log       logrus.FieldLogger
}

func NewAgent(c *cfg.Root, bus Bus, log logrus.FieldLogger) *Agent {
	emitter := NewEmitter(bus, c.Agent.Source, c.MQTT.PublishTimeout, log.WithField("component", "emitter"))
	return &Agent{
		pipeline:  NewPipeline(c, bus, emitter, log.WithField("component", "pipeline")),
		emitter:   emitter,
		heartbeat: c.Agent.HeartbeatInterval,
		log:       log,
	}
}

// Run blocks until ctx is cancelled or the pipeline fails to start. Both
// loops and any coordination events still in flight have finished by the
// time Run returns, so the caller may release the transport afterwards.
func (a *Agent) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg     conc.WaitGroup
		runErr error
	)
	wg.Go(func() {
		a.emitter.RunHeartbeat(ctx, a.heartbeat)
	})
	wg.Go(func() {
		if err := a.pipeline.Run(ctx); err != nil {
			runErr = err
			cancel()
		}
	})

	a.log.Info("agent running")
	wg.Wait()
	a.emitter.Wait()
	a.log.Info("agent stopped")
	return runErr
}
