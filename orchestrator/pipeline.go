package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	cfg "github.com/maastricht-university/dialog-coordination/config"
)

// Pipeline consumes agent/dialog messages, keeps the recency window and
// emits a coordination event for every match. The window is only touched
// from the goroutine running Run (or the caller of Handle).
type Pipeline struct {
	cfg     *cfg.Root
	bus     Bus
	window  *Window
	matcher *Matcher
	emitter *Emitter
	log     logrus.FieldLogger
}

func NewPipeline(c *cfg.Root, bus Bus, emitter *Emitter, log logrus.FieldLogger) *Pipeline {
	return &Pipeline{
		cfg:     c,
		bus:     bus,
		window:  NewWindow(c.Agent.WindowSize),
		matcher: NewMatcher(c.Agent.LabelPairs),
		emitter: emitter,
		log:     log,
	}
}

// Run subscribes to DialogTopic and processes deliveries in arrival order
// until ctx is done, then unsubscribes. The subscription handler only
// enqueues, so a slow broker never stalls delivery.
func (p *Pipeline) Run(ctx context.Context) error {
	q := newQueue()
	if err := p.bus.Subscribe(ctx, DialogTopic, q.push); err != nil {
		return fmt.Errorf("subscribe %s: %w", DialogTopic, err)
	}
	p.log.WithField("topic", DialogTopic).Info("subscribed")

	defer p.unsubscribe(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-q.ready:
		}
		for _, payload := range q.drain() {
			if ctx.Err() != nil {
				return nil
			}
			p.Handle(ctx, payload)
		}
	}
}

func (p *Pipeline) unsubscribe(ctx context.Context) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.unsubscribeTimeout())
	defer cancel()
	if err := p.bus.Unsubscribe(ctx, DialogTopic); err != nil {
		p.log.WithError(err).Warn("unsubscribe failed")
		return
	}
	p.log.WithField("topic", DialogTopic).Info("unsubscribed")
}

func (p *Pipeline) unsubscribeTimeout() time.Duration {
	if p.cfg.MQTT.PublishTimeout > 0 {
		return p.cfg.MQTT.PublishTimeout
	}
	return 5 * time.Second
}

// Handle runs one payload through decode, window push and matching, and
// returns the matches it emitted. Events are handed to the emitter without
// waiting for the broker. Bad payloads are logged and dropped.
func (p *Pipeline) Handle(ctx context.Context, payload []byte) []Match {
	u, err := Decode(payload)
	if err != nil {
		p.logDrop(err)
		return nil
	}

	p.window.Push(u)
	matches := p.matcher.Match(p.window.Snapshot())
	for _, m := range matches {
		p.emitter.EmitMatch(ctx, m)
	}
	return matches
}

func (p *Pipeline) logDrop(err error) {
	var (
		decodeErr *DecodeError
		schemaErr *SchemaError
	)
	switch {
	case errors.Is(err, ErrFilteredSender):
		p.log.Debug("dropping message from reserved sender")
	case errors.As(err, &decodeErr):
		p.log.WithError(err).Warn("dropping undecodable message")
	case errors.As(err, &schemaErr):
		p.log.WithError(err).WithField("field", schemaErr.Field).Warn("dropping malformed message")
	default:
		p.log.WithError(err).Warn("dropping message")
	}
}

func (p *Pipeline) Window() []Utterance { return p.window.Snapshot() }
