package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sourcegraph/conc"
)

// Emitter builds status envelopes and hands them to the Publisher.
type Emitter struct {
	pub     Publisher
	source  string
	timeout time.Duration
	log     logrus.FieldLogger

	now   func() time.Time
	newID func() string

	inflight conc.WaitGroup
}

func NewEmitter(pub Publisher, source string, timeout time.Duration, log logrus.FieldLogger) *Emitter {
	return &Emitter{
		pub:     pub,
		source:  source,
		timeout: timeout,
		log:     log,
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

func (e *Emitter) CoordinationEvent(m Match) Envelope {
	return newEnvelope(e.now(), e.source, SubTypeCoordinationEvent, CoordinationData{
		ID:                  e.newID(),
		AnchorLabel:         m.Pair.Anchor,
		FollowLabel:         m.Pair.Follow,
		AnchorParticipantID: m.Anchor.ParticipantID,
		FollowParticipantID: m.Follower.ParticipantID,
		AnchorASRMsgID:      m.Anchor.ASRMsgID,
		FollowASRMsgID:      m.Follower.ASRMsgID,
	})
}

func (e *Emitter) Heartbeat() Envelope {
	return newEnvelope(e.now(), e.source, SubTypeHeartbeat, HeartbeatData{State: "ok"})
}

// EmitMatch publishes a coordination event for m without waiting for the
// broker. Failures are logged; call Wait to drain publishes still in flight.
func (e *Emitter) EmitMatch(ctx context.Context, m Match) {
	l := e.log.WithFields(logrus.Fields{
		"anchor":             m.Pair.Anchor,
		"follow":             m.Pair.Follow,
		"anchor_participant": m.Anchor.ParticipantID,
		"follow_participant": m.Follower.ParticipantID,
	})
	env := e.CoordinationEvent(m)
	ctx = context.WithoutCancel(ctx)

	e.inflight.Go(func() {
		if err := e.publish(ctx, EventTopic(e.source), env); err != nil {
			l.WithError(err).Error("coordination event not published")
			return
		}
		l.Info("coordination event published")
	})
}

// Wait blocks until every event handed to EmitMatch has been acknowledged
// or has timed out. EmitMatch must not be called concurrently with Wait.
func (e *Emitter) Wait() {
	e.inflight.Wait()
}

// EmitHeartbeat publishes one heartbeat and waits for the transport to
// acknowledge it.
func (e *Emitter) EmitHeartbeat(ctx context.Context) error {
	return e.publish(ctx, HeartbeatTopic(e.source), e.Heartbeat())
}

func (e *Emitter) publish(ctx context.Context, topic string, env Envelope) error {
	b, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("encode %s: %w", env.Msg.SubType, err)
	}
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}
	if err := e.pub.Publish(ctx, topic, b); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}
