package orchestrator

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

type published struct {
	topic   string
	payload []byte
}

type fakeBus struct {
	mu           sync.Mutex
	pubs         []published
	handlers     map[string]func([]byte)
	unsubscribed []string
	subscribed   chan struct{}

	pubErr error
	subErr error
}

func newFakeBus() *fakeBus {
	return &fakeBus{handlers: map[string]func([]byte){}, subscribed: make(chan struct{}, 1)}
}

func (b *fakeBus) Publish(ctx context.Context, topic string, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.pubErr != nil {
		return b.pubErr
	}
	b.pubs = append(b.pubs, published{topic: topic, payload: append([]byte(nil), payload...)})
	return nil
}

func (b *fakeBus) Subscribe(_ context.Context, topic string, handler func([]byte)) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.subErr != nil {
		return b.subErr
	}
	b.handlers[topic] = handler
	select {
	case b.subscribed <- struct{}{}:
	default:
	}
	return nil
}

func (b *fakeBus) Unsubscribe(_ context.Context, topic string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.handlers, topic)
	b.unsubscribed = append(b.unsubscribed, topic)
	return nil
}

func (b *fakeBus) deliver(topic string, payload []byte) {
	b.mu.Lock()
	h := b.handlers[topic]
	b.mu.Unlock()
	if h != nil {
		h(payload)
	}
}

func (b *fakeBus) published(topic string) []published {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []published
	for _, p := range b.pubs {
		if p.topic == topic {
			out = append(out, p)
		}
	}
	return out
}

// stallingBus accepts subscriptions but never acknowledges a publish; each
// Publish returns only once its context expires.
type stallingBus struct {
	*fakeBus
	attempts atomic.Int32
}

func newStallingBus() *stallingBus {
	return &stallingBus{fakeBus: newFakeBus()}
}

func (b *stallingBus) Publish(ctx context.Context, _ string, _ []byte) error {
	b.attempts.Add(1)
	<-ctx.Done()
	return ctx.Err()
}

func newTestLogger() (*logrus.Logger, *logtest.Hook) {
	log, hook := logtest.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)
	return log, hook
}

var fixedNow = time.Date(2024, 3, 9, 14, 2, 7, 123456000, time.UTC)

func newTestEmitter(pub Publisher, log logrus.FieldLogger) *Emitter {
	e := NewEmitter(pub, "test_agent", time.Second, log)
	e.now = func() time.Time { return fixedNow }
	e.newID = func() string { return "evt-1" }
	return e
}

func utt(participant string, labels ...string) Utterance {
	return Utterance{
		ParticipantID: participant,
		Extractions:   []Extraction{{Labels: labels}},
	}
}

func dialogPayload(t *testing.T, participant string, asrID any, labels ...[]string) []byte {
	t.Helper()
	extractions := make([]map[string]any, 0, len(labels))
	for _, l := range labels {
		extractions = append(extractions, map[string]any{"labels": l, "span": "ignored"})
	}
	b, err := json.Marshal(map[string]any{
		"header": map[string]any{"timestamp": "2024-03-09T14:02:07.000000Z", "message_type": "event"},
		"data": map[string]any{
			"participant_id": participant,
			"asr_msg_id":     asrID,
			"extractions":    extractions,
		},
	})
	require.NoError(t, err)
	return b
}
