package orchestrator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunHeartbeatTicksUntilCancelled(t *testing.T) {
	t.Parallel()

	bus := newFakeBus()
	log, _ := newTestLogger()
	e := newTestEmitter(bus, log)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		e.RunHeartbeat(ctx, 5*time.Millisecond)
		close(done)
	}()

	require.Eventually(t, func() bool {
		return len(bus.published(HeartbeatTopic("test_agent"))) >= 3
	}, time.Second, time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("heartbeat did not stop")
	}

	n := len(bus.published(HeartbeatTopic("test_agent")))
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, n, len(bus.published(HeartbeatTopic("test_agent"))))
}

func TestRunHeartbeatSurvivesPublishErrors(t *testing.T) {
	t.Parallel()

	bus := newFakeBus()
	bus.pubErr = errors.New("offline")
	log, hook := newTestLogger()
	e := newTestEmitter(bus, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go e.RunHeartbeat(ctx, 2*time.Millisecond)

	require.Eventually(t, func() bool {
		warnings := 0
		for _, entry := range hook.AllEntries() {
			if entry.Level == logrus.WarnLevel {
				warnings++
			}
		}
		return warnings >= 2
	}, time.Second, time.Millisecond)
}
