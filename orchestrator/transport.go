package orchestrator

import "context"

// Publisher sends a payload to a topic. Implementations must be safe for
// concurrent use; the heartbeat and the pipeline share one.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload []byte) error
}

// Subscriber delivers payloads for a topic to handler, one at a time.
type Subscriber interface {
	Subscribe(ctx context.Context, topic string, handler func(payload []byte)) error
	Unsubscribe(ctx context.Context, topic string) error
}

type Bus interface {
	Publisher
	Subscriber
}
