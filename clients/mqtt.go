package clients

import (
	"context"
	"fmt"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// quiesce time for Disconnect, in milliseconds.
const disconnectQuiesce = 250

func (m *MQTT) Connect(ctx context.Context) error {
	m.log.WithField("broker", m.cfg.BrokerURL()).Info("connecting to mqtt broker")
	if err := wait(ctx, m.c.Connect()); err != nil {
		return fmt.Errorf("mqtt connect %s: %w", m.cfg.BrokerURL(), err)
	}
	return nil
}

func (m *MQTT) Disconnect() {
	m.log.Info("disconnecting from mqtt broker")
	m.c.Disconnect(disconnectQuiesce)
}

// Publish sends payload at QoS 2 and waits for the broker's PUBCOMP or ctx.
// Safe for concurrent use.
func (m *MQTT) Publish(ctx context.Context, topic string, payload []byte) error {
	return wait(ctx, m.c.Publish(topic, qos, false, payload))
}

// Subscribe registers handler for topic. Deliveries are serialised by the
// client, so handler is never called concurrently with itself.
func (m *MQTT) Subscribe(ctx context.Context, topic string, handler func(payload []byte)) error {
	h := func(_ mqtt.Client, msg mqtt.Message) {
		handler(msg.Payload())
	}

	m.mu.Lock()
	m.subs[topic] = h
	m.mu.Unlock()

	if err := wait(ctx, m.c.Subscribe(topic, qos, h)); err != nil {
		m.forget(topic)
		return err
	}
	return nil
}

func (m *MQTT) Unsubscribe(ctx context.Context, topic string) error {
	m.forget(topic)
	return wait(ctx, m.c.Unsubscribe(topic))
}

func (m *MQTT) forget(topic string) {
	m.mu.Lock()
	delete(m.subs, topic)
	m.mu.Unlock()
}

func wait(ctx context.Context, t mqtt.Token) error {
	select {
	case <-t.Done():
		return t.Error()
	case <-ctx.Done():
		return ctx.Err()
	}
}
