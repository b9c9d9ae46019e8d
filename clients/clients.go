package clients

import (
	"sync"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	cfg "github.com/maastricht-university/dialog-coordination/config"
)

// QoS 2: exactly once.
const qos byte = 2

type MQTT struct {
	c   mqtt.Client
	cfg cfg.MQTT
	log logrus.FieldLogger

	mu   sync.Mutex
	subs map[string]mqtt.MessageHandler
}

func NewMQTT(c cfg.MQTT, log logrus.FieldLogger) *MQTT {
	m := &MQTT{cfg: c, log: log, subs: map[string]mqtt.MessageHandler{}}
	m.c = mqtt.NewClient(m.options())
	return m
}

func (m *MQTT) options() *mqtt.ClientOptions {
	id := m.cfg.ClientID
	if id == "" {
		id = "agent-" + uuid.NewString()
	}
	return mqtt.NewClientOptions().
		AddBroker(m.cfg.BrokerURL()).
		SetClientID(id).
		SetCleanSession(true).
		SetOrderMatters(true).
		SetAutoReconnect(true).
		SetMaxReconnectInterval(m.cfg.ReconnectMax).
		SetConnectTimeout(m.cfg.ConnectTimeout).
		SetOnConnectHandler(m.onConnect).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			m.log.WithError(err).Warn("mqtt connection lost")
		}).
		SetReconnectingHandler(func(_ mqtt.Client, _ *mqtt.ClientOptions) {
			m.log.Info("mqtt reconnecting")
		})
}

// onConnect restores subscriptions; the session is clean so the broker
// forgets them on every reconnect.
func (m *MQTT) onConnect(c mqtt.Client) {
	m.log.WithField("broker", m.cfg.BrokerURL()).Info("mqtt connected")

	m.mu.Lock()
	subs := make(map[string]mqtt.MessageHandler, len(m.subs))
	for t, h := range m.subs {
		subs[t] = h
	}
	m.mu.Unlock()

	for topic, h := range subs {
		topic := topic
		tok := c.Subscribe(topic, qos, h)
		go func() {
			<-tok.Done()
			if err := tok.Error(); err != nil {
				m.log.WithError(err).WithField("topic", topic).Error("resubscribe failed")
			}
		}()
	}
}
