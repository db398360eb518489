package sensor

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/levenlabs/go-lflag"

	"github.com/tariffiq/tariffiq/pkg/log"
	"github.com/tariffiq/tariffiq/pkg/types"
)

const (
	connectTimeout = 10 * time.Second
	publishTimeout = 5 * time.Second
)

// MQTT subscribes to sensor state topics, feeding a Values cache, and
// publishes cost reports as retained JSON messages.
type MQTT struct {
	client      mqtt.Client
	values      *Values
	reportTopic string

	mu     sync.Mutex
	topics map[string]string // topic -> sensor id
}

// Configured returns an MQTT instance configured via lflag. The broker
// address is required; the returned instance is not connected until Connect
// is called.
func Configured(values *Values) *MQTT {
	broker := lflag.RequiredString("mqtt-broker", "address of the MQTT broker, like tcp://host:1883")
	username := lflag.String("mqtt-username", "", "username for the MQTT broker")
	password := lflag.String("mqtt-password", "", "password for the MQTT broker")
	clientID := lflag.String("mqtt-client-id", "tariffiq", "client identifier for the MQTT session")
	reportTopic := lflag.String("mqtt-report-topic", "tariffiq/report", "topic cost reports are published on")

	m := &MQTT{
		topics: make(map[string]string),
	}
	lflag.Do(func() {
		m.values = values
		m.reportTopic = *reportTopic

		opts := mqtt.NewClientOptions().
			AddBroker(*broker).
			SetClientID(*clientID).
			SetAutoReconnect(true).
			SetOnConnectHandler(m.onConnect)
		if *username != "" {
			opts.SetUsername(*username)
		}
		if *password != "" {
			opts.SetPassword(*password)
		}
		m.client = mqtt.NewClient(opts)
	})
	return m
}

// Subscribe registers a sensor id to be fed from the given topic. All
// registrations must happen before Connect.
func (m *MQTT) Subscribe(id, topic string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.topics[topic] = id
}

// Connect establishes the broker session. Registered topics are subscribed
// on every (re)connect by the connect handler.
func (m *MQTT) Connect(ctx context.Context) error {
	token := m.client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return fmt.Errorf("timed out connecting to MQTT broker")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("connecting to MQTT broker: %w", err)
	}
	log.Ctx(ctx).InfoContext(ctx, "connected to MQTT broker")
	return nil
}

func (m *MQTT) onConnect(client mqtt.Client) {
	ctx := context.Background()
	m.mu.Lock()
	topics := make(map[string]string, len(m.topics))
	for topic, id := range m.topics {
		topics[topic] = id
	}
	m.mu.Unlock()

	for topic, id := range topics {
		id := id
		token := client.Subscribe(topic, 0, func(_ mqtt.Client, msg mqtt.Message) {
			m.values.Set(id, string(msg.Payload()))
		})
		if !token.WaitTimeout(connectTimeout) || token.Error() != nil {
			log.Ctx(ctx).ErrorContext(
				ctx,
				"failed to subscribe to sensor topic",
				slog.String("topic", topic),
				slog.Any("error", token.Error()),
			)
			continue
		}
		log.Ctx(ctx).InfoContext(
			ctx,
			"subscribed to sensor topic",
			slog.String("topic", topic),
			slog.String("sensor", id),
		)
	}
}

// PublishReport serializes the report to JSON and publishes it retained so
// late subscribers immediately see the latest evaluation.
func (m *MQTT) PublishReport(ctx context.Context, report types.CostReport) error {
	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("encoding cost report: %w", err)
	}
	token := m.client.Publish(m.reportTopic, 0, true, payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("timed out publishing cost report")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publishing cost report: %w", err)
	}
	log.Ctx(ctx).DebugContext(ctx, "published cost report", slog.String("topic", m.reportTopic))
	return nil
}

// Close disconnects from the broker, waiting briefly for in-flight messages.
func (m *MQTT) Close() {
	m.client.Disconnect(uint(publishTimeout / time.Millisecond))
}
