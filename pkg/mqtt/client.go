package mqtt

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/miskatonen/duolux/pkg/config"
)

// Reconnect tuning for the paho client. Agents are long-lived, so the client
// keeps retrying with a capped interval instead of giving up.
const (
	connectRetryInterval = 5 * time.Second
	maxReconnectInterval = 30 * time.Second
)

// mqttClient wraps the paho client behind the Client interface
type mqttClient struct {
	client pahomqtt.Client
	cfg    *config.Config
	logger *slog.Logger
}

// NewClient builds a paho-backed client from the configuration. The returned
// client is not connected yet; Connect dials the broker.
func NewClient(cfg *config.Config, logger *slog.Logger) Client {
	statusTopic := ServiceStatusTopic(cfg.ServiceName)

	opts := pahomqtt.NewClientOptions()
	opts.AddBroker(cfg.MQTTAddress())
	opts.SetClientID(clientID(cfg))

	if cfg.MQTTUser != "" {
		opts.SetUsername(cfg.MQTTUser)
	}
	if cfg.MQTTPassword != "" {
		opts.SetPassword(cfg.MQTTPassword)
	}

	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(connectRetryInterval)
	opts.SetMaxReconnectInterval(maxReconnectInterval)

	// Availability: the retained status marks the service online, the broker
	// flips it to offline through the last will when the connection dies
	opts.SetWill(statusTopic, "offline", 1, true)

	opts.OnConnect = func(c pahomqtt.Client) {
		logger.Info("Connected to MQTT broker", "broker", cfg.MQTTAddress())
		c.Publish(statusTopic, 1, true, "online")
	}
	opts.OnConnectionLost = func(_ pahomqtt.Client, err error) {
		logger.Warn("Lost connection to MQTT broker", "error", err)
	}
	opts.OnReconnecting = func(_ pahomqtt.Client, _ *pahomqtt.ClientOptions) {
		logger.Info("Reconnecting to MQTT broker")
	}

	return &mqttClient{
		client: pahomqtt.NewClient(opts),
		cfg:    cfg,
		logger: logger,
	}
}

// clientID returns the configured client identity, or derives one from the
// service name so parallel agents never collide on the broker
func clientID(cfg *config.Config) string {
	if cfg.MQTTClientID != "" {
		return cfg.MQTTClientID
	}
	return fmt.Sprintf("%s-%d", cfg.ServiceName, time.Now().Unix())
}

// Connect dials the broker and waits for the handshake, giving up when the
// context ends first
func (m *mqttClient) Connect(ctx context.Context) error {
	m.logger.Info("Connecting to MQTT broker", "broker", m.cfg.MQTTAddress())

	token := m.client.Connect()
	select {
	case <-token.Done():
		if err := token.Error(); err != nil {
			return fmt.Errorf("failed to connect to MQTT broker: %w", err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("connection timeout: %w", ctx.Err())
	}
}

// Disconnect leaves a clean offline marker and closes the connection. The
// last will only fires on unclean exits, so the marker is published here.
func (m *mqttClient) Disconnect() {
	m.logger.Info("Disconnecting from MQTT broker")

	token := m.client.Publish(ServiceStatusTopic(m.cfg.ServiceName), 1, true, "offline")
	token.WaitTimeout(time.Second)

	m.client.Disconnect(250)
}

// Subscribe registers a handler for a topic. Incoming paho messages are
// wrapped so handlers only depend on the Message interface.
func (m *mqttClient) Subscribe(topic string, qos byte, handler MessageHandler) error {
	forward := func(_ pahomqtt.Client, msg pahomqtt.Message) {
		handler(&mqttMessage{inner: msg})
	}

	token := m.client.Subscribe(topic, qos, forward)
	token.Wait()
	if err := token.Error(); err != nil {
		return fmt.Errorf("failed to subscribe to topic %s: %w", topic, err)
	}

	m.logger.Info("Subscribed to MQTT topic", "topic", topic, "qos", qos)
	return nil
}

// Publish sends a payload to a topic and waits for the broker to accept it
func (m *mqttClient) Publish(topic string, qos byte, retained bool, payload []byte) error {
	token := m.client.Publish(topic, qos, retained, payload)
	token.Wait()
	if err := token.Error(); err != nil {
		return fmt.Errorf("failed to publish to topic %s: %w", topic, err)
	}

	m.logger.Debug("Published message", "topic", topic, "size", len(payload))
	return nil
}

// IsConnected reports whether the client currently holds a broker connection
func (m *mqttClient) IsConnected() bool {
	return m.client.IsConnected()
}

// mqttMessage adapts a paho message to the Message interface
type mqttMessage struct {
	inner pahomqtt.Message
}

func (m *mqttMessage) Topic() string {
	return m.inner.Topic()
}

func (m *mqttMessage) Payload() []byte {
	return m.inner.Payload()
}

func (m *mqttMessage) Ack() {
	m.inner.Ack()
}
