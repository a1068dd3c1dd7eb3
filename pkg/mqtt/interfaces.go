package mqtt

import "context"

// Client is the broker surface the agents run on. Kept as an interface so
// agents can be driven with fake brokers in tests.
type Client interface {
	// Connect dials the broker and waits for the session to come up
	Connect(ctx context.Context) error

	// Disconnect publishes the offline status and closes the connection
	Disconnect()

	// Subscribe registers a handler for a topic at the given QoS
	Subscribe(topic string, qos byte, handler MessageHandler) error

	// Publish sends a payload to a topic
	Publish(topic string, qos byte, retained bool, payload []byte) error

	// IsConnected reports whether the client is currently connected
	IsConnected() bool
}

// MessageHandler is a callback for incoming MQTT messages
type MessageHandler func(Message)

// Message is a received MQTT message
type Message interface {
	// Topic reports which topic the message arrived on
	Topic() string

	// Payload returns the raw message body
	Payload() []byte

	// Ack confirms delivery for QoS 1 and above
	Ack()
}
