// Package collector ingests raw ambient sensor traffic. It derives the
// canonical warm/cool reading from each payload, keeps reading history in
// Redis and republishes the result for the control tier.
package collector

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/miskatonen/duolux/pkg/config"
	"github.com/miskatonen/duolux/pkg/mqtt"
	"github.com/miskatonen/duolux/pkg/redis"
)

// Agent is the ingestion agent: raw ambient payloads in, canonical readings
// out
type Agent struct {
	mqtt      mqtt.Client
	redis     redis.Client
	processor *Processor
	storage   *Storage
	cfg       *config.Config
	logger    *slog.Logger
}

// NewAgent creates a new collector agent
func NewAgent(mqttClient mqtt.Client, redisClient redis.Client, cfg *config.Config, logger *slog.Logger) *Agent {
	return &Agent{
		mqtt:      mqttClient,
		redis:     redisClient,
		processor: NewProcessor(cfg, logger),
		storage:   NewStorage(redisClient, cfg, logger),
		cfg:       cfg,
		logger:    logger,
	}
}

// Start connects to the broker and Redis, subscribes to the configured raw
// topics and blocks until the context is cancelled
func (a *Agent) Start(ctx context.Context) error {
	a.logger.Info("Starting collector agent",
		"service_name", a.cfg.ServiceName,
		"mqtt_broker", a.cfg.MQTTAddress())

	if err := a.mqtt.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect to MQTT: %w", err)
	}

	if err := a.redis.Ping(ctx); err != nil {
		return fmt.Errorf("failed to ping Redis: %w", err)
	}

	for _, topic := range a.cfg.SensorTopics {
		if err := a.mqtt.Subscribe(topic, 0, a.handleMessage); err != nil {
			// One bad topic must not take the others down
			a.logger.Error("Failed to subscribe to topic", "topic", topic, "error", err)
			continue
		}
	}

	a.logger.Info("Collector agent ready",
		"subscribed_topics", strings.Join(a.cfg.SensorTopics, ", "))

	<-ctx.Done()
	a.logger.Info("Collector agent stopping")
	return nil
}

// Stop disconnects from the broker and closes the Redis connection
func (a *Agent) Stop() error {
	a.logger.Info("Stopping collector agent")

	a.mqtt.Disconnect()

	if err := a.redis.Close(); err != nil {
		a.logger.Error("Error closing Redis connection", "error", err)
		return err
	}

	a.logger.Info("Collector agent stopped")
	return nil
}

// handleMessage runs the ingestion pipeline for one raw payload: parse,
// derive the reading, store history, republish the canonical form
func (a *Agent) handleMessage(msg mqtt.Message) {
	topic := msg.Topic()
	a.logger.Debug("Received MQTT message", "topic", topic, "size", len(msg.Payload()))

	sensorMsg, err := a.processor.ParseMessage(topic, msg.Payload())
	if err != nil {
		a.logger.Error("Failed to parse message", "topic", topic, "error", err)
		return
	}

	reading := a.processor.BuildAmbientReading(sensorMsg)

	ctx := context.Background()
	if err := a.storage.StoreAmbientReading(ctx, sensorMsg, reading); err != nil {
		// Storage failures must not block the control tier, the reading is
		// republished regardless
		a.logger.Error("Failed to store ambient reading",
			"location", sensorMsg.Location,
			"error", err)
	}

	if err := a.publishReading(sensorMsg, reading); err != nil {
		a.logger.Error("Failed to publish ambient reading",
			"location", sensorMsg.Location,
			"error", err)
	}

	a.logger.Info("Ambient reading processed",
		"location", sensorMsg.Location,
		"lux", reading.Lux,
		"source", reading.Source)
}

// publishReading republishes the canonical reading on the sensor topic for
// the location
func (a *Agent) publishReading(msg *SensorMessage, reading *AmbientReading) error {
	payload, err := a.processor.BuildTriggerPayload(msg, reading)
	if err != nil {
		return fmt.Errorf("failed to build reading payload: %w", err)
	}

	topic := mqtt.SensorAmbientTopic(msg.Location)
	if err := a.mqtt.Publish(topic, 0, false, payload); err != nil {
		return fmt.Errorf("failed to publish reading: %w", err)
	}

	a.logger.Debug("Published canonical reading", "topic", topic)
	return nil
}
