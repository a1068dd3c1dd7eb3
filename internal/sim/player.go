// Package sim replays scripted ambient light scenarios over MQTT. It stands
// in for the physical sensor when developing or demonstrating the control
// loop.
package sim

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/miskatonen/duolux/pkg/mqtt"
)

// Player publishes scenario samples to the raw sensor topic
type Player struct {
	mqtt   mqtt.Client
	logger *slog.Logger
}

// NewPlayer creates a new scenario player
func NewPlayer(mqttClient mqtt.Client, logger *slog.Logger) *Player {
	return &Player{
		mqtt:   mqttClient,
		logger: logger,
	}
}

// Play publishes the scenario in real time at the sensor cadence until the
// playback duration elapses or the context is cancelled
func (p *Player) Play(ctx context.Context, sc *Scenario) error {
	topic := mqtt.RawAmbientTopic(sc.Location)
	interval := time.Duration(sc.IntervalSec) * time.Second

	seed := sc.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	p.logger.Info("Playing scenario",
		"name", sc.Name,
		"location", sc.Location,
		"interval", interval,
		"duration_sec", sc.DurationSec)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	start := time.Now()

	for {
		elapsed := int(time.Since(start) / time.Second)
		if elapsed >= sc.DurationSec {
			p.logger.Info("Scenario complete", "name", sc.Name, "elapsed_sec", elapsed)
			return nil
		}

		if err := p.publishSample(sc, elapsed, rng, topic); err != nil {
			p.logger.Warn("Failed to publish sample", "error", err)
		}

		select {
		case <-ctx.Done():
			p.logger.Info("Scenario playback cancelled", "name", sc.Name)
			return nil
		case <-ticker.C:
		}
	}
}

// publishSample publishes one sensor sample for the given offset
func (p *Player) publishSample(sc *Scenario, elapsedSec int, rng *rand.Rand, topic string) error {
	data := buildSample(sc, elapsedSec, rng)
	if data == nil {
		// The first scripted step has not begun yet
		return nil
	}

	payload, err := json.Marshal(map[string]interface{}{"data": data})
	if err != nil {
		return fmt.Errorf("failed to marshal sample: %w", err)
	}

	if err := p.mqtt.Publish(topic, 0, false, payload); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", topic, err)
	}

	p.logger.Debug("Published sample", "topic", topic, "elapsed_sec", elapsedSec)

	return nil
}

// buildSample produces the sensor payload for the given offset. Returns nil
// before the first scripted step.
func buildSample(sc *Scenario, elapsedSec int, rng *rand.Rand) map[string]interface{} {
	if sc.Random != nil {
		lux := sc.Random.MinLux + rng.Float64()*(sc.Random.MaxLux-sc.Random.MinLux)
		tempK := sc.Random.MinTempK + rng.Intn(sc.Random.MaxTempK-sc.Random.MinTempK+1)

		return map[string]interface{}{
			"illuminance": lux,
			"color_temp":  tempK,
		}
	}

	step := sc.StepAt(elapsedSec)
	if step == nil {
		return nil
	}

	lux := step.Illuminance
	if sc.JitterLux > 0 {
		lux += (rng.Float64()*2 - 1) * sc.JitterLux
		if lux < 0 {
			lux = 0
		}
	}

	data := map[string]interface{}{
		"illuminance": lux,
	}

	if step.ColorTemp > 0 {
		data["color_temp"] = step.ColorTemp
	}

	if step.Red > 0 || step.Green > 0 || step.Blue > 0 {
		data["red"] = step.Red
		data["green"] = step.Green
		data["blue"] = step.Blue
	}

	return data
}
