package collector

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/miskatonen/duolux/internal/control"
	"github.com/miskatonen/duolux/pkg/config"
)

// Processor handles parsing of raw ambient sensor messages and derivation
// of the canonical warm/cool reading the rest of the system consumes
type Processor struct {
	warmTempK int
	coolTempK int
	logger    *slog.Logger
}

// NewProcessor builds a processor using the configured channel temperature
// anchors
func NewProcessor(cfg *config.Config, logger *slog.Logger) *Processor {
	return &Processor{
		warmTempK: cfg.WarmTempK,
		coolTempK: cfg.CoolTempK,
		logger:    logger,
	}
}

// SensorMessage is one raw payload after topic routing, carrying the decoded
// body and arrival times
type SensorMessage struct {
	SensorType    string
	Location      string
	OriginalTopic string
	Data          map[string]interface{}
	Timestamp     time.Time
	CollectedAt   int64 // Unix milliseconds
}

// AmbientReading is the canonical derived reading: measured illuminance split
// into warm and cool contributions. Stored in Redis and republished on the
// sensor topic for the lamp agent.
//
// Source is "color_temp" when the sensor reported a colour temperature,
// "rgb" when the split was derived from raw channel counts, and "lux_only"
// when the sensor gave no colour information at all (even split assumed).
type AmbientReading struct {
	Timestamp   string  `json:"timestamp"`
	CollectedAt int64   `json:"collected_at"`
	Lux         float64 `json:"lux"`
	YellowLux   float64 `json:"yellow_lux"`
	WhiteLux    float64 `json:"white_lux"`
	ColorTemp   int     `json:"color_temp"`
	Source      string  `json:"source"`
}

// ParseMessage decodes one raw payload and resolves its location from the
// topic. Topic pattern: automation/raw/ambient/{location}
func (p *Processor) ParseMessage(topic string, payload []byte) (*SensorMessage, error) {
	parts := strings.Split(topic, "/")
	if len(parts) < 4 {
		p.logger.Warn("Topic does not match the raw sensor pattern", "topic", topic)
		return nil, fmt.Errorf("malformed sensor topic: %s", topic)
	}

	sensorType := parts[2]
	location := parts[3]

	if sensorType != "ambient" {
		p.logger.Warn("Unsupported sensor type", "sensor_type", sensorType, "topic", topic)
		return nil, fmt.Errorf("unsupported sensor type: %s", sensorType)
	}

	var rawData map[string]interface{}
	if err := json.Unmarshal(payload, &rawData); err != nil {
		p.logger.Error("Failed to decode payload", "topic", topic, "error", err)
		return nil, fmt.Errorf("failed to decode payload: %w", err)
	}

	// Payloads normally arrive wrapped as {"data": {...}}, bare objects are
	// accepted too
	data, ok := rawData["data"].(map[string]interface{})
	if !ok {
		data = rawData
	}

	msg := &SensorMessage{
		SensorType:    sensorType,
		Location:      location,
		OriginalTopic: topic,
		Data:          data,
		Timestamp:     time.Now().UTC(),
		CollectedAt:   time.Now().UnixMilli(),
	}

	p.logger.Debug("Raw payload accepted",
		"location", location,
		"topic", topic)

	return msg, nil
}

// BuildAmbientReading derives the canonical reading from a parsed message.
//
// Raw payloads carry "illuminance" plus either "color_temp" or the channel
// counts "red"/"green"/"blue". A missing or non-positive illuminance is a
// darkness reading (0 lux). The white share of the measured light comes from
// the colour temperature when present, from the blue fraction of the channel
// counts otherwise, and defaults to an even split when the sensor reports no
// colour information.
func (p *Processor) BuildAmbientReading(msg *SensorMessage) *AmbientReading {
	lux := 0.0
	if v, ok := msg.Data["illuminance"].(float64); ok && v > 0 {
		lux = v
	}

	whiteShare := 0.5
	colorTemp := control.TemperatureForRatio(whiteShare, p.warmTempK, p.coolTempK)
	source := "lux_only"

	if v, ok := msg.Data["color_temp"].(float64); ok && v > 0 {
		colorTemp = int(math.Round(v))
		ratios := control.RatioForTemperature(colorTemp, p.warmTempK, p.coolTempK)
		whiteShare = ratios.White
		source = "color_temp"
	} else if share, ok := blueFraction(msg.Data); ok {
		whiteShare = share
		colorTemp = control.TemperatureForRatio(whiteShare, p.warmTempK, p.coolTempK)
		source = "rgb"
	}

	return &AmbientReading{
		Timestamp:   msg.Timestamp.Format(time.RFC3339Nano),
		CollectedAt: msg.CollectedAt,
		Lux:         lux,
		YellowLux:   lux * (1 - whiteShare),
		WhiteLux:    lux * whiteShare,
		ColorTemp:   colorTemp,
		Source:      source,
	}
}

// blueFraction estimates the cool (white) share of the measured light from
// raw RGB channel counts. The blue fraction of the total count runs from
// about 1/6 under fully warm light to about 1/2 under fully cool light, with
// a neutral source reading one third blue. Mapping that range linearly gives
// share = 3*blue/sum - 0.5, clamped to [0, 1].
func blueFraction(data map[string]interface{}) (float64, bool) {
	red, okR := data["red"].(float64)
	green, okG := data["green"].(float64)
	blue, okB := data["blue"].(float64)
	if !okR || !okG || !okB {
		return 0, false
	}

	sum := red + green + blue
	if sum <= 0 {
		return 0, false
	}

	share := 3*blue/sum - 0.5
	if share < 0 {
		share = 0
	}
	if share > 1 {
		share = 1
	}
	return share, true
}

// BuildTriggerPayload creates the payload for the canonical reading message
// published to the sensor topic
func (p *Processor) BuildTriggerPayload(msg *SensorMessage, reading *AmbientReading) ([]byte, error) {
	payload := map[string]interface{}{
		"data":           reading,
		"original_topic": msg.OriginalTopic,
		"stored_at":      msg.Timestamp.Format(time.RFC3339Nano),
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal trigger payload: %w", err)
	}

	return data, nil
}
