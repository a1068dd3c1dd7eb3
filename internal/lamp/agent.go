// Package lamp implements the dual-channel control agent. It consumes
// processed ambient readings, runs the balance controller for each known
// location and publishes drive commands for the lamp hardware.
package lamp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/miskatonen/duolux/internal/ambient"
	"github.com/miskatonen/duolux/internal/archive"
	"github.com/miskatonen/duolux/internal/control"
	"github.com/miskatonen/duolux/pkg/config"
	"github.com/miskatonen/duolux/pkg/mqtt"
	"github.com/miskatonen/duolux/pkg/redis"
)

// locationState tracks the latest reading and controller state for one
// location. Guarded by Agent.stateMux.
type locationState struct {
	reading     control.Reading
	colorTemp   int
	readingAt   time.Time
	state       control.State
	lastCommand *control.DriveCommand
}

// CycleArchiver persists control cycles to long-term storage
type CycleArchiver interface {
	InsertCycle(ctx context.Context, cycle *archive.Cycle) error
}

// Agent is the lamp control agent
type Agent struct {
	mqtt        mqtt.Client
	redis       redis.Client
	archive     CycleArchiver
	cfg         *config.Config
	logger      *slog.Logger
	params      control.Params
	ambient     *ambient.Storage
	holds       *HoldManager
	rateLimiter *RateLimiter
	telemetry   *Telemetry

	stateMux  sync.RWMutex
	locations map[string]*locationState

	ticker   *time.Ticker
	stopChan chan struct{}
}

// NewAgent creates a new lamp agent. The archiver may be nil when cycle
// archiving is disabled.
func NewAgent(mqttClient mqtt.Client, redisClient redis.Client, archiver CycleArchiver, cfg *config.Config, logger *slog.Logger) *Agent {
	return &Agent{
		mqtt:        mqttClient,
		redis:       redisClient,
		archive:     archiver,
		cfg:         cfg,
		logger:      logger,
		params:      cfg.ControlParams(),
		ambient:     ambient.NewStorage(redisClient, cfg, logger),
		holds:       NewHoldManager(),
		rateLimiter: NewRateLimiter(),
		telemetry:   NewTelemetry(redisClient, logger),
		locations:   make(map[string]*locationState),
		stopChan:    make(chan struct{}),
	}
}

// Start connects to MQTT and Redis, subscribes to reading and hold topics
// and runs the periodic control loop until the context is cancelled
func (a *Agent) Start(ctx context.Context) error {
	a.logger.Info("Starting lamp agent",
		"service_name", a.cfg.ServiceName,
		"strategy", a.params.Strategy,
		"tick_interval_sec", a.cfg.TickIntervalSec,
		"min_command_interval_ms", a.cfg.MinCommandIntervalMs,
		"manual_hold_minutes", a.cfg.ManualHoldMinutes)

	if err := a.params.Validate(); err != nil {
		return fmt.Errorf("invalid control parameters: %w", err)
	}

	if err := a.mqtt.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect to MQTT: %w", err)
	}

	if err := a.redis.Ping(ctx); err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	if err := a.mqtt.Subscribe(mqtt.TopicSensorAmbient, 0, a.handleReadingMessage); err != nil {
		return fmt.Errorf("failed to subscribe to ambient readings: %w", err)
	}

	if err := a.mqtt.Subscribe(mqtt.TopicLampHold, 0, a.handleHoldMessage); err != nil {
		return fmt.Errorf("failed to subscribe to hold requests: %w", err)
	}

	a.recoverLocations(ctx)
	a.startPeriodicControlLoop()

	a.logger.Info("Lamp agent started")

	<-ctx.Done()
	a.logger.Info("Lamp agent stopping")
	return nil
}

// Stop shuts down the control loop and closes connections
func (a *Agent) Stop() error {
	a.logger.Info("Stopping lamp agent")

	if a.ticker != nil {
		a.ticker.Stop()
	}
	close(a.stopChan)

	a.mqtt.Disconnect()

	if err := a.redis.Close(); err != nil {
		a.logger.Error("Error closing Redis connection", "error", err)
		return err
	}

	a.logger.Info("Lamp agent stopped")
	return nil
}

// recoverLocations seeds the location table from stored reading history so a
// restart does not wait for fresh sensor traffic before resuming control.
// Only locations with a reading inside the staleness window are picked up,
// anything older re-registers itself through the sensor topic.
func (a *Agent) recoverLocations(ctx context.Context) {
	locations, err := a.ambient.GetAllLocations(ctx)
	if err != nil {
		a.logger.Warn("Failed to list stored locations", "error", err)
		return
	}

	maxAge := time.Duration(a.cfg.ReadingMaxAgeSec) * time.Second
	recovered := 0
	for _, location := range locations {
		summary, err := a.ambient.GetReadingSummary(ctx, location)
		if err != nil {
			a.logger.Warn("Failed to load stored readings", "location", location, "error", err)
			continue
		}

		latest := summary.LatestReading
		if latest == nil || time.Since(latest.Timestamp) > maxAge {
			continue
		}

		a.stateMux.Lock()
		if _, exists := a.locations[location]; !exists {
			a.locations[location] = &locationState{
				reading: control.Reading{
					TotalLux:  latest.Lux,
					YellowLux: latest.YellowLux,
					WhiteLux:  latest.WhiteLux,
				},
				colorTemp: latest.ColorTemp,
				readingAt: latest.Timestamp,
			}
			recovered++
		}
		a.stateMux.Unlock()
	}

	if recovered > 0 {
		a.logger.Info("Recovered locations from stored readings", "count", recovered)
	}
}

// startPeriodicControlLoop runs a control cycle for every known location
// at the configured tick interval
func (a *Agent) startPeriodicControlLoop() {
	interval := time.Duration(a.cfg.TickIntervalSec) * time.Second
	a.ticker = time.NewTicker(interval)

	go func() {
		for {
			select {
			case <-a.ticker.C:
				a.runControlCycle(context.Background())
			case <-a.stopChan:
				return
			}
		}
	}()

	a.logger.Info("Periodic control loop started", "interval", interval)
}

// runControlCycle evaluates every known location once
func (a *Agent) runControlCycle(ctx context.Context) {
	a.stateMux.RLock()
	locations := make([]string, 0, len(a.locations))
	for location := range a.locations {
		locations = append(locations, location)
	}
	a.stateMux.RUnlock()

	for _, location := range locations {
		a.evaluateLocation(ctx, location, false)
	}

	if cleaned := a.holds.CleanupExpiredHolds(); cleaned > 0 {
		a.logger.Debug("Cleaned up expired holds", "count", cleaned)
	}
}

// handleReadingMessage processes an ambient reading published by the
// collector
func (a *Agent) handleReadingMessage(msg mqtt.Message) {
	location := mqtt.LocationFromTopic(msg.Topic())
	if location == "" {
		a.logger.Warn("Could not extract location from topic", "topic", msg.Topic())
		return
	}

	var payload struct {
		Data struct {
			Lux       float64 `json:"lux"`
			YellowLux float64 `json:"yellow_lux"`
			WhiteLux  float64 `json:"white_lux"`
			ColorTemp int     `json:"color_temp"`
			Source    string  `json:"source"`
		} `json:"data"`
	}
	if err := json.Unmarshal(msg.Payload(), &payload); err != nil {
		a.logger.Warn("Failed to parse ambient reading", "topic", msg.Topic(), "error", err)
		return
	}

	a.stateMux.Lock()
	st, exists := a.locations[location]
	if !exists {
		st = &locationState{}
		a.locations[location] = st
	}
	st.reading = control.Reading{
		TotalLux:  payload.Data.Lux,
		YellowLux: payload.Data.YellowLux,
		WhiteLux:  payload.Data.WhiteLux,
	}
	st.colorTemp = payload.Data.ColorTemp
	st.readingAt = time.Now()
	a.stateMux.Unlock()

	a.logger.Debug("Received ambient reading",
		"location", location,
		"lux", payload.Data.Lux,
		"color_temp", payload.Data.ColorTemp,
		"source", payload.Data.Source)

	// React immediately to the first reading from a new location, later
	// readings are picked up by the periodic loop
	if !exists {
		a.logger.Info("Tracking new location", "location", location)
		a.evaluateLocation(context.Background(), location, true)
	}
}

// handleHoldMessage processes a manual hold request
func (a *Agent) handleHoldMessage(msg mqtt.Message) {
	location := mqtt.LocationFromTopic(msg.Topic())
	if location == "" {
		a.logger.Warn("Could not extract location from topic", "topic", msg.Topic())
		return
	}

	var request struct {
		Action          string `json:"action"`
		DurationMinutes int    `json:"duration_minutes"`
	}
	if err := json.Unmarshal(msg.Payload(), &request); err != nil {
		a.logger.Warn("Failed to parse hold request", "topic", msg.Topic(), "error", err)
		return
	}

	switch request.Action {
	case "hold":
		minutes := request.DurationMinutes
		if minutes <= 0 {
			minutes = a.cfg.ManualHoldMinutes
		}
		expiresAt := a.holds.SetHold(location, minutes)
		a.logger.Info("Manual hold set",
			"location", location,
			"duration_minutes", minutes,
			"expires_at", expiresAt.Format(time.RFC3339))

	case "clear":
		cleared := a.holds.ClearHold(location)
		a.logger.Info("Manual hold cleared", "location", location, "was_active", cleared)
		if cleared {
			a.evaluateLocation(context.Background(), location, true)
		}

	default:
		a.logger.Warn("Unknown hold action", "location", location, "action", request.Action)
	}
}

// evaluateLocation runs one control cycle for a location. With force set
// the rate limit is bypassed, manual holds always win.
func (a *Agent) evaluateLocation(ctx context.Context, location string, force bool) {
	if a.holds.CheckHold(location) {
		a.logger.Debug("Manual hold active, skipping control cycle", "location", location)
		return
	}

	if force {
		a.rateLimiter.RecordCycle(location)
	} else if !a.rateLimiter.ShouldRunCycle(location, a.cfg.MinCommandIntervalMs) {
		a.logger.Debug("Rate limited, skipping control cycle", "location", location)
		return
	}

	a.stateMux.Lock()
	st, exists := a.locations[location]
	if !exists {
		a.stateMux.Unlock()
		return
	}

	reading := st.reading
	colorTemp := st.colorTemp
	readingAge := time.Since(st.readingAt)
	stale := readingAge > time.Duration(a.cfg.ReadingMaxAgeSec)*time.Second
	if stale {
		// A reading we can no longer trust counts as darkness
		reading = control.Reading{}
	}

	var cmd control.DriveCommand
	if a.params.Strategy == control.StrategyTemperature {
		cmd = control.PlanFromTemperature(reading.TotalLux, colorTemp, a.params)
		st.state.PrevYellow = cmd.Yellow
		st.state.PrevWhite = cmd.White
		st.state.InFallback = false
	} else {
		cmd = control.Step(reading, &st.state, a.params)
	}
	inFallback := st.state.InFallback

	unchanged := st.lastCommand != nil &&
		st.lastCommand.Yellow == cmd.Yellow &&
		st.lastCommand.White == cmd.White &&
		st.lastCommand.Zone == cmd.Zone
	a.stateMux.Unlock()

	if stale {
		a.logger.Warn("Ambient reading is stale, treating as darkness",
			"location", location,
			"reading_age", readingAge.Round(time.Second))
	}

	if unchanged {
		a.logger.Debug("Output levels unchanged, skipping publish", "location", location)
		return
	}

	commandID := uuid.New().String()

	if err := a.publishCommand(location, commandID, cmd, inFallback); err != nil {
		// Keep lastCommand untouched so the next cycle retries the publish
		a.logger.Error("Failed to publish drive command", "location", location, "error", err)
		return
	}

	a.stateMux.Lock()
	cmdCopy := cmd
	st.lastCommand = &cmdCopy
	a.stateMux.Unlock()

	a.logger.Info("Published drive command",
		"location", location,
		"zone", cmd.Zone.String(),
		"yellow_level", cmd.Yellow,
		"white_level", cmd.White,
		"ratio", cmd.Ratio,
		"in_fallback", inFallback,
		"command_id", commandID)

	now := time.Now()
	record := CycleRecord{
		CommandID:   commandID,
		Zone:        cmd.Zone.String(),
		YellowLevel: cmd.Yellow,
		WhiteLevel:  cmd.White,
		Ratio:       cmd.Ratio,
		AmbientLux:  reading.TotalLux,
		InFallback:  inFallback,
		Strategy:    a.params.Strategy,
		Timestamp:   now.Format(time.RFC3339),
		CollectedAt: now.UnixMilli(),
	}

	if err := a.telemetry.StoreCycle(ctx, location, record); err != nil {
		a.logger.Warn("Failed to store cycle telemetry", "location", location, "error", err)
	}

	a.publishContext(ctx, location, commandID, cmd, inFallback)

	if a.archive != nil {
		cycle := &archive.Cycle{
			ID:          commandID,
			Location:    location,
			Zone:        cmd.Zone.String(),
			YellowLevel: cmd.Yellow,
			WhiteLevel:  cmd.White,
			Ratio:       cmd.Ratio,
			AmbientLux:  reading.TotalLux,
			InFallback:  inFallback,
			Strategy:    a.params.Strategy,
			CreatedAt:   now,
		}
		if err := a.archive.InsertCycle(ctx, cycle); err != nil {
			a.logger.Warn("Failed to archive cycle", "location", location, "error", err)
		}
	}
}

// publishCommand publishes a drive command for the lamp hardware
func (a *Agent) publishCommand(location, commandID string, cmd control.DriveCommand, inFallback bool) error {
	yellowAmps, whiteAmps := control.DriveCurrents(cmd, a.params.LuxPerLevel)

	payload := map[string]interface{}{
		"command_id":          commandID,
		"yellow_level":        cmd.Yellow,
		"white_level":         cmd.White,
		"yellow_current_amps": yellowAmps,
		"white_current_amps":  whiteAmps,
		"zone":                cmd.Zone.String(),
		"ratio":               cmd.Ratio,
		"in_fallback":         inFallback,
		"strategy":            a.params.Strategy,
		"timestamp":           time.Now().Format(time.RFC3339),
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal drive command: %w", err)
	}

	topic := mqtt.LampCommandTopic(location)
	if err := a.mqtt.Publish(topic, 0, false, data); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", topic, err)
	}

	return nil
}

// publishContext publishes a context message describing the cycle outcome
// together with the ambient analysis for the location
func (a *Agent) publishContext(ctx context.Context, location, commandID string, cmd control.DriveCommand, inFallback bool) {
	payload := map[string]interface{}{
		"source":       "lamp-agent",
		"type":         "lamp",
		"location":     location,
		"zone":         cmd.Zone.String(),
		"yellow_level": cmd.Yellow,
		"white_level":  cmd.White,
		"ratio":        cmd.Ratio,
		"in_fallback":  inFallback,
		"command_id":   commandID,
		"timestamp":    time.Now().Format(time.RFC3339),
	}

	summary, err := a.ambient.GetReadingSummary(ctx, location)
	if err != nil {
		a.logger.Warn("Failed to load ambient summary for context", "location", location, "error", err)
	} else {
		ambientCtx, err := ambient.BuildAmbientContext(summary, a.cfg.Latitude, a.cfg.Longitude)
		if err != nil {
			a.logger.Warn("Failed to build ambient context", "location", location, "error", err)
		} else {
			payload["ambient"] = ambientCtx
		}
	}

	data, err := json.Marshal(payload)
	if err != nil {
		a.logger.Error("Failed to marshal context message", "location", location, "error", err)
		return
	}

	if err := a.mqtt.Publish(mqtt.LampContextTopic(location), 0, false, data); err != nil {
		a.logger.Warn("Failed to publish context message", "location", location, "error", err)
	}
}
