package lamp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/miskatonen/duolux/pkg/redis"
)

const (
	// cycleTTL is how long cycle telemetry is kept in Redis
	cycleTTL = 24 * time.Hour

	// cycleMaxAge is the trim window for the cycle history in milliseconds
	cycleMaxAge = 24 * 60 * 60 * 1000
)

// CycleRecord is one control cycle outcome as stored in Redis
type CycleRecord struct {
	CommandID   string  `json:"command_id"`
	Zone        string  `json:"zone"`
	YellowLevel int     `json:"yellow_level"`
	WhiteLevel  int     `json:"white_level"`
	Ratio       float64 `json:"ratio"`
	AmbientLux  float64 `json:"ambient_lux"`
	InFallback  bool    `json:"in_fallback"`
	Strategy    string  `json:"strategy"`
	Timestamp   string  `json:"timestamp"`
	CollectedAt int64   `json:"collected_at"`
}

// Telemetry persists control cycle outcomes to Redis
type Telemetry struct {
	redis  redis.Client
	logger *slog.Logger
}

// NewTelemetry creates a new telemetry store
func NewTelemetry(redisClient redis.Client, logger *slog.Logger) *Telemetry {
	return &Telemetry{
		redis:  redisClient,
		logger: logger,
	}
}

// StoreCycle stores a cycle record in the per-location history and updates
// the last-command state key
func (t *Telemetry) StoreCycle(ctx context.Context, location string, record CycleRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal cycle record: %w", err)
	}

	cycleKey := redis.LampCycleKey(location)

	// Add to history sorted by cycle time
	if err := t.redis.ZAdd(ctx, cycleKey, float64(record.CollectedAt), data); err != nil {
		return fmt.Errorf("failed to store cycle record: %w", err)
	}

	// Trim entries older than the retention window
	maxScore := fmt.Sprintf("%d", record.CollectedAt-cycleMaxAge)
	if err := t.redis.ZRemRangeByScore(ctx, cycleKey, "-inf", maxScore); err != nil {
		t.logger.Warn("Failed to trim old cycle records", "location", location, "error", err)
	}

	if err := t.redis.Expire(ctx, cycleKey, cycleTTL); err != nil {
		return fmt.Errorf("failed to set TTL on cycle history: %w", err)
	}

	// Keep the last published command available for quick lookup
	if err := t.redis.Set(ctx, redis.LampStateKey(location), data, cycleTTL); err != nil {
		t.logger.Warn("Failed to update lamp state key", "location", location, "error", err)
	}

	t.logger.Debug("Stored cycle record",
		"location", location,
		"zone", record.Zone,
		"command_id", record.CommandID)

	return nil
}
