package ambient

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/miskatonen/duolux/pkg/config"
	"github.com/miskatonen/duolux/pkg/redis"
)

// Reading represents a single stored ambient measurement with its
// warm/cool split
type Reading struct {
	Timestamp time.Time
	Lux       float64
	YellowLux float64
	WhiteLux  float64
	ColorTemp int
	Source    string
}

// Summary contains ambient readings for multiple time windows
type Summary struct {
	Location          string
	LatestReading     *Reading
	Last5Min          []Reading
	Last30Min         []Reading
	LastHour          []Reading
	HasSufficientData bool
}

// Storage handles read-only Redis operations for ambient reading history
type Storage struct {
	redis  redis.Client
	cfg    *config.Config
	logger *slog.Logger
}

// NewStorage wraps the shared Redis client for history reads
func NewStorage(redisClient redis.Client, cfg *config.Config, logger *slog.Logger) *Storage {
	return &Storage{
		redis:  redisClient,
		cfg:    cfg,
		logger: logger,
	}
}

// GetReadingSummary retrieves a summary of ambient readings for a location.
// One query covers the widest window, the narrower windows are sliced out of
// it in memory.
func (s *Storage) GetReadingSummary(ctx context.Context, location string) (*Summary, error) {
	key := redis.AmbientSensorKey(location)
	now := time.Now()

	horizon := now.Add(-time.Duration(s.cfg.MaxDataAgeHours * float64(time.Hour)))
	lastHour, err := s.readingsInWindow(ctx, key, horizon, now)
	if err != nil {
		return nil, fmt.Errorf("failed to load reading history: %w", err)
	}

	summary := &Summary{
		Location:          location,
		Last5Min:          readingsSince(lastHour, now.Add(-5*time.Minute)),
		Last30Min:         readingsSince(lastHour, now.Add(-30*time.Minute)),
		LastHour:          lastHour,
		HasSufficientData: len(lastHour) >= s.cfg.MinReadingsRequired,
	}
	if len(lastHour) > 0 {
		summary.LatestReading = &lastHour[len(lastHour)-1]
	}

	s.logger.Debug("Retrieved ambient summary",
		"location", location,
		"5min_count", len(summary.Last5Min),
		"30min_count", len(summary.Last30Min),
		"hour_count", len(lastHour),
		"sufficient_data", summary.HasSufficientData)

	return summary, nil
}

// readingsInWindow loads the readings stored between start and end, oldest
// first. Entries that fail to parse are skipped.
func (s *Storage) readingsInWindow(ctx context.Context, key string, start, end time.Time) ([]Reading, error) {
	minScore := float64(start.UnixMilli())
	maxScore := float64(end.UnixMilli())

	values, err := s.redis.ZRangeByScoreWithScores(ctx, key, minScore, maxScore)
	if err != nil {
		return nil, fmt.Errorf("Redis query failed: %w", err)
	}

	readings := make([]Reading, 0, len(values))
	for _, item := range values {
		var data struct {
			Timestamp string  `json:"timestamp"`
			Lux       float64 `json:"lux"`
			YellowLux float64 `json:"yellow_lux"`
			WhiteLux  float64 `json:"white_lux"`
			ColorTemp int     `json:"color_temp"`
			Source    string  `json:"source"`
		}
		if err := json.Unmarshal([]byte(item.Member), &data); err != nil {
			s.logger.Warn("Failed to parse stored reading", "error", err, "key", key)
			continue
		}

		// The embedded timestamp wins, the score is the fallback
		timestamp := time.UnixMilli(int64(item.Score))
		if data.Timestamp != "" {
			if parsed, err := time.Parse(time.RFC3339, data.Timestamp); err == nil {
				timestamp = parsed
			}
		}

		readings = append(readings, Reading{
			Timestamp: timestamp,
			Lux:       data.Lux,
			YellowLux: data.YellowLux,
			WhiteLux:  data.WhiteLux,
			ColorTemp: data.ColorTemp,
			Source:    data.Source,
		})
	}

	return readings, nil
}

// readingsSince returns the tail of history newer than cutoff. History is
// ordered oldest first, so the tail starts at the first match.
func readingsSince(history []Reading, cutoff time.Time) []Reading {
	for i, r := range history {
		if r.Timestamp.After(cutoff) {
			return history[i:]
		}
	}
	return nil
}

// GetAllLocations lists every location with stored reading history
func (s *Storage) GetAllLocations(ctx context.Context) ([]string, error) {
	keys, err := s.redis.Keys(ctx, redis.AmbientSensorKey("*"))
	if err != nil {
		return nil, fmt.Errorf("failed to list reading keys: %w", err)
	}

	prefix := redis.AmbientSensorKey("")
	locations := make([]string, 0, len(keys))
	for _, key := range keys {
		locations = append(locations, strings.TrimPrefix(key, prefix))
	}

	return locations, nil
}
