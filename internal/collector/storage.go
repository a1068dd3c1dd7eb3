package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/miskatonen/duolux/pkg/config"
	"github.com/miskatonen/duolux/pkg/redis"
)

const (
	// TTL for ambient reading history
	ambientDataTTL = 24 * time.Hour

	// Same window in epoch milliseconds, used when trimming by score
	maxAge = 24 * 60 * 60 * 1000
)

// Storage handles Redis storage operations for ambient readings
type Storage struct {
	redis            redis.Client
	maxSensorHistory int
	logger           *slog.Logger
}

// NewStorage builds the reading history store on top of the shared Redis
// client
func NewStorage(redisClient redis.Client, cfg *config.Config, logger *slog.Logger) *Storage {
	return &Storage{
		redis:            redisClient,
		maxSensorHistory: cfg.MaxSensorHistory,
		logger:           logger,
	}
}

// StoreAmbientReading stores a derived reading using sorted set + metadata hash:
// - sensor:ambient:{location} (sorted set keyed by collection timestamp)
// - meta:ambient:{location} (hash with the latest reading summary)
func (s *Storage) StoreAmbientReading(ctx context.Context, msg *SensorMessage, reading *AmbientReading) error {
	key := redis.AmbientSensorKey(msg.Location)
	metaKey := redis.AmbientMetaKey(msg.Location)

	jsonData, err := json.Marshal(reading)
	if err != nil {
		return fmt.Errorf("failed to marshal ambient reading: %w", err)
	}

	score := float64(msg.CollectedAt)
	if err := s.redis.ZAdd(ctx, key, score, jsonData); err != nil {
		return fmt.Errorf("failed to add ambient reading to sorted set: %w", err)
	}

	// Trim entries that fell out of the retention window
	maxAgeTimestamp := msg.CollectedAt - maxAge
	if err := s.redis.ZRemRangeByScore(ctx, key, "-inf", strconv.FormatInt(maxAgeTimestamp, 10)); err != nil {
		s.logger.Warn("Failed to clean old ambient readings", "location", msg.Location, "error", err)
	}

	// Cap buffer size, dropping the oldest entries when a fast sensor
	// outruns the time-based cleanup
	count, err := s.redis.ZCard(ctx, key)
	if err != nil {
		s.logger.Warn("Failed to get ambient buffer size", "location", msg.Location, "error", err)
	} else if count > int64(s.maxSensorHistory) {
		excess := count - int64(s.maxSensorHistory)
		if err := s.redis.ZRemRangeByRank(ctx, key, 0, excess-1); err != nil {
			s.logger.Warn("Failed to trim ambient buffer", "location", msg.Location, "error", err)
		} else {
			count = int64(s.maxSensorHistory)
		}
	}

	if err := s.redis.Expire(ctx, key, ambientDataTTL); err != nil {
		return fmt.Errorf("failed to set TTL on ambient readings: %w", err)
	}

	// Update metadata with the latest reading summary
	if err := s.redis.HSet(ctx, metaKey, "lastReadingTime", strconv.FormatInt(msg.CollectedAt, 10)); err != nil {
		s.logger.Warn("Failed to update ambient metadata", "location", msg.Location, "error", err)
	}
	if err := s.redis.HSet(ctx, metaKey, "lux", strconv.FormatFloat(reading.Lux, 'f', -1, 64)); err != nil {
		s.logger.Warn("Failed to update ambient metadata", "location", msg.Location, "error", err)
	}
	if err := s.redis.HSet(ctx, metaKey, "colorTemp", strconv.Itoa(reading.ColorTemp)); err != nil {
		s.logger.Warn("Failed to update ambient metadata", "location", msg.Location, "error", err)
	}
	if err := s.redis.HSet(ctx, metaKey, "source", reading.Source); err != nil {
		s.logger.Warn("Failed to update ambient metadata", "location", msg.Location, "error", err)
	}
	if err := s.redis.Expire(ctx, metaKey, ambientDataTTL); err != nil {
		s.logger.Warn("Failed to set TTL on ambient metadata", "location", msg.Location, "error", err)
	}

	s.logger.Debug("Stored ambient reading",
		"location", msg.Location,
		"lux", reading.Lux,
		"source", reading.Source,
		"buffer_size", count)

	return nil
}
