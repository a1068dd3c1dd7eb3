// Package archive persists control cycles to PostgreSQL for analysis
// beyond the Redis retention window.
package archive

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/lib/pq"

	"github.com/miskatonen/duolux/pkg/postgres"
)

// Cycle is one archived control cycle
type Cycle struct {
	ID          string
	Location    string
	Zone        string
	YellowLevel int
	WhiteLevel  int
	Ratio       float64
	AmbientLux  float64
	InFallback  bool
	Strategy    string
	CreatedAt   time.Time
}

// Store provides persistent storage for control cycles
type Store struct {
	pg     postgres.Client
	logger *slog.Logger
}

// NewStore creates a new cycle store
func NewStore(pgClient postgres.Client, logger *slog.Logger) *Store {
	return &Store{
		pg:     pgClient,
		logger: logger,
	}
}

// EnsureSchema creates the cycle table and its index if they do not exist.
// Table and index land in one transaction.
func (s *Store) EnsureSchema(ctx context.Context) error {
	err := s.pg.Transaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			CREATE TABLE IF NOT EXISTS lamp_cycles (
				id UUID PRIMARY KEY,
				location TEXT NOT NULL,
				zone TEXT NOT NULL,
				yellow_level INTEGER NOT NULL,
				white_level INTEGER NOT NULL,
				ratio DOUBLE PRECISION NOT NULL,
				ambient_lux DOUBLE PRECISION NOT NULL,
				in_fallback BOOLEAN NOT NULL,
				strategy TEXT NOT NULL,
				created_at TIMESTAMPTZ NOT NULL
			)
		`); err != nil {
			return fmt.Errorf("failed to create lamp_cycles table: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `
			CREATE INDEX IF NOT EXISTS lamp_cycles_location_created_idx
			ON lamp_cycles (location, created_at DESC)
		`); err != nil {
			return fmt.Errorf("failed to create lamp_cycles index: %w", err)
		}

		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("Cycle archive schema ready")
	return nil
}

// InsertCycle stores one control cycle
func (s *Store) InsertCycle(ctx context.Context, cycle *Cycle) error {
	query := `
		INSERT INTO lamp_cycles (
			id, location, zone, yellow_level, white_level,
			ratio, ambient_lux, in_fallback, strategy, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := s.pg.Exec(ctx, query,
		cycle.ID,
		cycle.Location,
		cycle.Zone,
		cycle.YellowLevel,
		cycle.WhiteLevel,
		cycle.Ratio,
		cycle.AmbientLux,
		cycle.InFallback,
		cycle.Strategy,
		cycle.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert cycle: %w", err)
	}

	return nil
}

// RecentCycles returns the most recent cycles for a location, newest first
func (s *Store) RecentCycles(ctx context.Context, location string, limit int) ([]*Cycle, error) {
	query := `
		SELECT id, location, zone, yellow_level, white_level,
		       ratio, ambient_lux, in_fallback, strategy, created_at
		FROM lamp_cycles
		WHERE location = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := s.pg.Query(ctx, query, location, limit)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	return scanCycles(rows)
}

// CyclesByZone returns cycles that landed in the given zones since a point
// in time, oldest first. Useful for measuring how often control left the
// comfort band.
func (s *Store) CyclesByZone(ctx context.Context, location string, zones []string, since time.Time) ([]*Cycle, error) {
	query := `
		SELECT id, location, zone, yellow_level, white_level,
		       ratio, ambient_lux, in_fallback, strategy, created_at
		FROM lamp_cycles
		WHERE location = $1
		  AND zone = ANY($2)
		  AND created_at >= $3
		ORDER BY created_at ASC
	`

	rows, err := s.pg.Query(ctx, query, location, pq.Array(zones), since)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	return scanCycles(rows)
}

// CycleCount returns the number of archived cycles for a location
func (s *Store) CycleCount(ctx context.Context, location string) (int64, error) {
	var count int64
	err := s.pg.QueryRow(ctx,
		`SELECT COUNT(*) FROM lamp_cycles WHERE location = $1`,
		location).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count query failed: %w", err)
	}

	return count, nil
}

func scanCycles(rows *sql.Rows) ([]*Cycle, error) {
	var cycles []*Cycle

	for rows.Next() {
		var c Cycle
		if err := rows.Scan(
			&c.ID,
			&c.Location,
			&c.Zone,
			&c.YellowLevel,
			&c.WhiteLevel,
			&c.Ratio,
			&c.AmbientLux,
			&c.InFallback,
			&c.Strategy,
			&c.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		cycles = append(cycles, &c)
	}

	return cycles, rows.Err()
}
