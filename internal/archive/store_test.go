package archive

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/miskatonen/duolux/pkg/config"
	"github.com/miskatonen/duolux/pkg/postgres"
)

// setupTestStore connects to a live PostgreSQL instance and prepares the
// cycle schema.
func setupTestStore(t *testing.T) *Store {
	t.Skip("Integration test - requires PostgreSQL")

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	client := postgres.NewClient(config.NewConfig(), logger)
	require.NoError(t, client.Connect(context.Background()))

	store := NewStore(client, logger)
	require.NoError(t, store.EnsureSchema(context.Background()))

	return store
}

func testCycle(location string) *Cycle {
	return &Cycle{
		ID:          uuid.New().String(),
		Location:    location,
		Zone:        "comfort",
		YellowLevel: 72,
		WhiteLevel:  48,
		Ratio:       0.6,
		AmbientLux:  420,
		InFallback:  false,
		Strategy:    "feedback",
		CreatedAt:   time.Now(),
	}
}

func TestInsertAndRecentCycles(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	first := testCycle("office")
	second := testCycle("office")
	second.Zone = "too_bright"
	second.CreatedAt = first.CreatedAt.Add(time.Second)

	require.NoError(t, store.InsertCycle(ctx, first))
	require.NoError(t, store.InsertCycle(ctx, second))

	cycles, err := store.RecentCycles(ctx, "office", 10)
	require.NoError(t, err)
	require.Len(t, cycles, 2)

	// Newest first
	assert.Equal(t, second.ID, cycles[0].ID)
	assert.Equal(t, "too_bright", cycles[0].Zone)
	assert.Equal(t, first.ID, cycles[1].ID)
}

func TestCyclesByZone(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	comfort := testCycle("office")
	dark := testCycle("office")
	dark.Zone = "too_dark"
	fallback := testCycle("office")
	fallback.Zone = "darkness"
	fallback.InFallback = true

	for _, c := range []*Cycle{comfort, dark, fallback} {
		require.NoError(t, store.InsertCycle(ctx, c))
	}

	since := time.Now().Add(-time.Hour)
	cycles, err := store.CyclesByZone(ctx, "office", []string{"too_dark", "darkness"}, since)
	require.NoError(t, err)
	require.Len(t, cycles, 2)

	for _, c := range cycles {
		assert.NotEqual(t, "comfort", c.Zone)
	}
}

func TestCycleCount(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	count, err := store.CycleCount(ctx, "empty-room")
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	require.NoError(t, store.InsertCycle(ctx, testCycle("office")))

	count, err = store.CycleCount(ctx, "office")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
