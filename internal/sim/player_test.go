package sim

import (
	"context"
	"encoding/json"
	"log/slog"
	"math/rand"
	"os"
	"sync"
	"testing"

	"github.com/miskatonen/duolux/pkg/mqtt"
)

type publishedSample struct {
	topic   string
	payload []byte
}

type fakePublisher struct {
	mu        sync.Mutex
	published []publishedSample
}

func (f *fakePublisher) Connect(ctx context.Context) error { return nil }
func (f *fakePublisher) Disconnect()                       {}
func (f *fakePublisher) Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error {
	return nil
}
func (f *fakePublisher) Publish(topic string, qos byte, retained bool, payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published = append(f.published, publishedSample{topic: topic, payload: payload})
	return nil
}
func (f *fakePublisher) IsConnected() bool { return true }

func TestBuildSample(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	sc := &Scenario{
		Steps: []Step{
			{Time: 0, Illuminance: 400, ColorTemp: 3500},
			{Time: 30, Illuminance: 300, Red: 90, Green: 110, Blue: 100},
		},
	}

	data := buildSample(sc, 0, rng)
	if data == nil {
		t.Fatal("Expected a sample, got nil")
	}
	if data["illuminance"] != 400.0 {
		t.Errorf("Expected illuminance 400, got %v", data["illuminance"])
	}
	if data["color_temp"] != 3500 {
		t.Errorf("Expected color_temp 3500, got %v", data["color_temp"])
	}
	if _, ok := data["red"]; ok {
		t.Error("Expected no rgb channels on a color_temp step")
	}

	data = buildSample(sc, 45, rng)
	if data["red"] != 90.0 || data["green"] != 110.0 || data["blue"] != 100.0 {
		t.Errorf("Expected rgb channels 90/110/100, got %v/%v/%v",
			data["red"], data["green"], data["blue"])
	}
	if _, ok := data["color_temp"]; ok {
		t.Error("Expected no color_temp on an rgb step")
	}
}

func TestBuildSample_Jitter(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	sc := &Scenario{
		JitterLux: 50,
		Steps:     []Step{{Time: 0, Illuminance: 400}},
	}

	for i := 0; i < 100; i++ {
		data := buildSample(sc, 0, rng)
		lux := data["illuminance"].(float64)
		if lux < 350 || lux > 450 {
			t.Fatalf("Expected jittered lux within [350, 450], got %v", lux)
		}
	}
}

func TestBuildSample_Random(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	sc := &Scenario{
		Random: &RandomConfig{MinLux: 200, MaxLux: 1300, MinTempK: 2700, MaxTempK: 6500},
	}

	for i := 0; i < 100; i++ {
		data := buildSample(sc, 0, rng)

		lux := data["illuminance"].(float64)
		if lux < 200 || lux >= 1300 {
			t.Fatalf("Expected lux within [200, 1300), got %v", lux)
		}

		tempK := data["color_temp"].(int)
		if tempK < 2700 || tempK > 6500 {
			t.Fatalf("Expected color temperature within [2700, 6500], got %d", tempK)
		}
	}
}

func TestPlayer_Play(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	fm := &fakePublisher{}
	player := NewPlayer(fm, logger)

	sc := &Scenario{
		Name:        "single-sample",
		Location:    "office",
		IntervalSec: 1,
		DurationSec: 1,
		Steps:       []Step{{Time: 0, Illuminance: 250, ColorTemp: 3000}},
	}

	if err := player.Play(context.Background(), sc); err != nil {
		t.Fatalf("Expected playback to finish, got error: %v", err)
	}

	fm.mu.Lock()
	defer fm.mu.Unlock()

	if len(fm.published) != 1 {
		t.Fatalf("Expected 1 published sample, got %d", len(fm.published))
	}

	if fm.published[0].topic != mqtt.RawAmbientTopic("office") {
		t.Errorf("Expected raw ambient topic, got %s", fm.published[0].topic)
	}

	var payload struct {
		Data struct {
			Illuminance float64 `json:"illuminance"`
			ColorTemp   int     `json:"color_temp"`
		} `json:"data"`
	}
	if err := json.Unmarshal(fm.published[0].payload, &payload); err != nil {
		t.Fatalf("Failed to decode sample payload: %v", err)
	}
	if payload.Data.Illuminance != 250 {
		t.Errorf("Expected illuminance 250, got %v", payload.Data.Illuminance)
	}
	if payload.Data.ColorTemp != 3000 {
		t.Errorf("Expected color_temp 3000, got %d", payload.Data.ColorTemp)
	}
}

func TestPlayer_PlayCancelled(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	fm := &fakePublisher{}
	player := NewPlayer(fm, logger)

	sc := &Scenario{
		Name:        "cancelled",
		Location:    "office",
		IntervalSec: 1,
		DurationSec: 600,
		Random:      &RandomConfig{MinLux: 200, MaxLux: 1300, MinTempK: 2700, MaxTempK: 6500},
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := player.Play(ctx, sc); err != nil {
		t.Fatalf("Expected cancelled playback to return nil, got %v", err)
	}

	fm.mu.Lock()
	defer fm.mu.Unlock()

	if len(fm.published) != 1 {
		t.Errorf("Expected 1 sample before cancellation, got %d", len(fm.published))
	}
}
