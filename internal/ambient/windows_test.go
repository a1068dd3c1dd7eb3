package ambient

import (
	"testing"
	"time"
)

func TestLuxToLabel(t *testing.T) {
	tests := []struct {
		lux      float64
		expected string
	}{
		{0, "dark"},
		{7, "dark"},
		{10, "dark"},
		{11, "dim"},
		{50, "dim"},
		{51, "moderate"},
		{200, "moderate"},
		{201, "bright"},
		{500, "bright"},
		{501, "very_bright"},
		{20000, "very_bright"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			result := LuxToLabel(tt.lux)
			if result != tt.expected {
				t.Errorf("LuxToLabel(%.1f) = %s, want %s", tt.lux, result, tt.expected)
			}
		})
	}
}

func TestAnalyzeWindow(t *testing.T) {
	now := time.Now()

	readings := []Reading{
		{Timestamp: now.Add(-3 * time.Minute), Lux: 100, YellowLux: 60, WhiteLux: 40},
		{Timestamp: now.Add(-2 * time.Minute), Lux: 200, YellowLux: 120, WhiteLux: 80},
		{Timestamp: now.Add(-1 * time.Minute), Lux: 300, YellowLux: 180, WhiteLux: 120},
	}

	stats := AnalyzeWindow(readings, 5, now)

	if stats.Count != 3 {
		t.Errorf("AnalyzeWindow() count = %d, want 3", stats.Count)
	}
	if stats.AverageLux != 200 {
		t.Errorf("AnalyzeWindow() averageLux = %v, want 200", stats.AverageLux)
	}
	if stats.MinLux != 100 {
		t.Errorf("AnalyzeWindow() minLux = %v, want 100", stats.MinLux)
	}
	if stats.MaxLux != 300 {
		t.Errorf("AnalyzeWindow() maxLux = %v, want 300", stats.MaxLux)
	}
	if stats.WarmShare != 0.6 {
		t.Errorf("AnalyzeWindow() warmShare = %v, want 0.6", stats.WarmShare)
	}
	if stats.Label != "moderate" {
		t.Errorf("AnalyzeWindow() label = %s, want moderate", stats.Label)
	}
	if stats.Trend != "brightening" {
		t.Errorf("AnalyzeWindow() trend = %s, want brightening", stats.Trend)
	}
}

func TestAnalyzeWindow_EmptyWindow(t *testing.T) {
	now := time.Now()

	// All readings are older than the window
	readings := []Reading{
		{Timestamp: now.Add(-20 * time.Minute), Lux: 100, YellowLux: 60, WhiteLux: 40},
	}

	stats := AnalyzeWindow(readings, 5, now)

	if stats.Count != 0 {
		t.Errorf("AnalyzeWindow() count = %d, want 0", stats.Count)
	}
	if stats.Trend != "unknown" {
		t.Errorf("AnalyzeWindow() trend = %s, want unknown", stats.Trend)
	}
	if stats.Stability != "unknown" {
		t.Errorf("AnalyzeWindow() stability = %s, want unknown", stats.Stability)
	}
	if stats.Label != "unknown" {
		t.Errorf("AnalyzeWindow() label = %s, want unknown", stats.Label)
	}
}

func TestAnalyzeWindow_DarkWindow(t *testing.T) {
	now := time.Now()

	readings := []Reading{
		{Timestamp: now.Add(-2 * time.Minute), Lux: 0},
		{Timestamp: now.Add(-1 * time.Minute), Lux: 0},
	}

	stats := AnalyzeWindow(readings, 5, now)

	if stats.WarmShare != 0 {
		t.Errorf("AnalyzeWindow() warmShare = %v, want 0", stats.WarmShare)
	}
	if stats.Label != "dark" {
		t.Errorf("AnalyzeWindow() label = %s, want dark", stats.Label)
	}
}

func TestCalculateTrend(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name     string
		readings []Reading
		expected string
	}{
		{
			name:     "insufficient data",
			readings: []Reading{{Timestamp: now, Lux: 250}},
			expected: "unknown",
		},
		{
			name: "rising lux",
			readings: []Reading{
				{Timestamp: now.Add(-5 * time.Minute), Lux: 60},
				{Timestamp: now.Add(-4 * time.Minute), Lux: 70},
				{Timestamp: now.Add(-3 * time.Minute), Lux: 95},
				{Timestamp: now.Add(-2 * time.Minute), Lux: 115},
				{Timestamp: now.Add(-1 * time.Minute), Lux: 135},
			},
			expected: "brightening",
		},
		{
			name: "falling lux",
			readings: []Reading{
				{Timestamp: now.Add(-5 * time.Minute), Lux: 400},
				{Timestamp: now.Add(-4 * time.Minute), Lux: 360},
				{Timestamp: now.Add(-3 * time.Minute), Lux: 250},
				{Timestamp: now.Add(-2 * time.Minute), Lux: 200},
				{Timestamp: now.Add(-1 * time.Minute), Lux: 170},
			},
			expected: "dimming",
		},
		{
			name: "steady lux",
			readings: []Reading{
				{Timestamp: now.Add(-5 * time.Minute), Lux: 210},
				{Timestamp: now.Add(-4 * time.Minute), Lux: 205},
				{Timestamp: now.Add(-3 * time.Minute), Lux: 212},
				{Timestamp: now.Add(-2 * time.Minute), Lux: 208},
				{Timestamp: now.Add(-1 * time.Minute), Lux: 215},
			},
			expected: "stable",
		},
		{
			name: "darkness then light",
			readings: []Reading{
				{Timestamp: now.Add(-3 * time.Minute), Lux: 0},
				{Timestamp: now.Add(-2 * time.Minute), Lux: 0},
				{Timestamp: now.Add(-1 * time.Minute), Lux: 80},
			},
			expected: "brightening",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CalculateTrend(tt.readings)
			if result != tt.expected {
				t.Errorf("CalculateTrend() = %s, want %s", result, tt.expected)
			}
		})
	}
}

func TestCalculateStability(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name     string
		readings []Reading
		avg      float64
		expected string
	}{
		{
			name:     "insufficient data",
			readings: []Reading{{Timestamp: now, Lux: 250}},
			avg:      250,
			expected: "unknown",
		},
		{
			name: "tight spread",
			readings: []Reading{
				{Timestamp: now.Add(-5 * time.Minute), Lux: 210},
				{Timestamp: now.Add(-4 * time.Minute), Lux: 205},
				{Timestamp: now.Add(-3 * time.Minute), Lux: 212},
				{Timestamp: now.Add(-2 * time.Minute), Lux: 208},
				{Timestamp: now.Add(-1 * time.Minute), Lux: 215},
			},
			avg:      210,
			expected: "stable",
		},
		{
			name: "moderate spread",
			readings: []Reading{
				{Timestamp: now.Add(-5 * time.Minute), Lux: 300},
				{Timestamp: now.Add(-4 * time.Minute), Lux: 420},
				{Timestamp: now.Add(-3 * time.Minute), Lux: 240},
				{Timestamp: now.Add(-2 * time.Minute), Lux: 390},
				{Timestamp: now.Add(-1 * time.Minute), Lux: 250},
			},
			avg:      320,
			expected: "variable",
		},
		{
			name: "wide spread",
			readings: []Reading{
				{Timestamp: now.Add(-5 * time.Minute), Lux: 20},
				{Timestamp: now.Add(-4 * time.Minute), Lux: 260},
				{Timestamp: now.Add(-3 * time.Minute), Lux: 35},
				{Timestamp: now.Add(-2 * time.Minute), Lux: 240},
				{Timestamp: now.Add(-1 * time.Minute), Lux: 45},
			},
			avg:      120,
			expected: "volatile",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CalculateStability(tt.readings, tt.avg)
			if result != tt.expected {
				t.Errorf("CalculateStability() = %s, want %s", result, tt.expected)
			}
		})
	}
}

func TestDetermineLightSource(t *testing.T) {
	tests := []struct {
		name      string
		lux       float64
		isDaytime bool
		expected  []string
	}{
		{
			name:      "dark room",
			lux:       8,
			isDaytime: false,
			expected:  []string{"none"},
		},
		{
			name:      "daylight only",
			lux:       250,
			isDaytime: true,
			expected:  []string{"natural"},
		},
		{
			name:      "daylight with lamps",
			lux:       900,
			isDaytime: true,
			expected:  []string{"natural", "mixed"},
		},
		{
			name:      "lamps after dark",
			lux:       120,
			isDaytime: false,
			expected:  []string{"artificial"},
		},
		{
			name:      "dim daytime corner",
			lux:       35,
			isDaytime: true,
			expected:  []string{"unknown"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := DetermineLightSource(tt.lux, tt.isDaytime)
			if len(result) != len(tt.expected) {
				t.Errorf("DetermineLightSource() = %v, want %v", result, tt.expected)
				return
			}
			for i := range result {
				if result[i] != tt.expected[i] {
					t.Errorf("DetermineLightSource() = %v, want %v", result, tt.expected)
					return
				}
			}
		})
	}
}
