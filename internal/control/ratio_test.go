package control

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestRatioForTemperature(t *testing.T) {
	testCases := []struct {
		name       string
		tempK      int
		wantWhite  float64
		wantYellow float64
	}{
		{"warm anchor", 2700, 0.0, 1.0},
		{"cool anchor", 6500, 1.0, 0.0},
		{"clamped below warm", 1500, 0.0, 1.0},
		{"clamped above cool", 8000, 1.0, 0.0},
		{"midpoint", 4600, 0.5, 0.5},
		{"neutral", 4500, 1800.0 / 3800.0, 2000.0 / 3800.0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := RatioForTemperature(tc.tempK, 2700, 6500)

			if !almostEqual(got.White, tc.wantWhite) {
				t.Errorf("Expected white ratio %f for %dK, got %f", tc.wantWhite, tc.tempK, got.White)
			}
			if !almostEqual(got.Yellow, tc.wantYellow) {
				t.Errorf("Expected yellow ratio %f for %dK, got %f", tc.wantYellow, tc.tempK, got.Yellow)
			}
		})
	}
}

func TestRatioForTemperature_SumsToOne(t *testing.T) {
	for tempK := 2000; tempK <= 7000; tempK += 250 {
		got := RatioForTemperature(tempK, 2700, 6500)
		if !almostEqual(got.White+got.Yellow, 1.0) {
			t.Errorf("Expected ratios for %dK to sum to 1, got %f", tempK, got.White+got.Yellow)
		}
	}
}

func TestTemperatureForRatio(t *testing.T) {
	testCases := []struct {
		name       string
		whiteRatio float64
		want       int
	}{
		{"fully yellow", 0.0, 2700},
		{"fully white", 1.0, 6500},
		{"clamped below", -0.5, 2700},
		{"clamped above", 1.5, 6500},
		{"midpoint", 0.5, 4600},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := TemperatureForRatio(tc.whiteRatio, 2700, 6500)
			if got != tc.want {
				t.Errorf("Expected %dK for white ratio %f, got %dK", tc.want, tc.whiteRatio, got)
			}
		})
	}
}

func TestTemperatureForRatio_RoundTrip(t *testing.T) {
	// Interior temperatures survive mapping and inverse mapping
	for tempK := 2800; tempK < 6500; tempK += 100 {
		ratios := RatioForTemperature(tempK, 2700, 6500)
		back := TemperatureForRatio(ratios.White, 2700, 6500)
		if back != tempK {
			t.Errorf("Expected round trip of %dK to return %dK, got %dK", tempK, tempK, back)
		}
	}
}
