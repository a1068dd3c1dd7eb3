package ambient

import (
	"math"
	"time"
)

// WindowStats summarizes the readings inside one time window
type WindowStats struct {
	AverageLux float64
	MinLux     float64
	MaxLux     float64
	WarmShare  float64
	Count      int
	Trend      string
	Stability  string
	Label      string
}

// AnalyzeWindow summarizes the readings newer than windowMinutes. WarmShare
// is the yellow fraction of all light measured in the window, 0 when the
// window carried no light at all.
func AnalyzeWindow(readings []Reading, windowMinutes int, now time.Time) *WindowStats {
	cutoff := now.Add(-time.Duration(windowMinutes) * time.Minute)
	var recent []Reading
	for _, r := range readings {
		if r.Timestamp.After(cutoff) {
			recent = append(recent, r)
		}
	}

	if len(recent) == 0 {
		return &WindowStats{Trend: "unknown", Stability: "unknown", Label: "unknown"}
	}

	stats := &WindowStats{
		Count:  len(recent),
		MinLux: recent[0].Lux,
		MaxLux: recent[0].Lux,
	}

	var totalLux, totalYellow float64
	for _, r := range recent {
		totalLux += r.Lux
		totalYellow += r.YellowLux
		stats.MinLux = math.Min(stats.MinLux, r.Lux)
		stats.MaxLux = math.Max(stats.MaxLux, r.Lux)
	}

	stats.AverageLux = totalLux / float64(len(recent))
	if totalLux > 0 {
		// Share of the window total rather than an average of per-reading
		// shares, so bright readings weigh more
		stats.WarmShare = totalYellow / totalLux
	}

	stats.Trend = CalculateTrend(recent)
	stats.Stability = CalculateStability(recent, stats.AverageLux)
	stats.Label = LuxToLabel(stats.AverageLux)

	return stats
}

// CalculateTrend compares the earlier half of the window against the later
// half and reports brightening, dimming, or stable
func CalculateTrend(readings []Reading) string {
	if len(readings) < 3 {
		return "unknown"
	}

	mid := len(readings) / 2
	earlier := meanLux(readings[:mid])
	later := meanLux(readings[mid:])

	// A window that started in darkness has no baseline to compare against
	if earlier == 0 {
		if later > 0 {
			return "brightening"
		}
		return "stable"
	}

	change := (later - earlier) / earlier
	switch {
	case change > 0.2:
		return "brightening"
	case change < -0.2:
		return "dimming"
	}
	return "stable"
}

// CalculateStability grades volatility by the coefficient of variation
func CalculateStability(readings []Reading, avg float64) string {
	if len(readings) < 2 || avg == 0 {
		return "unknown"
	}

	var squares float64
	for _, r := range readings {
		d := r.Lux - avg
		squares += d * d
	}
	cv := math.Sqrt(squares/float64(len(readings))) / avg

	switch {
	case cv > 0.5:
		return "volatile"
	case cv > 0.2:
		return "variable"
	}
	return "stable"
}

// LuxToLabel maps an illuminance value onto the coarse label used in
// published context
func LuxToLabel(lux float64) string {
	switch {
	case lux <= 10:
		return "dark"
	case lux <= 50:
		return "dim"
	case lux <= 200:
		return "moderate"
	case lux <= 500:
		return "bright"
	}
	return "very_bright"
}

// DetermineLightSource infers where the measured light likely comes from
func DetermineLightSource(lux float64, isDaytime bool) []string {
	switch {
	case lux <= 10:
		return []string{"none"}
	case isDaytime && lux > 500:
		return []string{"natural", "mixed"}
	case isDaytime && lux > 100:
		return []string{"natural"}
	case !isDaytime && lux > 50:
		return []string{"artificial"}
	}
	return []string{"unknown"}
}

func meanLux(readings []Reading) float64 {
	if len(readings) == 0 {
		return 0
	}
	var sum float64
	for _, r := range readings {
		sum += r.Lux
	}
	return sum / float64(len(readings))
}
