package ambient

import (
	"fmt"
	"time"
)

// AmbientContext is the analyzed picture of a location's light, published
// alongside every drive command so operators can see what the controller saw
type AmbientContext struct {
	Location string `json:"location"`
	Current  struct {
		Lux       float64   `json:"lux"`
		WarmShare float64   `json:"warm_share"`
		Label     string    `json:"label"`
		Timestamp time.Time `json:"timestamp"`
	} `json:"current"`
	Trends struct {
		Trend5Min  string `json:"trend_5min"`
		Trend30Min string `json:"trend_30min"`
		TrendHour  string `json:"trend_hour"`
		Stability  string `json:"stability"`
	} `json:"trends"`
	Statistics struct {
		Avg5Min        float64 `json:"avg_5min"`
		Avg30Min       float64 `json:"avg_30min"`
		Min30Min       float64 `json:"min_30min"`
		Max30Min       float64 `json:"max_30min"`
		Variation      float64 `json:"variation"`
		WarmShare30Min float64 `json:"warm_share_30min"`
	} `json:"statistics"`
	Daylight struct {
		SunAltitude           float64   `json:"sun_altitude"`
		TheoreticalOutdoorLux float64   `json:"theoretical_outdoor_lux"`
		IsDaytime             bool      `json:"is_daytime"`
		IsGoldenHour          bool      `json:"is_golden_hour"`
		Sunrise               time.Time `json:"sunrise"`
		Sunset                time.Time `json:"sunset"`
	} `json:"daylight"`
	LikelySources     []string `json:"likely_sources"`
	DataAgeMs         int64    `json:"data_age_ms"`
	HasSufficientData bool     `json:"sufficient_data"`
}

// BuildAmbientContext creates the ambient context for a location from its
// reading summary and the configured coordinates
func BuildAmbientContext(summary *Summary, lat, lon float64) (*AmbientContext, error) {
	if summary.LatestReading == nil {
		return nil, fmt.Errorf("no latest reading available")
	}

	now := time.Now()
	context := &AmbientContext{Location: summary.Location}

	latest := summary.LatestReading
	context.Current.Lux = latest.Lux
	context.Current.Label = LuxToLabel(latest.Lux)
	context.Current.Timestamp = latest.Timestamp
	if latest.Lux > 0 {
		context.Current.WarmShare = latest.YellowLux / latest.Lux
	}

	context.DataAgeMs = now.Sub(latest.Timestamp).Milliseconds()

	// Sun position for the same instant
	daylight := ComputeDaylight(lat, lon, now)
	context.Daylight.SunAltitude = daylight.SunAltitude
	context.Daylight.TheoreticalOutdoorLux = daylight.TheoreticalOutdoorLux
	context.Daylight.IsDaytime = daylight.IsDaytime
	context.Daylight.IsGoldenHour = daylight.IsGoldenHour
	context.Daylight.Sunrise = daylight.Sunrise
	context.Daylight.Sunset = daylight.Sunset

	window5Min := AnalyzeWindow(summary.Last5Min, 5, now)
	window30Min := AnalyzeWindow(summary.Last30Min, 30, now)
	windowHour := AnalyzeWindow(summary.LastHour, 60, now)

	context.Trends.Trend5Min = window5Min.Trend
	context.Trends.Trend30Min = window30Min.Trend
	context.Trends.TrendHour = windowHour.Trend
	context.Trends.Stability = window30Min.Stability

	// Build statistics (current reading as fallback for empty windows)
	context.Statistics.Avg5Min = window5Min.AverageLux
	if window5Min.Count == 0 {
		context.Statistics.Avg5Min = latest.Lux
	}

	context.Statistics.Avg30Min = window30Min.AverageLux
	context.Statistics.Min30Min = window30Min.MinLux
	context.Statistics.Max30Min = window30Min.MaxLux
	if window30Min.Count == 0 {
		context.Statistics.Avg30Min = latest.Lux
		context.Statistics.Min30Min = latest.Lux
		context.Statistics.Max30Min = latest.Lux
	}

	context.Statistics.Variation = context.Statistics.Max30Min - context.Statistics.Min30Min
	context.Statistics.WarmShare30Min = window30Min.WarmShare

	context.LikelySources = DetermineLightSource(latest.Lux, daylight.IsDaytime)
	context.HasSufficientData = summary.HasSufficientData

	return context, nil
}
