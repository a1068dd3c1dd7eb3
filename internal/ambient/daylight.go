package ambient

import (
	"math"
	"time"

	"github.com/sixdouglas/suncalc"
)

// DaylightContext describes the sun's contribution at a point in time
type DaylightContext struct {
	SunAltitude           float64
	TheoreticalOutdoorLux float64
	IsDaytime             bool
	IsGoldenHour          bool
	Sunrise               time.Time
	Sunset                time.Time
}

// ComputeDaylight calculates sun position and theoretical outdoor lux for
// the configured coordinates
func ComputeDaylight(lat, lon float64, t time.Time) DaylightContext {
	position := suncalc.GetPosition(t, lat, lon)
	times := suncalc.GetTimes(t, lat, lon)

	// suncalc reports altitude in radians
	altitudeDegrees := position.Altitude * (180.0 / math.Pi)

	// Rough approximation: at sun altitude of 90 degrees (overhead) the
	// theoretical outdoor maximum is ~120,000 lux
	var theoreticalLux float64
	if altitudeDegrees > 0 {
		theoreticalLux = 120000.0 * math.Sin(position.Altitude)
		if theoreticalLux < 0 {
			theoreticalLux = 0
		}
	}

	return DaylightContext{
		SunAltitude:           altitudeDegrees,
		TheoreticalOutdoorLux: theoreticalLux,
		IsDaytime:             altitudeDegrees > 0,
		IsGoldenHour:          altitudeDegrees > 0 && altitudeDegrees < 6,
		Sunrise:               times[suncalc.Sunrise].Value,
		Sunset:                times[suncalc.Sunset].Value,
	}
}
