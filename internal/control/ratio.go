package control

import "math"

// ChannelRatios is a white/yellow drive split summing to 1
type ChannelRatios struct {
	White  float64
	Yellow float64
}

// RatioForTemperature maps a target color temperature onto the two-channel
// split. Linear interpolation between the warm and cool anchors, clamped at
// both ends: at or below warmK the output is fully yellow, at or above coolK
// fully white.
func RatioForTemperature(tempK, warmK, coolK int) ChannelRatios {
	if tempK <= warmK {
		return ChannelRatios{White: 0, Yellow: 1}
	}
	if tempK >= coolK {
		return ChannelRatios{White: 1, Yellow: 0}
	}
	factor := float64(tempK-warmK) / float64(coolK-warmK)
	return ChannelRatios{White: factor, Yellow: 1 - factor}
}

// TemperatureForRatio inverts the mapping: given a white share it returns
// the color temperature that would produce it. Used to report an equivalent
// temperature for readings that only carry RGB channels.
func TemperatureForRatio(whiteRatio float64, warmK, coolK int) int {
	if whiteRatio <= 0 {
		return warmK
	}
	if whiteRatio >= 1 {
		return coolK
	}
	return warmK + int(math.Round(whiteRatio*float64(coolK-warmK)))
}
