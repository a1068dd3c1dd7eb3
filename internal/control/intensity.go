package control

// AmpsPerLux converts a channel's lux contribution into the drive current
// the hardware tier sinks for it
const AmpsPerLux = 0.001

// ClampIntensity bounds a measured illuminance to the comfort range.
// Identity inside [minLux, maxLux], saturated outside.
func ClampIntensity(measuredLux, minLux, maxLux float64) float64 {
	if measuredLux < minLux {
		return minLux
	}
	if measuredLux > maxLux {
		return maxLux
	}
	return measuredLux
}

// DriveCurrents estimates the per-channel current in amperes a command will
// draw, using LuxPerLevel to recover each channel's lux contribution. The
// estimate travels in the command payload for the hardware tier.
func DriveCurrents(cmd DriveCommand, luxPerLevel float64) (yellowAmps, whiteAmps float64) {
	yellowAmps = float64(cmd.Yellow) * luxPerLevel * AmpsPerLux
	whiteAmps = float64(cmd.White) * luxPerLevel * AmpsPerLux
	return yellowAmps, whiteAmps
}
