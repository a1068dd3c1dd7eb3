package control

import "math"

// undefinedRatio marks a cycle with zero combined intensity. It signals
// darkness, not a numeric error.
const undefinedRatio = -1

// maxRebalanceIterations bounds the ratio-rebalance loop. Integer rounding
// can pin a level at 1 when the scaling factor sits close to 1, so the loop
// carries a hard stop on top of the geometric shrink.
const maxRebalanceIterations = 100

// Step runs one closed-loop control cycle: classify the ambient reading
// against the comfort band, dispatch to the matching zone branch, persist
// the new levels into state, and return the command for the actuator.
//
// Zone priority is darkness first, then the bright/dark zones, then comfort.
func Step(reading Reading, state *State, p Params) DriveCommand {
	ambientTotal := reading.TotalLux
	ratio := combinedYellowRatio(reading, state, p)

	isTooDark := ambientTotal < p.Lmin-p.Hysteresis
	isTooBright := ambientTotal > p.Lmax+p.Hysteresis

	// Fallback override: right after total darkness the previous baseline is
	// near zero, so a reading that classifies as too bright is an artifact of
	// the relight itself and must not trigger a downscale.
	if state.InFallback && isTooBright {
		isTooBright = false
	}

	newYellow := state.PrevYellow
	newWhite := state.PrevWhite
	zone := ZoneComfort

	switch {
	case ratio == undefinedRatio:
		// Darkness: relight at the default base split and latch fallback
		zone = ZoneDarkness
		newYellow = int(math.Round(float64(p.DefaultBaseLevel) * p.TargetYellowRatio))
		newWhite = int(math.Round(float64(p.DefaultBaseLevel) * (1 - p.TargetYellowRatio)))
		state.InFallback = true

	case isTooDark, isTooBright:
		zone = ZoneTooBright
		if isTooDark {
			zone = ZoneTooDark
		}
		newYellow, newWhite = downscaleRebalance(state.PrevYellow, state.PrevWhite, p)

	default:
		// Comfort: one proportional nudge on the deficient channel only
		switch {
		case ratio < p.RatioBandLow:
			nudge := int(math.Round(p.Gain * (p.TargetYellowRatio - ratio) * float64(p.MaxChannelLevel)))
			newYellow = clampLevel(state.PrevYellow+nudge, p.MaxChannelLevel)
		case ratio > p.RatioBandHigh:
			nudge := int(math.Round(p.Gain * (ratio - p.TargetYellowRatio) * float64(p.MaxChannelLevel)))
			newWhite = clampLevel(state.PrevWhite+nudge, p.MaxChannelLevel)
		}
	}

	// Fallback clears only once a defined ratio arrives without a too-dark
	// classification
	if !isTooDark && ratio != undefinedRatio {
		state.InFallback = false
	}

	state.PrevYellow = newYellow
	state.PrevWhite = newWhite

	return DriveCommand{
		Yellow: newYellow,
		White:  newWhite,
		Zone:   zone,
		Ratio:  ratio,
	}
}

// combinedYellowRatio estimates the yellow share of everything the sensor
// would see: the ambient contribution plus the previous cycle's own output
// converted to lux through LuxPerLevel. Returns undefinedRatio when the
// combined total is zero.
func combinedYellowRatio(reading Reading, state *State, p Params) float64 {
	yellow := reading.YellowLux + float64(state.PrevYellow)*p.LuxPerLevel
	total := reading.TotalLux + float64(state.PrevYellow+state.PrevWhite)*p.LuxPerLevel
	if total == 0 {
		return undefinedRatio
	}
	return yellow / total
}

// downscaleRebalance scales both channels down by the scaling factor, then
// keeps shrinking whichever channel pushes the output ratio outside the band
// until the ratio fits or both channels collapse. Either channel at or below
// the cutoff threshold forces both to zero so near-zero drive never flickers.
func downscaleRebalance(prevYellow, prevWhite int, p Params) (int, int) {
	yellow := clampLevel(scaleLevel(prevYellow, p.ScalingFactor), p.MaxChannelLevel)
	white := clampLevel(scaleLevel(prevWhite, p.ScalingFactor), p.MaxChannelLevel)

	for i := 0; i < maxRebalanceIterations; i++ {
		ratio := outputRatio(yellow, white)
		if ratio == undefinedRatio || (ratio >= p.RatioBandLow && ratio <= p.RatioBandHigh) {
			break
		}
		if ratio > p.RatioBandHigh {
			yellow = scaleLevel(yellow, p.ScalingFactor)
		} else {
			white = scaleLevel(white, p.ScalingFactor)
		}
	}

	if yellow <= p.CutoffThreshold || white <= p.CutoffThreshold {
		return 0, 0
	}
	return yellow, white
}

// outputRatio is the yellow share of the raw output levels alone, with the
// same undefined sentinel as the combined ratio
func outputRatio(yellow, white int) float64 {
	total := yellow + white
	if total == 0 {
		return undefinedRatio
	}
	return float64(yellow) / float64(total)
}

func scaleLevel(level int, factor float64) int {
	return int(math.Round(float64(level) * factor))
}

func clampLevel(level, max int) int {
	if level < 0 {
		return 0
	}
	if level > max {
		return max
	}
	return level
}
