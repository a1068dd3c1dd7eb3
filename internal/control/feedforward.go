package control

import "math"

// PlanFromTemperature computes channel levels open loop: clamp the measured
// illuminance into the comfort range, split it by the mapped temperature
// ratio, and convert each share to a drive level through LuxPerLevel. Reads
// no state; each cycle stands alone.
func PlanFromTemperature(measuredLux float64, tempK int, p Params) DriveCommand {
	desired := ClampIntensity(measuredLux, p.Lmin, p.Lmax)
	ratios := RatioForTemperature(tempK, p.WarmTempK, p.CoolTempK)

	yellow := clampLevel(int(math.Round(ratios.Yellow*desired/p.LuxPerLevel)), p.MaxChannelLevel)
	white := clampLevel(int(math.Round(ratios.White*desired/p.LuxPerLevel)), p.MaxChannelLevel)

	return DriveCommand{
		Yellow: yellow,
		White:  white,
		Zone:   ZoneDirect,
		Ratio:  ratios.Yellow,
	}
}
