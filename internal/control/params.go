package control

import "fmt"

// Balance strategy names
const (
	StrategyFeedback    = "feedback"
	StrategyTemperature = "temperature"
)

// Params holds the control tuning for one lamp. Immutable after Validate,
// shared freely across cycles.
type Params struct {
	// Comfort illuminance band (lux)
	Lmin       float64
	Lmax       float64
	Hysteresis float64

	// Color temperature anchors for the ratio mapping (Kelvin)
	WarmTempK int
	CoolTempK int

	// Yellow-share target and acceptance band
	TargetYellowRatio float64
	RatioBandLow      float64
	RatioBandHigh     float64

	// Loop tuning
	ScalingFactor float64
	Gain          float64
	LuxPerLevel   float64

	// Channel level bounds
	MaxChannelLevel  int
	DefaultBaseLevel int
	CutoffThreshold  int

	// Balance strategy: feedback or temperature
	Strategy string
}

// DefaultParams returns the tuning used when configuration supplies nothing
// else
func DefaultParams() Params {
	return Params{
		Lmin:              200,
		Lmax:              1300,
		Hysteresis:        25,
		WarmTempK:         2700,
		CoolTempK:         6500,
		TargetYellowRatio: 0.6,
		RatioBandLow:      0.58,
		RatioBandHigh:     0.62,
		ScalingFactor:     0.8,
		Gain:              0.1,
		LuxPerLevel:       5.0,
		MaxChannelLevel:   255,
		DefaultBaseLevel:  120,
		CutoffThreshold:   5,
		Strategy:          StrategyFeedback,
	}
}

// Validate rejects parameter combinations the controller cannot run with.
// Called once at startup; Step assumes validated params and never fails.
func (p Params) Validate() error {
	if p.Lmin >= p.Lmax {
		return fmt.Errorf("Lmin must be below Lmax, got %.1f >= %.1f", p.Lmin, p.Lmax)
	}
	if p.Hysteresis < 0 {
		return fmt.Errorf("hysteresis must not be negative, got %.1f", p.Hysteresis)
	}
	if p.WarmTempK >= p.CoolTempK {
		return fmt.Errorf("warm temperature must be below cool temperature, got %dK >= %dK", p.WarmTempK, p.CoolTempK)
	}
	if p.RatioBandLow < 0 || p.RatioBandHigh > 1 {
		return fmt.Errorf("ratio band must lie within [0, 1], got [%.2f, %.2f]", p.RatioBandLow, p.RatioBandHigh)
	}
	if p.RatioBandLow >= p.TargetYellowRatio || p.TargetYellowRatio >= p.RatioBandHigh {
		return fmt.Errorf("ratio band must satisfy low < target < high, got %.2f / %.2f / %.2f", p.RatioBandLow, p.TargetYellowRatio, p.RatioBandHigh)
	}
	if p.ScalingFactor <= 0 || p.ScalingFactor >= 1 {
		return fmt.Errorf("scaling factor must be strictly between 0 and 1, got %.2f", p.ScalingFactor)
	}
	if p.Gain <= 0 {
		return fmt.Errorf("gain must be positive, got %.2f", p.Gain)
	}
	if p.LuxPerLevel <= 0 {
		return fmt.Errorf("lux per level must be positive, got %.2f", p.LuxPerLevel)
	}
	if p.MaxChannelLevel <= 0 {
		return fmt.Errorf("max channel level must be positive, got %d", p.MaxChannelLevel)
	}
	if p.DefaultBaseLevel < 0 || p.DefaultBaseLevel > p.MaxChannelLevel {
		return fmt.Errorf("default base level must lie within [0, %d], got %d", p.MaxChannelLevel, p.DefaultBaseLevel)
	}
	if p.CutoffThreshold < 0 {
		return fmt.Errorf("cutoff threshold must not be negative, got %d", p.CutoffThreshold)
	}
	if p.Strategy != StrategyFeedback && p.Strategy != StrategyTemperature {
		return fmt.Errorf("unknown balance strategy: %s (must be %s or %s)", p.Strategy, StrategyFeedback, StrategyTemperature)
	}
	return nil
}
