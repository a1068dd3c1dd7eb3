package sim

import "fmt"

// ValidateScenario rejects scenarios that cannot be played back
func ValidateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("scenario name is required")
	}

	if s.Location == "" {
		return fmt.Errorf("scenario location is required")
	}

	if s.IntervalSec <= 0 {
		return fmt.Errorf("interval_sec must be positive")
	}

	if s.DurationSec <= 0 {
		return fmt.Errorf("duration_sec must be positive")
	}

	if s.JitterLux < 0 {
		return fmt.Errorf("jitter_lux cannot be negative")
	}

	if len(s.Steps) == 0 && s.Random == nil {
		return fmt.Errorf("either steps or random generation is required")
	}

	if len(s.Steps) > 0 && s.Random != nil {
		return fmt.Errorf("steps and random generation are mutually exclusive")
	}

	if err := validateSteps(s.Steps); err != nil {
		return fmt.Errorf("steps validation failed: %w", err)
	}

	if err := validateRandom(s.Random); err != nil {
		return fmt.Errorf("random validation failed: %w", err)
	}

	return nil
}

func validateSteps(steps []Step) error {
	lastTime := -1

	for i, step := range steps {
		if step.Time < 0 {
			return fmt.Errorf("step %d: time cannot be negative", i)
		}

		if step.Time < lastTime {
			return fmt.Errorf("step %d: times must not decrease", i)
		}
		lastTime = step.Time

		if step.Illuminance < 0 {
			return fmt.Errorf("step %d: illuminance cannot be negative", i)
		}

		if step.Red < 0 || step.Green < 0 || step.Blue < 0 {
			return fmt.Errorf("step %d: rgb channels cannot be negative", i)
		}

		if step.ColorTemp != 0 {
			if step.ColorTemp < 1000 || step.ColorTemp > 10000 {
				return fmt.Errorf("step %d: color_temp must lie within 1000-10000 K", i)
			}

			if step.Red > 0 || step.Green > 0 || step.Blue > 0 {
				return fmt.Errorf("step %d: cannot specify both color_temp and rgb channels", i)
			}
		}
	}

	return nil
}

func validateRandom(rc *RandomConfig) error {
	if rc == nil {
		return nil
	}

	if rc.MinLux < 0 {
		return fmt.Errorf("min_lux cannot be negative")
	}

	if rc.MaxLux <= rc.MinLux {
		return fmt.Errorf("max_lux must be above min_lux")
	}

	if rc.MinTempK < 1000 || rc.MaxTempK > 10000 {
		return fmt.Errorf("temperature range must lie within 1000-10000 K")
	}

	if rc.MaxTempK <= rc.MinTempK {
		return fmt.Errorf("max_temp_k must be above min_temp_k")
	}

	return nil
}
