package sim

// Scenario is a scripted ambient playback for exercising the platform
// without physical hardware
type Scenario struct {
	Name        string        `yaml:"name"`
	Description string        `yaml:"description"`
	Location    string        `yaml:"location"`
	IntervalSec int           `yaml:"interval_sec"`
	DurationSec int           `yaml:"duration_sec"`
	JitterLux   float64       `yaml:"jitter_lux"`
	Seed        int64         `yaml:"seed"`
	Steps       []Step        `yaml:"steps"`
	Random      *RandomConfig `yaml:"random,omitempty"`
}

// Step sets the ambient conditions from its time onward. The player keeps
// publishing the active step at the sensor cadence until the next step
// begins.
type Step struct {
	Time        int     `yaml:"time"` // Seconds from start
	Illuminance float64 `yaml:"illuminance"`
	ColorTemp   int     `yaml:"color_temp,omitempty"`
	Red         float64 `yaml:"red,omitempty"`
	Green       float64 `yaml:"green,omitempty"`
	Blue        float64 `yaml:"blue,omitempty"`
	Description string  `yaml:"description,omitempty"`
}

// RandomConfig generates uniform random samples instead of scripted steps
type RandomConfig struct {
	MinLux   float64 `yaml:"min_lux"`
	MaxLux   float64 `yaml:"max_lux"`
	MinTempK int     `yaml:"min_temp_k"`
	MaxTempK int     `yaml:"max_temp_k"`
}

// StepAt returns the step active at the given offset from scenario start,
// or nil when the first step has not begun yet
func (s *Scenario) StepAt(elapsedSec int) *Step {
	var current *Step

	for i := range s.Steps {
		if s.Steps[i].Time <= elapsedSec {
			current = &s.Steps[i]
		} else {
			break
		}
	}

	return current
}
