package sim

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const defaultIntervalSec = 5

// LoadScenario reads and validates a scenario definition from a YAML file
func LoadScenario(filepath string) (*Scenario, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	return LoadScenarioFromBytes(data)
}

// LoadScenarioFromBytes parses an in-memory scenario definition, applying
// defaults and validating before returning it
func LoadScenarioFromBytes(data []byte) (*Scenario, error) {
	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("failed to parse scenario YAML: %w", err)
	}

	applyDefaults(&scenario)

	if err := ValidateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("scenario validation failed: %w", err)
	}

	return &scenario, nil
}

// applyDefaults fills in the sensor cadence and the playback duration when
// the scenario leaves them out
func applyDefaults(s *Scenario) {
	if s.IntervalSec == 0 {
		s.IntervalSec = defaultIntervalSec
	}

	if s.DurationSec == 0 && len(s.Steps) > 0 {
		last := s.Steps[len(s.Steps)-1]
		s.DurationSec = last.Time + s.IntervalSec
	}
}
