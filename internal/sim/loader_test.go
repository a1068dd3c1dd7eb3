package sim

import "testing"

func TestLoadScenarioFromBytes(t *testing.T) {
	yaml := `
name: evening-dim
description: Daylight fades over a minute
location: office
steps:
  - time: 0
    illuminance: 900
    color_temp: 5200
  - time: 30
    illuminance: 400
    color_temp: 4000
  - time: 60
    illuminance: 50
    color_temp: 2900
`

	sc, err := LoadScenarioFromBytes([]byte(yaml))
	if err != nil {
		t.Fatalf("Expected scenario to load, got error: %v", err)
	}

	if sc.Name != "evening-dim" {
		t.Errorf("Expected name evening-dim, got %s", sc.Name)
	}
	if sc.Location != "office" {
		t.Errorf("Expected location office, got %s", sc.Location)
	}
	if len(sc.Steps) != 3 {
		t.Errorf("Expected 3 steps, got %d", len(sc.Steps))
	}

	// Defaults fill in cadence and duration
	if sc.IntervalSec != 5 {
		t.Errorf("Expected default interval 5, got %d", sc.IntervalSec)
	}
	if sc.DurationSec != 65 {
		t.Errorf("Expected duration 65 derived from the last step, got %d", sc.DurationSec)
	}
}

func TestLoadScenarioFromBytes_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{
			"missing name",
			`
location: office
steps:
  - time: 0
    illuminance: 100
`,
		},
		{
			"no steps or random",
			`
name: empty
location: office
duration_sec: 30
`,
		},
		{
			"steps and random together",
			`
name: both
location: office
duration_sec: 30
steps:
  - time: 0
    illuminance: 100
random:
  min_lux: 200
  max_lux: 1300
  min_temp_k: 2700
  max_temp_k: 6500
`,
		},
		{
			"decreasing step times",
			`
name: unordered
location: office
steps:
  - time: 30
    illuminance: 100
  - time: 10
    illuminance: 200
`,
		},
		{
			"color temp and rgb together",
			`
name: conflicting
location: office
steps:
  - time: 0
    illuminance: 100
    color_temp: 4000
    red: 10
    green: 10
    blue: 10
`,
		},
		{
			"random missing duration",
			`
name: random-no-duration
location: office
random:
  min_lux: 200
  max_lux: 1300
  min_temp_k: 2700
  max_temp_k: 6500
`,
		},
		{
			"inverted lux range",
			`
name: inverted
location: office
duration_sec: 30
random:
  min_lux: 1300
  max_lux: 200
  min_temp_k: 2700
  max_temp_k: 6500
`,
		},
		{
			"invalid yaml",
			`{not yaml`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadScenarioFromBytes([]byte(tt.yaml)); err == nil {
				t.Error("Expected validation error, got nil")
			}
		})
	}
}

func TestStepAt(t *testing.T) {
	sc := &Scenario{
		Steps: []Step{
			{Time: 0, Illuminance: 900},
			{Time: 30, Illuminance: 400},
			{Time: 60, Illuminance: 50},
		},
	}

	tests := []struct {
		elapsed int
		wantLux float64
	}{
		{0, 900},
		{29, 900},
		{30, 400},
		{59, 400},
		{60, 50},
		{300, 50},
	}

	for _, tt := range tests {
		step := sc.StepAt(tt.elapsed)
		if step == nil {
			t.Fatalf("Expected a step at %ds, got nil", tt.elapsed)
		}
		if step.Illuminance != tt.wantLux {
			t.Errorf("Expected %v lux at %ds, got %v", tt.wantLux, tt.elapsed, step.Illuminance)
		}
	}
}

func TestStepAt_BeforeFirstStep(t *testing.T) {
	sc := &Scenario{
		Steps: []Step{{Time: 10, Illuminance: 100}},
	}

	if step := sc.StepAt(5); step != nil {
		t.Errorf("Expected no step before the first one, got %+v", step)
	}
}
