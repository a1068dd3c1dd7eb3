package control

import "testing"

func TestParamsValidate(t *testing.T) {
	testCases := []struct {
		name    string
		mutate  func(*Params)
		wantErr bool
	}{
		{"defaults", func(p *Params) {}, false},
		{"temperature strategy", func(p *Params) { p.Strategy = StrategyTemperature }, false},
		{"inverted lux bounds", func(p *Params) { p.Lmin = 1500 }, true},
		{"negative hysteresis", func(p *Params) { p.Hysteresis = -1 }, true},
		{"inverted temperature anchors", func(p *Params) { p.WarmTempK = 7000 }, true},
		{"band outside unit range", func(p *Params) { p.RatioBandHigh = 1.2 }, true},
		{"target outside band", func(p *Params) { p.TargetYellowRatio = 0.7 }, true},
		{"scaling factor too large", func(p *Params) { p.ScalingFactor = 1.0 }, true},
		{"scaling factor zero", func(p *Params) { p.ScalingFactor = 0 }, true},
		{"zero gain", func(p *Params) { p.Gain = 0 }, true},
		{"zero lux per level", func(p *Params) { p.LuxPerLevel = 0 }, true},
		{"zero max level", func(p *Params) { p.MaxChannelLevel = 0 }, true},
		{"base level above max", func(p *Params) { p.DefaultBaseLevel = 300 }, true},
		{"negative cutoff", func(p *Params) { p.CutoffThreshold = -1 }, true},
		{"unknown strategy", func(p *Params) { p.Strategy = "adaptive" }, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p := DefaultParams()
			tc.mutate(&p)

			err := p.Validate()
			if tc.wantErr && err == nil {
				t.Error("Expected validation error, got nil")
			}
			if !tc.wantErr && err != nil {
				t.Errorf("Expected params to validate, got %v", err)
			}
		})
	}
}
