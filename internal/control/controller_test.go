package control

import "testing"

func TestStep_DarknessFallback(t *testing.T) {
	p := DefaultParams()
	state := &State{}

	cmd := Step(Reading{}, state, p)

	// Base level split: 120 * 0.6 / 120 * 0.4
	if cmd.Yellow != 72 {
		t.Errorf("Expected yellow level 72, got %d", cmd.Yellow)
	}
	if cmd.White != 48 {
		t.Errorf("Expected white level 48, got %d", cmd.White)
	}
	if cmd.Zone != ZoneDarkness {
		t.Errorf("Expected zone %s, got %s", ZoneDarkness, cmd.Zone)
	}
	if cmd.Ratio != -1 {
		t.Errorf("Expected undefined ratio -1, got %f", cmd.Ratio)
	}
	if !state.InFallback {
		t.Error("Expected fallback flag to be set after darkness")
	}
}

func TestStep_TooBrightConvergence(t *testing.T) {
	p := DefaultParams()
	state := &State{PrevYellow: 200, PrevWhite: 50}

	cmd := Step(Reading{TotalLux: 2000, YellowLux: 1000, WhiteLux: 1000}, state, p)

	if cmd.Zone != ZoneTooBright {
		t.Errorf("Expected zone %s, got %s", ZoneTooBright, cmd.Zone)
	}

	// Downscale from (200, 50) with factor 0.8 settles at (42, 26)
	if cmd.Yellow != 42 {
		t.Errorf("Expected yellow level 42, got %d", cmd.Yellow)
	}
	if cmd.White != 26 {
		t.Errorf("Expected white level 26, got %d", cmd.White)
	}

	ratio := float64(cmd.Yellow) / float64(cmd.Yellow+cmd.White)
	if ratio < p.RatioBandLow || ratio > p.RatioBandHigh {
		t.Errorf("Expected output ratio within [%f, %f], got %f", p.RatioBandLow, p.RatioBandHigh, ratio)
	}

	if state.PrevYellow != cmd.Yellow || state.PrevWhite != cmd.White {
		t.Errorf("Expected state to persist command levels, got (%d, %d)", state.PrevYellow, state.PrevWhite)
	}
}

func TestStep_TooDarkDownscale(t *testing.T) {
	p := DefaultParams()
	state := &State{PrevYellow: 100, PrevWhite: 100}

	cmd := Step(Reading{TotalLux: 100, YellowLux: 60, WhiteLux: 40}, state, p)

	if cmd.Zone != ZoneTooDark {
		t.Errorf("Expected zone %s, got %s", ZoneTooDark, cmd.Zone)
	}

	// Both channels shrink, then white rebalances until the ratio fits
	if cmd.Yellow != 80 {
		t.Errorf("Expected yellow level 80, got %d", cmd.Yellow)
	}
	if cmd.White != 51 {
		t.Errorf("Expected white level 51, got %d", cmd.White)
	}
}

func TestStep_CutoffCollapsesBothChannels(t *testing.T) {
	p := DefaultParams()
	state := &State{PrevYellow: 8, PrevWhite: 5}

	cmd := Step(Reading{TotalLux: 2000, YellowLux: 1000, WhiteLux: 1000}, state, p)

	if cmd.Yellow != 0 || cmd.White != 0 {
		t.Errorf("Expected both channels forced to 0 at cutoff, got (%d, %d)", cmd.Yellow, cmd.White)
	}
}

func TestStep_FallbackOverride(t *testing.T) {
	p := DefaultParams()
	state := &State{PrevYellow: 72, PrevWhite: 48, InFallback: true}

	// Bright reading right after a darkness relight must not downscale
	cmd := Step(Reading{TotalLux: 2000, YellowLux: 1150, WhiteLux: 850}, state, p)

	if cmd.Zone != ZoneComfort {
		t.Errorf("Expected zone %s, got %s", ZoneComfort, cmd.Zone)
	}
	if cmd.Yellow != 72 || cmd.White != 48 {
		t.Errorf("Expected levels unchanged (72, 48), got (%d, %d)", cmd.Yellow, cmd.White)
	}
	if state.InFallback {
		t.Error("Expected fallback flag cleared once a defined ratio arrives")
	}
}

func TestStep_ComfortNudge(t *testing.T) {
	p := DefaultParams()

	testCases := []struct {
		name       string
		reading    Reading
		wantYellow int
		wantWhite  int
	}{
		// Combined ratio 0.55, yellow deficient
		{"below band", Reading{TotalLux: 600, YellowLux: 300, WhiteLux: 300}, 73, 48},
		// Combined ratio 0.65, white deficient
		{"above band", Reading{TotalLux: 600, YellowLux: 420, WhiteLux: 180}, 72, 49},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			state := &State{PrevYellow: 72, PrevWhite: 48}

			cmd := Step(tc.reading, state, p)

			if cmd.Zone != ZoneComfort {
				t.Errorf("Expected zone %s, got %s", ZoneComfort, cmd.Zone)
			}
			if cmd.Yellow != tc.wantYellow {
				t.Errorf("Expected yellow level %d, got %d", tc.wantYellow, cmd.Yellow)
			}
			if cmd.White != tc.wantWhite {
				t.Errorf("Expected white level %d, got %d", tc.wantWhite, cmd.White)
			}
		})
	}
}

func TestStep_ComfortIdempotent(t *testing.T) {
	p := DefaultParams()
	state := &State{PrevYellow: 72, PrevWhite: 48}

	// Combined ratio sits exactly on target; repeated steps must not move
	reading := Reading{TotalLux: 600, YellowLux: 360, WhiteLux: 240}

	for i := 0; i < 3; i++ {
		cmd := Step(reading, state, p)

		if cmd.Yellow != 72 || cmd.White != 48 {
			t.Fatalf("Expected levels unchanged (72, 48) on step %d, got (%d, %d)", i, cmd.Yellow, cmd.White)
		}
		if cmd.Zone != ZoneComfort {
			t.Fatalf("Expected zone %s on step %d, got %s", ZoneComfort, i, cmd.Zone)
		}
	}
}

func TestStep_FallbackPersistsWhileTooDark(t *testing.T) {
	p := DefaultParams()
	state := &State{}

	// First cycle: total darkness relights at base levels
	Step(Reading{}, state, p)
	if !state.InFallback {
		t.Fatal("Expected fallback flag after darkness cycle")
	}

	// Second cycle: sensor still reads nothing, but own output keeps the
	// combined ratio defined, so the too-dark branch runs instead
	cmd := Step(Reading{}, state, p)

	if cmd.Zone != ZoneTooDark {
		t.Errorf("Expected zone %s, got %s", ZoneTooDark, cmd.Zone)
	}
	if !state.InFallback {
		t.Error("Expected fallback flag to persist while too dark")
	}
}

func TestStep_HysteresisMargin(t *testing.T) {
	p := DefaultParams()

	// 180 lux sits below Lmin but inside the hysteresis margin (Lmin 200,
	// hysteresis 25), so no downscale fires
	state := &State{PrevYellow: 72, PrevWhite: 48}
	cmd := Step(Reading{TotalLux: 180, YellowLux: 108, WhiteLux: 72}, state, p)
	if cmd.Zone != ZoneComfort {
		t.Errorf("Expected zone %s at 180 lux, got %s", ZoneComfort, cmd.Zone)
	}

	// 170 lux crosses the margin
	state = &State{PrevYellow: 72, PrevWhite: 48}
	cmd = Step(Reading{TotalLux: 170, YellowLux: 102, WhiteLux: 68}, state, p)
	if cmd.Zone != ZoneTooDark {
		t.Errorf("Expected zone %s at 170 lux, got %s", ZoneTooDark, cmd.Zone)
	}
}

func TestStep_LevelBoundsInvariant(t *testing.T) {
	p := DefaultParams()
	state := &State{}

	readings := []Reading{
		{},
		{TotalLux: 50, YellowLux: 30, WhiteLux: 20},
		{TotalLux: 5000, YellowLux: 2500, WhiteLux: 2500},
		{TotalLux: 600, YellowLux: 500, WhiteLux: 100},
		{TotalLux: 600, YellowLux: 100, WhiteLux: 500},
		{TotalLux: 1300, YellowLux: 780, WhiteLux: 520},
		{},
		{TotalLux: 100000, YellowLux: 100000, WhiteLux: 0},
	}

	for cycle := 0; cycle < 5; cycle++ {
		for i, reading := range readings {
			cmd := Step(reading, state, p)

			if cmd.Yellow < 0 || cmd.Yellow > p.MaxChannelLevel {
				t.Fatalf("Yellow level %d out of bounds on cycle %d reading %d", cmd.Yellow, cycle, i)
			}
			if cmd.White < 0 || cmd.White > p.MaxChannelLevel {
				t.Fatalf("White level %d out of bounds on cycle %d reading %d", cmd.White, cycle, i)
			}
		}
	}
}

func TestStep_RebalanceTerminatesNearOne(t *testing.T) {
	// Scaling factor close to 1 stalls integer rounding; the iteration guard
	// must still end the cycle with in-bounds levels
	p := DefaultParams()
	p.ScalingFactor = 0.99
	if err := p.Validate(); err != nil {
		t.Fatalf("Expected valid params, got %v", err)
	}

	state := &State{PrevYellow: 255, PrevWhite: 3}
	cmd := Step(Reading{TotalLux: 5000, YellowLux: 2500, WhiteLux: 2500}, state, p)

	if cmd.Yellow < 0 || cmd.Yellow > p.MaxChannelLevel {
		t.Errorf("Yellow level %d out of bounds", cmd.Yellow)
	}
	if cmd.White < 0 || cmd.White > p.MaxChannelLevel {
		t.Errorf("White level %d out of bounds", cmd.White)
	}
}
