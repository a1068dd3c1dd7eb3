package control

// Zone identifies the classification branch that produced a command
type Zone int

const (
	ZoneDarkness Zone = iota
	ZoneTooDark
	ZoneTooBright
	ZoneComfort
	ZoneDirect
)

// String returns the zone name used in logs and context payloads
func (z Zone) String() string {
	switch z {
	case ZoneDarkness:
		return "darkness"
	case ZoneTooDark:
		return "too_dark"
	case ZoneTooBright:
		return "too_bright"
	case ZoneComfort:
		return "comfort"
	case ZoneDirect:
		return "direct"
	default:
		return "unknown"
	}
}

// Reading is one ambient sample with its white/yellow split already derived
// by the ingestion tier. TotalLux of zero means the sensor saw nothing.
type Reading struct {
	TotalLux  float64
	YellowLux float64
	WhiteLux  float64
}

// State carries the controller's memory between cycles: the levels written
// on the previous cycle and the sticky fallback flag. Owned by a single
// decision loop, mutated only by Step, reset to zero at process start.
type State struct {
	PrevYellow int
	PrevWhite  int
	InFallback bool
}

// DriveCommand is the output of one control cycle. Levels always lie in
// [0, MaxChannelLevel]; Zone and Ratio record how the levels were chosen.
type DriveCommand struct {
	Yellow int
	White  int
	Zone   Zone
	Ratio  float64
}
