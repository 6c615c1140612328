package apds9960

// Options is a partial configuration update. Nil fields are left untouched
// from the previous configuration; only touched fields issue bus writes.
type Options struct {
	On        *bool // PON flag
	EnableALS *bool // AEN flag

	ALSIntegrationCycles *int // 1..256
	ALSGain              *int // 1, 4, 16, 64
	ProximityGain        *int // 1, 2, 4, 8

	ALSThresholdLow  *int // 0..0xFFFF
	ALSThresholdHigh *int // 0..0xFFFF

	ALSThresholdPersistence       *int // 0..3 or multiples of 5 up to 60
	ProximityThresholdPersistence *int // 0..15
}

// Pointer helpers for building Options literals.
func Bool(v bool) *bool { return &v }
func Int(v int) *int    { return &v }

// Configuration is the authoritative in-memory mirror of chip state. The
// packed registers are never read back after the initial write, so this
// struct is the single source of truth for the current encoding inputs.
type Configuration struct {
	Flags EnableFlags

	ALSIntegrationCycles int
	ALSGain              int
	ProximityGain        int

	ALSThresholdLow  uint16
	ALSThresholdHigh uint16

	ALSThresholdPersistence       int
	ProximityThresholdPersistence int

	// MaxSampleCount is derived from the integration time; it is the
	// saturation ceiling used to normalise samples.
	MaxSampleCount uint32
}

func (c *Configuration) setFlag(flag EnableFlags, on bool) {
	if on {
		c.Flags |= flag
	} else {
		c.Flags &^= flag
	}
}

// Info is the static identification metadata for the attached part.
type Info struct {
	Driver   string
	Identity byte
	Address  uint16
}
