// Package apds9960 provides constants for register addresses and bitfields
// used in the operation of the APDS-9960 light/proximity/gesture sensor.
package apds9960

const (
	// 7-bit I2C address.
	AddressDefault = 0x39

	// Device identity reported by regID.
	DeviceIdentity = 0xAB

	// --- Register sub-addresses ---

	regEnable     = 0x80 // R/W power/feature enable bitfield
	regATime      = 0x81 // R/W ALS integration time, 256 - cycles
	regWTime      = 0x83 // R/W wait time
	regAILTL      = 0x84 // R/W ALS interrupt low threshold, 16-bit LE
	regAIHTL      = 0x86 // R/W ALS interrupt high threshold, 16-bit LE
	regPers       = 0x8C // R/W interrupt persistence (prox high nibble, ALS low)
	regControlOne = 0x8F // R/W gain control (ALS bits 1:0, prox bits 3:2)
	regID         = 0x92 // R device identity
	regStatus     = 0x93 // R data-ready/interrupt status flags
	regCDataL     = 0x94 // R clear/red/green/blue channels, 4x16-bit LE burst
	regAIClear    = 0xE7 // R side-effect read, clears latched ALS interrupt

	// WTIME power-on default, rewritten during reset.
	wtimeDefault = 0xFF
)

// EnableFlags is the ENABLE register bitfield. All bits are independently
// settable; the full byte is rewritten whenever any flag changes.
type EnableFlags uint8

const (
	EnablePower        EnableFlags = 1 << 0 // PON
	EnableALS          EnableFlags = 1 << 1 // AEN
	EnableProximity    EnableFlags = 1 << 2 // PEN
	EnableWait         EnableFlags = 1 << 3 // WEN
	EnableALSInt       EnableFlags = 1 << 4 // AIEN
	EnableProximityInt EnableFlags = 1 << 5 // PIEN
	EnableGesture      EnableFlags = 1 << 6 // GEN
)

func (f EnableFlags) Has(flag EnableFlags) bool { return f&flag != 0 }

// STATUS register bits (subset the driver reads).
const (
	statusAValid = 1 << 0 // AVALID: fresh ALS data since last read
)
