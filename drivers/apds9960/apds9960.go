// Driver for the APDS-9960 ambient light sensor.
//
// The chip also measures proximity and gestures; this driver configures
// those channels' interrupt plumbing but implements measurement for the
// ALS (clear/red/green/blue) channel only. Raw counts are normalised
// against the saturation ceiling of the configured integration time, not
// converted to lux: the datasheet provides no calibration formula.
//
// The driver is not reentrant-safe. Concurrent Configure/Sample/Close on
// one Device must be serialised by the caller; the alert path is the only
// asynchronous entry point and performs a single clear-read plus callback.
package apds9960

import (
	"encoding/binary"

	"tinygo.org/x/drivers"
)

// Default configuration applied by Init, through the same validate/encode
// pipeline as explicit Configure calls.
const (
	defaultIntegrationCycles = 10
	defaultThresholdLow      = 0
	defaultThresholdHigh     = 0xFFFF
	defaultPersistence       = 1
)

// Config carries construction options for one Device.
type Config struct {
	// Address defaults to AddressDefault if zero.
	Address uint16
	// AlertPin and OnAlert wire threshold alerts. If either is nil no
	// alert path is wired and threshold crossings are never surfaced;
	// polling via Sample remains available.
	AlertPin AlertPin
	OnAlert  func()
}

// Device is a stateful handle on one APDS-9960.
type Device struct {
	bus     drivers.I2C
	addr    uint16
	alert   AlertPin
	onAlert func()

	cfg    Configuration
	closed bool

	// Fixed buffers to avoid per-call heap allocations.
	w [3]byte
	r [8]byte
}

// New creates a Device. The bus must already be configured. Only the
// object is created; Init touches the hardware.
func New(bus drivers.I2C, cfg Config) *Device {
	addr := cfg.Address
	if addr == 0 {
		addr = AddressDefault
	}
	return &Device{
		bus:     bus,
		addr:    addr,
		alert:   cfg.AlertPin,
		onAlert: cfg.OnAlert,
		// Mirror starts at the chip's power-on values; Init normalises
		// them to the documented defaults.
		cfg: Configuration{
			ALSIntegrationCycles: 1,
			ALSGain:              1,
			ProximityGain:        1,
			MaxSampleCount:       saturation(1),
		},
	}
}

// Init resets the device, verifies its identity and applies the default
// configuration (power on, ALS enabled, 10 integration cycles, full-range
// thresholds disabled, persistence 1/1). Any transport fault or an
// identity mismatch is fatal: acquired pin resources are released before
// the error is returned.
func (d *Device) Init() error {
	if err := d.reset(); err != nil {
		return d.failInit(err)
	}
	id, err := d.readByte(regID)
	if err != nil {
		return d.failInit(err)
	}
	if id != DeviceIdentity {
		return d.failInit(ErrIdentityMismatch)
	}

	if err := d.Configure(Options{
		On:                            Bool(true),
		EnableALS:                     Bool(true),
		ALSIntegrationCycles:          Int(defaultIntegrationCycles),
		ALSThresholdLow:               Int(defaultThresholdLow),
		ALSThresholdHigh:              Int(defaultThresholdHigh),
		ALSThresholdPersistence:       Int(defaultPersistence),
		ProximityThresholdPersistence: Int(defaultPersistence),
	}); err != nil {
		return d.failInit(err)
	}

	if d.alert != nil && d.onAlert != nil {
		if err := d.alert.OnFallingEdge(d.handleAlert); err != nil {
			return d.failInit(err)
		}
	}
	return nil
}

// reset disables the device, restores the wait-time default and powers the
// core back on.
func (d *Device) reset() error {
	if err := d.writeByte(regEnable, 0); err != nil {
		return err
	}
	if err := d.writeByte(regWTime, wtimeDefault); err != nil {
		return err
	}
	return d.writeByte(regEnable, byte(EnablePower))
}

// failInit releases acquired resources on the initialisation failure path.
func (d *Device) failInit(err error) error {
	if d.alert != nil {
		_ = d.alert.Close()
		d.alert = nil
	}
	d.closed = true
	return err
}

// Configure applies a partial set of options. Unspecified options are left
// untouched; only touched fields issue register writes. Validation rejects
// the offending option without mutating its stored value, leaving options
// already processed in the same call applied (no rollback). A transport
// fault during any write propagates to the caller the same way.
func (d *Device) Configure(o Options) error {
	if d.closed {
		return ErrClosed
	}

	if o.On != nil || o.EnableALS != nil {
		if o.On != nil {
			d.cfg.setFlag(EnablePower, *o.On)
		}
		if o.EnableALS != nil {
			d.cfg.setFlag(EnableALS, *o.EnableALS)
		}
		if err := d.writeEnable(); err != nil {
			return err
		}
	}

	if o.ALSGain != nil || o.ProximityGain != nil {
		// Both gains share CONTROLONE: if either value is invalid the
		// whole packed write is aborted and the register keeps its
		// previous contents.
		alsGain, proxGain := d.cfg.ALSGain, d.cfg.ProximityGain
		if o.ALSGain != nil {
			alsGain = *o.ALSGain
		}
		if o.ProximityGain != nil {
			proxGain = *o.ProximityGain
		}
		alsCode, ok := alsGainCode(alsGain)
		if !ok {
			return ErrALSGain
		}
		proxCode, ok := proximityGainCode(proxGain)
		if !ok {
			return ErrProximityGain
		}
		if err := d.writeByte(regControlOne, packControl(alsCode, proxCode)); err != nil {
			return err
		}
		d.cfg.ALSGain, d.cfg.ProximityGain = alsGain, proxGain
	}

	if o.ALSIntegrationCycles != nil {
		cycles := *o.ALSIntegrationCycles
		if cycles < 1 || cycles > 256 {
			return ErrIntegrationCycles
		}
		if err := d.writeByte(regATime, atimeCode(cycles)); err != nil {
			return err
		}
		d.cfg.ALSIntegrationCycles = cycles
		d.cfg.MaxSampleCount = saturation(cycles)
	}

	thresholdTouched := false
	if o.ALSThresholdLow != nil {
		v := *o.ALSThresholdLow
		if v < 0 || v > 0xFFFF {
			return ErrThresholdRange
		}
		if err := d.writeWord(regAILTL, uint16(v)); err != nil {
			return err
		}
		d.cfg.ALSThresholdLow = uint16(v)
		thresholdTouched = true
	}
	if o.ALSThresholdHigh != nil {
		v := *o.ALSThresholdHigh
		if v < 0 || v > 0xFFFF {
			return ErrThresholdRange
		}
		if err := d.writeWord(regAIHTL, uint16(v)); err != nil {
			return err
		}
		d.cfg.ALSThresholdHigh = uint16(v)
		thresholdTouched = true
	}
	if thresholdTouched {
		// The ALS interrupt is armed unless the bounds are the
		// full-range sentinel pair. Clear any latched interrupt before
		// rewriting the enable byte so a stale event cannot re-fire.
		armed := !(d.cfg.ALSThresholdLow == 0 && d.cfg.ALSThresholdHigh == 0xFFFF)
		d.cfg.setFlag(EnableALSInt, armed)
		if err := d.ClearInterrupt(); err != nil {
			return err
		}
		if err := d.writeEnable(); err != nil {
			return err
		}
	}

	if o.ALSThresholdPersistence != nil || o.ProximityThresholdPersistence != nil {
		alsPers, proxPers := d.cfg.ALSThresholdPersistence, d.cfg.ProximityThresholdPersistence
		if o.ALSThresholdPersistence != nil {
			alsPers = *o.ALSThresholdPersistence
		}
		if o.ProximityThresholdPersistence != nil {
			proxPers = *o.ProximityThresholdPersistence
		}
		alsCode, ok := alsPersistenceCode(alsPers)
		if !ok {
			return ErrALSPersistence
		}
		if proxPers < 0 || proxPers > 15 {
			return ErrProxPersistence
		}
		if err := d.writeByte(regPers, packPersistence(proxPers, alsCode)); err != nil {
			return err
		}
		d.cfg.ALSThresholdPersistence = alsPers
		d.cfg.ProximityThresholdPersistence = proxPers
	}

	return nil
}

// LightMeter is one normalised ALS reading. Each channel is the raw count
// divided by the saturation ceiling, a fraction in [0,1].
type LightMeter struct {
	Clear float64
	Red   float64
	Green float64
	Blue  float64
}

// Sample is the result of one Sample call. Light is nil when the device is
// powered but no fresh ALS data was available (or ALS is disabled).
type Sample struct {
	Light *LightMeter
}

// Sample polls the device once. It returns (nil, nil) when the power-on
// flag is false. Otherwise the status register decides: with ALS enabled
// and fresh data flagged, the four channels are burst-read and normalised;
// with stale data the returned Sample carries no light reading. The call
// is idempotent apart from the status/data register reads themselves.
func (d *Device) Sample() (*Sample, error) {
	if d.closed {
		return nil, ErrClosed
	}
	if !d.cfg.Flags.Has(EnablePower) {
		return nil, nil
	}
	status, err := d.readByte(regStatus)
	if err != nil {
		return nil, err
	}

	s := &Sample{}
	if d.cfg.Flags.Has(EnableALS) && status&statusAValid != 0 {
		d.w[0] = regCDataL
		if err := d.bus.Tx(d.addr, d.w[:1], d.r[:8]); err != nil {
			return nil, err
		}
		ceiling := float64(d.cfg.MaxSampleCount)
		s.Light = &LightMeter{
			Clear: float64(binary.LittleEndian.Uint16(d.r[0:2])) / ceiling,
			Red:   float64(binary.LittleEndian.Uint16(d.r[2:4])) / ceiling,
			Green: float64(binary.LittleEndian.Uint16(d.r[4:6])) / ceiling,
			Blue:  float64(binary.LittleEndian.Uint16(d.r[6:8])) / ceiling,
		}
	}
	return s, nil
}

// Close disables the device and releases the alert line. It is idempotent
// and safe on a partially initialised Device. A transport fault during the
// disable write is propagated, but resources are still released and the
// second Close is a no-op regardless.
func (d *Device) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true

	// The alert line goes first. Its Close does not return while a handler
	// is in flight, so an edge landing during teardown still finds the bus
	// for its clear-read.
	var err error
	if d.alert != nil {
		err = d.alert.Close()
		d.alert = nil
	}
	if d.bus != nil {
		if werr := d.writeByte(regEnable, 0); werr != nil && err == nil {
			err = werr
		}
		d.bus = nil
	}
	d.cfg.Flags = 0
	return err
}

// Configuration returns a copy of the current in-memory mirror.
func (d *Device) Configuration() Configuration { return d.cfg }

// Info returns static identification metadata.
func (d *Device) Info() Info {
	return Info{Driver: "apds9960", Identity: DeviceIdentity, Address: d.addr}
}

// ---------------- Low-level register access ----------------

func (d *Device) readByte(reg byte) (byte, error) {
	d.w[0] = reg
	if err := d.bus.Tx(d.addr, d.w[:1], d.r[:1]); err != nil {
		return 0, err
	}
	return d.r[0], nil
}

func (d *Device) writeByte(reg, val byte) error {
	d.w[0], d.w[1] = reg, val
	return d.bus.Tx(d.addr, d.w[:2], nil)
}

// writeWord writes a 16-bit register, data-low then data-high.
func (d *Device) writeWord(reg byte, val uint16) error {
	d.w[0] = reg
	d.w[1] = byte(val)
	d.w[2] = byte(val >> 8)
	return d.bus.Tx(d.addr, d.w[:3], nil)
}

func (d *Device) writeEnable() error {
	return d.writeByte(regEnable, byte(d.cfg.Flags))
}
