// services/hal/internal/devices/apds9960/builder.go
package apds9960dev

import (
	"sync"
	"time"

	"lightcode-go/drivers/apds9960"
	"lightcode-go/errcode"
	"lightcode-go/services/hal/gpioirq"
	"lightcode-go/services/hal/halcore"
	"lightcode-go/services/hal/registry"
)

// Params defines wiring for one APDS-9960 instance.
type Params struct {
	Bus         string // e.g. "i2c1" or "/dev/i2c-1" (required)
	Addr        uint16 // optional; default apds9960.AddressDefault
	AlertPin    string // optional; e.g. "GPIO4" (active-low, open-drain)
	DebounceMS  int    // optional alert debounce
	SampleEvery time.Duration
}

func init() { registry.RegisterBuilder("apds9960", builder{}) }

type builder struct{}

func (builder) Build(in registry.BuildInput) (registry.BuildOutput, error) {
	p, ok := in.Params.(Params)
	if !ok {
		if pp, ok2 := in.Params.(*Params); ok2 && pp != nil {
			p = *pp
		} else {
			return registry.BuildOutput{}, errcode.InvalidParams
		}
	}
	if p.Bus == "" {
		return registry.BuildOutput{}, errcode.InvalidParams
	}
	if p.SampleEvery <= 0 {
		p.SampleEvery = 2 * time.Second
	}

	i2c, ok := in.Buses.ByID(p.Bus)
	if !ok {
		return registry.BuildOutput{}, errcode.UnknownBus
	}

	ad := &adaptor{id: in.DeviceID, alerts: make(chan time.Time, 8)}

	cfg := apds9960.Config{Address: p.Addr}
	if p.AlertPin != "" {
		pin, ok := in.Pins.ByName(p.AlertPin)
		if !ok {
			return registry.BuildOutput{}, errcode.UnknownPin
		}
		// The interrupt output is open-drain, active-low.
		if err := pin.ConfigureInput(halcore.PullUp); err != nil {
			return registry.BuildOutput{}, err
		}
		cfg.AlertPin = &alertLine{
			pin:      pin,
			debounce: time.Duration(p.DebounceMS) * time.Millisecond,
			mu:       &ad.mu,
		}
		cfg.OnAlert = ad.noteAlert
	}

	dev := apds9960.New(i2c, cfg)
	if err := dev.Init(); err != nil {
		// Init releases the alert line on its own failure path.
		return registry.BuildOutput{}, err
	}
	ad.dev = dev

	return registry.BuildOutput{
		Adaptor:     ad,
		BusID:       p.Bus,
		SampleEvery: p.SampleEvery,
		Close: func() error {
			ad.mu.Lock()
			defer ad.mu.Unlock()
			return dev.Close()
		},
	}, nil
}

// alertLine adapts an edge-watched pin to the driver's AlertPin contract.
// The handler runs on the gpioirq fan-in goroutine, never in the ISR, and
// under the adaptor's device lock so the clear-read cannot interleave with
// a collect or a configure on the same Device.
type alertLine struct {
	pin      halcore.IRQPin
	debounce time.Duration
	mu       *sync.Mutex
	line     *gpioirq.Line
}

func (l *alertLine) OnFallingEdge(handler func()) error {
	line, err := gpioirq.Watch(l.pin, halcore.EdgeFalling, l.debounce, 8)
	if err != nil {
		return err
	}
	l.line = line
	go func() {
		for range line.Events() {
			l.mu.Lock()
			handler()
			l.mu.Unlock()
		}
	}()
	return nil
}

func (l *alertLine) Close() error {
	if l.line == nil {
		return nil
	}
	return l.line.Close()
}
