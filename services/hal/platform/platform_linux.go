// services/hal/internal/platform/platform_linux.go
//go:build linux

package platform

import (
	"fmt"
	"sync"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"
	"tinygo.org/x/drivers"

	"lightcode-go/services/hal/halcore"
)

// Fast-mode clock for the sensor bus.
const busSpeed = 400 * physic.KiloHertz

// Platform wraps the initialised periph host and hands out bus and pin
// factories keyed by the kernel naming scheme ("/dev/i2c-1", "GPIO4").
type Platform struct {
	mu    sync.Mutex
	buses map[string]drivers.I2C
}

func Init() (*Platform, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("platform: host init: %w", err)
	}
	return &Platform{buses: map[string]drivers.I2C{}}, nil
}

func (p *Platform) I2C() halcore.I2CBusFactory { return (*i2cFactory)(p) }
func (p *Platform) Pins() halcore.PinFactory   { return pinFactory{} }

type i2cFactory Platform

func (f *i2cFactory) ByID(id string) (drivers.I2C, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if b, ok := f.buses[id]; ok {
		return b, true
	}
	bus, err := i2creg.Open(id)
	if err != nil {
		return nil, false
	}
	if err := bus.SetSpeed(busSpeed); err != nil {
		_ = bus.Close()
		return nil, false
	}
	// periph's i2c.Bus carries the same Tx shape the drivers expect.
	f.buses[id] = bus
	return bus, true
}

type pinFactory struct{}

func (pinFactory) ByName(name string) (halcore.IRQPin, bool) {
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, false
	}
	return &hostPin{pin: p, pull: gpio.PullNoChange}, true
}

// hostPin adapts a periph gpio.PinIO to the halcore IRQPin contract. Edge
// delivery runs on a pump goroutine blocked in WaitForEdge; ClearIRQ halts
// the pump and does not return until it has exited, so no handler call can
// race a teardown.
type hostPin struct {
	mu   sync.Mutex
	pin  gpio.PinIO
	pull gpio.Pull
	stop chan struct{}
	done chan struct{}
}

func (p *hostPin) Name() string { return p.pin.Name() }

func (p *hostPin) ConfigureInput(pull halcore.Pull) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pull = toPeriphPull(pull)
	return p.pin.In(p.pull, gpio.NoEdge)
}

func (p *hostPin) Get() bool { return p.pin.Read() == gpio.High }

func (p *hostPin) SetIRQ(edge halcore.Edge, handler func()) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stop != nil {
		return fmt.Errorf("platform: %s: IRQ already armed", p.pin.Name())
	}
	if err := p.pin.In(p.pull, toPeriphEdge(edge)); err != nil {
		return err
	}
	p.stop = make(chan struct{})
	p.done = make(chan struct{})
	go p.pump(p.stop, p.done, handler)
	return nil
}

func (p *hostPin) pump(stop, done chan struct{}, handler func()) {
	defer close(done)
	for {
		select {
		case <-stop:
			return
		default:
		}
		// Bounded wait so a stop request is observed even on a quiet line.
		if !p.pin.WaitForEdge(500 * time.Millisecond) {
			continue
		}
		select {
		case <-stop:
			return
		default:
			handler()
		}
	}
}

func (p *hostPin) ClearIRQ() error {
	p.mu.Lock()
	stop, done := p.stop, p.done
	p.stop, p.done = nil, nil
	p.mu.Unlock()
	if stop == nil {
		return nil
	}
	close(stop)
	_ = p.pin.Halt()
	<-done
	return p.pin.In(p.pull, gpio.NoEdge)
}

func toPeriphPull(pull halcore.Pull) gpio.Pull {
	switch pull {
	case halcore.PullUp:
		return gpio.PullUp
	case halcore.PullDown:
		return gpio.PullDown
	default:
		return gpio.Float
	}
}

func toPeriphEdge(edge halcore.Edge) gpio.Edge {
	switch edge {
	case halcore.EdgeRising:
		return gpio.RisingEdge
	case halcore.EdgeFalling:
		return gpio.FallingEdge
	case halcore.EdgeBoth:
		return gpio.BothEdges
	default:
		return gpio.NoEdge
	}
}
