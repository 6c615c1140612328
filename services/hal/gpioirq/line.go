// services/hal/internal/gpioirq/line.go
package gpioirq

import (
	"sync/atomic"
	"time"

	"lightcode-go/services/hal/halcore"
)

// Event is delivered for each accepted edge.
type Event struct {
	Level bool // level captured in the ISR
	TS    time.Time
}

// Line watches one edge-capable input pin and fans ISR callbacks into a
// buffered channel. The ISR path never blocks: under pressure events are
// dropped and counted instead.
type Line struct {
	pin      halcore.IRQPin
	edge     halcore.Edge
	debounce time.Duration

	isrQ    chan Event
	outQ    chan Event
	stopped chan struct{}
	closed  atomic.Bool

	drops uint32 // ISR drop counter
}

// Watch configures pin for edge detection and starts the fan-in worker.
// The pin must already be configured as an input with the right pull.
func Watch(pin halcore.IRQPin, edge halcore.Edge, debounce time.Duration, buf int) (*Line, error) {
	if buf <= 0 {
		buf = 8
	}
	l := &Line{
		pin:      pin,
		edge:     edge,
		debounce: debounce,
		isrQ:     make(chan Event, buf),
		outQ:     make(chan Event, buf),
		stopped:  make(chan struct{}),
	}

	// ISR handler: fast level read + non-blocking channel send.
	handler := func() {
		ev := Event{Level: pin.Get(), TS: time.Now()}
		select {
		case l.isrQ <- ev:
		default:
			atomic.AddUint32(&l.drops, 1) // protect ISR path
		}
	}
	if err := pin.SetIRQ(edge, handler); err != nil {
		return nil, err
	}

	go l.run()
	return l, nil
}

// Events returns the debounced edge stream. The channel is closed by Close.
func (l *Line) Events() <-chan Event { return l.outQ }

// Drops reports how many ISR events were shed under pressure.
func (l *Line) Drops() uint32 { return atomic.LoadUint32(&l.drops) }

// Close cancels the IRQ and stops the worker. Safe to call twice.
func (l *Line) Close() error {
	if !l.closed.CompareAndSwap(false, true) {
		return nil
	}
	err := l.pin.ClearIRQ()
	close(l.isrQ)
	<-l.stopped
	return err
}

func (l *Line) run() {
	defer close(l.stopped)
	defer close(l.outQ)

	var last time.Time
	for ev := range l.isrQ {
		if !last.IsZero() && ev.TS.Sub(last) < l.debounce {
			continue
		}
		last = ev.TS
		select {
		case l.outQ <- ev:
		default:
			// drop to protect the system if the consumer is slow
		}
	}
}
