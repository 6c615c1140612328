package apds9960

// AlertPin abstracts the edge-triggered input line wired to the chip's
// interrupt output. Implementations own the scheduling context the handler
// runs on; the driver owns no threading.
//
// The line is expected to be configured pulled-up with falling-edge
// detection (the chip's interrupt output is open-drain, active-low).
type AlertPin interface {
	// OnFallingEdge registers handler to run on each falling edge.
	OnFallingEdge(handler func()) error
	// Close releases the line and stops callbacks.
	Close() error
}

// handleAlert services one edge: the chip holds its interrupt latch until
// the clear register is read, so the dummy read must happen before the
// caller's callback observes the event.
func (d *Device) handleAlert() {
	_ = d.ClearInterrupt()
	if d.onAlert != nil {
		d.onAlert()
	}
}

// ClearInterrupt performs the side-effect read that resets the chip's
// latched ALS interrupt. Without it a pending interrupt re-fires
// immediately when thresholds are rearmed.
func (d *Device) ClearInterrupt() error {
	if d.bus == nil {
		return ErrClosed
	}
	d.w[0] = regAIClear
	return d.bus.Tx(d.addr, d.w[:1], d.r[:1])
}
