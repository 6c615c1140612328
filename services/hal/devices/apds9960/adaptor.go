// services/hal/internal/devices/apds9960/adaptor.go
package apds9960dev

import (
	"context"
	"sync"
	"time"

	"lightcode-go/drivers/apds9960"
	"lightcode-go/services/hal/halcore"
)

// One ALS integration cycle is nominally 2.78 ms.
const cycleTime = 2780 * time.Microsecond

// The driver is not reentrant-safe, so mu serialises every Device entry
// point: worker collects, control pass-throughs and the alert clear-read
// all contend for it.
type adaptor struct {
	id     string
	mu     sync.Mutex
	dev    *apds9960.Device
	alerts chan time.Time
}

func (a *adaptor) ID() string { return a.id }

func (a *adaptor) Capabilities() []halcore.CapInfo {
	a.mu.Lock()
	info := a.dev.Info()
	a.mu.Unlock()
	return []halcore.CapInfo{
		{Kind: "light", Info: map[string]any{
			"driver":         info.Driver,
			"addr":           info.Address,
			"channels":       []string{"clear", "red", "green", "blue"},
			"unit":           "fraction_of_saturation",
			"schema_version": 1,
		}},
	}
}

// Trigger arms a collect one integration period out. The chip free-runs,
// so there is nothing to start; the delay just spans one conversion.
func (a *adaptor) Trigger(ctx context.Context) (time.Duration, error) {
	a.mu.Lock()
	cfg := a.dev.Configuration()
	a.mu.Unlock()
	return time.Duration(cfg.ALSIntegrationCycles) * cycleTime, nil
}

func (a *adaptor) Collect(ctx context.Context) (halcore.Sample, error) {
	a.mu.Lock()
	s, err := a.dev.Sample()
	a.mu.Unlock()
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, halcore.ErrPoweredOff
	}
	if s.Light == nil {
		return nil, halcore.ErrNotReady
	}
	ts := time.Now().UnixMilli()
	return halcore.Sample{
		{Kind: "light", Payload: map[string]any{
			"clear": s.Light.Clear,
			"red":   s.Light.Red,
			"green": s.Light.Green,
			"blue":  s.Light.Blue,
			"ts_ms": ts,
		}, TsMs: ts},
	}, nil
}

// Control pass-through: "configure" applies a partial apds9960.Options,
// "info" returns the static metadata, "snapshot" the configuration mirror.
func (a *adaptor) Control(kind, method string, payload any) (any, error) {
	if kind != "light" {
		return nil, halcore.ErrUnsupported
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	switch method {
	case "configure":
		var o apds9960.Options
		switch x := payload.(type) {
		case apds9960.Options:
			o = x
		case *apds9960.Options:
			if x == nil {
				return nil, halcore.ErrUnsupported
			}
			o = *x
		default:
			return nil, halcore.ErrUnsupported
		}
		if err := a.dev.Configure(o); err != nil {
			return nil, err
		}
		return a.dev.Configuration(), nil
	case "snapshot":
		return a.dev.Configuration(), nil
	case "info":
		return a.dev.Info(), nil
	default:
		return nil, halcore.ErrUnsupported
	}
}

// Alerts exposes threshold-crossing timestamps to the hosting service.
// The channel never blocks the alert path; bursts beyond the buffer are
// coalesced by omission.
func (a *adaptor) Alerts() <-chan time.Time { return a.alerts }

// AlertsOf returns the alert stream of an adaptor built by this package,
// nil for anything else or when no alert pin was wired.
func AlertsOf(a halcore.Adaptor) <-chan time.Time {
	if ad, ok := a.(*adaptor); ok {
		return ad.Alerts()
	}
	return nil
}

func (a *adaptor) noteAlert() {
	select {
	case a.alerts <- time.Now():
	default:
	}
}
