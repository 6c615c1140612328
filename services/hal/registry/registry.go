// services/hal/internal/registry/registry.go
package registry

import (
	"fmt"
	"sync"
	"time"

	"lightcode-go/services/hal/halcore"
)

// BuildInput is passed to a device builder.
type BuildInput struct {
	Buses    halcore.I2CBusFactory
	Pins     halcore.PinFactory
	DeviceID string
	Type     string
	Params   any // device-specific params struct
}

// BuildOutput describes a constructed device.
type BuildOutput struct {
	Adaptor     halcore.Adaptor
	BusID       string        // "" if not on a shared bus
	SampleEvery time.Duration // 0 if not a periodic producer
	Close       func() error  // releases device resources; may be nil
}

// Builder creates an adaptor from config and factories.
type Builder interface {
	Build(in BuildInput) (BuildOutput, error)
}

var (
	mu       sync.RWMutex
	builders = map[string]Builder{}
)

func RegisterBuilder(deviceType string, b Builder) {
	mu.Lock()
	defer mu.Unlock()
	if _, exists := builders[deviceType]; exists {
		panic(fmt.Sprintf("device builder already registered for type %q", deviceType))
	}
	builders[deviceType] = b
}

func Lookup(deviceType string) (Builder, bool) {
	mu.RLock()
	defer mu.RUnlock()
	b, ok := builders[deviceType]
	return b, ok
}
