// services/hal/internal/platform/platform_other.go
//go:build !linux

package platform

import (
	"errors"

	"tinygo.org/x/drivers"

	"lightcode-go/services/hal/halcore"
)

// Off Linux there is no hardware access. Callers get empty factories and
// tests inject fakes.
type Platform struct{}

func Init() (*Platform, error) {
	return nil, errors.New("platform: no hardware support on this OS")
}

func (*Platform) I2C() halcore.I2CBusFactory { return noI2C{} }
func (*Platform) Pins() halcore.PinFactory   { return noPins{} }

type noI2C struct{}

func (noI2C) ByID(string) (drivers.I2C, bool) { return nil, false }

type noPins struct{}

func (noPins) ByName(string) (halcore.IRQPin, bool) { return nil, false }
