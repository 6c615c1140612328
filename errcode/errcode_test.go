package errcode

import (
	"errors"
	"testing"

	"lightcode-go/drivers/apds9960"
)

func TestOfExtractsCodes(t *testing.T) {
	if got := Of(nil); got != OK {
		t.Fatalf("Of(nil) = %v, want OK", got)
	}
	if got := Of(UnknownBus); got != UnknownBus {
		t.Fatalf("Of(bare code) = %v, want UnknownBus", got)
	}
	e := &E{C: OutOfRange, Op: "configure", Err: apds9960.ErrIntegrationCycles}
	if got := Of(e); got != OutOfRange {
		t.Fatalf("Of(E) = %v, want OutOfRange", got)
	}
	if got := Of(errors.New("plain")); got != Error {
		t.Fatalf("Of(plain) = %v, want Error", got)
	}
}

func TestEKeepsCause(t *testing.T) {
	e := &E{C: InvalidOption, Op: "configure", Err: apds9960.ErrALSGain}
	if !errors.Is(e, apds9960.ErrALSGain) {
		t.Fatal("E must unwrap to its cause")
	}
	want := "invalid_option: " + apds9960.ErrALSGain.Error()
	if e.Error() != want {
		t.Fatalf("Error() = %q, want %q", e.Error(), want)
	}
}

func TestMapDriverErr(t *testing.T) {
	cases := []struct {
		err  error
		want Code
	}{
		{nil, OK},
		{apds9960.ErrIdentityMismatch, IdentityMismatch},
		{apds9960.ErrALSGain, InvalidOption},
		{apds9960.ErrProximityGain, InvalidOption},
		{apds9960.ErrIntegrationCycles, OutOfRange},
		{apds9960.ErrThresholdRange, OutOfRange},
		{apds9960.ErrALSPersistence, OutOfRange},
		{apds9960.ErrProxPersistence, OutOfRange},
		{apds9960.ErrClosed, Unsupported},
		{errors.New("i2c nak"), TransportFault},
	}
	for _, c := range cases {
		if got := MapDriverErr(c.err); got != c.want {
			t.Errorf("MapDriverErr(%v) = %v, want %v", c.err, got, c.want)
		}
	}
}
