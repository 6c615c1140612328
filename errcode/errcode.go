package errcode

import (
	"errors"

	"lightcode-go/drivers/apds9960"
)

// Code is a stable, wire-facing error identifier.
// It is a string newtype, comparable, allocation-free, and implements error.
type Code string

func (c Code) Error() string { return string(c) }

// Canonical codes (short, stable).
const (
	OK               Code = "ok"
	Busy             Code = "busy"
	Unsupported      Code = "unsupported"
	InvalidParams    Code = "invalid_params"
	InvalidOption    Code = "invalid_option"
	OutOfRange       Code = "out_of_range"
	NotReady         Code = "not_ready"
	PoweredOff       Code = "powered_off"
	IdentityMismatch Code = "identity_mismatch"
	TransportFault   Code = "transport_fault"

	UnknownBus Code = "unknown_bus"
	UnknownPin Code = "unknown_pin"
	Timeout    Code = "timeout"

	Error Code = "error" // generic fallback
)

// Optional wrapper when we want to keep context and a cause.
type E struct {
	C   Code
	Op  string
	Msg string
	Err error
}

func (e *E) Error() string {
	switch {
	case e.Msg != "":
		return string(e.C) + ": " + e.Msg
	case e.Err != nil:
		return string(e.C) + ": " + e.Err.Error()
	default:
		return string(e.C)
	}
}
func (e *E) Unwrap() error { return e.Err }
func (e *E) Code() Code    { return e.C }

// Of extracts a Code from an error, defaulting to Error.
func Of(err error) Code {
	if err == nil {
		return OK
	}
	if c, ok := err.(Code); ok {
		return c
	}
	type coder interface{ Code() Code }
	if x, ok := err.(coder); ok {
		return x.Code()
	}
	return Error
}

// MapDriverErr maps sensor driver errors to a Code. Validation errors keep
// their own codes; anything else coming out of a bus transaction is a
// transport fault.
func MapDriverErr(err error) Code {
	switch {
	case err == nil:
		return OK
	case errors.Is(err, apds9960.ErrIdentityMismatch):
		return IdentityMismatch
	case errors.Is(err, apds9960.ErrALSGain),
		errors.Is(err, apds9960.ErrProximityGain):
		return InvalidOption
	case errors.Is(err, apds9960.ErrIntegrationCycles),
		errors.Is(err, apds9960.ErrThresholdRange),
		errors.Is(err, apds9960.ErrALSPersistence),
		errors.Is(err, apds9960.ErrProxPersistence):
		return OutOfRange
	case errors.Is(err, apds9960.ErrClosed):
		return Unsupported
	default:
		return TransportFault
	}
}
