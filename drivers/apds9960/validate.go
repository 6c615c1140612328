package apds9960

import "errors"

// Sentinel errors. Validation errors reject only the offending option;
// transport errors propagate from the bus untouched.
var (
	ErrIdentityMismatch = errors.New("apds9960: unexpected device identity")
	ErrClosed           = errors.New("apds9960: device closed")

	ErrALSGain           = errors.New("apds9960: ALS gain must be 1, 4, 16 or 64")
	ErrProximityGain     = errors.New("apds9960: proximity gain must be 1, 2, 4 or 8")
	ErrIntegrationCycles = errors.New("apds9960: integration cycles out of range [1,256]")
	ErrThresholdRange    = errors.New("apds9960: threshold must fit 16 bits")
	ErrALSPersistence    = errors.New("apds9960: ALS persistence must be 0..3 or a multiple of 5 up to 60")
	ErrProxPersistence   = errors.New("apds9960: proximity persistence out of range [0,15]")
)
