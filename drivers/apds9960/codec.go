package apds9960

// Register encodings. The chip's packed fields are write-only from the
// driver's perspective, so every encoder here is total over the values the
// validators admit.

// atimeCode encodes integration cycles (1..256) into the ATIME register.
func atimeCode(cycles int) byte {
	return byte(256 - cycles)
}

// saturation returns the maximum raw count achievable at the given
// integration time. Used as the normalisation denominator for samples.
func saturation(cycles int) uint32 {
	return 1025 * uint32(cycles)
}

// alsGainCode maps an ALS gain multiplier onto its 2-bit control code.
func alsGainCode(gain int) (byte, bool) {
	switch gain {
	case 1:
		return 0, true
	case 4:
		return 1, true
	case 16:
		return 2, true
	case 64:
		return 3, true
	}
	return 0, false
}

// proximityGainCode maps a proximity gain multiplier onto its 2-bit code.
func proximityGainCode(gain int) (byte, bool) {
	switch gain {
	case 1:
		return 0, true
	case 2:
		return 1, true
	case 4:
		return 2, true
	case 8:
		return 3, true
	}
	return 0, false
}

// packControl packs both gain codes into CONTROLONE: ALS in bits 1:0,
// proximity in bits 3:2. The register is shared, so a write always carries
// both channels.
func packControl(alsCode, proxCode byte) byte {
	return proxCode<<2 | alsCode
}

// alsPersistenceCode maps ALS persistence cycles onto the 4-bit PERS code.
// 0..3 map to themselves; 4..60 are legal only as multiples of 5 and map to
// cycles/5 + 3. Anything else is rejected.
func alsPersistenceCode(cycles int) (byte, bool) {
	switch {
	case cycles >= 0 && cycles <= 3:
		return byte(cycles), true
	case cycles >= 5 && cycles <= 60 && cycles%5 == 0:
		return byte(cycles/5 + 3), true
	}
	return 0, false
}

// packPersistence packs the PERS register: proximity count in the high
// nibble, encoded ALS code in the low nibble.
func packPersistence(proxCycles int, alsCode byte) byte {
	return byte(proxCycles)<<4 | alsCode
}
