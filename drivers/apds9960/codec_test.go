package apds9960

import "testing"

func TestATimeEncodingAndSaturation(t *testing.T) {
	for c := 1; c <= 256; c++ {
		if got := atimeCode(c); got != byte(256-c) {
			t.Fatalf("atimeCode(%d) = 0x%02X, want 0x%02X", c, got, byte(256-c))
		}
		if got := saturation(c); got != uint32(1025*c) {
			t.Fatalf("saturation(%d) = %d, want %d", c, got, 1025*c)
		}
	}
}

func TestALSPersistenceCode(t *testing.T) {
	for p := 0; p <= 3; p++ {
		code, ok := alsPersistenceCode(p)
		if !ok || code != byte(p) {
			t.Fatalf("alsPersistenceCode(%d) = %d,%v, want %d,true", p, code, ok, p)
		}
	}
	for p := 5; p <= 60; p += 5 {
		code, ok := alsPersistenceCode(p)
		if !ok || code != byte(p/5+3) {
			t.Fatalf("alsPersistenceCode(%d) = %d,%v, want %d,true", p, code, ok, p/5+3)
		}
	}
	for _, p := range []int{-1, 4, 6, 7, 8, 9, 11, 23, 59, 61, 100} {
		if _, ok := alsPersistenceCode(p); ok {
			t.Fatalf("alsPersistenceCode(%d) accepted, want rejection", p)
		}
	}
}

func TestGainCodes(t *testing.T) {
	alsWant := map[int]byte{1: 0, 4: 1, 16: 2, 64: 3}
	for gain, want := range alsWant {
		code, ok := alsGainCode(gain)
		if !ok || code != want {
			t.Fatalf("alsGainCode(%d) = %d,%v, want %d,true", gain, code, ok, want)
		}
	}
	proxWant := map[int]byte{1: 0, 2: 1, 4: 2, 8: 3}
	for gain, want := range proxWant {
		code, ok := proximityGainCode(gain)
		if !ok || code != want {
			t.Fatalf("proximityGainCode(%d) = %d,%v, want %d,true", gain, code, ok, want)
		}
	}
	for _, g := range []int{0, 2, 3, 8, 32, 128, -1} {
		if _, ok := alsGainCode(g); ok {
			t.Fatalf("alsGainCode(%d) accepted, want rejection", g)
		}
	}
	for _, g := range []int{0, 3, 16, 64, -1} {
		if _, ok := proximityGainCode(g); ok {
			t.Fatalf("proximityGainCode(%d) accepted, want rejection", g)
		}
	}
}

func TestPackControl(t *testing.T) {
	// ALS gain 4 (code 1) + proximity gain 8 (code 3) packs to 0b1101.
	if got := packControl(1, 3); got != 0b1101 {
		t.Fatalf("packControl(1,3) = 0b%04b, want 0b1101", got)
	}
}

func TestPackPersistence(t *testing.T) {
	// Proximity 7 in the high nibble, ALS 10 cycles encode to 10/5+3 = 5.
	code, ok := alsPersistenceCode(10)
	if !ok {
		t.Fatal("alsPersistenceCode(10) rejected")
	}
	if got := packPersistence(7, code); got != 0x75 {
		t.Fatalf("packPersistence(7, %d) = 0x%02X, want 0x75", code, got)
	}
}
