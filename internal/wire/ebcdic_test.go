package wire

import "testing"

func TestASCIIEBCDICRoundTrip(t *testing.T) {
	const alphabet = "abcXYZ012789 !@#$%^&*()_+-=,.;:?/\\'\"[]{}~`"
	for i := 0; i < len(alphabet); i++ {
		b := alphabet[i]
		e := FromASCII(b)
		got := ToASCII(e)
		if got != b {
			t.Errorf("round trip broke for %q: got %q via ebcdic 0x%02X", b, got, e)
		}
	}
}

func TestUnknownByteRoundTripsThroughSpace(t *testing.T) {
	if got := ToASCII(0x01); got != ' ' {
		t.Errorf("expected unmapped EBCDIC byte to decode to space, got %q", got)
	}
	if got := FromASCII(0x01); got != 0x40 {
		t.Errorf("expected unmapped ASCII byte to encode to EBCDIC space, got 0x%02X", got)
	}
}

func TestASCIIToEBCDICString(t *testing.T) {
	got := ASCIIToEBCDIC("AB")
	want := []byte{0xC1, 0xC2}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("ASCIIToEBCDIC(\"AB\") = % X, want % X", got, want)
	}
}

func TestEBCDICToASCIIString(t *testing.T) {
	got := EBCDICToASCII([]byte{0xC1, 0xC2})
	if got != "AB" {
		t.Fatalf("EBCDICToASCII = %q, want %q", got, "AB")
	}
}
