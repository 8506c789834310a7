// Package wire holds the frozen byte-level vocabulary of the TN5250 data
// stream: the EBCDIC codec and the telnet/5250/GDS/AID constants. Nothing
// in this package allocates beyond output buffers, and nothing here is
// connection- or session-specific.
package wire

// asciiToEbcdic and ebcdicToAscii are the two halves of the CP037 printable
// subset translation table. Both default every entry to space so unknown
// bytes round-trip through space rather than producing garbage.
var (
	asciiToEbcdic [256]byte
	ebcdicToAscii [256]byte
)

func init() {
	for i := range asciiToEbcdic {
		asciiToEbcdic[i] = 0x40 // EBCDIC space
	}
	for i := range ebcdicToAscii {
		ebcdicToAscii[i] = 0x20 // ASCII space
	}

	pair(0x00, 0x00) // NUL
	pair(0x20, 0x40) // space

	digits := []byte("0123456789")
	digitsEbcdic := []byte{0xF0, 0xF1, 0xF2, 0xF3, 0xF4, 0xF5, 0xF6, 0xF7, 0xF8, 0xF9}
	for i, d := range digits {
		pair(d, digitsEbcdic[i])
	}

	upperEbcdic := map[byte]byte{
		'A': 0xC1, 'B': 0xC2, 'C': 0xC3, 'D': 0xC4, 'E': 0xC5, 'F': 0xC6, 'G': 0xC7,
		'H': 0xC8, 'I': 0xC9, 'J': 0xD1, 'K': 0xD2, 'L': 0xD3, 'M': 0xD4, 'N': 0xD5,
		'O': 0xD6, 'P': 0xD7, 'Q': 0xD8, 'R': 0xD9, 'S': 0xE2, 'T': 0xE3, 'U': 0xE4,
		'V': 0xE5, 'W': 0xE6, 'X': 0xE7, 'Y': 0xE8, 'Z': 0xE9,
	}
	for a, e := range upperEbcdic {
		pair(a, e)
	}

	lowerEbcdic := map[byte]byte{
		'a': 0x81, 'b': 0x82, 'c': 0x83, 'd': 0x84, 'e': 0x85, 'f': 0x86, 'g': 0x87,
		'h': 0x88, 'i': 0x89, 'j': 0x91, 'k': 0x92, 'l': 0x93, 'm': 0x94, 'n': 0x95,
		'o': 0x96, 'p': 0x97, 'q': 0x98, 'r': 0x99, 's': 0xA2, 't': 0xA3, 'u': 0xA4,
		'v': 0xA5, 'w': 0xA6, 'x': 0xA7, 'y': 0xA8, 'z': 0xA9,
	}
	for a, e := range lowerEbcdic {
		pair(a, e)
	}

	punctEbcdic := map[byte]byte{
		'!': 0x5A, '"': 0x7F, '#': 0x7B, '$': 0x5B, '%': 0x6C, '&': 0x50, '\'': 0x7D,
		'(': 0x4D, ')': 0x5D, '*': 0x5C, '+': 0x4E, ',': 0x6B, '-': 0x60, '.': 0x4B,
		'/': 0x61, ':': 0x7A, ';': 0x5E, '<': 0x4C, '=': 0x7E, '>': 0x6E, '?': 0x6F,
		'@': 0x7C, '[': 0xBA, '\\': 0xE0, ']': 0xBB, '^': 0xB0, '_': 0x6D, '`': 0x79,
		'{': 0xC0, '|': 0x4F, '}': 0xD0, '~': 0xA1,
	}
	for a, e := range punctEbcdic {
		pair(a, e)
	}
}

func pair(ascii, ebcdic byte) {
	asciiToEbcdic[ascii] = ebcdic
	ebcdicToAscii[ebcdic] = ascii
}

// FromASCII translates a single ASCII byte to its EBCDIC equivalent. Bytes
// outside the known alphabet translate to EBCDIC space.
func FromASCII(b byte) byte {
	return asciiToEbcdic[b]
}

// ToASCII translates a single EBCDIC byte to its ASCII equivalent. Bytes
// outside the known alphabet translate to ASCII space.
func ToASCII(b byte) byte {
	return ebcdicToAscii[b]
}

// ASCIIToEBCDIC translates a whole ASCII string into an EBCDIC byte slice.
func ASCIIToEBCDIC(s string) []byte {
	out := make([]byte, len(s))
	for i := 0; i < len(s); i++ {
		out[i] = FromASCII(s[i])
	}
	return out
}

// EBCDICToASCII translates an EBCDIC byte slice into an ASCII string.
func EBCDICToASCII(b []byte) string {
	out := make([]byte, len(b))
	for i, c := range b {
		out[i] = ToASCII(c)
	}
	return string(out)
}
