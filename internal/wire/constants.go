package wire

// Telnet command/option bytes (RFC 854 and related option RFCs).
const (
	IAC  byte = 0xFF
	DO   byte = 0xFD
	DONT byte = 0xFE
	WILL byte = 0xFB
	WONT byte = 0xFC
	SB   byte = 0xFA
	SE   byte = 0xF0
	EOR  byte = 0xEF

	TelnetOptionBinary       byte = 0x00
	TelnetOptionTerminalType byte = 0x18
	TelnetOptionEndOfRecord  byte = 0x19

	TerminalTypeSend byte = 0x01
	TerminalTypeIs   byte = 0x00
)

// 5250 command bytes, introduced by ESC.
const (
	ESC byte = 0x04

	CmdClearUnit             byte = 0x40
	CmdWriteToDisplay        byte = 0x11
	CmdWriteStructuredField  byte = 0xF3
)

// 5250 order bytes, appearing within a Write To Display command's body.
const (
	OrderSBA byte = 0x11 // Set Buffer Address
	OrderRA  byte = 0x02 // Repeat to Address
	OrderEA  byte = 0x03 // Erase to Address
	OrderIC  byte = 0x13 // Insert Cursor
	OrderMC  byte = 0x14 // Modify Cursor/field
	OrderSF  byte = 0x1D // Start Field
)

// GDS (General Data Stream) record layout.
const (
	GDSRecordType uint16 = 0x12A0
	GDSHeaderLen  int    = 10
)

// GDS opcodes.
const (
	OpcodeNoOp       byte = 0x00
	OpcodeInvite     byte = 0x01
	OpcodeOutputOnly byte = 0x02
	OpcodePutGet     byte = 0x03
)

// Write To Display control characters (cc1). Only the bits this design
// exercises are named; the rest are reserved at 0.
const (
	CC1LockKeyboard byte = 0x20
)

// Screen geometry.
const (
	ScreenRows = 24
	ScreenCols = 80
)

// Field Format Word (FFW) flag bits, byte 0.
const (
	FFWBypass         byte = 0x20 // protected / non-input field
	FFWNonDisplayMask byte = 0x07 // low 3 bits: shift class; 0x07 = hidden
	FFWNonDisplay     byte = 0x07
	FFWMDT            byte = 0x01 // modified data tag, byte 1
)

// AID (Attention Identifier) bytes.
const (
	AIDEnter    byte = 0xF1
	AIDF1       byte = 0x31
	AIDF2       byte = 0x32
	AIDF3       byte = 0x33
	AIDF4       byte = 0x34
	AIDF5       byte = 0x35
	AIDF6       byte = 0x36
	AIDF7       byte = 0x37
	AIDF8       byte = 0x38
	AIDF9       byte = 0x39
	AIDF10      byte = 0x3A
	AIDF11      byte = 0x3B
	AIDF12      byte = 0x3C
	AIDRollUp   byte = 0xF5 // Roll-Up / Page-Down
	AIDRollDown byte = 0xF4 // Roll-Down / Page-Up
	AIDHelp     byte = 0xF3
	AIDPrint    byte = 0xF6
	AIDClear    byte = 0xBD
)

var aidByName = map[string]byte{
	"Enter":    AIDEnter,
	"F1":       AIDF1,
	"F2":       AIDF2,
	"F3":       AIDF3,
	"F4":       AIDF4,
	"F5":       AIDF5,
	"F6":       AIDF6,
	"F7":       AIDF7,
	"F8":       AIDF8,
	"F9":       AIDF9,
	"F10":      AIDF10,
	"F11":      AIDF11,
	"F12":      AIDF12,
	"PageUp":   AIDRollDown,
	"PageDown": AIDRollUp,
	"RollUp":   AIDRollUp,
	"RollDown": AIDRollDown,
	"Help":     AIDHelp,
	"Print":    AIDPrint,
	"Clear":    AIDClear,
}

var aidByByte = func() map[byte]string {
	m := make(map[byte]string, len(aidByName))
	for name, b := range aidByName {
		// PageUp/RollDown and PageDown/RollUp alias the same byte; prefer
		// the Page* spelling as the canonical reverse mapping.
		if _, exists := m[b]; exists && (name == "RollUp" || name == "RollDown") {
			continue
		}
		m[b] = name
	}
	return m
}()

// AIDByName resolves a key name (e.g. "Enter", "F3", "PageDown") to its AID
// byte. It reports false for unknown names.
func AIDByName(name string) (byte, bool) {
	b, ok := aidByName[name]
	return b, ok
}

// AIDName resolves an AID byte back to its canonical key name. It reports
// false for unknown bytes.
func AIDName(b byte) (string, bool) {
	name, ok := aidByByte[b]
	return name, ok
}
