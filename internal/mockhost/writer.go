package mockhost

import (
	"fmt"

	"greenrun/internal/datastream"
	"greenrun/internal/wire"
)

// Writer is a fluent builder for a server->client data-stream record: the
// same order vocabulary the client parser understands, assembled in
// writing order (spec §4.9 "Data-stream writer").
type Writer struct {
	body []byte
	err  error
}

// NewWriter returns an empty Writer.
func NewWriter() *Writer {
	return &Writer{}
}

func (w *Writer) fail(err error) *Writer {
	if w.err == nil {
		w.err = err
	}
	return w
}

// ClearUnit emits ESC CLEAR_UNIT.
func (w *Writer) ClearUnit() *Writer {
	if w.err != nil {
		return w
	}
	w.body = append(w.body, wire.ESC, wire.CmdClearUnit)
	return w
}

// WriteToDisplay emits ESC WRITE_TO_DISPLAY cc1 cc2.
func (w *Writer) WriteToDisplay(cc1, cc2 byte) *Writer {
	if w.err != nil {
		return w
	}
	w.body = append(w.body, wire.ESC, wire.CmdWriteToDisplay, cc1, cc2)
	return w
}

func validatePosition(row, col int) error {
	if row < 1 || row > wire.ScreenRows || col < 1 || col > wire.ScreenCols {
		return fmt.Errorf("mockhost: position (%d,%d) out of range 1..%d x 1..%d", row, col, wire.ScreenRows, wire.ScreenCols)
	}
	return nil
}

// SetBufferAddress emits SBA row col.
func (w *Writer) SetBufferAddress(row, col int) *Writer {
	if w.err != nil {
		return w
	}
	if err := validatePosition(row, col); err != nil {
		return w.fail(err)
	}
	w.body = append(w.body, wire.OrderSBA, byte(row), byte(col))
	return w
}

// StartField emits SF ffw0 ffw1.
func (w *Writer) StartField(ffw0, ffw1 byte) *Writer {
	if w.err != nil {
		return w
	}
	w.body = append(w.body, wire.OrderSF, ffw0, ffw1)
	return w
}

// StartInputField starts a plain alphanumeric input field.
func (w *Writer) StartInputField() *Writer { return w.StartField(0x00, 0x00) }

// StartHiddenField starts a non-display (password-style) input field.
func (w *Writer) StartHiddenField() *Writer { return w.StartField(wire.FFWNonDisplay, 0x00) }

// StartProtectedField starts a protected (display-only) field.
func (w *Writer) StartProtectedField() *Writer { return w.StartField(wire.FFWBypass, 0x00) }

// InsertCursor emits IC.
func (w *Writer) InsertCursor() *Writer {
	if w.err != nil {
		return w
	}
	w.body = append(w.body, wire.OrderIC)
	return w
}

// RepeatToAddress emits RA row col ebcdicChar.
func (w *Writer) RepeatToAddress(row, col int, ebcdicChar byte) *Writer {
	if w.err != nil {
		return w
	}
	if err := validatePosition(row, col); err != nil {
		return w.fail(err)
	}
	w.body = append(w.body, wire.OrderRA, byte(row), byte(col), ebcdicChar)
	return w
}

// WriteText appends ascii, EBCDIC-translated, at the writer's current
// implied position (the caller is responsible for having positioned the
// buffer address first).
func (w *Writer) WriteText(ascii string) *Writer {
	if w.err != nil {
		return w
	}
	w.body = append(w.body, wire.ASCIIToEBCDIC(ascii)...)
	return w
}

// WriteFieldValue writes v left-aligned and space-padded (or truncated) to
// exactly length characters.
func (w *Writer) WriteFieldValue(v string, length int) *Writer {
	if length < 0 {
		length = 0
	}
	if len(v) > length {
		v = v[:length]
	}
	for len(v) < length {
		v += " "
	}
	return w.WriteText(v)
}

// Build wraps the accumulated body in a GDS header for opcode and
// EOR-frames it, returning an error if any prior builder step failed.
func (w *Writer) Build(opcode byte) ([]byte, error) {
	if w.err != nil {
		return nil, w.err
	}
	return datastream.FrameBody(w.body, 0x00, opcode), nil
}
