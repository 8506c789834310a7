package datastream

import (
	"fmt"

	"greenrun/internal/screen"
	"greenrun/internal/wire"
)

// ParseResult carries the fully reconstructed screen plus the envelope
// metadata a caller might want (opcode, in particular, distinguishes an
// invite-for-input record from an output-only one).
type ParseResult struct {
	Buffer *screen.Buffer
	Opcode byte
}

// Parse decodes one de-framed record (as produced by FrameReader.ReadRecord)
// into a reconstructed screen grid and field list (spec §4.4).
func Parse(record []byte) (ParseResult, error) {
	h, body, err := decodeHeader(record)
	_ = h
	if err != nil {
		return ParseResult{}, err
	}

	buf := screen.New()
	writeRow, writeCol := 1, 1

	i := 0
	for i < len(body) {
		b := body[i]
		switch {
		case b == wire.ESC:
			if i+1 >= len(body) {
				return ParseResult{}, fmt.Errorf("datastream: truncated ESC command at offset %d", i)
			}
			cmd := body[i+1]
			switch cmd {
			case wire.CmdClearUnit:
				buf.Clear()
				writeRow, writeCol = 1, 1
				i += 2
			case wire.CmdWriteToDisplay:
				if i+3 >= len(body) {
					return ParseResult{}, fmt.Errorf("datastream: truncated WRITE_TO_DISPLAY at offset %d", i)
				}
				i += 4 // ESC, cmd, cc1, cc2
			default:
				return ParseResult{}, fmt.Errorf("datastream: unknown 5250 command 0x%02X at offset %d", cmd, i)
			}

		case b == wire.OrderSBA:
			if i+2 >= len(body) {
				return ParseResult{}, fmt.Errorf("datastream: truncated SBA at offset %d", i)
			}
			writeRow, writeCol = int(body[i+1]), int(body[i+2])
			i += 3

		case b == wire.OrderSF:
			if i+2 >= len(body) {
				return ParseResult{}, fmt.Errorf("datastream: truncated SF at offset %d", i)
			}
			ffw0, ffw1 := body[i+1], body[i+2]
			buf.AddField(writeRow, writeCol, ffw0, ffw1)
			buf.SetChar(writeRow, writeCol, ' ')
			writeRow, writeCol = screen.AdvanceAddress(writeRow, writeCol, 1)
			i += 3

		case b == wire.OrderRA:
			if i+3 >= len(body) {
				return ParseResult{}, fmt.Errorf("datastream: truncated RA at offset %d", i)
			}
			toRow, toCol, ch := int(body[i+1]), int(body[i+2]), body[i+3]
			buf.FillRange(writeRow, writeCol, toRow, toCol, wire.ToASCII(ch))
			writeRow, writeCol = toRow, toCol
			i += 4

		case b == wire.OrderIC:
			buf.CursorRow, buf.CursorCol = writeRow, writeCol
			i++

		default:
			if isUnsupportedOrder(b) {
				return ParseResult{}, fmt.Errorf("datastream: unsupported order 0x%02X at offset %d", b, i)
			}
			buf.SetChar(writeRow, writeCol, wire.ToASCII(b))
			writeRow, writeCol = screen.AdvanceAddress(writeRow, writeCol, 1)
			i++
		}
	}

	buf.FinalizeFieldLengths()
	return ParseResult{Buffer: buf, Opcode: h.Opcode}, nil
}

// isUnsupportedOrder names the bytes that, while reserved elsewhere in the
// 5250 order vocabulary, this parser deliberately does not implement
// (structured fields, extended attributes, etc. are out of scope per
// spec.md §1's Non-goals). Treating them as a fatal decode error rather
// than silently skipping them matches spec §4.4's "unknown variable-width
// orders are a fatal decode error".
func isUnsupportedOrder(b byte) bool {
	switch b {
	case wire.OrderEA, wire.OrderMC:
		return true
	default:
		return false
	}
}
