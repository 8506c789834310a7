package datastream

import (
	"fmt"

	"greenrun/internal/wire"
)

// ModifiedField is one field the operator changed, about to be sent back
// to the host.
type ModifiedField struct {
	Row   int
	Col   int
	Value string
}

// Encode builds a client->host input record: GDS header, then
// cursorRow/cursorCol/aid, then an SBA+value pair per modified field,
// EOR-framed with IAC doubling (spec §4.5).
func Encode(aid byte, cursorRow, cursorCol int, fields []ModifiedField) ([]byte, error) {
	if err := validatePosition(cursorRow, cursorCol); err != nil {
		return nil, err
	}
	for _, f := range fields {
		if err := validatePosition(f.Row, f.Col); err != nil {
			return nil, err
		}
	}

	body := []byte{byte(cursorRow), byte(cursorCol), aid}
	for _, f := range fields {
		body = append(body, wire.OrderSBA, byte(f.Row), byte(f.Col))
		body = append(body, wire.ASCIIToEBCDIC(f.Value)...)
	}

	return FrameBody(body, 0x00, 0x00), nil
}

func validatePosition(row, col int) error {
	if row < 1 || row > wire.ScreenRows || col < 1 || col > wire.ScreenCols {
		return fmt.Errorf("datastream: position (%d,%d) out of range 1..%d x 1..%d", row, col, wire.ScreenRows, wire.ScreenCols)
	}
	return nil
}

// DecodeInput parses a client->host record (as produced by Encode, after
// FrameReader has de-framed it) back into AID, cursor, and modified fields.
// This is what the mock host's extractor consumes.
func DecodeInput(record []byte) (aid byte, cursorRow, cursorCol int, fields []ModifiedField, err error) {
	_, body, err := decodeHeader(record)
	if err != nil {
		return 0, 0, 0, nil, err
	}
	if len(body) < 3 {
		return 0, 0, 0, nil, fmt.Errorf("datastream: input record body too short: %d bytes", len(body))
	}
	cursorRow, cursorCol, aid = int(body[0]), int(body[1]), body[2]

	i := 3
	for i < len(body) {
		if body[i] != wire.OrderSBA {
			return 0, 0, 0, nil, fmt.Errorf("datastream: expected SBA at offset %d, got 0x%02X", i, body[i])
		}
		if i+2 >= len(body) {
			return 0, 0, 0, nil, fmt.Errorf("datastream: truncated SBA at offset %d", i)
		}
		row, col := int(body[i+1]), int(body[i+2])
		i += 3

		// Value runs until the next SBA or end of body. Field boundaries
		// in the wire record aren't length-prefixed, so the caller (the
		// mock host's extractor) is expected to know the catalog field
		// length and trim with that; here we hand back the raw run.
		start := i
		for i < len(body) && body[i] != wire.OrderSBA {
			i++
		}
		value := wire.EBCDICToASCII(body[start:i])
		fields = append(fields, ModifiedField{Row: row, Col: col, Value: value})
	}

	return aid, cursorRow, cursorCol, fields, nil
}
