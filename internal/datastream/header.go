package datastream

import (
	"encoding/binary"
	"fmt"

	"greenrun/internal/wire"
)

// header is the 10-byte GDS envelope common to every record in both
// directions (spec §4.4, §4.5, §6):
//
//	bytes 0-1: total record length (header+body), big-endian
//	bytes 2-3: record type, always wire.GDSRecordType (0x12A0)
//	bytes 4-5: variable header length/value, fixed at 0x0400
//	byte  6:   flags
//	byte  7:   opcode
//	bytes 8-9: reserved, always zero
type header struct {
	Length  uint16
	Opcode  byte
	Flags   byte
}

const variableHeaderValue uint16 = 0x0400

func encodeHeader(bodyLen int, flags, opcode byte) []byte {
	h := make([]byte, wire.GDSHeaderLen)
	binary.BigEndian.PutUint16(h[0:2], uint16(wire.GDSHeaderLen+bodyLen))
	binary.BigEndian.PutUint16(h[2:4], wire.GDSRecordType)
	binary.BigEndian.PutUint16(h[4:6], variableHeaderValue)
	h[6] = flags
	h[7] = opcode
	h[8] = 0
	h[9] = 0
	return h
}

func decodeHeader(record []byte) (header, []byte, error) {
	if len(record) < wire.GDSHeaderLen {
		return header{}, nil, fmt.Errorf("datastream: record too short for GDS header: %d bytes", len(record))
	}
	recordType := binary.BigEndian.Uint16(record[2:4])
	if recordType != wire.GDSRecordType {
		return header{}, nil, fmt.Errorf("datastream: unexpected GDS record type 0x%04X", recordType)
	}
	h := header{
		Length: binary.BigEndian.Uint16(record[0:2]),
		Flags:  record[6],
		Opcode: record[7],
	}
	return h, record[wire.GDSHeaderLen:], nil
}

// FrameBody wraps body in a 10-byte GDS header (flags, opcode) and an
// EOR-framed telnet trailer with 0xFF doubling, producing a record ready
// to write to the wire. Both the input encoder (C5) and the mock host's
// data-stream writer (C10) build on this shared framing step.
func FrameBody(body []byte, flags, opcode byte) []byte {
	h := encodeHeader(len(body), flags, opcode)
	record := append(h, body...)
	framed := escapeIAC(record)
	framed = append(framed, wire.IAC, wire.EOR)
	return framed
}

// escapeIAC doubles every 0xFF byte in b, as required before sending on the
// wire (spec §4.5, §6).
func escapeIAC(b []byte) []byte {
	out := make([]byte, 0, len(b))
	for _, c := range b {
		out = append(out, c)
		if c == wire.IAC {
			out = append(out, wire.IAC)
		}
	}
	return out
}
