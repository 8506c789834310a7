package datastream

import (
	"bufio"
	"errors"
	"io"

	"greenrun/internal/wire"
)

// ErrClosed is returned by FrameReader.ReadRecord when the underlying
// reader reaches EOF with no record in progress.
var ErrClosed = errors.New("datastream: connection closed")

// FrameReader reconstructs GDS records from a byte stream framed with
// "IAC EOR", unescaping doubled IAC (0xFF 0xFF -> 0xFF) and discarding any
// other in-band telnet command that appears mid-record, as if it had never
// been sent (spec §4.4).
//
// The telnet negotiator may have over-read application bytes while
// settling option negotiation; those bytes are handed to NewFrameReader as
// pending and are consumed before anything is read from r. This is the
// only state shared between the negotiator and the parser (spec §5).
type FrameReader struct {
	br      *bufio.Reader
	pending []byte
}

// NewFrameReader creates a FrameReader over r, seeding it with any bytes
// the negotiator already read past the negotiation boundary.
func NewFrameReader(r io.Reader, pending []byte) *FrameReader {
	return &FrameReader{br: bufio.NewReaderSize(r, 4096), pending: pending}
}

func (f *FrameReader) readByte() (byte, error) {
	if len(f.pending) > 0 {
		b := f.pending[0]
		f.pending = f.pending[1:]
		return b, nil
	}
	return f.br.ReadByte()
}

// ReadRecord reads one complete application record, terminated by an
// unescaped "IAC EOR". The returned bytes are the raw GDS header+body with
// all telnet-level escaping already resolved.
func (f *FrameReader) ReadRecord() ([]byte, error) {
	var record []byte
	for {
		b, err := f.readByte()
		if err != nil {
			if err == io.EOF && len(record) == 0 {
				return nil, ErrClosed
			}
			return nil, err
		}

		if b != wire.IAC {
			record = append(record, b)
			continue
		}

		// b == IAC: peek the following byte to decide what it introduces.
		next, err := f.readByte()
		if err != nil {
			return nil, err
		}

		switch next {
		case wire.IAC:
			// Escaped literal 0xFF in the data stream.
			record = append(record, wire.IAC)
		case wire.EOR:
			return record, nil
		case wire.DO, wire.DONT, wire.WILL, wire.WONT:
			// Unsolicited option negotiation appearing mid-record; the
			// option byte follows. Discard all three bytes as if they
			// never existed (spec §4.4).
			if _, err := f.readByte(); err != nil {
				return nil, err
			}
		case wire.SB:
			// Subnegotiation block; discard through IAC SE.
			if err := f.discardSubnegotiation(); err != nil {
				return nil, err
			}
		default:
			// Any other bare telnet command (e.g. NOP): discard silently.
		}
	}
}

func (f *FrameReader) discardSubnegotiation() error {
	for {
		b, err := f.readByte()
		if err != nil {
			return err
		}
		if b != wire.IAC {
			continue
		}
		next, err := f.readByte()
		if err != nil {
			return err
		}
		if next == wire.SE {
			return nil
		}
		// IAC IAC inside a subnegotiation: one escaped byte, keep scanning.
	}
}
