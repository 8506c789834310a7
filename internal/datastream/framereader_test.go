package datastream

import (
	"bytes"
	"testing"

	"greenrun/internal/wire"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameReaderUsesPendingBeforeReader(t *testing.T) {
	fr := NewFrameReader(nil, []byte{'A', 'B', wire.IAC, wire.EOR})
	record, err := fr.ReadRecord()
	require.NoError(t, err)
	assert.Equal(t, []byte{'A', 'B'}, record)
}

func TestFrameReaderDiscardsMidStreamNegotiation(t *testing.T) {
	data := []byte{'A', wire.IAC, wire.WILL, wire.TelnetOptionBinary, 'B', wire.IAC, wire.EOR}
	fr := NewFrameReader(nil, data)
	record, err := fr.ReadRecord()
	require.NoError(t, err)
	assert.Equal(t, []byte{'A', 'B'}, record, "unsolicited option negotiation must be discarded")
}

func TestFrameReaderDiscardsSubnegotiation(t *testing.T) {
	data := []byte{'A', wire.IAC, wire.SB, wire.TelnetOptionTerminalType, 0x01, wire.IAC, wire.SE, 'B', wire.IAC, wire.EOR}
	fr := NewFrameReader(nil, data)
	record, err := fr.ReadRecord()
	require.NoError(t, err)
	assert.Equal(t, []byte{'A', 'B'}, record)
}

func TestFrameReaderUnescapesDoubledIAC(t *testing.T) {
	data := []byte{'A', wire.IAC, wire.IAC, 'B', wire.IAC, wire.EOR}
	fr := NewFrameReader(nil, data)
	record, err := fr.ReadRecord()
	require.NoError(t, err)
	assert.Equal(t, []byte{'A', wire.IAC, 'B'}, record)
}

func TestFrameReaderNoRecordOnClose(t *testing.T) {
	fr := NewFrameReader(bytes.NewReader(nil), nil)
	_, err := fr.ReadRecord()
	assert.ErrorIs(t, err, ErrClosed)
}
