package datastream

import (
	"strings"
	"testing"

	"greenrun/internal/wire"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeInputRoundTrip(t *testing.T) {
	fields := []ModifiedField{
		{Row: 6, Col: 30, Value: "TESTUSER"},
		{Row: 7, Col: 30, Value: "TEST1234"},
	}
	framed, err := Encode(wire.AIDEnter, 6, 30, fields)
	require.NoError(t, err)

	// Strip the IAC EOR terminator and unescape, as FrameReader would.
	fr := NewFrameReader(nil, framed)
	record, err := fr.ReadRecord()
	require.NoError(t, err)

	aid, row, col, got, err := DecodeInput(record)
	require.NoError(t, err)
	assert.Equal(t, wire.AIDEnter, aid)
	assert.Equal(t, 6, row)
	assert.Equal(t, 30, col)
	require.Len(t, got, 2)
	assert.Equal(t, "TESTUSER", got[0].Value)
	assert.Equal(t, "TEST1234", got[1].Value)
}

func Test0xFFSurvivesIACDoubling(t *testing.T) {
	framed, err := Encode(wire.AIDEnter, 1, 1, []ModifiedField{{Row: 1, Col: 1, Value: "\xff"}})
	require.NoError(t, err)

	fr := NewFrameReader(nil, framed)
	record, err := fr.ReadRecord()
	require.NoError(t, err)

	_, _, _, fields, err := DecodeInput(record)
	require.NoError(t, err)
	require.Len(t, fields, 1)
	// An ASCII 0xFF in a value has no EBCDIC mapping and is sent as space
	// (0x40), so this record carries no 0xFF byte.
	assert.Equal(t, " ", fields[0].Value)

	// A 239-character value makes the record 255 bytes long (10-byte GDS
	// header, 3 bytes of cursor and AID, 3 of SBA, 239 of text), so the low
	// byte of the header's length is 0xFF and is doubled on the wire.
	long := strings.Repeat("A", 239)
	framed, err = Encode(wire.AIDEnter, 1, 1, []ModifiedField{{Row: 1, Col: 1, Value: long}})
	require.NoError(t, err)
	record, err = NewFrameReader(nil, framed).ReadRecord()
	require.NoError(t, err)
	require.Len(t, record, 255)
	assert.Equal(t, wire.IAC, record[1])

	_, _, _, fields, err = DecodeInput(record)
	require.NoError(t, err)
	require.Len(t, fields, 1)
	assert.Equal(t, long, fields[0].Value)
}

func TestEncodeRejectsOutOfRangePosition(t *testing.T) {
	_, err := Encode(wire.AIDEnter, 25, 1, nil)
	assert.Error(t, err)

	_, err = Encode(wire.AIDEnter, 1, 81, nil)
	assert.Error(t, err)
}
