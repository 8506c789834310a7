package mockhost

import (
	"testing"

	"github.com/stretchr/testify/require"

	"greenrun/internal/datastream"
	"greenrun/internal/wire"
)

func TestWriterRoundTripsThroughParser(t *testing.T) {
	record, err := NewWriter().
		ClearUnit().
		WriteToDisplay(wire.CC1LockKeyboard, 0x00).
		SetBufferAddress(1, 1).
		WriteText("Sign On").
		SetBufferAddress(6, 30).
		StartInputField().
		WriteFieldValue("TESTUSER", 10).
		StartProtectedField().
		InsertCursor().
		Build(wire.OpcodeInvite)
	require.NoError(t, err)

	res, err := datastream.Parse(record)
	require.NoError(t, err)
	require.Equal(t, "Sign On", res.Buffer.ReadText(1, 1, 7))
	require.Equal(t, "TESTUSER  ", res.Buffer.ReadText(6, 31, 10))

	fields := res.Buffer.GetInputFields()
	require.Len(t, fields, 1)
	require.Equal(t, 6, fields[0].Row)
	require.Equal(t, 30, fields[0].Col)
}

func TestWriterRejectsOutOfRangePosition(t *testing.T) {
	_, err := NewWriter().SetBufferAddress(99, 1).Build(wire.OpcodeInvite)
	require.Error(t, err)
}
