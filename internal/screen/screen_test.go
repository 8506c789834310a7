package screen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIsAllSpace(t *testing.T) {
	b := New()
	assert.Equal(t, "                                                                                ", b.ReadRow(1))
	assert.Equal(t, 1, b.CursorRow)
	assert.Equal(t, 1, b.CursorCol)
}

func TestSetGetChar(t *testing.T) {
	b := New()
	b.SetChar(5, 10, 'X')
	assert.Equal(t, byte('X'), b.GetChar(5, 10))
}

func TestOutOfRangeIsSilentlyIgnoredOrSpace(t *testing.T) {
	b := New()
	b.SetChar(99, 99, 'X') // out of range, ignored
	assert.Equal(t, byte(' '), b.GetChar(99, 99))
	assert.Equal(t, byte(' '), b.GetChar(0, 0))
}

func TestReadTextWrapsToNextRow(t *testing.T) {
	b := New()
	b.SetChar(1, 79, 'A')
	b.SetChar(1, 80, 'B')
	b.SetChar(2, 1, 'C')
	got := b.ReadText(1, 79, 3)
	assert.Equal(t, "ABC", got)
}

func TestFillRangeExclusiveEndpoint(t *testing.T) {
	b := New()
	b.FillRange(1, 1, 1, 4, 'Z')
	assert.Equal(t, "ZZZ ", b.ReadText(1, 1, 4))
}

func TestFieldLengthDerivedFromNextField(t *testing.T) {
	b := New()
	b.AddField(1, 10, 0, 0)
	b.AddField(1, 20, 0, 0)
	b.FinalizeFieldLengths()
	fields := b.Fields()
	require.Len(t, fields, 2)
	assert.Equal(t, 9, fields[0].Len) // 20 - 10 - 1
}

func TestLastFieldLengthRunsToScreenEnd(t *testing.T) {
	b := New()
	b.AddField(24, 78, 0, 0)
	b.FinalizeFieldLengths()
	fields := b.Fields()
	require.Len(t, fields, 1)
	assert.Equal(t, 2, fields[0].Len) // cols 79 and 80, the last two cells
}

func TestFieldFlagDerivations(t *testing.T) {
	protected := Field{FFW0: 0x20}
	hidden := Field{FFW0: 0x07}
	input := Field{FFW0: 0x00}

	assert.True(t, protected.IsProtected())
	assert.False(t, protected.IsInput())
	assert.True(t, hidden.IsHidden())
	assert.True(t, input.IsInput())
	assert.False(t, input.IsProtected())
}

func TestFindAndListInputFields(t *testing.T) {
	b := New()
	b.AddField(1, 1, 0x20, 0) // protected
	b.AddField(2, 1, 0x00, 0) // input
	b.FinalizeFieldLengths()

	_, ok := b.FindInputField(1, 1)
	assert.False(t, ok, "protected field should not be found as input")

	f, ok := b.FindInputField(2, 1)
	assert.True(t, ok)
	assert.Equal(t, 2, f.Row)

	assert.Len(t, b.GetInputFields(), 1)
}

func TestAdvanceAddressWraps(t *testing.T) {
	r, c := AdvanceAddress(1, 79, 2)
	assert.Equal(t, 2, r)
	assert.Equal(t, 1, c)
}
