// Package screen implements the fixed 24x80 character grid, cursor, and
// discovered-field list that both the client parser and the server
// renderer operate on (spec §3 "Screen grid", §4.6 "Screen buffer").
package screen

import "greenrun/internal/wire"

// Field describes one input or protected field discovered while parsing a
// Write To Display stream, or placed while rendering one.
type Field struct {
	Row  int // 1-based
	Col  int // 1-based, position of the attribute byte
	Len  int // distance from the attribute byte to the next field's attribute byte, minus one
	FFW0 byte
	FFW1 byte
}

// IsProtected reports whether the field rejects operator input.
func (f Field) IsProtected() bool { return f.FFW0&wire.FFWBypass != 0 }

// IsHidden reports whether the field's contents are non-display (e.g. a
// password field).
func (f Field) IsHidden() bool { return f.FFW0&wire.FFWNonDisplayMask == wire.FFWNonDisplay }

// IsInput reports whether an operator may type into the field.
func (f Field) IsInput() bool { return !f.IsProtected() }

// Buffer is the 24x80 grid plus cursor and discovered fields. Rows and
// columns are 1-based throughout, matching the wire protocol's addressing.
type Buffer struct {
	rows   [wire.ScreenRows + 1][wire.ScreenCols + 1]byte // index 0 unused
	fields []Field

	CursorRow int
	CursorCol int
}

// New returns a Buffer filled with spaces, cursor at (1,1).
func New() *Buffer {
	b := &Buffer{CursorRow: 1, CursorCol: 1}
	b.Clear()
	return b
}

// Clear fills the grid with space and drops all discovered fields and
// resets the cursor to (1,1), mirroring ESC CLEAR_UNIT (spec §4.4).
func (b *Buffer) Clear() {
	for r := 1; r <= wire.ScreenRows; r++ {
		for c := 1; c <= wire.ScreenCols; c++ {
			b.rows[r][c] = ' '
		}
	}
	b.fields = b.fields[:0]
	b.CursorRow, b.CursorCol = 1, 1
}

func inBounds(row, col int) bool {
	return row >= 1 && row <= wire.ScreenRows && col >= 1 && col <= wire.ScreenCols
}

// SetChar writes ch at (row, col). Out-of-range writes are silently
// ignored (spec §4.6).
func (b *Buffer) SetChar(row, col int, ch byte) {
	if !inBounds(row, col) {
		return
	}
	b.rows[row][col] = ch
}

// GetChar reads the character at (row, col). Out-of-range reads return
// space (spec §4.6).
func (b *Buffer) GetChar(row, col int) byte {
	if !inBounds(row, col) {
		return ' '
	}
	return b.rows[row][col]
}

// ReadText reads length characters starting at (row, col), wrapping to the
// next row when col+i exceeds 80 columns.
func (b *Buffer) ReadText(row, col, length int) string {
	out := make([]byte, 0, length)
	r, c := row, col
	for i := 0; i < length; i++ {
		if c > wire.ScreenCols {
			r++
			c = 1
		}
		if r > wire.ScreenRows {
			out = append(out, ' ')
			continue
		}
		out = append(out, b.GetChar(r, c))
		c++
	}
	return string(out)
}

// ReadRow reads an entire row (80 characters).
func (b *Buffer) ReadRow(row int) string {
	return b.ReadText(row, 1, wire.ScreenCols)
}

// FillRange fills every cell from (fromRow, fromCol) up to but not
// including (toRow, toCol), in row-major order, with ch. This backs the
// Repeat-to-Address order (spec §4.4, §4.6).
func (b *Buffer) FillRange(fromRow, fromCol, toRow, toCol int, ch byte) {
	r, c := fromRow, fromCol
	for {
		if r > toRow || (r == toRow && c >= toCol) {
			break
		}
		if c > wire.ScreenCols {
			r++
			c = 1
			continue
		}
		b.SetChar(r, c, ch)
		c++
		if r > wire.ScreenRows {
			break
		}
	}
}

// AddField records a newly discovered field at (row, col) with the given
// FFW bytes. Length is filled in later once the next field's position (or
// screen end) is known; see FinalizeFieldLengths.
func (b *Buffer) AddField(row, col int, ffw0, ffw1 byte) {
	b.fields = append(b.fields, Field{Row: row, Col: col, FFW0: ffw0, FFW1: ffw1})
}

// FinalizeFieldLengths derives each field's length as the distance to the
// next field's attribute byte (in row-major reading order), or to screen
// end for the last field, minus one for the attribute cell itself (spec
// §4.4 "Field length is derived post-hoc").
func (b *Buffer) FinalizeFieldLengths() {
	for i := range b.fields {
		addr := fieldAddress(b.fields[i])
		var nextAddr int
		if i+1 < len(b.fields) {
			nextAddr = fieldAddress(b.fields[i+1])
		} else {
			nextAddr = wire.ScreenRows*wire.ScreenCols + 1
		}
		length := nextAddr - addr - 1
		if length < 0 {
			length = 0
		}
		b.fields[i].Len = length
	}
}

func fieldAddress(f Field) int {
	return (f.Row-1)*wire.ScreenCols + f.Col
}

// Fields returns the discovered fields, ordered by (row, col).
func (b *Buffer) Fields() []Field {
	out := make([]Field, len(b.fields))
	copy(out, b.fields)
	return out
}

// FindInputField returns the input field whose attribute byte sits at
// (row, col), if any.
func (b *Buffer) FindInputField(row, col int) (Field, bool) {
	for _, f := range b.fields {
		if f.Row == row && f.Col == col && f.IsInput() {
			return f, true
		}
	}
	return Field{}, false
}

// GetInputFields returns every discovered input (non-protected) field.
func (b *Buffer) GetInputFields() []Field {
	out := make([]Field, 0, len(b.fields))
	for _, f := range b.fields {
		if f.IsInput() {
			out = append(out, f)
		}
	}
	return out
}

// AdvanceAddress computes the (row, col) reached after advancing n cells
// from (row, col), wrapping across row boundaries. It is the shared
// stepping logic the parser and renderer both use while walking the grid
// in writing order.
func AdvanceAddress(row, col, n int) (int, int) {
	addr := (row-1)*wire.ScreenCols + col + n
	r := (addr-1)/wire.ScreenCols + 1
	c := (addr-1)%wire.ScreenCols + 1
	return r, c
}
