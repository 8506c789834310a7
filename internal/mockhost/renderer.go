package mockhost

import (
	"sort"
	"strings"

	"greenrun/internal/catalog"
	"greenrun/internal/wire"
)

const errorMessageRow = 24
const errorMessageCol = 2
const errorMessageWidth = 78

// Render turns a catalog screen definition plus a data map (field name ->
// display value) into a fully framed wire record (spec §4.9 "Screen
// renderer"). errorMessage, if non-empty, is shown on row 24.
func Render(def *catalog.ScreenDefinition, data map[string]string, errorMessage string) ([]byte, error) {
	w := NewWriter().ClearUnit().WriteToDisplay(wire.CC1LockKeyboard, 0x00)

	statics := append([]catalog.StaticTextDefinition(nil), def.StaticText...)
	sort.Slice(statics, func(i, j int) bool {
		if statics[i].Row != statics[j].Row {
			return statics[i].Row < statics[j].Row
		}
		return statics[i].Col < statics[j].Col
	})
	for _, st := range statics {
		w.SetBufferAddress(st.Row, st.Col).WriteText(st.Text)
	}

	fields := append([]catalog.FieldDefinition(nil), def.Fields...)
	sort.Slice(fields, func(i, j int) bool {
		if fields[i].Row != fields[j].Row {
			return fields[i].Row < fields[j].Row
		}
		return fields[i].Col < fields[j].Col
	})

	var firstInput *catalog.FieldDefinition
	for i := range fields {
		f := fields[i]
		value := data[f.Name]
		if value == "" {
			value = f.DefaultValue
		}

		w.SetBufferAddress(f.Row, f.Col)
		switch {
		case !f.IsInput():
			w.StartProtectedField()
		case hasAttribute(f.Attributes, "hidden"):
			w.StartHiddenField()
		default:
			w.StartInputField()
		}
		w.WriteFieldValue(value, f.Length)
		w.StartProtectedField() // terminates this field, delimiting the next

		if f.IsInput() && firstInput == nil {
			firstInput = &fields[i]
		}
	}

	if errorMessage != "" {
		w.SetBufferAddress(errorMessageRow, errorMessageCol)
		w.WriteFieldValue(errorMessage, errorMessageWidth)
	}

	if firstInput != nil {
		w.SetBufferAddress(firstInput.Row, firstInput.Col+1)
	}
	w.InsertCursor()

	return w.Build(wire.OpcodeInvite)
}

func hasAttribute(attrs []string, name string) bool {
	for _, a := range attrs {
		if strings.EqualFold(a, name) {
			return true
		}
	}
	return false
}
