package gs5250

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"greenrun/internal/catalog"
	"greenrun/internal/datastream"
	"greenrun/internal/dict"
	"greenrun/internal/textutil"
)

// stepError is the machine-readable failure a single declarative step
// produces; it maps directly onto component.Error (spec §4.8's closed
// failure-code set).
type stepError struct {
	Code    string
	Message string
	Detail  string
}

func (e *stepError) Error() string { return e.Code + ": " + e.Message }

func newStepError(code, format string, args ...any) *stepError {
	return &stepError{Code: code, Message: fmt.Sprintf(format, args...)}
}

const defaultErrorRow = 24

func runNavigate(c *Client, cat *catalog.Catalog, data *dict.Dict, step StepConfig, timeout time.Duration) *stepError {
	def, ok := catalog.Identify(cat, c.Screen)
	if !ok {
		return newStepError("FIELD_NOT_FOUND", "current screen does not match any catalog entry")
	}

	snapshot := data.Snapshot()
	names := make([]string, 0, len(step.Fields))
	for name := range step.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	modified := make([]datastream.ModifiedField, 0, len(names))
	for _, name := range names {
		fd, ok := def.Field(name)
		if !ok || !fd.IsInput() {
			return newStepError("FIELD_NOT_FOUND", "field %q not found on screen %q", name, def.ID)
		}
		value := textutil.ResolvePlaceholders(step.Fields[name], snapshot)
		padded := padField(value, fd.Length)
		modified = append(modified, datastream.ModifiedField{Row: fd.Row, Col: fd.Col + 1, Value: padded})
	}

	aid, err := aidByteFor(step.AIDKey)
	if err != nil {
		return newStepError("CONFIG_ERROR", "%s", err.Error())
	}

	if err := c.Submit(timeout, aid, modified); err != nil {
		return newStepError("TIMEOUT", "submitting input: %s", err.Error())
	}

	// A host that rejected the submission re-renders the screen with its
	// error text on the message row; that is a step failure regardless of
	// which screen came back.
	if msg := hostErrorText(c, cat); msg != "" {
		return newStepError("STEP_FAILED", "host rejected input: %s", msg)
	}

	if step.ExpectScreen != "" && !catalog.IsScreen(cat, c.Screen, step.ExpectScreen) {
		got, _ := catalog.Identify(cat, c.Screen)
		gotID := "<none>"
		if got != nil {
			gotID = got.ID
		}
		return newStepError("SCREEN_MISMATCH", "expected screen %q, got %q", step.ExpectScreen, gotID)
	}
	return nil
}

// hostErrorText reads the screen's message row (row 24). Text there counts
// as a host error only when the identified screen's catalog entry doesn't
// place static text on that row, so screens that legitimately use row 24
// for function-key hints are never misread as failures.
func hostErrorText(c *Client, cat *catalog.Catalog) string {
	line := strings.TrimSpace(c.Screen.ReadText(defaultErrorRow, 2, 78))
	if line == "" {
		return ""
	}
	if def, ok := catalog.Identify(cat, c.Screen); ok {
		for _, st := range def.StaticText {
			if st.Row == defaultErrorRow {
				return ""
			}
		}
	}
	return line
}

// padField left-aligns and space-pads (or truncates) value to exactly
// length characters (spec §4.8 "write its value (left-aligned,
// space-padded to field length)").
func padField(value string, length int) string {
	if len(value) >= length {
		return value[:length]
	}
	return value + strings.Repeat(" ", length-len(value))
}

func runAssert(c *Client, cat *catalog.Catalog, step StepConfig) *stepError {
	if step.ExpectScreen != "" && !catalog.IsScreen(cat, c.Screen, step.ExpectScreen) {
		got, _ := catalog.Identify(cat, c.Screen)
		gotID := "<none>"
		if got != nil {
			gotID = got.ID
		}
		return newStepError("SCREEN_MISMATCH", "expected screen %q, got %q", step.ExpectScreen, gotID)
	}

	if step.ErrorText != "" {
		row := step.ErrorRow
		if row == 0 {
			row = defaultErrorRow
		}
		line := c.Screen.ReadText(row, 2, 78)
		if strings.Contains(strings.ToLower(line), strings.ToLower(step.ErrorText)) {
			return newStepError("STEP_FAILED", "error text %q present on row %d", step.ErrorText, row)
		}
	}

	if len(step.AssertFields) == 0 {
		return nil
	}
	def, ok := catalog.Identify(cat, c.Screen)
	if !ok {
		return newStepError("FIELD_NOT_FOUND", "current screen does not match any catalog entry")
	}
	op := step.AssertOperator
	if op == "" {
		op = "equals"
	}
	names := make([]string, 0, len(step.AssertFields))
	for name := range step.AssertFields {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fd, ok := def.Field(name)
		if !ok {
			return newStepError("FIELD_NOT_FOUND", "field %q not found on screen %q", name, def.ID)
		}
		got := strings.TrimRight(c.Screen.ReadText(fd.Row, fd.Col+1, fd.Length), " ")
		want := step.AssertFields[name]
		if !assertMatch(op, got, want) {
			if isSensitiveKey(name) {
				return newStepError("STEP_FAILED", "field %q: %s assertion failed", name, op)
			}
			return newStepError("STEP_FAILED", "field %q: %s assertion failed (want %q, got %q)", name, op, want, got)
		}
	}
	return nil
}

func assertMatch(op, got, want string) bool {
	got, want = strings.ToLower(got), strings.ToLower(want)
	switch op {
	case "contains":
		return strings.Contains(got, want)
	case "starts_with":
		return strings.HasPrefix(got, want)
	case "ends_with":
		return strings.HasSuffix(got, want)
	default: // "equals"
		return got == want
	}
}

func runScrape(c *Client, cat *catalog.Catalog, data *dict.Dict, step StepConfig, out map[string]string) *stepError {
	def, ok := catalog.Identify(cat, c.Screen)
	if !ok {
		return newStepError("FIELD_NOT_FOUND", "current screen does not match any catalog entry")
	}
	for _, name := range step.ScrapeFields {
		fd, ok := def.Field(name)
		if !ok {
			return newStepError("FIELD_NOT_FOUND", "field %q not found on screen %q", name, def.ID)
		}
		value := strings.TrimRight(c.Screen.ReadText(fd.Row, fd.Col+1, fd.Length), " ")
		out[name] = value
		data.Set(name, value)
	}
	return nil
}
