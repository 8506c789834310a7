package mockhost

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"greenrun/internal/datastream"
)

func TestExtractMatchesAttributeOrFirstDataColumn(t *testing.T) {
	def := testScreenDef()

	modifiedAttr := []datastream.ModifiedField{{Row: 3, Col: 20, Value: "1000001   "}}
	assert.Equal(t, map[string]string{"loan_number": "1000001"}, Extract(def, modifiedAttr))

	modifiedData := []datastream.ModifiedField{{Row: 3, Col: 21, Value: "1000001   "}}
	assert.Equal(t, map[string]string{"loan_number": "1000001"}, Extract(def, modifiedData))
}

func TestExtractDropsUnmatchedFields(t *testing.T) {
	def := testScreenDef()
	modified := []datastream.ModifiedField{{Row: 12, Col: 5, Value: "nope"}}
	assert.Empty(t, Extract(def, modified))
}

func TestExtractIgnoresDisplayOnlyFields(t *testing.T) {
	def := testScreenDef()
	// borrower_name is a display field; it should never be writable input.
	modified := []datastream.ModifiedField{{Row: 5, Col: 20, Value: "HACKED"}}
	assert.Empty(t, Extract(def, modified))
}
