package component

import (
	"context"
	"testing"

	"greenrun/internal/dict"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubComponent struct{ typ string }

func (s stubComponent) ComponentType() string { return s.typ }

func (s stubComponent) Execute(ctx context.Context, cfg Configuration, data *dict.Dict) (Result, error) {
	return Result{Status: StatusSuccess}, nil
}

func TestRegistryRegisterAndNew(t *testing.T) {
	r := NewRegistry()
	r.Register("stub", func() Component { return stubComponent{typ: "stub"} })

	c, ok := r.New("stub")
	require.True(t, ok)
	assert.Equal(t, "stub", c.ComponentType())

	res, err := c.Execute(context.Background(), Configuration{}, dict.New())
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, res.Status)
}

func TestRegistryUnknownType(t *testing.T) {
	r := NewRegistry()
	_, ok := r.New("missing")
	assert.False(t, ok)
}

func TestErrorString(t *testing.T) {
	e := &Error{Code: "TIMEOUT", Message: "step exceeded budget"}
	assert.Equal(t, "TIMEOUT: step exceeded budget", e.Error())
}
