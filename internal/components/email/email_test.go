package email

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"greenrun/internal/component"
	"greenrun/internal/dict"
)

func TestSendSucceedsWithMockTransport(t *testing.T) {
	mock := &MockTransport{}
	sender := NewWithTransport(mock)
	data := dict.NewFrom(map[string]string{"borrower_name": "SMITH, JOHN A"})
	cfg := component.Configuration{ConfigBlob: map[string]any{
		"to": []string{"ops@example.com"}, "subject": "Escrow shortage for {{borrower_name}}", "body": "See attached.",
	}}
	res, err := sender.Execute(context.Background(), cfg, data)
	require.NoError(t, err)
	require.Equal(t, component.StatusSuccess, res.Status)
	require.Len(t, mock.Sent, 1)
	assert.Equal(t, "Escrow shortage for SMITH, JOHN A", mock.Sent[0].Subject)
}

func TestSendFailureSurfacesAsFailureResult(t *testing.T) {
	mock := &MockTransport{AlwaysFail: true}
	sender := NewWithTransport(mock)
	cfg := component.Configuration{ConfigBlob: map[string]any{
		"to": []string{"ops@example.com"}, "subject": "hi",
	}}
	res, err := sender.Execute(context.Background(), cfg, dict.New())
	require.NoError(t, err)
	require.Equal(t, component.StatusFailure, res.Status)
	assert.Empty(t, mock.Sent)
}

func TestMissingRecipientIsConfigError(t *testing.T) {
	sender := NewWithTransport(&MockTransport{})
	res, err := sender.Execute(context.Background(), component.Configuration{ConfigBlob: map[string]any{"subject": "hi"}}, dict.New())
	require.NoError(t, err)
	require.Equal(t, component.StatusFailure, res.Status)
	assert.Equal(t, "CONFIG_ERROR", res.Err.Code)
}
