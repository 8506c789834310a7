package approval

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"greenrun/internal/component"
	"greenrun/internal/dict"
)

func statusSequence(statuses ...string) http.HandlerFunc {
	var n int32
	return func(w http.ResponseWriter, r *http.Request) {
		i := atomic.AddInt32(&n, 1) - 1
		status := statuses[len(statuses)-1]
		if int(i) < len(statuses) {
			status = statuses[i]
		}
		json.NewEncoder(w).Encode(map[string]string{"status": status})
	}
}

func TestApprovedOnThirdPoll(t *testing.T) {
	srv := httptest.NewServer(statusSequence("pending", "pending", "approved"))
	defer srv.Close()

	g := NewWithClient(srv.Client())
	cfg := component.Configuration{ConfigBlob: map[string]any{
		"endpoint_url": srv.URL, "poll_interval_seconds": 0.01, "max_polls": 5, "allow_private_network": true,
	}}
	res, err := g.Execute(context.Background(), cfg, dict.New())
	require.NoError(t, err)
	require.Equal(t, component.StatusSuccess, res.Status)
	assert.Equal(t, "approved", res.OutputData["approval_status"])
	assert.Equal(t, "3", res.OutputData["approval_poll_count"])
}

func TestRejectedOnSecondPoll(t *testing.T) {
	srv := httptest.NewServer(statusSequence("pending", "rejected"))
	defer srv.Close()

	g := NewWithClient(srv.Client())
	cfg := component.Configuration{ConfigBlob: map[string]any{
		"endpoint_url": srv.URL, "poll_interval_seconds": 0.01, "max_polls": 5, "allow_private_network": true,
	}}
	res, err := g.Execute(context.Background(), cfg, dict.New())
	require.NoError(t, err)
	require.Equal(t, component.StatusFailure, res.Status)
	assert.Equal(t, "REJECTED", res.Err.Code)
	assert.Equal(t, "2", res.OutputData["approval_poll_count"])
}

func TestPollBudgetExhaustedIsTimeout(t *testing.T) {
	srv := httptest.NewServer(statusSequence("pending"))
	defer srv.Close()

	g := NewWithClient(srv.Client())
	cfg := component.Configuration{ConfigBlob: map[string]any{
		"endpoint_url": srv.URL, "poll_interval_seconds": 0.01, "max_polls": 3, "allow_private_network": true,
	}}
	res, err := g.Execute(context.Background(), cfg, dict.New())
	require.NoError(t, err)
	require.Equal(t, component.StatusFailure, res.Status)
	assert.Equal(t, "TIMEOUT", res.Err.Code)
	assert.Equal(t, "3", res.OutputData["approval_poll_count"])
}

func TestMissingEndpointIsConfigError(t *testing.T) {
	g := New()
	res, err := g.Execute(context.Background(), component.Configuration{ConfigBlob: map[string]any{}}, dict.New())
	require.NoError(t, err)
	require.Equal(t, component.StatusFailure, res.Status)
	assert.Equal(t, "CONFIG_ERROR", res.Err.Code)
}
