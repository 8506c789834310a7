package httpclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"greenrun/internal/component"
	"greenrun/internal/dict"
)

func TestGetSucceedsAndResolvesPlaceholders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/loans/1000001", r.URL.Path)
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	c := NewWithClient(srv.Client())
	data := dict.NewFrom(map[string]string{"loan_number": "1000001"})
	cfg := component.Configuration{ConfigBlob: map[string]any{
		"url": srv.URL + "/loans/{{loan_number}}", "allow_private_network": true,
	}}
	res, err := c.Execute(context.Background(), cfg, data)
	require.NoError(t, err)
	require.Equal(t, component.StatusSuccess, res.Status)
	assert.Equal(t, "ok", res.OutputData["response_body"])
	assert.Equal(t, "200", res.OutputData["status_code"])
}

func TestNonSuccessStatusIsHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("not found"))
	}))
	defer srv.Close()

	c := NewWithClient(srv.Client())
	cfg := component.Configuration{ConfigBlob: map[string]any{"url": srv.URL, "allow_private_network": true}}
	res, err := c.Execute(context.Background(), cfg, dict.New())
	require.NoError(t, err)
	require.Equal(t, component.StatusFailure, res.Status)
	assert.Equal(t, "HTTP_ERROR", res.Err.Code)
}

func TestMissingURLIsConfigError(t *testing.T) {
	c := New()
	res, err := c.Execute(context.Background(), component.Configuration{ConfigBlob: map[string]any{}}, dict.New())
	require.NoError(t, err)
	require.Equal(t, component.StatusFailure, res.Status)
	assert.Equal(t, "CONFIG_ERROR", res.Err.Code)
}

func TestPrivateAddressBlockedWithoutAllowFlag(t *testing.T) {
	err := CheckEgress("http://127.0.0.1:9/", false)
	require.Error(t, err)
}

func TestPrivateAddressAllowedWithFlag(t *testing.T) {
	err := CheckEgress("http://127.0.0.1:9/", true)
	require.NoError(t, err)
}
