// Package httpclient implements the HTTP component and the single
// process-wide shared *http.Client every HTTP-speaking component uses
// (spec.md §6, §9 "Global state"; SPEC_FULL.md §6).
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"greenrun/internal/component"
	"greenrun/internal/dict"
	"greenrun/internal/textutil"
)

const ComponentType = "http"

var (
	sharedOnce   sync.Once
	sharedClient *http.Client
)

// Shared returns the process-wide *http.Client, building it on first use
// with no default timeout (per-call budgets are applied via ctx instead,
// spec.md §9 "Global state").
func Shared() *http.Client {
	sharedOnce.Do(func() {
		sharedClient = &http.Client{}
	})
	return sharedClient
}

// CheckEgress rejects rawURL if it resolves to a private or loopback
// address and allowPrivate is false (spec.md §6 "network egress guard").
func CheckEgress(rawURL string, allowPrivate bool) error {
	if allowPrivate {
		return nil
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	host := u.Hostname()
	ips, err := net.LookupIP(host)
	if err != nil {
		// Unresolvable host: let the request itself fail naturally rather
		// than guessing at its privacy here.
		return nil
	}
	for _, ip := range ips {
		if ip.IsPrivate() || ip.IsLoopback() || ip.IsLinkLocalUnicast() {
			return fmt.Errorf("egress to private address %s blocked (allow_private_network not set)", ip)
		}
	}
	return nil
}

// Config is the HTTP component's decoded configuration.
type Config struct {
	Method              string            `json:"method,omitempty"` // default GET
	URL                 string            `json:"url"`
	Headers             map[string]string `json:"headers,omitempty"`
	Body                string            `json:"body,omitempty"`
	OutputKey           string            `json:"output_key,omitempty"`
	AllowPrivateNetwork bool              `json:"allow_private_network,omitempty"`
	TimeoutSeconds      float64           `json:"timeout_seconds,omitempty"`
}

// Client is the component.Component adapter around Shared().
type Client struct {
	httpClient *http.Client
}

func New() component.Component { return &Client{httpClient: Shared()} }

// NewWithClient builds a Client against a caller-supplied *http.Client,
// for tests that point at an httptest.Server.
func NewWithClient(c *http.Client) component.Component { return &Client{httpClient: c} }

func (c *Client) ComponentType() string { return ComponentType }

func (c *Client) Execute(ctx context.Context, cfg component.Configuration, data *dict.Dict) (component.Result, error) {
	start := time.Now()
	var conf Config
	if err := component.DecodeBlob(cfg.ConfigBlob, &conf); err != nil {
		return fail(start, "CONFIG_ERROR", "%s", err.Error()), nil
	}
	if conf.URL == "" {
		return fail(start, "CONFIG_ERROR", "url is required"), nil
	}
	method := conf.Method
	if method == "" {
		method = http.MethodGet
	}

	snapshot := data.Snapshot()
	resolvedURL := textutil.ResolvePlaceholders(conf.URL, snapshot)
	resolvedBody := textutil.ResolvePlaceholders(conf.Body, snapshot)

	if err := CheckEgress(resolvedURL, conf.AllowPrivateNetwork); err != nil {
		return fail(start, "CONFIG_ERROR", "%s", err.Error()), nil
	}

	reqCtx := ctx
	if conf.TimeoutSeconds > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, time.Duration(conf.TimeoutSeconds*float64(time.Second)))
		defer cancel()
	}

	req, err := http.NewRequestWithContext(reqCtx, method, resolvedURL, bytes.NewBufferString(resolvedBody))
	if err != nil {
		return fail(start, "CONFIG_ERROR", "%s", err.Error()), nil
	}
	for k, v := range conf.Headers {
		req.Header.Set(k, textutil.ResolvePlaceholders(v, snapshot))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return component.Result{}, ctx.Err()
		}
		return fail(start, "REQUEST_FAILED", "%s", err.Error()), nil
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fail(start, "RESPONSE_PARSE_ERROR", "%s", err.Error()), nil
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fail(start, "HTTP_ERROR", "status %d: %s", resp.StatusCode, truncate(string(bodyBytes), 500)), nil
	}

	out := map[string]string{
		"status_code": fmt.Sprintf("%d", resp.StatusCode),
	}
	key := conf.OutputKey
	if key == "" {
		key = "response_body"
	}

	if strings.Contains(resp.Header.Get("Content-Type"), "json") {
		var decoded map[string]any
		if err := json.Unmarshal(bodyBytes, &decoded); err == nil {
			for k, v := range decoded {
				out[key+"."+k] = fmt.Sprintf("%v", v)
			}
		}
	}
	out[key] = string(bodyBytes)

	data.SetAll(out)
	return component.Result{Status: component.StatusSuccess, OutputData: out, DurationMs: time.Since(start).Milliseconds()}, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func fail(start time.Time, code, format string, args ...any) component.Result {
	return component.Result{
		Status:     component.StatusFailure,
		Err:        &component.Error{Code: code, Message: fmt.Sprintf(format, args...)},
		DurationMs: time.Since(start).Milliseconds(),
	}
}
