// Package approval implements the approval-gate component: it polls an
// HTTP endpoint on a fixed interval until the endpoint reports approved,
// rejected, or the poll budget is exhausted (spec.md §6, §8 scenario 6;
// SPEC_FULL.md §6). It reuses the process-wide shared HTTP client so
// approval polling and the httpclient component share one connection pool
// (spec.md §9 "Global state").
package approval

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"

	"greenrun/internal/component"
	"greenrun/internal/components/httpclient"
	"greenrun/internal/dict"
	"greenrun/internal/textutil"
)

const ComponentType = "approval"

const (
	defaultPollIntervalSeconds = 5.0
	defaultMaxPolls            = 60
)

// Config is approval's decoded component configuration.
type Config struct {
	EndpointURL         string  `json:"endpoint_url"`
	PollIntervalSeconds float64 `json:"poll_interval_seconds,omitempty"`
	MaxPolls            int     `json:"max_polls,omitempty"`
	AllowPrivateNetwork bool    `json:"allow_private_network,omitempty"`
}

type pollResponse struct {
	Status string `json:"status"`
}

// Gate is the component.Component adapter.
type Gate struct {
	httpClient *http.Client
}

func New() component.Component { return &Gate{httpClient: httpclient.Shared()} }

// NewWithClient builds a Gate against a caller-supplied *http.Client, for
// tests that point at an httptest.Server.
func NewWithClient(c *http.Client) component.Component { return &Gate{httpClient: c} }

func (g *Gate) ComponentType() string { return ComponentType }

func (g *Gate) Execute(ctx context.Context, cfg component.Configuration, data *dict.Dict) (component.Result, error) {
	start := time.Now()
	var conf Config
	if err := component.DecodeBlob(cfg.ConfigBlob, &conf); err != nil {
		return fail(start, "CONFIG_ERROR", 0, "%s", err.Error()), nil
	}
	if conf.EndpointURL == "" {
		return fail(start, "CONFIG_ERROR", 0, "endpoint_url is required"), nil
	}
	maxPolls := conf.MaxPolls
	if maxPolls <= 0 {
		maxPolls = defaultMaxPolls
	}
	interval := conf.PollIntervalSeconds
	if interval <= 0 {
		interval = defaultPollIntervalSeconds
	}

	url := textutil.ResolvePlaceholders(conf.EndpointURL, data.Snapshot())
	if err := httpclient.CheckEgress(url, conf.AllowPrivateNetwork); err != nil {
		return fail(start, "CONFIG_ERROR", 0, "%s", err.Error()), nil
	}

	polls := 0
	var rejected bool
	var lastErr error

	operation := func() error {
		if polls >= maxPolls {
			return backoff.Permanent(fmt.Errorf("poll budget of %d exhausted", maxPolls))
		}
		polls++
		status, err := g.poll(ctx, url)
		if err != nil {
			lastErr = err
			return err
		}
		switch status {
		case "approved":
			return nil
		case "rejected":
			rejected = true
			return backoff.Permanent(fmt.Errorf("approval rejected"))
		default:
			return fmt.Errorf("still pending (status %q)", status)
		}
	}

	bo := backoff.NewConstantBackOff(time.Duration(interval * float64(time.Second)))
	wrapped := backoff.WithMaxRetries(bo, uint64(maxPolls-1))
	err := backoff.Retry(operation, backoff.WithContext(wrapped, ctx))

	data.Set("approval_poll_count", strconv.Itoa(polls))

	if err != nil {
		if ctx.Err() != nil {
			return component.Result{}, ctx.Err()
		}
		if rejected {
			return fail(start, "REJECTED", polls, "approval was rejected after %d poll(s)", polls), nil
		}
		if lastErr != nil {
			return fail(start, "TIMEOUT", polls, "approval not decided after %d poll(s): %v", polls, lastErr), nil
		}
		return fail(start, "TIMEOUT", polls, "approval not decided after %d poll(s)", polls), nil
	}

	out := map[string]string{
		"approval_status":     "approved",
		"approval_poll_count": strconv.Itoa(polls),
	}
	data.SetAll(out)
	return component.Result{Status: component.StatusSuccess, OutputData: out, DurationMs: time.Since(start).Milliseconds()}, nil
}

func (g *Gate) poll(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", backoff.Permanent(err)
	}
	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("status %d: %s", resp.StatusCode, string(body))
	}
	var parsed pollResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", backoff.Permanent(fmt.Errorf("decoding poll response: %w", err))
	}
	return parsed.Status, nil
}

func fail(start time.Time, code string, polls int, format string, args ...any) component.Result {
	res := component.Result{
		Status:     component.StatusFailure,
		Err:        &component.Error{Code: code, Message: fmt.Sprintf(format, args...)},
		DurationMs: time.Since(start).Milliseconds(),
	}
	if polls > 0 {
		res.OutputData = map[string]string{"approval_poll_count": strconv.Itoa(polls)}
	}
	return res
}
