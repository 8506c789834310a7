package gs5250

import (
	"context"
	"errors"
	"time"

	"greenrun/internal/catalog"
	"greenrun/internal/component"
	"greenrun/internal/dict"

	"github.com/cenkalti/backoff/v4"
)

const defaultReadTimeout = 15 * time.Second

// Run drives one green-screen connector invocation end to end: load the
// catalog, connect, negotiate, run the declarative step script, and return
// a ComponentResult (spec §4.8).
func Run(ctx context.Context, cfg WorkflowConfig, data *dict.Dict) (component.Result, error) {
	start := time.Now()
	var logs []component.LogEntry
	logf := func(level component.LogLevel, msg string) {
		logs = append(logs, component.LogEntry{Timestamp: time.Now(), Level: level, Component: "greenscreen", Message: msg})
	}

	cat, err := catalog.Load(cfg.ScreenCatalogPath)
	if err != nil {
		return failureResult(start, logs, "CONFIG_ERROR", err.Error()), nil
	}

	client, err := Dial(ctx, cfg.Connection, defaultReadTimeout)
	if err != nil {
		code := "CONNECT_ERROR"
		if errors.Is(err, ErrNegotiate) {
			code = "NEGOTIATE_ERROR"
		}
		return failureResult(start, logs, code, err.Error()), nil
	}
	defer client.Close()

	if err := client.ReadScreen(defaultReadTimeout); err != nil {
		return failureResult(start, logs, "CONNECT_ERROR", err.Error()), nil
	}

	out := make(map[string]string)
	var pending *stepError

	for _, step := range cfg.Steps {
		if err := ctx.Err(); err != nil {
			return component.Result{}, err
		}

		deadline := time.Now().Add(stepTimeout(step))
		stepErr := runStepWithRetry(ctx, deadline, step, func(remaining time.Duration) *stepError {
			switch step.Type {
			case "navigate":
				return runNavigate(client, cat, data, step, remaining)
			case "assert":
				return runAssert(client, cat, step)
			case "scrape":
				return runScrape(client, cat, data, step, out)
			default:
				return newStepError("CONFIG_ERROR", "unknown step type %q", step.Type)
			}
		})

		if stepErr == nil {
			continue
		}
		logf(component.LogError, stepErr.Message)
		if step.OnFailure == "log_and_continue" {
			if pending == nil {
				pending = stepErr
			}
			continue
		}
		return component.Result{
			Status:     component.StatusFailure,
			OutputData: out,
			Err:        &component.Error{Code: stepErr.Code, Message: stepErr.Message, Detail: stepErr.Detail},
			Logs:       logs,
			DurationMs: time.Since(start).Milliseconds(),
		}, nil
	}

	status := component.StatusSuccess
	var resultErr *component.Error
	if pending != nil {
		status = component.StatusFailure
		resultErr = &component.Error{Code: pending.Code, Message: pending.Message, Detail: pending.Detail}
	}
	return component.Result{
		Status:     status,
		OutputData: out,
		Err:        resultErr,
		Logs:       logs,
		DurationMs: time.Since(start).Milliseconds(),
	}, nil
}

func stepTimeout(step StepConfig) time.Duration {
	if step.TimeoutSeconds > 0 {
		return time.Duration(step.TimeoutSeconds * float64(time.Second))
	}
	return defaultReadTimeout
}

// runStepWithRetry wraps fn with the step's configured retry policy.
// deadline bounds the whole call including every retry attempt (the
// engine's documented choice for timeout_seconds semantics); each attempt
// receives however much of that budget remains.
func runStepWithRetry(ctx context.Context, deadline time.Time, step StepConfig, fn func(remaining time.Duration) *stepError) *stepError {
	ctx, cancel := context.WithDeadline(ctx, deadline)
	defer cancel()

	attempt := func() *stepError {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return newStepError("TIMEOUT", "step timed out before this attempt started")
		}
		return fn(remaining)
	}

	if step.Retry == nil || step.Retry.MaxAttempts <= 1 {
		return attempt()
	}

	interval := time.Duration(step.Retry.BackoffSeconds * float64(time.Second))
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}

	var bo backoff.BackOff
	if step.Retry.Strategy == "fixed" {
		bo = backoff.NewConstantBackOff(interval)
	} else {
		eb := backoff.NewExponentialBackOff()
		eb.InitialInterval = interval
		bo = eb
	}
	bo = backoff.WithContext(backoff.WithMaxRetries(bo, uint64(step.Retry.MaxAttempts-1)), ctx)

	var lastErr *stepError
	err := backoff.Retry(func() error {
		lastErr = attempt()
		if lastErr == nil {
			return nil
		}
		return lastErr
	}, bo)
	if err != nil && lastErr == nil {
		lastErr = newStepError("TIMEOUT", "step timed out during retry: %s", err.Error())
	}
	return lastErr
}

func failureResult(start time.Time, logs []component.LogEntry, code, message string) component.Result {
	return component.Result{
		Status:     component.StatusFailure,
		Err:        &component.Error{Code: code, Message: message},
		Logs:       logs,
		DurationMs: time.Since(start).Milliseconds(),
	}
}
