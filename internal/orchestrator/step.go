package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"

	"greenrun/internal/component"
	"greenrun/internal/dict"
)

const defaultStepTimeout = 30 * time.Second

// runComponentStep resolves one ordinary (non-foreach) step's config
// against the dictionary, resolves its component, and runs it under the
// step's retry policy. progress receives one update per attempt plus a
// terminal Succeeded/Failed update; it may be nil.
func runComponentStep(ctx context.Context, reg *component.Registry, step StepDefinition, data *dict.Dict, progress func(Progress)) (component.Result, error) {
	emit := func(p Progress) {
		if progress != nil {
			progress(p)
		}
	}

	comp, ok := reg.New(step.ComponentType)
	if !ok {
		err := &component.Error{Code: "CONFIG_ERROR", Message: fmt.Sprintf("unknown component type %q", step.ComponentType)}
		emit(Progress{StepName: step.StepName, State: StepFailed, Message: err.Message})
		return component.Result{Status: component.StatusFailure, Err: err}, nil
	}

	blob, blobErr := decodeComponentConfig(step.ComponentConfig)
	if blobErr != nil {
		err := &component.Error{Code: "CONFIG_ERROR", Message: blobErr.Error()}
		emit(Progress{StepName: step.StepName, State: StepFailed, Message: err.Message})
		return component.Result{Status: component.StatusFailure, Err: err}, nil
	}

	deadline := time.Now().Add(stepTimeout(step))
	maxAttempts := 1
	if step.Retry != nil && step.Retry.MaxAttempts > 1 {
		maxAttempts = step.Retry.MaxAttempts
	}

	attempt := 0
	var last component.Result
	run := func() error {
		attempt++
		remaining := time.Until(deadline)
		if remaining <= 0 {
			last = component.Result{Status: component.StatusFailure, Err: &component.Error{Code: "TIMEOUT", Message: "step timed out before this attempt started"}}
			return nil // terminal: do not retry past the deadline
		}

		state := StepRunning
		if attempt > 1 {
			state = StepRetrying
		}
		emit(Progress{StepName: step.StepName, State: state, Attempt: attempt, MaxAttempts: maxAttempts})

		stepCtx, cancel := context.WithTimeout(ctx, remaining)
		defer cancel()

		snapshot := data.Snapshot()
		cfg := component.Configuration{Type: step.ComponentType, ConfigBlob: resolveConfig(blob, snapshot)}

		res, err := safeExecute(stepCtx, comp, cfg, data)
		if err != nil {
			return err // context cancellation: always rethrown, never retried
		}
		last = res
		if res.Status == component.StatusFailure {
			return fmt.Errorf("%s", res.Err.Error())
		}
		return nil
	}

	if maxAttempts <= 1 {
		// A Failure result comes back through last; only an error from
		// Execute itself is returned as an error.
		if err := run(); err != nil && last.Status != component.StatusFailure {
			return component.Result{}, err
		}
	} else {
		interval := backoffInterval(step.Retry)
		var bo backoff.BackOff
		if step.Retry.Strategy == "fixed" {
			bo = backoff.NewConstantBackOff(interval)
		} else {
			eb := backoff.NewExponentialBackOff()
			eb.InitialInterval = interval
			bo = eb
		}
		bo = backoff.WithContext(backoff.WithMaxRetries(bo, uint64(maxAttempts-1)), ctx)

		var ctxErr error
		_ = backoff.Retry(func() error {
			err := run()
			if err != nil && ctx.Err() != nil {
				ctxErr = err
				return backoff.Permanent(err)
			}
			return err
		}, bo)
		if ctxErr != nil {
			return component.Result{}, ctxErr
		}
	}

	if last.Status == component.StatusFailure {
		emit(Progress{StepName: step.StepName, State: StepFailed, Attempt: attempt, MaxAttempts: maxAttempts, Message: last.Err.Error()})
	} else {
		emit(Progress{StepName: step.StepName, State: StepSucceeded, Attempt: attempt, MaxAttempts: maxAttempts})
	}
	return last, nil
}

func backoffInterval(r *RetryConfig) time.Duration {
	if r.BackoffSeconds > 0 {
		return time.Duration(r.BackoffSeconds * float64(time.Second))
	}
	return 500 * time.Millisecond
}

func stepTimeout(step StepDefinition) time.Duration {
	if step.TimeoutSeconds > 0 {
		return time.Duration(step.TimeoutSeconds * float64(time.Second))
	}
	return defaultStepTimeout
}

// safeExecute runs comp.Execute and turns any unexpected panic into a
// STEP_EXCEPTION failure result instead of propagating (spec §4.12 "Catch
// any unexpected component exception as a STEP_EXCEPTION failure").
func safeExecute(ctx context.Context, comp component.Component, cfg component.Configuration, data *dict.Dict) (res component.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			res = component.Result{
				Status: component.StatusFailure,
				Err:    &component.Error{Code: "STEP_EXCEPTION", Message: fmt.Sprintf("component panicked: %v", r)},
			}
			err = nil
		}
	}()
	return comp.Execute(ctx, cfg, data)
}
