package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"greenrun/internal/component"
	"greenrun/internal/dict"
	"greenrun/internal/logging"
)

// Engine runs workflow executions against a component registry.
type Engine struct {
	registry *component.Registry
	metrics  *metrics
}

// NewEngine builds an Engine dispatching through reg. reg is a real
// prometheus.Registerer when step-duration/failure metrics should be
// exported, or nil to skip instrumentation entirely.
func NewEngine(registry *component.Registry, reg prometheus.Registerer) *Engine {
	return &Engine{registry: registry, metrics: newMetrics(reg)}
}

// Run executes one workflow definition to completion: validates
// initial_parameters, then drives each step in order, applying retry and
// on_failure policy, until the run either finishes or a fail_fast step
// halts it. progress, if non-nil, receives one update per step attempt.
func (e *Engine) Run(ctx context.Context, wf *WorkflowDefinition, initialParameters map[string]string, progress func(Progress)) Result {
	log := logging.Get(logging.CategoryOrchestrator)
	executionID := uuid.NewString()
	log.Info("workflow %s: starting execution %s", wf.WorkflowID, executionID)

	data := dict.NewFrom(initialParameters)

	for _, key := range wf.InitialParameters {
		if !data.Has(key) {
			return Result{
				WorkflowID:  wf.WorkflowID,
				ExecutionID: executionID,
				FinalStatus: "Failure",
				Steps: []StepResult{{
					StepName: "<validate>", Status: "Failure",
					Error: fmt.Sprintf("CONFIG_ERROR: missing required initial parameter %q", key),
				}},
				FinalDataDictionary: data.Snapshot(),
			}
		}
	}

	var results []StepResult
	finalStatus := "Success"

	for _, step := range wf.Steps {
		if err := ctx.Err(); err != nil {
			log.Warn("workflow %s: execution %s cancelled: %v", wf.WorkflowID, executionID, err)
			finalStatus = "Failure"
			results = append(results, StepResult{StepName: step.StepName, Status: "Failure", Error: err.Error()})
			break
		}

		start := time.Now()
		var stepResult StepResult
		var halt bool

		if step.IsForeach() {
			stepResult = runForeach(ctx, e.registry, step, data, progress)
			halt = stepResult.Status == "Failure"
		} else {
			res, err := runComponentStep(ctx, e.registry, step, data, progress)
			duration := time.Since(start).Milliseconds()
			if err != nil {
				stepResult = StepResult{StepName: step.StepName, Status: "Failure", DurationMs: duration, Error: err.Error()}
				halt = true
			} else if res.Status == component.StatusSuccess {
				data.SetAll(res.OutputData)
				stepResult = StepResult{StepName: step.StepName, Status: "Success", DurationMs: duration}
				halt = false
			} else {
				stepResult = StepResult{StepName: step.StepName, Status: "Failure", DurationMs: duration, Error: res.Err.Error()}
				halt = step.OnFailure != "log_and_continue"
			}
			e.metrics.observeStep(time.Since(start).Seconds(), stepResult.Status == "Failure")
		}

		results = append(results, stepResult)
		if stepResult.Status == "Failure" {
			log.Warn("workflow %s: step %q failed: %s", wf.WorkflowID, step.StepName, stepResult.Error)
		}
		if halt {
			finalStatus = "Failure"
			break
		}
	}

	log.Info("workflow %s: execution %s finished with status %s", wf.WorkflowID, executionID, finalStatus)
	return Result{
		WorkflowID:          wf.WorkflowID,
		ExecutionID:         executionID,
		FinalStatus:         finalStatus,
		Steps:               results,
		FinalDataDictionary: data.Snapshot(),
	}
}
