package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"greenrun/internal/component"
	"greenrun/internal/dict"
)

// runForeach executes step.SubSteps once per element of the serialized row
// list stored under step.IterateKey, merging each row's fields into the
// dictionary before running the sub-steps (spec §4.12 "foreach step").
//
// After the loop, the dictionary retains the last element's fields (as the
// loop naturally leaves them) plus a sentinel "<iterateKey>_count" key
// recording how many rows were iterated — the documented choice for the
// open question of what survives the loop (SPEC_FULL.md §11, spec.md §4.12).
//
// The foreach step itself contributes exactly one StepResult to the
// workflow's final output, aggregating every row's sub-steps rather than
// flattening per-row sub-step results into the top-level list (sub-step
// names repeat across rows, so they cannot be distinct top-level entries);
// per-row detail is available through the progress callback instead.
func runForeach(ctx context.Context, reg *component.Registry, step StepDefinition, data *dict.Dict, progress func(Progress)) StepResult {
	start := time.Now()

	raw, ok := data.Get(step.IterateKey)
	if !ok || raw == "" {
		return StepResult{StepName: step.StepName, Status: "Failure", DurationMs: time.Since(start).Milliseconds(),
			Error: fmt.Sprintf("CONFIG_ERROR: iterate_key %q not found in dictionary", step.IterateKey)}
	}

	var rows []map[string]any
	if err := json.Unmarshal([]byte(raw), &rows); err != nil {
		return StepResult{StepName: step.StepName, Status: "Failure", DurationMs: time.Since(start).Milliseconds(),
			Error: fmt.Sprintf("CONFIG_ERROR: %s is not a JSON array of row objects: %s", step.IterateKey, err)}
	}

	for i, row := range rows {
		for k, v := range row {
			data.Set(k, fmt.Sprintf("%v", v))
		}
		for _, sub := range step.SubSteps {
			if err := ctx.Err(); err != nil {
				return StepResult{StepName: step.StepName, Status: "Failure", DurationMs: time.Since(start).Milliseconds(), Error: err.Error()}
			}

			res, err := runComponentStep(ctx, reg, sub, data, progress)
			if err != nil {
				return StepResult{StepName: step.StepName, Status: "Failure", DurationMs: time.Since(start).Milliseconds(), Error: err.Error()}
			}
			if res.Status == component.StatusSuccess {
				data.SetAll(res.OutputData)
				continue
			}

			onFailure := sub.OnFailure
			if onFailure == "log_and_continue" {
				continue
			}
			data.Set(step.IterateKey+"_count", strconv.Itoa(i+1))
			return StepResult{StepName: step.StepName, Status: "Failure", DurationMs: time.Since(start).Milliseconds(),
				Error: fmt.Sprintf("row %d, sub-step %q: %s", i, sub.StepName, res.Err.Error())}
		}
	}

	data.Set(step.IterateKey+"_count", strconv.Itoa(len(rows)))
	return StepResult{StepName: step.StepName, Status: "Success", DurationMs: time.Since(start).Milliseconds()}
}
