// Package decision implements the decisioning component: evaluates an
// internal/cond condition tree against the data dictionary and writes a
// named boolean outcome (spec.md §6, SPEC_FULL.md §6).
package decision

import (
	"context"
	"time"

	"greenrun/internal/component"
	"greenrun/internal/cond"
	"greenrun/internal/dict"
)

const ComponentType = "decision"

// Config is decision's decoded component configuration. Condition mirrors
// cond.Condition's shape so it can be decoded straight from JSON.
type Config struct {
	Condition cond.Condition `json:"condition"`
	OutputKey string         `json:"output_key"`
	TrueValue string         `json:"true_value,omitempty"`
	FalseValue string        `json:"false_value,omitempty"`
}

// Decision is a stateless component.Component.
type Decision struct{}

func New() component.Component { return &Decision{} }

func (d *Decision) ComponentType() string { return ComponentType }

func (d *Decision) Execute(ctx context.Context, cfg component.Configuration, data *dict.Dict) (component.Result, error) {
	start := time.Now()
	var conf Config
	if err := component.DecodeBlob(cfg.ConfigBlob, &conf); err != nil {
		return fail(start, err.Error()), nil
	}
	if conf.OutputKey == "" {
		return fail(start, "output_key is required"), nil
	}

	trueVal, falseVal := conf.TrueValue, conf.FalseValue
	if trueVal == "" {
		trueVal = "true"
	}
	if falseVal == "" {
		falseVal = "false"
	}

	outcome := cond.Eval(conf.Condition, cond.MapFields(data.Snapshot()))
	value := falseVal
	if outcome {
		value = trueVal
	}

	data.Set(conf.OutputKey, value)
	return component.Result{
		Status:     component.StatusSuccess,
		OutputData: map[string]string{conf.OutputKey: value},
		DurationMs: time.Since(start).Milliseconds(),
	}, nil
}

func fail(start time.Time, message string) component.Result {
	return component.Result{
		Status:     component.StatusFailure,
		Err:        &component.Error{Code: "CONFIG_ERROR", Message: message},
		DurationMs: time.Since(start).Milliseconds(),
	}
}
