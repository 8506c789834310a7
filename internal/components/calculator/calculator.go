// Package calculator implements the arithmetic component: reads named
// operand keys from its config, resolves them through textutil's
// numeric parser, and writes a formatted result (spec.md §6, SPEC_FULL.md §6).
package calculator

import (
	"context"
	"fmt"
	"time"

	"greenrun/internal/component"
	"greenrun/internal/dict"
	"greenrun/internal/textutil"
)

const ComponentType = "calculator"

// Config is calculator's decoded component configuration.
type Config struct {
	Operation  string `json:"operation"` // add | subtract | multiply | divide | percentage
	LeftKey    string `json:"left_key"`
	RightKey   string `json:"right_key"`
	ResultKey  string `json:"result_key"`
	Decimals   int    `json:"decimals"`
	AsCurrency bool   `json:"as_currency"`
}

// Calculator is a stateless component.Component; a fresh instance is
// constructed per invocation by the registry factory.
type Calculator struct{}

func New() component.Component { return &Calculator{} }

func (c *Calculator) ComponentType() string { return ComponentType }

func (c *Calculator) Execute(ctx context.Context, cfg component.Configuration, data *dict.Dict) (component.Result, error) {
	start := time.Now()
	var conf Config
	if err := component.DecodeBlob(cfg.ConfigBlob, &conf); err != nil {
		return fail(start, "CONFIG_ERROR", "%s", err.Error()), nil
	}
	if conf.Operation == "" || conf.LeftKey == "" || conf.ResultKey == "" {
		return fail(start, "CONFIG_ERROR", "operation, left_key, and result_key are required"), nil
	}
	if conf.Operation != "percentage" && conf.RightKey == "" {
		return fail(start, "CONFIG_ERROR", "right_key is required for operation %q", conf.Operation), nil
	}

	left, ok := data.Get(conf.LeftKey)
	if !ok {
		return fail(start, "MISSING_INPUT", "key %q not found in dictionary", conf.LeftKey), nil
	}
	leftVal, ok := textutil.ParseNumeric(left)
	if !ok {
		return fail(start, "INVALID_INPUT", "key %q value %q is not numeric", conf.LeftKey, left), nil
	}

	var rightVal float64
	if conf.Operation != "percentage" {
		right, ok := data.Get(conf.RightKey)
		if !ok {
			return fail(start, "MISSING_INPUT", "key %q not found in dictionary", conf.RightKey), nil
		}
		rightVal, ok = textutil.ParseNumeric(right)
		if !ok {
			return fail(start, "INVALID_INPUT", "key %q value %q is not numeric", conf.RightKey, right), nil
		}
	}

	var result float64
	switch conf.Operation {
	case "add":
		result = leftVal + rightVal
	case "subtract":
		result = leftVal - rightVal
	case "multiply":
		result = leftVal * rightVal
	case "divide":
		if rightVal == 0 {
			return fail(start, "OPERATION_ERROR", "division by zero"), nil
		}
		result = leftVal / rightVal
	case "percentage":
		result = leftVal / 100
	default:
		return fail(start, "INVALID_INPUT", "unknown operation %q", conf.Operation), nil
	}

	decimals := conf.Decimals
	if decimals == 0 {
		decimals = 2
	}
	rounded := textutil.RoundBankers(result, decimals)

	var formatted string
	if conf.AsCurrency {
		formatted = textutil.FormatCurrency(rounded, decimals)
	} else {
		formatted = fmt.Sprintf("%.*f", decimals, rounded)
	}

	data.Set(conf.ResultKey, formatted)
	return component.Result{
		Status:     component.StatusSuccess,
		OutputData: map[string]string{conf.ResultKey: formatted},
		DurationMs: time.Since(start).Milliseconds(),
	}, nil
}

func fail(start time.Time, code, format string, args ...any) component.Result {
	return component.Result{
		Status:     component.StatusFailure,
		Err:        &component.Error{Code: code, Message: fmt.Sprintf(format, args...)},
		DurationMs: time.Since(start).Milliseconds(),
	}
}
