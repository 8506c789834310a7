// Package greenscreen adapts internal/gs5250's connector engine to the
// component.Component contract so the orchestrator's registry can dispatch
// to it like any other step (spec.md §4.12 "dynamic dispatch";
// SPEC_FULL.md §6).
package greenscreen

import (
	"context"
	"time"

	"greenrun/internal/component"
	"greenrun/internal/dict"
	"greenrun/internal/gs5250"
)

const ComponentType = "greenscreen"

// Connector is the component.Component adapter.
type Connector struct{}

func New() component.Component { return &Connector{} }

func (c *Connector) ComponentType() string { return ComponentType }

func (c *Connector) Execute(ctx context.Context, cfg component.Configuration, data *dict.Dict) (component.Result, error) {
	start := time.Now()
	wfCfg, err := gs5250.DecodeConfig(cfg.ConfigBlob)
	if err != nil {
		return component.Result{
			Status:     component.StatusFailure,
			Err:        &component.Error{Code: "CONFIG_ERROR", Message: err.Error()},
			DurationMs: time.Since(start).Milliseconds(),
		}, nil
	}
	return gs5250.Run(ctx, wfCfg, data)
}
