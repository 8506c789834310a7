package orchestrator

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"greenrun/internal/component"
	"greenrun/internal/dict"
)

// TestMain verifies the engine's retry/backoff and cancellation paths
// never leak a goroutine, following the teacher's use of goleak around
// concurrency-sensitive tests.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeComponent is a scripted component.Component for engine tests: each
// call pops the next configured result/error off its queue and records the
// configuration it was handed.
type fakeComponent struct {
	typ     string
	results []component.Result
	calls   int
	lastCfg component.Configuration
}

func (f *fakeComponent) ComponentType() string { return f.typ }

func (f *fakeComponent) Execute(ctx context.Context, cfg component.Configuration, data *dict.Dict) (component.Result, error) {
	f.lastCfg = cfg
	i := f.calls
	f.calls++
	if i >= len(f.results) {
		i = len(f.results) - 1
	}
	return f.results[i], nil
}

func registryWith(components ...*fakeComponent) *component.Registry {
	reg := component.NewRegistry()
	for _, c := range components {
		c := c
		reg.Register(c.typ, func() component.Component { return c })
	}
	return reg
}

func TestRunSucceedsWhenEveryStepSucceeds(t *testing.T) {
	calc := &fakeComponent{typ: "calculator", results: []component.Result{
		{Status: component.StatusSuccess, OutputData: map[string]string{"sum": "42"}},
	}}
	reg := registryWith(calc)
	eng := NewEngine(reg, nil)

	wf := &WorkflowDefinition{
		WorkflowID: "wf-1",
		Steps: []StepDefinition{
			{StepName: "calc", ComponentType: "calculator"},
		},
	}

	res := eng.Run(context.Background(), wf, nil, nil)
	require.Equal(t, "Success", res.FinalStatus)
	assert.Equal(t, "42", res.FinalDataDictionary["sum"])
	require.Len(t, res.Steps, 1)
	assert.Equal(t, "Success", res.Steps[0].Status)
}

// Scenario 5: [email(fail), calculate] with email.on_failure=log_and_continue
// ends Success overall; step[0]=Failure, step[1]=Success; dictionary
// contains the calculator's output.
func TestLogAndContinueLetsLaterStepsRun(t *testing.T) {
	email := &fakeComponent{typ: "email", results: []component.Result{
		{Status: component.StatusFailure, Err: &component.Error{Code: "CONFIG_ERROR", Message: "smtp unreachable"}},
	}}
	calc := &fakeComponent{typ: "calculator", results: []component.Result{
		{Status: component.StatusSuccess, OutputData: map[string]string{"result": "7"}},
	}}
	reg := registryWith(email, calc)
	eng := NewEngine(reg, nil)

	wf := &WorkflowDefinition{
		WorkflowID: "wf-5",
		Steps: []StepDefinition{
			{StepName: "notify", ComponentType: "email", OnFailure: "log_and_continue"},
			{StepName: "calc", ComponentType: "calculator"},
		},
	}

	res := eng.Run(context.Background(), wf, nil, nil)
	require.Equal(t, "Success", res.FinalStatus)
	require.Len(t, res.Steps, 2)
	assert.Equal(t, "Failure", res.Steps[0].Status)
	assert.Equal(t, "Success", res.Steps[1].Status)
	assert.Equal(t, "7", res.FinalDataDictionary["result"])
}

func TestFailFastHaltsRemainingSteps(t *testing.T) {
	broken := &fakeComponent{typ: "calculator", results: []component.Result{
		{Status: component.StatusFailure, Err: &component.Error{Code: "OPERATION_ERROR", Message: "divide by zero"}},
	}}
	never := &fakeComponent{typ: "decision", results: []component.Result{
		{Status: component.StatusSuccess},
	}}
	reg := registryWith(broken, never)
	eng := NewEngine(reg, nil)

	wf := &WorkflowDefinition{
		WorkflowID: "wf-halt",
		Steps: []StepDefinition{
			{StepName: "calc", ComponentType: "calculator"},
			{StepName: "decide", ComponentType: "decision"},
		},
	}

	res := eng.Run(context.Background(), wf, nil, nil)
	require.Equal(t, "Failure", res.FinalStatus)
	require.Len(t, res.Steps, 1)
	assert.Equal(t, 0, never.calls)
}

func TestMissingInitialParameterFailsBeforeAnyStep(t *testing.T) {
	reg := registryWith(&fakeComponent{typ: "calculator"})
	eng := NewEngine(reg, nil)

	wf := &WorkflowDefinition{
		WorkflowID:        "wf-params",
		InitialParameters: []string{"loan_number"},
		Steps:             []StepDefinition{{StepName: "calc", ComponentType: "calculator"}},
	}

	res := eng.Run(context.Background(), wf, map[string]string{}, nil)
	require.Equal(t, "Failure", res.FinalStatus)
	assert.Contains(t, res.Steps[0].Error, "loan_number")
}

func TestUnknownComponentTypeYieldsConfigError(t *testing.T) {
	eng := NewEngine(component.NewRegistry(), nil)
	wf := &WorkflowDefinition{
		WorkflowID: "wf-unknown",
		Steps:      []StepDefinition{{StepName: "mystery", ComponentType: "does-not-exist"}},
	}
	res := eng.Run(context.Background(), wf, nil, nil)
	require.Equal(t, "Failure", res.FinalStatus)
	assert.Contains(t, res.Steps[0].Error, "CONFIG_ERROR")
}

func TestRetrySucceedsOnSecondAttempt(t *testing.T) {
	flaky := &fakeComponent{typ: "http", results: []component.Result{
		{Status: component.StatusFailure, Err: &component.Error{Code: "REQUEST_FAILED", Message: "timeout"}},
		{Status: component.StatusSuccess, OutputData: map[string]string{"status": "200"}},
	}}
	reg := registryWith(flaky)
	eng := NewEngine(reg, nil)

	wf := &WorkflowDefinition{
		WorkflowID: "wf-retry",
		Steps: []StepDefinition{
			{StepName: "call", ComponentType: "http", Retry: &RetryConfig{MaxAttempts: 3, BackoffSeconds: 0.01, Strategy: "fixed"}},
		},
	}

	res := eng.Run(context.Background(), wf, nil, nil)
	require.Equal(t, "Success", res.FinalStatus)
	assert.Equal(t, 2, flaky.calls)
	assert.Equal(t, "200", res.FinalDataDictionary["status"])
}

func TestForeachMergesEachRowAndRecordsCount(t *testing.T) {
	collector := &fakeComponent{typ: "calculator", results: []component.Result{
		{Status: component.StatusSuccess, OutputData: map[string]string{"seen": "yes"}},
	}}
	reg := registryWith(collector)
	eng := NewEngine(reg, nil)

	wf := &WorkflowDefinition{
		WorkflowID: "wf-foreach",
		Steps: []StepDefinition{
			{
				StepName:   "per-loan",
				Type:       "foreach",
				IterateKey: "loans",
				SubSteps:   []StepDefinition{{StepName: "touch", ComponentType: "calculator"}},
			},
		},
	}

	data := map[string]string{"loans": `[{"loan_number":"1000001"},{"loan_number":"1000002"}]`}
	res := eng.Run(context.Background(), wf, data, nil)
	require.Equal(t, "Success", res.FinalStatus)
	assert.Equal(t, "2", res.FinalDataDictionary["loans_count"])
	assert.Equal(t, "1000002", res.FinalDataDictionary["loan_number"])
	assert.Equal(t, 2, collector.calls)
}

func TestComponentConfigInlineResolvesPlaceholders(t *testing.T) {
	calc := &fakeComponent{typ: "calculator", results: []component.Result{{Status: component.StatusSuccess}}}
	reg := registryWith(calc)
	eng := NewEngine(reg, nil)

	wf := &WorkflowDefinition{
		WorkflowID: "wf-inline-cfg",
		Steps: []StepDefinition{
			{StepName: "calc", ComponentType: "calculator", ComponentConfig: json.RawMessage(`{"left_key": "{{operand}}"}`)},
		},
	}

	res := eng.Run(context.Background(), wf, map[string]string{"operand": "balance"}, nil)
	require.Equal(t, "Success", res.FinalStatus)
	assert.Equal(t, "balance", calc.lastCfg.ConfigBlob["left_key"])
}

func TestComponentConfigAsPathLoadsReferencedFile(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "calc.json")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`{"operation": "add", "left_key": "{{operand}}"}`), 0o644))

	calc := &fakeComponent{typ: "calculator", results: []component.Result{{Status: component.StatusSuccess}}}
	reg := registryWith(calc)
	eng := NewEngine(reg, nil)

	rawRef, err := json.Marshal(cfgPath)
	require.NoError(t, err)
	wf := &WorkflowDefinition{
		WorkflowID: "wf-path-cfg",
		Steps: []StepDefinition{
			{StepName: "calc", ComponentType: "calculator", ComponentConfig: rawRef},
		},
	}

	res := eng.Run(context.Background(), wf, map[string]string{"operand": "balance"}, nil)
	require.Equal(t, "Success", res.FinalStatus)
	assert.Equal(t, "add", calc.lastCfg.ConfigBlob["operation"])
	assert.Equal(t, "balance", calc.lastCfg.ConfigBlob["left_key"])
}

func TestComponentConfigMissingPathIsConfigError(t *testing.T) {
	calc := &fakeComponent{typ: "calculator", results: []component.Result{{Status: component.StatusSuccess}}}
	eng := NewEngine(registryWith(calc), nil)

	wf := &WorkflowDefinition{
		WorkflowID: "wf-bad-cfg",
		Steps: []StepDefinition{
			{StepName: "calc", ComponentType: "calculator", ComponentConfig: json.RawMessage(`"/nonexistent/config.json"`)},
		},
	}

	res := eng.Run(context.Background(), wf, nil, nil)
	require.Equal(t, "Failure", res.FinalStatus)
	assert.Contains(t, res.Steps[0].Error, "CONFIG_ERROR")
	assert.Equal(t, 0, calc.calls)
}

func TestContextCancellationHaltsRun(t *testing.T) {
	reg := registryWith(&fakeComponent{typ: "calculator"})
	eng := NewEngine(reg, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	wf := &WorkflowDefinition{
		WorkflowID: "wf-cancel",
		Steps: []StepDefinition{
			{StepName: "calc", ComponentType: "calculator"},
		},
	}
	res := eng.Run(ctx, wf, nil, nil)
	require.Equal(t, "Failure", res.FinalStatus)
}

func TestProgressReportsRunningAndSucceeded(t *testing.T) {
	calc := &fakeComponent{typ: "calculator", results: []component.Result{{Status: component.StatusSuccess}}}
	reg := registryWith(calc)
	eng := NewEngine(reg, nil)

	var states []StepState
	wf := &WorkflowDefinition{
		WorkflowID: "wf-progress",
		Steps:      []StepDefinition{{StepName: "calc", ComponentType: "calculator"}},
	}
	eng.Run(context.Background(), wf, nil, func(p Progress) { states = append(states, p.State) })
	require.Contains(t, states, StepRunning)
	require.Contains(t, states, StepSucceeded)
}

func TestRunTimesOutAcrossAllRetries(t *testing.T) {
	alwaysFails := &fakeComponent{typ: "http", results: []component.Result{
		{Status: component.StatusFailure, Err: &component.Error{Code: "REQUEST_FAILED", Message: "down"}},
	}}
	reg := registryWith(alwaysFails)
	eng := NewEngine(reg, nil)

	wf := &WorkflowDefinition{
		WorkflowID: "wf-timeout",
		Steps: []StepDefinition{
			{
				StepName: "call", ComponentType: "http",
				TimeoutSeconds: 0.05,
				Retry:          &RetryConfig{MaxAttempts: 100, BackoffSeconds: 0.02, Strategy: "fixed"},
			},
		},
	}
	start := time.Now()
	res := eng.Run(context.Background(), wf, nil, nil)
	require.Equal(t, "Failure", res.FinalStatus)
	assert.Less(t, time.Since(start), 2*time.Second)
}
