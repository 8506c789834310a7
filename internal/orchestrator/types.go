// Package orchestrator sequences component invocations into a workflow run:
// load a workflow definition, dispatch each step through a component
// registry, apply retry and failure policy, and fold every step's output
// back into the shared data dictionary (spec §4.12).
package orchestrator

import (
	"encoding/json"
	"fmt"
)

// RetryConfig controls re-attempts of a single step after failure.
type RetryConfig struct {
	MaxAttempts    int     `json:"max_attempts"`
	BackoffSeconds float64 `json:"backoff_seconds,omitempty"`
	Strategy       string  `json:"strategy,omitempty"` // "fixed" or "exponential" (default)
}

// StepDefinition is one entry of a workflow's step list. Type "" (absent)
// means an ordinary component step; Type "foreach" switches to the
// iterating shape, which ignores ComponentType/ComponentConfig and uses
// IterateKey/SubSteps instead.
type StepDefinition struct {
	StepName string `json:"step_name"`
	Type     string `json:"type,omitempty"`

	// Component step. ComponentConfig is either an inline JSON object or a
	// JSON string naming a file that holds the object; see
	// decodeComponentConfig.
	ComponentType   string          `json:"component_type,omitempty"`
	ComponentConfig json.RawMessage `json:"component_config,omitempty"`
	OnFailure       string         `json:"on_failure,omitempty"` // fail_fast (default) | log_and_continue
	Retry           *RetryConfig   `json:"retry,omitempty"`
	TimeoutSeconds  float64        `json:"timeout_seconds,omitempty"`

	// foreach step
	IterateKey string           `json:"iterate_key,omitempty"`
	SubSteps   []StepDefinition `json:"sub_steps,omitempty"`
}

// IsForeach reports whether this step iterates a list of sub-steps rather
// than invoking a single component.
func (s StepDefinition) IsForeach() bool { return s.Type == "foreach" }

// WorkflowDefinition is the full, parsed shape of a workflow file (spec §6
// "Workflow definition").
type WorkflowDefinition struct {
	WorkflowID        string           `json:"workflow_id"`
	WorkflowVersion   string           `json:"workflow_version"`
	InitialParameters []string         `json:"initial_parameters,omitempty"`
	Steps             []StepDefinition `json:"steps"`
}

// LoadWorkflow parses a workflow definition from raw JSON bytes.
func LoadWorkflow(raw []byte) (*WorkflowDefinition, error) {
	var wf WorkflowDefinition
	if err := json.Unmarshal(raw, &wf); err != nil {
		return nil, fmt.Errorf("orchestrator: parsing workflow: %w", err)
	}
	if wf.WorkflowID == "" {
		return nil, fmt.Errorf("orchestrator: workflow_id is required")
	}
	return &wf, nil
}

// StepState is the closed set of progress states a step passes through
// (spec §4.12 "per-attempt progress updates").
type StepState string

const (
	StepRunning   StepState = "Running"
	StepRetrying  StepState = "Retrying"
	StepSucceeded StepState = "Succeeded"
	StepFailed    StepState = "Failed"
	StepSkipped   StepState = "Skipped"
)

// Progress is one per-attempt progress update emitted while a step runs.
type Progress struct {
	StepName    string
	State       StepState
	Attempt     int
	MaxAttempts int
	Message     string
}

// StepResult is one step's entry in the final workflow result.
type StepResult struct {
	StepName   string `json:"step_name"`
	Status     string `json:"status"` // Success | Failure | Skipped
	DurationMs int64  `json:"duration_ms"`
	Error      string `json:"error,omitempty"`
}

// Result is the orchestrator's final output for one workflow execution
// (spec §4.12 "Final output").
type Result struct {
	WorkflowID        string            `json:"workflow_id"`
	ExecutionID       string            `json:"execution_id"`
	FinalStatus       string            `json:"final_status"` // Success | Failure
	Steps             []StepResult      `json:"steps"`
	FinalDataDictionary map[string]string `json:"final_data_dictionary"`
}
