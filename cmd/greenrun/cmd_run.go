package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"greenrun/internal/component"
	"greenrun/internal/components/approval"
	"greenrun/internal/components/calculator"
	"greenrun/internal/components/dbio"
	"greenrun/internal/components/decision"
	"greenrun/internal/components/email"
	"greenrun/internal/components/greenscreen"
	"greenrun/internal/components/httpclient"
	"greenrun/internal/orchestrator"
)

var (
	workflowPath string
	params       []string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute a workflow file against the component registry",
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := os.ReadFile(workflowPath)
		if err != nil {
			return fmt.Errorf("reading workflow file: %w", err)
		}
		wf, err := orchestrator.LoadWorkflow(raw)
		if err != nil {
			return err
		}

		initial, err := parseParams(params)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		reg := defaultRegistry()
		engine := orchestrator.NewEngine(reg, prometheus.DefaultRegisterer)

		result := engine.Run(ctx, wf, initial, func(p orchestrator.Progress) {
			if logger != nil {
				logger.Sugar().Infof("step %s: %s (attempt %d/%d)", p.StepName, p.State, p.Attempt, p.MaxAttempts)
			}
		})

		out, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling result: %w", err)
		}
		fmt.Println(string(out))

		if result.FinalStatus != "Success" {
			return fmt.Errorf("workflow %s finished with status %s", result.WorkflowID, result.FinalStatus)
		}
		return nil
	},
}

func init() {
	runCmd.Flags().StringVar(&workflowPath, "workflow", "", "Path to the workflow definition JSON file")
	runCmd.Flags().StringArrayVar(&params, "param", nil, "Initial parameter as key=value (repeatable)")
	runCmd.MarkFlagRequired("workflow")
}

// parseParams turns a list of "key=value" strings into the initial
// parameter map the orchestrator seeds the data dictionary with
// (spec.md §6 "CLI accepts --workflow <path> and repeated --param key=value").
func parseParams(raw []string) (map[string]string, error) {
	out := make(map[string]string, len(raw))
	for _, p := range raw {
		k, v, ok := strings.Cut(p, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --param %q: expected key=value", p)
		}
		out[k] = v
	}
	return out, nil
}

// defaultRegistry registers every concrete external component
// (SPEC_FULL.md §6) under its canonical component-type string. The
// orchestrator never constructs a component directly (spec §9).
func defaultRegistry() *component.Registry {
	reg := component.NewRegistry()
	reg.Register(greenscreen.ComponentType, greenscreen.New)
	reg.Register(calculator.ComponentType, calculator.New)
	reg.Register(decision.ComponentType, decision.New)
	reg.Register(email.ComponentType, email.New)
	reg.Register(dbio.ComponentType, dbio.New)
	reg.Register(httpclient.ComponentType, httpclient.New)
	reg.Register(approval.ComponentType, approval.New)
	return reg
}
