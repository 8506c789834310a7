package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"greenrun/internal/catalog"
	"greenrun/internal/mockhost"
	"greenrun/internal/orchestrator"
)

var (
	validateCatalogPath    string
	validateNavigationPath string
	validateWorkflowPath   string
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Load a catalog, navigation config, or workflow file without running it",
	RunE: func(cmd *cobra.Command, args []string) error {
		if validateCatalogPath == "" && validateNavigationPath == "" && validateWorkflowPath == "" {
			return fmt.Errorf("at least one of --catalog, --navigation, --workflow is required")
		}

		if validateCatalogPath != "" {
			cat, err := catalog.Load(validateCatalogPath)
			if err != nil {
				return fmt.Errorf("catalog: %w", err)
			}
			fmt.Printf("catalog OK: %d screen(s)\n", len(cat.Screens()))
		}

		if validateNavigationPath != "" {
			nav, err := mockhost.LoadNavigationConfig(validateNavigationPath)
			if err != nil {
				return fmt.Errorf("navigation config: %w", err)
			}
			fmt.Printf("navigation config OK: initial_screen=%s, %d transition(s)\n", nav.InitialScreen, len(nav.Transitions))
		}

		if validateWorkflowPath != "" {
			raw, err := os.ReadFile(validateWorkflowPath)
			if err != nil {
				return fmt.Errorf("reading workflow file: %w", err)
			}
			wf, err := orchestrator.LoadWorkflow(raw)
			if err != nil {
				return fmt.Errorf("workflow: %w", err)
			}
			fmt.Printf("workflow OK: %s v%s, %d step(s)\n", wf.WorkflowID, wf.WorkflowVersion, len(wf.Steps))
		}

		return nil
	},
}

func init() {
	validateCmd.Flags().StringVar(&validateCatalogPath, "catalog", "", "Path to a screen catalog (file or directory)")
	validateCmd.Flags().StringVar(&validateNavigationPath, "navigation", "", "Path to a navigation config JSON file")
	validateCmd.Flags().StringVar(&validateWorkflowPath, "workflow", "", "Path to a workflow definition JSON file")
}
