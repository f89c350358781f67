package cogito

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate [graph file]",
	Short: "Validate a reasoning graph",
	Long: `Validate a reasoning graph against the causal, epistemic and structural
rule sets and print the resulting report.

The graph file may be JSON or YAML. The command exits non-zero when the
report contains error-severity violations.`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	g, err := loadGraphFile(args[0])
	if err != nil {
		return err
	}

	engine, _, err := newEngine()
	if err != nil {
		return err
	}

	report, err := engine.Validate(context.Background(), g)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	if err := printJSON(report); err != nil {
		return err
	}

	if !report.Passing() {
		return fmt.Errorf("graph has %d error violations", len(report.Errors()))
	}
	return nil
}
