package cogito

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze the structure of a reasoning graph",
	Long: `Analyze a reasoning graph and print the results as JSON.

Available analyses:
- contradictions: clusters of mutually incompatible beliefs
- connectivity:   connected components and articulation points
- paths:          ranked support paths into a target node
- metrics:        per-node degree measures`,
}

var analyzeContradictionsCmd = &cobra.Command{
	Use:   "contradictions [graph file]",
	Short: "Find clusters of contradicting beliefs",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		g, err := loadGraphFile(args[0])
		if err != nil {
			return err
		}
		engine, _, err := newEngine()
		if err != nil {
			return err
		}

		clusters, err := engine.DetectContradictions(context.Background(), g)
		if err != nil {
			return fmt.Errorf("contradiction analysis failed: %w", err)
		}
		return printJSON(clusters)
	},
}

var analyzeConnectivityCmd = &cobra.Command{
	Use:   "connectivity [graph file]",
	Short: "Compute connected components and articulation points",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		g, err := loadGraphFile(args[0])
		if err != nil {
			return err
		}
		engine, _, err := newEngine()
		if err != nil {
			return err
		}

		result, err := engine.AnalyzeConnectivity(context.Background(), g)
		if err != nil {
			return fmt.Errorf("connectivity analysis failed: %w", err)
		}
		return printJSON(result)
	},
}

var pathsTarget string

var analyzePathsCmd = &cobra.Command{
	Use:   "paths [graph file]",
	Short: "Rank the support paths into a target node",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if pathsTarget == "" {
			return fmt.Errorf("--target is required")
		}
		g, err := loadGraphFile(args[0])
		if err != nil {
			return err
		}
		engine, _, err := newEngine()
		if err != nil {
			return err
		}

		result, err := engine.CriticalPaths(context.Background(), g, pathsTarget)
		if err != nil {
			return fmt.Errorf("path analysis failed: %w", err)
		}
		return printJSON(result)
	},
}

var analyzeMetricsCmd = &cobra.Command{
	Use:   "metrics [graph file]",
	Short: "Compute per-node degree metrics",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		g, err := loadGraphFile(args[0])
		if err != nil {
			return err
		}
		engine, _, err := newEngine()
		if err != nil {
			return err
		}

		metrics, err := engine.Metrics(context.Background(), g)
		if err != nil {
			return fmt.Errorf("metrics computation failed: %w", err)
		}
		return printJSON(metrics)
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzePathsCmd.Flags().StringVar(&pathsTarget, "target", "", "Target node id")

	analyzeCmd.AddCommand(analyzeContradictionsCmd)
	analyzeCmd.AddCommand(analyzeConnectivityCmd)
	analyzeCmd.AddCommand(analyzePathsCmd)
	analyzeCmd.AddCommand(analyzeMetricsCmd)
}
