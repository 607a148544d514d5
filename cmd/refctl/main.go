package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/gyaneshwarpardhi/refgraph/internal/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "refctl",
		Short: "Inspect and simulate referral networks",
		Long: `refctl loads a referral program from YAML and reports on it offline.

It prints reach and centrality analytics for the seeded network, runs growth
simulations, and searches for the smallest bonus that hits a hiring target.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON")
	rootCmd.PersistentFlags().String("config", "", "Program YAML config (defaults apply when empty)")

	rootCmd.AddCommand(
		newReportCmd(),
		newSimulateCmd(),
		newOptimizeCmd(),
	)
	return rootCmd
}

// loadConfig reads and validates --config, or returns the defaults.
func loadConfig(cmd *cobra.Command) (*config.ProgramConfig, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		return config.Default(), nil
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// emit writes v as indented JSON when --json is set and calls text otherwise.
func emit(cmd *cobra.Command, v any, text func(w io.Writer)) error {
	jsonOut, _ := cmd.Flags().GetBool("json")
	if jsonOut {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode JSON: %w", err)
		}
		return nil
	}
	text(cmd.OutOrStdout())
	return nil
}
