package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/gyaneshwarpardhi/refgraph/internal/bonus"
	"github.com/gyaneshwarpardhi/refgraph/internal/formula"
)

func newOptimizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "optimize",
		Short: "Find the smallest bonus that reaches a referral target",
		Long: `Binary-search bonus amounts for the smallest one whose simulated growth
reaches --target referrals within --days.

The adoption formula maps the variable "bonus" to a daily success
probability, for example "min(1, bonus / 5000)".`,
		RunE: func(cmd *cobra.Command, args []string) error {
			days, _ := cmd.Flags().GetInt("days")
			target, _ := cmd.Flags().GetInt("target")
			src, _ := cmd.Flags().GetString("formula")
			verbose, _ := cmd.Flags().GetBool("trace")

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if src == "" {
				src = cfg.Optimizer.AdoptionFormula
			}
			eps := cfg.Optimizer.Eps
			if cmd.Flags().Changed("eps") {
				eps, _ = cmd.Flags().GetInt("eps")
			}
			adoption, err := formula.Adoption(src)
			if err != nil {
				return err
			}

			opt := bonus.New(bonus.Config{MaxBonus: cfg.Optimizer.MaxBonus, Step: cfg.Optimizer.Step}, newSimulator(cfg))
			res := opt.Search(days, target, adoption, eps)
			return emit(cmd, res, func(w io.Writer) {
				if res.Found {
					fmt.Fprintf(w, "minimum bonus: %d (adoption %.3f)\n", res.Bonus, adoption(float64(res.Bonus)))
				} else {
					fmt.Fprintf(w, "no bonus up to %d reaches %d referrals in %d days\n", cfg.Optimizer.MaxBonus, target, days)
				}
				if verbose {
					for _, p := range res.Probes {
						fmt.Fprintf(w, "  bonus=%-6d p=%.3f total=%-5d met=%t\n", p.Bonus, p.Probability, p.Total, p.Met)
					}
				}
			})
		},
	}
	cmd.Flags().Int("days", 30, "Days the target must be reached within")
	cmd.Flags().Int("target", 500, "Referrals to reach")
	cmd.Flags().String("formula", "", "Adoption formula over bonus (defaults to the config)")
	cmd.Flags().Int("eps", 0, "Stop once the search interval is narrower than this")
	cmd.Flags().Bool("trace", false, "Print every probed bonus")
	return cmd
}
