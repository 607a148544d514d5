package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/gyaneshwarpardhi/refgraph/internal/config"
	"github.com/gyaneshwarpardhi/refgraph/internal/growth"
)

func newSimulator(cfg *config.ProgramConfig) *growth.Simulator {
	return growth.New(growth.Config{
		PoolSize: cfg.Simulation.PoolSize,
		Capacity: cfg.Simulation.Capacity,
		MaxDays:  cfg.Simulation.MaxDays,
	}, growth.NewSource(cfg.Simulation.Seed))
}

func newSimulateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Simulate referral growth over the configured capacity pool",
		Long: `Simulate daily referral growth where every referrer with capacity left
succeeds with probability --p each day.

With --target, report how many days growth needs to reach the target instead.
With --trials > 1, average that many independent runs.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, _ := cmd.Flags().GetFloat64("p")
			days, _ := cmd.Flags().GetInt("days")
			trials, _ := cmd.Flags().GetInt("trials")
			target, _ := cmd.Flags().GetInt("target")

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			sim := newSimulator(cfg)

			if cmd.Flags().Changed("target") {
				d, err := sim.DaysToTarget(p, target)
				reachable := !errors.Is(err, growth.ErrUnreachable)
				out := map[string]any{"p": p, "target": target, "reachable": reachable, "days": d}
				return emit(cmd, out, func(w io.Writer) {
					if !reachable {
						fmt.Fprintf(w, "target %d is unreachable at p=%.3f (pool holds %d)\n", target, p, sim.MaxReferrals())
						return
					}
					fmt.Fprintf(w, "target %d reached after %d days at p=%.3f\n", target, d, p)
				})
			}

			if trials < 1 {
				return fmt.Errorf("--trials must be at least 1, got %d", trials)
			}
			runs := make([][]int, trials)
			for i := range runs {
				runs[i] = sim.Simulate(p, days)
			}
			sum := growth.Summarize(runs)
			return emit(cmd, sum, func(w io.Writer) {
				fmt.Fprintf(w, "runs=%d  mean final=%.1f  min=%d  max=%d\n", sum.Runs, sum.MeanFinal, sum.MinFinal, sum.MaxFinal)
				for d, v := range sum.MeanCurve {
					fmt.Fprintf(w, "  day %4d  %8.1f\n", d+1, v)
				}
			})
		},
	}
	cmd.Flags().Float64("p", 0.1, "Daily success probability per referrer")
	cmd.Flags().Int("days", 30, "Days to simulate")
	cmd.Flags().Int("trials", 1, "Independent runs to average")
	cmd.Flags().Int("target", 0, "Report days needed to reach this many referrals")
	return cmd
}
