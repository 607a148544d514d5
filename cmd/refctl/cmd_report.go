package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/gyaneshwarpardhi/refgraph/internal/centrality"
	"github.com/gyaneshwarpardhi/refgraph/internal/ledger"
	"github.com/gyaneshwarpardhi/refgraph/internal/reach"
)

type report struct {
	Users      int                `json:"users"`
	Edges      int                `json:"edges"`
	Roots      []string           `json:"roots"`
	Top        []reach.Ranked     `json:"top"`
	Coverage   []string           `json:"coverage"`
	Centrality []centrality.Score `json:"centrality"`
}

func newReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print reach and centrality analytics for the seeded network",
		RunE: func(cmd *cobra.Command, args []string) error {
			k, _ := cmd.Flags().GetInt("top")
			kind, _ := cmd.Flags().GetString("kind")

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			l, err := ledger.Build(cfg)
			if err != nil {
				return fmt.Errorf("build ledger: %w", err)
			}
			re := reach.New(l)

			rep := report{
				Users:    l.UserCount(),
				Edges:    l.EdgeCount(),
				Roots:    l.Roots(),
				Top:      re.TopReferrersByReach(k),
				Coverage: re.UniqueReachExpansion(k),
			}
			switch kind {
			case "flow":
				rep.Centrality = centrality.FlowCentrality(l)
			case "betweenness":
				rep.Centrality = centrality.Betweenness(l)
			default:
				return fmt.Errorf("unsupported centrality kind %q (use 'flow' or 'betweenness')", kind)
			}
			if len(rep.Centrality) > k {
				rep.Centrality = rep.Centrality[:max(k, 0)]
			}

			return emit(cmd, rep, func(w io.Writer) {
				fmt.Fprintf(w, "users: %d  edges: %d  roots: %d\n", rep.Users, rep.Edges, len(rep.Roots))
				fmt.Fprintln(w, "\ntop referrers by reach score:")
				for _, r := range rep.Top {
					fmt.Fprintf(w, "  %-20s score=%-4d direct=%-3d indirect=%d\n", r.User, r.Score, r.Details.Direct, r.Details.Indirect)
				}
				fmt.Fprintf(w, "\ncoverage set: %v\n", rep.Coverage)
				fmt.Fprintf(w, "\n%s centrality:\n", kind)
				for _, s := range rep.Centrality {
					fmt.Fprintf(w, "  %-20s %.4g\n", s.User, s.Score)
				}
			})
		},
	}
	cmd.Flags().Int("top", 5, "Number of users to list per section")
	cmd.Flags().String("kind", "flow", "Centrality measure: flow or betweenness")
	return cmd
}
