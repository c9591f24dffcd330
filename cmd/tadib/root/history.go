package root

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/notsao/tadibsync/internal/ui"
)

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the daily points ledger",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, tenant, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			entries, err := svc.History(ctx, tenant)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconScroll, "Points history"))
			if len(entries) == 0 {
				fmt.Fprintln(out, ui.Muted.Render("(no completions in the retention window)"))
				return nil
			}
			best := 0
			for _, e := range entries {
				best = max(best, e.Points)
			}
			total := 0
			for _, e := range entries {
				total += e.Points
				pct := 0.0
				if best > 0 {
					pct = float64(e.Points) / float64(best) * 100
				}
				fmt.Fprintf(out, "%s %s %4d pts %s\n", e.Date, ui.Bar(pct, 20), e.Points, ui.Muted.Render(fmt.Sprintf("(%d task(s))", e.Tasks)))
			}
			fmt.Fprintln(out, ui.LabelValue("Total", total))
			return nil
		},
	}

	return cmd
}
