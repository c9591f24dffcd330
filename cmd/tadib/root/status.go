package root

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/notsao/tadibsync/internal/ui"
)

func newStatusCmd() *cobra.Command {
	var from, to string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show streak, monthly totals and insights",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, tenant, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			d, err := svc.Dashboard(ctx, tenant)
			if err != nil {
				return err
			}
			cats, err := svc.LoadCategories(ctx, tenant)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconSparkle, "Status: "+tenant))
			fmt.Fprintln(out, ui.LabelValue(ui.IconFire+" Streak", fmt.Sprintf("%d day(s)", d.Streak)))
			fmt.Fprintln(out, ui.LabelValue("This month", fmt.Sprintf("%d points from %d task(s)", d.Month.TotalPoints, d.Month.TotalTasks)))
			fmt.Fprintln(out, ui.LabelValue("All time", fmt.Sprintf("%d points, %d done, %d open", d.TotalPoints, d.CompletedTasks, d.ActiveTasks)))
			fmt.Fprintln(out, ui.LabelValue("Completion rate", fmt.Sprintf("%d%%", d.CompletionRate)))
			fmt.Fprintln(out, ui.LabelValue("Productivity", fmt.Sprintf("%d/100 %s", d.Productivity, ui.Bar(float64(d.Productivity), 20))))
			if from != "" {
				start, err := parseDue(from, svc.Location())
				if err != nil {
					return err
				}
				end := svc.Now()
				if to != "" {
					e, err := parseDue(to, svc.Location())
					if err != nil {
						return err
					}
					end = *e
				}
				ps, err := svc.Aggregate(ctx, tenant, svc.Window(*start, end))
				if err != nil {
					return err
				}
				label := fmt.Sprintf("%s..%s", start.Format("2006-01-02"), end.In(svc.Location()).Format("2006-01-02"))
				fmt.Fprintln(out, ui.LabelValue(label, fmt.Sprintf("%d points from %d task(s)", ps.TotalPoints, ps.TotalTasks)))
			}
			fmt.Fprintln(out, ui.LabelValue(ui.IconTrophy+" Achievements", fmt.Sprintf("%d/%d (%d%%)", d.Achievements.Earned, d.Achievements.Total, d.Achievements.Percentage)))
			fmt.Fprintln(out, "")

			fmt.Fprintln(out, ui.H2.Render(ui.IconChart+fmt.Sprintf(" Last %d days", len(d.Trend))))
			for _, p := range d.Trend {
				fmt.Fprintf(out, "- %s %4d pts %s\n", p.Date, p.Points, ui.Muted.Render(fmt.Sprintf("(%d task(s))", p.Tasks)))
			}
			fmt.Fprintln(out, "")

			if len(d.CategoryTotals) > 0 {
				fmt.Fprintln(out, ui.H2.Render(ui.IconTag+" By category"))
				for _, ct := range d.CategoryTotals {
					fmt.Fprintf(out, "- %s %d pts %s\n", ui.Swatch(ct.Color, ct.Category), ct.Points,
						ui.Muted.Render(fmt.Sprintf("(%d/%d done, %.1f pts/task)", ct.Completed, ct.Total, ct.Efficiency)))
				}
				fmt.Fprintln(out, "")
			}

			fmt.Fprintln(out, ui.H2.Render("🕑 Time of day"))
			for _, s := range d.TimeOfDay {
				fmt.Fprintf(out, "- %-9s %d\n", s.Slot, s.Tasks)
			}

			if len(d.Upcoming) > 0 {
				fmt.Fprintln(out, "")
				fmt.Fprintln(out, ui.H2.Render(ui.IconCal+" Up next"))
				for _, t := range d.Upcoming {
					fmt.Fprintln(out, taskLine(t, cats))
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "Also total completions from this day (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "Last day of the --from range, inclusive (default today)")

	return cmd
}
