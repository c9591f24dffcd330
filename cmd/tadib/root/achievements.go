package root

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/notsao/tadibsync/internal/ui"
)

func newAchievementsCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:     "achievements",
		Aliases: []string{"ach"},
		Short:   "Show achievement tiers per category",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, tenant, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			list, err := svc.LoadAchievements(ctx, tenant)
			if err != nil {
				return err
			}
			stats, err := svc.AchievementStats(ctx, tenant)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconTrophy, fmt.Sprintf("Achievements %d/%d (%d%%)", stats.Earned, stats.Total, stats.Percentage)))
			for _, cs := range stats.Categories {
				name := cs.Category
				if name == "" {
					name = fmt.Sprintf("category #%d", cs.CategoryID)
				}
				line := fmt.Sprintf("%s %s", ui.H2.Render(name), ui.Muted.Render(fmt.Sprintf("%d/%d", cs.Earned, cs.Total)))
				if cs.Next != nil {
					line += fmt.Sprintf("  next %s %s %d/%d", ui.Swatch(cs.Next.Color, cs.Next.Tier), ui.Bar(cs.Next.Progress, 16), cs.Next.CurrentPoints, cs.Next.Threshold)
				} else {
					line += "  " + ui.Gold.Render("all tiers earned")
				}
				fmt.Fprintln(out, line)
			}

			if !all {
				return nil
			}
			fmt.Fprintln(out, "")
			for _, a := range list {
				state := ui.Muted.Render(fmt.Sprintf("%3.0f%%", a.Progress))
				if a.Achieved {
					state = ui.Good.Render("earned")
					if a.EarnedAt != nil {
						state += " " + ui.Muted.Render(a.EarnedAt.In(svc.Location()).Format("2006-01-02 15:04"))
					}
				}
				fmt.Fprintf(out, "- %-12s %s %-5d %s\n", a.Category, ui.Swatch(a.Color, fmt.Sprintf("%-8s", a.Tier)), a.Threshold, state)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, "List every tier record")

	return cmd
}
