package root

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/notsao/tadibsync/internal/ui"
)

func newDoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "do <id>",
		Short: "Complete a task (id or unique prefix)",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("id is required")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, tenant, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			id, err := svc.ResolveTaskID(ctx, tenant, args[0])
			if err != nil {
				return err
			}
			res, err := svc.CompleteTask(ctx, tenant, id)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s %s\n", ui.Good.Render(ui.IconDone+" Completed"), res.Task.Title, ui.Gold.Render(fmt.Sprintf("+%d points", res.PointsEarned)))
			fmt.Fprintln(out, ui.LabelValue(ui.IconFire+" Streak", fmt.Sprintf("%d day(s)", res.Streak)))
			for _, a := range res.NewlyEarned {
				fmt.Fprintf(out, "%s %s %s\n", ui.BadgeEarned, ui.Swatch(a.Color, ui.IconTrophy+" "+a.Tier), a.Category)
			}
			return nil
		},
	}

	return cmd
}
