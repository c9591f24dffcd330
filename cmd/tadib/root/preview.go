package root

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/notsao/tadibsync/internal/engine"
	"github.com/notsao/tadibsync/internal/ui"
)

func newPreviewCmd() *cobra.Command {
	var category string
	var priority string

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Show the points a task would be worth",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, tenant, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			prio, err := engine.ParsePriority(priority)
			if err != nil {
				return err
			}
			cats, err := svc.LoadCategories(ctx, tenant)
			if err != nil {
				return err
			}
			catID, err := resolveCategory(cats, category)
			if err != nil {
				return err
			}
			points, err := svc.PreviewPoints(ctx, tenant, prio, catID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s %s\n",
				ui.IconBolt, categoryLabel(cats, catID), ui.PriorityText(string(prio)), ui.Gold.Render(fmt.Sprintf("= %d points", points)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", "", "Category id or name")
	cmd.Flags().StringVarP(&priority, "priority", "p", "low", "Priority (low|medium|high)")

	return cmd
}
