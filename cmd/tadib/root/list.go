package root

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/notsao/tadibsync/internal/engine"
	"github.com/notsao/tadibsync/internal/storage"
	"github.com/notsao/tadibsync/internal/ui"
)

func newListCmd() *cobra.Command {
	var all bool
	var category string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks (in progress first, by due date)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, tenant, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			tasks, err := svc.LoadTasks(ctx, tenant)
			if err != nil {
				return err
			}
			cats, err := svc.LoadCategories(ctx, tenant)
			if err != nil {
				return err
			}
			if category != "" {
				catID, err := resolveCategory(cats, category)
				if err != nil {
					return err
				}
				var filtered []storage.Task
				for _, t := range tasks {
					if t.CategoryID != nil && *t.CategoryID == *catID {
						filtered = append(filtered, t)
					}
				}
				tasks = filtered
			}

			out := cmd.OutOrStdout()
			open := engine.Upcoming(tasks, 0)
			fmt.Fprintln(out, ui.Heading(ui.IconTask, fmt.Sprintf("In progress (%d)", len(open))))
			if len(open) == 0 {
				fmt.Fprintln(out, ui.Muted.Render("(nothing to do)"))
			}
			for _, t := range open {
				fmt.Fprintln(out, taskLine(t, cats))
			}
			if !all {
				return nil
			}

			fmt.Fprintln(out, "")
			fmt.Fprintln(out, ui.H2.Render(ui.IconDone+" Completed"))
			for _, t := range tasks {
				if engine.Status(t.Status) == engine.StatusCompleted {
					fmt.Fprintln(out, taskLine(t, cats))
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, "Include completed tasks")
	cmd.Flags().StringVarP(&category, "category", "c", "", "Only tasks in this category (id or name)")

	return cmd
}
