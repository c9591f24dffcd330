package root

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/notsao/tadibsync/internal/engine"
	"github.com/notsao/tadibsync/internal/ui"
)

func newEditCmd() *cobra.Command {
	var title, description, category, priority, due string
	var clearDue bool

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a task; points are recomputed while it is in progress",
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
			cats, err := svc.LoadCategories(ctx, tenant)
			if err != nil {
				return err
			}

			var in engine.UpdateTaskInput
			flags := cmd.Flags()
			if flags.Changed("title") {
				in.Title = &title
			}
			if flags.Changed("desc") {
				in.Description = &description
			}
			if flags.Changed("category") {
				if category == "" || category == "none" {
					in.ClearCategory = true
				} else {
					catID, err := resolveCategory(cats, category)
					if err != nil {
						return err
					}
					in.CategoryID = catID
				}
			}
			if flags.Changed("priority") {
				p, err := engine.ParsePriority(priority)
				if err != nil {
					return err
				}
				in.Priority = &p
			}
			if flags.Changed("due") {
				d, err := parseDue(due, svc.Location())
				if err != nil {
					return err
				}
				in.DueDate = d
			}
			in.ClearDueDate = clearDue

			t, err := svc.UpdateTask(ctx, tenant, id, in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", ui.Good.Render(ui.IconSparkle+" Updated"), taskLine(*t, cats))
			return nil
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "New title")
	cmd.Flags().StringVarP(&description, "desc", "d", "", "New description")
	cmd.Flags().StringVarP(&category, "category", "c", "", "Category id or name (\"none\" clears it)")
	cmd.Flags().StringVarP(&priority, "priority", "p", "", "Priority (low|medium|high)")
	cmd.Flags().StringVar(&due, "due", "", "Due date (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&clearDue, "clear-due", false, "Remove the due date")

	return cmd
}
