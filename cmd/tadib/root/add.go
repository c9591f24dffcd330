package root

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/notsao/tadibsync/internal/engine"
	"github.com/notsao/tadibsync/internal/ui"
)

func newAddCmd() *cobra.Command {
	var category string
	var priority string
	var due string
	var description string

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a task",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return errors.New("title is required")
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
			dueDate, err := parseDue(due, svc.Location())
			if err != nil {
				return err
			}

			t, err := svc.CreateTask(ctx, tenant, engine.CreateTaskInput{
				Title:       strings.Join(args, " "),
				Description: description,
				CategoryID:  catID,
				Priority:    prio,
				DueDate:     dueDate,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", ui.Good.Render(ui.IconPlus+" Added"), taskLine(*t, cats))
			return nil
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", "", "Category id or name")
	cmd.Flags().StringVarP(&priority, "priority", "p", "low", "Priority (low|medium|high)")
	cmd.Flags().StringVar(&due, "due", "", "Due date (YYYY-MM-DD)")
	cmd.Flags().StringVarP(&description, "desc", "d", "", "Description")

	return cmd
}
