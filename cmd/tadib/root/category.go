package root

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/notsao/tadibsync/internal/storage"
	"github.com/notsao/tadibsync/internal/ui"
)

func newCategoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "category",
		Aliases: []string{"cat"},
		Short:   "Manage categories",
	}
	cmd.AddCommand(
		newCategoryListCmd(),
		newCategoryAddCmd(),
		newCategoryEditCmd(),
		newCategoryRmCmd(),
	)
	return cmd
}

func newCategoryListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List categories",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, tenant, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			cats, err := svc.LoadCategories(ctx, tenant)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconTag, "Categories"))
			for _, c := range cats {
				fmt.Fprintf(out, "%3d %s %s %s\n", c.ID, ui.Swatch(c.Color, fmt.Sprintf("%-14s", c.Name)),
					ui.Gold.Render(fmt.Sprintf("%3d pts", c.BasePoints)), ui.Muted.Render(c.Color+" "+c.Icon))
			}
			return nil
		},
	}
}

func newCategoryAddCmd() *cobra.Command {
	var points int
	var color, icon string

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a category",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("name is required")
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

			c, err := svc.AddCategory(ctx, tenant, storage.Category{Name: args[0], BasePoints: points, Color: color, Icon: icon})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s #%d %s (%d pts)\n", ui.Good.Render(ui.IconPlus+" Added"), c.ID, ui.Swatch(c.Color, c.Name), c.BasePoints)
			return nil
		},
	}

	cmd.Flags().IntVarP(&points, "points", "p", 0, "Base points (default 1)")
	cmd.Flags().StringVar(&color, "color", "", "Hex color")
	cmd.Flags().StringVar(&icon, "icon", "", "Icon name")

	return cmd
}

func newCategoryEditCmd() *cobra.Command {
	var name, color, icon string
	var points int

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a category; in-progress tasks are rescored",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("id is required")
			}
			if _, err := strconv.Atoi(args[0]); err != nil {
				return errors.New("id must be an integer")
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

			id, _ := strconv.Atoi(args[0])
			cats, err := svc.LoadCategories(ctx, tenant)
			if err != nil {
				return err
			}
			var cur *storage.Category
			for i := range cats {
				if cats[i].ID == id {
					cur = &cats[i]
				}
			}
			if cur == nil {
				return fmt.Errorf("category %d not found", id)
			}

			flags := cmd.Flags()
			if flags.Changed("name") {
				cur.Name = name
			}
			if flags.Changed("points") {
				cur.BasePoints = points
			}
			if flags.Changed("color") {
				cur.Color = color
			}
			if flags.Changed("icon") {
				cur.Icon = icon
			}
			c, err := svc.UpdateCategory(ctx, tenant, *cur)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s #%d %s (%d pts)\n", ui.Good.Render(ui.IconSparkle+" Updated"), c.ID, ui.Swatch(c.Color, c.Name), c.BasePoints)
			return nil
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "Name")
	cmd.Flags().IntVarP(&points, "points", "p", 0, "Base points")
	cmd.Flags().StringVar(&color, "color", "", "Hex color")
	cmd.Flags().StringVar(&icon, "icon", "", "Icon name")

	return cmd
}

func newCategoryRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a category (its tasks become uncategorized)",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("id is required")
			}
			if _, err := strconv.Atoi(args[0]); err != nil {
				return errors.New("id must be an integer")
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

			id, _ := strconv.Atoi(args[0])
			if err := svc.DeleteCategory(ctx, tenant, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s #%d\n", ui.Warn.Render("Deleted category"), id)
			return nil
		},
	}
}
