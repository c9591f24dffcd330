package root

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/notsao/tadibsync/internal/config"
	"github.com/notsao/tadibsync/internal/ui"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconInfo, "Config"))
			fmt.Fprintln(out, ui.LabelValue("file", cfgPath))
			fmt.Fprintln(out, ui.LabelValue("user", cfg.User))
			fmt.Fprintln(out, ui.LabelValue("timezone", cfg.Timezone))
			fmt.Fprintln(out, ui.LabelValue("storage.backend", cfg.Storage.Backend))
			fmt.Fprintln(out, ui.LabelValue("storage.path", valueOr(cfg.Storage.Path, "(default)")))
			fmt.Fprintln(out, ui.LabelValue("history.retention_days", cfg.History.RetentionDays))
			fmt.Fprintln(out, ui.LabelValue("achievements.merge_aliases", cfg.Achievements.MergeAliases))
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a config key and save the file",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 2 {
				return errors.New("key and value are required")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := cfg.Set(args[0], args[1]); err != nil {
				return err
			}
			if err := config.Save(cfgPath, cfg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s = %s\n", ui.Good.Render("Saved"), args[0], args[1])
			return nil
		},
	})

	return cmd
}

func valueOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
