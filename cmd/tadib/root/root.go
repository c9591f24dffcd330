package root

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/notsao/tadibsync/internal/config"
	"github.com/notsao/tadibsync/internal/ui"
)

const Version = "0.1.0"

var (
	cfgPath string
	userID  string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:           "tadib",
	Short:         "tadib: points, streaks and achievements for your tasks",
	Long:          "tadib is a local-first task tracker that scores completed tasks by category and priority, keeps a daily streak and awards tiered achievements.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("{{.Name}} v{{.Version}}\n")

	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", config.DefaultPath(), "Config file")
	rootCmd.PersistentFlags().StringVarP(&userID, "user", "u", "", "User (tenant) id; overrides config")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log engine events to stderr")

	rootCmd.AddCommand(
		newAddCmd(),
		newDoCmd(),
		newListCmd(),
		newEditCmd(),
		newRmCmd(),
		newPreviewCmd(),
		newStatusCmd(),
		newAchievementsCmd(),
		newHistoryCmd(),
		newCategoryCmd(),
		newBoardCmd(),
		newExportCmd(),
		newImportCmd(),
		newConfigCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, ui.Bad.Render(ui.IconError+" "+err.Error()))
		os.Exit(1)
	}
}
