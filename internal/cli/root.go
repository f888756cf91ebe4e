package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sadopc/sleeptrackr/internal/config"
)

// NewRootCmd creates the top-level "sleeptrackr" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "sleeptrackr",
		Short:         "Track how long and how well you sleep",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			cfgFile, _ := cmd.Flags().GetString("config")
			cfg, err := config.Load(cmd.Flags(), cfgFile)
			if err != nil {
				return err
			}
			tuiMode := cmd == cmd.Root() && app.Interactive()
			return app.open(cmd.Context(), cfg, tuiMode)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Interactive() {
				return app.RunTUI(cmd.Context(), app)
			}
			return printHistory(cmd, app)
		},
	}
	config.RegisterFlags(root.PersistentFlags())

	if app.Out != nil {
		root.SetOut(app.Out)
	}
	if app.Err != nil {
		root.SetErr(app.Err)
	}

	root.AddCommand(
		newStartCmd(app),
		newStopCmd(app),
		newClearCmd(app),
		newRateCmd(app),
		newHistoryCmd(app),
		newExportCmd(app),
		newVersionCmd(),
	)

	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "sleeptrackr", Version)
		},
	}
}
