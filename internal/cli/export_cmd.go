package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/sadopc/sleeptrackr/internal/export"
)

func newExportCmd(app *App) *cobra.Command {
	var formatFlag, out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export all nights to CSV or JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if formatFlag != "csv" && formatFlag != "json" {
				return fmt.Errorf("unknown export format %q (want csv or json)", formatFlag)
			}
			if out == "" {
				home, err := os.UserHomeDir()
				if err != nil {
					return fmt.Errorf("finding home directory: %w", err)
				}
				out = filepath.Join(home, fmt.Sprintf("sleeptrackr-export-%s.%s", time.Now().Format("2006-01-02"), formatFlag))
			}

			nights, err := app.Store.ListNights(cmd.Context())
			if err != nil {
				return err
			}
			if formatFlag == "csv" {
				err = export.ToCSV(nights, out)
			} else {
				err = export.ToJSON(nights, out)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d nights to %s\n", len(nights), out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&formatFlag, "format", "f", "csv", "Export format: csv or json")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (default ~/sleeptrackr-export-<date>.<format>)")
	return cmd
}
