package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/sadopc/sleeptrackr/internal/format"
)

func newStartCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start tracking tonight's sleep",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if cur := app.Tracker.Tonight.Get(); app.Tracker.Active() {
				fmt.Fprintf(out, "Already tracking since %s\n", cur.StartTime.Local().Format("15:04"))
				return nil
			}
			if err := <-app.Tracker.StartTracking(); err != nil {
				return fmt.Errorf("start tracking: %w", err)
			}
			cur := app.Tracker.Tonight.Get()
			if cur == nil {
				return errors.New("start tracking: night was not recorded")
			}
			fmt.Fprintf(out, "Tracking sleep since %s (night #%d)\n", cur.StartTime.Local().Format("15:04"), cur.ID)
			return nil
		},
	}
}

func newStopCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop tracking and record the wake-up time",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if !app.Tracker.Active() {
				fmt.Fprintln(out, "No sleep session in progress")
				return nil
			}
			if err := <-app.Tracker.StopTracking(); err != nil {
				return fmt.Errorf("stop tracking: %w", err)
			}
			n := app.Tracker.Tonight.Get()
			fmt.Fprintf(out, "Slept %s. Rate it with: sleeptrackr rate %d <0-5>\n", format.Elapsed(n.Duration()), n.ID)
			return nil
		},
	}
}

func newClearCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all recorded nights",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				if !app.Interactive() {
					return errors.New("refusing to clear history without --yes")
				}
				err := huh.NewConfirm().
					Title("Delete all sleep data?").
					Affirmative("Delete").
					Negative("Keep").
					Value(&yes).
					Run()
				if err != nil {
					return err
				}
				if !yes {
					return nil
				}
			}
			if err := <-app.Tracker.ClearHistory(); err != nil {
				return fmt.Errorf("clear history: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Sleep history cleared")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

func newRateCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rate <night-id> <quality>",
		Short: "Rate a night's sleep quality from 0 (very bad) to 5 (excellent)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid night id %q", args[0])
			}
			q, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid quality %q", args[1])
			}
			if err := <-app.Tracker.RateNight(id, q); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Night #%d rated %s\n", id, format.Quality(q, app.Formatter.Localizer))
			return nil
		},
	}
}

func newHistoryCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "Print all recorded nights",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return printHistory(cmd, app)
		},
	}
}

func printHistory(cmd *cobra.Command, app *App) error {
	if err := app.Tracker.Wait(); err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), app.Tracker.History.Get())
	return nil
}
