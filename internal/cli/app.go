// Package cli wires configuration, storage and the tracker behind the
// sleeptrackr command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/sadopc/sleeptrackr/internal/config"
	"github.com/sadopc/sleeptrackr/internal/format"
	"github.com/sadopc/sleeptrackr/internal/logging"
	"github.com/sadopc/sleeptrackr/internal/store"
	"github.com/sadopc/sleeptrackr/internal/tracker"
	"github.com/sadopc/sleeptrackr/internal/tui"
)

// Version is set at build time with -ldflags "-X ...cli.Version=...".
var Version = "dev"

// App holds what the commands share once the root command has run its
// pre-run hook.
type App struct {
	Config    config.Config
	Store     *store.Store
	Tracker   *tracker.Tracker
	Formatter *format.Formatter

	// Now is the tracker clock.
	Now func() time.Time
	// Interactive reports whether stdout is a terminal.
	Interactive func() bool
	// RunTUI runs the interactive UI until the user quits.
	RunTUI func(ctx context.Context, a *App) error

	Out io.Writer
	Err io.Writer

	logFile io.Closer
}

func NewApp() *App {
	return &App{
		Now: time.Now,
		Interactive: func() bool {
			fd := os.Stdout.Fd()
			return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
		},
		RunTUI: runTUI,
		Out:    os.Stdout,
		Err:    os.Stderr,
	}
}

// open sets up logging and opens the store and tracker. With tuiMode set,
// logs go to the configured file instead of the terminal.
func (a *App) open(ctx context.Context, cfg config.Config, tuiMode bool) error {
	a.Config = cfg
	if err := logging.Setup(a.logWriter(tuiMode), cfg.LogLevel); err != nil {
		return err
	}

	s, err := store.New(cfg.DB)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	a.Store = s

	lang := cfg.Lang
	if lang == "" {
		lang, _ = s.GetSetting(ctx, "language")
	}
	timeFormat, _ := s.GetSetting(ctx, "time_format")
	a.Formatter = format.New(lang, timeFormat)

	a.Tracker = tracker.New(s, a.Formatter,
		tracker.WithClock(a.Now),
		tracker.WithContext(ctx),
	)
	// Commands act on tonight's state, so let the initial load land first.
	if err := a.Tracker.Wait(); err != nil {
		return fmt.Errorf("load tonight: %w", err)
	}
	logging.Debugf("opened %s (lang=%s)", cfg.DB, lang)
	return nil
}

// Close releases the tracker, store and log file. Safe to call when open
// never ran.
func (a *App) Close() error {
	var errs []error
	if a.Tracker != nil {
		errs = append(errs, a.Tracker.Close())
	}
	if a.Store != nil {
		errs = append(errs, a.Store.Close())
	}
	if a.logFile != nil {
		errs = append(errs, a.logFile.Close())
	}
	return errors.Join(errs...)
}

// logWriter picks the log destination. The TUI owns the terminal, so it
// logs to a file; when that cannot be opened logs are discarded.
func (a *App) logWriter(tuiMode bool) io.Writer {
	if !tuiMode {
		return a.Err
	}
	f, err := logging.OpenFile(a.Config.LogFile)
	if err != nil {
		fmt.Fprintf(a.Err, "warning: %v, logging disabled\n", err)
		return io.Discard
	}
	a.logFile = f
	return f
}

func runTUI(ctx context.Context, a *App) error {
	return tui.Run(ctx, a.Store, a.Tracker, a.Formatter.Localizer)
}

// Execute runs the root command with args and releases resources
// afterwards.
func Execute(ctx context.Context, a *App, args []string) error {
	root := NewRootCmd(a)
	root.SetArgs(args)
	defer a.Close()
	return root.ExecuteContext(ctx)
}
