// Package tracker bridges UI actions to the sleep store and keeps observable
// state for tonight's session and the formatted history.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	clog "github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/sadopc/sleeptrackr/internal/logging"
	"github.com/sadopc/sleeptrackr/internal/observable"
	"github.com/sadopc/sleeptrackr/internal/store"
)

var (
	ErrClosed         = errors.New("tracker closed")
	ErrInvalidQuality = errors.New("quality must be between 0 and 5")
)

// SessionStore is the persistence the tracker delegates to. Subscribe must
// invoke fn after every successful write.
type SessionStore interface {
	GetTonight(ctx context.Context) (*store.SleepNight, error)
	GetNight(ctx context.Context, id int64) (*store.SleepNight, error)
	ListNights(ctx context.Context) ([]store.SleepNight, error)
	Insert(ctx context.Context, n *store.SleepNight) error
	Update(ctx context.Context, n *store.SleepNight) error
	Clear(ctx context.Context) error
	Subscribe(fn func()) (unsubscribe func())
}

// Formatter renders the full history.
type Formatter interface {
	Format(nights []store.SleepNight) string
}

type Option func(*Tracker)

// WithClock overrides time.Now for new and stopped nights.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

func WithLogger(l *clog.Logger) Option {
	return func(t *Tracker) { t.logger = l }
}

// WithContext parents the tracker's lifetime on ctx.
func WithContext(ctx context.Context) Option {
	return func(t *Tracker) { t.parent = ctx }
}

// Tracker owns tonight's session reference and the derived history view.
// Actions run as independent goroutines and are not serialized against each
// other.
type Tracker struct {
	store     SessionStore
	formatter Formatter
	now       func() time.Time
	logger    *clog.Logger
	parent    context.Context

	ctx    context.Context
	cancel context.CancelFunc
	group  errgroup.Group

	mu          sync.Mutex
	closed      bool
	unsubscribe func()

	// historyMu serializes recomputation so the last writer reads the
	// latest table contents.
	historyMu sync.Mutex

	// Tonight is the in-progress night, or nil when none is active. After
	// StopTracking it holds the just-finished night until the next reload.
	Tonight *observable.Value[*store.SleepNight]
	// History is the formatted full history.
	History *observable.Value[string]
}

// New creates a tracker and starts loading tonight's session and the history
// in the background.
func New(s SessionStore, f Formatter, opts ...Option) *Tracker {
	t := &Tracker{
		store:     s,
		formatter: f,
		now:       time.Now,
		logger:    logging.L.WithPrefix("tracker"),
		parent:    context.Background(),
		Tonight:   observable.New[*store.SleepNight](nil),
		History:   observable.New(f.Format(nil)),
	}
	for _, opt := range opts {
		opt(t)
	}
	t.ctx, t.cancel = context.WithCancel(t.parent)

	t.unsubscribe = s.Subscribe(func() { t.launch("history", t.refreshHistory) })
	t.launch("initialize", func(ctx context.Context) error {
		if err := t.reloadTonight(ctx); err != nil {
			return err
		}
		return t.refreshHistory(ctx)
	})
	return t
}

// Active reports whether a night is currently being tracked.
func (t *Tracker) Active() bool {
	n := t.Tonight.Get()
	return n != nil && n.InProgress()
}

// StartTracking inserts a new night starting now and reloads Tonight. It
// does not guard against a second start racing the first.
func (t *Tracker) StartTracking() <-chan error {
	return t.launch("start", func(ctx context.Context) error {
		n := store.NewSleepNight(t.now())
		if err := t.store.Insert(ctx, n); err != nil {
			return err
		}
		return t.reloadTonight(ctx)
	})
}

// StopTracking sets the end of the current night to now. It does nothing
// when no night is in progress, including right after a previous stop.
func (t *Tracker) StopTracking() <-chan error {
	return t.launch("stop", func(ctx context.Context) error {
		cur := t.Tonight.Get()
		if cur == nil || !cur.InProgress() {
			return nil
		}
		stopped := *cur
		stopped.EndTime = t.now().Truncate(time.Millisecond)
		if err := t.store.Update(ctx, &stopped); err != nil {
			return err
		}
		t.Tonight.Set(&stopped)
		return nil
	})
}

// ClearHistory deletes every night and clears Tonight.
func (t *Tracker) ClearHistory() <-chan error {
	return t.launch("clear", func(ctx context.Context) error {
		if err := t.store.Clear(ctx); err != nil {
			return err
		}
		t.Tonight.Set(nil)
		return nil
	})
}

// RateNight stores a 0..5 quality rating for the night with the given id.
func (t *Tracker) RateNight(id int64, quality int) <-chan error {
	return t.launch("rate", func(ctx context.Context) error {
		if quality < 0 || quality > 5 {
			return fmt.Errorf("rate night %d: %w", id, ErrInvalidQuality)
		}
		n, err := t.store.GetNight(ctx, id)
		if err != nil {
			return err
		}
		n.Quality = quality
		if err := t.store.Update(ctx, n); err != nil {
			return err
		}
		if cur := t.Tonight.Get(); cur != nil && cur.ID == id {
			t.Tonight.Set(n)
		}
		return nil
	})
}

// Reload re-reads tonight's session from the store, dropping a finished one.
func (t *Tracker) Reload() <-chan error {
	return t.launch("reload", t.reloadTonight)
}

// Wait blocks until all outstanding work finishes and returns the first
// error any of it produced.
func (t *Tracker) Wait() error {
	return t.group.Wait()
}

// Close abandons outstanding work, detaches from the store and waits for
// running goroutines to return.
func (t *Tracker) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	t.mu.Unlock()

	t.unsubscribe()
	t.cancel()
	return t.group.Wait()
}

func (t *Tracker) reloadTonight(ctx context.Context) error {
	n, err := t.store.GetTonight(ctx)
	if err != nil {
		return err
	}
	if n != nil && !n.InProgress() {
		n = nil
	}
	t.Tonight.Set(n)
	return nil
}

func (t *Tracker) refreshHistory(ctx context.Context) error {
	t.historyMu.Lock()
	defer t.historyMu.Unlock()

	nights, err := t.store.ListNights(ctx)
	if err != nil {
		return err
	}
	t.History.Set(t.formatter.Format(nights))
	return nil
}

// launch runs fn as an independent unit of work. The returned channel yields
// fn's error once and is then closed.
func (t *Tracker) launch(op string, fn func(ctx context.Context) error) <-chan error {
	done := make(chan error, 1)

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		done <- ErrClosed
		close(done)
		return done
	}

	t.group.Go(func() error {
		started := time.Now()
		err := fn(t.ctx)
		done <- err
		close(done)

		if err != nil && t.ctx.Err() != nil && errors.Is(err, context.Canceled) {
			t.logger.Debug("abandoned", "op", op)
			return nil
		}
		if err != nil {
			t.logger.Error("operation failed", "op", op, "err", err)
			return fmt.Errorf("%s: %w", op, err)
		}
		t.logger.Debug("done", "op", op, "took", time.Since(started))
		return nil
	})
	return done
}
