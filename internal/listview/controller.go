package listview

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"callboard/internal/timewindow"
)

// QueryFunc fetches the records whose primary timestamp falls inside w.
// Ordering is the query's concern; the controller never reorders.
type QueryFunc[T any] func(ctx context.Context, w timewindow.Window) ([]T, error)

// Controller owns the list state for one board view: the selected timeframe,
// the custom-range draft, the fetched records and the loading/refreshing
// flags. One instance per view; never shared between views.
//
// Supersession: each issued query gets a sequence number and only the most
// recently issued query may write results back. A slow early response can
// therefore never overwrite a faster later one, and a failed query never
// empties the list.
type Controller[T any] struct {
	mu       sync.Mutex
	resolver *timewindow.Resolver
	query    QueryFunc[T]
	log      *slog.Logger

	sel        timewindow.Selector
	draftStart timewindow.Date
	draftEnd   timewindow.Date

	items      []T
	loading    bool
	refreshing bool
	lastErr    error
	seq        uint64

	autoEvery  time.Duration
	autoParent context.Context
	autoCancel context.CancelFunc
}

// New builds a controller starting on the Today timeframe. No query is
// issued until Load is called.
func New[T any](resolver *timewindow.Resolver, query QueryFunc[T], log *slog.Logger) *Controller[T] {
	if log == nil {
		log = slog.Default()
	}
	return &Controller[T]{
		resolver: resolver,
		query:    query,
		log:      log,
		sel:      timewindow.Selector{Timeframe: timewindow.TimeframeToday},
	}
}

// SetTimeframe switches the view to a preset or to custom-range editing.
// Presets trigger an immediate load; switching to custom clears any previous
// draft and stays idle until ConfirmCustom. An unknown timeframe is refused
// with ErrInvalidRange and leaves the current selection untouched. A running
// auto-refresh timer is reset only when the selection actually changes, so
// fast polling on the same preset cannot starve the periodic refresh.
func (c *Controller[T]) SetTimeframe(ctx context.Context, tf timewindow.Timeframe) error {
	if !tf.Valid() {
		return fmt.Errorf("%w: unknown timeframe %q", timewindow.ErrInvalidRange, tf)
	}

	c.mu.Lock()
	changed := c.sel != (timewindow.Selector{Timeframe: tf})
	c.sel = timewindow.Selector{Timeframe: tf}
	c.draftStart, c.draftEnd = timewindow.Date{}, timewindow.Date{}
	if changed {
		c.restartAutoLocked()
	}
	c.mu.Unlock()

	if tf == timewindow.TimeframeCustom {
		return nil
	}
	return c.Load(ctx)
}

// SetCustomDraft records the in-progress custom bounds. It never queries.
func (c *Controller[T]) SetCustomDraft(start, end timewindow.Date) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sel = timewindow.Selector{Timeframe: timewindow.TimeframeCustom}
	c.draftStart, c.draftEnd = start, end
}

// ConfirmCustom validates the draft and loads it. An invalid or incomplete
// draft is refused with ErrInvalidRange before any store traffic.
func (c *Controller[T]) ConfirmCustom(ctx context.Context) error {
	c.mu.Lock()
	sel := timewindow.Selector{
		Timeframe: timewindow.TimeframeCustom,
		Start:     c.draftStart,
		End:       c.draftEnd,
	}
	if _, err := c.resolver.Resolve(sel); err != nil {
		c.mu.Unlock()
		return err
	}
	c.sel = sel
	c.restartAutoLocked()
	c.mu.Unlock()
	return c.Load(ctx)
}

// Load fetches the current window with the loading flag raised. First paint.
func (c *Controller[T]) Load(ctx context.Context) error {
	return c.run(ctx, false)
}

// Refresh re-fetches with the refreshing flag instead, so the UI can tell a
// background reload from a first paint.
func (c *Controller[T]) Refresh(ctx context.Context) error {
	return c.run(ctx, true)
}

// Invalidate is the mutate-then-invalidate hook: after a successful status
// mutation the lifecycle re-reads authoritative state through here.
func (c *Controller[T]) Invalidate(ctx context.Context) error {
	return c.Refresh(ctx)
}

func (c *Controller[T]) run(ctx context.Context, background bool) error {
	c.mu.Lock()
	if c.sel.Timeframe == timewindow.TimeframeCustom &&
		(c.sel.Start.IsZero() || c.sel.End.IsZero()) {
		// Custom editing in progress: stay idle until confirmed.
		c.mu.Unlock()
		return nil
	}
	w, err := c.resolver.Resolve(c.sel)
	if err != nil {
		c.lastErr = err
		c.mu.Unlock()
		return err
	}
	c.seq++
	seq := c.seq
	if background {
		c.refreshing = true
	} else {
		c.loading = true
	}
	query := c.query
	c.mu.Unlock()

	items, err := query(ctx, w)

	c.mu.Lock()
	defer c.mu.Unlock()
	if seq != c.seq {
		// Superseded: a later query owns the state now. Discard silently;
		// the later call clears the flags.
		return nil
	}
	c.loading = false
	c.refreshing = false
	if err != nil {
		// Keep the previous list; surface a retryable error.
		c.lastErr = fmt.Errorf("list query failed: %w", err)
		c.log.Warn("list query failed", "err", err)
		return c.lastErr
	}
	c.items = items
	c.lastErr = nil
	return nil
}

// StartAutoRefresh begins periodic background refreshes. Calling it again
// replaces the running timer; there is never more than one per controller.
func (c *Controller[T]) StartAutoRefresh(ctx context.Context, every time.Duration) {
	if every <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.autoEvery = every
	c.autoParent = ctx
	c.restartAutoLocked()
}

// Close tears the auto-refresh timer down. Safe to call repeatedly.
func (c *Controller[T]) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.autoCancel != nil {
		c.autoCancel()
		c.autoCancel = nil
	}
	c.autoEvery = 0
}

// restartAutoLocked cancels any running timer goroutine and, when auto
// refresh is configured, starts a fresh cycle. Caller holds c.mu.
func (c *Controller[T]) restartAutoLocked() {
	if c.autoCancel != nil {
		c.autoCancel()
		c.autoCancel = nil
	}
	if c.autoEvery <= 0 || c.autoParent == nil {
		return
	}
	tctx, cancel := context.WithCancel(c.autoParent)
	c.autoCancel = cancel
	go c.autoLoop(tctx, c.autoEvery)
}

func (c *Controller[T]) autoLoop(ctx context.Context, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			_ = c.Refresh(ctx)
		}
	}
}

// Items returns a copy of the current list.
func (c *Controller[T]) Items() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]T, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Controller[T]) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

func (c *Controller[T]) Refreshing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.refreshing
}

// Err returns the error from the most recent query, nil after a success.
func (c *Controller[T]) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Timeframe returns the currently selected timeframe.
func (c *Controller[T]) Timeframe() timewindow.Timeframe {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sel.Timeframe
}
