package notifications

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	apperrors "github.com/jrsteele09/npl-portal/internal/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

const DefaultPollInterval = 30 * time.Second

// Source is the backend the feed reads from
type Source interface {
	Notifications(ctx context.Context, unreadOnly bool) ([]Notification, error)
	MarkNotificationRead(ctx context.Context, id string) error
}

// Snapshot is a read-only copy of the feed's state
type Snapshot struct {
	Items       []Notification
	Filter      Filter
	UnreadCount int
	Loading     bool
	Err         error
	Mounted     bool

	// Closed is set once the feed's session has ended; it never reopens
	Closed bool
}

// SessionCheck reports why the session a feed polls for is no longer usable,
// or nil while it is.
type SessionCheck func(ctx context.Context) error

// Feed is the notifications view model. While mounted it polls the source on
// a fixed interval; responses that arrive after the filter changed or the feed
// was unmounted are dropped.
type Feed struct {
	source   Source
	interval time.Duration
	check    SessionCheck

	mu         sync.Mutex
	items      []Notification
	filter     Filter
	loading    bool
	lastErr    error
	generation uint64
	mounts     int
	closed     bool
	cancel     context.CancelFunc
	done       chan struct{}
	watchers   map[chan struct{}]struct{}
}

func NewFeed(source Source, interval time.Duration) *Feed {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Feed{
		source:   source,
		interval: interval,
		filter:   FilterAll,
		watchers: make(map[chan struct{}]struct{}),
	}
}

// Mount starts polling: one fetch immediately, then one per interval. Nested
// mounts share the poller; it stops when the last one unmounts. Values in ctx
// (the session handle) are used by every poll, its cancellation is not.
func (f *Feed) Mount(ctx context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return
	}
	f.mounts++
	if f.mounts > 1 {
		return
	}

	pollCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	f.cancel = cancel
	f.done = make(chan struct{})
	f.loading = true
	go f.poll(pollCtx, f.done)
}

// Unmount stops polling once every Mount has been matched. When it returns
// no further fetch is issued and in-flight responses will be ignored.
func (f *Feed) Unmount() {
	f.mu.Lock()
	if f.mounts == 0 {
		f.mu.Unlock()
		return
	}
	f.mounts--
	if f.mounts > 0 {
		f.mu.Unlock()
		return
	}
	cancel, done := f.cancel, f.done
	f.cancel, f.done = nil, nil
	f.generation++
	f.loading = false
	f.mu.Unlock()

	cancel()
	<-done
}

// Close ends the feed: polling stops and watchers are signalled so they can
// see Snapshot.Closed.
func (f *Feed) Close() {
	f.mu.Lock()
	f.closed = true
	f.generation++
	f.notifyLocked()
	f.mu.Unlock()

	for f.Mounted() {
		f.Unmount()
	}
}

func (f *Feed) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func (f *Feed) Mounted() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.mounts > 0
}

func (f *Feed) poll(ctx context.Context, done chan struct{}) {
	defer close(done)

	if !f.pollOnce(ctx) {
		return
	}

	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if ctx.Err() != nil || !f.pollOnce(ctx) {
				return
			}
		}
	}
}

// pollOnce fetches unless the session check fails, in which case the feed is
// closed and polling must stop.
func (f *Feed) pollOnce(ctx context.Context) bool {
	if f.check != nil {
		if err := f.check(ctx); err != nil {
			f.mu.Lock()
			f.closed = true
			f.generation++
			f.loading = false
			f.lastErr = err
			f.notifyLocked()
			f.mu.Unlock()
			log.Info().Err(err).Msg("Stopped polling notifications")
			return false
		}
	}
	_ = f.fetch(ctx)
	return true
}

// Refresh fetches the current filter's items from the source
func (f *Feed) Refresh(ctx context.Context) error {
	return f.fetch(ctx)
}

func (f *Feed) fetch(ctx context.Context) error {
	f.mu.Lock()
	gen := f.generation
	filter := f.filter
	f.loading = true
	f.mu.Unlock()

	items, err := f.source.Notifications(ctx, filter.UnreadOnly())

	f.mu.Lock()
	defer f.mu.Unlock()
	if gen != f.generation {
		return err
	}

	f.loading = false
	if err != nil {
		f.lastErr = err
		log.Err(err).Str("filter", string(filter)).Msg("Error fetching notifications")
		f.notifyLocked()
		return err
	}

	for i := range items {
		items[i].Normalize()
	}
	f.items = items
	f.lastErr = nil
	f.notifyLocked()
	return nil
}

// SetFilter switches the filter and fetches for it. Responses still in flight
// for the previous filter are dropped.
func (f *Feed) SetFilter(ctx context.Context, filter Filter) error {
	f.mu.Lock()
	f.filter = filter
	f.generation++
	f.mu.Unlock()
	return f.fetch(ctx)
}

// MarkRead marks id as read locally, then confirms with the source. A failed
// confirmation rolls the item back and is returned. Marking an item that is
// already read issues no request.
func (f *Feed) MarkRead(ctx context.Context, id string) error {
	f.mu.Lock()
	idx := f.indexLocked(id)
	if idx < 0 {
		f.mu.Unlock()
		return apperrors.Wrapf(apperrors.ErrNotFound, "notification %s", id)
	}
	if f.items[idx].IsRead {
		f.mu.Unlock()
		return nil
	}
	f.items[idx].MarkRead(NowTimeFunc())
	f.notifyLocked()
	f.mu.Unlock()

	err := f.source.MarkNotificationRead(ctx, id)

	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil {
		if idx := f.indexLocked(id); idx >= 0 {
			f.items[idx].IsRead = false
			f.items[idx].ReadAt = nil
		}
		f.lastErr = fmt.Errorf("marking notification %s as read: %w", id, err)
		log.Err(err).Str("id", id).Msg("Error marking notification as read")
		f.notifyLocked()
		return f.lastErr
	}
	return nil
}

// MarkAllRead sends one mark request per unread item, then refreshes from
// the source so the view reflects what the backend actually recorded.
func (f *Feed) MarkAllRead(ctx context.Context) error {
	f.mu.Lock()
	var unread []string
	for _, n := range f.items {
		if !n.IsRead {
			unread = append(unread, n.ID)
		}
	}
	f.mu.Unlock()

	g, gctx := errgroup.WithContext(ctx)
	for _, id := range unread {
		g.Go(func() error {
			return f.source.MarkNotificationRead(gctx, id)
		})
	}
	markErr := g.Wait()
	if markErr != nil {
		log.Err(markErr).Int("unread", len(unread)).Msg("Error marking all notifications as read")
	}

	return errors.Join(markErr, f.fetch(ctx))
}

// AddSamples prepends the demo notifications to the local view
func (f *Feed) AddSamples(now time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = append(Samples(now), f.items...)
	f.notifyLocked()
}

// Clear empties the local view. Nothing is sent to the source.
func (f *Feed) Clear() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = nil
	f.notifyLocked()
}

func (f *Feed) Snapshot() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return Snapshot{
		Items:       slices.Clone(f.items),
		Filter:      f.filter,
		UnreadCount: UnreadCount(f.items),
		Loading:     f.loading,
		Err:         f.lastErr,
		Mounted:     f.mounts > 0,
		Closed:      f.closed,
	}
}

// Watch returns a channel signalled after every state change and a function
// to stop watching. Signals coalesce while the watcher is busy.
func (f *Feed) Watch() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)
	f.mu.Lock()
	f.watchers[ch] = struct{}{}
	f.mu.Unlock()

	return ch, func() {
		f.mu.Lock()
		delete(f.watchers, ch)
		f.mu.Unlock()
	}
}

func (f *Feed) notifyLocked() {
	for ch := range f.watchers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

func (f *Feed) indexLocked(id string) int {
	return slices.IndexFunc(f.items, func(n Notification) bool { return n.ID == id })
}
