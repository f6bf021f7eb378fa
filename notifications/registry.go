package notifications

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// KeyCheck reports why the session stored under key is no longer usable, or
// nil while it is.
type KeyCheck func(ctx context.Context, key string) error

type RegistryOption func(*Registry)

// WithSessionCheck makes every feed verify its session before each poll and
// lets Sweep evict feeds whose session has gone.
func WithSessionCheck(check KeyCheck) RegistryOption {
	return func(r *Registry) {
		r.check = check
	}
}

// Registry holds the live feed of each session so form posts reach the same
// view model the stream renders.
type Registry struct {
	source   Source
	interval time.Duration
	check    KeyCheck

	mu    sync.Mutex
	feeds map[string]*Feed
}

func NewRegistry(source Source, interval time.Duration, opts ...RegistryOption) *Registry {
	r := &Registry{
		source:   source,
		interval: interval,
		feeds:    make(map[string]*Feed),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Feed returns the feed for a session key, creating it on first use. A feed
// closed by a failed session check is replaced.
func (r *Registry) Feed(key string) *Feed {
	r.mu.Lock()
	defer r.mu.Unlock()
	feed, ok := r.feeds[key]
	if !ok || feed.Closed() {
		feed = NewFeed(r.source, r.interval)
		if r.check != nil {
			feed.check = func(ctx context.Context) error { return r.check(ctx, key) }
		}
		r.feeds[key] = feed
	}
	return feed
}

// Remove drops a session's feed. Its poller stops and its watchers see the
// feed closed.
func (r *Registry) Remove(key string) {
	r.mu.Lock()
	feed, ok := r.feeds[key]
	delete(r.feeds, key)
	r.mu.Unlock()

	if ok {
		feed.Close()
	}
}

// Release drops feed if it is still the one registered under key
func (r *Registry) Release(key string, feed *Feed) {
	r.mu.Lock()
	if r.feeds[key] == feed {
		delete(r.feeds, key)
	}
	r.mu.Unlock()

	feed.Close()
}

// Sweep closes and drops every feed whose session check fails. It returns the
// number of feeds removed.
func (r *Registry) Sweep(ctx context.Context) int {
	if r.check == nil {
		return 0
	}

	r.mu.Lock()
	keys := make([]string, 0, len(r.feeds))
	for key := range r.feeds {
		keys = append(keys, key)
	}
	r.mu.Unlock()

	removed := 0
	for _, key := range keys {
		if err := r.check(ctx, key); err == nil {
			continue
		}
		r.mu.Lock()
		feed, ok := r.feeds[key]
		if ok {
			delete(r.feeds, key)
		}
		r.mu.Unlock()
		if ok {
			feed.Close()
			removed++
		}
	}
	if removed > 0 {
		log.Debug().Int("removed", removed).Msg("Swept notification feeds")
	}
	return removed
}

// SweepEvery runs Sweep on each tick until ctx is cancelled
func (r *Registry) SweepEvery(ctx context.Context, every time.Duration) {
	if every <= 0 {
		every = DefaultPollInterval
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep(ctx)
		}
	}
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.feeds)
}
