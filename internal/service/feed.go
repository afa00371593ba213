package service

import (
	"context"
	"sync"
	"time"

	"github.com/calder/taxlead-crm-go/internal/domain"
	"github.com/calder/taxlead-crm-go/internal/port"

	"go.uber.org/zap"
)

// feedPageSize is how much of the feed each snapshot carries.
const feedPageSize = 50

// FeedWatcher turns the activities table into a push channel. One
// goroutine polls on a ticker; an Invalidate signal (fired after every
// local write) forces an immediate re-fetch. Whatever fetch completes
// last wins — subscribers always converge on the newest snapshot, never
// an ordered event stream.
type FeedWatcher struct {
	store    port.ActivityStore
	interval time.Duration
	logger   *zap.Logger

	mu     sync.Mutex
	subs   map[int]chan []domain.ActivityItem
	nextID int

	invalidate chan struct{}
}

// NewFeedWatcher creates a watcher; call Run to start polling.
func NewFeedWatcher(store port.ActivityStore, interval time.Duration, logger *zap.Logger) *FeedWatcher {
	return &FeedWatcher{
		store:      store,
		interval:   interval,
		logger:     logger,
		subs:       make(map[int]chan []domain.ActivityItem),
		invalidate: make(chan struct{}, 1),
	}
}

// Run polls until ctx is cancelled. Intended as a long-lived goroutine
// started from main.
func (w *FeedWatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.closeAll()
			return
		case <-ticker.C:
		case <-w.invalidate:
		}
		w.refetch(ctx)
	}
}

// Invalidate requests an immediate re-fetch. Coalesces: multiple signals
// before the watcher wakes produce one fetch.
func (w *FeedWatcher) Invalidate() {
	select {
	case w.invalidate <- struct{}{}:
	default:
	}
}

// Subscribe registers a feed consumer. The returned cancel function must
// be called when the consumer goes away.
func (w *FeedWatcher) Subscribe() (<-chan []domain.ActivityItem, func()) {
	w.mu.Lock()
	defer w.mu.Unlock()

	id := w.nextID
	w.nextID++
	ch := make(chan []domain.ActivityItem, 1)
	w.subs[id] = ch

	cancel := func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		if c, ok := w.subs[id]; ok {
			delete(w.subs, id)
			close(c)
		}
	}
	return ch, cancel
}

func (w *FeedWatcher) refetch(ctx context.Context) {
	fetchCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	items, err := w.store.ListActivities(fetchCtx, 1, feedPageSize)
	if err != nil {
		w.logger.Warn("feed watcher: refetch failed", zap.Error(err))
		return
	}
	w.broadcast(items)
}

// broadcast replaces each subscriber's pending snapshot. A slow consumer
// never blocks the watcher; it just skips to the latest state.
func (w *FeedWatcher) broadcast(items []domain.ActivityItem) {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, ch := range w.subs {
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- items:
		default:
		}
	}
}

func (w *FeedWatcher) closeAll() {
	w.mu.Lock()
	defer w.mu.Unlock()

	for id, ch := range w.subs {
		delete(w.subs, id)
		close(ch)
	}
}
