package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/calder/taxlead-crm-go/internal/domain"
	"github.com/calder/taxlead-crm-go/internal/service"

	"go.uber.org/zap"
)

func waitForSnapshot(t *testing.T, ch <-chan []domain.ActivityItem) []domain.ActivityItem {
	t.Helper()
	select {
	case snapshot := <-ch:
		return snapshot
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for snapshot")
		return nil
	}
}

func TestFeedWatcher_InvalidatePushesSnapshot(t *testing.T) {
	store := &mockActivityStore{items: []domain.ActivityItem{
		{ID: "a1", Type: domain.ActivityLeadCreated, Title: "Lead created: John Carter"},
	}}
	watcher := service.NewFeedWatcher(store, time.Hour, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go watcher.Run(ctx)

	ch, unsubscribe := watcher.Subscribe()
	defer unsubscribe()

	watcher.Invalidate()

	select {
	case snapshot := <-ch:
		if len(snapshot) != 1 || snapshot[0].ID != "a1" {
			t.Errorf("unexpected snapshot: %+v", snapshot)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("expected a snapshot after invalidate")
	}
}

func TestFeedWatcher_SlowConsumerGetsLatest(t *testing.T) {
	store := &mockActivityStore{items: []domain.ActivityItem{
		{ID: "a1", Type: domain.ActivityLeadCreated},
	}}
	watcher := service.NewFeedWatcher(store, time.Hour, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go watcher.Run(ctx)

	ch, unsubscribe := watcher.Subscribe()
	defer unsubscribe()

	// Two fetches without the consumer reading: the second replaces the
	// first in the subscriber's buffer.
	watcher.Invalidate()
	waitForSnapshot(t, ch)

	store.mu.Lock()
	store.items = []domain.ActivityItem{{ID: "a2", Type: domain.ActivityLeadDeleted}}
	store.mu.Unlock()
	watcher.Invalidate()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case snapshot := <-ch:
			if len(snapshot) == 1 && snapshot[0].ID == "a2" {
				return
			}
		case <-deadline:
			t.Fatal("expected the latest snapshot to arrive")
		}
	}
}

func TestFeedWatcher_CancelClosesSubscribers(t *testing.T) {
	watcher := service.NewFeedWatcher(&mockActivityStore{}, time.Hour, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	go watcher.Run(ctx)

	ch, unsubscribe := watcher.Subscribe()
	defer unsubscribe()

	cancel()

	select {
	case _, open := <-ch:
		if open {
			// A snapshot may still be pending; the close follows it
			if _, open := <-ch; open {
				t.Fatal("expected channel to close after watcher stops")
			}
		}
	case <-time.After(2 * time.Second):
		t.Fatal("expected channel to close after watcher stops")
	}
}

func TestActivitySubscribe_NilWatcherYieldsClosedChannel(t *testing.T) {
	svc := service.NewActivityService(&mockActivityStore{}, nil, nil, zap.NewNop())

	ch, cancel := svc.Subscribe()
	defer cancel()

	if _, open := <-ch; open {
		t.Fatal("expected a closed channel when no watcher is running")
	}
}
