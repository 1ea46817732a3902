package cache

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"
)

func newInMemoryCache(t *testing.T) *Cache {
	t.Helper()
	logger := zap.NewNop().Sugar()

	// An unroutable address forces the in-memory fallback.
	c, err := NewCache("invalid:6379", logger, nil)
	if err != nil {
		t.Fatalf("Failed to create cache: %v", err)
	}
	t.Cleanup(func() { c.Close() })

	if !c.IsInMemoryMode() {
		t.Fatal("Expected cache to be in in-memory mode")
	}
	return c
}

func TestInMemoryGetSet(t *testing.T) {
	ctx := context.Background()
	c := newInMemoryCache(t)

	type item struct {
		Title string `json:"title"`
	}

	if err := c.Get(ctx, KeyNewsList, &[]item{}); err != ErrCacheMiss {
		t.Fatalf("Expected ErrCacheMiss, got %v", err)
	}

	want := []item{{Title: "通知"}, {Title: "新闻"}}
	if err := c.Set(ctx, KeyNewsList, want, time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	var got []item
	if err := c.Get(ctx, KeyNewsList, &got); err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if len(got) != 2 || got[0].Title != "通知" {
		t.Errorf("Round trip mismatch: %+v", got)
	}

	if err := c.Del(ctx, KeyNewsList); err != nil {
		t.Fatalf("Del failed: %v", err)
	}
	if err := c.Get(ctx, KeyNewsList, &got); err != ErrCacheMiss {
		t.Errorf("Expected ErrCacheMiss after delete, got %v", err)
	}
}

func TestInMemoryPubSub(t *testing.T) {
	c := newInMemoryCache(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sub := c.Subscribe(ctx, ChannelCommunity)
	defer sub.Close()

	payload := map[string]string{"event": "post_created"}
	if err := c.Publish(ctx, ChannelCommunity, payload); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	// A message on an unsubscribed channel must not be delivered.
	if err := c.Publish(ctx, ChannelAffairs, payload); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	select {
	case ev := <-sub.Events():
		if ev.Channel != ChannelCommunity {
			t.Errorf("Expected channel %q, got %q", ChannelCommunity, ev.Channel)
		}
		if ev.Payload == "" {
			t.Error("Expected non-empty payload")
		}
	case <-time.After(time.Second):
		t.Fatal("Timed out waiting for event")
	}

	select {
	case ev, ok := <-sub.Events():
		if ok {
			t.Errorf("Unexpected extra event: %+v", ev)
		}
	case <-time.After(50 * time.Millisecond):
		// Nothing else arrived, as expected.
	}
}

func TestSubscriptionClosesWithContext(t *testing.T) {
	c := newInMemoryCache(t)

	ctx, cancel := context.WithCancel(context.Background())
	sub := c.Subscribe(ctx, ChannelAffairs)
	cancel()

	select {
	case _, ok := <-sub.Events():
		if ok {
			t.Error("Expected closed events channel after context cancel")
		}
	case <-time.After(time.Second):
		t.Fatal("Events channel not closed after context cancel")
	}
}
