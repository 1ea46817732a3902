package cache

import (
	"context"
	"sync"
)

// Event is one pubsub message, mirroring the shape of a redis.Message.
type Event struct {
	Channel string
	Payload string
}

// Subscription is a live feed of events. Events() is closed when the
// subscription ends.
type Subscription struct {
	events chan Event
	close  func()
	once   sync.Once
}

// Events returns the delivery channel.
func (s *Subscription) Events() <-chan Event {
	return s.events
}

// Close tears down the subscription. Safe to call more than once.
func (s *Subscription) Close() {
	s.once.Do(s.close)
}

// PubSubHub is the in-process pubsub used when Redis is unavailable.
// Slow subscribers drop messages instead of blocking publishers.
type PubSubHub struct {
	mu     sync.RWMutex
	subs   map[*hubSub]struct{}
	closed bool
}

type hubSub struct {
	channels map[string]struct{}
	events   chan Event
}

// NewPubSubHub creates an empty hub.
func NewPubSubHub() *PubSubHub {
	return &PubSubHub{subs: make(map[*hubSub]struct{})}
}

// Publish delivers payload to every subscriber of channel.
func (h *PubSubHub) Publish(channel, payload string) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.closed {
		return
	}
	for sub := range h.subs {
		if _, ok := sub.channels[channel]; !ok {
			continue
		}
		select {
		case sub.events <- Event{Channel: channel, Payload: payload}:
		default:
		}
	}
}

// Subscribe registers a subscriber for the given channels until ctx is done.
func (h *PubSubHub) Subscribe(ctx context.Context, channels ...string) *Subscription {
	sub := &hubSub{
		channels: make(map[string]struct{}, len(channels)),
		events:   make(chan Event, 64),
	}
	for _, ch := range channels {
		sub.channels[ch] = struct{}{}
	}

	h.mu.Lock()
	h.subs[sub] = struct{}{}
	h.mu.Unlock()

	remove := func() {
		h.mu.Lock()
		if _, ok := h.subs[sub]; ok {
			delete(h.subs, sub)
			close(sub.events)
		}
		h.mu.Unlock()
	}

	s := &Subscription{events: sub.events, close: remove}
	go func() {
		<-ctx.Done()
		s.Close()
	}()
	return s
}

// Close shuts down the hub and all subscriptions.
func (h *PubSubHub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true
	for sub := range h.subs {
		delete(h.subs, sub)
		close(sub.events)
	}
}
