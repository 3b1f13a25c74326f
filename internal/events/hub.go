package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/treysonbrown/planner-api/internal/logging"
)

// Hub fans board events out to in-process stream subscribers, keyed by
// project. Subscriber channels are buffered with capacity one and sends
// never block: coalescing consecutive events is fine because subscribers
// re-read the whole board per event.
type Hub struct {
	mu   sync.Mutex
	subs map[uint64]map[chan struct{}]struct{}
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{
		subs: make(map[uint64]map[chan struct{}]struct{}),
	}
}

// Subscribe registers interest in a project's board events. The returned
// cancel func must be called when the subscriber goes away.
func (h *Hub) Subscribe(projectID uint64) (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)

	h.mu.Lock()
	if h.subs[projectID] == nil {
		h.subs[projectID] = make(map[chan struct{}]struct{})
	}
	h.subs[projectID][ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if set, ok := h.subs[projectID]; ok {
			delete(set, ch)
			if len(set) == 0 {
				delete(h.subs, projectID)
			}
		}
		h.mu.Unlock()
	}

	return ch, cancel
}

// Notify wakes every subscriber of a project.
func (h *Hub) Notify(projectID uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs[projectID] {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Run consumes board events from the Redis channel and dispatches them to
// subscribers until the context is cancelled, reconnecting when the pubsub
// stream drops.
func (h *Hub) Run(ctx context.Context, client *redis.Client, channel string) {
	for {
		sub := client.Subscribe(ctx, channel)
		ch := sub.Channel()

		for msg := range ch {
			var ev BoardEvent
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				logging.Logger.Errorf("unable to parse board event: %v", err)
				continue
			}
			h.Notify(ev.ProjectID)
		}

		_ = sub.Close()
		if ctx.Err() != nil {
			return
		}
		logging.Logger.Error("board event channel closed, reconnecting")
		time.Sleep(time.Second)
	}
}
