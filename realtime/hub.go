package realtime

import (
	"context"
	"sync"

	"github.com/campuslib/backend/logger"
)

// Hub fans change events out to SSE subscribers. There is one feed per
// table, shared and reference-counted across consumers, so ten open pages
// watching "books" cost one upstream subscription, not ten.
type Hub struct {
	log *logger.Logger
	bus Bus // nil means single-instance: publish dispatches locally

	mu    sync.Mutex
	feeds map[string]*tableFeed
}

type tableFeed struct {
	refs int
	subs map[chan Event]struct{}
}

func NewHub(bus Bus, log *logger.Logger) *Hub {
	return &Hub{
		log:   log,
		bus:   bus,
		feeds: make(map[string]*tableFeed),
	}
}

// Start wires the bus forwarder into local dispatch. No-op without a bus.
func (h *Hub) Start(ctx context.Context) error {
	if h.bus == nil {
		return nil
	}
	return h.bus.StartForwarder(ctx, h.dispatch)
}

// Publish sends a change event to all instances (via the bus when present).
// Failures are logged, not returned: a lost change notification must never
// fail the write that caused it.
func (h *Hub) Publish(ctx context.Context, ev Event) {
	if h.bus != nil {
		if err := h.bus.Publish(ctx, ev); err != nil {
			h.log.Warn("change publish failed", "table", ev.Table, "error", err)
		}
		return
	}
	h.dispatch(ev)
}

// Subscribe returns a channel of events for one table and a cancel func.
// The channel is buffered; slow consumers drop events rather than block
// the dispatcher.
func (h *Hub) Subscribe(table string) (<-chan Event, func()) {
	ch := make(chan Event, 16)

	h.mu.Lock()
	feed, ok := h.feeds[table]
	if !ok {
		feed = &tableFeed{subs: make(map[chan Event]struct{})}
		h.feeds[table] = feed
	}
	feed.refs++
	feed.subs[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			feed, ok := h.feeds[table]
			if !ok {
				return
			}
			delete(feed.subs, ch)
			feed.refs--
			if feed.refs <= 0 {
				delete(h.feeds, table)
			}
			close(ch)
		})
	}
	return ch, cancel
}

// FeedCount reports how many table feeds are open.
func (h *Hub) FeedCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.feeds)
}

func (h *Hub) dispatch(ev Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	feed, ok := h.feeds[ev.Table]
	if !ok {
		return
	}
	for ch := range feed.subs {
		select {
		case ch <- ev:
		default:
			// subscriber is not keeping up; drop
		}
	}
}
