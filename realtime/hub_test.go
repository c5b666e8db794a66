package realtime

import (
	"context"
	"testing"
	"time"

	"github.com/campuslib/backend/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubLocalDispatch(t *testing.T) {
	hub := NewHub(nil, logger.NewNop())
	ch, cancel := hub.Subscribe("books")
	defer cancel()

	hub.Publish(context.Background(), NewEvent("books", EventInsert, map[string]string{"id": "b1"}))

	select {
	case ev := <-ch:
		assert.Equal(t, "books", ev.Table)
		assert.Equal(t, EventInsert, ev.Event)
		assert.JSONEq(t, `{"id":"b1"}`, string(ev.Row))
	case <-time.After(time.Second):
		t.Fatal("no event delivered")
	}
}

func TestHubTableIsolation(t *testing.T) {
	hub := NewHub(nil, logger.NewNop())
	ch, cancel := hub.Subscribe("categories")
	defer cancel()

	hub.Publish(context.Background(), NewEvent("books", EventDelete, nil))

	select {
	case ev := <-ch:
		t.Fatalf("unexpected event for table %s", ev.Table)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubRefCounting(t *testing.T) {
	hub := NewHub(nil, logger.NewNop())

	// Two consumers of the same table share one feed.
	_, cancel1 := hub.Subscribe("books")
	_, cancel2 := hub.Subscribe("books")
	assert.Equal(t, 1, hub.FeedCount())

	cancel1()
	assert.Equal(t, 1, hub.FeedCount())
	cancel2()
	assert.Equal(t, 0, hub.FeedCount())

	// Cancel is idempotent.
	cancel2()
	assert.Equal(t, 0, hub.FeedCount())
}

func TestHubSlowConsumerDoesNotBlock(t *testing.T) {
	hub := NewHub(nil, logger.NewNop())
	ch, cancel := hub.Subscribe("books")
	defer cancel()

	// Overflow the subscriber buffer; dispatch must not block.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			hub.Publish(context.Background(), NewEvent("books", EventUpdate, nil))
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on slow consumer")
	}

	// Buffered events are still readable.
	require.NotZero(t, len(ch))
}
