package notify

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	mu     sync.Mutex
	events []envelope
	err    error
}

func (s *recordingSink) Deliver(_ context.Context, event string, payload Payload) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, envelope{event: event, payload: payload})
	return s.err
}

func (s *recordingSink) delivered() []envelope {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]envelope(nil), s.events...)
}

func TestDispatcherDeliversAsynchronously(t *testing.T) {
	t.Parallel()

	sink := &recordingSink{}
	d := NewDispatcher(sink, slog.Default(), 8)
	defer d.Close()

	d.Emit(EventPostIssueCode, Payload{CodeID: "code-1", SessionDataKey: "session-1"})

	require.Eventually(t, func() bool {
		return len(sink.delivered()) == 1
	}, time.Second, 5*time.Millisecond)

	got := sink.delivered()[0]
	require.Equal(t, EventPostIssueCode, got.event)
	require.Equal(t, "code-1", got.payload.CodeID)
	require.Equal(t, "session-1", got.payload.SessionDataKey)
}

func TestDispatcherSwallowsSinkFailures(t *testing.T) {
	t.Parallel()

	sink := &recordingSink{err: errors.New("broker down")}
	d := NewDispatcher(sink, slog.Default(), 8)

	d.Emit(EventPostIssueCode, Payload{CodeID: "code-2"})
	d.Close()

	// The failure was logged, not surfaced; the event still reached the sink.
	require.Len(t, sink.delivered(), 1)
}

func TestDispatcherCloseDrainsQueue(t *testing.T) {
	t.Parallel()

	sink := &recordingSink{}
	d := NewDispatcher(sink, slog.Default(), 16)

	for i := 0; i < 10; i++ {
		d.Emit(EventPostIssueCode, Payload{CodeID: "code"})
	}
	d.Close()

	require.Len(t, sink.delivered(), 10)
}

func TestDispatcherAfterCloseDropsEvents(t *testing.T) {
	t.Parallel()

	sink := &recordingSink{}
	d := NewDispatcher(sink, slog.Default(), 8)
	d.Close()

	// Must not panic or deliver.
	d.Emit(EventPostIssueCode, Payload{CodeID: "late"})
	require.Empty(t, sink.delivered())
}

func TestNilDispatcherIsNoop(t *testing.T) {
	t.Parallel()

	var d *Dispatcher
	d.Emit(EventPostIssueCode, Payload{CodeID: "ignored"})
	d.Close()
}

func TestRedisSinkPublishesEvents(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	sub := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = sub.Close() })

	ctx := context.Background()
	pubsub := sub.Subscribe(ctx, DefaultChannel)
	t.Cleanup(func() { _ = pubsub.Close() })
	_, err := pubsub.Receive(ctx)
	require.NoError(t, err)

	sink := NewRedisSinkWithClient(client, "")
	require.NoError(t, sink.Deliver(ctx, EventPostIssueCode, Payload{
		CodeID:         "code-3",
		SessionDataKey: "session-3",
	}))

	select {
	case msg := <-pubsub.Channel():
		var got message
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &got))
		require.Equal(t, EventPostIssueCode, got.Event)
		require.Equal(t, "code-3", got.Payload.CodeID)
		require.Equal(t, "session-3", got.Payload.SessionDataKey)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for published event")
	}
}
