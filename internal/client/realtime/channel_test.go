package realtime

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/faktur-app/faktur/internal/client/connectivity"
	"github.com/faktur-app/faktur/internal/common"
	"github.com/faktur-app/faktur/internal/logging"
)

func wsURL(ts *httptest.Server) string {
	return "ws" + strings.TrimPrefix(ts.URL, "http")
}

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.DiscardHandler))
}

func nextEvent(t *testing.T, ch <-chan connectivity.Event) connectivity.Event {
	t.Helper()
	select {
	case ev, ok := <-ch:
		require.True(t, ok, "event channel closed unexpectedly")
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return connectivity.Event{}
	}
}

func TestChannelLifecycle(t *testing.T) {
	conns := make(chan *websocket.Conn, 2)

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: []string{"*"}})
		if err != nil {
			return
		}
		conns <- conn
	}))
	defer ts.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := NewChannel(wsURL(ts), 20*time.Millisecond, testLogger())
	out := make(chan connectivity.Event)
	done := make(chan struct{})
	go func() {
		ch.Run(ctx, out)
		close(done)
	}()

	ev := nextEvent(t, out)
	assert.Equal(t, connectivity.Connected, ev.Kind)

	conn := <-conns
	err := conn.Write(context.Background(), websocket.MessageText, []byte(`{"family":"customers"}`))
	require.NoError(t, err)

	ev = nextEvent(t, out)
	assert.Equal(t, connectivity.DataChanged, ev.Kind)
	assert.Equal(t, common.FamilyCustomers, ev.Family)

	// Malformed payloads are dropped, the connection stays up.
	err = conn.Write(context.Background(), websocket.MessageText, []byte(`not json`))
	require.NoError(t, err)
	err = conn.Write(context.Background(), websocket.MessageText, []byte(`{"family":"items"}`))
	require.NoError(t, err)

	ev = nextEvent(t, out)
	assert.Equal(t, connectivity.DataChanged, ev.Kind)
	assert.Equal(t, common.FamilyItems, ev.Family)

	// Dropping the server side flips the channel down and back up on redial.
	conn.Close(websocket.StatusGoingAway, "restart")

	ev = nextEvent(t, out)
	assert.Equal(t, connectivity.Disconnected, ev.Kind)

	ev = nextEvent(t, out)
	assert.Equal(t, connectivity.Connected, ev.Kind)

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop on cancel")
	}
}

func TestChannelStopsWithFullEventBuffer(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: []string{"*"}})
		if err != nil {
			return
		}
		for {
			if err := conn.Write(r.Context(), websocket.MessageText, []byte(`{"family":"items"}`)); err != nil {
				return
			}
		}
	}))
	defer ts.Close()

	ctx, cancel := context.WithCancel(context.Background())

	ch := NewChannel(wsURL(ts), 10*time.Millisecond, testLogger())
	out := make(chan connectivity.Event, 1)
	done := make(chan struct{})
	go func() {
		ch.Run(ctx, out)
		close(done)
	}()

	// Drain the first event, then stop consuming: the buffer fills and the
	// channel goroutine blocks on the next send.
	ev := nextEvent(t, out)
	assert.Equal(t, connectivity.Connected, ev.Kind)
	time.Sleep(50 * time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop with an undrained event buffer")
	}
}

func TestChannelRetriesUntilServerAppears(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not yet", http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	ctx, cancel := context.WithCancel(context.Background())

	ch := NewChannel(wsURL(ts), 10*time.Millisecond, testLogger())
	out := make(chan connectivity.Event)
	done := make(chan struct{})
	go func() {
		ch.Run(ctx, out)
		close(done)
	}()

	// Never connects, so no events are delivered before cancellation.
	select {
	case ev := <-out:
		t.Fatalf("unexpected event %v", ev)
	case <-time.After(100 * time.Millisecond):
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop on cancel")
	}
}
