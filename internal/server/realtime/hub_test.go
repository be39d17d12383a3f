package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/faktur-app/faktur/internal/common"
	"github.com/faktur-app/faktur/internal/logging"
)

func testHub(t *testing.T) (*Hub, string) {
	t.Helper()

	hub := NewHub(logging.NewSlogLogger(slog.New(slog.DiscardHandler)))
	ts := httptest.NewServer(http.HandlerFunc(hub.Handle))
	t.Cleanup(ts.Close)
	t.Cleanup(hub.Close)

	return hub, "ws" + strings.TrimPrefix(ts.URL, "http")
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close(websocket.StatusNormalClosure, "") })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) message {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, data, err := conn.Read(ctx)
	require.NoError(t, err)

	var msg message
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func TestHub_BroadcastsToAllClients(t *testing.T) {
	hub, url := testHub(t)

	c1 := dial(t, url)
	c2 := dial(t, url)

	// The register happens in the handler goroutine; wait for both.
	require.Eventually(t, func() bool {
		hub.mu.Lock()
		defer hub.mu.Unlock()
		return len(hub.clients) == 2
	}, 2*time.Second, 10*time.Millisecond)

	hub.DataChanged(common.FamilyItems)

	assert.Equal(t, common.FamilyItems, readMessage(t, c1).Family)
	assert.Equal(t, common.FamilyItems, readMessage(t, c2).Family)
}

func TestHub_DropsDeadClients(t *testing.T) {
	hub, url := testHub(t)

	c1 := dial(t, url)
	c2 := dial(t, url)

	require.Eventually(t, func() bool {
		hub.mu.Lock()
		defer hub.mu.Unlock()
		return len(hub.clients) == 2
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, c1.Close(websocket.StatusNormalClosure, "done"))

	require.Eventually(t, func() bool {
		hub.mu.Lock()
		defer hub.mu.Unlock()
		return len(hub.clients) == 1
	}, 2*time.Second, 10*time.Millisecond)

	hub.DataChanged(common.FamilyCustomers)
	assert.Equal(t, common.FamilyCustomers, readMessage(t, c2).Family)
}
