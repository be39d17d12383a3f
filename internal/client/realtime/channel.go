// Package realtime consumes the server's push channel over a websocket.
// The connection itself doubles as the connectivity signal: an established
// socket means connected, a failed read means disconnected. Server-pushed
// messages are data-change notifications.
package realtime

import (
	"context"
	"encoding/json"
	"time"

	"github.com/coder/websocket"

	"github.com/faktur-app/faktur/internal/client/connectivity"
	"github.com/faktur-app/faktur/internal/common"
	"github.com/faktur-app/faktur/internal/logging"
)

// message is the wire format pushed by the server on every mutation.
type message struct {
	Family common.Family `json:"family"`
}

// Channel maintains the websocket subscription and translates it into
// connectivity events. It reconnects forever until ctx is cancelled; the
// retry interval is the only timer in the client and drives no remote
// CRUD, only the signal itself.
type Channel struct {
	url           string
	redialBackoff time.Duration
	log           logging.Logger
}

func NewChannel(url string, redialBackoff time.Duration, log logging.Logger) *Channel {
	if redialBackoff <= 0 {
		redialBackoff = 3 * time.Second
	}
	return &Channel{url: url, redialBackoff: redialBackoff, log: log}
}

// Run feeds events into out until ctx is cancelled. out is closed on
// return.
func (c *Channel) Run(ctx context.Context, out chan<- connectivity.Event) {
	defer close(out)

	for {
		if ctx.Err() != nil {
			return
		}

		conn, _, err := websocket.Dial(ctx, c.url, nil)
		if err != nil {
			c.log.Debug(ctx, "realtime dial failed", "error", err)
			if !sleep(ctx, c.redialBackoff) {
				return
			}
			continue
		}

		if !emit(ctx, out, connectivity.Event{Kind: connectivity.Connected}) {
			conn.Close(websocket.StatusNormalClosure, "")
			return
		}
		c.readLoop(ctx, conn, out)
		if !emit(ctx, out, connectivity.Event{Kind: connectivity.Disconnected}) {
			return
		}

		if !sleep(ctx, c.redialBackoff) {
			return
		}
	}
}

// readLoop delivers data-change messages until the socket breaks. A read
// error is the disconnect signal; in-flight remote calls elsewhere fail on
// their own and are handled as ordinary remote failures.
func (c *Channel) readLoop(ctx context.Context, conn *websocket.Conn, out chan<- connectivity.Event) {
	defer conn.Close(websocket.StatusNormalClosure, "")

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			c.log.Debug(ctx, "realtime read failed", "error", err)
			return
		}

		var msg message
		if err := json.Unmarshal(data, &msg); err != nil {
			c.log.Warn(ctx, "realtime message ignored", "error", err)
			continue
		}
		if !emit(ctx, out, connectivity.Event{Kind: connectivity.DataChanged, Family: msg.Family}) {
			return
		}
	}
}

// emit delivers one event unless ctx ends first, so a consumer that has
// gone away cannot wedge the channel goroutine.
func emit(ctx context.Context, out chan<- connectivity.Event, ev connectivity.Event) bool {
	select {
	case out <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
