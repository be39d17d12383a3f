// Package connectivity owns the process-wide connected/disconnected state.
// It consumes the external realtime signal and drives reconciliation and
// live refreshes; it never polls.
package connectivity

import (
	"context"
	"sync"
	"sync/atomic"

	syncpkg "github.com/faktur-app/faktur/internal/client/sync"
	"github.com/faktur-app/faktur/internal/common"
	"github.com/faktur-app/faktur/internal/logging"
)

// EventKind marks what the realtime channel observed.
type EventKind int

const (
	// Connected means the realtime channel is up; remote calls may be
	// attempted again.
	Connected EventKind = iota
	// Disconnected means the channel dropped; no remote calls are attempted
	// until the next Connected event.
	Disconnected
	// DataChanged means remote data may have changed and the family should
	// be re-pulled.
	DataChanged
)

// Event is one emission from the realtime signal channel.
type Event struct {
	Kind   EventKind
	Family common.Family // set for DataChanged; empty means every family
}

// Refresher pulls a family's full remote table into the local cache.
// Implemented by the entity services.
type Refresher interface {
	Family() common.Family
	Refresh(ctx context.Context) error
}

// Monitor holds the connectivity boolean and reacts to signal events.
// The state starts as disconnected and lives for the process lifetime.
type Monitor struct {
	connected  atomic.Bool
	syncers    []syncpkg.Syncer
	refreshers []Refresher
	log        logging.Logger
}

func NewMonitor(syncers []syncpkg.Syncer, refreshers []Refresher, log logging.Logger) *Monitor {
	return &Monitor{syncers: syncers, refreshers: refreshers, log: log}
}

// Register adds a refresher after construction. The services need the
// monitor as their connectivity source, so they can only be registered once
// both exist. Must be called before Run.
func (m *Monitor) Register(r Refresher) {
	m.refreshers = append(m.refreshers, r)
}

// Connected reports the current connectivity state.
func (m *Monitor) Connected() bool {
	return m.connected.Load()
}

// Run consumes signal events until the channel closes or ctx is cancelled.
// On a transition to connected it triggers reconciliation for every family
// concurrently (fire and forget), refreshes every family once reconciliation
// settles, and resumes acting on data-change events; while disconnected,
// data-change events are ignored.
func (m *Monitor) Run(ctx context.Context, events <-chan Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			m.handle(ctx, ev)
		}
	}
}

func (m *Monitor) handle(ctx context.Context, ev Event) {
	switch ev.Kind {
	case Connected:
		if m.connected.Swap(true) {
			return
		}
		m.log.Info(ctx, "connection up, reconciling")
		go func() {
			var wg sync.WaitGroup
			for _, s := range m.syncers {
				wg.Add(1)
				go func(s syncpkg.Syncer) {
					defer wg.Done()
					// Failures already surfaced per element; families stay
					// dirty for the next reconnection.
					_ = s.Sync(ctx)
				}(s)
			}
			// The pull replays remote state over the cache, so it must not
			// start until every family's dirty records have been pushed.
			wg.Wait()
			m.refreshAll(ctx)
		}()

	case Disconnected:
		if m.connected.Swap(false) {
			m.log.Info(ctx, "connection down, remote listening halted")
		}

	case DataChanged:
		if !m.connected.Load() {
			return
		}
		if ev.Family == "" {
			m.refreshAll(ctx)
			return
		}
		for _, r := range m.refreshers {
			if r.Family() == ev.Family {
				go m.refresh(ctx, r)
			}
		}
	}
}

func (m *Monitor) refreshAll(ctx context.Context) {
	for _, r := range m.refreshers {
		go m.refresh(ctx, r)
	}
}

func (m *Monitor) refresh(ctx context.Context, r Refresher) {
	if err := r.Refresh(ctx); err != nil {
		m.log.Warn(ctx, "remote refresh failed", "family", r.Family(), "error", err)
	}
}
