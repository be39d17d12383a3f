// Package sync replays dirty local records against the remote service after
// a reconnection. Each entity family reconciles independently; partial
// success is expected and the remainder simply stays dirty until the next
// reconnection.
package sync

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/faktur-app/faktur/internal/client/remote"
	"github.com/faktur-app/faktur/internal/client/store"
	"github.com/faktur-app/faktur/internal/common"
	"github.com/faktur-app/faktur/internal/logging"
	"github.com/faktur-app/faktur/internal/models"
)

// Notifier surfaces non-blocking reconciliation failures to the user.
type Notifier interface {
	Error(msg string)
}

// Syncer is the type-erased trigger used by the connectivity monitor.
type Syncer interface {
	Sync(ctx context.Context) error
}

// Orchestrator reconciles one entity family.
type Orchestrator[R models.Record] struct {
	store  *store.Store[R]
	client remote.Client[R]
	notify Notifier
	log    logging.Logger
}

func NewOrchestrator[R models.Record](s *store.Store[R], c remote.Client[R], notify Notifier, log logging.Logger) *Orchestrator[R] {
	return &Orchestrator[R]{
		store:  s,
		client: c,
		notify: notify,
		log:    log.With("family", s.Family()),
	}
}

// Sync drains the family's unsaved changes in two phases: every marked
// deletion settles before the first unsaved add/update is pushed, so a
// record present in both lists stays deleted. Within a phase the elements
// are pushed independently and concurrently. The family is marked clean
// only when nothing failed; any failure leaves the survivors dirty for the
// next reconnection, which is the only retry mechanism.
func (o *Orchestrator[R]) Sync(ctx context.Context) error {
	synced, err := o.store.GetIsSynced(ctx)
	if err != nil {
		return err
	}
	if synced {
		return nil
	}

	toDelete, toAdd, err := o.store.UnsavedChanges(ctx)
	if err != nil {
		return err
	}

	o.log.Info(ctx, "reconciling", "deletes", len(toDelete), "adds", len(toAdd))

	var wg sync.WaitGroup
	var failures atomic.Int64

	for _, id := range toDelete {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			if err := o.pushDelete(ctx, id); err != nil {
				failures.Add(1)
				o.log.Warn(ctx, "reconcile delete failed", "id", id, "error", err)
				o.notify.Error(fmt.Sprintf("Syncing error (delete %s): %v", o.store.Family(), err))
			}
		}(id)
	}
	wg.Wait()

	for _, r := range toAdd {
		wg.Add(1)
		go func(r R) {
			defer wg.Done()
			if err := o.pushUpsert(ctx, r); err != nil {
				failures.Add(1)
				o.log.Warn(ctx, "reconcile push failed", "id", r.Key(), "error", err)
				o.notify.Error(fmt.Sprintf("Syncing error (put %s): %v", o.store.Family(), err))
			}
		}(r)
	}

	wg.Wait()

	if n := failures.Load(); n > 0 {
		o.log.Info(ctx, "reconciliation incomplete", "failures", n)
		return fmt.Errorf("reconcile %s: %d operations failed", o.store.Family(), n)
	}

	return o.store.SetSynced(ctx)
}

// pushDelete confirms one marked deletion against the remote service. A
// record the remote never had counts as already deleted.
func (o *Orchestrator[R]) pushDelete(ctx context.Context, id string) error {
	err := o.client.Delete(ctx, id)
	if err != nil && !errors.Is(err, common.ErrorNotFound) {
		return err
	}
	return o.store.Delete(ctx, id, true)
}

// pushUpsert replays one unsaved record as a create-or-replace under its
// client-generated id and writes the canonical result back clean.
func (o *Orchestrator[R]) pushUpsert(ctx context.Context, r R) error {
	canonical, err := o.client.Update(ctx, r.Key(), r)
	if err != nil {
		return err
	}
	return o.store.Put(ctx, canonical, true)
}
