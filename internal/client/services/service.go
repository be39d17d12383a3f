// Package services implements the entity commands shared by the three
// families. Every write decides between a local-only cache write and a
// remote call based on the current connectivity state; offline writes never
// block on the network.
package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/faktur-app/faktur/internal/client/remote"
	"github.com/faktur-app/faktur/internal/client/store"
	"github.com/faktur-app/faktur/internal/common"
	"github.com/faktur-app/faktur/internal/logging"
	"github.com/faktur-app/faktur/internal/models"
)

// Status is the per-service command state visible to the UI.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
)

// dateLayout matches the date strings used throughout the invoicing data.
const dateLayout = "02/01/2006"

// nowFn is a test seam for timestamps synthesized on offline writes.
var nowFn = time.Now

// Connectivity reports the process-wide connected state.
type Connectivity interface {
	Connected() bool
}

// Prompter asks the user a blocking yes/no question. Deletes always go
// through it, online or offline.
type Prompter interface {
	ConfirmDelete(ctx context.Context, label string) (bool, error)
}

// Notifier surfaces a non-blocking user-visible error toast.
type Notifier interface {
	Error(msg string)
}

// Service handles create/update/delete/list for one entity family and
// maintains its in-memory read model. The family-specific behavior
// (synthesized fields, labels, delete guards) is injected by the
// constructors in this package.
type Service[R models.Record, Req any] struct {
	family common.Family
	store  *store.Store[R]
	remote remote.Client[R]
	conn   Connectivity
	prompt Prompter
	notify Notifier
	log    logging.Logger

	validateReq   func(Req) error
	prepareCreate func(ctx context.Context, req Req, id string) (R, error)
	prepareUpdate func(ctx context.Context, req Req, existing R) (R, error)
	describe      func(R) string
	beforeDelete  func(ctx context.Context, id string) error
	afterRefresh  func(ctx context.Context, records map[string]R) error

	mu      sync.RWMutex
	status  Status
	records map[string]R
}

// Init loads the read model from the local cache. Called once at startup;
// while offline this is the only source of records.
func (s *Service[R, Req]) Init(ctx context.Context) error {
	records, err := s.store.GetAll(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.records = records
	s.status = StatusIdle
	s.mu.Unlock()
	return nil
}

// Family returns the entity family this service drives.
func (s *Service[R, Req]) Family() common.Family { return s.family }

// Status returns the current command state.
func (s *Service[R, Req]) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.status == "" {
		return StatusIdle
	}
	return s.status
}

// All returns a copy of the read model keyed by id.
func (s *Service[R, Req]) All() map[string]R {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]R, len(s.records))
	for k, v := range s.records {
		out[k] = v
	}
	return out
}

// Get looks one record up in the read model.
func (s *Service[R, Req]) Get(id string) (R, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.records[id]
	return r, ok
}

// Create validates and stores a new record. Offline, the record is
// synthesized locally (client-generated id, timestamp, derived fields) and
// queued dirty. Online, a remote failure abandons the create entirely: the
// user resubmits, nothing is queued. This asymmetry with update/delete is
// deliberate.
func (s *Service[R, Req]) Create(ctx context.Context, req Req) (R, error) {
	var zero R
	if err := s.validateReq(req); err != nil {
		return zero, err
	}

	s.setStatus(StatusLoading)
	defer s.setStatus(StatusIdle)

	if !s.conn.Connected() {
		r, err := s.prepareCreate(ctx, req, uuid.NewString())
		if err != nil {
			return zero, err
		}
		if err := s.store.Put(ctx, r, false); err != nil {
			return zero, err
		}
		s.setRecord(r)
		return r, nil
	}

	canonical, err := s.remote.Create(ctx, req)
	if err != nil {
		s.notify.Error(fmt.Sprintf("Failed to create %s: %v", s.family, err))
		return zero, err
	}
	if err := s.store.Put(ctx, canonical, true); err != nil {
		return zero, err
	}
	s.setRecord(canonical)
	return canonical, nil
}

// Update rewrites an existing record under its id. The offline branch
// always succeeds locally and stays dirty until reconciliation.
func (s *Service[R, Req]) Update(ctx context.Context, id string, req Req) (R, error) {
	var zero R
	if err := s.validateReq(req); err != nil {
		return zero, err
	}

	existing, ok := s.Get(id)
	if !ok {
		return zero, fmt.Errorf("%s %s: %w", s.family, id, common.ErrorNotFound)
	}

	s.setStatus(StatusLoading)
	defer s.setStatus(StatusIdle)

	if !s.conn.Connected() {
		r, err := s.prepareUpdate(ctx, req, existing)
		if err != nil {
			return zero, err
		}
		if err := s.store.Put(ctx, r, false); err != nil {
			return zero, err
		}
		s.setRecord(r)
		return r, nil
	}

	canonical, err := s.remote.Update(ctx, id, req)
	if err != nil {
		s.notify.Error(fmt.Sprintf("Failed to update %s: %v", s.family, err))
		return zero, err
	}
	if err := s.store.Put(ctx, canonical, true); err != nil {
		return zero, err
	}
	s.setRecord(canonical)
	return canonical, nil
}

// Delete asks for confirmation, runs the family's delete guard, then
// removes the record. Offline, a previously synced record is only flagged
// and kept for reconciliation. Online, a remote failure leaves everything
// unchanged; a failed interactive delete is never retried silently.
func (s *Service[R, Req]) Delete(ctx context.Context, id string) error {
	existing, ok := s.Get(id)
	if !ok {
		return fmt.Errorf("%s %s: %w", s.family, id, common.ErrorNotFound)
	}

	confirmed, err := s.prompt.ConfirmDelete(ctx, s.describe(existing))
	if err != nil {
		return err
	}
	if !confirmed {
		return common.ErrorDeleteCancelled
	}

	if s.beforeDelete != nil {
		if err := s.beforeDelete(ctx, id); err != nil {
			s.notify.Error(err.Error())
			return err
		}
	}

	s.setStatus(StatusLoading)
	defer s.setStatus(StatusIdle)

	if !s.conn.Connected() {
		if err := s.store.Delete(ctx, id, false); err != nil {
			return err
		}
		s.removeRecord(id)
		return nil
	}

	if err := s.remote.Delete(ctx, id); err != nil {
		s.notify.Error(fmt.Sprintf("Failed to delete %s: %v", s.family, err))
		return err
	}
	if err := s.store.Delete(ctx, id, true); err != nil {
		return err
	}
	s.removeRecord(id)
	return nil
}

// Refresh pulls the family's full remote table into the local cache and
// rebuilds the read model. Triggered by the connectivity monitor on
// data-change events. Dirty local state overlays the pull: unsaved records
// stay visible and pending deletes stay hidden until reconciliation
// confirms them.
func (s *Service[R, Req]) Refresh(ctx context.Context) error {
	s.setStatus(StatusLoading)
	defer s.setStatus(StatusIdle)

	records, err := s.remote.List(ctx)
	if err != nil {
		return fmt.Errorf("refresh %s: %w", s.family, err)
	}
	if err := s.store.Refresh(ctx, records); err != nil {
		return err
	}
	if s.afterRefresh != nil {
		if err := s.afterRefresh(ctx, records); err != nil {
			return err
		}
	}

	toDelete, toAdd, err := s.store.UnsavedChanges(ctx)
	if err != nil {
		return err
	}
	merged := make(map[string]R, len(records)+len(toAdd))
	for id, r := range records {
		merged[id] = r
	}
	for _, r := range toAdd {
		merged[r.Key()] = r
	}
	for _, id := range toDelete {
		delete(merged, id)
	}

	s.mu.Lock()
	s.records = merged
	s.mu.Unlock()
	return nil
}

func (s *Service[R, Req]) setStatus(st Status) {
	s.mu.Lock()
	s.status = st
	s.mu.Unlock()
}

func (s *Service[R, Req]) setRecord(r R) {
	s.mu.Lock()
	if s.records == nil {
		s.records = make(map[string]R)
	}
	s.records[r.Key()] = r
	s.mu.Unlock()
}

func (s *Service[R, Req]) removeRecord(id string) {
	s.mu.Lock()
	delete(s.records, id)
	s.mu.Unlock()
}
