// Package store implements the per-family local cache: a durable key-value
// table of flagged records (saved / marked-to-delete) plus the family's
// isSynced flag. It is the single source of truth while offline and the
// dirty tracker that feeds reconciliation.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/faktur-app/faktur/internal/common"
	"github.com/faktur-app/faktur/internal/dbx"
	"github.com/faktur-app/faktur/internal/models"
)

// Store is a syncable local store for one entity family. Records are kept
// as JSON documents; the sync flags live beside them as columns and are
// stripped on every read.
type Store[R models.Record] struct {
	db       *sql.DB
	family   common.Family
	validate func(R) error

	mu          sync.Mutex
	onSyncState func(bool)
}

// New binds a store to one family. The validate function runs on every
// write; a failing record is rejected before any mutation.
func New[R models.Record](db *sql.DB, family common.Family, validate func(R) error) *Store[R] {
	return &Store[R]{db: db, family: family, validate: validate}
}

// Family returns the entity family this store serves.
func (s *Store[R]) Family() common.Family { return s.family }

// OnSyncStateChange registers the single physical listener notified on
// every isSynced transition. Fan-out to multiple observers is the
// publisher's job, not the store's.
func (s *Store[R]) OnSyncStateChange(fn func(bool)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onSyncState = fn
}

// GetAll returns every record keyed by id with the sync flags stripped.
// Records that are marked to delete are included: the flag is a
// recoverability marker, only a confirmed remote delete removes rows.
func (s *Store[R]) GetAll(ctx context.Context) (map[string]R, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, doc FROM records WHERE family = ?`, s.family)
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", s.family, err)
	}
	defer rows.Close()

	result := make(map[string]R)
	for rows.Next() {
		var id string
		var doc []byte
		if err := rows.Scan(&id, &doc); err != nil {
			return nil, err
		}
		var r R
		if err := json.Unmarshal(doc, &r); err != nil {
			return nil, fmt.Errorf("decode %s %s: %w", s.family, id, err)
		}
		result[id] = r
	}
	return result, rows.Err()
}

// Put upserts a record. synced=true means the record state is known to be
// persisted remotely exactly as stored; synced=false marks it dirty and
// flips the family's isSynced flag.
func (s *Store[R]) Put(ctx context.Context, r R, synced bool) error {
	if err := s.validate(r); err != nil {
		return err
	}
	doc, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode %s %s: %w", s.family, r.Key(), err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO records (family, id, doc, saved, marked_to_delete)
		VALUES (?, ?, ?, ?, 0)
		ON CONFLICT(family, id) DO UPDATE SET
			doc = excluded.doc,
			saved = excluded.saved,
			marked_to_delete = 0
	`, s.family, r.Key(), doc, boolInt(synced))
	if err != nil {
		return fmt.Errorf("upsert %s %s: %w", s.family, r.Key(), err)
	}

	if !synced {
		return s.setIsSynced(ctx, false)
	}
	return nil
}

// Delete removes or flags a record. With synced=true (a confirmed remote
// delete) the row is removed physically. With synced=false a previously
// saved record is retained and marked to delete pending reconciliation; a
// record that was never pushed has nothing remote to reconcile and is
// removed outright.
func (s *Store[R]) Delete(ctx context.Context, id string, synced bool) error {
	if !synced {
		var saved int
		err := s.db.QueryRowContext(ctx,
			`SELECT saved FROM records WHERE family = ? AND id = ?`, s.family, id).Scan(&saved)
		if err == sql.ErrNoRows {
			return fmt.Errorf("%s %s: %w", s.family, id, common.ErrorNotFound)
		}
		if err != nil {
			return fmt.Errorf("select %s %s: %w", s.family, id, err)
		}

		if saved == 1 {
			_, err := s.db.ExecContext(ctx,
				`UPDATE records SET marked_to_delete = 1 WHERE family = ? AND id = ?`, s.family, id)
			if err != nil {
				return fmt.Errorf("flag %s %s: %w", s.family, id, err)
			}
			return s.setIsSynced(ctx, false)
		}
	}

	_, err := s.db.ExecContext(ctx,
		`DELETE FROM records WHERE family = ? AND id = ?`, s.family, id)
	if err != nil {
		return fmt.Errorf("delete %s %s: %w", s.family, id, err)
	}
	return nil
}

// Refresh replaces the family's clean rows with a fully-synced snapshot,
// typically the result of a remote list-all pull. Dirty rows survive
// untouched: a pull must never discard a local write that has not reached
// the remote yet. The family is marked clean only when no dirty rows
// remain.
func (s *Store[R]) Refresh(ctx context.Context, records map[string]R) error {
	var dirty int
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := tx.ExecContext(ctx, `
			DELETE FROM records
			WHERE family = ? AND saved = 1 AND marked_to_delete = 0
		`, s.family); err != nil {
			return err
		}
		for id, r := range records {
			if err := s.validate(r); err != nil {
				return err
			}
			doc, err := json.Marshal(r)
			if err != nil {
				return fmt.Errorf("encode %s %s: %w", s.family, id, err)
			}
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO records (family, id, doc, saved, marked_to_delete)
				VALUES (?, ?, ?, 1, 0)
				ON CONFLICT(family, id) DO NOTHING
			`, s.family, id, doc); err != nil {
				return err
			}
		}
		return tx.QueryRowContext(ctx, `
			SELECT COUNT(*) FROM records
			WHERE family = ? AND (saved = 0 OR marked_to_delete = 1)
		`, s.family).Scan(&dirty)
	})
	if err != nil {
		return fmt.Errorf("refresh %s: %w", s.family, err)
	}

	return s.setIsSynced(ctx, dirty == 0)
}

// UnsavedChanges scans the family and derives what reconciliation must
// replay: ids flagged for deletion and the latest local state of every
// unsaved record.
func (s *Store[R]) UnsavedChanges(ctx context.Context) (toDelete []string, toAdd []R, err error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, doc, saved, marked_to_delete
		FROM records WHERE family = ?
	`, s.family)
	if err != nil {
		return nil, nil, fmt.Errorf("select %s: %w", s.family, err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		var doc []byte
		var saved, marked int
		if err := rows.Scan(&id, &doc, &saved, &marked); err != nil {
			return nil, nil, err
		}
		if saved == 0 {
			var r R
			if err := json.Unmarshal(doc, &r); err != nil {
				return nil, nil, fmt.Errorf("decode %s %s: %w", s.family, id, err)
			}
			toAdd = append(toAdd, r)
		}
		if marked == 1 {
			toDelete = append(toDelete, id)
		}
	}
	return toDelete, toAdd, rows.Err()
}

// GetIsSynced reports whether the family has any unreconciled local state.
func (s *Store[R]) GetIsSynced(ctx context.Context) (bool, error) {
	var v int
	err := s.db.QueryRowContext(ctx,
		`SELECT is_synced FROM sync_state WHERE family = ?`, s.family).Scan(&v)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("sync state %s: %w", s.family, err)
	}
	return v == 1, nil
}

// SetSynced marks the family clean. Called by the orchestrator after a
// reconciliation pass with zero failures.
func (s *Store[R]) SetSynced(ctx context.Context) error {
	return s.setIsSynced(ctx, true)
}

func (s *Store[R]) setIsSynced(ctx context.Context, v bool) error {
	old, err := s.GetIsSynced(ctx)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sync_state (family, is_synced) VALUES (?, ?)
		ON CONFLICT(family) DO UPDATE SET is_synced = excluded.is_synced
	`, s.family, boolInt(v))
	if err != nil {
		return fmt.Errorf("set sync state %s: %w", s.family, err)
	}

	if old != v {
		s.mu.Lock()
		fn := s.onSyncState
		s.mu.Unlock()
		if fn != nil {
			fn(v)
		}
	}
	return nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
