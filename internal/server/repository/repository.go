// Package repository persists the canonical record tables on Postgres.
// Records are stored as JSONB documents keyed by family and id; the server
// never inspects the documents beyond what the handlers decode.
package repository

import (
	"context"

	"github.com/faktur-app/faktur/internal/models"
)

// Records is the storage surface for one entity family.
type Records[R models.Record] interface {
	// List returns the family's full table keyed by id.
	List(ctx context.Context) (map[string]R, error)
	// Get returns one record, or common.ErrorNotFound.
	Get(ctx context.Context, id string) (R, error)
	// Upsert creates or replaces a record under its key.
	Upsert(ctx context.Context, r R) error
	// Delete removes a record, or returns common.ErrorNotFound.
	Delete(ctx context.Context, id string) error
}

// Counters hands out sequential per-period invoice numbers.
type Counters interface {
	// Next atomically advances the period's counter and returns the new
	// 1-based sequence number.
	Next(ctx context.Context, period string) (int64, error)
}
