package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/faktur-app/faktur/internal/common"
	"github.com/faktur-app/faktur/internal/models"
)

// PostgresRecords implements Records on the shared records table.
type PostgresRecords[R models.Record] struct {
	db     *sql.DB
	family common.Family
}

func NewPostgresRecords[R models.Record](db *sql.DB, family common.Family) *PostgresRecords[R] {
	return &PostgresRecords[R]{db: db, family: family}
}

func (r *PostgresRecords[R]) List(ctx context.Context) (map[string]R, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, doc FROM records WHERE family = $1`, r.family)
	if err != nil {
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}
	defer rows.Close()

	result := make(map[string]R)
	for rows.Next() {
		var id string
		var doc []byte
		if err := rows.Scan(&id, &doc); err != nil {
			return nil, err
		}
		var rec R
		if err := json.Unmarshal(doc, &rec); err != nil {
			return nil, fmt.Errorf("decode %s %s: %w", r.family, id, err)
		}
		result[id] = rec
	}
	return result, rows.Err()
}

func (r *PostgresRecords[R]) Get(ctx context.Context, id string) (R, error) {
	var rec R
	var doc []byte

	err := r.db.QueryRowContext(ctx,
		`SELECT doc FROM records WHERE family = $1 AND id = $2`, r.family, id).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return rec, fmt.Errorf("%s %s: %w", r.family, id, common.ErrorNotFound)
	}
	if err != nil {
		return rec, fmt.Errorf("error performing sql request: %w", err)
	}

	if err := json.Unmarshal(doc, &rec); err != nil {
		return rec, fmt.Errorf("decode %s %s: %w", r.family, id, err)
	}
	return rec, nil
}

func (r *PostgresRecords[R]) Upsert(ctx context.Context, rec R) error {
	doc, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode %s %s: %w", r.family, rec.Key(), err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO records (family, id, doc)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (family, id) DO UPDATE SET doc = EXCLUDED.doc, updated_at = NOW()`,
		r.family, rec.Key(), doc)
	if err != nil {
		return fmt.Errorf("error performing sql request: %w", err)
	}
	return nil
}

func (r *PostgresRecords[R]) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM records WHERE family = $1 AND id = $2`, r.family, id)
	if err != nil {
		return fmt.Errorf("error performing sql request: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", r.family, id, common.ErrorNotFound)
	}
	return nil
}

// PostgresCounters implements Counters on the invoice_counters table.
type PostgresCounters struct {
	db *sql.DB
}

func NewPostgresCounters(db *sql.DB) *PostgresCounters {
	return &PostgresCounters{db: db}
}

func (c *PostgresCounters) Next(ctx context.Context, period string) (int64, error) {
	var n int64
	err := c.db.QueryRowContext(ctx,
		`INSERT INTO invoice_counters (period, next_no)
		 VALUES ($1, 1)
		 ON CONFLICT (period) DO UPDATE SET next_no = invoice_counters.next_no + 1
		 RETURNING next_no`, period).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("error performing sql request: %w", err)
	}
	return n, nil
}
