package store

import (
	"context"
	"database/sql"
	"fmt"
)

// InvoiceCounter allocates sequential invoice numbers per period key
// (year-month of the invoice date). Read-and-increment is not safe under
// concurrent writers; a single active client is assumed.
type InvoiceCounter struct {
	db *sql.DB
}

func NewInvoiceCounter(db *sql.DB) *InvoiceCounter {
	return &InvoiceCounter{db: db}
}

// Next returns the current counter value for the period and advances it.
// The first invoice of a period gets 0.
func (c *InvoiceCounter) Next(ctx context.Context, period string) (int64, error) {
	var n int64
	err := c.db.QueryRowContext(ctx,
		`SELECT next_no FROM invoice_counters WHERE period = ?`, period).Scan(&n)
	if err != nil && err != sql.ErrNoRows {
		return 0, fmt.Errorf("counter %s: %w", period, err)
	}

	_, err = c.db.ExecContext(ctx, `
		INSERT INTO invoice_counters (period, next_no) VALUES (?, ?)
		ON CONFLICT(period) DO UPDATE SET next_no = excluded.next_no
	`, period, n+1)
	if err != nil {
		return 0, fmt.Errorf("advance counter %s: %w", period, err)
	}

	return n, nil
}

// Advance raises the counter to at least n without handing a number out.
// Used after a pull to move past numbers the server allocated on its own.
func (c *InvoiceCounter) Advance(ctx context.Context, period string, n int64) error {
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO invoice_counters (period, next_no) VALUES (?, ?)
		ON CONFLICT(period) DO UPDATE SET next_no = excluded.next_no
		WHERE excluded.next_no > invoice_counters.next_no
	`, period, n)
	if err != nil {
		return fmt.Errorf("advance counter %s: %w", period, err)
	}
	return nil
}
