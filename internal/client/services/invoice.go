package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/faktur-app/faktur/internal/client/remote"
	"github.com/faktur-app/faktur/internal/client/store"
	"github.com/faktur-app/faktur/internal/common"
	"github.com/faktur-app/faktur/internal/logging"
	"github.com/faktur-app/faktur/internal/models"
)

// InvoiceService wraps the generic service so the customer family can
// check referential integrity against the invoice read model.
type InvoiceService struct {
	*Service[models.Invoice, models.InvoiceRequest]
}

// HasInvoicesFor reports whether any invoice references the customer.
func (s *InvoiceService) HasInvoicesFor(customerID string) bool {
	for _, inv := range s.All() {
		if inv.CustomerID == customerID {
			return true
		}
	}
	return false
}

// NewInvoiceService builds the invoice family service. Offline creates
// synthesize the invoice number from the per-period counter and compute
// totals locally; online, the server is authoritative for both.
func NewInvoiceService(
	st *store.Store[models.Invoice],
	rc remote.Client[models.Invoice],
	counter *store.InvoiceCounter,
	conn Connectivity,
	prompt Prompter,
	notify Notifier,
	log logging.Logger,
) *InvoiceService {
	s := &Service[models.Invoice, models.InvoiceRequest]{
		family:      common.FamilyInvoices,
		store:       st,
		remote:      rc,
		conn:        conn,
		prompt:      prompt,
		notify:      notify,
		log:         log.With("family", common.FamilyInvoices),
		validateReq: models.ValidateInvoiceRequest,
	}

	s.prepareCreate = func(ctx context.Context, req models.InvoiceRequest, id string) (models.Invoice, error) {
		inv := models.Invoice{
			InvoiceRequest: req,
			ID:             id,
			CreatedAt:      nowFn().Format(dateLayout),
		}
		inv.ComputeTotals()

		period, err := InvoicePeriod(req.Date)
		if err != nil {
			return models.Invoice{}, err
		}
		seq, err := counter.Next(ctx, period)
		if err != nil {
			return models.Invoice{}, err
		}
		inv.InvoiceNo = FormatInvoiceNo(period, seq)
		return inv, nil
	}

	s.prepareUpdate = func(ctx context.Context, req models.InvoiceRequest, existing models.Invoice) (models.Invoice, error) {
		inv := models.Invoice{
			InvoiceRequest: req,
			ID:             existing.ID,
			InvoiceNo:      existing.InvoiceNo,
			CreatedAt:      existing.CreatedAt,
		}
		inv.ComputeTotals()
		return inv, nil
	}

	s.describe = func(inv models.Invoice) string {
		return fmt.Sprintf("invoice #%s", inv.InvoiceNo)
	}

	// The server allocates numbers from its own counter while this client
	// is offline. After every pull the local counter moves past whatever
	// the server handed out, so the next offline create does not reuse a
	// number.
	s.afterRefresh = func(ctx context.Context, records map[string]models.Invoice) error {
		highest := map[string]int64{}
		for _, inv := range records {
			period, seq, ok := parseInvoiceNo(inv.InvoiceNo)
			if !ok {
				continue
			}
			if seq > highest[period] {
				highest[period] = seq
			}
		}
		for period, seq := range highest {
			if err := counter.Advance(ctx, period, seq); err != nil {
				return err
			}
		}
		return nil
	}

	return &InvoiceService{Service: s}
}

// InvoicePeriod derives the counter key (year-month) from an invoice date.
func InvoicePeriod(date string) (string, error) {
	t, err := time.Parse(dateLayout, date)
	if err != nil {
		return "", fmt.Errorf("%w: invalid invoice date %q", common.ErrorValidation, date)
	}
	return t.Format("2006-01"), nil
}

// FormatInvoiceNo renders a sequential invoice number, first of the period
// being 0001.
func FormatInvoiceNo(period string, seq int64) string {
	return fmt.Sprintf("INV/%s/%04d", period, seq+1)
}

func parseInvoiceNo(no string) (period string, seq int64, ok bool) {
	parts := strings.Split(no, "/")
	if len(parts) != 3 || parts[0] != "INV" {
		return "", 0, false
	}
	seq, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return "", 0, false
	}
	return parts[1], seq, true
}
