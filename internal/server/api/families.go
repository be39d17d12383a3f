package api

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/faktur-app/faktur/internal/common"
	"github.com/faktur-app/faktur/internal/logging"
	"github.com/faktur-app/faktur/internal/models"
	"github.com/faktur-app/faktur/internal/server/repository"
)

// nowFn is a test seam for the timestamps assigned to created records.
var nowFn = time.Now

// NewCustomerHandler builds the customers endpoint. Customers referenced by
// any invoice cannot be deleted.
func NewCustomerHandler(
	repo repository.Records[models.Customer],
	invoices repository.Records[models.Invoice],
	broadcast Broadcaster,
	log logging.Logger,
) *Handler[models.Customer] {
	h := &Handler[models.Customer]{
		family:    common.FamilyCustomers,
		repo:      repo,
		broadcast: broadcast,
		log:       log.With("family", common.FamilyCustomers),
	}

	h.prepare = func(ctx context.Context, incoming models.Customer, id string, existing *models.Customer) (models.Customer, error) {
		c := incoming
		c.ID = id
		if c.ID == "" {
			c.ID = uuid.NewString()
		}
		if existing != nil {
			c.CreatedAt = existing.CreatedAt
		}
		if c.CreatedAt == "" {
			c.CreatedAt = nowFn().Format(dateLayout)
		}
		return c, models.ValidateCustomer(c)
	}

	h.beforeDelete = func(ctx context.Context, id string) error {
		all, err := invoices.List(ctx)
		if err != nil {
			return err
		}
		for _, inv := range all {
			if inv.CustomerID == id {
				return fmt.Errorf("%w: this customer still has invoices; delete them first",
					common.ErrorCustomerHasInvoices)
			}
		}
		return nil
	}

	return h
}

// NewItemHandler builds the catalog items endpoint.
func NewItemHandler(
	repo repository.Records[models.Item],
	broadcast Broadcaster,
	log logging.Logger,
) *Handler[models.Item] {
	h := &Handler[models.Item]{
		family:    common.FamilyItems,
		repo:      repo,
		broadcast: broadcast,
		log:       log.With("family", common.FamilyItems),
	}

	h.prepare = func(ctx context.Context, incoming models.Item, id string, existing *models.Item) (models.Item, error) {
		i := incoming
		i.ID = id
		if i.ID == "" {
			i.ID = uuid.NewString()
		}
		if existing != nil {
			i.CreatedAt = existing.CreatedAt
		}
		if i.CreatedAt == "" {
			i.CreatedAt = nowFn().Format(dateLayout)
		}
		return i, models.ValidateItem(i)
	}

	return h
}

// NewInvoiceHandler builds the invoices endpoint. The server is
// authoritative for totals; invoice numbers are assigned from the
// per-period counter unless the record already carries one (offline-created
// invoices keep their locally assigned number).
func NewInvoiceHandler(
	repo repository.Records[models.Invoice],
	counters repository.Counters,
	broadcast Broadcaster,
	log logging.Logger,
) *Handler[models.Invoice] {
	h := &Handler[models.Invoice]{
		family:    common.FamilyInvoices,
		repo:      repo,
		broadcast: broadcast,
		log:       log.With("family", common.FamilyInvoices),
	}

	h.prepare = func(ctx context.Context, incoming models.Invoice, id string, existing *models.Invoice) (models.Invoice, error) {
		inv := incoming
		inv.ID = id
		if inv.ID == "" {
			inv.ID = uuid.NewString()
		}
		if existing != nil {
			inv.CreatedAt = existing.CreatedAt
			if inv.InvoiceNo == "" {
				inv.InvoiceNo = existing.InvoiceNo
			}
		}
		if inv.CreatedAt == "" {
			inv.CreatedAt = nowFn().Format(dateLayout)
		}

		inv.ComputeTotals()

		if err := models.ValidateInvoiceRequest(inv.InvoiceRequest); err != nil {
			return inv, err
		}
		if inv.InvoiceNo == "" {
			period, err := invoicePeriod(inv.Date)
			if err != nil {
				return inv, err
			}
			seq, err := counters.Next(ctx, period)
			if err != nil {
				return inv, err
			}
			inv.InvoiceNo = fmt.Sprintf("INV/%s/%04d", period, seq)
		}
		return inv, models.ValidateInvoice(inv)
	}

	return h
}

func invoicePeriod(date string) (string, error) {
	t, err := time.Parse(dateLayout, date)
	if err != nil {
		return "", fmt.Errorf("%w: invalid invoice date %q", common.ErrorValidation, date)
	}
	return t.Format("2006-01"), nil
}
