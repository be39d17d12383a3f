package services

import (
	"context"
	"fmt"

	"github.com/faktur-app/faktur/internal/client/remote"
	"github.com/faktur-app/faktur/internal/client/store"
	"github.com/faktur-app/faktur/internal/common"
	"github.com/faktur-app/faktur/internal/logging"
	"github.com/faktur-app/faktur/internal/models"
)

// InvoiceIndex answers whether any invoice still references a customer.
// Implemented by the invoice service's read model.
type InvoiceIndex interface {
	HasInvoicesFor(customerID string) bool
}

// NewCustomerService builds the customer family service. A customer with
// outstanding invoices can never be deleted.
func NewCustomerService(
	st *store.Store[models.Customer],
	rc remote.Client[models.Customer],
	conn Connectivity,
	prompt Prompter,
	notify Notifier,
	log logging.Logger,
	invoices InvoiceIndex,
) *Service[models.Customer, models.CustomerRequest] {
	s := &Service[models.Customer, models.CustomerRequest]{
		family:      common.FamilyCustomers,
		store:       st,
		remote:      rc,
		conn:        conn,
		prompt:      prompt,
		notify:      notify,
		log:         log.With("family", common.FamilyCustomers),
		validateReq: models.ValidateCustomerRequest,
	}

	s.prepareCreate = func(ctx context.Context, req models.CustomerRequest, id string) (models.Customer, error) {
		return models.Customer{
			CustomerRequest: req,
			ID:              id,
			CreatedAt:       nowFn().Format(dateLayout),
		}, nil
	}

	s.prepareUpdate = func(ctx context.Context, req models.CustomerRequest, existing models.Customer) (models.Customer, error) {
		return models.Customer{
			CustomerRequest: req,
			ID:              existing.ID,
			CreatedAt:       nowFn().Format(dateLayout),
		}, nil
	}

	s.describe = func(c models.Customer) string {
		return fmt.Sprintf("customer %q", c.Client)
	}

	s.beforeDelete = func(ctx context.Context, id string) error {
		if invoices.HasInvoicesFor(id) {
			return fmt.Errorf("%w: this customer still has invoices; delete them first",
				common.ErrorCustomerHasInvoices)
		}
		return nil
	}

	return s
}
