package models

import (
	"fmt"

	"github.com/faktur-app/faktur/internal/common"
)

// Request validators run before any write, local or remote; record
// validators additionally run at the storage boundary, where a failure is
// fatal to the triggering command.

// ValidateCustomerRequest checks the user-editable customer fields.
func ValidateCustomerRequest(req CustomerRequest) error {
	if req.Client == "" {
		return fmt.Errorf("%w: client name is required", common.ErrorValidation)
	}
	return nil
}

// ValidateCustomer checks a full customer record.
func ValidateCustomer(c Customer) error {
	if c.ID == "" {
		return fmt.Errorf("%w: customer id is required", common.ErrorValidation)
	}
	return ValidateCustomerRequest(c.CustomerRequest)
}

// ValidateItemRequest checks the user-editable catalog item fields.
func ValidateItemRequest(req ItemRequest) error {
	if req.Name == "" {
		return fmt.Errorf("%w: item name is required", common.ErrorValidation)
	}
	if req.Rate < 0 {
		return fmt.Errorf("%w: item rate must not be negative", common.ErrorValidation)
	}
	return nil
}

// ValidateItem checks a full catalog item record.
func ValidateItem(i Item) error {
	if i.ID == "" {
		return fmt.Errorf("%w: item id is required", common.ErrorValidation)
	}
	return ValidateItemRequest(i.ItemRequest)
}

// ValidateInvoiceRequest checks the user-editable invoice fields and line
// shape.
func ValidateInvoiceRequest(req InvoiceRequest) error {
	if req.CustomerID == "" {
		return fmt.Errorf("%w: invoice customer is required", common.ErrorValidation)
	}
	if req.Date == "" {
		return fmt.Errorf("%w: invoice date is required", common.ErrorValidation)
	}
	if len(req.Items) == 0 {
		return fmt.Errorf("%w: invoice needs at least one line", common.ErrorValidation)
	}
	for n, line := range req.Items {
		if line.Name == "" {
			return fmt.Errorf("%w: line %d: name is required", common.ErrorValidation, n+1)
		}
		if line.Quantity <= 0 && line.MetricQuantity <= 0 {
			return fmt.Errorf("%w: line %d: quantity is required", common.ErrorValidation, n+1)
		}
	}
	return nil
}

// ValidateInvoice checks a full invoice record.
func ValidateInvoice(inv Invoice) error {
	if inv.ID == "" {
		return fmt.Errorf("%w: invoice id is required", common.ErrorValidation)
	}
	return ValidateInvoiceRequest(inv.InvoiceRequest)
}
