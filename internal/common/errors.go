// Package common defines shared constants and sentinel errors used across
// client and server layers of faktur. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal = errors.New("internal error")

	// Validation errors: a record failed its schema check at the storage
	// boundary, or a request is missing required fields.
	ErrorValidation = errors.New("validation error")

	// ErrorOffline indicates a remote call was requested while the
	// connectivity state is disconnected.
	ErrorOffline = errors.New("not connected")

	// ErrorCustomerHasInvoices rejects deletion of a customer that is still
	// referenced by at least one invoice.
	ErrorCustomerHasInvoices = errors.New("customer has invoices")

	// ErrorDeleteCancelled reports that the user declined the confirmation
	// prompt. Not surfaced as a toast.
	ErrorDeleteCancelled = errors.New("delete cancelled")
)
