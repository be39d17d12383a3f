package common

// Family identifies one syncable entity family. Each family has its own
// local cache table, dirty tracking and sync cycle.
type Family string

const (
	FamilyCustomers Family = "customers"
	FamilyItems     Family = "items"
	FamilyInvoices  Family = "invoices"
)

// Families lists every entity family in sync order. Reconciliation treats
// families independently, so the order only affects logging.
var Families = []Family{FamilyCustomers, FamilyItems, FamilyInvoices}
