// Package models defines the three entity families handled by faktur
// (customers, catalog items, invoices) together with the invoice arithmetic
// shared by client and server.
package models

// Record is implemented by every syncable entity family. The key is the
// client-generated identifier; it is never remapped, the same id is reused
// when the record is later pushed to the remote service.
type Record interface {
	Key() string
}

// Address is a customer billing address. All fields are optional.
type Address struct {
	Address    string `json:"address,omitempty"`
	City       string `json:"city,omitempty"`
	State      string `json:"state,omitempty"`
	Country    string `json:"country,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
}

// CustomerRequest carries the user-editable customer fields.
type CustomerRequest struct {
	Client        string  `json:"client"`
	ClientAddress Address `json:"client_address,omitempty"`
	Phone         string  `json:"phone,omitempty"`
}

// Customer extends CustomerRequest with server-assigned metadata. When a
// customer is created offline, ID and CreatedAt are synthesized locally.
type Customer struct {
	CustomerRequest
	ID        string `json:"id"`
	CreatedAt string `json:"createdAt"`
}

func (c Customer) Key() string { return c.ID }

// ItemRequest carries the user-editable catalog item fields. Rate is an
// integer amount of currency per unit.
type ItemRequest struct {
	Name        string `json:"name"`
	DefaultDesc string `json:"defaultDesc,omitempty"`
	Rate        int64  `json:"rate"`
}

// Item is a billable catalog item.
type Item struct {
	ItemRequest
	ID        string `json:"id"`
	CreatedAt string `json:"createdAt"`
}

func (i Item) Key() string { return i.ID }

// InvoiceLine is one line of an invoice. Exactly one of Quantity (whole
// units) and MetricQuantity (thousandths of a unit, see ParseQuantity) is
// set. Amount is the derived line total.
type InvoiceLine struct {
	Name           string `json:"name"`
	Description    string `json:"description,omitempty"`
	Rate           int64  `json:"rate"`
	Quantity       int64  `json:"quantity,omitempty"`
	MetricQuantity int64  `json:"metricQuantity,omitempty"`
	Amount         int64  `json:"amount"`
}

// InvoiceRequest carries the user-editable invoice fields.
type InvoiceRequest struct {
	CustomerID    string        `json:"customerId"`
	Client        string        `json:"client"`
	ClientAddress Address       `json:"client_address,omitempty"`
	Date          string        `json:"date"`
	Items         []InvoiceLine `json:"items"`
	Tax           int64         `json:"tax,omitempty"`
	InvoiceNote   string        `json:"invoiceNote,omitempty"`
	ReceiptNote   string        `json:"receiptNote,omitempty"`
	ReceiptDesc   string        `json:"receiptDesc,omitempty"`
}

// Invoice extends InvoiceRequest with assigned metadata and computed totals.
type Invoice struct {
	InvoiceRequest
	ID        string `json:"id"`
	InvoiceNo string `json:"invoice_no"`
	CreatedAt string `json:"createdAt"`
	Subtotal  int64  `json:"subtotal"`
	Total     int64  `json:"total"`
}

func (i Invoice) Key() string { return i.ID }
