package cli

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/faktur-app/faktur/internal/common"
	"github.com/faktur-app/faktur/internal/models"
)

// Invoices prints every invoice in the read model, sorted by number.
func (a *App) Invoices(ctx context.Context) error {
	all := a.invoices.All()

	list := make([]models.Invoice, 0, len(all))
	for _, inv := range all {
		list = append(list, inv)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].InvoiceNo < list[j].InvoiceNo })

	if len(list) == 0 {
		fmt.Fprintln(a.out, "No invoices.")
		return nil
	}
	for _, inv := range list {
		fmt.Fprintf(a.out, "%s  %s  %s  %s  total %d\n",
			inv.ID, inv.InvoiceNo, inv.Date, inv.Client, inv.Total)
	}
	return nil
}

// AddInvoice interactively builds an invoice: customer, date, line items
// from the catalog, tax and notes. Totals and the invoice number are
// assigned by the service.
func (a *App) AddInvoice(ctx context.Context) error {
	req, err := a.readInvoice(ctx, models.InvoiceRequest{})
	if err != nil {
		fmt.Fprintln(a.out, "Error:", err)
		return err
	}

	inv, err := a.invoices.Create(ctx, req)
	if err != nil {
		fmt.Fprintln(a.out, "Error:", err)
		return err
	}
	fmt.Fprintf(a.out, "Created invoice %s, total %d\n", inv.InvoiceNo, inv.Total)
	return nil
}

// EditInvoice rewrites an invoice's editable fields. The invoice number and
// creation date are kept; totals are recomputed.
func (a *App) EditInvoice(ctx context.Context) error {
	id, err := GetSimpleText(a.reader, "Enter invoice id to edit", a.out)
	if err != nil {
		return err
	}
	existing, ok := a.invoices.Get(id)
	if !ok {
		fmt.Fprintln(a.out, "Invoice not found:", id)
		return common.ErrorNotFound
	}

	req, err := a.readInvoice(ctx, existing.InvoiceRequest)
	if err != nil {
		fmt.Fprintln(a.out, "Error:", err)
		return err
	}

	inv, err := a.invoices.Update(ctx, id, req)
	if err != nil {
		fmt.Fprintln(a.out, "Error:", err)
		return err
	}
	fmt.Fprintf(a.out, "Updated invoice %s, total %d\n", inv.InvoiceNo, inv.Total)
	return nil
}

// DeleteInvoice removes an invoice after confirmation.
func (a *App) DeleteInvoice(ctx context.Context) error {
	id, err := GetSimpleText(a.reader, "Enter invoice id to delete", a.out)
	if err != nil {
		return err
	}

	err = a.invoices.Delete(ctx, id)
	switch {
	case errors.Is(err, common.ErrorDeleteCancelled):
		fmt.Fprintln(a.out, "Cancelled.")
		return nil
	case err != nil:
		fmt.Fprintln(a.out, "Error:", err)
		return err
	}
	fmt.Fprintln(a.out, "Deleted.")
	return nil
}

// ShowInvoice prints one invoice in full, line by line.
func (a *App) ShowInvoice(ctx context.Context) error {
	id, err := GetSimpleText(a.reader, "Enter invoice id to show", a.out)
	if err != nil {
		return err
	}
	inv, ok := a.invoices.Get(id)
	if !ok {
		fmt.Fprintln(a.out, "Invoice not found:", id)
		return common.ErrorNotFound
	}

	fmt.Fprintf(a.out, "Invoice %s  %s\n", inv.InvoiceNo, inv.Date)
	fmt.Fprintf(a.out, "Customer: %s\n", inv.Client)
	for _, line := range inv.Items {
		qty := models.FormatQuantity(line.MetricQuantity)
		if line.MetricQuantity == 0 {
			qty = fmt.Sprintf("%d", line.Quantity)
		}
		fmt.Fprintf(a.out, "  %-20s %s x %d = %d\n", line.Name, qty, line.Rate, line.Amount)
	}
	fmt.Fprintf(a.out, "Subtotal: %d\n", inv.Subtotal)
	if inv.Tax > 0 {
		fmt.Fprintf(a.out, "Tax:      %d%%\n", inv.Tax)
	}
	fmt.Fprintf(a.out, "Total:    %d\n", inv.Total)
	if inv.InvoiceNote != "" {
		fmt.Fprintf(a.out, "Note: %s\n", inv.InvoiceNote)
	}
	return nil
}

func (a *App) readInvoice(ctx context.Context, prev models.InvoiceRequest) (models.InvoiceRequest, error) {
	req := prev

	custPrompt := "Customer id"
	if req.CustomerID != "" {
		custPrompt = fmt.Sprintf("Customer id [%s]", req.CustomerID)
	}
	custID, err := GetSimpleText(a.reader, custPrompt, a.out)
	if err != nil {
		return req, err
	}
	if custID != "" {
		cust, ok := a.customers.Get(custID)
		if !ok {
			return req, fmt.Errorf("customer %s: %w", custID, common.ErrorNotFound)
		}
		req.CustomerID = cust.ID
		req.Client = cust.Client
		req.ClientAddress = cust.ClientAddress
	}

	datePrompt := "Date (DD/MM/YYYY)"
	if req.Date != "" {
		datePrompt = fmt.Sprintf("Date (DD/MM/YYYY) [%s]", req.Date)
	}
	date, err := GetSimpleText(a.reader, datePrompt, a.out)
	if err != nil {
		return req, err
	}
	if date != "" {
		req.Date = date
	}

	lines, err := a.readInvoiceLines()
	if err != nil {
		return req, err
	}
	if len(lines) > 0 {
		req.Items = lines
	}

	tax, err := GetInt(a.reader, fmt.Sprintf("Tax %% [%d]", req.Tax), a.out)
	if err != nil {
		return req, err
	}
	if tax != 0 {
		req.Tax = tax
	}

	note, err := GetSimpleText(a.reader, "Invoice note (optional)", a.out)
	if err != nil {
		return req, err
	}
	if note != "" {
		req.InvoiceNote = note
	}

	return req, nil
}

// readInvoiceLines collects invoice lines until the user enters an empty
// item name. Known catalog items pre-fill description and rate; a quantity
// with a decimal point becomes a metric quantity.
func (a *App) readInvoiceLines() ([]models.InvoiceLine, error) {
	var lines []models.InvoiceLine

	for {
		name, err := GetSimpleText(a.reader, "Item name (empty line to finish)", a.out)
		if err != nil {
			return nil, err
		}
		if name == "" {
			return lines, nil
		}

		line := models.InvoiceLine{Name: name}
		if item, ok := a.findItemByName(name); ok {
			line.Description = item.DefaultDesc
			line.Rate = item.Rate
		}

		descPrompt := "Description"
		if line.Description != "" {
			descPrompt = fmt.Sprintf("Description [%s]", line.Description)
		}
		desc, err := GetSimpleText(a.reader, descPrompt, a.out)
		if err != nil {
			return nil, err
		}
		if desc != "" {
			line.Description = desc
		}

		rate, err := GetInt(a.reader, fmt.Sprintf("Rate [%d]", line.Rate), a.out)
		if err != nil {
			return nil, err
		}
		if rate != 0 {
			line.Rate = rate
		}

		qty, err := GetSimpleText(a.reader, "Quantity", a.out)
		if err != nil {
			return nil, err
		}
		if strings.Contains(qty, ".") {
			mq, err := models.ParseQuantity(qty)
			if err != nil {
				return nil, err
			}
			line.MetricQuantity = mq
		} else {
			n, err := strconv.ParseInt(strings.TrimSpace(qty), 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid quantity %q", qty)
			}
			line.Quantity = n
		}

		lines = append(lines, line)
	}
}

func (a *App) findItemByName(name string) (models.Item, bool) {
	for _, item := range a.items.All() {
		if strings.EqualFold(item.Name, name) {
			return item, true
		}
	}
	return models.Item{}, false
}
