package cli

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/faktur-app/faktur/internal/common"
	"github.com/faktur-app/faktur/internal/models"
)

// Customers prints every customer in the read model, sorted by name.
func (a *App) Customers(ctx context.Context) error {
	all := a.customers.All()

	list := make([]models.Customer, 0, len(all))
	for _, c := range all {
		list = append(list, c)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Client < list[j].Client })

	if len(list) == 0 {
		fmt.Fprintln(a.out, "No customers.")
		return nil
	}
	for _, c := range list {
		fmt.Fprintf(a.out, "%s  %s  %s  %s\n", c.ID, c.Client, c.Phone, c.ClientAddress.City)
	}
	return nil
}

// AddCustomer interactively collects customer fields and creates the record.
func (a *App) AddCustomer(ctx context.Context) error {
	req, err := a.readCustomer(models.CustomerRequest{})
	if err != nil {
		fmt.Fprintln(a.out, "Error:", err)
		return err
	}

	c, err := a.customers.Create(ctx, req)
	if err != nil {
		fmt.Fprintln(a.out, "Error:", err)
		return err
	}
	fmt.Fprintf(a.out, "Created customer %s (%s)\n", c.Client, c.ID)
	return nil
}

// EditCustomer rewrites an existing customer. Empty input keeps the current
// value of a field.
func (a *App) EditCustomer(ctx context.Context) error {
	id, err := GetSimpleText(a.reader, "Enter customer id to edit", a.out)
	if err != nil {
		return err
	}
	existing, ok := a.customers.Get(id)
	if !ok {
		fmt.Fprintln(a.out, "Customer not found:", id)
		return common.ErrorNotFound
	}

	req, err := a.readCustomer(existing.CustomerRequest)
	if err != nil {
		fmt.Fprintln(a.out, "Error:", err)
		return err
	}

	c, err := a.customers.Update(ctx, id, req)
	if err != nil {
		fmt.Fprintln(a.out, "Error:", err)
		return err
	}
	fmt.Fprintf(a.out, "Updated customer %s\n", c.Client)
	return nil
}

// DeleteCustomer removes a customer after confirmation. Customers with
// outstanding invoices are refused.
func (a *App) DeleteCustomer(ctx context.Context) error {
	id, err := GetSimpleText(a.reader, "Enter customer id to delete", a.out)
	if err != nil {
		return err
	}

	err = a.customers.Delete(ctx, id)
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

// readCustomer prompts for every editable field, pre-filling from prev so
// edits can keep values by entering an empty line.
func (a *App) readCustomer(prev models.CustomerRequest) (models.CustomerRequest, error) {
	req := prev

	fields := []struct {
		prompt string
		dst    *string
	}{
		{"Name", &req.Client},
		{"Phone", &req.Phone},
		{"Address", &req.ClientAddress.Address},
		{"City", &req.ClientAddress.City},
		{"State", &req.ClientAddress.State},
		{"Country", &req.ClientAddress.Country},
		{"Postal code", &req.ClientAddress.PostalCode},
	}
	for _, f := range fields {
		prompt := f.prompt
		if *f.dst != "" {
			prompt = fmt.Sprintf("%s [%s]", f.prompt, *f.dst)
		}
		s, err := GetSimpleText(a.reader, prompt, a.out)
		if err != nil {
			return req, err
		}
		if s != "" {
			*f.dst = s
		}
	}

	return req, nil
}
