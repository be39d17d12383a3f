package cli

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/faktur-app/faktur/internal/common"
	"github.com/faktur-app/faktur/internal/models"
)

// Items prints the billable catalog, sorted by name.
func (a *App) Items(ctx context.Context) error {
	all := a.items.All()

	list := make([]models.Item, 0, len(all))
	for _, i := range all {
		list = append(list, i)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })

	if len(list) == 0 {
		fmt.Fprintln(a.out, "No items.")
		return nil
	}
	for _, i := range list {
		fmt.Fprintf(a.out, "%s  %s  rate %d  %s\n", i.ID, i.Name, i.Rate, i.DefaultDesc)
	}
	return nil
}

// AddItem interactively collects item fields and creates the record.
func (a *App) AddItem(ctx context.Context) error {
	req, err := a.readItem(models.ItemRequest{})
	if err != nil {
		fmt.Fprintln(a.out, "Error:", err)
		return err
	}

	i, err := a.items.Create(ctx, req)
	if err != nil {
		fmt.Fprintln(a.out, "Error:", err)
		return err
	}
	fmt.Fprintf(a.out, "Created item %s (%s)\n", i.Name, i.ID)
	return nil
}

// EditItem rewrites an existing catalog item.
func (a *App) EditItem(ctx context.Context) error {
	id, err := GetSimpleText(a.reader, "Enter item id to edit", a.out)
	if err != nil {
		return err
	}
	existing, ok := a.items.Get(id)
	if !ok {
		fmt.Fprintln(a.out, "Item not found:", id)
		return common.ErrorNotFound
	}

	req, err := a.readItem(existing.ItemRequest)
	if err != nil {
		fmt.Fprintln(a.out, "Error:", err)
		return err
	}

	i, err := a.items.Update(ctx, id, req)
	if err != nil {
		fmt.Fprintln(a.out, "Error:", err)
		return err
	}
	fmt.Fprintf(a.out, "Updated item %s\n", i.Name)
	return nil
}

// DeleteItem removes a catalog item after confirmation.
func (a *App) DeleteItem(ctx context.Context) error {
	id, err := GetSimpleText(a.reader, "Enter item id to delete", a.out)
	if err != nil {
		return err
	}

	err = a.items.Delete(ctx, id)
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

func (a *App) readItem(prev models.ItemRequest) (models.ItemRequest, error) {
	req := prev

	namePrompt := "Name"
	if req.Name != "" {
		namePrompt = fmt.Sprintf("Name [%s]", req.Name)
	}
	name, err := GetSimpleText(a.reader, namePrompt, a.out)
	if err != nil {
		return req, err
	}
	if name != "" {
		req.Name = name
	}

	descPrompt := "Default description"
	if req.DefaultDesc != "" {
		descPrompt = fmt.Sprintf("Default description [%s]", req.DefaultDesc)
	}
	desc, err := GetSimpleText(a.reader, descPrompt, a.out)
	if err != nil {
		return req, err
	}
	if desc != "" {
		req.DefaultDesc = desc
	}

	rate, err := GetInt(a.reader, fmt.Sprintf("Rate per unit [%d]", req.Rate), a.out)
	if err != nil {
		return req, err
	}
	if rate != 0 {
		req.Rate = rate
	}

	return req, nil
}
