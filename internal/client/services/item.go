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

// NewItemService builds the catalog item family service.
func NewItemService(
	st *store.Store[models.Item],
	rc remote.Client[models.Item],
	conn Connectivity,
	prompt Prompter,
	notify Notifier,
	log logging.Logger,
) *Service[models.Item, models.ItemRequest] {
	s := &Service[models.Item, models.ItemRequest]{
		family:      common.FamilyItems,
		store:       st,
		remote:      rc,
		conn:        conn,
		prompt:      prompt,
		notify:      notify,
		log:         log.With("family", common.FamilyItems),
		validateReq: models.ValidateItemRequest,
	}

	s.prepareCreate = func(ctx context.Context, req models.ItemRequest, id string) (models.Item, error) {
		return models.Item{
			ItemRequest: req,
			ID:          id,
			CreatedAt:   nowFn().Format(dateLayout),
		}, nil
	}

	s.prepareUpdate = func(ctx context.Context, req models.ItemRequest, existing models.Item) (models.Item, error) {
		return models.Item{
			ItemRequest: req,
			ID:          existing.ID,
			CreatedAt:   nowFn().Format(dateLayout),
		}, nil
	}

	s.describe = func(i models.Item) string {
		return fmt.Sprintf("item %q", i.Name)
	}

	return s
}
