package inventory

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/policy"
	"github.com/jwalitptl/hospital-api/internal/repository"
	"github.com/jwalitptl/hospital-api/internal/service/event"
	"github.com/jwalitptl/hospital-api/pkg/errors"
)

// Service is staff-only throughout.
type Service struct {
	store repository.Store
}

func NewService(store repository.Store) *Service {
	return &Service{store: store}
}

func (s *Service) List(ctx context.Context, actor model.Principal) ([]*model.Inventory, error) {
	if err := policy.Enforce(actor, policy.ManageInventory, policy.Resource{}); err != nil {
		return nil, err
	}
	return s.store.Inventory().List(ctx)
}

func (s *Service) Create(ctx context.Context, actor model.Principal, req *model.InventoryRequest) (*model.Inventory, error) {
	if err := policy.Enforce(actor, policy.ManageInventory, policy.Resource{}); err != nil {
		return nil, err
	}
	item := &model.Inventory{}
	if err := apply(item, req); err != nil {
		return nil, err
	}

	err := s.store.WithinTx(ctx, func(tx repository.Repositories) error {
		if err := tx.Inventory().Create(ctx, item); err != nil {
			return err
		}
		return record(ctx, tx, actor, model.AuditActionCreate, item)
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (s *Service) Update(ctx context.Context, actor model.Principal, id uuid.UUID, req *model.InventoryRequest) (*model.Inventory, error) {
	if err := policy.Enforce(actor, policy.ManageInventory, policy.Resource{}); err != nil {
		return nil, err
	}

	var item *model.Inventory
	err := s.store.WithinTx(ctx, func(tx repository.Repositories) error {
		var err error
		if item, err = tx.Inventory().Get(ctx, id); err != nil {
			return err
		}
		if err := apply(item, req); err != nil {
			return err
		}
		if err := tx.Inventory().Update(ctx, item); err != nil {
			return err
		}
		return record(ctx, tx, actor, model.AuditActionUpdate, item)
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (s *Service) Delete(ctx context.Context, actor model.Principal, id uuid.UUID) error {
	if err := policy.Enforce(actor, policy.ManageInventory, policy.Resource{}); err != nil {
		return err
	}
	return s.store.WithinTx(ctx, func(tx repository.Repositories) error {
		item, err := tx.Inventory().Get(ctx, id)
		if err != nil {
			return err
		}
		if err := tx.Inventory().Delete(ctx, id); err != nil {
			return err
		}
		return record(ctx, tx, actor, model.AuditActionDelete, item)
	})
}

// apply validates req and copies it onto item; item is untouched on error.
func apply(item *model.Inventory, req *model.InventoryRequest) error {
	fields := map[string]string{}

	name := strings.TrimSpace(req.ItemName)
	switch {
	case name == "":
		fields["item_name"] = "is required"
	case len(name) > 100:
		fields["item_name"] = "is too long"
	}

	switch {
	case req.Quantity == nil:
		fields["quantity"] = "is required"
	case *req.Quantity < 0:
		fields["quantity"] = "must not be negative"
	}

	date, err := time.Parse(model.DateLayout, req.Date)
	if err != nil {
		fields["date"] = "must be a date in YYYY-MM-DD format"
	}

	if len(fields) > 0 {
		return errors.NewValidation(fields)
	}

	item.ItemName = name
	item.Quantity = *req.Quantity
	item.Date = date
	return nil
}

func record(ctx context.Context, tx repository.Repositories, actor model.Principal, action string, item *model.Inventory) error {
	return event.Record(ctx, tx, actor, event.Change{
		Action:     action,
		EntityType: model.AuditEntityInventory,
		EntityID:   item.ID,
		EventType:  model.EventInventoryChanged,
		Data: map[string]interface{}{
			"action": action,
			"item":   item,
		},
	})
}
