package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/hospital-api/internal/model"
)

type inventoryRepository struct {
	db sqlx.ExtContext
}

func (r *inventoryRepository) Create(ctx context.Context, item *model.Inventory) error {
	query := `
		INSERT INTO inventory (id, item_name, quantity, date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	item.CreatedAt = time.Now()
	item.UpdatedAt = item.CreatedAt

	_, err := r.db.ExecContext(ctx, query,
		item.ID,
		item.ItemName,
		item.Quantity,
		item.Date,
		item.CreatedAt,
		item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create inventory item: %w", err)
	}
	return nil
}

func (r *inventoryRepository) Get(ctx context.Context, id uuid.UUID) (*model.Inventory, error) {
	query := `
		SELECT id, item_name, quantity, date, created_at, updated_at
		FROM inventory
		WHERE id = $1
	`
	var item model.Inventory
	if err := getOne(ctx, r.db, &item, "inventory item", query, id); err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *inventoryRepository) Update(ctx context.Context, item *model.Inventory) error {
	query := `
		UPDATE inventory
		SET item_name = $1, quantity = $2, date = $3, updated_at = $4
		WHERE id = $5
	`
	item.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		item.ItemName,
		item.Quantity,
		item.Date,
		item.UpdatedAt,
		item.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update inventory item: %w", err)
	}
	return expectAffected(result, "inventory item")
}

func (r *inventoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM inventory WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete inventory item: %w", err)
	}
	return expectAffected(result, "inventory item")
}

func (r *inventoryRepository) List(ctx context.Context) ([]*model.Inventory, error) {
	query := `
		SELECT id, item_name, quantity, date, created_at, updated_at
		FROM inventory
		ORDER BY item_name
	`
	var items []*model.Inventory
	if err := sqlx.SelectContext(ctx, r.db, &items, query); err != nil {
		return nil, fmt.Errorf("failed to list inventory: %w", err)
	}
	return items, nil
}
