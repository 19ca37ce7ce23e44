package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/pkg/errors"
)

type identityRepository struct {
	db sqlx.ExtContext
}

func (r *identityRepository) Create(ctx context.Context, identity *model.Identity) error {
	query := `
		INSERT INTO identities (id, username, first_name, last_name, email, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	if identity.ID == uuid.Nil {
		identity.ID = uuid.New()
	}
	identity.CreatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		identity.ID,
		identity.Username,
		identity.FirstName,
		identity.LastName,
		identity.Email,
		identity.PasswordHash,
		identity.CreatedAt,
	)
	if isUniqueViolation(err) {
		return errors.Conflict("username already taken")
	}
	if err != nil {
		return fmt.Errorf("failed to create identity: %w", err)
	}
	return nil
}

func (r *identityRepository) Get(ctx context.Context, id uuid.UUID) (*model.Identity, error) {
	query := `
		SELECT id, username, first_name, last_name, email, password_hash, created_at
		FROM identities
		WHERE id = $1
	`
	var identity model.Identity
	if err := getOne(ctx, r.db, &identity, "identity", query, id); err != nil {
		return nil, err
	}
	return &identity, nil
}

func (r *identityRepository) GetByUsername(ctx context.Context, username string) (*model.Identity, error) {
	query := `
		SELECT id, username, first_name, last_name, email, password_hash, created_at
		FROM identities
		WHERE username = $1
	`
	var identity model.Identity
	if err := getOne(ctx, r.db, &identity, "identity", query, username); err != nil {
		return nil, err
	}
	return &identity, nil
}

// Delete relies on ON DELETE CASCADE to remove the profile and its dependent rows.
func (r *identityRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM identities WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete identity: %w", err)
	}
	return expectAffected(result, "identity")
}
