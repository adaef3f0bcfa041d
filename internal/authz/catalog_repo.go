package authz

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGCatalogRepository provides PostgreSQL backed descriptor persistence.
type PGCatalogRepository struct {
	pool *pgxpool.Pool
}

// NewPGCatalogRepository constructs a repository.
func NewPGCatalogRepository(pool *pgxpool.Pool) *PGCatalogRepository {
	return &PGCatalogRepository{pool: pool}
}

// UpsertDescriptor inserts or updates a descriptor keyed by code. Only the
// text fields are updated; code is immutable identity.
func (r *PGCatalogRepository) UpsertDescriptor(ctx context.Context, d PermissionDescriptor) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO permission_descriptors (code, name, description, category, action)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (code) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			category = EXCLUDED.category,
			action = EXCLUDED.action`,
		d.Code, d.Name, d.Description, d.Category, d.Action)
	return err
}

// GetDescriptor fetches a descriptor by code.
func (r *PGCatalogRepository) GetDescriptor(ctx context.Context, code string) (PermissionDescriptor, error) {
	var d PermissionDescriptor
	err := r.pool.QueryRow(ctx, `SELECT code, name, description, category, action FROM permission_descriptors WHERE code = $1`, code).
		Scan(&d.Code, &d.Name, &d.Description, &d.Category, &d.Action)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return PermissionDescriptor{}, ErrNotFound
		}
		return PermissionDescriptor{}, err
	}
	return d, nil
}

// ListDescriptors returns all descriptors ordered by code.
func (r *PGCatalogRepository) ListDescriptors(ctx context.Context) ([]PermissionDescriptor, error) {
	rows, err := r.pool.Query(ctx, `SELECT code, name, description, category, action FROM permission_descriptors ORDER BY code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var descriptors []PermissionDescriptor
	for rows.Next() {
		var d PermissionDescriptor
		if err := rows.Scan(&d.Code, &d.Name, &d.Description, &d.Category, &d.Action); err != nil {
			return nil, err
		}
		descriptors = append(descriptors, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return descriptors, nil
}
