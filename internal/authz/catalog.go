package authz

import (
	"context"
	"errors"
	"fmt"
)

// CatalogRepository persists permission descriptors keyed by code.
type CatalogRepository interface {
	UpsertDescriptor(ctx context.Context, d PermissionDescriptor) error
	GetDescriptor(ctx context.Context, code string) (PermissionDescriptor, error)
	ListDescriptors(ctx context.Context) ([]PermissionDescriptor, error)
}

// Catalog is the registry of known permission codes and their metadata.
// Codes absent from the catalog are still usable everywhere; the catalog
// only affects display.
type Catalog struct {
	repo CatalogRepository
}

// NewCatalog constructs a Catalog over the given repository.
func NewCatalog(repo CatalogRepository) *Catalog {
	return &Catalog{repo: repo}
}

// Lookup fetches the descriptor for a code. Absence is a normal outcome
// reported through the bool, not an error.
func (c *Catalog) Lookup(ctx context.Context, code string) (PermissionDescriptor, bool, error) {
	d, err := c.repo.GetDescriptor(ctx, NormalizeCode(code))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return PermissionDescriptor{}, false, nil
		}
		return PermissionDescriptor{}, false, err
	}
	return d, true, nil
}

// Describe returns the cataloged descriptor, or a synthesized fallback when
// the code was never seeded.
func (c *Catalog) Describe(ctx context.Context, code string) (PermissionDescriptor, error) {
	code = NormalizeCode(code)
	d, ok, err := c.Lookup(ctx, code)
	if err != nil {
		return PermissionDescriptor{}, err
	}
	if !ok {
		return FallbackDescriptor(code), nil
	}
	return d, nil
}

// ListAll returns a snapshot of the current catalog ordered by code.
func (c *Catalog) ListAll(ctx context.Context) ([]PermissionDescriptor, error) {
	return c.repo.ListDescriptors(ctx)
}

// Seed bulk-upserts descriptors keyed by code. Re-seeding the same input is
// a no-op; changed metadata overwrites the text fields but never the code.
// Codes present in storage but absent from entries are left alone.
func (c *Catalog) Seed(ctx context.Context, entries []PermissionDescriptor) error {
	for _, entry := range entries {
		entry.Code = NormalizeCode(entry.Code)
		if entry.Code == "" {
			return fmt.Errorf("%w: empty code in seed entry", ErrInvalidCode)
		}
		if entry.Category == "" || entry.Action == "" {
			entry.Category, entry.Action = SplitCode(entry.Code)
		}
		if err := c.repo.UpsertDescriptor(ctx, entry); err != nil {
			return fmt.Errorf("seed descriptor %s: %w", entry.Code, err)
		}
	}
	return nil
}
