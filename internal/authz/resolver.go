package authz

import "context"

// OverrideReader is the read-side of the override store needed by resolution.
type OverrideReader interface {
	ListForUser(ctx context.Context, userID int64) ([]Override, error)
}

// Resolver computes effective permission sets from role presets and per-user
// overrides. It is stateless and safe for concurrent use.
type Resolver struct {
	presets   *PresetTable
	overrides OverrideReader
}

// NewResolver constructs a Resolver.
func NewResolver(presets *PresetTable, overrides OverrideReader) *Resolver {
	return &Resolver{presets: presets, overrides: overrides}
}

// Resolve computes (roleDefaults ∪ grants) \ denies for the user.
//
// The deny subtraction runs last and unconditionally: a deny removes the code
// even when both the role preset and an explicit grant carry it. An unknown
// role contributes an empty base, so users can still hold ad hoc grants.
// Catalog membership is never consulted.
func (r *Resolver) Resolve(ctx context.Context, userID int64, role string) (map[string]struct{}, error) {
	effective := r.presets.DefaultsFor(role)

	overrides, err := r.overrides.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	for _, o := range overrides {
		if !o.IsDenied {
			effective[o.Code] = struct{}{}
		}
	}
	for _, o := range overrides {
		if o.IsDenied {
			delete(effective, o.Code)
		}
	}
	return effective, nil
}
