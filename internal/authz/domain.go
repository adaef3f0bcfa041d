// Package authz implements the role-and-override permission engine: the
// permission catalog, compiled role presets, per-user grant/deny overrides,
// and the resolver/checker that merge them into effective permission sets.
package authz

import (
	"errors"
	"time"
)

// PermissionDescriptor carries display metadata for a permission code.
// The code is the identity and never changes once seeded.
type PermissionDescriptor struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Action      string `json:"action"`
}

// Override is a per-user, per-code grant or deny that takes effect
// regardless of role defaults.
type Override struct {
	UserID    int64     `json:"user_id"`
	Code      string    `json:"code"`
	IsDenied  bool      `json:"is_denied"`
	GrantedAt time.Time `json:"granted_at"`
	GrantedBy int64     `json:"granted_by,omitempty"`
}

var (
	// ErrNotFound indicates that the requested record does not exist.
	ErrNotFound = errors.New("authz: not found")
	// ErrInvalidUserID rejects non-positive user ids before any write.
	ErrInvalidUserID = errors.New("authz: user id must be positive")
	// ErrInvalidCode rejects empty or malformed permission codes on mutations.
	ErrInvalidCode = errors.New("authz: permission code must match category.action")
)

// Outcome classifies an access decision.
type Outcome int

const (
	// OutcomeAllowed means the permission is present in the effective set.
	OutcomeAllowed Outcome = iota
	// OutcomeDenied means the permission is absent from the effective set.
	OutcomeDenied
	// OutcomeUnavailable means the effective set could not be determined;
	// callers must treat it as denied.
	OutcomeUnavailable
)

// Decision is a typed access-check result so middleware can distinguish
// "denied" from "could not determine".
type Decision struct {
	Outcome Outcome
	Code    string
	Err     error
}

// Allowed reports whether access is granted. Unavailable is never allowed.
func (d Decision) Allowed() bool {
	return d.Outcome == OutcomeAllowed
}
