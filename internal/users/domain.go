package users

import "time"

// User represents a platform account as seen by the authorization service.
// Accounts are owned by the identity service; this is a read-only view.
type User struct {
	ID        int64
	Email     string
	Name      string
	Role      string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
