package authz

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-bms/meridian/internal/platform/db"
)

// OverrideRepository persists per-user grant/deny overrides with at most one
// row per (user_id, code) pair.
type OverrideRepository interface {
	WithTx(ctx context.Context, fn func(context.Context, OverrideRepository) error) error
	Upsert(ctx context.Context, o Override) error
	Delete(ctx context.Context, userID int64, code string) (bool, error)
	ListForUser(ctx context.Context, userID int64) ([]Override, error)
}

type dbtx interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

type pgOverrideRepository struct {
	db   dbtx
	pool *pgxpool.Pool
}

// NewPGOverrideRepository constructs a PostgreSQL backed override store.
func NewPGOverrideRepository(pool *pgxpool.Pool) OverrideRepository {
	return &pgOverrideRepository{db: pool, pool: pool}
}

// WithTx runs fn against a transactional view of the repository.
func (r *pgOverrideRepository) WithTx(ctx context.Context, fn func(context.Context, OverrideRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &pgOverrideRepository{db: tx, pool: r.pool})
	})
}

// Upsert writes the override row, replacing any prior row for the same
// (user_id, code) pair atomically. The upsert is the concurrency guarantee;
// there is no read-modify-write window.
func (r *pgOverrideRepository) Upsert(ctx context.Context, o Override) error {
	var grantedBy any
	if o.GrantedBy > 0 {
		grantedBy = o.GrantedBy
	}
	_, err := r.db.Exec(ctx, `
		INSERT INTO user_permission_overrides (user_id, code, is_denied, granted_at, granted_by)
		VALUES ($1, $2, $3, NOW(), $4)
		ON CONFLICT (user_id, code) DO UPDATE SET
			is_denied = EXCLUDED.is_denied,
			granted_at = NOW(),
			granted_by = EXCLUDED.granted_by`,
		o.UserID, o.Code, o.IsDenied, grantedBy)
	return err
}

// Delete removes the override row if present, reporting whether one existed.
func (r *pgOverrideRepository) Delete(ctx context.Context, userID int64, code string) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM user_permission_overrides WHERE user_id = $1 AND code = $2`, userID, code)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// ListForUser returns all overrides for a user ordered by code.
func (r *pgOverrideRepository) ListForUser(ctx context.Context, userID int64) ([]Override, error) {
	rows, err := r.db.Query(ctx, `
		SELECT user_id, code, is_denied, granted_at, COALESCE(granted_by, 0)
		FROM user_permission_overrides
		WHERE user_id = $1
		ORDER BY code`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var overrides []Override
	for rows.Next() {
		var o Override
		if err := rows.Scan(&o.UserID, &o.Code, &o.IsDenied, &o.GrantedAt, &o.GrantedBy); err != nil {
			return nil, err
		}
		overrides = append(overrides, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return overrides, nil
}
