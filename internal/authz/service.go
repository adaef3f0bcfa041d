package authz

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/meridian-bms/meridian/internal/shared"
)

// AuditPort abstracts audit logging functionality.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service exposes the administrative mutations of the override store. It is
// the only writer: every change validates its input, applies an atomic
// upsert/delete, invalidates the affected user's cached effective sets
// before reporting success, and records an audit entry.
type Service struct {
	repo   OverrideRepository
	cache  *EffectiveCache
	audit  AuditPort
	logger *slog.Logger
}

// NewService constructs the administration service.
func NewService(repo OverrideRepository, cache *EffectiveCache, audit AuditPort, logger *slog.Logger) *Service {
	return &Service{repo: repo, cache: cache, audit: audit, logger: logger}
}

func validateMutation(userID int64, code string) (string, error) {
	if userID <= 0 {
		return "", ErrInvalidUserID
	}
	code = NormalizeCode(code)
	if !ValidCode(code) {
		return "", fmt.Errorf("%w: %q", ErrInvalidCode, code)
	}
	return code, nil
}

// Grant upserts a grant override for (userID, code).
func (s *Service) Grant(ctx context.Context, userID int64, code string, grantedBy int64) error {
	return s.writeOverride(ctx, userID, code, false, grantedBy)
}

// Deny upserts a deny override for (userID, code). A deny removes the code
// from the effective set regardless of role defaults or prior grants.
func (s *Service) Deny(ctx context.Context, userID int64, code string, grantedBy int64) error {
	return s.writeOverride(ctx, userID, code, true, grantedBy)
}

func (s *Service) writeOverride(ctx context.Context, userID int64, code string, isDenied bool, grantedBy int64) error {
	code, err := validateMutation(userID, code)
	if err != nil {
		return err
	}
	if err := s.repo.Upsert(ctx, Override{UserID: userID, Code: code, IsDenied: isDenied, GrantedBy: grantedBy}); err != nil {
		return fmt.Errorf("upsert override: %w", err)
	}
	if err := s.cache.Invalidate(ctx, userID); err != nil {
		return fmt.Errorf("invalidate effective cache: %w", err)
	}
	action := "permission.grant"
	if isDenied {
		action = "permission.deny"
	}
	s.recordAudit(ctx, grantedBy, action, userID, map[string]any{"code": code})
	return nil
}

// Revoke deletes the override row for (userID, code), reporting whether one
// existed.
func (s *Service) Revoke(ctx context.Context, userID int64, code string, revokedBy int64) (bool, error) {
	code, err := validateMutation(userID, code)
	if err != nil {
		return false, err
	}
	existed, err := s.repo.Delete(ctx, userID, code)
	if err != nil {
		return false, fmt.Errorf("delete override: %w", err)
	}
	if err := s.cache.Invalidate(ctx, userID); err != nil {
		return existed, fmt.Errorf("invalidate effective cache: %w", err)
	}
	if existed {
		s.recordAudit(ctx, revokedBy, "permission.revoke", userID, map[string]any{"code": code})
	}
	return existed, nil
}

// ReplaceAll makes the user's grant overrides exactly the given set by
// applying the minimal diff of grants and revocations in one transaction.
// Deny overrides outside the set are left untouched; callers revoke those
// explicitly. Reports whether anything changed.
func (s *Service) ReplaceAll(ctx context.Context, userID int64, codes []string, updatedBy int64) (bool, error) {
	if userID <= 0 {
		return false, ErrInvalidUserID
	}
	desired := make(map[string]struct{}, len(codes))
	for _, code := range codes {
		normalized, err := validateMutation(userID, code)
		if err != nil {
			return false, err
		}
		desired[normalized] = struct{}{}
	}

	changed := false
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo OverrideRepository) error {
		existing, err := repo.ListForUser(ctx, userID)
		if err != nil {
			return err
		}
		currentGrants := make(map[string]struct{})
		for _, o := range existing {
			if !o.IsDenied {
				currentGrants[o.Code] = struct{}{}
			}
		}
		for code := range desired {
			if _, ok := currentGrants[code]; ok {
				continue
			}
			if err := repo.Upsert(ctx, Override{UserID: userID, Code: code, GrantedBy: updatedBy}); err != nil {
				return err
			}
			changed = true
		}
		for code := range currentGrants {
			if _, ok := desired[code]; ok {
				continue
			}
			if _, err := repo.Delete(ctx, userID, code); err != nil {
				return err
			}
			changed = true
		}
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("replace grants: %w", err)
	}
	if err := s.cache.Invalidate(ctx, userID); err != nil {
		return changed, fmt.Errorf("invalidate effective cache: %w", err)
	}
	if changed {
		s.recordAudit(ctx, updatedBy, "permission.replace", userID, map[string]any{"codes": sortedCodes(desired)})
	}
	return changed, nil
}

// OverridesFor returns the user's override rows.
func (s *Service) OverridesFor(ctx context.Context, userID int64) ([]Override, error) {
	if userID <= 0 {
		return nil, ErrInvalidUserID
	}
	return s.repo.ListForUser(ctx, userID)
}

func (s *Service) recordAudit(ctx context.Context, actorID int64, action string, userID int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "user_permission",
		EntityID: fmt.Sprintf("%d", userID),
		Meta:     meta,
	})
	if err != nil && s.logger != nil {
		s.logger.Warn("record permission audit", slog.String("action", action), slog.Any("error", err))
	}
}

func sortedCodes(set map[string]struct{}) []string {
	codes := make([]string, 0, len(set))
	for code := range set {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
