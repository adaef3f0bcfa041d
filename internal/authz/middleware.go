package authz

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/meridian-bms/meridian/internal/shared"
)

// Middleware wires permission checks into HTTP handlers. Requests without a
// verified principal, and requests whose effective set cannot be determined,
// are rejected: the gate fails closed.
type Middleware struct {
	Checker *Checker
	Logger  *slog.Logger
}

// RequireAny admits the request when the principal holds at least one of the
// given permissions.
func (m Middleware) RequireAny(perms ...string) func(http.Handler) http.Handler {
	required := normalizeCodes(perms)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(required) == 0 {
				next.ServeHTTP(w, r)
				return
			}
			principal := shared.PrincipalFromContext(r.Context())
			if principal == nil {
				http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
				return
			}
			granted, err := m.Checker.EffectivePermissions(r.Context(), principal.UserID, principal.Role)
			if err != nil {
				if m.Logger != nil {
					m.Logger.Error("authz require any", slog.Int64("user_id", principal.UserID), slog.Any("error", err))
				}
				http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
				return
			}
			set := make(map[string]struct{}, len(granted))
			for _, code := range granted {
				set[code] = struct{}{}
			}
			for _, code := range required {
				if _, ok := set[code]; ok {
					next.ServeHTTP(w, r)
					return
				}
			}
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		})
	}
}

// RequirePermission admits the request only when the principal holds the
// single given permission, using the typed decision primitive.
func (m Middleware) RequirePermission(code string) func(http.Handler) http.Handler {
	code = NormalizeCode(code)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal := shared.PrincipalFromContext(r.Context())
			if principal == nil {
				http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
				return
			}
			decision := m.Checker.Require(r.Context(), principal.UserID, principal.Role, code)
			switch decision.Outcome {
			case OutcomeAllowed:
				next.ServeHTTP(w, r)
			case OutcomeUnavailable:
				if m.Logger != nil {
					m.Logger.Error("authz decision unavailable", slog.String("code", code), slog.Any("error", decision.Err))
				}
				http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
			default:
				http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
			}
		})
	}
}

func normalizeCodes(perms []string) []string {
	unique := make(map[string]struct{}, len(perms))
	for _, p := range perms {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		unique[p] = struct{}{}
	}
	normalized := make([]string, 0, len(unique))
	for p := range unique {
		normalized = append(normalized, p)
	}
	return normalized
}
