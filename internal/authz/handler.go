package authz

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/meridian-bms/meridian/internal/platform/httpx"
	"github.com/meridian-bms/meridian/internal/shared"
	"github.com/meridian-bms/meridian/internal/users"
)

// UserDirectory resolves stored users so callers may omit an explicit role.
type UserDirectory interface {
	Get(ctx context.Context, id int64) (users.User, error)
}

// Handler exposes the administrative permission API.
type Handler struct {
	logger    *slog.Logger
	catalog   *Catalog
	presets   *PresetTable
	service   *Service
	checker   *Checker
	directory UserDirectory
	validator *validator.Validate
	mw        Middleware
}

// NewHandler constructs a Handler instance. directory may be nil; effective
// sets are then computed from the role query parameter alone.
func NewHandler(logger *slog.Logger, catalog *Catalog, presets *PresetTable, service *Service, checker *Checker, directory UserDirectory, mw Middleware) *Handler {
	return &Handler{
		logger:    logger,
		catalog:   catalog,
		presets:   presets,
		service:   service,
		checker:   checker,
		directory: directory,
		validator: validator.New(),
		mw:        mw,
	}
}

// MountRoutes registers the permission administration routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.mw.RequireAny(PermPermissionsView, PermPermissionsManage))
		r.Get("/permissions", h.listCatalog)
		r.Get("/permissions/roles", h.listRoles)
		r.Get("/permissions/roles/{role}", h.roleDefaults)
		r.Get("/users/{userID}/permissions", h.userPermissions)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.mw.RequirePermission(PermPermissionsManage))
		r.Post("/users/{userID}/permissions/grant", h.grant)
		r.Post("/users/{userID}/permissions/deny", h.deny)
		r.Delete("/users/{userID}/permissions/{code}", h.revoke)
		r.Put("/users/{userID}/permissions", h.replaceAll)
	})
}

func (h *Handler) listCatalog(w http.ResponseWriter, r *http.Request) {
	// ?codes=a.b,c.d asks for specific descriptors, with fallbacks for
	// codes that were never seeded.
	if raw := strings.TrimSpace(r.URL.Query().Get("codes")); raw != "" {
		descriptors := make([]PermissionDescriptor, 0)
		for _, code := range strings.Split(raw, ",") {
			code = NormalizeCode(code)
			if code == "" {
				continue
			}
			d, err := h.catalog.Describe(r.Context(), code)
			if err != nil {
				h.logger.Error("describe permission", slog.String("code", code), slog.Any("error", err))
				httpx.RespondError(w, err)
				return
			}
			descriptors = append(descriptors, d)
		}
		httpx.JSON(w, http.StatusOK, map[string]any{"permissions": descriptors})
		return
	}

	descriptors, err := h.catalog.ListAll(r.Context())
	if err != nil {
		h.logger.Error("list catalog", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"permissions": descriptors})
}

func (h *Handler) listRoles(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, map[string]any{"roles": h.presets.Roles()})
}

func (h *Handler) roleDefaults(w http.ResponseWriter, r *http.Request) {
	role := chi.URLParam(r, "role")
	if !h.presets.HasRole(role) {
		httpx.Problem(w, http.StatusNotFound, "Not Found", "no preset for role "+role)
		return
	}
	codes := sortedCodes(h.presets.DefaultsFor(role))
	httpx.JSON(w, http.StatusOK, map[string]any{"role": strings.ToLower(strings.TrimSpace(role)), "permissions": codes})
}

func (h *Handler) userPermissions(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.pathUserID(w, r)
	if !ok {
		return
	}
	role := strings.TrimSpace(r.URL.Query().Get("role"))
	if role == "" && h.directory != nil {
		u, err := h.directory.Get(r.Context(), userID)
		switch {
		case err == nil:
			role = u.Role
		case errors.Is(err, users.ErrNotFound):
			// Unknown user keeps an empty role; overrides still resolve.
		default:
			h.logger.Error("load user role", slog.Int64("user_id", userID), slog.Any("error", err))
			httpx.RespondError(w, err)
			return
		}
	}
	effective, err := h.checker.EffectivePermissions(r.Context(), userID, role)
	if err != nil {
		h.logger.Error("effective permissions", slog.Int64("user_id", userID), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	overrides, err := h.service.OverridesFor(r.Context(), userID)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"user_id":   userID,
		"role":      strings.ToLower(role),
		"effective": effective,
		"overrides": overrides,
	})
}

type overrideRequest struct {
	Code string `json:"code" validate:"required,min=3"`
}

func (h *Handler) grant(w http.ResponseWriter, r *http.Request) {
	h.mutateOverride(w, r, false)
}

func (h *Handler) deny(w http.ResponseWriter, r *http.Request) {
	h.mutateOverride(w, r, true)
}

func (h *Handler) mutateOverride(w http.ResponseWriter, r *http.Request, isDenied bool) {
	userID, ok := h.pathUserID(w, r)
	if !ok {
		return
	}
	var req overrideRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	actor := actorID(r)
	var err error
	if isDenied {
		err = h.service.Deny(r.Context(), userID, req.Code, actor)
	} else {
		err = h.service.Grant(r.Context(), userID, req.Code, actor)
	}
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"user_id": userID, "code": NormalizeCode(req.Code), "is_denied": isDenied})
}

func (h *Handler) revoke(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.pathUserID(w, r)
	if !ok {
		return
	}
	code := chi.URLParam(r, "code")
	existed, err := h.service.Revoke(r.Context(), userID, code, actorID(r))
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	if !existed {
		httpx.Problem(w, http.StatusNotFound, "Not Found", "no override for "+NormalizeCode(code))
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"user_id": userID, "code": NormalizeCode(code), "revoked": true})
}

type replaceRequest struct {
	Codes []string `json:"codes" validate:"required,dive,min=3"`
}

func (h *Handler) replaceAll(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.pathUserID(w, r)
	if !ok {
		return
	}
	var req replaceRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	changed, err := h.service.ReplaceAll(r.Context(), userID, req.Codes, actorID(r))
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"user_id": userID, "changed": changed})
}

func (h *Handler) pathUserID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "userID")
	userID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || userID <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "user id must be a positive integer")
		return 0, false
	}
	return userID, true
}

func (h *Handler) respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidUserID), errors.Is(err, ErrInvalidCode):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	default:
		h.logger.Error("permission mutation", slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}

func actorID(r *http.Request) int64 {
	if principal := shared.PrincipalFromContext(r.Context()); principal != nil {
		return principal.UserID
	}
	return 0
}
