package authz

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/meridian-bms/meridian/internal/shared"
	"github.com/meridian-bms/meridian/internal/users"
)

type memUserDirectory struct {
	users map[int64]users.User
}

func (m *memUserDirectory) Get(ctx context.Context, id int64) (users.User, error) {
	u, ok := m.users[id]
	if !ok {
		return users.User{}, users.ErrNotFound
	}
	return u, nil
}

type handlerFixture struct {
	router    chi.Router
	repo      *memOverrideRepo
	catalog   *memCatalogRepo
	directory *memUserDirectory
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()
	repo := newMemOverrideRepo()
	catalogRepo := newMemCatalogRepo()
	catalog := NewCatalog(catalogRepo)
	require.NoError(t, SeedDefaultPermissions(context.Background(), catalog))

	presets := DefaultPresets()
	cache := NewEffectiveCache(nil, time.Minute)
	checker := NewChecker(NewResolver(presets, repo), cache, nil)
	service := NewService(repo, cache, nil, nil)
	mw := Middleware{Checker: checker}
	directory := &memUserDirectory{users: make(map[int64]users.User)}
	handler := NewHandler(nil, catalog, presets, service, checker, directory, mw)

	router := chi.NewRouter()
	handler.MountRoutes(router)
	return &handlerFixture{router: router, repo: repo, catalog: catalogRepo, directory: directory}
}

func (f *handlerFixture) do(method, path, body string, principal *shared.Principal) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if principal != nil {
		req = req.WithContext(shared.ContextWithPrincipal(req.Context(), principal))
	}
	res := httptest.NewRecorder()
	f.router.ServeHTTP(res, req)
	return res
}

func adminPrincipal() *shared.Principal {
	return &shared.Principal{UserID: 1, Role: "admin"}
}

func TestListCatalog(t *testing.T) {
	f := newHandlerFixture(t)
	res := f.do(http.MethodGet, "/permissions", "", adminPrincipal())
	require.Equal(t, http.StatusOK, res.Code)

	var payload struct {
		Permissions []PermissionDescriptor `json:"permissions"`
	}
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &payload))
	require.Len(t, payload.Permissions, len(DefaultDescriptors()))
}

func TestListCatalogDescribesAdHocCodes(t *testing.T) {
	f := newHandlerFixture(t)
	res := f.do(http.MethodGet, "/permissions?codes=invoices.void,customers.view", "", adminPrincipal())
	require.Equal(t, http.StatusOK, res.Code)

	var payload struct {
		Permissions []PermissionDescriptor `json:"permissions"`
	}
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &payload))
	require.Len(t, payload.Permissions, 2)
	require.Equal(t, "Void Invoices", payload.Permissions[0].Name)
	require.Equal(t, "View Customers", payload.Permissions[1].Name)
}

func TestRoleDefaultsEndpoint(t *testing.T) {
	f := newHandlerFixture(t)

	res := f.do(http.MethodGet, "/permissions/roles/Employee", "", adminPrincipal())
	require.Equal(t, http.StatusOK, res.Code)
	var payload struct {
		Role        string   `json:"role"`
		Permissions []string `json:"permissions"`
	}
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &payload))
	require.Equal(t, "employee", payload.Role)
	require.Contains(t, payload.Permissions, "dashboard.view")

	res = f.do(http.MethodGet, "/permissions/roles/contractor", "", adminPrincipal())
	require.Equal(t, http.StatusNotFound, res.Code)
}

func TestCatalogRequiresViewPermission(t *testing.T) {
	f := newHandlerFixture(t)

	res := f.do(http.MethodGet, "/permissions", "", nil)
	require.Equal(t, http.StatusForbidden, res.Code)

	res = f.do(http.MethodGet, "/permissions", "", &shared.Principal{UserID: 2, Role: "employee"})
	require.Equal(t, http.StatusForbidden, res.Code)
}

func TestGrantEndpoint(t *testing.T) {
	f := newHandlerFixture(t)

	res := f.do(http.MethodPost, "/users/7/permissions/grant", `{"code":"requests.approve"}`, adminPrincipal())
	require.Equal(t, http.StatusOK, res.Code)

	rows := f.repo.rows[7]
	require.Len(t, rows, 1)
	require.False(t, rows["requests.approve"].IsDenied)
	require.Equal(t, int64(1), rows["requests.approve"].GrantedBy)
}

func TestGrantValidation(t *testing.T) {
	f := newHandlerFixture(t)

	res := f.do(http.MethodPost, "/users/7/permissions/grant", `{"code":""}`, adminPrincipal())
	require.Equal(t, http.StatusBadRequest, res.Code)

	res = f.do(http.MethodPost, "/users/7/permissions/grant", `{"code":"nodot"}`, adminPrincipal())
	require.Equal(t, http.StatusBadRequest, res.Code)

	res = f.do(http.MethodPost, "/users/0/permissions/grant", `{"code":"users.view"}`, adminPrincipal())
	require.Equal(t, http.StatusBadRequest, res.Code)

	res = f.do(http.MethodPost, "/users/7/permissions/grant", `not json`, adminPrincipal())
	require.Equal(t, http.StatusBadRequest, res.Code)
}

func TestMutationsRequireManagePermission(t *testing.T) {
	f := newHandlerFixture(t)

	res := f.do(http.MethodPost, "/users/7/permissions/grant", `{"code":"users.view"}`, &shared.Principal{UserID: 3, Role: "manager"})
	require.Equal(t, http.StatusForbidden, res.Code)
	require.Empty(t, f.repo.rows)
}

func TestRevokeEndpoint(t *testing.T) {
	f := newHandlerFixture(t)

	res := f.do(http.MethodPost, "/users/5/permissions/deny", `{"code":"users.view"}`, adminPrincipal())
	require.Equal(t, http.StatusOK, res.Code)

	res = f.do(http.MethodDelete, "/users/5/permissions/users.view", "", adminPrincipal())
	require.Equal(t, http.StatusOK, res.Code)
	require.Empty(t, f.repo.rows[5])

	res = f.do(http.MethodDelete, "/users/5/permissions/users.view", "", adminPrincipal())
	require.Equal(t, http.StatusNotFound, res.Code)
}

func TestReplaceEndpoint(t *testing.T) {
	f := newHandlerFixture(t)

	res := f.do(http.MethodPut, "/users/9/permissions", `{"codes":["customers.view","customers.create"]}`, adminPrincipal())
	require.Equal(t, http.StatusOK, res.Code)

	var payload struct {
		Changed bool `json:"changed"`
	}
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &payload))
	require.True(t, payload.Changed)
	require.Len(t, f.repo.rows[9], 2)
}

func TestUserPermissionsEndpoint(t *testing.T) {
	f := newHandlerFixture(t)

	res := f.do(http.MethodPost, "/users/4/permissions/grant", `{"code":"reports.view"}`, adminPrincipal())
	require.Equal(t, http.StatusOK, res.Code)

	res = f.do(http.MethodGet, "/users/4/permissions?role=employee", "", adminPrincipal())
	require.Equal(t, http.StatusOK, res.Code)

	var payload struct {
		UserID    int64      `json:"user_id"`
		Effective []string   `json:"effective"`
		Overrides []Override `json:"overrides"`
	}
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &payload))
	require.Equal(t, int64(4), payload.UserID)
	require.Contains(t, payload.Effective, "reports.view")
	require.Contains(t, payload.Effective, "dashboard.view")
	require.Len(t, payload.Overrides, 1)
}

func TestUserPermissionsFallsBackToStoredRole(t *testing.T) {
	f := newHandlerFixture(t)
	f.directory.users[6] = users.User{ID: 6, Role: "manager"}

	res := f.do(http.MethodGet, "/users/6/permissions", "", adminPrincipal())
	require.Equal(t, http.StatusOK, res.Code)

	var payload struct {
		Role      string   `json:"role"`
		Effective []string `json:"effective"`
	}
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &payload))
	require.Equal(t, "manager", payload.Role)
	require.Contains(t, payload.Effective, "requests.approve")

	// A user the directory does not know resolves with overrides only.
	res = f.do(http.MethodGet, "/users/99/permissions", "", adminPrincipal())
	require.Equal(t, http.StatusOK, res.Code)
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &payload))
	require.Empty(t, payload.Effective)
}
