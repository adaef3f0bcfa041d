package authz

import (
	"sort"
	"strings"
)

// PresetTable maps role names to the permission codes granted by default.
// Presets are compiled-in deployment configuration: flat sets, no
// inheritance between roles, not editable at runtime.
type PresetTable struct {
	presets map[string][]string
}

// NewPresetTable builds a table from the given role map. Role names are
// case-normalized; later duplicates merge into the earlier entry.
func NewPresetTable(presets map[string][]string) *PresetTable {
	normalized := make(map[string][]string, len(presets))
	for role, codes := range presets {
		key := strings.ToLower(strings.TrimSpace(role))
		if key == "" {
			continue
		}
		normalized[key] = append(normalized[key], codes...)
	}
	return &PresetTable{presets: normalized}
}

// DefaultPresets returns the compiled seed roles.
//
// The admin preset must always carry permissions.manage so that at least one
// role can administer permissions from its preset alone; without it a stray
// deny override could lock every administrator out.
func DefaultPresets() *PresetTable {
	return NewPresetTable(map[string][]string{
		"admin": {
			PermDashboardView,
			PermCustomersView, PermCustomersCreate, PermCustomersEdit, PermCustomersDelete,
			PermRequestsView, PermRequestsCreate, PermRequestsEdit, PermRequestsDelete,
			PermRequestsApprove, PermRequestsAssign,
			PermAppointmentsView, PermAppointmentsCreate, PermAppointmentsEdit, PermAppointmentsDelete,
			PermUsersView, PermUsersCreate, PermUsersEdit, PermUsersDelete,
			PermPermissionsView, PermPermissionsManage,
			PermReportsView, PermReportsExport,
			PermSettingsView, PermSettingsEdit,
			PermWorkflowsView, PermWorkflowsManage,
			PermAuditView,
		},
		"manager": {
			PermDashboardView,
			PermCustomersView, PermCustomersCreate, PermCustomersEdit,
			PermRequestsView, PermRequestsCreate, PermRequestsEdit,
			PermRequestsApprove, PermRequestsAssign,
			PermAppointmentsView, PermAppointmentsCreate, PermAppointmentsEdit,
			PermUsersView,
			PermReportsView, PermReportsExport,
			PermWorkflowsView,
		},
		"employee": {
			PermDashboardView,
			PermCustomersView,
			PermRequestsView, PermRequestsCreate,
			PermAppointmentsView, PermAppointmentsCreate, PermAppointmentsEdit,
		},
		"receptionist": {
			PermDashboardView,
			PermCustomersView, PermCustomersCreate,
			PermAppointmentsView, PermAppointmentsCreate, PermAppointmentsEdit,
			PermRequestsView,
		},
	})
}

// DefaultsFor returns the preset codes for a role. Matching is
// case-insensitive; an unknown role yields an empty set, never an error.
func (t *PresetTable) DefaultsFor(role string) map[string]struct{} {
	out := make(map[string]struct{})
	if t == nil {
		return out
	}
	codes, ok := t.presets[strings.ToLower(strings.TrimSpace(role))]
	if !ok {
		return out
	}
	for _, code := range codes {
		out[code] = struct{}{}
	}
	return out
}

// Roles lists the configured role names in sorted order.
func (t *PresetTable) Roles() []string {
	if t == nil {
		return nil
	}
	roles := make([]string, 0, len(t.presets))
	for role := range t.presets {
		roles = append(roles, role)
	}
	sort.Strings(roles)
	return roles
}

// HasRole reports whether a preset exists for the role.
func (t *PresetTable) HasRole(role string) bool {
	if t == nil {
		return false
	}
	_, ok := t.presets[strings.ToLower(strings.TrimSpace(role))]
	return ok
}
