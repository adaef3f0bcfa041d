package authz

import "context"

// DefaultDescriptors is the compiled-in catalog seed. Seeding is additive:
// codes added to storage by operators stay untouched even when missing here.
func DefaultDescriptors() []PermissionDescriptor {
	return []PermissionDescriptor{
		{Code: PermDashboardView, Name: "View Dashboard", Description: "Can view the main dashboard"},

		{Code: PermCustomersView, Name: "View Customers", Description: "Can view customer records"},
		{Code: PermCustomersCreate, Name: "Create Customers", Description: "Can create customer records"},
		{Code: PermCustomersEdit, Name: "Edit Customers", Description: "Can edit customer records"},
		{Code: PermCustomersDelete, Name: "Delete Customers", Description: "Can delete customer records"},

		{Code: PermRequestsView, Name: "View Requests", Description: "Can view service requests"},
		{Code: PermRequestsCreate, Name: "Create Requests", Description: "Can create service requests"},
		{Code: PermRequestsEdit, Name: "Edit Requests", Description: "Can edit service requests"},
		{Code: PermRequestsDelete, Name: "Delete Requests", Description: "Can delete service requests"},
		{Code: PermRequestsApprove, Name: "Approve Requests", Description: "Can approve service requests"},
		{Code: PermRequestsAssign, Name: "Assign Requests", Description: "Can assign service requests to staff"},

		{Code: PermAppointmentsView, Name: "View Appointments", Description: "Can view appointments"},
		{Code: PermAppointmentsCreate, Name: "Create Appointments", Description: "Can schedule appointments"},
		{Code: PermAppointmentsEdit, Name: "Edit Appointments", Description: "Can reschedule or edit appointments"},
		{Code: PermAppointmentsDelete, Name: "Delete Appointments", Description: "Can cancel and delete appointments"},

		{Code: PermUsersView, Name: "View Users", Description: "Can view platform users"},
		{Code: PermUsersCreate, Name: "Create Users", Description: "Can create platform users"},
		{Code: PermUsersEdit, Name: "Edit Users", Description: "Can edit platform users"},
		{Code: PermUsersDelete, Name: "Delete Users", Description: "Can delete platform users"},

		{Code: PermPermissionsView, Name: "View Permissions", Description: "Can view permissions and role defaults"},
		{Code: PermPermissionsManage, Name: "Manage Permissions", Description: "Can grant, deny and revoke user permissions"},

		{Code: PermReportsView, Name: "View Reports", Description: "Can view reports"},
		{Code: PermReportsExport, Name: "Export Reports", Description: "Can export reports"},

		{Code: PermSettingsView, Name: "View Settings", Description: "Can view platform settings"},
		{Code: PermSettingsEdit, Name: "Edit Settings", Description: "Can change platform settings"},

		{Code: PermWorkflowsView, Name: "View Workflows", Description: "Can view workflow automations"},
		{Code: PermWorkflowsManage, Name: "Manage Workflows", Description: "Can configure workflow automations"},

		{Code: PermAuditView, Name: "View Audit Log", Description: "Can view the audit log"},
	}
}

// SeedDefaultPermissions upserts the compiled descriptor list into the
// catalog. Safe to call on every boot.
func SeedDefaultPermissions(ctx context.Context, catalog *Catalog) error {
	return catalog.Seed(ctx, DefaultDescriptors())
}
