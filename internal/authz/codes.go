package authz

// Platform permission codes, grouped by category.
const (
	PermDashboardView = "dashboard.view"

	PermCustomersView   = "customers.view"
	PermCustomersCreate = "customers.create"
	PermCustomersEdit   = "customers.edit"
	PermCustomersDelete = "customers.delete"

	PermRequestsView    = "requests.view"
	PermRequestsCreate  = "requests.create"
	PermRequestsEdit    = "requests.edit"
	PermRequestsDelete  = "requests.delete"
	PermRequestsApprove = "requests.approve"
	PermRequestsAssign  = "requests.assign"

	PermAppointmentsView   = "appointments.view"
	PermAppointmentsCreate = "appointments.create"
	PermAppointmentsEdit   = "appointments.edit"
	PermAppointmentsDelete = "appointments.delete"

	PermUsersView   = "users.view"
	PermUsersCreate = "users.create"
	PermUsersEdit   = "users.edit"
	PermUsersDelete = "users.delete"

	PermPermissionsView   = "permissions.view"
	PermPermissionsManage = "permissions.manage"

	PermReportsView   = "reports.view"
	PermReportsExport = "reports.export"

	PermSettingsView = "settings.view"
	PermSettingsEdit = "settings.edit"

	PermWorkflowsView   = "workflows.view"
	PermWorkflowsManage = "workflows.manage"

	PermAuditView = "audit.view"
)
