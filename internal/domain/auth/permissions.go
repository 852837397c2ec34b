package auth

const (
	RoleEmployee    = "Employee"
	RoleManager     = "Manager"
	RoleHR          = "HR"
	RoleSystemAdmin = "SystemAdmin"

	UserStatusActive   = "active"
	UserStatusDisabled = "disabled"
)

const (
	PermEvaluationRead      = "evaluation.read"
	PermEvaluationReadAll   = "evaluation.read_all"
	PermEvaluationDashboard = "evaluation.dashboard"
	PermMetricsRead         = "metrics.read"
	PermAuditRead           = "audit.read"
)

var RolePermissions = map[string][]string{
	RoleEmployee: {
		PermEvaluationRead,
	},
	RoleManager: {
		PermEvaluationRead,
		PermEvaluationReadAll,
		PermEvaluationDashboard,
	},
	RoleHR: {
		PermEvaluationRead,
		PermEvaluationReadAll,
		PermEvaluationDashboard,
		PermMetricsRead,
		PermAuditRead,
	},
	RoleSystemAdmin: {
		PermMetricsRead,
		PermAuditRead,
	},
}

// StaticPermissions resolves permissions from RolePermissions.
type StaticPermissions struct{}

func (StaticPermissions) HasPermission(role, permission string) bool {
	for _, perm := range RolePermissions[role] {
		if perm == permission {
			return true
		}
	}
	return false
}

type UserContext struct {
	UserID     string
	EmployeeID string
	RoleName   string
}
