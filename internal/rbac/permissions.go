package rbac

import (
	"github.com/sharath018/welfare-management-backend/internal/auth"
)

// Permission names gate actions before the fine-grained region check. A
// request is authorized only when both checks pass.
const (
	PermRegionsManage      = "regions.manage"
	PermUsersManage        = "users.manage"
	PermApplicationsRead   = "applications.read"
	PermApplicationsWrite  = "applications.write"
	PermApplicationsReview = "applications.review"
	PermInterviewsManage   = "interviews.manage"
	PermPaymentsRead       = "payments.read"
	PermPaymentsWrite      = "payments.write"
	PermSchedulesManage    = "schedules.manage"
	PermDonationsRead      = "donations.read"
	PermDonationsWrite     = "donations.write"
	PermReportsCreate      = "reports.create"
	PermAuditRead          = "audit.read"
)

// rolePermissions is the closed role → permission mapping. Unknown roles
// resolve to no permissions.
var rolePermissions = map[string][]string{
	auth.RoleSuperAdmin: {
		PermRegionsManage, PermUsersManage,
		PermApplicationsRead, PermApplicationsWrite, PermApplicationsReview,
		PermInterviewsManage,
		PermPaymentsRead, PermPaymentsWrite, PermSchedulesManage,
		PermDonationsRead, PermDonationsWrite,
		PermReportsCreate, PermAuditRead,
	},
	auth.RoleStateAdmin: {
		PermRegionsManage, PermUsersManage,
		PermApplicationsRead, PermApplicationsWrite, PermApplicationsReview,
		PermInterviewsManage,
		PermPaymentsRead, PermPaymentsWrite, PermSchedulesManage,
		PermDonationsRead, PermDonationsWrite,
		PermReportsCreate, PermAuditRead,
	},
	auth.RoleDistrictAdmin: {
		PermRegionsManage, PermUsersManage,
		PermApplicationsRead, PermApplicationsWrite, PermApplicationsReview,
		PermInterviewsManage,
		PermPaymentsRead, PermPaymentsWrite, PermSchedulesManage,
		PermDonationsRead,
		PermReportsCreate,
	},
	auth.RoleAreaAdmin: {
		PermApplicationsRead, PermApplicationsWrite, PermApplicationsReview,
		PermInterviewsManage,
		PermPaymentsRead, PermPaymentsWrite,
		PermReportsCreate,
	},
	auth.RoleUnitAdmin: {
		PermApplicationsRead, PermApplicationsWrite,
		PermInterviewsManage,
		PermPaymentsRead,
	},
	auth.RoleProjectCoordinator: {
		PermApplicationsRead, PermApplicationsReview,
		PermPaymentsRead,
		PermReportsCreate,
	},
	auth.RoleSchemeCoordinator: {
		PermApplicationsRead, PermApplicationsReview,
		PermPaymentsRead,
		PermReportsCreate,
	},
	auth.RoleBeneficiary: {
		PermApplicationsRead, PermApplicationsWrite,
	},
}

// UserGetter is satisfied by the auth service
type UserGetter interface {
	GetUserByID(userID uint) (auth.User, error)
}

// PermissionChecker resolves users to their permission set
type PermissionChecker struct {
	users UserGetter
}

func NewPermissionChecker(users UserGetter) *PermissionChecker {
	return &PermissionChecker{users: users}
}

// HasPermission reports whether the user's role carries the named
// permission. Unknown users and roles fail closed.
func (p *PermissionChecker) HasPermission(userID uint, permission string) bool {
	user, err := p.users.GetUserByID(userID)
	if err != nil {
		return false
	}
	return RoleHasPermission(user.Role.RoleName, permission)
}

// RoleHasPermission checks the static role → permission mapping
func RoleHasPermission(roleName, permission string) bool {
	perms, ok := rolePermissions[roleName]
	if !ok {
		return false
	}
	for _, perm := range perms {
		if perm == permission {
			return true
		}
	}
	return false
}
