package superadmin

import (
	"time"
)

// AdminUserRow is the flattened admin listing row
type AdminUserRow struct {
	ID        uint      `json:"id"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	RoleName  string    `json:"role_name"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`

	RegionIDs  []uint `json:"region_ids"`
	ProjectIDs []uint `json:"project_ids"`
	SchemeIDs  []uint `json:"scheme_ids"`
}

type AdminUserFilter struct {
	Role   string `json:"role"`
	Status string `json:"status"`
	Search string `json:"search"`
	Page   int    `json:"page"`
	Limit  int    `json:"limit"`
}

type PaginatedAdminUsers struct {
	Data       []AdminUserRow `json:"data"`
	Total      int64          `json:"total"`
	Page       int            `json:"page"`
	Limit      int            `json:"limit"`
	TotalPages int            `json:"total_pages"`
}

type UpdateUserStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=active inactive"`
}

// PlatformStats backs the super admin dashboard
type PlatformStats struct {
	TotalUsers         int64            `json:"total_users"`
	UsersByRole        map[string]int64 `json:"users_by_role"`
	TotalBeneficiaries int64            `json:"total_beneficiaries"`

	RegionsByType map[string]int64 `json:"regions_by_type"`

	ApplicationsByStatus map[string]int64 `json:"applications_by_status"`
	PendingApplications  int64            `json:"pending_applications"`

	ActiveSchedules   int64   `json:"active_schedules"`
	OverduePayments   int64   `json:"overdue_payments"`
	TotalDisbursed    float64 `json:"total_disbursed"`
	DisbursedThisYear float64 `json:"disbursed_this_year"`

	TotalDonations  float64 `json:"total_donations"`
	DonationsCount  int64   `json:"donations_count"`
	ActiveProjects  int64   `json:"active_projects"`
	OpenSchemes     int64   `json:"open_schemes"`
}
