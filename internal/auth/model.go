package auth

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// Role names form a closed set. Every scope decision site switches on these,
// so adding a role means revisiting the rbac package as well.
const (
	RoleSuperAdmin         = "super_admin"
	RoleStateAdmin         = "state_admin"
	RoleDistrictAdmin      = "district_admin"
	RoleAreaAdmin          = "area_admin"
	RoleUnitAdmin          = "unit_admin"
	RoleProjectCoordinator = "project_coordinator"
	RoleSchemeCoordinator  = "scheme_coordinator"
	RoleBeneficiary        = "beneficiary"
)

// UintList is a jsonb-backed id list (admin scope region/project/scheme sets)
type UintList []uint

func (l UintList) Value() (driver.Value, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(l)
}

func (l *UintList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return errors.New("unsupported type for UintList")
	}
	return json.Unmarshal(data, l)
}

func (UintList) GormDataType() string {
	return "jsonb"
}

type UserRole struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	RoleName    string `gorm:"type:varchar(50);unique;not null" json:"role_name"`
	Description string `gorm:"type:text" json:"description"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (UserRole) TableName() string {
	return "user_roles"
}

type User struct {
	ID           uint     `gorm:"primaryKey" json:"id"`
	FullName     string   `gorm:"type:varchar(255);not null" json:"full_name"`
	Email        string   `gorm:"type:varchar(255);uniqueIndex" json:"email"`
	Phone        string   `gorm:"type:varchar(15);index" json:"phone"`
	PasswordHash string   `gorm:"type:text" json:"-"`
	RoleID       uint     `gorm:"not null;index" json:"role_id"`
	Role         UserRole `gorm:"foreignKey:RoleID" json:"role"`
	Status       string   `gorm:"type:varchar(20);default:'active'" json:"status"` // active/pending/inactive
	CreatedBy    string   `gorm:"type:varchar(50)" json:"created_by"`

	// Scope is loaded for admin and coordinator roles; nil for beneficiaries
	AdminScope *AdminScope `gorm:"foreignKey:UserID" json:"admin_scope,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// AdminScope holds a user's regional and programmatic assignment.
//
// Two shapes exist side by side: the RegionIDs list and the legacy single
// district/area/unit fields written by older admin tooling. The rbac resolver
// normalizes both into one set; new writes use RegionIDs only.
type AdminScope struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	UserID uint `gorm:"not null;uniqueIndex" json:"user_id"`

	RegionIDs UintList `gorm:"type:jsonb" json:"region_ids"`

	// Legacy single-region form
	DistrictID *uint `json:"district_id"`
	AreaID     *uint `json:"area_id"`
	UnitID     *uint `json:"unit_id"`

	// Coordinator assignments
	ProjectIDs UintList `gorm:"type:jsonb" json:"project_ids"`
	SchemeIDs  UintList `gorm:"type:jsonb" json:"scheme_ids"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (AdminScope) TableName() string {
	return "admin_scopes"
}

// DTOs

type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RequestOTPInput struct {
	Phone string `json:"phone" binding:"required"`
}

type VerifyOTPInput struct {
	Phone    string `json:"phone" binding:"required"`
	Code     string `json:"code" binding:"required"`
	FullName string `json:"full_name"`
}

type CreateAdminInput struct {
	FullName   string `json:"fullName" binding:"required"`
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required,min=6"`
	Phone      string `json:"phone" binding:"required"`
	Role       string `json:"role" binding:"required"`
	RegionIDs  []uint `json:"regionIds"`
	ProjectIDs []uint `json:"projectIds"`
	SchemeIDs  []uint `json:"schemeIds"`
}

type UpdateScopeInput struct {
	RegionIDs  []uint `json:"regionIds"`
	ProjectIDs []uint `json:"projectIds"`
	SchemeIDs  []uint `json:"schemeIds"`
}

type PublicRoleResponse struct {
	ID          uint   `json:"id"`
	RoleName    string `json:"role_name"`
	Description string `json:"description"`
}
