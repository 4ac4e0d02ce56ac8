package auth

import (
	"fmt"

	"gorm.io/gorm"
)

type Repository interface {
	Create(user *User) error
	Update(user *User) error
	FindByEmail(email string) (*User, error)
	FindByPhone(phone string) (*User, error)
	FindByID(userID uint) (User, error)
	FindRoleByName(name string) (*UserRole, error)

	// Admin scope management
	SaveScope(scope *AdminScope) error
	FindScopeByUserID(userID uint) (*AdminScope, error)

	// Beneficiary onboarding: idempotent by phone
	FindOrCreateBeneficiary(phone, fullName string, roleID uint) (*User, bool, error)

	GetRoles() ([]UserRole, error)
	GetUserEmailsByRole(roleName string, regionID uint) ([]string, error)
}

type repository struct{ db *gorm.DB }

func NewRepository(db *gorm.DB) Repository {
	return &repository{db}
}

func (r *repository) Create(user *User) error {
	return r.db.Create(user).Error
}

func (r *repository) Update(user *User) error {
	return r.db.Save(user).Error
}

// FindByEmail is used in login & password reset
func (r *repository) FindByEmail(email string) (*User, error) {
	var u User
	err := r.db.Preload("Role").Preload("AdminScope").Where("email = ?", email).First(&u).Error
	return &u, err
}

func (r *repository) FindByPhone(phone string) (*User, error) {
	var u User
	err := r.db.Preload("Role").Where("phone = ?", phone).First(&u).Error
	return &u, err
}

// FindByID loads role and scope for downstream rbac checks
func (r *repository) FindByID(userID uint) (User, error) {
	var user User
	err := r.db.Preload("Role").Preload("AdminScope").First(&user, userID).Error
	return user, err
}

func (r *repository) FindRoleByName(name string) (*UserRole, error) {
	var role UserRole
	err := r.db.Where("role_name = ?", name).First(&role).Error
	return &role, err
}

func (r *repository) SaveScope(scope *AdminScope) error {
	var existing AdminScope
	err := r.db.Where("user_id = ?", scope.UserID).First(&existing).Error
	if err == nil {
		scope.ID = existing.ID
		return r.db.Save(scope).Error
	}
	if err == gorm.ErrRecordNotFound {
		return r.db.Create(scope).Error
	}
	return err
}

func (r *repository) FindScopeByUserID(userID uint) (*AdminScope, error) {
	var scope AdminScope
	err := r.db.Where("user_id = ?", userID).First(&scope).Error
	if err != nil {
		return nil, err
	}
	return &scope, nil
}

// FindOrCreateBeneficiary returns the existing beneficiary for a phone or
// creates one. The check-then-create runs in a transaction so two concurrent
// OTP verifications cannot create duplicates. The bool reports creation.
func (r *repository) FindOrCreateBeneficiary(phone, fullName string, roleID uint) (*User, bool, error) {
	var user User
	created := false

	err := r.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Preload("Role").Where("phone = ?", phone).First(&user).Error
		if err == nil {
			return nil
		}
		if err != gorm.ErrRecordNotFound {
			return err
		}

		user = User{
			FullName:  fullName,
			Phone:     phone,
			RoleID:    roleID,
			Status:    "active",
			CreatedBy: "otp_onboarding",
		}
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		created = true
		return tx.Preload("Role").First(&user, user.ID).Error
	})

	if err != nil {
		return nil, false, err
	}
	return &user, created, nil
}

func (r *repository) GetRoles() ([]UserRole, error) {
	var roles []UserRole
	err := r.db.Order("id ASC").Find(&roles).Error
	return roles, err
}

func (r *repository) GetUserEmailsByRole(roleName string, regionID uint) ([]string, error) {
	var emails []string
	containsRegion := fmt.Sprintf("[%d]", regionID)
	err := r.db.
		Table("users u").
		Select("u.email").
		Joins("JOIN user_roles r ON u.role_id = r.id").
		Joins("LEFT JOIN admin_scopes s ON s.user_id = u.id").
		Where("r.role_name = ? AND u.status = 'active' AND u.email <> ''", roleName).
		Where("s.region_ids @> ?::jsonb OR s.district_id = ? OR s.area_id = ? OR s.unit_id = ?",
			containsRegion, regionID, regionID, regionID).
		Scan(&emails).Error
	return emails, err
}
