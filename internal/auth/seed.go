package auth

import (
	"fmt"
	"log"
	"os"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var seedRoles = []UserRole{
	{RoleName: RoleSuperAdmin, Description: "Full platform access across all regions"},
	{RoleName: RoleStateAdmin, Description: "State-wide access, implicitly global"},
	{RoleName: RoleDistrictAdmin, Description: "Access to assigned districts"},
	{RoleName: RoleAreaAdmin, Description: "Access to assigned areas"},
	{RoleName: RoleUnitAdmin, Description: "Access to assigned units"},
	{RoleName: RoleProjectCoordinator, Description: "Access scoped to assigned projects"},
	{RoleName: RoleSchemeCoordinator, Description: "Access scoped to assigned schemes"},
	{RoleName: RoleBeneficiary, Description: "Beneficiary self-service via OTP login"},
}

// SeedUserRoles inserts the closed role set if missing
func SeedUserRoles(db *gorm.DB) error {
	for _, role := range seedRoles {
		var existing UserRole
		err := db.Where("role_name = ?", role.RoleName).First(&existing).Error
		if err == gorm.ErrRecordNotFound {
			if err := db.Create(&role).Error; err != nil {
				return fmt.Errorf("failed to seed role %s: %w", role.RoleName, err)
			}
			log.Printf("✅ Seeded role: %s", role.RoleName)
			continue
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// SeedSuperAdminUser creates the bootstrap super admin from env credentials
func SeedSuperAdminUser(db *gorm.DB) error {
	email := os.Getenv("SUPERADMIN_EMAIL")
	password := os.Getenv("SUPERADMIN_PASSWORD")
	if email == "" || password == "" {
		log.Println("⚠️ SUPERADMIN_EMAIL / SUPERADMIN_PASSWORD not set, skipping super admin seed")
		return nil
	}

	var role UserRole
	if err := db.Where("role_name = ?", RoleSuperAdmin).First(&role).Error; err != nil {
		return fmt.Errorf("super_admin role missing: %w", err)
	}

	var existing User
	err := db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		return nil // already seeded
	}
	if err != gorm.ErrRecordNotFound {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	user := &User{
		FullName:     "Super Admin",
		Email:        email,
		PasswordHash: string(hash),
		RoleID:       role.ID,
		Status:       "active",
		CreatedBy:    "system",
	}

	if err := db.Create(user).Error; err != nil {
		return fmt.Errorf("failed to create super admin: %w", err)
	}

	log.Printf("✅ Seeded super admin: %s", email)
	return nil
}
