package beneficiary

import (
	"time"

	"gorm.io/gorm"
)

// ============================
// 🔷 Beneficiary Profile Model
type BeneficiaryProfile struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	UserID uint `gorm:"not null;uniqueIndex" json:"user_id"` // Injected from token

	// SECTION 1: Personal Details
	FullName      *string    `json:"full_name,omitempty"`
	DOB           *time.Time `json:"dob,omitempty"`
	Gender        *string    `json:"gender,omitempty"`
	AadhaarNumber *string    `gorm:"type:varchar(20)" json:"aadhaar_number,omitempty"`
	StreetAddress *string    `json:"street_address,omitempty"`
	Pincode       *string    `json:"pincode,omitempty"`

	// SECTION 2: Region Placement
	// The unit the beneficiary belongs to, plus the ancestors copied down for
	// scope filtering
	StateID    *uint `gorm:"index" json:"state_id,omitempty"`
	DistrictID *uint `gorm:"index" json:"district_id,omitempty"`
	AreaID     *uint `gorm:"index" json:"area_id,omitempty"`
	UnitID     *uint `gorm:"index" json:"unit_id,omitempty"`

	// SECTION 3: Household & Income
	Occupation        *string  `json:"occupation,omitempty"`
	MonthlyIncome     *float64 `gorm:"type:decimal(12,2)" json:"monthly_income,omitempty"`
	FamilyMemberCount *int     `json:"family_member_count,omitempty"`
	RationCardType    *string  `json:"ration_card_type,omitempty"`

	// SECTION 4: Bank Details (for disbursement)
	BankName          *string `json:"bank_name,omitempty"`
	BankAccountNumber *string `gorm:"type:varchar(30)" json:"bank_account_number,omitempty"`
	BankIFSC          *string `gorm:"type:varchar(15)" json:"bank_ifsc,omitempty"`
	UPIID             *string `json:"upi_id,omitempty"`

	Notes *string `json:"notes,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (BeneficiaryProfile) TableName() string {
	return "beneficiary_profiles"
}

type BeneficiaryFilter struct {
	DistrictID *uint  `json:"district_id"`
	AreaID     *uint  `json:"area_id"`
	UnitID     *uint  `json:"unit_id"`
	Search     string `json:"search"`
	Page       int    `json:"page"`
	Limit      int    `json:"limit"`
}
