package payment

import (
	"time"
)

// One-time disbursement statuses
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Payment is a single, non-recurring disbursement against an approved
// application, e.g. a lump-sum medical grant.
type Payment struct {
	ID            uint  `gorm:"primaryKey" json:"id"`
	ApplicationID uint  `gorm:"not null;index" json:"application_id"`
	BeneficiaryID uint  `gorm:"not null;index" json:"beneficiary_id"`
	SchemeID      uint  `gorm:"index" json:"scheme_id"`
	ProjectID     *uint `gorm:"index" json:"project_id"`

	StateID    *uint `gorm:"index" json:"state_id"`
	DistrictID *uint `gorm:"index" json:"district_id"`
	AreaID     *uint `gorm:"index" json:"area_id"`
	UnitID     *uint `gorm:"index" json:"unit_id"`

	Amount          float64 `gorm:"type:decimal(12,2);not null" json:"amount"`
	PaymentMethod   string  `gorm:"type:varchar(30)" json:"payment_method"`
	ReferenceNumber string  `gorm:"type:varchar(100)" json:"reference_number"`
	Notes           string  `gorm:"type:text" json:"notes"`

	Status string `gorm:"type:varchar(20);default:'pending';index" json:"status"`

	ProcessedBy *uint      `json:"processed_by"`
	ProcessedAt *time.Time `json:"processed_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Payment) TableName() string {
	return "payments"
}

type CreatePaymentRequest struct {
	ApplicationID uint    `json:"application_id" binding:"required"`
	Amount        float64 `json:"amount" binding:"required,gt=0"`
	PaymentMethod string  `json:"payment_method"`
	Notes         string  `json:"notes"`
}

type CompletePaymentRequest struct {
	PaymentMethod   string `json:"payment_method" binding:"required"`
	ReferenceNumber string `json:"reference_number"`
	Notes           string `json:"notes"`
}

type PaymentFilter struct {
	ApplicationID *uint  `json:"application_id"`
	BeneficiaryID *uint  `json:"beneficiary_id"`
	Status        string `json:"status"`
	Page          int    `json:"page"`
	Limit         int    `json:"limit"`
}
