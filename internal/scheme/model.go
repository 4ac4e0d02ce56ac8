package scheme

import (
	"time"
)

// ======================
// 🔹 Scheme Core Model
// ======================

type Scheme struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	Name        string  `gorm:"type:varchar(255);not null" json:"name"`
	SchemeType  string  `gorm:"type:varchar(50);not null" json:"scheme_type"` // e.g., education, medical, housing, pension
	Description string  `gorm:"type:text" json:"description"`
	ProjectID   *uint   `gorm:"index" json:"project_id"` // optional umbrella project

	// MaxAmount caps a single application's approved amount; 0 means no cap
	MaxAmount float64 `gorm:"type:decimal(12,2);default:0" json:"max_amount"`

	EligibilityCriteria string `gorm:"type:text" json:"eligibility_criteria"`

	// Schemes accepting applications right now
	Status    string    `gorm:"type:varchar(20);default:'open'" json:"status"` // open/paused/closed
	IsActive  bool      `gorm:"default:true" json:"is_active"`
	CreatedBy uint      `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Scheme) TableName() string {
	return "schemes"
}

// ✅ For Filtered Search (Admin Dashboard)
type SchemeFilter struct {
	SchemeType string `json:"scheme_type"`
	ProjectID  *uint  `json:"project_id"`
	Status     string `json:"status"`
	Search     string `json:"search"`
	Limit      int    `json:"limit"`
	Offset     int    `json:"offset"`
}

type CreateSchemeRequest struct {
	Name                string  `json:"name" binding:"required"`
	SchemeType          string  `json:"scheme_type" binding:"required"`
	Description         string  `json:"description"`
	ProjectID           *uint   `json:"project_id"`
	MaxAmount           float64 `json:"max_amount"`
	EligibilityCriteria string  `json:"eligibility_criteria"`
}

type UpdateSchemeRequest struct {
	Name                *string  `json:"name"`
	SchemeType          *string  `json:"scheme_type"`
	Description         *string  `json:"description"`
	ProjectID           *uint    `json:"project_id"`
	MaxAmount           *float64 `json:"max_amount"`
	EligibilityCriteria *string  `json:"eligibility_criteria"`
	Status              *string  `json:"status"`
}
