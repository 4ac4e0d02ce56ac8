package project

import (
	"time"
)

// Project is an umbrella welfare initiative grouping schemes, e.g. a housing
// drive with separate construction and repair schemes under it.
type Project struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Name        string     `gorm:"type:varchar(255);not null" json:"name"`
	Description string     `gorm:"type:text" json:"description"`
	Budget      float64    `gorm:"type:decimal(14,2);default:0" json:"budget"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`

	Status    string    `gorm:"type:varchar(20);default:'active'" json:"status"` // active/completed/archived
	IsActive  bool      `gorm:"default:true" json:"is_active"`
	CreatedBy uint      `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Project) TableName() string {
	return "projects"
}

type CreateProjectRequest struct {
	Name        string     `json:"name" binding:"required"`
	Description string     `json:"description"`
	Budget      float64    `json:"budget"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
}

type UpdateProjectRequest struct {
	Name        *string    `json:"name"`
	Description *string    `json:"description"`
	Budget      *float64   `json:"budget"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
	Status      *string    `json:"status"`
}

type ProjectFilter struct {
	Status string `json:"status"`
	Search string `json:"search"`
	Limit  int    `json:"limit"`
	Offset int    `json:"offset"`
}

// ProjectSummary backs the admin dashboard card
type ProjectSummary struct {
	ProjectID        uint    `json:"project_id"`
	SchemeCount      int64   `json:"scheme_count"`
	ApplicationCount int64   `json:"application_count"`
	TotalDisbursed   float64 `json:"total_disbursed"`
}
