package application

import (
	"time"

	"gorm.io/datatypes"
)

// Application statuses. Transitions are one-directional; completed, rejected
// and cancelled are terminal.
const (
	StatusPending            = "pending"
	StatusUnderReview        = "under_review"
	StatusInterviewScheduled = "interview_scheduled"
	StatusCommitteePending   = "committee_pending"
	StatusApproved           = "approved"
	StatusCommitteeApproved  = "committee_approved"
	StatusRejected           = "rejected"
	StatusCompleted          = "completed"
	StatusCancelled          = "cancelled"
)

// allowedTransitions is the closed status machine. Illegal moves surface as
// InvalidStateError in the service.
var allowedTransitions = map[string][]string{
	StatusPending:            {StatusUnderReview, StatusRejected, StatusCancelled},
	StatusUnderReview:        {StatusInterviewScheduled, StatusCommitteePending, StatusApproved, StatusRejected, StatusCancelled},
	StatusInterviewScheduled: {StatusApproved, StatusCommitteePending, StatusRejected, StatusCancelled},
	StatusCommitteePending:   {StatusCommitteeApproved, StatusRejected, StatusCancelled},
	StatusApproved:           {StatusCompleted, StatusCancelled},
	StatusCommitteeApproved:  {StatusCompleted, StatusCancelled},
}

func CanTransition(from, to string) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsApprovedStatus reports whether payment plans may be generated
func IsApprovedStatus(status string) bool {
	return status == StatusApproved || status == StatusCommitteeApproved
}

// TimelinePhase is one phase of a distribution timeline decided at approval
type TimelinePhase struct {
	Description  string    `json:"description"`
	Amount       float64   `json:"amount"`
	ExpectedDate time.Time `json:"expected_date"`
}

type Application struct {
	ID            uint  `gorm:"primaryKey" json:"id"`
	BeneficiaryID uint  `gorm:"not null;index" json:"beneficiary_id"`
	SchemeID      uint  `gorm:"not null;index" json:"scheme_id"`
	ProjectID     *uint `gorm:"index" json:"project_id"`

	// Region references copied from the beneficiary at creation time so
	// scope filtering never needs joins. Never written back to regions.
	StateID    *uint `gorm:"index" json:"state_id"`
	DistrictID *uint `gorm:"index" json:"district_id"`
	AreaID     *uint `gorm:"index" json:"area_id"`
	UnitID     *uint `gorm:"index" json:"unit_id"`

	Purpose         string   `gorm:"type:text" json:"purpose"`
	RequestedAmount float64  `gorm:"type:decimal(12,2);not null" json:"requested_amount"`
	ApprovedAmount  *float64 `gorm:"type:decimal(12,2)" json:"approved_amount"`

	Status string `gorm:"type:varchar(30);default:'pending';index" json:"status"`

	// Optional phases decided at approval; phase amounts should sum to
	// ApprovedAmount (convention, logged when violated, not rejected)
	DistributionTimeline datatypes.JSON `gorm:"type:jsonb" json:"distribution_timeline"`

	// Document uploads (URLs to stored files)
	IdentityProofURL string `json:"identity_proof_url"`
	IncomeProofURL   string `json:"income_proof_url"`
	SupportingDocURL string `json:"supporting_doc_url"`

	ApprovedBy      *uint      `json:"approved_by"`
	ApprovedAt      *time.Time `json:"approved_at"`
	RejectedAt      *time.Time `json:"rejected_at"`
	RejectionReason string     `gorm:"type:text" json:"rejection_reason"`
	CompletedAt     *time.Time `json:"completed_at"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Application) TableName() string {
	return "applications"
}

// Request/Response DTOs

// CreateApplicationRequest carries the applicant's input. The region chain is
// never taken from the request: it is copied from the beneficiary's profile
// at creation time.
type CreateApplicationRequest struct {
	BeneficiaryID   uint    `json:"beneficiary_id"`
	SchemeID        uint    `json:"scheme_id" binding:"required"`
	ProjectID       *uint   `json:"project_id"`
	Purpose         string  `json:"purpose" binding:"required"`
	RequestedAmount float64 `json:"requested_amount" binding:"required,gt=0"`
}

type ApproveApplicationRequest struct {
	ApprovedAmount       float64         `json:"approved_amount" binding:"required,gt=0"`
	DistributionTimeline []TimelinePhase `json:"distribution_timeline"`
	ViaCommittee         bool            `json:"via_committee"`
}

type RejectApplicationRequest struct {
	Reason string `json:"reason" binding:"required"`
}

type ApplicationFilter struct {
	Status        string `json:"status"`
	SchemeID      *uint  `json:"scheme_id"`
	ProjectID     *uint  `json:"project_id"`
	BeneficiaryID *uint  `json:"beneficiary_id"`
	DistrictID    *uint  `json:"district_id"`
	AreaID        *uint  `json:"area_id"`
	UnitID        *uint  `json:"unit_id"`
	Search        string `json:"search"`
	Page          int    `json:"page"`
	Limit         int    `json:"limit"`
}
