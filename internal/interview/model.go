package interview

import (
	"time"
)

// Interview statuses
const (
	StatusScheduled   = "scheduled"
	StatusRescheduled = "rescheduled"
	StatusCompleted   = "completed"
	StatusNoShow      = "no_show"
	StatusCancelled   = "cancelled"
)

// Interview results
const (
	ResultPassed        = "passed"
	ResultFailed        = "failed"
	ResultNeedsFollowup = "needs_followup"
)

// Interview is a verification meeting with the applicant before approval
type Interview struct {
	ID            uint `gorm:"primaryKey" json:"id"`
	ApplicationID uint `gorm:"not null;index" json:"application_id"`
	BeneficiaryID uint `gorm:"not null;index" json:"beneficiary_id"`
	InterviewerID uint `gorm:"not null" json:"interviewer_id"`

	StateID    *uint `gorm:"index" json:"state_id"`
	DistrictID *uint `gorm:"index" json:"district_id"`
	AreaID     *uint `gorm:"index" json:"area_id"`
	UnitID     *uint `gorm:"index" json:"unit_id"`

	ScheduledAt time.Time `gorm:"not null" json:"scheduled_at"`
	Location    string    `gorm:"type:varchar(255)" json:"location"`
	Mode        string    `gorm:"type:varchar(20);default:'in_person'" json:"mode"` // in_person/phone/video

	Status string `gorm:"type:varchar(20);default:'scheduled';index" json:"status"`
	Result string `gorm:"type:varchar(20)" json:"result"`
	Notes  string `gorm:"type:text" json:"notes"`

	CompletedAt *time.Time `json:"completed_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Interview) TableName() string {
	return "interviews"
}

type ScheduleInterviewRequest struct {
	ApplicationID uint      `json:"application_id" binding:"required"`
	ScheduledAt   time.Time `json:"scheduled_at" binding:"required"`
	Location      string    `json:"location"`
	Mode          string    `json:"mode"`
}

type RescheduleInterviewRequest struct {
	ScheduledAt time.Time `json:"scheduled_at" binding:"required"`
	Location    string    `json:"location"`
	Mode        string    `json:"mode"`
}

type RecordResultRequest struct {
	Result string `json:"result" binding:"required"`
	Notes  string `json:"notes"`
}

type InterviewFilter struct {
	ApplicationID *uint  `json:"application_id"`
	InterviewerID *uint  `json:"interviewer_id"`
	Status        string `json:"status"`
	Page          int    `json:"page"`
	Limit         int    `json:"limit"`
}
