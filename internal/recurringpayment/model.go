package recurringpayment

import (
	"time"
)

// Payment statuses. scheduled → due → overdue happen on the clock; processing,
// completed, failed, skipped and cancelled happen on operator action.
// completed, failed, skipped and cancelled are terminal.
const (
	StatusScheduled  = "scheduled"
	StatusDue        = "due"
	StatusOverdue    = "overdue"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
	StatusSkipped    = "skipped"
	StatusCancelled  = "cancelled"
)

// Disbursement frequencies. Each maps to a month step applied with AddDate so
// end-of-month dates normalize the way the calendar does.
const (
	FrequencyMonthly      = "monthly"
	FrequencyQuarterly    = "quarterly"
	FrequencySemiAnnually = "semi_annually"
	FrequencyAnnually     = "annually"
)

var frequencyMonths = map[string]int{
	FrequencyMonthly:      1,
	FrequencyQuarterly:    3,
	FrequencySemiAnnually: 6,
	FrequencyAnnually:     12,
}

// MaxTotalPayments bounds a single generated schedule
const MaxTotalPayments = 60

// DueWindowDays is how far ahead of its due date a payment turns due
const DueWindowDays = 7

// ActiveStatuses are the states still awaiting disbursement. The
// active-schedule guard, schedule cancellation and the budget forecast all
// filter on this set.
var ActiveStatuses = []string{StatusScheduled, StatusDue, StatusOverdue, StatusProcessing}

// IsTerminalStatus reports whether no further status change is allowed
// (completed still accepts metadata corrections)
func IsTerminalStatus(status string) bool {
	switch status {
	case StatusCompleted, StatusFailed, StatusSkipped, StatusCancelled:
		return true
	}
	return false
}

// IsPayableStatus reports whether an operator may record a disbursement
func IsPayableStatus(status string) bool {
	for _, s := range ActiveStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// RecurringPayment is one planned disbursement in a schedule. A schedule is
// the set of rows sharing an application id and a generation batch.
type RecurringPayment struct {
	ID            uint `gorm:"primaryKey" json:"id"`
	ApplicationID uint `gorm:"not null;index" json:"application_id"`
	BeneficiaryID uint `gorm:"not null;index" json:"beneficiary_id"`
	SchemeID      uint `gorm:"index" json:"scheme_id"`
	ProjectID     *uint `gorm:"index" json:"project_id"`

	// Region references copied from the application for scope filtering
	StateID    *uint `gorm:"index" json:"state_id"`
	DistrictID *uint `gorm:"index" json:"district_id"`
	AreaID     *uint `gorm:"index" json:"area_id"`
	UnitID     *uint `gorm:"index" json:"unit_id"`

	// PaymentNumber runs 1..TotalPayments inside the schedule. CycleNumber
	// counts periods from the start date; PhaseNumber is set instead when the
	// schedule was generated from a distribution timeline.
	PaymentNumber int  `gorm:"not null" json:"payment_number"`
	TotalPayments int  `gorm:"not null" json:"total_payments"`
	CycleNumber   int  `json:"cycle_number"`
	PhaseNumber   *int `json:"phase_number"`

	Amount        float64   `gorm:"type:decimal(12,2);not null" json:"amount"`
	ScheduledDate time.Time `gorm:"not null;index" json:"scheduled_date"`
	DueDate       time.Time `gorm:"not null;index" json:"due_date"`

	Status string `gorm:"type:varchar(20);default:'scheduled';index" json:"status"`

	// Disbursement metadata, set when the payment is recorded
	ProcessedBy       *uint      `json:"processed_by"`
	ProcessedAt       *time.Time `json:"processed_at"`
	ActualPaymentDate *time.Time `json:"actual_payment_date"`
	PaymentMethod     string     `gorm:"type:varchar(30)" json:"payment_method"` // bank_transfer/cash/cheque/upi
	ReferenceNumber   string     `gorm:"type:varchar(100)" json:"reference_number"`
	Notes             string     `gorm:"type:text" json:"notes"`

	CancellationReason string `gorm:"type:text" json:"cancellation_reason"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (RecurringPayment) TableName() string {
	return "recurring_payments"
}

// GenerateScheduleRequest drives batch generation. When UseTimeline is set
// the application's distribution timeline supplies per-phase amounts and
// dates and Frequency/TotalPayments/Amount are ignored.
type GenerateScheduleRequest struct {
	ApplicationID uint      `json:"application_id" binding:"required"`
	StartDate     time.Time `json:"start_date"`
	Frequency     string    `json:"frequency"`
	TotalPayments int       `json:"total_payments"`
	Amount        float64   `json:"amount"`
	UseTimeline   bool      `json:"use_timeline"`
}

type RecordPaymentRequest struct {
	ActualPaymentDate *time.Time `json:"actual_payment_date"`
	PaymentMethod     string     `json:"payment_method" binding:"required"`
	ReferenceNumber   string     `json:"reference_number"`
	Notes             string     `json:"notes"`
}

type UpdatePaymentRequest struct {
	Amount        *float64   `json:"amount"`
	ScheduledDate *time.Time `json:"scheduled_date"`
	Notes         *string    `json:"notes"`
}

type CancelPaymentRequest struct {
	Reason string `json:"reason" binding:"required"`
}

type PaymentFilter struct {
	ApplicationID *uint  `json:"application_id"`
	BeneficiaryID *uint  `json:"beneficiary_id"`
	SchemeID      *uint  `json:"scheme_id"`
	Status        string `json:"status"`
	FromDate      *time.Time `json:"from_date"`
	ToDate        *time.Time `json:"to_date"`
	Page          int    `json:"page"`
	Limit         int    `json:"limit"`
}

// ForecastFilter narrows the budget forecast the same way the list filters
// narrow payment queries
type ForecastFilter struct {
	SchemeID  *uint `json:"scheme_id"`
	ProjectID *uint `json:"project_id"`
}

// ForecastBucket is one month of projected outflow
type ForecastBucket struct {
	Month        string  `json:"month"` // YYYY-MM
	PaymentCount int64   `json:"payment_count"`
	TotalAmount  float64 `json:"total_amount"`
}

// SweepResult reports one run of the overdue sweep
type SweepResult struct {
	MarkedDue     int64     `json:"marked_due"`
	MarkedOverdue int64     `json:"marked_overdue"`
	RanAt         time.Time `json:"ran_at"`
}
