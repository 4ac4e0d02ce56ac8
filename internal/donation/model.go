package donation

import (
	"time"
)

// Donation statuses
const (
	StatusPending = "PENDING"
	StatusSuccess = "SUCCESS"
	StatusFailed  = "FAILED"
)

// Donation is a donor contribution funding welfare work. A donation may be
// earmarked for a scheme or project, or left general.
type Donation struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	UserID uint `gorm:"not null;index" json:"user_id"` // donor

	DonationType string `gorm:"type:varchar(30);not null" json:"donation_type"` // general/scheme/project
	SchemeID     *uint  `gorm:"index" json:"scheme_id,omitempty"`
	ProjectID    *uint  `gorm:"index" json:"project_id,omitempty"`

	Amount float64 `gorm:"type:decimal(12,2);not null" json:"amount"`
	Method string  `gorm:"type:varchar(30)" json:"method"`
	Status string  `gorm:"type:varchar(20);default:'PENDING';index" json:"status"`

	OrderID   string  `gorm:"type:varchar(100);uniqueIndex" json:"order_id"`
	PaymentID *string `gorm:"type:varchar(100)" json:"payment_id,omitempty"`

	ReceiptNumber *string    `gorm:"type:varchar(50)" json:"receipt_number,omitempty"`
	Note          *string    `gorm:"type:text" json:"note,omitempty"`
	DonatedAt     *time.Time `json:"donated_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Donation) TableName() string {
	return "donations"
}

// CreateDonationRequest is sent by the frontend to initiate a donation
type CreateDonationRequest struct {
	UserID       uint    `json:"-"` // Filled from JWT claims
	Amount       float64 `json:"amount" binding:"required,gt=0"`
	DonationType string  `json:"donationType" binding:"required,oneof=general scheme project"`
	SchemeID     *uint   `json:"schemeID,omitempty"`
	ProjectID    *uint   `json:"projectID,omitempty"`
	Note         *string `json:"note,omitempty"`
	IPAddress    string  `json:"-"`
}

// CreateDonationResponse carries the razorpay order for the client-side SDK
type CreateDonationResponse struct {
	OrderID     string  `json:"order_id"`
	Amount      float64 `json:"amount"`
	Currency    string  `json:"currency"`
	RazorpayKey string  `json:"razorpay_key"`
}

// VerifyPaymentRequest confirms a payment from the frontend
type VerifyPaymentRequest struct {
	OrderID     string `json:"orderID" binding:"required"`
	PaymentID   string `json:"paymentID" binding:"required"`
	RazorpaySig string `json:"razorpaySig" binding:"required"`
	IPAddress   string `json:"-"`
}

type UpdatePaymentDetailsParams struct {
	Status    string     `json:"status"`
	PaymentID *string    `json:"payment_id"`
	Method    string     `json:"method"`
	Amount    float64    `json:"amount"`
	DonatedAt *time.Time `json:"donated_at"`
}

type DonationFilters struct {
	Status    string     `json:"status,omitempty"`
	Type      string     `json:"type,omitempty"`
	SchemeID  *uint      `json:"scheme_id,omitempty"`
	ProjectID *uint      `json:"project_id,omitempty"`
	From      *time.Time `json:"from,omitempty"`
	To        *time.Time `json:"to,omitempty"`
	Page      int        `json:"page"`
	Limit     int        `json:"limit"`
}

// TopDonor backs the fundraising dashboard
type TopDonor struct {
	UserID      uint    `json:"user_id"`
	DonorName   string  `json:"donor_name"`
	TotalAmount float64 `json:"total_amount"`
	Count       int64   `json:"count"`
}

// DashboardStats summarizes donation inflow
type DashboardStats struct {
	TotalAmount   float64 `json:"total_amount"`
	TotalCount    int64   `json:"total_count"`
	MonthAmount   float64 `json:"month_amount"`
	MonthCount    int64   `json:"month_count"`
	PendingCount  int64   `json:"pending_count"`
	AverageAmount float64 `json:"average_amount"`
}
