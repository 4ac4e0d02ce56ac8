package reports

import (
	"time"
)

const (
	ReportTypeDisbursements = "disbursements"
	ReportTypeDonations     = "donations"
	ReportTypeApplications  = "applications"
	ReportTypeBeneficiaries = "beneficiaries"
	ReportTypeAuditLogs     = "audit-logs"

	// Date range presets
	DateRangeDaily   = "daily"
	DateRangeWeekly  = "weekly"
	DateRangeMonthly = "monthly"
	DateRangeYearly  = "yearly"
	DateRangeCustom  = "custom"

	// Export formats
	FormatCSV   = "csv"
	FormatExcel = "excel"
	FormatPDF   = "pdf"
)

// ReportRequest carries common filters for every report endpoint
type ReportRequest struct {
	DateRange string    `json:"date_range"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	Status    string    `json:"status"`
	SchemeID  *uint     `json:"scheme_id"`
	ProjectID *uint     `json:"project_id"`
	Format    string    `json:"format"`
}

// ReportData holds the rows fetched for a single export
type ReportData struct {
	Disbursements []DisbursementReportRow `json:"disbursements,omitempty"`
	Donations     []DonationReportRow     `json:"donations,omitempty"`
	Applications  []ApplicationReportRow  `json:"applications,omitempty"`
	Beneficiaries []BeneficiaryReportRow  `json:"beneficiaries,omitempty"`
	AuditLogs     []AuditLogReportRow     `json:"audit_logs,omitempty"`
}

// DisbursementReportRow is one scheduled payment in the disbursement report
type DisbursementReportRow struct {
	ID              uint       `json:"id"`
	ApplicationID   uint       `json:"application_id"`
	BeneficiaryName string     `json:"beneficiary_name"`
	SchemeName      string     `json:"scheme_name"`
	DistrictName    string     `json:"district_name"`
	PaymentNumber   *int       `json:"payment_number"`
	Amount          float64    `json:"amount"`
	ScheduledDate   time.Time  `json:"scheduled_date"`
	Status          string     `json:"status"`
	ProcessedAt     *time.Time `json:"processed_at"`
	PaymentMethod   *string    `json:"payment_method"`
	ReferenceNumber *string    `json:"reference_number"`
}

type DonationReportRow struct {
	ID           uint      `json:"id"`
	DonorName    string    `json:"donor_name"`
	DonorEmail   string    `json:"donor_email"`
	Amount       float64   `json:"amount"`
	DonationType string    `json:"donation_type"`
	SchemeName   string    `json:"scheme_name"`
	ProjectName  string    `json:"project_name"`
	Method       string    `json:"method"`
	Status       string    `json:"status"`
	OrderID      string    `json:"order_id"`
	PaymentID    *string   `json:"payment_id"`
	CreatedAt    time.Time `json:"created_at"`
}

type ApplicationReportRow struct {
	ID              uint       `json:"id"`
	BeneficiaryName string     `json:"beneficiary_name"`
	SchemeName      string     `json:"scheme_name"`
	DistrictName    string     `json:"district_name"`
	RequestedAmount float64    `json:"requested_amount"`
	ApprovedAmount  *float64   `json:"approved_amount"`
	Status          string     `json:"status"`
	CreatedAt       time.Time  `json:"created_at"`
	ApprovedAt      *time.Time `json:"approved_at"`
}

type BeneficiaryReportRow struct {
	UserID       uint      `json:"user_id"`
	FullName     string    `json:"full_name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	DistrictName string    `json:"district_name"`
	UnitName     string    `json:"unit_name"`
	CreatedAt    time.Time `json:"created_at"`
}

type AuditLogReportRow struct {
	ID        uint      `json:"id"`
	UserID    *uint     `json:"user_id"`
	UserName  string    `json:"user_name"`
	Action    string    `json:"action"`
	Status    string    `json:"status"`
	IPAddress string    `json:"ip_address"`
	Timestamp time.Time `json:"timestamp"`
	Details   string    `json:"details"`
}
