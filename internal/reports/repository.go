package reports

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type Repository interface {
	FetchDisbursements(ctx context.Context, req ReportRequest, start, end time.Time, scopeRegionIDs []uint) ([]DisbursementReportRow, error)
	FetchDonations(ctx context.Context, req ReportRequest, start, end time.Time) ([]DonationReportRow, error)
	FetchApplications(ctx context.Context, req ReportRequest, start, end time.Time, scopeRegionIDs []uint) ([]ApplicationReportRow, error)
	FetchBeneficiaries(ctx context.Context, start, end time.Time, scopeRegionIDs []uint) ([]BeneficiaryReportRow, error)
	FetchAuditLogs(ctx context.Context, req ReportRequest, start, end time.Time) ([]AuditLogReportRow, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func scopeRegions(query *gorm.DB, table string, regionIDs []uint) *gorm.DB {
	if len(regionIDs) == 0 {
		return query
	}
	return query.Where(
		table+".district_id IN ? OR "+table+".area_id IN ? OR "+table+".unit_id IN ?",
		regionIDs, regionIDs, regionIDs,
	)
}

func (r *repository) FetchDisbursements(ctx context.Context, req ReportRequest, start, end time.Time, scopeRegionIDs []uint) ([]DisbursementReportRow, error) {
	query := r.db.WithContext(ctx).Table("recurring_payments").
		Select(`recurring_payments.id,
			recurring_payments.application_id,
			users.full_name AS beneficiary_name,
			schemes.name AS scheme_name,
			COALESCE(districts.name, '') AS district_name,
			recurring_payments.payment_number,
			recurring_payments.amount,
			recurring_payments.scheduled_date,
			recurring_payments.status,
			recurring_payments.processed_at,
			recurring_payments.payment_method,
			recurring_payments.reference_number`).
		Joins("JOIN applications ON applications.id = recurring_payments.application_id").
		Joins("JOIN users ON users.id = applications.beneficiary_id").
		Joins("JOIN schemes ON schemes.id = applications.scheme_id").
		Joins("LEFT JOIN regions AS districts ON districts.id = recurring_payments.district_id").
		Where("recurring_payments.scheduled_date BETWEEN ? AND ?", start, end)

	if req.Status != "" {
		query = query.Where("recurring_payments.status = ?", req.Status)
	}
	if req.SchemeID != nil {
		query = query.Where("applications.scheme_id = ?", *req.SchemeID)
	}
	if req.ProjectID != nil {
		query = query.Where("applications.project_id = ?", *req.ProjectID)
	}
	query = scopeRegions(query, "recurring_payments", scopeRegionIDs)

	var rows []DisbursementReportRow
	err := query.Order("recurring_payments.scheduled_date ASC").Scan(&rows).Error
	return rows, err
}

func (r *repository) FetchDonations(ctx context.Context, req ReportRequest, start, end time.Time) ([]DonationReportRow, error) {
	query := r.db.WithContext(ctx).Table("donations").
		Select(`donations.id,
			users.full_name AS donor_name,
			users.email AS donor_email,
			donations.amount,
			donations.donation_type,
			COALESCE(schemes.name, '') AS scheme_name,
			COALESCE(projects.name, '') AS project_name,
			donations.method,
			donations.status,
			donations.order_id,
			donations.payment_id,
			donations.created_at`).
		Joins("JOIN users ON users.id = donations.user_id").
		Joins("LEFT JOIN schemes ON schemes.id = donations.scheme_id").
		Joins("LEFT JOIN projects ON projects.id = donations.project_id").
		Where("donations.created_at BETWEEN ? AND ?", start, end)

	if req.Status != "" {
		query = query.Where("donations.status = ?", req.Status)
	}
	if req.SchemeID != nil {
		query = query.Where("donations.scheme_id = ?", *req.SchemeID)
	}
	if req.ProjectID != nil {
		query = query.Where("donations.project_id = ?", *req.ProjectID)
	}

	var rows []DonationReportRow
	err := query.Order("donations.created_at DESC").Scan(&rows).Error
	return rows, err
}

func (r *repository) FetchApplications(ctx context.Context, req ReportRequest, start, end time.Time, scopeRegionIDs []uint) ([]ApplicationReportRow, error) {
	query := r.db.WithContext(ctx).Table("applications").
		Select(`applications.id,
			users.full_name AS beneficiary_name,
			schemes.name AS scheme_name,
			COALESCE(districts.name, '') AS district_name,
			applications.requested_amount,
			applications.approved_amount,
			applications.status,
			applications.created_at,
			applications.approved_at`).
		Joins("JOIN users ON users.id = applications.beneficiary_id").
		Joins("JOIN schemes ON schemes.id = applications.scheme_id").
		Joins("LEFT JOIN regions AS districts ON districts.id = applications.district_id").
		Where("applications.created_at BETWEEN ? AND ?", start, end)

	if req.Status != "" {
		query = query.Where("applications.status = ?", req.Status)
	}
	if req.SchemeID != nil {
		query = query.Where("applications.scheme_id = ?", *req.SchemeID)
	}
	if req.ProjectID != nil {
		query = query.Where("applications.project_id = ?", *req.ProjectID)
	}
	query = scopeRegions(query, "applications", scopeRegionIDs)

	var rows []ApplicationReportRow
	err := query.Order("applications.created_at DESC").Scan(&rows).Error
	return rows, err
}

func (r *repository) FetchBeneficiaries(ctx context.Context, start, end time.Time, scopeRegionIDs []uint) ([]BeneficiaryReportRow, error) {
	query := r.db.WithContext(ctx).Table("beneficiary_profiles").
		Select(`beneficiary_profiles.user_id,
			users.full_name,
			users.email,
			COALESCE(users.phone, '') AS phone,
			COALESCE(districts.name, '') AS district_name,
			COALESCE(units.name, '') AS unit_name,
			beneficiary_profiles.created_at`).
		Joins("JOIN users ON users.id = beneficiary_profiles.user_id").
		Joins("LEFT JOIN regions AS districts ON districts.id = beneficiary_profiles.district_id").
		Joins("LEFT JOIN regions AS units ON units.id = beneficiary_profiles.unit_id").
		Where("beneficiary_profiles.created_at BETWEEN ? AND ?", start, end).
		Where("beneficiary_profiles.deleted_at IS NULL")

	query = scopeRegions(query, "beneficiary_profiles", scopeRegionIDs)

	var rows []BeneficiaryReportRow
	err := query.Order("beneficiary_profiles.created_at DESC").Scan(&rows).Error
	return rows, err
}

func (r *repository) FetchAuditLogs(ctx context.Context, req ReportRequest, start, end time.Time) ([]AuditLogReportRow, error) {
	query := r.db.WithContext(ctx).Table("audit_logs").
		Select(`audit_logs.id,
			audit_logs.user_id,
			COALESCE(users.full_name, '') AS user_name,
			audit_logs.action,
			audit_logs.status,
			audit_logs.ip_address,
			audit_logs.created_at AS timestamp,
			audit_logs.details::text AS details`).
		Joins("LEFT JOIN users ON users.id = audit_logs.user_id").
		Where("audit_logs.created_at BETWEEN ? AND ?", start, end)

	if req.Status != "" {
		query = query.Where("audit_logs.status = ?", req.Status)
	}

	var rows []AuditLogReportRow
	err := query.Order("audit_logs.created_at DESC").Limit(5000).Scan(&rows).Error
	return rows, err
}
