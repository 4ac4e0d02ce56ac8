package reports

import (
	"context"
	"fmt"

	"github.com/sharath018/welfare-management-backend/internal/apperrors"
	"github.com/sharath018/welfare-management-backend/internal/auditlog"
)

type Service interface {
	ExportReport(ctx context.Context, reportType string, req ReportRequest, scopeRegionIDs []uint, userID uint, ip string) ([]byte, string, string, error)
}

type service struct {
	repo     Repository
	exporter ReportExporter
	auditSvc auditlog.Service
}

func NewService(repo Repository, exporter ReportExporter, auditSvc auditlog.Service) Service {
	return &service{
		repo:     repo,
		exporter: exporter,
		auditSvc: auditSvc,
	}
}

// ExportReport fetches the rows for the requested report inside the caller's
// scope and renders them in the requested format.
func (s *service) ExportReport(ctx context.Context, reportType string, req ReportRequest, scopeRegionIDs []uint, userID uint, ip string) ([]byte, string, string, error) {
	if req.Format == "" {
		req.Format = FormatCSV
	}
	switch req.Format {
	case FormatCSV, FormatExcel, FormatPDF:
	default:
		return nil, "", "", apperrors.NewValidation("format", fmt.Sprintf("unsupported format: %s", req.Format))
	}

	if req.DateRange == DateRangeCustom && (req.StartDate.IsZero() || req.EndDate.IsZero()) {
		return nil, "", "", apperrors.NewValidation("date_range", "start_date and end_date required for custom range")
	}
	start, end, err := GetDateRange(req.DateRange, req.StartDate.Format("2006-01-02"), req.EndDate.Format("2006-01-02"))
	if err != nil {
		return nil, "", "", apperrors.NewValidation("date_range", err.Error())
	}

	var data ReportData
	switch reportType {
	case ReportTypeDisbursements:
		data.Disbursements, err = s.repo.FetchDisbursements(ctx, req, start, end, scopeRegionIDs)
	case ReportTypeDonations:
		data.Donations, err = s.repo.FetchDonations(ctx, req, start, end)
	case ReportTypeApplications:
		data.Applications, err = s.repo.FetchApplications(ctx, req, start, end, scopeRegionIDs)
	case ReportTypeBeneficiaries:
		data.Beneficiaries, err = s.repo.FetchBeneficiaries(ctx, start, end, scopeRegionIDs)
	case ReportTypeAuditLogs:
		data.AuditLogs, err = s.repo.FetchAuditLogs(ctx, req, start, end)
	default:
		return nil, "", "", apperrors.NewValidation("report_type", fmt.Sprintf("unsupported report type: %s", reportType))
	}
	if err != nil {
		return nil, "", "", apperrors.WrapStore(err)
	}

	fileBytes, filename, mime, err := s.exporter.Export(reportType, req.Format, data)
	if err != nil {
		return nil, "", "", err
	}

	s.auditSvc.LogAction(ctx, &userID, nil, "REPORT_EXPORTED", map[string]interface{}{
		"report_type": reportType,
		"format":      req.Format,
		"from":        start.Format("2006-01-02"),
		"to":          end.Format("2006-01-02"),
	}, ip, "success")

	return fileBytes, filename, mime, nil
}
