package reports

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"
)

// ReportExporter renders fetched report rows into a downloadable file.
// Returns the file bytes, a filename, and the MIME type.
type ReportExporter interface {
	Export(reportType, format string, data ReportData) ([]byte, string, string, error)
}

type reportExporter struct{}

func NewReportExporter() ReportExporter {
	return &reportExporter{}
}

func (e *reportExporter) Export(reportType, format string, data ReportData) ([]byte, string, string, error) {
	timestamp := time.Now().Format("20060102_150405")

	switch reportType {
	case ReportTypeDisbursements:
		return e.exportDisbursementsByFormat(format, timestamp, data.Disbursements)
	case ReportTypeDonations:
		return e.exportDonationsByFormat(format, timestamp, data.Donations)
	case ReportTypeApplications:
		return e.exportApplicationsByFormat(format, timestamp, data.Applications)
	case ReportTypeBeneficiaries:
		return e.exportBeneficiariesByFormat(format, timestamp, data.Beneficiaries)
	case ReportTypeAuditLogs:
		return e.exportAuditLogsByFormat(format, timestamp, data.AuditLogs)
	default:
		return nil, "", "", fmt.Errorf("unsupported report type: %s", reportType)
	}
}

//// ============================
/// DISBURSEMENT EXPORTS
//// ============================

func (e *reportExporter) exportDisbursementsByFormat(format, timestamp string, rows []DisbursementReportRow) ([]byte, string, string, error) {
	switch format {
	case FormatExcel:
		data, err := e.exportDisbursementsExcel(rows)
		if err != nil {
			return nil, "", "", err
		}
		return data, fmt.Sprintf("disbursements_report_%s.xlsx", timestamp), "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", nil
	case FormatCSV:
		data, err := e.exportDisbursementsCSV(rows)
		if err != nil {
			return nil, "", "", err
		}
		return data, fmt.Sprintf("disbursements_report_%s.csv", timestamp), "text/csv", nil
	case FormatPDF:
		data, err := e.exportDisbursementsPDF(rows)
		if err != nil {
			return nil, "", "", err
		}
		return data, fmt.Sprintf("disbursements_report_%s.pdf", timestamp), "application/pdf", nil
	default:
		return nil, "", "", fmt.Errorf("unsupported format for disbursements: %s", format)
	}
}

func (e *reportExporter) exportDisbursementsCSV(rows []DisbursementReportRow) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Application ID", "Beneficiary", "Scheme", "District", "Payment No", "Amount", "Scheduled Date", "Status", "Processed At", "Method", "Reference"}
	if err := writer.Write(headers); err != nil {
		return nil, err
	}

	for _, r := range rows {
		record := []string{
			strconv.FormatUint(uint64(r.ID), 10),
			strconv.FormatUint(uint64(r.ApplicationID), 10),
			r.BeneficiaryName,
			r.SchemeName,
			r.DistrictName,
			formatIntPtr(r.PaymentNumber),
			fmt.Sprintf("%.2f", r.Amount),
			r.ScheduledDate.Format("2006-01-02"),
			r.Status,
			formatTimePtr(r.ProcessedAt),
			formatStrPtr(r.PaymentMethod),
			formatStrPtr(r.ReferenceNumber),
		}
		if err := writer.Write(record); err != nil {
			return nil, err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (e *reportExporter) exportDisbursementsExcel(rows []DisbursementReportRow) ([]byte, error) {
	f := excelize.NewFile()
	sheetName := "Disbursements"
	f.SetSheetName("Sheet1", sheetName)

	headers := []string{"ID", "Application ID", "Beneficiary", "Scheme", "District", "Payment No", "Amount", "Scheduled Date", "Status", "Processed At", "Method", "Reference"}
	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		f.SetCellValue(sheetName, cell, header)
	}

	for i, r := range rows {
		row := i + 2
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), r.ID)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), r.ApplicationID)
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), r.BeneficiaryName)
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), r.SchemeName)
		f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), r.DistrictName)
		f.SetCellValue(sheetName, fmt.Sprintf("F%d", row), formatIntPtr(r.PaymentNumber))
		f.SetCellValue(sheetName, fmt.Sprintf("G%d", row), r.Amount)
		f.SetCellValue(sheetName, fmt.Sprintf("H%d", row), r.ScheduledDate.Format("2006-01-02"))
		f.SetCellValue(sheetName, fmt.Sprintf("I%d", row), r.Status)
		f.SetCellValue(sheetName, fmt.Sprintf("J%d", row), formatTimePtr(r.ProcessedAt))
		f.SetCellValue(sheetName, fmt.Sprintf("K%d", row), formatStrPtr(r.PaymentMethod))
		f.SetCellValue(sheetName, fmt.Sprintf("L%d", row), formatStrPtr(r.ReferenceNumber))
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (e *reportExporter) exportDisbursementsPDF(rows []DisbursementReportRow) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, "Disbursements Report")
	pdf.Ln(20)

	pdf.SetFont("Arial", "B", 9)
	widths := []float64{15, 20, 40, 40, 30, 18, 25, 25, 25, 25}
	headers := []string{"ID", "App ID", "Beneficiary", "Scheme", "District", "Pmt No", "Amount", "Scheduled", "Status", "Processed"}

	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 8)
	for _, r := range rows {
		pdf.CellFormat(widths[0], 6, strconv.FormatUint(uint64(r.ID), 10), "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[1], 6, strconv.FormatUint(uint64(r.ApplicationID), 10), "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[2], 6, truncate(r.BeneficiaryName, 25), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[3], 6, truncate(r.SchemeName, 25), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[4], 6, truncate(r.DistrictName, 18), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[5], 6, formatIntPtr(r.PaymentNumber), "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[6], 6, fmt.Sprintf("%.2f", r.Amount), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[7], 6, r.ScheduledDate.Format("2006-01-02"), "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[8], 6, r.Status, "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[9], 6, formatTimePtrShort(r.ProcessedAt), "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

//// ============================
/// DONATION EXPORTS
//// ============================

func (e *reportExporter) exportDonationsByFormat(format, timestamp string, rows []DonationReportRow) ([]byte, string, string, error) {
	switch format {
	case FormatExcel:
		data, err := e.exportDonationsExcel(rows)
		if err != nil {
			return nil, "", "", err
		}
		return data, fmt.Sprintf("donations_report_%s.xlsx", timestamp), "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", nil
	case FormatCSV:
		data, err := e.exportDonationsCSV(rows)
		if err != nil {
			return nil, "", "", err
		}
		return data, fmt.Sprintf("donations_report_%s.csv", timestamp), "text/csv", nil
	case FormatPDF:
		data, err := e.exportDonationsPDF(rows)
		if err != nil {
			return nil, "", "", err
		}
		return data, fmt.Sprintf("donations_report_%s.pdf", timestamp), "application/pdf", nil
	default:
		return nil, "", "", fmt.Errorf("unsupported format for donations: %s", format)
	}
}

func (e *reportExporter) exportDonationsCSV(rows []DonationReportRow) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Donor Name", "Donor Email", "Amount", "Type", "Scheme", "Project", "Method", "Status", "Order ID", "Payment ID", "Created At"}
	if err := writer.Write(headers); err != nil {
		return nil, err
	}

	for _, r := range rows {
		record := []string{
			strconv.FormatUint(uint64(r.ID), 10),
			r.DonorName,
			r.DonorEmail,
			fmt.Sprintf("%.2f", r.Amount),
			r.DonationType,
			r.SchemeName,
			r.ProjectName,
			r.Method,
			r.Status,
			r.OrderID,
			formatStrPtr(r.PaymentID),
			r.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		if err := writer.Write(record); err != nil {
			return nil, err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (e *reportExporter) exportDonationsExcel(rows []DonationReportRow) ([]byte, error) {
	f := excelize.NewFile()
	sheetName := "Donations"
	f.SetSheetName("Sheet1", sheetName)

	headers := []string{"ID", "Donor Name", "Donor Email", "Amount", "Type", "Scheme", "Project", "Method", "Status", "Order ID", "Payment ID", "Created At"}
	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		f.SetCellValue(sheetName, cell, header)
	}

	for i, r := range rows {
		row := i + 2
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), r.ID)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), r.DonorName)
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), r.DonorEmail)
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), r.Amount)
		f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), r.DonationType)
		f.SetCellValue(sheetName, fmt.Sprintf("F%d", row), r.SchemeName)
		f.SetCellValue(sheetName, fmt.Sprintf("G%d", row), r.ProjectName)
		f.SetCellValue(sheetName, fmt.Sprintf("H%d", row), r.Method)
		f.SetCellValue(sheetName, fmt.Sprintf("I%d", row), r.Status)
		f.SetCellValue(sheetName, fmt.Sprintf("J%d", row), r.OrderID)
		f.SetCellValue(sheetName, fmt.Sprintf("K%d", row), formatStrPtr(r.PaymentID))
		f.SetCellValue(sheetName, fmt.Sprintf("L%d", row), r.CreatedAt.Format("2006-01-02 15:04:05"))
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (e *reportExporter) exportDonationsPDF(rows []DonationReportRow) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, "Donations Report")
	pdf.Ln(20)

	pdf.SetFont("Arial", "B", 9)
	widths := []float64{35, 45, 22, 22, 35, 22, 20, 40, 25}
	headers := []string{"Donor Name", "Donor Email", "Amount", "Type", "Earmark", "Method", "Status", "Order ID", "Date"}

	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 8)
	for _, r := range rows {
		earmark := r.SchemeName
		if earmark == "" {
			earmark = r.ProjectName
		}
		pdf.CellFormat(widths[0], 6, truncate(r.DonorName, 22), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 6, truncate(r.DonorEmail, 30), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[2], 6, fmt.Sprintf("%.2f", r.Amount), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[3], 6, r.DonationType, "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[4], 6, truncate(earmark, 22), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[5], 6, r.Method, "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[6], 6, r.Status, "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[7], 6, truncate(r.OrderID, 25), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[8], 6, r.CreatedAt.Format("2006-01-02"), "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

//// ============================
/// APPLICATION EXPORTS
//// ============================

func (e *reportExporter) exportApplicationsByFormat(format, timestamp string, rows []ApplicationReportRow) ([]byte, string, string, error) {
	switch format {
	case FormatExcel:
		data, err := e.exportApplicationsExcel(rows)
		if err != nil {
			return nil, "", "", err
		}
		return data, fmt.Sprintf("applications_report_%s.xlsx", timestamp), "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", nil
	case FormatCSV:
		data, err := e.exportApplicationsCSV(rows)
		if err != nil {
			return nil, "", "", err
		}
		return data, fmt.Sprintf("applications_report_%s.csv", timestamp), "text/csv", nil
	case FormatPDF:
		data, err := e.exportApplicationsPDF(rows)
		if err != nil {
			return nil, "", "", err
		}
		return data, fmt.Sprintf("applications_report_%s.pdf", timestamp), "application/pdf", nil
	default:
		return nil, "", "", fmt.Errorf("unsupported format for applications: %s", format)
	}
}

func (e *reportExporter) exportApplicationsCSV(rows []ApplicationReportRow) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Beneficiary", "Scheme", "District", "Requested Amount", "Approved Amount", "Status", "Filed At", "Approved At"}
	if err := writer.Write(headers); err != nil {
		return nil, err
	}

	for _, r := range rows {
		approvedAmount := ""
		if r.ApprovedAmount != nil {
			approvedAmount = fmt.Sprintf("%.2f", *r.ApprovedAmount)
		}
		record := []string{
			strconv.FormatUint(uint64(r.ID), 10),
			r.BeneficiaryName,
			r.SchemeName,
			r.DistrictName,
			fmt.Sprintf("%.2f", r.RequestedAmount),
			approvedAmount,
			r.Status,
			r.CreatedAt.Format("2006-01-02 15:04:05"),
			formatTimePtr(r.ApprovedAt),
		}
		if err := writer.Write(record); err != nil {
			return nil, err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (e *reportExporter) exportApplicationsExcel(rows []ApplicationReportRow) ([]byte, error) {
	f := excelize.NewFile()
	sheetName := "Applications"
	f.SetSheetName("Sheet1", sheetName)

	headers := []string{"ID", "Beneficiary", "Scheme", "District", "Requested Amount", "Approved Amount", "Status", "Filed At", "Approved At"}
	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		f.SetCellValue(sheetName, cell, header)
	}

	for i, r := range rows {
		row := i + 2
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), r.ID)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), r.BeneficiaryName)
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), r.SchemeName)
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), r.DistrictName)
		f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), r.RequestedAmount)
		if r.ApprovedAmount != nil {
			f.SetCellValue(sheetName, fmt.Sprintf("F%d", row), *r.ApprovedAmount)
		}
		f.SetCellValue(sheetName, fmt.Sprintf("G%d", row), r.Status)
		f.SetCellValue(sheetName, fmt.Sprintf("H%d", row), r.CreatedAt.Format("2006-01-02 15:04:05"))
		f.SetCellValue(sheetName, fmt.Sprintf("I%d", row), formatTimePtr(r.ApprovedAt))
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (e *reportExporter) exportApplicationsPDF(rows []ApplicationReportRow) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, "Applications Report")
	pdf.Ln(20)

	pdf.SetFont("Arial", "B", 9)
	widths := []float64{15, 45, 45, 30, 28, 28, 35, 25, 25}
	headers := []string{"ID", "Beneficiary", "Scheme", "District", "Requested", "Approved", "Status", "Filed", "Approved At"}

	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 8)
	for _, r := range rows {
		approvedAmount := ""
		if r.ApprovedAmount != nil {
			approvedAmount = fmt.Sprintf("%.2f", *r.ApprovedAmount)
		}
		pdf.CellFormat(widths[0], 6, strconv.FormatUint(uint64(r.ID), 10), "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[1], 6, truncate(r.BeneficiaryName, 28), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[2], 6, truncate(r.SchemeName, 28), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[3], 6, truncate(r.DistrictName, 18), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[4], 6, fmt.Sprintf("%.2f", r.RequestedAmount), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[5], 6, approvedAmount, "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[6], 6, r.Status, "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[7], 6, r.CreatedAt.Format("2006-01-02"), "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[8], 6, formatTimePtrShort(r.ApprovedAt), "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

//// ============================
/// BENEFICIARY EXPORTS
//// ============================

func (e *reportExporter) exportBeneficiariesByFormat(format, timestamp string, rows []BeneficiaryReportRow) ([]byte, string, string, error) {
	switch format {
	case FormatExcel:
		data, err := e.exportBeneficiariesExcel(rows)
		if err != nil {
			return nil, "", "", err
		}
		return data, fmt.Sprintf("beneficiaries_report_%s.xlsx", timestamp), "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", nil
	case FormatCSV:
		data, err := e.exportBeneficiariesCSV(rows)
		if err != nil {
			return nil, "", "", err
		}
		return data, fmt.Sprintf("beneficiaries_report_%s.csv", timestamp), "text/csv", nil
	case FormatPDF:
		data, err := e.exportBeneficiariesPDF(rows)
		if err != nil {
			return nil, "", "", err
		}
		return data, fmt.Sprintf("beneficiaries_report_%s.pdf", timestamp), "application/pdf", nil
	default:
		return nil, "", "", fmt.Errorf("unsupported format for beneficiaries: %s", format)
	}
}

func (e *reportExporter) exportBeneficiariesCSV(rows []BeneficiaryReportRow) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"User ID", "Full Name", "Email", "Phone", "District", "Unit", "Registered At"}
	if err := writer.Write(headers); err != nil {
		return nil, err
	}

	for _, r := range rows {
		record := []string{
			strconv.FormatUint(uint64(r.UserID), 10),
			r.FullName,
			r.Email,
			r.Phone,
			r.DistrictName,
			r.UnitName,
			r.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		if err := writer.Write(record); err != nil {
			return nil, err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (e *reportExporter) exportBeneficiariesExcel(rows []BeneficiaryReportRow) ([]byte, error) {
	f := excelize.NewFile()
	sheetName := "Beneficiaries"
	f.SetSheetName("Sheet1", sheetName)

	headers := []string{"User ID", "Full Name", "Email", "Phone", "District", "Unit", "Registered At"}
	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		f.SetCellValue(sheetName, cell, header)
	}

	for i, r := range rows {
		row := i + 2
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), r.UserID)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), r.FullName)
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), r.Email)
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), r.Phone)
		f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), r.DistrictName)
		f.SetCellValue(sheetName, fmt.Sprintf("F%d", row), r.UnitName)
		f.SetCellValue(sheetName, fmt.Sprintf("G%d", row), r.CreatedAt.Format("2006-01-02 15:04:05"))
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (e *reportExporter) exportBeneficiariesPDF(rows []BeneficiaryReportRow) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(40, 10, "Beneficiaries Report")
	pdf.Ln(10)

	pdf.SetFont("Arial", "B", 9)
	widths := []float64{18, 40, 50, 25, 28, 28}
	headers := []string{"User ID", "Full Name", "Email", "Phone", "District", "Unit"}

	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 8)
	for _, r := range rows {
		pdf.CellFormat(widths[0], 6, strconv.FormatUint(uint64(r.UserID), 10), "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[1], 6, truncate(r.FullName, 25), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[2], 6, truncate(r.Email, 32), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[3], 6, r.Phone, "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[4], 6, truncate(r.DistrictName, 16), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[5], 6, truncate(r.UnitName, 16), "1", 0, "L", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

//// ============================
/// AUDIT LOG EXPORTS
//// ============================

func (e *reportExporter) exportAuditLogsByFormat(format, timestamp string, logs []AuditLogReportRow) ([]byte, string, string, error) {
	switch format {
	case FormatExcel:
		data, err := e.exportAuditLogsExcel(logs)
		if err != nil {
			return nil, "", "", err
		}
		return data, fmt.Sprintf("audit_logs_report_%s.xlsx", timestamp), "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", nil
	case FormatCSV:
		data, err := e.exportAuditLogsCSV(logs)
		if err != nil {
			return nil, "", "", err
		}
		return data, fmt.Sprintf("audit_logs_report_%s.csv", timestamp), "text/csv", nil
	case FormatPDF:
		data, err := e.exportAuditLogsPDF(logs)
		if err != nil {
			return nil, "", "", err
		}
		return data, fmt.Sprintf("audit_logs_report_%s.pdf", timestamp), "application/pdf", nil
	default:
		return nil, "", "", fmt.Errorf("unsupported format for audit logs: %s", format)
	}
}

func (e *reportExporter) exportAuditLogsCSV(logs []AuditLogReportRow) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "User ID", "User Name", "Action", "Status", "IP Address", "Timestamp", "Details"}
	if err := writer.Write(headers); err != nil {
		return nil, err
	}

	for _, log := range logs {
		userID := ""
		if log.UserID != nil {
			userID = strconv.FormatUint(uint64(*log.UserID), 10)
		}

		record := []string{
			strconv.FormatUint(uint64(log.ID), 10),
			userID,
			log.UserName,
			log.Action,
			log.Status,
			log.IPAddress,
			log.Timestamp.Format("2006-01-02 15:04:05"),
			log.Details,
		}
		if err := writer.Write(record); err != nil {
			return nil, err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (e *reportExporter) exportAuditLogsExcel(logs []AuditLogReportRow) ([]byte, error) {
	f := excelize.NewFile()
	sheetName := "Audit Logs"
	f.SetSheetName("Sheet1", sheetName)

	headers := []string{"ID", "User ID", "User Name", "Action", "Status", "IP Address", "Timestamp", "Details"}
	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		f.SetCellValue(sheetName, cell, header)
	}

	for i, log := range logs {
		row := i + 2
		userID := ""
		if log.UserID != nil {
			userID = strconv.FormatUint(uint64(*log.UserID), 10)
		}

		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), log.ID)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), userID)
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), log.UserName)
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), log.Action)
		f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), log.Status)
		f.SetCellValue(sheetName, fmt.Sprintf("F%d", row), log.IPAddress)
		f.SetCellValue(sheetName, fmt.Sprintf("G%d", row), log.Timestamp.Format("2006-01-02 15:04:05"))
		f.SetCellValue(sheetName, fmt.Sprintf("H%d", row), log.Details)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (e *reportExporter) exportAuditLogsPDF(logs []AuditLogReportRow) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, "Audit Logs Report")
	pdf.Ln(20)

	pdf.SetFont("Arial", "B", 9)
	widths := []float64{15, 20, 40, 45, 20, 30, 30, 70}
	headers := []string{"ID", "User ID", "User Name", "Action", "Status", "IP Address", "Timestamp", "Details"}

	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 8)
	for _, log := range logs {
		userID := ""
		if log.UserID != nil {
			userID = strconv.FormatUint(uint64(*log.UserID), 10)
		}

		values := []string{
			strconv.FormatUint(uint64(log.ID), 10),
			userID,
			truncate(log.UserName, 25),
			truncate(log.Action, 30),
			log.Status,
			log.IPAddress,
			log.Timestamp.Format("2006-01-02 15:04:05"),
			truncate(log.Details, 45),
		}

		for i, v := range values {
			pdf.CellFormat(widths[i], 6, v, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}

func formatStrPtr(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func formatIntPtr(p *int) string {
	if p == nil {
		return ""
	}
	return strconv.Itoa(*p)
}

func formatTimePtr(p *time.Time) string {
	if p == nil {
		return ""
	}
	return p.Format("2006-01-02 15:04:05")
}

func formatTimePtrShort(p *time.Time) string {
	if p == nil {
		return ""
	}
	return p.Format("2006-01-02")
}
