package payslip

import (
	"fmt"
	"io"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/salary"
	"github.com/jung-kurt/gofpdf"
)

const currency = "INR"

// Render writes a one-page PDF payslip for a calculated payroll record.
func Render(w io.Writer, rec payroll.PayrollRecordResponse) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("Payslip %s %s", rec.EmployeeID, rec.Month), false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Payslip")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	employee := rec.EmployeeID
	if rec.EmployeeName != "" {
		employee = fmt.Sprintf("%s (%s)", rec.EmployeeName, rec.EmployeeCode)
	}
	pdf.Cell(0, 7, fmt.Sprintf("Employee: %s", employee))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Period: %s", rec.Month))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Salary type: %s", rec.SalaryType))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Status: %s", rec.Status))
	pdf.Ln(10)

	b := rec.Breakdown
	section(pdf, "Earnings", b.Earnings, "Gross", b.Gross)
	section(pdf, "Deductions", b.Deductions, "Total deductions", b.TotalDeductions)

	if b.Sales != nil && len(b.Sales.Commission) > 0 {
		commissionTable(pdf, b.Sales)
	}

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(120, 8, "Net pay", "T", 0, "L", false, 0, "")
	pdf.CellFormat(60, 8, amount(b.Net), "T", 1, "R", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(120, 7, "Annual CTC", "", 0, "L", false, 0, "")
	pdf.CellFormat(60, 7, amount(b.AnnualCTC), "", 1, "R", false, 0, "")

	if b.TablesVersion != "" {
		pdf.Ln(6)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.Cell(0, 5, fmt.Sprintf("Statutory tables %s. Calculated %s.", b.TablesVersion, rec.CalculatedAt))
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to render payslip: %w", err)
	}
	return nil
}

func section(pdf *gofpdf.Fpdf, title string, items []salary.LineItem, totalLabel string, total salary.Money) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, title)
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 10)
	for _, item := range items {
		pdf.CellFormat(120, 6, item.Label, "", 0, "L", false, 0, "")
		pdf.CellFormat(60, 6, amount(item.Amount), "", 1, "R", false, 0, "")
	}

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(120, 7, totalLabel, "T", 0, "L", false, 0, "")
	pdf.CellFormat(60, 7, amount(total), "T", 1, "R", false, 0, "")
	pdf.Ln(4)
}

func commissionTable(pdf *gofpdf.Fpdf, s *salary.SalesDetail) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Commission tiers")
	pdf.Ln(8)

	widths := []float64{20, 35, 45, 30, 50}
	headers := []string{"Tier", "Sales", "Rate per sale", "Count", "Commission"}
	pdf.SetFont("Helvetica", "B", 10)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	for _, line := range s.Commission {
		pdf.CellFormat(widths[0], 6, fmt.Sprintf("%d", line.Tier), "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[1], 6, line.Range, "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[2], 6, amount(line.RatePerSale), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[3], 6, fmt.Sprintf("%d", line.SalesCount), "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[4], 6, amount(line.Commission), "1", 1, "R", false, 0, "")
	}
	pdf.Ln(4)
}

func amount(m salary.Money) string {
	return fmt.Sprintf("%s %s", currency, m)
}
