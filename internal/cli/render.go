package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Veraticus/ledgerguard/internal/model"
	"github.com/Veraticus/ledgerguard/internal/privacy"
	"github.com/charmbracelet/lipgloss"
)

// RenderTable lays out rows under headers with columns padded to the widest cell.
func RenderTable(headers []string, rows [][]string) string {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i := 0; i < len(row) && i < len(widths); i++ {
			if w := lipgloss.Width(row[i]); w > widths[i] {
				widths[i] = w
			}
		}
	}

	line := func(cells []string) []string {
		out := make([]string, len(widths))
		for i := range widths {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			out[i] = TableCellStyle.Width(widths[i] + 2).Render(cell)
		}
		return out
	}

	lines := []string{TableHeaderStyle.Render(lipgloss.JoinHorizontal(lipgloss.Top, line(headers)...))}
	for _, row := range rows {
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, line(row)...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// RenderMaskSummary lists finding counts per category.
func RenderMaskSummary(result privacy.Result) string {
	if result.Count == 0 {
		return FormatInfo("No sensitive data found")
	}

	names := make(map[string]string)
	for _, f := range result.Findings {
		names[f.Type] = f.TypeName
	}

	counts := result.CountByType()
	types := make([]string, 0, len(counts))
	for t := range counts {
		types = append(types, t)
	}
	sort.Strings(types)

	rows := make([][]string, 0, len(types))
	for _, t := range types {
		rows = append(rows, []string{names[t], t, fmt.Sprintf("%d", counts[t])})
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		FormatSuccess(fmt.Sprintf("Masked %d sensitive items", result.Count)),
		"",
		RenderTable([]string{"Category", "ID", "Count"}, rows),
	)
}

// RenderFindings lists individual findings. Original values are shown only
// when showOriginal is set.
func RenderFindings(findings []privacy.Finding, showOriginal bool) string {
	if len(findings) == 0 {
		return FormatInfo("No sensitive data found")
	}

	headers := []string{"Category", "Masked", "Offset"}
	if showOriginal {
		headers = []string{"Category", "Original", "Masked", "Offset"}
	}

	rows := make([][]string, 0, len(findings))
	for _, f := range findings {
		offset := fmt.Sprintf("%d-%d", f.Start, f.End)
		masked := MaskStyle.Render(f.Masked)
		if showOriginal {
			rows = append(rows, []string{f.TypeName, f.Original, masked, offset})
			continue
		}
		rows = append(rows, []string{f.TypeName, masked, offset})
	}
	return RenderTable(headers, rows)
}

// RenderExtraction summarises an extraction result.
func RenderExtraction(result *model.ExtractionResult) string {
	var b strings.Builder

	status := FormatSuccess("Extraction succeeded")
	if !result.Success {
		status = FormatError("Extraction failed")
	}
	b.WriteString(status + "\n")

	method := string(result.Method)
	if result.Method == model.MethodAI {
		method = RobotIcon + " " + method
	}
	fmt.Fprintf(&b, "%s %s\n", SubtleStyle.Render("Method:"), method)
	if result.Extractor != "" {
		fmt.Fprintf(&b, "%s %s (confidence %.2f)\n", SubtleStyle.Render("Extractor:"), result.Extractor, result.Confidence)
	}

	if r := result.Record; r != nil {
		fmt.Fprintf(&b, "%s %s\n", SubtleStyle.Render("Document:"), r.DocumentType.DisplayName())
		if r.BankName != "" {
			fmt.Fprintf(&b, "%s %s\n", SubtleStyle.Render("Bank:"), r.BankName)
		}
		if p := r.StatementPeriod; p != nil && p.Year > 0 {
			fmt.Fprintf(&b, "%s %04d-%02d\n", SubtleStyle.Render("Period:"), p.Year, p.Month)
		}
		if p := r.PaymentInfo; p != nil && p.TotalAmountDue != nil {
			due := ""
			if p.DueDate != nil {
				due = " due " + p.DueDate.String()
			}
			fmt.Fprintf(&b, "%s %s%s\n", SubtleStyle.Render("Amount due:"), p.TotalAmountDue.StringFixed(0), due)
		}
		fmt.Fprintf(&b, "%s %d\n", SubtleStyle.Render("Transactions:"), len(r.Transactions))
		if s := r.Summary; s != nil && s.TotalTransactions > 0 {
			b.WriteString("\n" + RenderSummary(s) + "\n")
		}
	}

	if result.RawContent != "" {
		b.WriteString(FormatWarning("AI returned unstructured content") + "\n")
	}

	if result.Validation != nil {
		b.WriteString("\n" + RenderValidation(*result.Validation) + "\n")
	}

	for _, e := range result.Errors {
		b.WriteString(ErrorStyle.Render("  - "+e) + "\n")
	}

	return RenderBox(ChartIcon+" Extraction", strings.TrimRight(b.String(), "\n"))
}

// RenderSummary shows totals and per-merchant amounts.
func RenderSummary(s *model.Summary) string {
	rows := [][]string{
		{"Purchases", s.TotalPurchases.StringFixed(0)},
		{"Payments", s.TotalPayments.StringFixed(0)},
		{"Fees", s.TotalFees.StringFixed(0)},
	}
	if !s.TotalDeposits.IsZero() || !s.TotalWithdrawals.IsZero() {
		rows = append(rows,
			[]string{"Deposits", s.TotalDeposits.StringFixed(0)},
			[]string{"Withdrawals", s.TotalWithdrawals.StringFixed(0)})
	}
	return RenderTable([]string{"Total", "Amount"}, rows)
}

// RenderValidation reports schema errors and warnings.
func RenderValidation(report model.ValidationReport) string {
	var lines []string
	if report.Valid {
		lines = append(lines, FormatSuccess(fmt.Sprintf("Valid against %s", report.SchemaID)))
	} else {
		lines = append(lines, FormatError(fmt.Sprintf("Invalid against %s (%d errors)", report.SchemaID, len(report.Errors))))
		for _, msg := range report.ErrorMessages() {
			lines = append(lines, ErrorStyle.Render("  - "+msg))
		}
	}
	for _, w := range report.Warnings {
		lines = append(lines, FormatWarning(w))
	}
	return strings.Join(lines, "\n")
}
