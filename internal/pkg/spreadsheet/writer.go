package spreadsheet

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/cmlabs-hris/attendance-recon/internal/domain/report"
	"github.com/cmlabs-hris/attendance-recon/internal/pkg/utils"
)

const (
	SheetDetail   = "Detalle"
	SheetSummary  = "Resumen"
	SheetBranches = "Sucursales"

	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var (
	detailHeader = []any{
		"Código", "Nombre", "Fecha", "Día", "Quincena", "Entrada programada", "Salida programada",
		"Nocturno", "Marcas", "Entrada", "Salida", "Estado marcas", "Horas trabajadas",
		"Horas esperadas", "Deducción permiso", "Horas netas esperadas", "Descanso",
		"Horas netas trabajadas", "Permiso", "Retardo", "Incidencia", "Salida anticipada",
	}
	summaryHeader = []any{
		"Código", "Nombre", "Sucursal", "Días", "Días laborables", "Horas trabajadas",
		"Horas esperadas", "Deducción permiso", "Horas netas esperadas", "Descanso", "Diferencia",
		"Faltas", "Faltas justificadas", "Retardos", "Perdonados", "Salidas anticipadas",
		"Episodios", "Eficiencia %", "Puntualidad %", "SIC %", "Banda SIC", "Ausentismo %",
		"Bradford", "Banda Bradford", "Nota",
	}
	branchHeader = []any{
		"Sucursal", "Empleados", "Eficiencia promedio %", "Puntualidad promedio %",
		"SIC promedio %", "Banda SIC", "Bradford promedio", "Banda Bradford",
		"Faltas", "Faltas justificadas",
	}
)

// Filename is the download name for a run's workbook.
func Filename(res report.Result) string {
	branch := strings.ReplaceAll(strings.TrimSpace(res.Branch), " ", "_")
	if branch == "" {
		branch = "Todas"
	}
	return fmt.Sprintf("asistencia_%s_%s_%s.xlsx", branch, res.Start.Format("20060102"), res.End.Format("20060102"))
}

// Write renders res as an xlsx workbook with detail, per-employee and
// per-branch sheets.
func Write(w io.Writer, res report.Result) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	if err := f.SetSheetName("Sheet1", SheetDetail); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}
	for _, name := range []string{SheetSummary, SheetBranches} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", name, err)
		}
	}

	detail := make([][]any, 0, len(res.Records))
	for _, r := range res.Records {
		detail = append(detail, detailRow(r))
	}
	summary := make([][]any, 0, len(res.Employees))
	for _, s := range res.Employees {
		summary = append(summary, summaryRow(s))
	}
	branches := make([][]any, 0, len(res.Branches))
	for _, b := range res.Branches {
		branches = append(branches, branchRow(b))
	}

	for _, sheet := range []struct {
		name   string
		header []any
		rows   [][]any
	}{
		{SheetDetail, detailHeader, detail},
		{SheetSummary, summaryHeader, summary},
		{SheetBranches, branchHeader, branches},
	} {
		if err := writeTable(f, sheet.name, sheet.header, sheet.rows, headerStyle); err != nil {
			return err
		}
	}

	f.SetActiveSheet(0)
	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeTable(f *excelize.File, sheet string, header []any, rows [][]any, headerStyle int) error {
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write %s header: %w", sheet, err)
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("failed to style %s header: %w", sheet, err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+2, err)
		}
	}

	lastCol, err := excelize.ColumnNumberToName(len(header))
	if err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "A", lastCol, 16); err != nil {
		return err
	}
	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func detailRow(r report.DailyAttendanceRecord) []any {
	var entry, exit string
	overnight := "No"
	if r.Shift != nil {
		entry, exit = r.Shift.Entry.String(), r.Shift.Exit.String()
		if r.Shift.Overnight {
			overnight = "Sí"
		}
	}

	marks := make([]string, 0, len(r.Marks))
	for _, m := range r.Marks {
		marks = append(marks, m.Format("2006-01-02 15:04:05"))
	}

	return []any{
		r.EmployeeCode,
		r.EmployeeName,
		r.Date.Format("2006-01-02"),
		r.Weekday.String(),
		r.Quincena.String(),
		entry,
		exit,
		overnight,
		strings.Join(marks, ", "),
		clock(r.EntryMark),
		clock(r.ExitMark),
		string(r.MarkStatus),
		utils.FormatHMS(r.Worked),
		utils.FormatHMS(r.ExpectedGross),
		utils.FormatHMS(r.LeaveDeduction),
		utils.FormatHMS(r.ExpectedNet),
		utils.FormatHMS(r.Break),
		utils.FormatHMS(r.NetWorked()),
		r.LeaveType,
		utils.FormatHMS(r.Lateness),
		string(r.Incident),
		yesNo(r.EarlyDeparture),
	}
}

func summaryRow(s report.EmployeeSummary) []any {
	return []any{
		s.EmployeeCode,
		s.EmployeeName,
		s.Branch,
		s.Days,
		s.WorkingDays,
		utils.FormatHMS(s.Worked),
		utils.FormatHMS(s.ExpectedGross),
		utils.FormatHMS(s.LeaveDeduction),
		utils.FormatHMS(s.ExpectedNet),
		utils.FormatHMS(s.Break),
		utils.FormatSignedHMS(s.Variance),
		s.AbsenceCount,
		s.JustifiedAbsenceCount,
		s.TardyCount,
		s.ForgivenCount,
		s.EarlyDepartureCount,
		s.Episodes,
		s.Efficiency,
		s.Punctuality,
		s.SIC,
		report.SICBand(s.SIC),
		s.Absenteeism,
		s.Bradford,
		report.BradfordBand(float64(s.Bradford)),
		s.Note,
	}
}

func branchRow(b report.BranchSummary) []any {
	return []any{
		b.Branch,
		b.EmployeeCount,
		b.AvgEfficiency,
		b.AvgPunctuality,
		b.AvgSIC,
		report.SICBand(b.AvgSIC),
		b.AvgBradford,
		report.BradfordBand(b.AvgBradford),
		b.AbsenceCount,
		b.JustifiedAbsenceCount,
	}
}

func clock(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("15:04:05")
}

func yesNo(b bool) string {
	if b {
		return "Sí"
	}
	return "No"
}
