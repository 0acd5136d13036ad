package spreadsheet

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"

	"github.com/cmlabs-hris/attendance-recon/internal/domain/checkin"
)

var (
	ErrEmptyWorksheet  = errors.New("worksheet is empty")
	ErrNoWorksheet     = errors.New("no worksheet found")
	ErrMissingColumn   = errors.New("required column not found")
	ErrUnsupportedFile = errors.New("unsupported spreadsheet format")
)

const maxXLSRows = 500000

// ReadRows returns the cells of the first worksheet. The format is taken
// from the file extension: .xls goes through the BIFF reader, .xlsx and
// .xlsm through excelize.
func ReadRows(r io.Reader, filename string) ([][]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read spreadsheet: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".xls":
		workbook, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
		if err != nil {
			return nil, fmt.Errorf("failed to open xls: %w", err)
		}
		if workbook.NumSheets() == 0 {
			return nil, ErrNoWorksheet
		}
		rows := workbook.ReadAllCells(maxXLSRows)
		if len(rows) == 0 {
			return nil, ErrEmptyWorksheet
		}
		return rows, nil
	case ".xlsx", ".xlsm":
		file, err := excelize.OpenReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("failed to open xlsx: %w", err)
		}
		defer func() { _ = file.Close() }()

		sheet := file.GetSheetName(0)
		if sheet == "" {
			return nil, ErrNoWorksheet
		}
		rows, err := file.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("failed to read rows: %w", err)
		}
		if len(rows) == 0 {
			return nil, ErrEmptyWorksheet
		}
		return rows, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFile, ext)
	}
}

var headerAliases = map[string][]string{
	"code":   {"employee", "employee_code", "codigo", "código", "empleado", "no. empleado", "id"},
	"name":   {"employee_name", "name", "nombre", "nombre empleado"},
	"time":   {"time", "datetime", "timestamp", "fecha y hora", "fecha_hora", "checada"},
	"date":   {"date", "fecha"},
	"clock":  {"hour", "hora"},
	"device": {"device_id", "device", "terminal", "dispositivo", "reloj", "sucursal"},
}

type columns struct {
	code, name, time, date, clock, device int
}

func detectColumns(header []string) (columns, error) {
	cols := columns{code: -1, name: -1, time: -1, date: -1, clock: -1, device: -1}
	targets := map[string]*int{
		"code": &cols.code, "name": &cols.name, "time": &cols.time,
		"date": &cols.date, "clock": &cols.clock, "device": &cols.device,
	}
	for i, h := range header {
		h = normalizeHeader(h)
		for key, aliases := range headerAliases {
			if *targets[key] >= 0 {
				continue
			}
			for _, a := range aliases {
				if h == a {
					*targets[key] = i
				}
			}
		}
	}

	if cols.code < 0 {
		return cols, fmt.Errorf("%w: employee", ErrMissingColumn)
	}
	if cols.time < 0 && (cols.date < 0 || cols.clock < 0) {
		return cols, fmt.Errorf("%w: time (or date and hour)", ErrMissingColumn)
	}
	return cols, nil
}

// ReadCheckIns parses a terminal export. The first row is the header; rows
// that cannot be read are counted in skipped rather than failing the file.
func ReadCheckIns(r io.Reader, filename string, loc *time.Location) (records []checkin.CheckIn, skipped int, err error) {
	rows, err := ReadRows(r, filename)
	if err != nil {
		return nil, 0, err
	}
	cols, err := detectColumns(rows[0])
	if err != nil {
		return nil, 0, err
	}
	if loc == nil {
		loc = time.Local
	}

	for _, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		code := cellValue(row, cols.code)
		ts, ok := rowTime(row, cols, loc)
		if code == "" || !ok {
			skipped++
			continue
		}
		records = append(records, checkin.CheckIn{
			EmployeeCode: code,
			EmployeeName: cellValue(row, cols.name),
			Time:         ts,
			DeviceID:     cellValue(row, cols.device),
		})
	}
	return checkin.Dedupe(records), skipped, nil
}

func rowTime(row []string, cols columns, loc *time.Location) (time.Time, bool) {
	if cols.time >= 0 {
		if ts, ok := parseDateTime(cellValue(row, cols.time), loc); ok {
			return ts, true
		}
	}
	if cols.date >= 0 && cols.clock >= 0 {
		return parseDateTime(cellValue(row, cols.date)+" "+cellValue(row, cols.clock), loc)
	}
	return time.Time{}, false
}

var dateTimeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"2/1/2006 15:04:05",
	"2/1/2006 15:04",
	"01-02-06 15:04",
}

func parseDateTime(value string, loc *time.Location) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}

	// Excel serial date-times, as produced by numeric cells.
	if serial, err := strconv.ParseFloat(value, 64); err == nil && serial > 20000 && serial < 80000 {
		if t, err := excelize.ExcelDateToTime(serial, false); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, loc), true
		}
	}

	for _, layout := range dateTimeLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func normalizeHeader(header string) string {
	return strings.ToLower(strings.TrimSpace(header))
}

func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
