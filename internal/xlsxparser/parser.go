// =============================================================================
// PAXML Exporter - XLSX Sheet Parser
// =============================================================================
//
// Planners often keep schedules and absence lists in Excel. This module reads
// one worksheet into the same csvparser.Table the CSV import produces, so the
// record decoders are shared.
//
// SHEET LAYOUT:
//   The first non-empty row holds the headers. Header names follow the same
//   aliases as CSV files (anstid, datum, starttid, sluttid, timmar, ...).
//
// CELL VALUES:
//   Cells are read raw. Date cells stored as Excel serial numbers are turned
//   into YYYY-MM-DD and time cells (fractions of a day) into HH:MM, so a sheet
//   formatted for Swedish or US display yields the same records.
//
// =============================================================================

package xlsxparser

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/paxml-exporter/internal/csvparser"
	"github.com/ginjaninja78/paxml-exporter/internal/types"
)

// Parse reads the first visible worksheet of an XLSX file.
func Parse(path string) (*csvparser.Table, error) {
	return ParseSheet(path, "")
}

// ParseSheet reads one worksheet.
//
// PARAMETERS:
//   - path: The path to the XLSX file.
//   - sheetName: The worksheet to read. Empty selects the first sheet whose
//     name does not start with "_".
//
// RETURNS:
//   - The parsed table. Lines are 1-based spreadsheet row numbers.
//   - An error if the file or sheet cannot be read or has no header row.
func ParseSheet(path, sheetName string) (*csvparser.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	if sheetName == "" {
		sheetName = firstSheet(f)
	}
	if sheetName == "" {
		return nil, fmt.Errorf("workbook %s has no sheets", path)
	}
	if index, err := f.GetSheetIndex(sheetName); err != nil || index < 0 {
		return nil, fmt.Errorf("workbook %s has no sheet %q", path, sheetName)
	}

	rows, err := f.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}

	headerIndex := -1
	for i, row := range rows {
		if !isRowEmpty(row) {
			headerIndex = i
			break
		}
	}
	if headerIndex < 0 {
		return nil, fmt.Errorf("sheet %q in %s is empty", sheetName, path)
	}

	headers := rows[headerIndex]
	data := rows[headerIndex+1:]
	for _, row := range data {
		for col := range row {
			if col < len(headers) {
				row[col] = convertCell(csvparser.FieldFor(headers[col]), row[col])
			}
		}
	}

	source := fmt.Sprintf("%s[%s]", path, sheetName)
	return csvparser.NewTable(source, headers, data, headerIndex+2), nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func firstSheet(f *excelize.File) string {
	for _, name := range f.GetSheetList() {
		if !strings.HasPrefix(name, "_") {
			return name
		}
	}
	return ""
}

// convertCell turns serial dates and day fractions into text for date and
// time fields. Text cells are returned unchanged.
func convertCell(field, value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return value
	}
	serial, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return value
	}

	switch field {
	case csvparser.FieldDate, csvparser.FieldStartDate, csvparser.FieldEndDate:
		if serial < 1 {
			return value
		}
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return value
		}
		return t.Format(types.DateLayout)
	case csvparser.FieldStartTime, csvparser.FieldEndTime, csvparser.FieldBreakStart, csvparser.FieldBreakEnd:
		if serial < 0 || serial >= 1 {
			return value
		}
		minutes := int(math.Round(serial * 24 * 60))
		return types.FormatClock(minutes)
	}
	return value
}

func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
