// =============================================================================
// PAXML Exporter - CSV Parser Module
// =============================================================================
//
// This module reads the CSV files handed over by the personnel and time
// reporting systems. It handles:
//   - Different delimiters (comma, semicolon, pipe, tab)
//   - Multi-line headers
//   - Custom data start rows
//   - UTF-8 with or without BOM, UTF-16 and the Windows-1252/Latin-1 files
//     older Swedish systems still produce
//
// Parsed rows are keyed by the cleaned header text. records.go turns them into
// employees, deviations, leave requests and schedule entries.
//
// =============================================================================

package csvparser

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// =============================================================================
// SETTINGS
// =============================================================================

// Settings controls how a file is read.
type Settings struct {
	// Delimiter is a single character or one of "tab", "pipe", "semicolon".
	// Empty means comma.
	Delimiter string

	// HeaderRows is the number of header lines. Values below 1 mean 1.
	HeaderRows int

	// DataStartRow is the 1-based line of the first data row. Zero means the
	// line after the headers.
	DataStartRow int

	// Encoding is "utf-8" (default), "utf-16", "windows-1252" or "iso-8859-1".
	Encoding string
}

// DefaultSettings returns comma-separated UTF-8 with one header line.
func DefaultSettings() Settings {
	return Settings{Delimiter: ",", HeaderRows: 1, Encoding: "utf-8"}
}

func (s Settings) withDefaults() Settings {
	if s.HeaderRows < 1 {
		s.HeaderRows = 1
	}
	if s.DataStartRow <= 0 {
		s.DataStartRow = s.HeaderRows + 1
	}
	return s
}

// =============================================================================
// TABLE STRUCTURE
// =============================================================================

// Table is a parsed sheet of records.
type Table struct {
	// Headers are the cleaned column headers.
	Headers []string

	// Rows maps header -> trimmed cell value.
	Rows []map[string]string

	// Lines holds the 1-based source line of each row, for error messages.
	Lines []int

	Source string
}

// NewTable builds a table from a header row and data rows. firstLine is the
// source line number of rows[0].
func NewTable(source string, headers []string, rows [][]string, firstLine int) *Table {
	table := &Table{Headers: cleanHeaders(headers), Source: source}
	for i, row := range rows {
		if isRowEmpty(row) {
			continue
		}
		record := make(map[string]string, len(table.Headers))
		for col, header := range table.Headers {
			if col < len(row) {
				record[header] = strings.TrimSpace(row[col])
			} else {
				record[header] = ""
			}
		}
		table.Rows = append(table.Rows, record)
		table.Lines = append(table.Lines, firstLine+i)
	}
	return table
}

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// Parse reads a CSV file.
//
// PARAMETERS:
//   - filePath: The path to the CSV file.
//   - settings: Delimiter, header and encoding settings.
//
// RETURNS:
//   - The parsed table.
//   - An error if the file cannot be read, is empty, or has no header.
func Parse(filePath string, settings Settings) (*Table, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return ParseReader(file, filePath, settings)
}

// ParseReader reads CSV data from r. source names the input in errors.
func ParseReader(r io.Reader, source string, settings Settings) (*Table, error) {
	settings = settings.withDefaults()

	decoder, err := decoderFor(settings.Encoding)
	if err != nil {
		return nil, err
	}
	csvReader := csv.NewReader(bufio.NewReader(transform.NewReader(r, decoder)))
	configureReader(csvReader, settings)

	allRows, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV %s: %w", source, err)
	}
	if len(allRows) == 0 {
		return nil, fmt.Errorf("CSV file %s is empty", source)
	}

	headers, err := extractHeaders(allRows, settings)
	if err != nil {
		return nil, fmt.Errorf("failed to extract headers from %s: %w", source, err)
	}

	start := settings.DataStartRow - 1
	if start > len(allRows) {
		start = len(allRows)
	}
	return NewTable(source, headers, allRows[start:], start+1), nil
}

// decoderFor returns a decoder that also strips a leading byte order mark.
func decoderFor(name string) (transform.Transformer, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8":
		return unicode.BOMOverride(unicode.UTF8.NewDecoder()), nil
	case "utf-16", "utf16":
		return unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder(), nil
	case "windows-1252", "cp1252":
		return charmap.Windows1252.NewDecoder(), nil
	case "iso-8859-1", "latin1", "latin-1":
		return charmap.ISO8859_1.NewDecoder(), nil
	}
	return nil, fmt.Errorf("unsupported encoding %q", name)
}

// configureReader applies the delimiter and leniency settings.
func configureReader(reader *csv.Reader, settings Settings) {
	switch settings.Delimiter {
	case "\\t", "\t", "tab", "TAB":
		reader.Comma = '\t'
	case "|", "pipe", "PIPE":
		reader.Comma = '|'
	case ";", "semicolon":
		reader.Comma = ';'
	default:
		if len(settings.Delimiter) > 0 {
			reader.Comma = rune(settings.Delimiter[0])
		} else {
			reader.Comma = ','
		}
	}

	// Exports from spreadsheets are not always rectangular.
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
}

// extractHeaders merges multi-line headers column by column.
//
// Example:
//
//	Row 1: "Rast", ""
//	Row 2: "Start", "Slut"
//	Result: "Rast Start", "Slut"
func extractHeaders(allRows [][]string, settings Settings) ([]string, error) {
	if len(allRows) < settings.HeaderRows {
		return nil, fmt.Errorf("file has fewer rows than header_rows setting")
	}
	if settings.HeaderRows == 1 {
		return allRows[0], nil
	}

	maxCols := 0
	for i := 0; i < settings.HeaderRows; i++ {
		if len(allRows[i]) > maxCols {
			maxCols = len(allRows[i])
		}
	}

	headers := make([]string, maxCols)
	for col := 0; col < maxCols; col++ {
		var parts []string
		for row := 0; row < settings.HeaderRows; row++ {
			if col < len(allRows[row]) {
				if value := strings.TrimSpace(allRows[row][col]); value != "" {
					parts = append(parts, value)
				}
			}
		}
		headers[col] = strings.Join(parts, " ")
	}
	return headers, nil
}

// cleanHeaders trims, NFC-normalises and names empty headers by position.
func cleanHeaders(headers []string) []string {
	cleaned := make([]string, len(headers))
	for i, header := range headers {
		header = norm.NFC.String(strings.TrimSpace(header))
		if header == "" {
			header = fmt.Sprintf("Column_%d", i+1)
		}
		cleaned[i] = header
	}
	return cleaned
}

// isRowEmpty checks if a row contains only empty values.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
