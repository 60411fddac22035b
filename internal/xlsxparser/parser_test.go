package xlsxparser

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/paxml-exporter/internal/schedule"
	"github.com/ginjaninja78/paxml-exporter/internal/types"
)

func writeWorkbook(t *testing.T) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", "_readme"); err != nil {
		t.Fatalf("rename sheet: %v", err)
	}
	if _, err := f.NewSheet("Schema"); err != nil {
		t.Fatalf("new sheet: %v", err)
	}

	cells := map[string]any{
		"A2": "Anstid", "B2": "Datum", "C2": "Starttid", "D2": "Sluttid", "E2": "Timmar",
		"A3": "E001", "B3": time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC), "C3": 0.34375, "D3": "16:30",
		"A4": "E002", "B4": "2024-05-11", "E4": 8,
	}
	for cell, value := range cells {
		if err := f.SetCellValue("Schema", cell, value); err != nil {
			t.Fatalf("set %s: %v", cell, err)
		}
	}

	path := filepath.Join(t.TempDir(), "schedules.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save workbook: %v", err)
	}
	return path
}

func TestParseSchedulesSheet(t *testing.T) {
	path := writeWorkbook(t)

	table, err := Parse(path)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(table.Rows) != 2 || table.Lines[0] != 3 {
		t.Fatalf("unexpected table %+v", table)
	}

	entries, err := table.Schedules(schedule.DefaultPolicy())
	if err != nil {
		t.Fatalf("schedules: %v", err)
	}
	want := []types.ScheduleEntry{
		{EmployeeID: "E001", Date: "2024-05-10", StartTime: "08:15", EndTime: "16:30"},
		{EmployeeID: "E002", Date: "2024-05-11", StartTime: "08:00", EndTime: "17:00", BreakStart: "12:00", BreakEnd: "13:00"},
	}
	for i := range want {
		if entries[i] != want[i] {
			t.Fatalf("entry %d: expected %+v, got %+v", i, want[i], entries[i])
		}
	}
}

func TestParseSheetErrors(t *testing.T) {
	path := writeWorkbook(t)

	if _, err := ParseSheet(path, "Missing"); err == nil {
		t.Fatalf("expected an error for a missing sheet")
	}
	if _, err := ParseSheet(path, "_readme"); err == nil {
		t.Fatalf("expected an error for an empty sheet")
	}
	if _, err := Parse(filepath.Join(t.TempDir(), "missing.xlsx")); err == nil {
		t.Fatalf("expected an error for a missing file")
	}
}

func TestConvertCell(t *testing.T) {
	cases := []struct {
		field string
		value string
		want  string
	}{
		{"date", "45422", "2024-05-10"},
		{"date", "2024-05-10", "2024-05-10"},
		{"startTime", "0.5", "12:00"},
		{"breakEnd", "0.5208333333", "12:30"},
		{"startTime", "08:00", "08:00"},
		{"hours", "7.5", "7.5"},
		{"employeeId", "1001", "1001"},
	}
	for _, tt := range cases {
		if got := convertCell(tt.field, tt.value); got != tt.want {
			t.Fatalf("convertCell(%q, %q)=%q, want %q", tt.field, tt.value, got, tt.want)
		}
	}
}
