package csvparser

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/text/encoding/charmap"

	"github.com/ginjaninja78/paxml-exporter/internal/schedule"
	"github.com/ginjaninja78/paxml-exporter/internal/types"
)

func TestParseSemicolonWithBOM(t *testing.T) {
	data := "\ufeffAnstid;Personnummer;Namn\nE001;19850512-1234; Anna \n;;\nE002;19900101-1234;Erik\n"

	table, err := ParseReader(strings.NewReader(data), "employees.csv", Settings{Delimiter: ";"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if table.Headers[0] != "Anstid" {
		t.Fatalf("BOM not stripped from %q", table.Headers[0])
	}
	if len(table.Rows) != 2 || table.Lines[1] != 4 {
		t.Fatalf("expected two rows with line numbers, got %+v / %v", table.Rows, table.Lines)
	}

	employees, err := table.Employees()
	if err != nil {
		t.Fatalf("employees: %v", err)
	}
	if employees[0].ID != "E001" || employees[0].Name != "Anna" || employees[1].PersonalNumber != "19900101-1234" {
		t.Fatalf("unexpected employees %+v", employees)
	}
}

func TestParseWindows1252(t *testing.T) {
	encoded, err := charmap.Windows1252.NewEncoder().String("anstid,datum,från,till,tidkod\nE001,2024-05-10,08:00,12:00,SJK\n")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	table, err := ParseReader(bytes.NewReader([]byte(encoded)), "deviations.csv", Settings{Encoding: "windows-1252"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	deviations, err := table.Deviations()
	if err != nil {
		t.Fatalf("deviations: %v", err)
	}
	if len(deviations) != 1 || deviations[0].StartTime != "08:00" || deviations[0].Status != types.StatusDraft {
		t.Fatalf("unexpected deviations %+v", deviations)
	}
}

func TestParseMultiLineHeaders(t *testing.T) {
	data := "Anst,Datum,Rast,Rast\nid,,start,slut\nE001,2024-05-10,12:00,12:30\n"

	table, err := ParseReader(strings.NewReader(data), "schedules.csv", Settings{HeaderRows: 2})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := []string{"Anst id", "Datum", "Rast start", "Rast slut"}
	for i, header := range want {
		if table.Headers[i] != header {
			t.Fatalf("header %d: expected %q, got %q", i, header, table.Headers[i])
		}
	}
	entries, err := table.Schedules(schedule.DefaultPolicy())
	if err != nil {
		t.Fatalf("schedules: %v", err)
	}
	if entries[0].EmployeeID != "E001" || entries[0].BreakStart != "12:00" || entries[0].BreakEnd != "12:30" {
		t.Fatalf("unexpected entry %+v", entries[0])
	}
}

func TestParseFileAndErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Parse(path, DefaultSettings()); err == nil {
		t.Fatalf("expected an error for an empty file")
	}
	if _, err := Parse(filepath.Join(t.TempDir(), "missing.csv"), DefaultSettings()); err == nil {
		t.Fatalf("expected an error for a missing file")
	}
	if _, err := ParseReader(strings.NewReader("a\n"), "x.csv", Settings{Encoding: "ebcdic"}); err == nil {
		t.Fatalf("expected an unsupported encoding error")
	}
}

func TestDeviationsMissingColumns(t *testing.T) {
	table, err := ParseReader(strings.NewReader("anstid,datum\nE001,2024-05-10\n"), "deviations.csv", DefaultSettings())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	_, err = table.Deviations()
	if err == nil || !strings.Contains(err.Error(), "startTime, endTime, timeCode") {
		t.Fatalf("expected missing column error, got %v", err)
	}
}

func TestDeviationsRejectUnknownStatus(t *testing.T) {
	data := "id,anstid,datum,start,slut,tidkod,status\n7,E001,2024-05-10,08:00,12:00,300,archived\n"
	table, err := ParseReader(strings.NewReader(data), "deviations.csv", DefaultSettings())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	_, err = table.Deviations()
	if !errors.Is(err, types.ErrUnknownStatus) || !strings.Contains(err.Error(), "line 2") {
		t.Fatalf("expected ErrUnknownStatus on line 2, got %v", err)
	}
}

func TestLeavesScope(t *testing.T) {
	data := strings.Join([]string{
		"id,employee_id,start_date,end_date,leave_type,start,end,omfattning,status",
		"1,E001,2024-05-13,2024-05-17,vacation,,,,approved",
		"2,E001,2024-05-20,2024-05-20,vab,13:00,16:00,,approved",
		"3,E001,2024-05-21,2024-05-21,vab,13:00,16:00,heldag,Approved",
	}, "\n")
	table, err := ParseReader(strings.NewReader(data), "leaves.csv", DefaultSettings())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	leaves, err := table.Leaves()
	if err != nil {
		t.Fatalf("leaves: %v", err)
	}

	cases := []struct {
		scope types.LeaveScope
		start string
	}{
		{types.ScopeFullDay, ""},
		{types.ScopePartial, "13:00"},
		{types.ScopeFullDay, ""},
	}
	for i, tt := range cases {
		if leaves[i].Scope != tt.scope || leaves[i].StartTime != tt.start || leaves[i].Status != types.StatusApproved {
			t.Fatalf("leave %d: unexpected %+v", i, leaves[i])
		}
	}
}

func TestSchedulesEstimateFromHours(t *testing.T) {
	data := "anstid;datum;timmar\nE001;2024-05-10;8\nE001;2024-05-11;4,5\n"
	table, err := ParseReader(strings.NewReader(data), "schedules.csv", Settings{Delimiter: "semicolon"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	entries, err := table.Schedules(schedule.DefaultPolicy())
	if err != nil {
		t.Fatalf("schedules: %v", err)
	}

	full := types.ScheduleEntry{EmployeeID: "E001", Date: "2024-05-10", StartTime: "08:00", EndTime: "17:00", BreakStart: "12:00", BreakEnd: "13:00"}
	if entries[0] != full {
		t.Fatalf("expected %+v, got %+v", full, entries[0])
	}
	if entries[1].StartTime != "08:00" || entries[1].EndTime != "12:30" || entries[1].BreakStart != "" {
		t.Fatalf("unexpected short day %+v", entries[1])
	}

	bad, err := ParseReader(strings.NewReader("anstid;datum;timmar\nE001;2024-05-10;30\n"), "schedules.csv", Settings{Delimiter: ";"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if _, err := bad.Schedules(schedule.DefaultPolicy()); !errors.Is(err, schedule.ErrEstimation) {
		t.Fatalf("expected ErrEstimation, got %v", err)
	}
}

func TestFieldFor(t *testing.T) {
	cases := []struct {
		header string
		want   string
	}{
		{"Anstid", FieldEmployeeID},
		{"Employee-ID", FieldEmployeeID},
		{"ANST\u00c4LLNINGSNUMMER", FieldEmployeeID},
		{"Ansta\u0308llningsnummer", FieldEmployeeID},
		{"Personnummer", FieldPersonalNumber},
		{" Tid kod ", FieldTimeCode},
		{"unknown", ""},
	}
	for _, tt := range cases {
		if got := FieldFor(tt.header); got != tt.want {
			t.Fatalf("FieldFor(%q)=%q, want %q", tt.header, got, tt.want)
		}
	}
}
