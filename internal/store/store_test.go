package store

import (
	"errors"
	"testing"

	"github.com/ginjaninja78/paxml-exporter/internal/types"
)

func TestFiltersMatchRange(t *testing.T) {
	window := Filters{StartDate: "2024-05-01", EndDate: "2024-05-31"}
	cases := []struct {
		name  string
		start string
		end   string
		want  bool
	}{
		{"inside", "2024-05-10", "2024-05-10", true},
		{"overlaps start", "2024-04-28", "2024-05-02", true},
		{"overlaps end", "2024-05-30", "2024-06-02", true},
		{"spans window", "2024-04-01", "2024-06-30", true},
		{"before", "2024-04-01", "2024-04-30", false},
		{"after", "2024-06-01", "2024-06-01", false},
		{"unparseable kept", "10/05/2024", "10/05/2024", true},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			if got := window.MatchRange(tt.start, tt.end); got != tt.want {
				t.Fatalf("MatchRange(%q, %q)=%v, want %v", tt.start, tt.end, got, tt.want)
			}
		})
	}

	if !(Filters{}).MatchDate("2030-01-01") {
		t.Fatalf("empty filters must match everything")
	}
}

func TestFiltersMatchEmployee(t *testing.T) {
	if !(Filters{EmployeeIDs: []string{" ", ""}}).MatchEmployee("E001") {
		t.Fatalf("blank allow-list must not restrict")
	}
	f := Filters{EmployeeIDs: []string{" E001 "}}
	if !f.MatchEmployee("E001") || f.MatchEmployee("E002") {
		t.Fatalf("unexpected employee matching")
	}
	if got := f.EmployeeList(); len(got) != 1 || got[0] != "E001" {
		t.Fatalf("unexpected list %v", got)
	}
}

func TestCheckStatus(t *testing.T) {
	if status, err := CheckStatus(types.KindDeviation, ""); err != nil || status != types.StatusDraft {
		t.Fatalf("empty status: %s, %v", status, err)
	}
	if _, err := CheckStatus(types.KindDeviation, types.StatusPaused); !errors.Is(err, types.ErrUnknownStatus) {
		t.Fatalf("paused deviation: %v", err)
	}
	if status, err := CheckStatus(types.KindLeave, "PAUSED"); err != nil || status != types.StatusPaused {
		t.Fatalf("paused leave: %s, %v", status, err)
	}
}
