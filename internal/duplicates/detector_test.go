package duplicates

import (
	"strings"
	"testing"

	"github.com/ginjaninja78/paxml-exporter/internal/types"
)

func sickDay(id uint, start, end string) types.Deviation {
	return types.Deviation{
		ID:         id,
		EmployeeID: "E001",
		Date:       "2024-05-10",
		StartTime:  start,
		EndTime:    end,
		TimeCode:   "300",
		Status:     types.StatusApproved,
	}
}

func TestDeviationsReportsOneIssuePerSurplus(t *testing.T) {
	cases := []struct {
		name  string
		input []types.Deviation
		want  int
	}{
		{"pair", []types.Deviation{sickDay(1, "08:00:00", "16:00:00"), sickDay(2, "08:00:00", "16:00:00")}, 1},
		{"seconds ignored", []types.Deviation{sickDay(1, "08:00", "16:00"), sickDay(2, "08:00:00", "16:00:00")}, 1},
		{"triple", []types.Deviation{sickDay(1, "08:00", "16:00"), sickDay(2, "08:00", "16:00"), sickDay(3, "08:00", "16:00")}, 2},
		{"different window", []types.Deviation{sickDay(1, "08:00", "12:00"), sickDay(2, "13:00", "16:00")}, 0},
		{"single", []types.Deviation{sickDay(1, "08:00", "16:00")}, 0},
		{"empty", nil, 0},
	}

	for _, tt := range cases {
		issues := Deviations(tt.input)
		if len(issues) != tt.want {
			t.Fatalf("%s: expected %d issues, got %+v", tt.name, tt.want, issues)
		}
		for _, issue := range issues {
			if issue.Severity != types.SeverityError || issue.Code != types.CodeDuplicateTransaction {
				t.Fatalf("%s: unexpected issue %+v", tt.name, issue)
			}
			if issue.EmployeeID != "E001" {
				t.Fatalf("%s: expected employee on issue, got %+v", tt.name, issue)
			}
		}
	}
}

func TestDeviationsIsOrderIndependent(t *testing.T) {
	forward := Deviations([]types.Deviation{sickDay(7, "08:00", "16:00"), sickDay(3, "08:00", "16:00")})
	backward := Deviations([]types.Deviation{sickDay(3, "08:00", "16:00"), sickDay(7, "08:00", "16:00")})

	if len(forward) != 1 || len(backward) != 1 {
		t.Fatalf("expected one issue each, got %+v / %+v", forward, backward)
	}
	if forward[0] != backward[0] {
		t.Fatalf("expected identical issues, got %+v / %+v", forward[0], backward[0])
	}
	if forward[0].RecordID != "deviation:7" {
		t.Fatalf("expected the higher id to be flagged, got %s", forward[0].RecordID)
	}
}

func TestLeavesClusterOverlappingRanges(t *testing.T) {
	leaves := []types.LeaveRequest{
		{ID: 4, EmployeeID: "E001", LeaveType: "vacation", StartDate: "2024-05-06", EndDate: "2024-05-10"},
		{ID: 2, EmployeeID: "E001", LeaveType: "vacation", StartDate: "2024-05-08", EndDate: "2024-05-14"},
		{ID: 9, EmployeeID: "E001", LeaveType: "vacation", StartDate: "2024-05-20", EndDate: "2024-05-21"},
		{ID: 5, EmployeeID: "E001", LeaveType: "sick", StartDate: "2024-05-08", EndDate: "2024-05-08"},
		{ID: 6, EmployeeID: "E002", LeaveType: "vacation", StartDate: "2024-05-06", EndDate: "2024-05-10"},
	}

	issues := Leaves(leaves)
	if len(issues) != 1 {
		t.Fatalf("expected one overlap issue, got %+v", issues)
	}
	if issues[0].RecordID != "leave:4" {
		t.Fatalf("expected leave 4 flagged (leave 2 kept), got %s", issues[0].RecordID)
	}
}

func TestLeavesTouchingDatesOverlap(t *testing.T) {
	leaves := []types.LeaveRequest{
		{ID: 1, EmployeeID: "E001", LeaveType: "vacation", StartDate: "2024-05-06", EndDate: "2024-05-08"},
		{ID: 2, EmployeeID: "E001", LeaveType: "vacation", StartDate: "2024-05-08", EndDate: "2024-05-09"},
		{ID: 3, EmployeeID: "E001", LeaveType: "vacation", StartDate: "2024-05-10", EndDate: "2024-05-10"},
	}
	if issues := Leaves(leaves); len(issues) != 1 {
		t.Fatalf("expected one issue for the shared day, got %+v", issues)
	}
}

func TestKeep(t *testing.T) {
	deviations := []types.Deviation{
		sickDay(5, "08:00", "16:00"),
		sickDay(2, "08:00", "16:00"),
		sickDay(3, "09:00", "16:00"),
	}
	leaves := []types.LeaveRequest{
		{ID: 1, EmployeeID: "E001", LeaveType: "vacation", StartDate: "2024-05-06", EndDate: "2024-05-10"},
		{ID: 8, EmployeeID: "E001", LeaveType: "vacation", StartDate: "2024-05-07", EndDate: "2024-05-07"},
	}

	keptDeviations, keptLeaves := Keep(deviations, leaves)
	if len(keptDeviations) != 2 || keptDeviations[0].ID != 2 || keptDeviations[1].ID != 3 {
		t.Fatalf("unexpected kept deviations %+v", keptDeviations)
	}
	if len(keptLeaves) != 1 || keptLeaves[0].ID != 1 {
		t.Fatalf("unexpected kept leaves %+v", keptLeaves)
	}
}

func TestDetectCombines(t *testing.T) {
	issues := Detect(
		[]types.Deviation{sickDay(1, "08:00", "16:00"), sickDay(2, "08:00", "16:00")},
		[]types.LeaveRequest{
			{ID: 1, EmployeeID: "E001", LeaveType: "vab", StartDate: "2024-05-06", EndDate: "2024-05-06"},
			{ID: 2, EmployeeID: "E001", LeaveType: "VAB", StartDate: "2024-05-06", EndDate: "2024-05-06"},
		},
	)
	if len(issues) != 2 {
		t.Fatalf("expected 2 issues, got %+v", issues)
	}
}

func TestDetectorComparesMappedLeaveCodes(t *testing.T) {
	wire := map[string]string{"vacation": "SEM", "100": "SEM", "sick": "SJK"}
	detector := NewDetector(func(leaveType string) string {
		if code, ok := wire[strings.ToLower(leaveType)]; ok {
			return code
		}
		return leaveType
	})
	leaves := []types.LeaveRequest{
		{ID: 1, EmployeeID: "E001", LeaveType: "vacation", StartDate: "2024-05-06", EndDate: "2024-05-10"},
		{ID: 2, EmployeeID: "E001", LeaveType: "100", StartDate: "2024-05-09", EndDate: "2024-05-09"},
		{ID: 3, EmployeeID: "E001", LeaveType: "sick", StartDate: "2024-05-09", EndDate: "2024-05-09"},
	}

	issues := detector.Leaves(leaves)
	if len(issues) != 1 || issues[0].RecordID != "leave:2" {
		t.Fatalf("expected leave 2 flagged against leave 1, got %+v", issues)
	}
	if plainIssues := Leaves(leaves); len(plainIssues) != 0 {
		t.Fatalf("raw leave types differ, got %+v", plainIssues)
	}
	_, kept := detector.Keep(nil, leaves)
	if len(kept) != 2 || kept[0].ID != 1 || kept[1].ID != 3 {
		t.Fatalf("unexpected kept leaves %+v", kept)
	}
}
