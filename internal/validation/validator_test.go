package validation

import (
	"strings"
	"testing"

	"github.com/ginjaninja78/paxml-exporter/internal/types"
)

func validTransaction() types.Transaction {
	return types.Transaction{
		Sequence:       1,
		SourceID:       "deviation:1",
		EmployeeID:     "E001",
		PersonalNumber: "198505121234",
		Date:           "2024-05-10",
		TimeCode:       "SJK",
		Hours:          8,
	}
}

func TestValidateRules(t *testing.T) {
	v := NewValidator(nil)

	cases := []struct {
		name   string
		mutate func(*types.Transaction)
		code   string
	}{
		{"valid", func(*types.Transaction) {}, ""},
		{"missing employee", func(tx *types.Transaction) { tx.EmployeeID = "" }, types.CodeMissingEmployeeID},
		{"missing personal number", func(tx *types.Transaction) { tx.PersonalNumber = "" }, types.CodeMissingPersonalNumber},
		{"short personal number", func(tx *types.Transaction) { tx.PersonalNumber = "8505121234" }, types.CodeInvalidPersonalNumber},
		{"dashed personal number", func(tx *types.Transaction) { tx.PersonalNumber = "19850512-123" }, types.CodeInvalidPersonalNumber},
		{"missing date", func(tx *types.Transaction) { tx.Date = "" }, types.CodeInvalidDate},
		{"bad date format", func(tx *types.Transaction) { tx.Date = "10/05/2024" }, types.CodeInvalidDate},
		{"impossible date", func(tx *types.Transaction) { tx.Date = "2024-02-30" }, types.CodeInvalidDate},
		{"missing code", func(tx *types.Transaction) { tx.TimeCode = "" }, types.CodeMissingTimeCode},
		{"unknown code", func(tx *types.Transaction) { tx.TimeCode = "ZZZ" }, types.CodeUnknownTimeCode},
		{"unmapped numeric code", func(tx *types.Transaction) { tx.TimeCode = "999" }, types.CodeUnknownTimeCode},
		{"numeric overtime tier", func(tx *types.Transaction) { tx.TimeCode = "413" }, ""},
		{"zero hours", func(tx *types.Transaction) { tx.Hours = 0 }, types.CodeNonPositiveHours},
		{"negative hours", func(tx *types.Transaction) { tx.Hours = -1.5 }, types.CodeNonPositiveHours},
		{"comment with line breaks", func(tx *types.Transaction) { tx.Comment = "sjuk\r\n\themma" }, ""},
		{"comment with control characters", func(tx *types.Transaction) { tx.Comment = "sjuk\x01\x0bhemma" }, types.CodeIllegalCharacters},
		{"comment not utf-8", func(tx *types.Transaction) { tx.Comment = "caf\xe9" }, types.CodeIllegalCharacters},
		{"employee id with nul", func(tx *types.Transaction) { tx.EmployeeID = "E0\x0001" }, types.CodeIllegalCharacters},
	}

	for _, tt := range cases {
		tx := validTransaction()
		tt.mutate(&tx)
		issues := v.Validate([]types.Transaction{tx})

		if tt.code == "" {
			if len(issues) != 0 {
				t.Fatalf("%s: expected no issues, got %+v", tt.name, issues)
			}
			continue
		}
		if len(issues) != 1 {
			t.Fatalf("%s: expected exactly one issue, got %+v", tt.name, issues)
		}
		if issues[0].Code != tt.code || issues[0].Severity != types.SeverityError {
			t.Fatalf("%s: expected %s error, got %+v", tt.name, tt.code, issues[0])
		}
	}
}

func TestValidateMessagesCarryIndex(t *testing.T) {
	v := NewValidator(nil)
	good := validTransaction()
	bad := validTransaction()
	bad.SourceID = "deviation:9"
	bad.Hours = 0

	issues := v.Validate([]types.Transaction{good, bad})
	if len(issues) != 1 {
		t.Fatalf("expected one issue, got %+v", issues)
	}
	if !strings.HasPrefix(issues[0].Message, "transaction 1 (deviation:9):") {
		t.Fatalf("expected index in message, got %q", issues[0].Message)
	}
	if issues[0].RecordID != "deviation:9" || issues[0].EmployeeID != "E001" {
		t.Fatalf("expected back-references, got %+v", issues[0])
	}
}

func TestValidateSchedules(t *testing.T) {
	v := NewValidator(nil)
	schedules := []types.ScheduleTransaction{
		{
			EmployeeID:     "E001",
			PersonalNumber: "198505121234",
			Days: []types.ScheduleDay{
				{Date: "2024-05-10", StartTime: "08:00", EndTime: "16:30", Hours: 8},
				{Date: "2024-05-11", Hours: 0},
				{Date: "2024-5-12", StartTime: "08:00", EndTime: "12:00", Hours: 4},
			},
		},
		{EmployeeID: "E002", PersonalNumber: "123"},
	}

	issues := v.ValidateSchedules(schedules)

	var warnings, errs int
	codes := map[string]bool{}
	for _, issue := range issues {
		codes[issue.Code] = true
		if issue.Severity == types.SeverityWarning {
			warnings++
		} else {
			errs++
		}
	}
	if warnings != 1 || !codes[types.CodeEmptyScheduleDay] {
		t.Fatalf("expected one empty day warning, got %+v", issues)
	}
	if errs != 2 || !codes[types.CodeInvalidDate] || !codes[types.CodeInvalidPersonalNumber] {
		t.Fatalf("expected date and personal number errors, got %+v", issues)
	}
}

func TestSummarize(t *testing.T) {
	cases := []struct {
		name   string
		issues []types.ValidationIssue
		total  int
		want   Result
	}{
		{
			name:  "clean",
			total: 2,
			want:  Result{IsValid: true, TotalRecords: 2},
		},
		{
			name:  "empty set is not valid",
			total: 0,
			want:  Result{IsValid: false},
		},
		{
			name:   "info only",
			issues: []types.ValidationIssue{{Severity: types.SeverityInfo}},
			total:  1,
			want:   Result{IsValid: true, TotalRecords: 1, InfoCount: 1},
		},
		{
			name: "error and warning",
			issues: []types.ValidationIssue{
				{Severity: types.SeverityError},
				{Severity: types.SeverityWarning},
			},
			total: 3,
			want:  Result{HasErrors: true, HasWarnings: true, TotalRecords: 3, ErrorCount: 1, WarningCount: 1},
		},
	}

	for _, tt := range cases {
		if got := Summarize(tt.issues, tt.total); got != tt.want {
			t.Fatalf("%s: expected %+v, got %+v", tt.name, tt.want, got)
		}
	}
}

func TestDetailsOnlyBlocking(t *testing.T) {
	details := Details([]types.ValidationIssue{
		{Severity: types.SeverityError, Message: "first"},
		{Severity: types.SeverityInfo, Message: "skipped"},
		{Severity: types.SeverityError, Message: "second"},
	})
	if len(details) != 2 || details[0] != "first" || details[1] != "second" {
		t.Fatalf("unexpected details %v", details)
	}
}
