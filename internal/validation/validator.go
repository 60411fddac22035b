// =============================================================================
// PAXML Exporter - Validation Engine
// =============================================================================
//
// This module runs the fixed rule battery over built transactions and turns
// every problem into a ValidationIssue. It never fails: a malformed record is
// data, not an error.
//
// TRANSACTION RULES (all errors):
//   - missing employee id
//   - missing personal number
//   - personal number not exactly 12 digits
//   - date absent, not YYYY-MM-DD, or not a calendar date
//   - time code absent
//   - time code outside the wire allow-list
//   - hours <= 0
//   - employee id or comment not valid UTF-8, or holding characters XML 1.0
//     cannot carry (control characters other than tab, LF and CR)
//
// SCHEDULE RULES:
//   - the identity and date rules above (errors)
//   - a day with zero net hours (warning)
//
// Every message carries the record's index in the input so a reviewer can
// find it.
//
// =============================================================================

package validation

import (
	"fmt"
	"strings"

	"github.com/ginjaninja78/paxml-exporter/internal/config"
	"github.com/ginjaninja78/paxml-exporter/internal/types"
	"github.com/ginjaninja78/paxml-exporter/internal/xmlwriter"
)

// PersonalNumberLength is the digit count accepted on the wire (YYYYMMDDNNNN).
const PersonalNumberLength = 12

// =============================================================================
// VALIDATION RESULT
// =============================================================================

// Result is the aggregate view of an issue list.
type Result struct {
	// HasErrors is the export gate: any error blocks the export.
	HasErrors bool `json:"hasErrors"`

	HasWarnings bool `json:"hasWarnings"`

	// IsValid is true when there are no errors and at least one record.
	IsValid bool `json:"isValid"`

	TotalRecords int `json:"totalRecords"`
	ErrorCount   int `json:"errorCount"`
	WarningCount int `json:"warningCount"`
	InfoCount    int `json:"infoCount"`
}

// Summarize aggregates issues for totalRecords records.
func Summarize(issues []types.ValidationIssue, totalRecords int) Result {
	result := Result{TotalRecords: totalRecords}
	for _, issue := range issues {
		switch issue.Severity {
		case types.SeverityError:
			result.ErrorCount++
		case types.SeverityWarning:
			result.WarningCount++
		case types.SeverityInfo:
			result.InfoCount++
		}
	}
	result.HasErrors = result.ErrorCount > 0
	result.HasWarnings = result.WarningCount > 0
	result.IsValid = !result.HasErrors && totalRecords > 0
	return result
}

// =============================================================================
// VALIDATOR
// =============================================================================

// Validator checks transactions against a vocabulary.
type Validator struct {
	vocabulary *config.Vocabulary
}

// NewValidator returns a validator over vocabulary. A nil vocabulary selects
// the built-in one.
func NewValidator(vocabulary *config.Vocabulary) *Validator {
	if vocabulary == nil {
		vocabulary = config.DefaultVocabulary()
	}
	return &Validator{vocabulary: vocabulary}
}

// Validate checks every transaction independently.
//
// PARAMETERS:
//   - transactions: The built transactions.
//
// RETURNS:
//   - The issues in input order, rules in the order listed above.
func (v *Validator) Validate(transactions []types.Transaction) []types.ValidationIssue {
	var issues []types.ValidationIssue
	for i, transaction := range transactions {
		subject := fmt.Sprintf("transaction %d", i)
		if transaction.SourceID != "" {
			subject = fmt.Sprintf("transaction %d (%s)", i, transaction.SourceID)
		}
		report := func(code, message string) {
			issues = append(issues, types.ValidationIssue{
				Severity:   types.SeverityError,
				Code:       code,
				Message:    subject + ": " + message,
				EmployeeID: transaction.EmployeeID,
				RecordID:   transaction.SourceID,
			})
		}

		checkIdentity(transaction.EmployeeID, transaction.PersonalNumber, report)
		checkDate(transaction.Date, report)

		code := strings.TrimSpace(transaction.TimeCode)
		switch {
		case code == "":
			report(types.CodeMissingTimeCode, "time code is missing")
		case !v.vocabulary.Allowed(code):
			report(types.CodeUnknownTimeCode, fmt.Sprintf("time code %q is not accepted by the payroll system", code))
		}

		if transaction.Hours <= 0 {
			report(types.CodeNonPositiveHours, fmt.Sprintf("hours must be positive, got %.2f", transaction.Hours))
		}

		checkText("comment", transaction.Comment, report)
	}
	return issues
}

// ValidateSchedules checks schedule blocks and their days.
func (v *Validator) ValidateSchedules(schedules []types.ScheduleTransaction) []types.ValidationIssue {
	var issues []types.ValidationIssue
	for i, block := range schedules {
		subject := fmt.Sprintf("schedule %d", i)
		report := func(code, message string) {
			issues = append(issues, types.ValidationIssue{
				Severity:   types.SeverityError,
				Code:       code,
				Message:    subject + ": " + message,
				EmployeeID: block.EmployeeID,
			})
		}
		checkIdentity(block.EmployeeID, block.PersonalNumber, report)

		for j, day := range block.Days {
			daySubject := fmt.Sprintf("%s day %d", subject, j)
			checkDate(day.Date, func(code, message string) {
				issues = append(issues, types.ValidationIssue{
					Severity:   types.SeverityError,
					Code:       code,
					Message:    daySubject + ": " + message,
					EmployeeID: block.EmployeeID,
				})
			})
			if day.Hours <= 0 {
				issues = append(issues, types.ValidationIssue{
					Severity:   types.SeverityWarning,
					Code:       types.CodeEmptyScheduleDay,
					Message:    fmt.Sprintf("%s: %s has no scheduled hours", daySubject, day.Date),
					EmployeeID: block.EmployeeID,
				})
			}
		}
	}
	return issues
}

// =============================================================================
// RULES
// =============================================================================

func checkIdentity(employeeID, personalNumber string, report func(code, message string)) {
	if strings.TrimSpace(employeeID) == "" {
		report(types.CodeMissingEmployeeID, "employee id is missing")
	}
	checkText("employee id", employeeID, report)
	switch {
	case personalNumber == "":
		report(types.CodeMissingPersonalNumber, "personal number is missing")
	case !isDigits(personalNumber) || len(personalNumber) != PersonalNumberLength:
		report(types.CodeInvalidPersonalNumber, fmt.Sprintf("personal number %q must be exactly %d digits", personalNumber, PersonalNumberLength))
	}
}

// checkText rejects values the document cannot carry unchanged.
func checkText(field, value string, report func(code, message string)) {
	if offset, ok := xmlwriter.LegalText(value); !ok {
		report(types.CodeIllegalCharacters, fmt.Sprintf("%s has an invalid or non-XML character at byte %d", field, offset))
	}
}

func checkDate(date string, report func(code, message string)) {
	switch {
	case strings.TrimSpace(date) == "":
		report(types.CodeInvalidDate, "date is missing")
	case date != strings.TrimSpace(date) || !types.IsISODate(date):
		report(types.CodeInvalidDate, fmt.Sprintf("date %q is not a valid YYYY-MM-DD date", date))
	}
}

func isDigits(value string) bool {
	for _, r := range value {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// =============================================================================
// REPORTING
// =============================================================================

// Details returns one line per blocking issue.
func Details(issues []types.ValidationIssue) []string {
	details := make([]string, 0, len(issues))
	for _, issue := range issues {
		if issue.IsBlocking() {
			details = append(details, issue.Message)
		}
	}
	return details
}

// FormatIssues formats issues for display or logging.
//
// PARAMETERS:
//   - issues: The issues to format.
//
// RETURNS:
//   - A formatted string containing all issues.
func FormatIssues(issues []types.ValidationIssue) string {
	if len(issues) == 0 {
		return "No validation issues."
	}

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("Validation completed with %d issue(s):\n\n", len(issues)))
	for i, issue := range issues {
		builder.WriteString(fmt.Sprintf("%d. [%s] %s: %s\n", i+1, strings.ToUpper(string(issue.Severity)), issue.Code, issue.Message))
	}
	return builder.String()
}
