// =============================================================================
// PAXML Exporter - Shared Types
// =============================================================================
//
// This package contains the records shared by every stage of the export
// pipeline. Keeping them here avoids import cycles between:
//   - filter
//   - duplicates
//   - converter
//   - validation
//   - xmlwriter
//   - store
//
// Source records (Employee, Deviation, LeaveRequest, ScheduleEntry) are kept
// loosely typed on purpose: dates and times are the strings a person typed in,
// and the converter/validator decide whether they are usable.
//
// =============================================================================

package types

import (
	"fmt"
	"strings"
)

// =============================================================================
// SOURCE RECORDS
// =============================================================================

// Employee is the identity record owned by the personnel subsystem.
type Employee struct {
	// ID is the external employee identifier ("anstid" on the wire).
	ID string `json:"id"`

	// PersonalNumber is the national identification number as entered,
	// for example "19850512-1234". Separators are stripped on export.
	PersonalNumber string `json:"personalNumber"`

	Name string `json:"name"`
}

// Deviation is a single reported time exception on one day.
type Deviation struct {
	ID         uint   `json:"id"`
	EmployeeID string `json:"employeeId"`

	// Date is expected as YYYY-MM-DD.
	Date string `json:"date"`

	// StartTime and EndTime are HH:MM or HH:MM:SS.
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`

	// TimeCode is the internal code; the mapper translates it for the wire.
	TimeCode string `json:"timeCode"`
	Comment  string `json:"comment,omitempty"`
	Status   Status `json:"status"`

	// LeaveID is set when the deviation is one day of an expanded leave request.
	LeaveID uint `json:"-"`
}

// SourceID identifies the record a transaction is built from.
func (d Deviation) SourceID() string {
	if d.LeaveID != 0 {
		return fmt.Sprintf("leave:%d:%s", d.LeaveID, strings.TrimSpace(d.Date))
	}
	return fmt.Sprintf("deviation:%d", d.ID)
}

// LeaveScope tells whether a leave covers whole days or a part of each day.
type LeaveScope string

const (
	ScopeFullDay LeaveScope = "full_day"
	ScopePartial LeaveScope = "partial"
)

// LeaveRequest is an absence spanning a date range.
type LeaveRequest struct {
	ID         uint       `json:"id"`
	EmployeeID string     `json:"employeeId"`
	StartDate  string     `json:"startDate"`
	EndDate    string     `json:"endDate"`
	LeaveType  string     `json:"leaveType"`
	Scope      LeaveScope `json:"scope"`

	// StartTime and EndTime are only used for partial leave.
	StartTime string `json:"startTime,omitempty"`
	EndTime   string `json:"endTime,omitempty"`

	Comment string `json:"comment,omitempty"`
	Status  Status `json:"status"`
}

// ScheduleEntry is one planned working day. Read-only input.
type ScheduleEntry struct {
	ID         uint   `json:"id"`
	EmployeeID string `json:"employeeId"`
	Date       string `json:"date"`
	StartTime  string `json:"startTime,omitempty"`
	EndTime    string `json:"endTime,omitempty"`
	BreakStart string `json:"breakStart,omitempty"`
	BreakEnd   string `json:"breakEnd,omitempty"`
}

// =============================================================================
// EXPORT RECORDS
// =============================================================================

// Transaction is the canonical export-ready unit ("tidtrans" on the wire).
type Transaction struct {
	// Sequence is the 1-based position in the export, rendered as postid.
	Sequence int

	// SourceID points back at the record the transaction was built from,
	// e.g. "deviation:12" or "leave:4:2024-05-10".
	SourceID string

	EmployeeID string

	// PersonalNumber holds digits only.
	PersonalNumber string

	Date     string
	TimeCode string

	// Hours is rounded to two decimals.
	Hours   float64
	Comment string
}

// ScheduleTransaction groups every schedule day of one employee.
type ScheduleTransaction struct {
	EmployeeID     string
	PersonalNumber string
	Days           []ScheduleDay
}

// ScheduleDay is one <dag> element. StartTime/EndTime are HH:MM or empty.
type ScheduleDay struct {
	Date      string
	StartTime string
	EndTime   string
	Hours     float64
}

// ExportRequest is the transport-agnostic export request.
type ExportRequest struct {
	EmployeeIDs      []string `json:"employeeIds,omitempty"`
	StartDate        string   `json:"startDate,omitempty"`
	EndDate          string   `json:"endDate,omitempty"`
	IncludeSchedules bool     `json:"includeSchedules,omitempty"`
}

// =============================================================================
// VALIDATION ISSUES
// =============================================================================

// Severity classifies a ValidationIssue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Machine-readable issue codes.
const (
	CodeMissingEmployeeID     = "missing_employee_id"
	CodeMissingPersonalNumber = "missing_personal_number"
	CodeInvalidPersonalNumber = "invalid_personal_number"
	CodeInvalidDate           = "invalid_date"
	CodeMissingTimeCode       = "missing_time_code"
	CodeUnknownTimeCode       = "unknown_time_code"
	CodeNonPositiveHours      = "non_positive_hours"
	CodeDuplicateTransaction  = "duplicate_transaction"
	CodeFutureDated           = "future_dated"
	CodeEmployeeNotFound      = "employee_not_found"
	CodeInvalidRequest        = "invalid_request"
	CodeEmptyScheduleDay      = "empty_schedule_day"
	CodeIllegalCharacters     = "illegal_characters"
)

// ValidationIssue is one finding of the export pipeline.
type ValidationIssue struct {
	Severity   Severity `json:"severity"`
	Code       string   `json:"code"`
	Message    string   `json:"message"`
	EmployeeID string   `json:"employeeId,omitempty"`
	RecordID   string   `json:"recordId,omitempty"`
}

// IsBlocking reports whether the issue prevents an export.
func (i ValidationIssue) IsBlocking() bool {
	return i.Severity == SeverityError
}
