package csvparser

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/ginjaninja78/paxml-exporter/internal/schedule"
	"github.com/ginjaninja78/paxml-exporter/internal/types"
)

// Canonical field names that headers are mapped onto.
const (
	FieldID             = "id"
	FieldEmployeeID     = "employeeId"
	FieldPersonalNumber = "personalNumber"
	FieldName           = "name"
	FieldDate           = "date"
	FieldStartTime      = "startTime"
	FieldEndTime        = "endTime"
	FieldTimeCode       = "timeCode"
	FieldComment        = "comment"
	FieldStatus         = "status"
	FieldStartDate      = "startDate"
	FieldEndDate        = "endDate"
	FieldLeaveType      = "leaveType"
	FieldScope          = "scope"
	FieldBreakStart     = "breakStart"
	FieldBreakEnd       = "breakEnd"
	FieldHours          = "hours"
)

// HeaderAliases maps normalised header names (see NormalizeHeader) to
// canonical fields. Swedish payroll headers and English ones are both accepted.
var HeaderAliases = map[string]string{
	"id": FieldID,

	"anstid":             FieldEmployeeID,
	"anstnr":             FieldEmployeeID,
	"anställningsnummer": FieldEmployeeID,
	"employeeid":         FieldEmployeeID,
	"empid":              FieldEmployeeID,

	"persnr":         FieldPersonalNumber,
	"personnummer":   FieldPersonalNumber,
	"personalnumber": FieldPersonalNumber,
	"ssn":            FieldPersonalNumber,

	"namn":     FieldName,
	"name":     FieldName,
	"fullname": FieldName,

	"datum": FieldDate,
	"date":  FieldDate,
	"dag":   FieldDate,

	"starttid":  FieldStartTime,
	"starttime": FieldStartTime,
	"start":     FieldStartTime,
	"från":      FieldStartTime,
	"from":      FieldStartTime,

	"sluttid": FieldEndTime,
	"slut":    FieldEndTime,
	"endtime": FieldEndTime,
	"end":     FieldEndTime,
	"till":    FieldEndTime,
	"to":      FieldEndTime,

	"tidkod":   FieldTimeCode,
	"timecode": FieldTimeCode,
	"kod":      FieldTimeCode,
	"code":     FieldTimeCode,
	"orsak":    FieldTimeCode,

	"kommentar": FieldComment,
	"comment":   FieldComment,
	"note":      FieldComment,

	"status": FieldStatus,

	"startdatum": FieldStartDate,
	"startdate":  FieldStartDate,
	"fråndatum":  FieldStartDate,
	"fromdate":   FieldStartDate,

	"slutdatum": FieldEndDate,
	"enddate":   FieldEndDate,
	"tilldatum": FieldEndDate,
	"todate":    FieldEndDate,

	"ledighetstyp": FieldLeaveType,
	"frånvarotyp":  FieldLeaveType,
	"leavetype":    FieldLeaveType,
	"typ":          FieldLeaveType,
	"type":         FieldLeaveType,

	"omfattning": FieldScope,
	"scope":      FieldScope,

	"raststart":  FieldBreakStart,
	"breakstart": FieldBreakStart,
	"rastslut":   FieldBreakEnd,
	"breakend":   FieldBreakEnd,

	"timmar": FieldHours,
	"hours":  FieldHours,
}

// NormalizeHeader lowercases a header and strips spaces, underscores and
// hyphens after NFC normalisation.
func NormalizeHeader(header string) string {
	s := strings.ToLower(norm.NFC.String(strings.TrimSpace(header)))
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "_", "")
	s = strings.ReplaceAll(s, "-", "")
	return s
}

// FieldFor returns the canonical field for a header, or "" when unknown.
func FieldFor(header string) string {
	return HeaderAliases[NormalizeHeader(header)]
}

// =============================================================================
// RECORD DECODING
// =============================================================================

// record is one row keyed by canonical field.
type record struct {
	line   int
	values map[string]string
}

func (r record) get(field string) string {
	return r.values[field]
}

func (r record) errorf(format string, args ...any) error {
	return fmt.Errorf("line %d: "+format, append([]any{r.line}, args...)...)
}

// records maps every row onto canonical fields and checks that the required
// columns are present.
func (t *Table) records(required ...string) ([]record, error) {
	columns := make(map[string]string, len(t.Headers))
	for _, header := range t.Headers {
		field := FieldFor(header)
		if field == "" {
			continue
		}
		if _, taken := columns[field]; !taken {
			columns[field] = header
		}
	}

	var missing []string
	for _, field := range required {
		if _, ok := columns[field]; !ok {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%s: missing column(s) %s", t.Source, strings.Join(missing, ", "))
	}

	out := make([]record, 0, len(t.Rows))
	for i, row := range t.Rows {
		values := make(map[string]string, len(columns))
		for field, header := range columns {
			values[field] = norm.NFC.String(row[header])
		}
		line := 0
		if i < len(t.Lines) {
			line = t.Lines[i]
		}
		out = append(out, record{line: line, values: values})
	}
	return out, nil
}

// Employees decodes employee rows. The id and personal number columns are
// required.
func (t *Table) Employees() ([]types.Employee, error) {
	rows, err := t.records(FieldEmployeeID, FieldPersonalNumber)
	if err != nil {
		return nil, err
	}
	employees := make([]types.Employee, 0, len(rows))
	for _, row := range rows {
		id := row.get(FieldEmployeeID)
		if id == "" {
			return nil, fmt.Errorf("%s: %w", t.Source, row.errorf("employee id is empty"))
		}
		employees = append(employees, types.Employee{
			ID:             id,
			PersonalNumber: row.get(FieldPersonalNumber),
			Name:           row.get(FieldName),
		})
	}
	return employees, nil
}

// Deviations decodes deviation rows. Dates and times are kept as written so
// the exporter can report bad values instead of the import hiding them.
func (t *Table) Deviations() ([]types.Deviation, error) {
	rows, err := t.records(FieldEmployeeID, FieldDate, FieldStartTime, FieldEndTime, FieldTimeCode)
	if err != nil {
		return nil, err
	}
	deviations := make([]types.Deviation, 0, len(rows))
	for _, row := range rows {
		id, err := parseID(row)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", t.Source, err)
		}
		status, err := types.ParseStatus(row.get(FieldStatus))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", t.Source, row.errorf("%w", err))
		}
		deviations = append(deviations, types.Deviation{
			ID:         id,
			EmployeeID: row.get(FieldEmployeeID),
			Date:       row.get(FieldDate),
			StartTime:  row.get(FieldStartTime),
			EndTime:    row.get(FieldEndTime),
			TimeCode:   row.get(FieldTimeCode),
			Comment:    row.get(FieldComment),
			Status:     status,
		})
	}
	return deviations, nil
}

// Leaves decodes leave request rows. A row with start and end times and no
// explicit scope is a partial leave.
func (t *Table) Leaves() ([]types.LeaveRequest, error) {
	rows, err := t.records(FieldEmployeeID, FieldStartDate, FieldEndDate, FieldLeaveType)
	if err != nil {
		return nil, err
	}
	leaves := make([]types.LeaveRequest, 0, len(rows))
	for _, row := range rows {
		id, err := parseID(row)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", t.Source, err)
		}
		status, err := types.ParseStatus(row.get(FieldStatus))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", t.Source, row.errorf("%w", err))
		}
		scope, err := parseScope(row)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", t.Source, err)
		}
		leave := types.LeaveRequest{
			ID:         id,
			EmployeeID: row.get(FieldEmployeeID),
			StartDate:  row.get(FieldStartDate),
			EndDate:    row.get(FieldEndDate),
			LeaveType:  row.get(FieldLeaveType),
			Scope:      scope,
			Comment:    row.get(FieldComment),
			Status:     status,
		}
		if scope == types.ScopePartial {
			leave.StartTime = row.get(FieldStartTime)
			leave.EndTime = row.get(FieldEndTime)
		}
		leaves = append(leaves, leave)
	}
	return leaves, nil
}

// Schedules decodes schedule rows. When a row has no start and end time but
// an hours total, the window is estimated with policy.
func (t *Table) Schedules(policy schedule.EstimationPolicy) ([]types.ScheduleEntry, error) {
	rows, err := t.records(FieldEmployeeID, FieldDate)
	if err != nil {
		return nil, err
	}
	entries := make([]types.ScheduleEntry, 0, len(rows))
	for _, row := range rows {
		id, err := parseID(row)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", t.Source, err)
		}
		entry := types.ScheduleEntry{
			ID:         id,
			EmployeeID: row.get(FieldEmployeeID),
			Date:       row.get(FieldDate),
			StartTime:  row.get(FieldStartTime),
			EndTime:    row.get(FieldEndTime),
			BreakStart: row.get(FieldBreakStart),
			BreakEnd:   row.get(FieldBreakEnd),
		}

		if entry.StartTime == "" && entry.EndTime == "" && row.get(FieldHours) != "" {
			hours, err := ParseHours(row.get(FieldHours))
			if err != nil {
				return nil, fmt.Errorf("%s: %w", t.Source, row.errorf("%w", err))
			}
			window, err := policy.Estimate(hours)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", t.Source, row.errorf("%w", err))
			}
			entry.StartTime = window.StartTime
			entry.EndTime = window.EndTime
			entry.BreakStart = window.BreakStart
			entry.BreakEnd = window.BreakEnd
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// ParseHours accepts "7.5" as well as the Swedish "7,5".
func ParseHours(raw string) (float64, error) {
	value := strings.ReplaceAll(strings.TrimSpace(raw), ",", ".")
	hours, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid hours %q", raw)
	}
	return hours, nil
}

func parseID(row record) (uint, error) {
	raw := row.get(FieldID)
	if raw == "" {
		return 0, nil
	}
	id, err := strconv.ParseUint(raw, 10, 0)
	if err != nil {
		return 0, row.errorf("invalid id %q", raw)
	}
	return uint(id), nil
}

func parseScope(row record) (types.LeaveScope, error) {
	switch strings.ToLower(row.get(FieldScope)) {
	case "":
		if row.get(FieldStartTime) != "" && row.get(FieldEndTime) != "" {
			return types.ScopePartial, nil
		}
		return types.ScopeFullDay, nil
	case "full_day", "fullday", "full", "heldag":
		return types.ScopeFullDay, nil
	case "partial", "part", "deldag":
		return types.ScopePartial, nil
	}
	return "", row.errorf("unknown scope %q", row.get(FieldScope))
}
