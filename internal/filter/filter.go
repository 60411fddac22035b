// =============================================================================
// PAXML Exporter - Record Filter
// =============================================================================
//
// The filter selects the records that are eligible for one export request.
//
// RULES:
//   - Only approved deviations and leave requests are kept.
//   - The optional employee allow-list restricts all record kinds.
//   - The optional [start, end] window is inclusive.
//   - Nothing dated after today is exported. Future-dated records are removed
//     and reported as info issues; the request window cannot override this.
//   - Leave requests are clipped to the window and to today.
//   - Schedules are plans, not payments: only employee and window apply.
//   - A record whose date does not parse is kept so the validator reports it.
//
// =============================================================================

package filter

import (
	"fmt"
	"strings"
	"time"

	"github.com/ginjaninja78/paxml-exporter/internal/types"
)

// Bounds is a parsed export request.
type Bounds struct {
	Start     time.Time
	End       time.Time
	HasStart  bool
	HasEnd    bool
	employees map[string]struct{}
}

// ParseBounds validates the request parameters.
//
// RETURNS:
//   - The parsed bounds.
//   - An error when a bound is not YYYY-MM-DD or start is after end.
func ParseBounds(req types.ExportRequest) (Bounds, error) {
	var bounds Bounds

	if strings.TrimSpace(req.StartDate) != "" {
		start, err := types.ParseDate(req.StartDate)
		if err != nil {
			return Bounds{}, fmt.Errorf("startDate: %w", err)
		}
		bounds.Start, bounds.HasStart = start, true
	}
	if strings.TrimSpace(req.EndDate) != "" {
		end, err := types.ParseDate(req.EndDate)
		if err != nil {
			return Bounds{}, fmt.Errorf("endDate: %w", err)
		}
		bounds.End, bounds.HasEnd = end, true
	}
	if bounds.HasStart && bounds.HasEnd && bounds.Start.After(bounds.End) {
		return Bounds{}, fmt.Errorf("startDate %s is after endDate %s", req.StartDate, req.EndDate)
	}

	for _, id := range req.EmployeeIDs {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if bounds.employees == nil {
			bounds.employees = make(map[string]struct{})
		}
		bounds.employees[id] = struct{}{}
	}
	return bounds, nil
}

// IncludesEmployee reports whether the employee passes the allow-list.
func (b Bounds) IncludesEmployee(id string) bool {
	if len(b.employees) == 0 {
		return true
	}
	_, ok := b.employees[strings.TrimSpace(id)]
	return ok
}

// Contains reports whether day lies inside the window.
func (b Bounds) Contains(day time.Time) bool {
	if b.HasStart && day.Before(b.Start) {
		return false
	}
	if b.HasEnd && day.After(b.End) {
		return false
	}
	return true
}

// Result is the eligible subset plus the advisory issues raised on the way.
type Result struct {
	Deviations []types.Deviation
	Leaves     []types.LeaveRequest
	Schedules  []types.ScheduleEntry
	Issues     []types.ValidationIssue
}

// Filter applies the eligibility rules against an injected clock.
type Filter struct {
	now func() time.Time
}

// New returns a filter. A nil clock uses time.Now.
func New(now func() time.Time) *Filter {
	if now == nil {
		now = time.Now
	}
	return &Filter{now: now}
}

// Today returns the current local calendar date at midnight.
func (f *Filter) Today() time.Time {
	now := f.now().In(time.Local)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)
}

// Apply selects the eligible records. Input slices are not modified.
func (f *Filter) Apply(bounds Bounds, deviations []types.Deviation, leaves []types.LeaveRequest, schedules []types.ScheduleEntry) Result {
	today := f.Today()
	var result Result

	for _, deviation := range deviations {
		if deviation.Status != types.StatusApproved || !bounds.IncludesEmployee(deviation.EmployeeID) {
			continue
		}
		day, err := types.ParseDate(deviation.Date)
		if err != nil {
			result.Deviations = append(result.Deviations, deviation)
			continue
		}
		if !bounds.Contains(day) {
			continue
		}
		if day.After(today) {
			result.Issues = append(result.Issues, types.ValidationIssue{
				Severity:   types.SeverityInfo,
				Code:       types.CodeFutureDated,
				Message:    fmt.Sprintf("deviation %d for %s on %s is future-dated and was auto-filtered", deviation.ID, deviation.EmployeeID, deviation.Date),
				EmployeeID: deviation.EmployeeID,
				RecordID:   fmt.Sprintf("deviation:%d", deviation.ID),
			})
			continue
		}
		result.Deviations = append(result.Deviations, deviation)
	}

	for _, leave := range leaves {
		if leave.Status != types.StatusApproved || !bounds.IncludesEmployee(leave.EmployeeID) {
			continue
		}
		clipped, issue, keep := clipLeave(leave, bounds, today)
		if issue != nil {
			result.Issues = append(result.Issues, *issue)
		}
		if keep {
			result.Leaves = append(result.Leaves, clipped)
		}
	}

	for _, entry := range schedules {
		if !bounds.IncludesEmployee(entry.EmployeeID) {
			continue
		}
		if day, err := types.ParseDate(entry.Date); err == nil && !bounds.Contains(day) {
			continue
		}
		result.Schedules = append(result.Schedules, entry)
	}

	return result
}

// clipLeave narrows a leave to the window and to today.
func clipLeave(leave types.LeaveRequest, bounds Bounds, today time.Time) (types.LeaveRequest, *types.ValidationIssue, bool) {
	start, startErr := types.ParseDate(leave.StartDate)
	end, endErr := types.ParseDate(leave.EndDate)
	if startErr != nil || endErr != nil || end.Before(start) {
		// Left for the expansion step to report.
		return leave, nil, true
	}

	if bounds.HasStart && start.Before(bounds.Start) {
		start = bounds.Start
	}
	if bounds.HasEnd && end.After(bounds.End) {
		end = bounds.End
	}
	if start.After(end) {
		return leave, nil, false
	}

	recordID := fmt.Sprintf("leave:%d", leave.ID)
	if start.After(today) {
		return leave, &types.ValidationIssue{
			Severity:   types.SeverityInfo,
			Code:       types.CodeFutureDated,
			Message:    fmt.Sprintf("leave %d for %s from %s is future-dated and was auto-filtered", leave.ID, leave.EmployeeID, start.Format(types.DateLayout)),
			EmployeeID: leave.EmployeeID,
			RecordID:   recordID,
		}, false
	}

	var issue *types.ValidationIssue
	if end.After(today) {
		issue = &types.ValidationIssue{
			Severity:   types.SeverityInfo,
			Code:       types.CodeFutureDated,
			Message:    fmt.Sprintf("leave %d for %s was clipped to %s; later days are future-dated", leave.ID, leave.EmployeeID, today.Format(types.DateLayout)),
			EmployeeID: leave.EmployeeID,
			RecordID:   recordID,
		}
		end = today
	}

	leave.StartDate = start.Format(types.DateLayout)
	leave.EndDate = end.Format(types.DateLayout)
	return leave, issue, true
}
