package converter

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/ginjaninja78/paxml-exporter/internal/schedule"
	"github.com/ginjaninja78/paxml-exporter/internal/types"
)

// ExpandLeaves turns approved leave requests into one deviation per day.
//
// WORKING DAYS:
//   - A day with schedule entries is a working day when its net scheduled
//     hours are above zero.
//   - A day without schedule entries is a working day from Monday to Friday.
//
// HOURS:
//   - Full-day leave takes the net scheduled hours, or the policy's full day
//     when nothing is scheduled. The deviation window starts at the scheduled
//     (or policy) start and spans exactly those hours.
//   - Partial leave uses the leave's own start and end time every day.
//
// A leave whose dates do not parse, or whose end is before its start, raises
// an invalid_date error and is not expanded.
func ExpandLeaves(leaves []types.LeaveRequest, schedules []types.ScheduleEntry, policy schedule.EstimationPolicy) ([]types.Deviation, []types.ValidationIssue) {
	planned := indexSchedules(schedules)

	var deviations []types.Deviation
	var issues []types.ValidationIssue

	for _, leave := range leaves {
		recordID := fmt.Sprintf("leave:%d", leave.ID)
		start, startErr := types.ParseDate(leave.StartDate)
		end, endErr := types.ParseDate(leave.EndDate)
		if startErr != nil || endErr != nil || end.Before(start) {
			issues = append(issues, types.ValidationIssue{
				Severity:   types.SeverityError,
				Code:       types.CodeInvalidDate,
				Message:    fmt.Sprintf("leave %d for %s has an invalid date range %q to %q", leave.ID, leave.EmployeeID, leave.StartDate, leave.EndDate),
				EmployeeID: leave.EmployeeID,
				RecordID:   recordID,
			})
			continue
		}

		employeeID := strings.TrimSpace(leave.EmployeeID)
		for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
			date := day.Format(types.DateLayout)
			dayStart, netMinutes, working := workingDay(day, planned[employeeID+"\x00"+date], policy)
			if !working {
				continue
			}

			deviation := types.Deviation{
				ID:         leave.ID,
				LeaveID:    leave.ID,
				EmployeeID: employeeID,
				Date:       date,
				TimeCode:   leave.LeaveType,
				Comment:    leave.Comment,
				Status:     types.StatusApproved,
			}
			if leave.Scope == types.ScopePartial {
				deviation.StartTime = leave.StartTime
				deviation.EndTime = leave.EndTime
			} else {
				deviation.StartTime = types.FormatClock(dayStart)
				deviation.EndTime = types.FormatClock(dayStart + netMinutes)
			}
			deviations = append(deviations, deviation)
		}
	}
	return deviations, issues
}

// workingDay returns the start minute and net minutes of a working day.
func workingDay(day time.Time, entries []types.ScheduleEntry, policy schedule.EstimationPolicy) (int, int, bool) {
	if len(entries) == 0 {
		if day.Weekday() == time.Saturday || day.Weekday() == time.Sunday {
			return 0, 0, false
		}
		start, err := types.ParseClock(policy.DayStart)
		if err != nil {
			return 0, 0, false
		}
		return start, int(math.Round(policy.FullDayHours * 60)), true
	}

	first := -1
	total := 0
	for _, entry := range entries {
		net, ok := netMinutes(entry)
		if !ok {
			continue
		}
		total += net
		start, _ := types.ParseClock(entry.StartTime)
		if first < 0 || start < first {
			first = start
		}
	}
	if total <= 0 {
		return 0, 0, false
	}
	// A window that would run past midnight is pulled back so it still fits.
	if first+total > 24*60-1 {
		first = max(0, 24*60-1-total)
	}
	return first, total, true
}

func indexSchedules(schedules []types.ScheduleEntry) map[string][]types.ScheduleEntry {
	planned := make(map[string][]types.ScheduleEntry)
	for _, entry := range schedules {
		key := strings.TrimSpace(entry.EmployeeID) + "\x00" + strings.TrimSpace(entry.Date)
		planned[key] = append(planned[key], entry)
	}
	return planned
}
