package converter

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ginjaninja78/paxml-exporter/internal/types"
)

// BuildSchedules groups schedule entries into one block per employee.
//
// Blocks are ordered by employee id and days by date, then start time. Net
// hours are the gross window minus the part of the break that falls inside
// it. A day whose start or end time does not parse is exported without times
// and with zero hours, which the validator warns about.
func BuildSchedules(entries []types.ScheduleEntry, employees []types.Employee) ([]types.ScheduleTransaction, []types.ValidationIssue) {
	register := indexEmployees(employees)

	var issues []types.ValidationIssue
	blocks := make(map[string]*types.ScheduleTransaction)
	type dayKey struct {
		date  string
		start string
	}
	var order []string

	for _, entry := range entries {
		employeeID := strings.TrimSpace(entry.EmployeeID)
		employee, ok := register[employeeID]
		if !ok {
			issues = append(issues, types.ValidationIssue{
				Severity:   types.SeverityError,
				Code:       types.CodeEmployeeNotFound,
				Message:    fmt.Sprintf("schedule %d on %s references unknown employee %q", entry.ID, entry.Date, employeeID),
				EmployeeID: employeeID,
				RecordID:   fmt.Sprintf("schedule:%d", entry.ID),
			})
			continue
		}

		block, exists := blocks[employeeID]
		if !exists {
			block = &types.ScheduleTransaction{
				EmployeeID:     employeeID,
				PersonalNumber: DigitsOnly(employee.PersonalNumber),
			}
			blocks[employeeID] = block
			order = append(order, employeeID)
		}
		block.Days = append(block.Days, scheduleDay(entry))
	}

	sort.Strings(order)
	result := make([]types.ScheduleTransaction, 0, len(order))
	for _, employeeID := range order {
		block := blocks[employeeID]
		sort.SliceStable(block.Days, func(i, j int) bool {
			a := dayKey{block.Days[i].Date, block.Days[i].StartTime}
			b := dayKey{block.Days[j].Date, block.Days[j].StartTime}
			if a.date != b.date {
				return a.date < b.date
			}
			return a.start < b.start
		})
		result = append(result, *block)
	}
	return result, issues
}

func scheduleDay(entry types.ScheduleEntry) types.ScheduleDay {
	day := types.ScheduleDay{Date: strings.TrimSpace(entry.Date)}
	start, startErr := types.ParseClock(entry.StartTime)
	end, endErr := types.ParseClock(entry.EndTime)
	if startErr != nil || endErr != nil {
		return day
	}
	day.StartTime = types.FormatClock(start)
	day.EndTime = types.FormatClock(end)
	if net, ok := netMinutes(entry); ok {
		day.Hours = RoundHours(float64(net) / 60)
	}
	return day
}

// netMinutes returns the planned working minutes of a schedule entry.
func netMinutes(entry types.ScheduleEntry) (int, bool) {
	start, err := types.ParseClock(entry.StartTime)
	if err != nil {
		return 0, false
	}
	end, err := types.ParseClock(entry.EndTime)
	if err != nil || end <= start {
		return 0, false
	}
	net := end - start

	breakStart, startErr := types.ParseClock(entry.BreakStart)
	breakEnd, endErr := types.ParseClock(entry.BreakEnd)
	if startErr == nil && endErr == nil && breakEnd > breakStart {
		overlapStart := max(start, breakStart)
		overlapEnd := min(end, breakEnd)
		if overlapEnd > overlapStart {
			net -= overlapEnd - overlapStart
		}
	}
	return net, true
}
