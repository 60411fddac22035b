// =============================================================================
// PAXML Exporter - Duplicate Detector
// =============================================================================
//
// Paying the same absence twice is the most expensive mistake an export can
// make, so duplicates are errors.
//
// IDENTITY KEYS:
//   - Deviation: (employee, date, start time, end time). Times compare as
//     HH:MM, so "08:00" and "08:00:00" are the same.
//   - Leave: (employee, leave code), then clustered by overlapping date
//     ranges. Every range that overlaps the cluster joins it. A Detector
//     built with the time code mapper compares wire codes, so "vacation"
//     and "100" collide; the package functions compare lower-cased types.
//
// A group of n records yields n-1 issues, one per surplus record. The record
// with the lowest ID is the one kept. Detection does not depend on input
// order.
//
// =============================================================================

package duplicates

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/ginjaninja78/paxml-exporter/internal/types"
)

// Detector finds duplicates, comparing leave requests by leaveCode.
type Detector struct {
	leaveCode func(leaveType string) string
}

// NewDetector returns a detector keyed on leaveCode(leaveType). A nil
// function compares the trimmed, lower-cased leave type.
func NewDetector(leaveCode func(leaveType string) string) *Detector {
	if leaveCode == nil {
		leaveCode = func(leaveType string) string {
			return strings.ToLower(strings.TrimSpace(leaveType))
		}
	}
	return &Detector{leaveCode: leaveCode}
}

var plain = NewDetector(nil)

// Detect returns one error issue per surplus deviation or leave.
func Detect(deviations []types.Deviation, leaves []types.LeaveRequest) []types.ValidationIssue {
	return plain.Detect(deviations, leaves)
}

// Keep returns the input without the surplus records, preserving order.
func Keep(deviations []types.Deviation, leaves []types.LeaveRequest) ([]types.Deviation, []types.LeaveRequest) {
	return plain.Keep(deviations, leaves)
}

// Leaves reports leave requests that overlap another request of the same type.
func Leaves(leaves []types.LeaveRequest) []types.ValidationIssue {
	return plain.Leaves(leaves)
}

// Detect returns one error issue per surplus deviation or leave.
func (d *Detector) Detect(deviations []types.Deviation, leaves []types.LeaveRequest) []types.ValidationIssue {
	issues := Deviations(deviations)
	return append(issues, d.Leaves(leaves)...)
}

// Keep returns the input without the surplus records, preserving order.
func (d *Detector) Keep(deviations []types.Deviation, leaves []types.LeaveRequest) ([]types.Deviation, []types.LeaveRequest) {
	surplusDeviations := make(map[int]bool)
	for _, group := range deviationGroups(deviations) {
		for _, index := range group[1:] {
			surplusDeviations[index] = true
		}
	}
	surplusLeaves := make(map[int]bool)
	for _, cluster := range d.leaveClusters(leaves) {
		for _, index := range cluster[1:] {
			surplusLeaves[index] = true
		}
	}

	keptDeviations := make([]types.Deviation, 0, len(deviations)-len(surplusDeviations))
	for i, deviation := range deviations {
		if !surplusDeviations[i] {
			keptDeviations = append(keptDeviations, deviation)
		}
	}
	keptLeaves := make([]types.LeaveRequest, 0, len(leaves)-len(surplusLeaves))
	for i, leave := range leaves {
		if !surplusLeaves[i] {
			keptLeaves = append(keptLeaves, leave)
		}
	}
	return keptDeviations, keptLeaves
}

// =============================================================================
// DEVIATIONS
// =============================================================================

// Deviations reports duplicated deviations.
func Deviations(deviations []types.Deviation) []types.ValidationIssue {
	var issues []types.ValidationIssue
	for _, group := range deviationGroups(deviations) {
		kept := deviations[group[0]]
		for _, index := range group[1:] {
			duplicate := deviations[index]
			issues = append(issues, types.ValidationIssue{
				Severity: types.SeverityError,
				Code:     types.CodeDuplicateTransaction,
				Message: fmt.Sprintf("duplicate deviation %d for %s on %s %s-%s (same as deviation %d)",
					duplicate.ID, duplicate.EmployeeID, duplicate.Date,
					types.NormalizeClock(duplicate.StartTime), types.NormalizeClock(duplicate.EndTime), kept.ID),
				EmployeeID: duplicate.EmployeeID,
				RecordID:   fmt.Sprintf("deviation:%d", duplicate.ID),
			})
		}
	}
	return issues
}

// deviationGroups returns index groups with more than one member. Each group
// is ordered by ID; groups are ordered by key.
func deviationGroups(deviations []types.Deviation) [][]int {
	byKey := make(map[string][]int)
	for i, deviation := range deviations {
		key := strings.Join([]string{
			strings.TrimSpace(deviation.EmployeeID),
			strings.TrimSpace(deviation.Date),
			types.NormalizeClock(deviation.StartTime),
			types.NormalizeClock(deviation.EndTime),
		}, "\x00")
		byKey[key] = append(byKey[key], i)
	}

	keys := make([]string, 0, len(byKey))
	for key, members := range byKey {
		if len(members) > 1 {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	groups := make([][]int, 0, len(keys))
	for _, key := range keys {
		members := byKey[key]
		sort.SliceStable(members, func(a, b int) bool {
			return deviations[members[a]].ID < deviations[members[b]].ID
		})
		groups = append(groups, members)
	}
	return groups
}

// =============================================================================
// LEAVES
// =============================================================================

// Leaves reports leave requests that overlap another request with the same
// leave code.
func (d *Detector) Leaves(leaves []types.LeaveRequest) []types.ValidationIssue {
	var issues []types.ValidationIssue
	for _, cluster := range d.leaveClusters(leaves) {
		kept := leaves[cluster[0]]
		for _, index := range cluster[1:] {
			duplicate := leaves[index]
			issues = append(issues, types.ValidationIssue{
				Severity: types.SeverityError,
				Code:     types.CodeDuplicateTransaction,
				Message: fmt.Sprintf("leave %d for %s (%s, %s to %s) overlaps leave %d",
					duplicate.ID, duplicate.EmployeeID, duplicate.LeaveType,
					duplicate.StartDate, duplicate.EndDate, kept.ID),
				EmployeeID: duplicate.EmployeeID,
				RecordID:   fmt.Sprintf("leave:%d", duplicate.ID),
			})
		}
	}
	return issues
}

type leaveRange struct {
	index int
	start time.Time
	end   time.Time
}

// leaveClusters returns index clusters with more than one member, each
// ordered by ID. Leaves with unusable dates never cluster.
func (d *Detector) leaveClusters(leaves []types.LeaveRequest) [][]int {
	byKey := make(map[string][]leaveRange)
	for i, leave := range leaves {
		start, err := types.ParseDate(leave.StartDate)
		if err != nil {
			continue
		}
		end, err := types.ParseDate(leave.EndDate)
		if err != nil || end.Before(start) {
			continue
		}
		key := strings.TrimSpace(leave.EmployeeID) + "\x00" + d.leaveCode(leave.LeaveType)
		byKey[key] = append(byKey[key], leaveRange{index: i, start: start, end: end})
	}

	keys := make([]string, 0, len(byKey))
	for key := range byKey {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var clusters [][]int
	for _, key := range keys {
		ranges := byKey[key]
		sort.Slice(ranges, func(a, b int) bool {
			if !ranges[a].start.Equal(ranges[b].start) {
				return ranges[a].start.Before(ranges[b].start)
			}
			return leaves[ranges[a].index].ID < leaves[ranges[b].index].ID
		})

		current := []int{ranges[0].index}
		currentEnd := ranges[0].end
		flush := func() {
			if len(current) > 1 {
				sort.SliceStable(current, func(a, b int) bool {
					return leaves[current[a]].ID < leaves[current[b]].ID
				})
				clusters = append(clusters, current)
			}
		}
		for _, r := range ranges[1:] {
			if !r.start.After(currentEnd) {
				current = append(current, r.index)
				if r.end.After(currentEnd) {
					currentEnd = r.end
				}
				continue
			}
			flush()
			current = []int{r.index}
			currentEnd = r.end
		}
		flush()
	}
	return clusters
}
