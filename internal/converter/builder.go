// =============================================================================
// PAXML Exporter - Transaction Builder
// =============================================================================
//
// The builder turns approved, filtered, deduplicated deviations into export
// transactions.
//
// PER DEVIATION:
//   1. Resolve the employee. An unknown employee skips the record and raises
//      an error issue; the rest of the batch is still built.
//   2. Normalise the personal number by removing every non-digit.
//   3. Compute hours = end - start, rounded to two decimals. Times that do not
//      parse give 0 hours, and a reversed window gives negative hours. The
//      validator rejects both.
//   4. Map the time code through the vocabulary.
//
// The result is sorted by (employee, date, start time, source id) and every
// transaction gets a 1-based sequence number, so the same input always yields
// the same document.
//
// =============================================================================

package converter

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/ginjaninja78/paxml-exporter/internal/codemap"
	"github.com/ginjaninja78/paxml-exporter/internal/types"
)

// Builder converts deviations into transactions.
type Builder struct {
	mapper *codemap.Mapper
}

// NewBuilder returns a builder that maps codes with mapper.
func NewBuilder(mapper *codemap.Mapper) *Builder {
	return &Builder{mapper: mapper}
}

// Build converts deviations into transactions.
//
// PARAMETERS:
//   - deviations: Approved deviations, including expanded leave days.
//   - employees: The employee register used to resolve identities.
//
// RETURNS:
//   - The transactions, sorted and numbered.
//   - One error issue per deviation whose employee could not be resolved.
func (b *Builder) Build(deviations []types.Deviation, employees []types.Employee) ([]types.Transaction, []types.ValidationIssue) {
	register := indexEmployees(employees)

	var issues []types.ValidationIssue
	transactions := make([]types.Transaction, 0, len(deviations))

	type sortable struct {
		start       string
		transaction types.Transaction
	}
	built := make([]sortable, 0, len(deviations))

	for _, deviation := range deviations {
		employeeID := strings.TrimSpace(deviation.EmployeeID)
		if employeeID == "" {
			issues = append(issues, types.ValidationIssue{
				Severity: types.SeverityError,
				Code:     types.CodeMissingEmployeeID,
				Message:  fmt.Sprintf("%s has no employee id", deviation.SourceID()),
				RecordID: deviation.SourceID(),
			})
			continue
		}
		employee, ok := register[employeeID]
		if !ok {
			issues = append(issues, types.ValidationIssue{
				Severity:   types.SeverityError,
				Code:       types.CodeEmployeeNotFound,
				Message:    fmt.Sprintf("%s references unknown employee %s", deviation.SourceID(), employeeID),
				EmployeeID: employeeID,
				RecordID:   deviation.SourceID(),
			})
			continue
		}

		built = append(built, sortable{
			start: types.NormalizeClock(deviation.StartTime),
			transaction: types.Transaction{
				SourceID:       deviation.SourceID(),
				EmployeeID:     employeeID,
				PersonalNumber: DigitsOnly(employee.PersonalNumber),
				Date:           strings.TrimSpace(deviation.Date),
				TimeCode:       b.mapper.Map(deviation.TimeCode),
				Hours:          DeviationHours(deviation.StartTime, deviation.EndTime),
				Comment:        deviation.Comment,
			},
		})
	}

	sort.SliceStable(built, func(i, j int) bool {
		a, c := built[i], built[j]
		if a.transaction.EmployeeID != c.transaction.EmployeeID {
			return a.transaction.EmployeeID < c.transaction.EmployeeID
		}
		if a.transaction.Date != c.transaction.Date {
			return a.transaction.Date < c.transaction.Date
		}
		if a.start != c.start {
			return a.start < c.start
		}
		return a.transaction.SourceID < c.transaction.SourceID
	})

	for i, item := range built {
		item.transaction.Sequence = i + 1
		transactions = append(transactions, item.transaction)
	}
	return transactions, issues
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// DeviationHours returns end - start in decimal hours, rounded to two places.
// It returns 0 when either time does not parse.
func DeviationHours(start, end string) float64 {
	startSeconds, err := types.ParseClockSeconds(start)
	if err != nil {
		return 0
	}
	endSeconds, err := types.ParseClockSeconds(end)
	if err != nil {
		return 0
	}
	return RoundHours(float64(endSeconds-startSeconds) / 3600)
}

// RoundHours rounds to two decimal places, half away from zero.
func RoundHours(hours float64) float64 {
	return math.Round(hours*100) / 100
}

// DigitsOnly strips every character that is not an ASCII digit.
func DigitsOnly(value string) string {
	var b strings.Builder
	for _, r := range value {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func indexEmployees(employees []types.Employee) map[string]types.Employee {
	register := make(map[string]types.Employee, len(employees))
	for _, employee := range employees {
		register[strings.TrimSpace(employee.ID)] = employee
	}
	return register
}
