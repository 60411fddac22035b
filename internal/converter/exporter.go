// =============================================================================
// PAXML Exporter - Export Orchestrator
// =============================================================================
//
// This module composes the pipeline for one export request. It is the only
// entry point the CLI and the HTTP API use.
//
// EXPORT PIPELINE:
//   1. Check the request bounds
//   2. Filter the records (status, employees, window, future dates)
//   3. Detect duplicates
//   4. Expand leave requests into days
//   5. Build transactions (and schedule blocks when requested)
//   6. Validate
//   7. Gate on errors: any error blocks the export
//   8. Serialize the document
//
// CONCURRENCY:
//   An Exporter holds only immutable collaborators. Export can be called from
//   any number of goroutines at once.
//
// =============================================================================

package converter

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ginjaninja78/paxml-exporter/internal/codemap"
	"github.com/ginjaninja78/paxml-exporter/internal/config"
	"github.com/ginjaninja78/paxml-exporter/internal/duplicates"
	"github.com/ginjaninja78/paxml-exporter/internal/filter"
	"github.com/ginjaninja78/paxml-exporter/internal/schedule"
	"github.com/ginjaninja78/paxml-exporter/internal/types"
	"github.com/ginjaninja78/paxml-exporter/internal/validation"
	"github.com/ginjaninja78/paxml-exporter/internal/xmlwriter"
)

// =============================================================================
// INPUT / RESULT STRUCTURES
// =============================================================================

// Input is the raw record set an export works on. The caller loads it.
type Input struct {
	Deviations []types.Deviation
	Leaves     []types.LeaveRequest
	Employees  []types.Employee
	Schedules  []types.ScheduleEntry
}

// Result represents the outcome of one export request.
type Result struct {
	// Document is the PAXML document. Empty when Blocked.
	Document string

	// Filename is the suggested file name for the document.
	Filename string

	// Transactions and Schedules are what was (or would have been) exported.
	Transactions []types.Transaction
	Schedules    []types.ScheduleTransaction

	// Issues holds every finding in pipeline order.
	Issues []types.ValidationIssue

	// Summary aggregates Issues.
	Summary validation.Result

	// Blocked is true whenever Summary.HasErrors is.
	Blocked bool
}

// Details returns one line per blocking issue.
func (r Result) Details() []string {
	return validation.Details(r.Issues)
}

// =============================================================================
// EXPORTER STRUCTURE
// =============================================================================

// Exporter runs the export pipeline.
type Exporter struct {
	builder    *Builder
	duplicates *duplicates.Detector
	validator  *validation.Validator
	filter     *filter.Filter
	policy     schedule.EstimationPolicy
	logger     *logrus.Logger
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithClock sets the clock that decides what "today" is.
func WithClock(now func() time.Time) Option {
	return func(e *Exporter) {
		e.filter = filter.New(now)
	}
}

// WithLogger sets the logger.
func WithLogger(logger *logrus.Logger) Option {
	return func(e *Exporter) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithPolicy sets the estimation policy used for full-day leave on days
// without a schedule.
func WithPolicy(policy schedule.EstimationPolicy) Option {
	return func(e *Exporter) {
		e.policy = policy
	}
}

// NewExporter creates an Exporter.
//
// PARAMETERS:
//   - vocabulary: The code tables. Nil selects the built-in vocabulary.
//   - opts: Optional clock, logger and policy.
//
// RETURNS:
//   - A new Exporter.
//   - An error only when the vocabulary or the policy is malformed; both are
//     fatal configuration errors.
func NewExporter(vocabulary *config.Vocabulary, opts ...Option) (*Exporter, error) {
	if vocabulary == nil {
		vocabulary = config.DefaultVocabulary()
	}
	if err := vocabulary.Validate(); err != nil {
		return nil, err
	}

	mapper := codemap.New(vocabulary)
	exporter := &Exporter{
		builder:    NewBuilder(mapper),
		duplicates: duplicates.NewDetector(mapper.Map),
		validator:  validation.NewValidator(vocabulary),
		filter:     filter.New(nil),
		policy:     schedule.DefaultPolicy(),
		logger:     logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(exporter)
	}
	if err := exporter.policy.Validate(); err != nil {
		return nil, fmt.Errorf("invalid schedule policy: %w", err)
	}
	return exporter, nil
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// Export runs the pipeline. Data problems never return an error; they are
// reported as issues and block the export when any of them is an error.
func (e *Exporter) Export(req types.ExportRequest, in Input) Result {
	today := e.filter.Today()
	log := e.logger.WithFields(logrus.Fields{
		"employees":         len(req.EmployeeIDs),
		"start_date":        req.StartDate,
		"end_date":          req.EndDate,
		"include_schedules": req.IncludeSchedules,
	})

	var result Result
	result.Filename = Filename(today, req.IncludeSchedules)

	// =========================================================================
	// STEP 1: CHECK REQUEST BOUNDS
	// =========================================================================

	bounds, err := filter.ParseBounds(req)
	if err != nil {
		result.Issues = []types.ValidationIssue{{
			Severity: types.SeverityError,
			Code:     types.CodeInvalidRequest,
			Message:  fmt.Sprintf("invalid export request: %v", err),
		}}
		result.Summary = validation.Summarize(result.Issues, 0)
		result.Blocked = true
		log.WithError(err).Warn("Rejected export request")
		return result
	}

	// =========================================================================
	// STEP 2: FILTER
	// =========================================================================

	filtered := e.filter.Apply(bounds, in.Deviations, in.Leaves, in.Schedules)
	result.Issues = append(result.Issues, filtered.Issues...)
	log.WithFields(logrus.Fields{
		"deviations": len(filtered.Deviations),
		"leaves":     len(filtered.Leaves),
		"schedules":  len(filtered.Schedules),
	}).Debug("Filtered records")

	// =========================================================================
	// STEP 3: DETECT DUPLICATES
	// =========================================================================

	result.Issues = append(result.Issues, e.duplicates.Detect(filtered.Deviations, filtered.Leaves)...)
	deviations, leaves := e.duplicates.Keep(filtered.Deviations, filtered.Leaves)

	// =========================================================================
	// STEP 4: EXPAND LEAVE REQUESTS
	// =========================================================================

	leaveDays, leaveIssues := ExpandLeaves(leaves, filtered.Schedules, e.policy)
	result.Issues = append(result.Issues, leaveIssues...)
	deviations = append(deviations, leaveDays...)

	// =========================================================================
	// STEP 5: BUILD
	// =========================================================================

	transactions, buildIssues := e.builder.Build(deviations, in.Employees)
	result.Issues = append(result.Issues, buildIssues...)
	result.Transactions = transactions

	var schedules []types.ScheduleTransaction
	if req.IncludeSchedules {
		var scheduleIssues []types.ValidationIssue
		schedules, scheduleIssues = BuildSchedules(filtered.Schedules, in.Employees)
		result.Issues = append(result.Issues, scheduleIssues...)
		result.Schedules = schedules
	}

	// =========================================================================
	// STEP 6: VALIDATE
	// =========================================================================

	result.Issues = append(result.Issues, e.validator.Validate(transactions)...)
	if req.IncludeSchedules {
		result.Issues = append(result.Issues, e.validator.ValidateSchedules(schedules)...)
	}
	result.Summary = validation.Summarize(result.Issues, len(transactions))

	// =========================================================================
	// STEP 7: GATE
	// =========================================================================

	log = log.WithFields(logrus.Fields{
		"transactions": len(transactions),
		"errors":       result.Summary.ErrorCount,
		"warnings":     result.Summary.WarningCount,
		"infos":        result.Summary.InfoCount,
	})
	if result.Summary.HasErrors {
		result.Blocked = true
		log.Warn("Export blocked by validation errors")
		return result
	}

	// =========================================================================
	// STEP 8: SERIALIZE
	// =========================================================================

	result.Document = xmlwriter.Serialize(transactions, schedules)
	log.Info("Export document generated")
	return result
}

// Filename returns the suggested document name for an export made on today.
func Filename(today time.Time, withSchedules bool) string {
	if withSchedules {
		return fmt.Sprintf("paxml-export-with-schedules-%s.xml", today.Format(types.DateLayout))
	}
	return fmt.Sprintf("paxml-export-%s.xml", today.Format(types.DateLayout))
}
