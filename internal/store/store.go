// Package store defines how the exporter reads source records and how the
// CLI writes them. Implementations live in the gormstore and jsonstore
// subpackages.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ginjaninja78/paxml-exporter/internal/types"
)

var (
	ErrNotFound = errors.New("record not found")
)

// Filters narrows what a Source returns. Empty fields mean "no restriction".
// Date filtering keeps records whose dates cannot be parsed, so the exporter
// can still report them.
type Filters struct {
	EmployeeIDs []string
	StartDate   string
	EndDate     string
}

// EmployeeList returns the non-blank employee ids.
func (f Filters) EmployeeList() []string {
	var ids []string
	for _, id := range f.EmployeeIDs {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// FiltersFor derives source filters from an export request.
func FiltersFor(req types.ExportRequest) Filters {
	return Filters{
		EmployeeIDs: req.EmployeeIDs,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
	}
}

// Source is what the exporter needs from storage.
type Source interface {
	ApprovedDeviations(ctx context.Context, filters Filters) ([]types.Deviation, error)
	ApprovedLeaves(ctx context.Context, filters Filters) ([]types.LeaveRequest, error)
	Employees(ctx context.Context) ([]types.Employee, error)
	Schedules(ctx context.Context, filters Filters) ([]types.ScheduleEntry, error)
}

// Writer stores imported records and applies lifecycle transitions.
type Writer interface {
	SaveEmployees(ctx context.Context, employees []types.Employee) error
	SaveDeviations(ctx context.Context, deviations []types.Deviation) error
	SaveLeaves(ctx context.Context, leaves []types.LeaveRequest) error
	SaveSchedules(ctx context.Context, schedules []types.ScheduleEntry) error

	// UpdateDeviationStatus and UpdateLeaveStatus return ErrNotFound for an
	// unknown id and types.ErrInvalidTransition for a forbidden change.
	UpdateDeviationStatus(ctx context.Context, id uint, to types.Status) error
	UpdateLeaveStatus(ctx context.Context, id uint, to types.Status) error
}

// Store is a full read/write backend.
type Store interface {
	Source
	Writer
	Close() error
}

// =============================================================================
// SHARED HELPERS
// =============================================================================

// MatchEmployee reports whether id passes the employee filter.
func (f Filters) MatchEmployee(id string) bool {
	id = strings.TrimSpace(id)
	restricted := false
	for _, allowed := range f.EmployeeIDs {
		allowed = strings.TrimSpace(allowed)
		if allowed == "" {
			continue
		}
		if allowed == id {
			return true
		}
		restricted = true
	}
	return !restricted
}

// MatchDate reports whether a single date passes the window.
func (f Filters) MatchDate(date string) bool {
	return f.MatchRange(date, date)
}

// MatchRange reports whether [start, end] overlaps the window.
func (f Filters) MatchRange(start, end string) bool {
	from, err := types.ParseDate(start)
	if err != nil {
		return true
	}
	to, err := types.ParseDate(end)
	if err != nil {
		return true
	}
	if lower, ok := parseBound(f.StartDate); ok && to.Before(lower) {
		return false
	}
	if upper, ok := parseBound(f.EndDate); ok && from.After(upper) {
		return false
	}
	return true
}

func parseBound(value string) (time.Time, bool) {
	if strings.TrimSpace(value) == "" {
		return time.Time{}, false
	}
	parsed, err := types.ParseDate(value)
	if err != nil {
		return time.Time{}, false
	}
	return parsed, true
}

// CheckStatus validates a stored status for kind. An empty status is draft.
func CheckStatus(kind types.RecordKind, raw types.Status) (types.Status, error) {
	status, err := types.ParseStatus(string(raw))
	if err != nil {
		return "", err
	}
	if !status.ValidFor(kind) {
		return "", fmt.Errorf("%w: %s is not a %s status", types.ErrUnknownStatus, status, kind)
	}
	return status, nil
}

// ReplaceStatus checks that a save may overwrite stored with incoming. An
// unchanged status is always fine; anything else must be a lifecycle step.
func ReplaceStatus(kind types.RecordKind, stored, incoming types.Status) error {
	if stored == incoming {
		return nil
	}
	_, err := types.Transition(kind, stored, incoming)
	return err
}
