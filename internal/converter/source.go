package converter

import (
	"context"
	"fmt"

	"github.com/ginjaninja78/paxml-exporter/internal/store"
	"github.com/ginjaninja78/paxml-exporter/internal/types"
)

// Load reads everything an export of req needs from src. Schedules are always
// loaded because full-day leave is expanded against them.
func Load(ctx context.Context, src store.Source, req types.ExportRequest) (Input, error) {
	filters := store.FiltersFor(req)

	deviations, err := src.ApprovedDeviations(ctx, filters)
	if err != nil {
		return Input{}, fmt.Errorf("failed to load deviations: %w", err)
	}
	leaves, err := src.ApprovedLeaves(ctx, filters)
	if err != nil {
		return Input{}, fmt.Errorf("failed to load leave requests: %w", err)
	}
	employees, err := src.Employees(ctx)
	if err != nil {
		return Input{}, fmt.Errorf("failed to load employees: %w", err)
	}
	schedules, err := src.Schedules(ctx, filters)
	if err != nil {
		return Input{}, fmt.Errorf("failed to load schedules: %w", err)
	}

	return Input{
		Deviations: deviations,
		Leaves:     leaves,
		Employees:  employees,
		Schedules:  schedules,
	}, nil
}

// ExportFrom loads the records for req and exports them. The error is only
// set when loading fails; validation problems are reported in the Result.
func (e *Exporter) ExportFrom(ctx context.Context, src store.Source, req types.ExportRequest) (Result, error) {
	in, err := Load(ctx, src, req)
	if err != nil {
		return Result{}, err
	}
	return e.Export(req, in), nil
}
