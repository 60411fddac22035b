// =============================================================================
// PAXML Exporter - Schedule Window Estimation
// =============================================================================
//
// Some schedule sources only report how many hours an employee is planned to
// work on a day. The PAXML schedule block wants a start and end time, so the
// window has to be reconstructed. This package does that with an explicit,
// configurable policy that is validated up front and that refuses inputs it
// cannot place, instead of guessing.
//
// ALGORITHM:
//   1. The day starts at DayStart.
//   2. When the hours exceed BreakThresholdHours, a break of BreakMinutes is
//      placed at BreakStart and the end time moves out by the same amount.
//   3. The window must end before midnight and the break must lie inside it.
//
// =============================================================================

package schedule

import (
	"errors"
	"fmt"
	"math"

	"github.com/ginjaninja78/paxml-exporter/internal/types"
)

// ErrEstimation is returned when a window cannot be reconstructed.
var ErrEstimation = errors.New("schedule estimation failed")

// EstimationPolicy describes how a schedule window is rebuilt from hours.
type EstimationPolicy struct {
	// DayStart is the start of the working day (HH:MM).
	// Default: "08:00"
	DayStart string `yaml:"day_start"`

	// BreakStart is when the break begins (HH:MM).
	// Default: "12:00"
	BreakStart string `yaml:"break_start"`

	// BreakMinutes is the break length.
	// Default: 60
	BreakMinutes int `yaml:"break_minutes"`

	// BreakThresholdHours: days with more net hours than this get a break.
	// Default: 5
	BreakThresholdHours float64 `yaml:"break_threshold_hours"`

	// FullDayHours is the net length of a normal working day.
	// Default: 8
	FullDayHours float64 `yaml:"full_day_hours"`
}

// Window is a reconstructed schedule day.
type Window struct {
	StartTime  string
	EndTime    string
	BreakStart string
	BreakEnd   string
}

// DefaultPolicy returns the policy used when the configuration sets nothing.
func DefaultPolicy() EstimationPolicy {
	return EstimationPolicy{}.WithDefaults()
}

// WithDefaults fills unset fields. Breaks are switched off by setting
// break_threshold_hours to 24.
func (p EstimationPolicy) WithDefaults() EstimationPolicy {
	if p.DayStart == "" {
		p.DayStart = "08:00"
	}
	if p.BreakStart == "" {
		p.BreakStart = "12:00"
	}
	if p.BreakMinutes == 0 {
		p.BreakMinutes = 60
	}
	if p.BreakThresholdHours == 0 {
		p.BreakThresholdHours = 5
	}
	if p.FullDayHours == 0 {
		p.FullDayHours = 8
	}
	return p
}

// Validate checks the policy itself, including that a full day fits.
func (p EstimationPolicy) Validate() error {
	start, err := types.ParseClock(p.DayStart)
	if err != nil {
		return fmt.Errorf("day_start: %w", err)
	}
	breakStart, err := types.ParseClock(p.BreakStart)
	if err != nil {
		return fmt.Errorf("break_start: %w", err)
	}
	if breakStart <= start {
		return fmt.Errorf("break_start %s must be after day_start %s", p.BreakStart, p.DayStart)
	}
	if p.BreakMinutes < 0 {
		return fmt.Errorf("break_minutes must not be negative")
	}
	if p.BreakThresholdHours < 0 {
		return fmt.Errorf("break_threshold_hours must not be negative")
	}
	if p.FullDayHours <= 0 || p.FullDayHours > 24 {
		return fmt.Errorf("full_day_hours %.2f must be within (0, 24]", p.FullDayHours)
	}
	if _, err := p.Estimate(p.FullDayHours); err != nil {
		return fmt.Errorf("full day does not fit: %w", err)
	}
	return nil
}

// Estimate reconstructs a window holding the given net hours.
//
// PARAMETERS:
//   - hours: Net planned hours, 0 < hours <= 24.
//
// RETURNS:
//   - The window. BreakStart/BreakEnd are empty when no break applies.
//   - An error wrapping ErrEstimation when the hours are out of range or the
//     window would pass midnight.
func (p EstimationPolicy) Estimate(hours float64) (Window, error) {
	if math.IsNaN(hours) || hours <= 0 || hours > 24 {
		return Window{}, fmt.Errorf("%w: hours %.2f must be within (0, 24]", ErrEstimation, hours)
	}
	start, err := types.ParseClock(p.DayStart)
	if err != nil {
		return Window{}, fmt.Errorf("%w: day_start: %v", ErrEstimation, err)
	}

	workMinutes := int(math.Round(hours * 60))
	end := start + workMinutes

	window := Window{StartTime: types.FormatClock(start)}
	if hours > p.BreakThresholdHours && p.BreakMinutes > 0 {
		breakStart, err := types.ParseClock(p.BreakStart)
		if err != nil {
			return Window{}, fmt.Errorf("%w: break_start: %v", ErrEstimation, err)
		}
		end += p.BreakMinutes
		breakEnd := breakStart + p.BreakMinutes
		if breakStart <= start || breakEnd >= end {
			return Window{}, fmt.Errorf("%w: break %s+%dm does not fit a %.2fh day", ErrEstimation, p.BreakStart, p.BreakMinutes, hours)
		}
		window.BreakStart = types.FormatClock(breakStart)
		window.BreakEnd = types.FormatClock(breakEnd)
	}

	if end >= 24*60 {
		return Window{}, fmt.Errorf("%w: %.2fh from %s ends after midnight", ErrEstimation, hours, p.DayStart)
	}
	window.EndTime = types.FormatClock(end)
	return window, nil
}
