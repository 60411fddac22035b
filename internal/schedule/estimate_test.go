package schedule

import (
	"errors"
	"testing"
)

func TestEstimateWithBreak(t *testing.T) {
	policy := DefaultPolicy()

	window, err := policy.Estimate(8)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := Window{StartTime: "08:00", EndTime: "17:00", BreakStart: "12:00", BreakEnd: "13:00"}
	if window != want {
		t.Fatalf("expected %+v, got %+v", want, window)
	}
}

func TestEstimateShortDayHasNoBreak(t *testing.T) {
	policy := DefaultPolicy()

	window, err := policy.Estimate(4.5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if window.EndTime != "12:30" || window.BreakStart != "" || window.BreakEnd != "" {
		t.Fatalf("unexpected window %+v", window)
	}
}

func TestEstimateRejectsOutOfRange(t *testing.T) {
	policy := DefaultPolicy()

	for _, hours := range []float64{0, -1, 24.5, 16} {
		if _, err := policy.Estimate(hours); !errors.Is(err, ErrEstimation) {
			t.Fatalf("Estimate(%.2f): expected ErrEstimation, got %v", hours, err)
		}
	}
}

func TestEstimateRejectsBreakOutsideWindow(t *testing.T) {
	policy := EstimationPolicy{
		DayStart:            "08:00",
		BreakStart:          "15:00",
		BreakMinutes:        30,
		BreakThresholdHours: 5,
		FullDayHours:        8,
	}

	if _, err := policy.Estimate(6); !errors.Is(err, ErrEstimation) {
		t.Fatalf("expected ErrEstimation, got %v", err)
	}
}

func TestPolicyValidate(t *testing.T) {
	cases := []struct {
		name   string
		policy EstimationPolicy
		ok     bool
	}{
		{"defaults", DefaultPolicy(), true},
		{"bad day start", EstimationPolicy{DayStart: "8am", BreakStart: "12:00", BreakMinutes: 60, BreakThresholdHours: 5, FullDayHours: 8}, false},
		{"break before start", EstimationPolicy{DayStart: "13:00", BreakStart: "12:00", BreakMinutes: 60, BreakThresholdHours: 5, FullDayHours: 8}, false},
		{"day too long", EstimationPolicy{DayStart: "08:00", BreakStart: "12:00", BreakMinutes: 60, BreakThresholdHours: 5, FullDayHours: 25}, false},
		{"full day past midnight", EstimationPolicy{DayStart: "20:00", BreakStart: "21:00", BreakMinutes: 60, BreakThresholdHours: 5, FullDayHours: 8}, false},
	}

	for _, tt := range cases {
		err := tt.policy.Validate()
		if (err == nil) != tt.ok {
			t.Fatalf("%s: err=%v, want ok=%v", tt.name, err, tt.ok)
		}
	}
}
