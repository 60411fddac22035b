package types

import "testing"

func TestParseDate(t *testing.T) {
	cases := []struct {
		value string
		ok    bool
	}{
		{"2024-05-10", true},
		{" 2024-05-10 ", true},
		{"2024-02-29", true},
		{"2023-02-29", false},
		{"2024-5-10", false},
		{"10/05/2024", false},
		{"", false},
		{"2024-05-10T08:00:00", false},
	}
	for _, tt := range cases {
		_, err := ParseDate(tt.value)
		if (err == nil) != tt.ok {
			t.Fatalf("ParseDate(%q) err=%v, want ok=%v", tt.value, err, tt.ok)
		}
	}
}

func TestParseClock(t *testing.T) {
	cases := []struct {
		value string
		want  int
		ok    bool
	}{
		{"08:00", 480, true},
		{"16:30:00", 990, true},
		{"00:00", 0, true},
		{"23:59:59", 1439, true},
		{"24:00", 0, false},
		{"8:00", 0, false},
		{"08:60", 0, false},
		{"", 0, false},
		{"noon", 0, false},
		{"+1:00", 0, false},
		{"08:+5", 0, false},
		{"08:00:-1", 0, false},
	}
	for _, tt := range cases {
		got, err := ParseClock(tt.value)
		if (err == nil) != tt.ok {
			t.Fatalf("ParseClock(%q) err=%v, want ok=%v", tt.value, err, tt.ok)
		}
		if tt.ok && got != tt.want {
			t.Fatalf("ParseClock(%q)=%d, want %d", tt.value, got, tt.want)
		}
	}
}

func TestParseClockSeconds(t *testing.T) {
	cases := []struct {
		value string
		want  int
		ok    bool
	}{
		{"08:00", 28800, true},
		{"08:00:30", 28830, true},
		{"23:59:59", 86399, true},
		{"08:00:60", 0, false},
		{" +8:00", 0, false},
	}
	for _, tt := range cases {
		got, err := ParseClockSeconds(tt.value)
		if (err == nil) != tt.ok {
			t.Fatalf("ParseClockSeconds(%q) err=%v, want ok=%v", tt.value, err, tt.ok)
		}
		if tt.ok && got != tt.want {
			t.Fatalf("ParseClockSeconds(%q)=%d, want %d", tt.value, got, tt.want)
		}
	}
}

func TestNormalizeClock(t *testing.T) {
	if got := NormalizeClock("08:00:00"); got != "08:00" {
		t.Fatalf("expected 08:00, got %q", got)
	}
	if got := NormalizeClock(" late "); got != "late" {
		t.Fatalf("expected untouched value, got %q", got)
	}
}
