package utils

import (
	"testing"
	"time"
)

func TestParseTimePtr(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want *time.Time
		err  bool
	}{
		{name: "empty means absent", raw: "", want: nil},
		{name: "whitespace means absent", raw: "   ", want: nil},
		{name: "rfc3339", raw: "2026-03-01T09:00:00Z",
			want: timePtr(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))},
		{name: "datetime without zone", raw: "2026-03-01T09:00:00",
			want: timePtr(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))},
		{name: "bare date", raw: "2026-03-01",
			want: timePtr(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))},
		{name: "garbage is an error, not nil", raw: "next tuesday", err: true},
		{name: "wrong order is an error", raw: "01-03-2026", err: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseTimePtr(tc.raw)
			if tc.err {
				if err == nil {
					t.Fatalf("want error for %q, got %v", tc.raw, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if (got == nil) != (tc.want == nil) {
				t.Fatalf("want %v, got %v", tc.want, got)
			}
			if got != nil && !got.Equal(*tc.want) {
				t.Fatalf("want %v, got %v", tc.want, got)
			}
		})
	}
}

func timePtr(t time.Time) *time.Time { return &t }

func TestFormatScore(t *testing.T) {
	if got := FormatScore(nil); got != "0.00" {
		t.Fatalf("nil score: want 0.00, got %s", got)
	}
	score := 9.5
	if got := FormatScore(&score); got != "9.50" {
		t.Fatalf("want 9.50, got %s", got)
	}
	score = 10
	if got := FormatScore(&score); got != "10.00" {
		t.Fatalf("want 10.00, got %s", got)
	}
}

func TestPadNumber(t *testing.T) {
	if got := PadNumber(7, 4); got != "0007" {
		t.Fatalf("want 0007, got %s", got)
	}
	if got := PadNumber(12345, 4); got != "12345" {
		t.Fatalf("overflow must not truncate: got %s", got)
	}
	if got := PadNumber(0, 4); got != "0000" {
		t.Fatalf("want 0000, got %s", got)
	}
}

func TestShortID(t *testing.T) {
	if got := ShortID("abcdef-ghijkl", 6); got != "GHIJKL" {
		t.Fatalf("want GHIJKL, got %s", got)
	}
	if got := ShortID("ab", 6); got != "AB" {
		t.Fatalf("short input returned whole: want AB, got %s", got)
	}
}
