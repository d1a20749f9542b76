package remindme

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestAddMonths(t *testing.T) {
	tests := []struct {
		from time.Time
		n    int
		want time.Time
	}{
		{time.Date(2024, 1, 31, 8, 0, 0, 0, time.UTC), 1, time.Date(2024, 2, 29, 8, 0, 0, 0, time.UTC)},
		{time.Date(2023, 1, 31, 8, 0, 0, 0, time.UTC), 1, time.Date(2023, 2, 28, 8, 0, 0, 0, time.UTC)},
		{time.Date(2024, 3, 31, 8, 0, 0, 0, time.UTC), 1, time.Date(2024, 4, 30, 8, 0, 0, 0, time.UTC)},
		{time.Date(2024, 11, 15, 8, 0, 0, 0, time.UTC), 3, time.Date(2025, 2, 15, 8, 0, 0, 0, time.UTC)},
		{time.Date(2024, 5, 5, 8, 0, 0, 0, time.UTC), 0, time.Date(2024, 5, 5, 8, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		if got := addMonths(tt.from, tt.n); !got.Equal(tt.want) {
			t.Errorf("addMonths(%v, %d) = %v, want %v", tt.from, tt.n, got, tt.want)
		}
	}
}

func TestResolveDurationHeuristic(t *testing.T) {
	tests := []struct {
		text    string
		wantOK  bool
		wantAt  time.Time
		wantMsg string
	}{
		{"3 h", true, ref.Add(3 * time.Hour), ""},
		{"3 h    spaced   message ", true, ref.Add(3 * time.Hour), "spaced   message"},
		{"0 min now", true, ref, "now"},
		{"0.5 d half", true, ref.Add(12 * time.Hour), "half"},
		{"h 3", false, time.Time{}, ""},
		{"three hours", false, time.Time{}, ""},
		{"", false, time.Time{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			gotAt, gotMsg, ok, err := resolveDurationHeuristic(tt.text, ref)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			got := struct {
				OK  bool
				At  time.Time
				Msg string
			}{ok, gotAt, gotMsg}
			want := struct {
				OK  bool
				At  time.Time
				Msg string
			}{tt.wantOK, tt.wantAt, tt.wantMsg}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("resolveDurationHeuristic(%q) mismatch (-want +got):\n%s", tt.text, diff)
			}
		})
	}
}

func TestResolveDurationStrictRejectsNegative(t *testing.T) {
	_, _, err := resolveDurationStrict("-1 day", ref)
	pe, ok := AsParseError(err)
	if !ok || pe.Kind != KindInvalidValue {
		t.Fatalf("resolveDurationStrict(-1 day) error = %v, want invalid_value", err)
	}
}
