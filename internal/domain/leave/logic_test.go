package leave

import (
	"testing"
	"time"
)

func TestCalculateDays(t *testing.T) {
	tests := []struct {
		name  string
		start time.Time
		end   time.Time
		want  int
	}{
		{
			name:  "single day",
			start: time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC),
			end:   time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC),
			want:  1,
		},
		{
			name:  "three days inclusive",
			start: time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
			end:   time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC),
			want:  3,
		},
		{
			name:  "across month boundary",
			start: time.Date(2025, 1, 30, 0, 0, 0, 0, time.UTC),
			end:   time.Date(2025, 2, 2, 0, 0, 0, 0, time.UTC),
			want:  4,
		},
		{
			name:  "ignores time-of-day",
			start: time.Date(2025, 5, 1, 23, 30, 0, 0, time.UTC),
			end:   time.Date(2025, 5, 3, 0, 15, 0, 0, time.UTC),
			want:  3,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			days, err := CalculateDays(tc.start, tc.end)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if days != tc.want {
				t.Fatalf("expected %d days, got %d", tc.want, days)
			}
		})
	}
}

func TestCalculateDaysInvalid(t *testing.T) {
	start := time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 2, 9, 0, 0, 0, 0, time.UTC)

	if _, err := CalculateDays(start, end); err == nil {
		t.Fatal("expected error for end before start")
	}
}
