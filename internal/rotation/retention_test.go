package rotation

import (
	"errors"
	"testing"
	"time"
)

func TestRetentionDays(t *testing.T) {
	tests := []struct {
		label       string
		retention   Retention
		wantDays    int
		wantBounded bool
		wantString  string
	}{
		{label: "unset", retention: Retention{}, wantDays: DefaultRetentionDays, wantBounded: true, wantString: "30d"},
		{label: "zero", retention: KeepDays(0), wantDays: 0, wantBounded: true, wantString: "0d"},
		{label: "seven", retention: KeepDays(7), wantDays: 7, wantBounded: true, wantString: "7d"},
		{label: "forever", retention: KeepForever(), wantBounded: false, wantString: "forever"},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			days, bounded := tt.retention.Days()
			if bounded != tt.wantBounded {
				t.Fatalf("bounded = %v, want %v", bounded, tt.wantBounded)
			}
			if bounded && days != tt.wantDays {
				t.Fatalf("days = %d, want %d", days, tt.wantDays)
			}
			if got := tt.retention.String(); got != tt.wantString {
				t.Fatalf("String() = %q, want %q", got, tt.wantString)
			}
		})
	}
}

func TestRetentionCutoffIgnoresTimeOfDay(t *testing.T) {
	today := time.Date(2024, time.March, 15, 23, 59, 59, 0, time.UTC)
	cutoff, ok := KeepDays(30).Cutoff(today)
	if !ok {
		t.Fatal("expected bounded retention")
	}
	want := time.Date(2024, time.February, 14, 0, 0, 0, 0, time.UTC)
	if !cutoff.Equal(want) {
		t.Fatalf("cutoff = %v, want %v", cutoff, want)
	}
}

func TestRetentionCutoffUsesLocalCalendarDay(t *testing.T) {
	zone := time.FixedZone("UTC+2", 2*60*60)
	now := time.Date(2024, time.March, 15, 23, 30, 0, 0, time.UTC).In(zone)
	cutoff, _ := KeepDays(1).Cutoff(now)
	want := time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)
	if !cutoff.Equal(want) {
		t.Fatalf("cutoff = %v, want %v", cutoff, want)
	}
}

func TestRetentionForeverHasNoCutoff(t *testing.T) {
	if _, ok := KeepForever().Cutoff(time.Now()); ok {
		t.Fatal("expected no cutoff for unbounded retention")
	}
}

func TestRetentionValidate(t *testing.T) {
	if err := KeepDays(-1).validate(); !errors.Is(err, ErrInvalidRetention) {
		t.Fatalf("expected ErrInvalidRetention, got %v", err)
	}
	if err := KeepForever().validate(); err != nil {
		t.Fatalf("unexpected error for forever: %v", err)
	}
}
