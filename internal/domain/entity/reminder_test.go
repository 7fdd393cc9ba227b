package entity

import (
	"testing"
)

func TestPriorityFor_Tiers(t *testing.T) {
	tests := []struct {
		amount float64
		want   ReminderPriority
	}{
		{amount: 0, want: PriorityNone},
		{amount: 23.999, want: PriorityNone},
		{amount: 24, want: PriorityLow},
		{amount: 47.9, want: PriorityLow},
		{amount: 48, want: PriorityMedium},
		{amount: 72, want: PriorityHigh},
		{amount: 119.9, want: PriorityHigh},
		{amount: 120, want: PriorityUrgent},
		{amount: 168, want: PriorityUrgent},
	}

	for _, tt := range tests {
		if got := PriorityFor(tt.amount, 24); got != tt.want {
			t.Errorf("PriorityFor(%v, 24) = %s, want %s", tt.amount, got, tt.want)
		}
	}
}

func TestNeedsReminder_Boundary(t *testing.T) {
	if NeedsReminder(23.999, 24) {
		t.Error("23.999 must not need a reminder under daily unit 24")
	}
	if !NeedsReminder(24.0, 24) {
		t.Error("24.0 must need a reminder under daily unit 24")
	}
}

func TestPriorityFor_CustomDailyUnit(t *testing.T) {
	if got := PriorityFor(10, 2); got != PriorityUrgent {
		t.Errorf("PriorityFor(10, 2) = %s, want URGENT", got)
	}
	if got := PriorityFor(3, 2); got != PriorityLow {
		t.Errorf("PriorityFor(3, 2) = %s, want LOW", got)
	}
}

func TestToneMarkers(t *testing.T) {
	for _, p := range []ReminderPriority{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent} {
		if p.ToneMarker() == "" {
			t.Errorf("priority %s has no tone marker", p)
		}
	}
	if PriorityNone.ToneMarker() != "" {
		t.Error("NONE must carry no tone marker")
	}
}
