package models

import "testing"

func TestBookingStatusCanTransitionTo(t *testing.T) {
	tests := []struct {
		from, to BookingStatus
		want     bool
	}{
		{StatusPending, StatusApproved, true},
		{StatusPending, StatusRejected, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusCompleted, false},
		{StatusPending, StatusPending, false},
		{StatusApproved, StatusCancelled, false},
		{StatusApproved, StatusCompleted, false},
		{StatusRejected, StatusApproved, false},
		{StatusCancelled, StatusPending, false},
		{StatusCompleted, StatusCancelled, false},
	}

	for _, tt := range tests {
		if got := tt.from.CanTransitionTo(tt.to); got != tt.want {
			t.Errorf("%s -> %s: expected %v, got %v", tt.from, tt.to, tt.want, got)
		}
	}
}

func TestBookingStatusIsValid(t *testing.T) {
	for _, s := range []BookingStatus{StatusPending, StatusApproved, StatusRejected, StatusCompleted, StatusCancelled} {
		if !s.IsValid() {
			t.Errorf("expected %s to be valid", s)
		}
	}
	if BookingStatus("confirmed").IsValid() {
		t.Error("expected unknown status to be invalid")
	}
}

func TestBookingBeforeCreateStatus(t *testing.T) {
	b := &Booking{}
	if err := b.BeforeCreate(nil); err != nil || b.Status != StatusPending {
		t.Errorf("expected empty status to default to pending, got %q (%v)", b.Status, err)
	}

	b = &Booking{Status: "confirmed"}
	if err := b.BeforeCreate(nil); err == nil {
		t.Error("expected unknown status to be refused")
	}
}

func TestCategory(t *testing.T) {
	if !CategoryACRepair.IsValid() || CategoryACRepair.Label() != "AC Repair" {
		t.Errorf("unexpected ac_repair label %q", CategoryACRepair.Label())
	}
	if Category("roofing").IsValid() {
		t.Error("expected roofing to be rejected")
	}
	if len(Categories) != 6 {
		t.Errorf("expected 6 categories, got %d", len(Categories))
	}
}
