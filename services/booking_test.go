package services

import (
	"context"
	"errors"
	"testing"

	"github.com/meinhoongagan/homeservice/models"
)

type bookingFixture struct {
	e        *testEnv
	owner    *models.User
	customer *models.User
	service  *models.Service
}

func newBookingFixture(t *testing.T) *bookingFixture {
	t.Helper()
	e := newTestEnv(t)
	owner, _ := e.provider(t, "pat@example.com", "9123456780", models.CategoryElectrical)
	return &bookingFixture{
		e:        e,
		owner:    owner,
		customer: e.customer(t, "cus@example.com", "9876543210"),
		service:  e.service(t, owner.ID, models.CategoryElectrical, "Wiring check"),
	}
}

func (f *bookingFixture) book(t *testing.T) *models.Booking {
	t.Helper()
	b, err := f.e.bookings.Create(context.Background(), f.customer.ID, f.service.ID, BookingInput{
		BookingTime: "14:00",
		Location:    "12 MG Road",
	})
	if err != nil {
		t.Fatalf("create booking: %v", err)
	}
	return b
}

func TestCreateBooking(t *testing.T) {
	f := newBookingFixture(t)

	b := f.book(t)
	if b.Status != models.StatusPending || b.BookingTime != "14:00" || b.Location != "12 MG Road" {
		t.Errorf("unexpected booking: %+v", b)
	}
	if b.BookingDate.IsZero() {
		t.Error("expected booking date to be set")
	}
}

func TestCreateBookingRequiresActiveService(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()

	if _, err := f.e.catalog.SetActive(ctx, f.owner.ID, f.service.ID, false); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if _, err := f.e.bookings.Create(ctx, f.customer.ID, f.service.ID, BookingInput{}); !errors.Is(err, ErrServiceNotFound) {
		t.Fatalf("expected ErrServiceNotFound, got %v", err)
	}
	if _, err := f.e.bookings.Create(ctx, f.customer.ID, 9999, BookingInput{}); !errors.Is(err, ErrServiceNotFound) {
		t.Fatalf("expected ErrServiceNotFound for a missing service, got %v", err)
	}
}

func TestCreateBookingValidatesTime(t *testing.T) {
	f := newBookingFixture(t)
	_, err := f.e.bookings.Create(context.Background(), f.customer.ID, f.service.ID, BookingInput{BookingTime: "2pm"})
	assertFieldError(t, err, "booking_time")
}

func TestCancelOnlyWhilePending(t *testing.T) {
	for _, status := range []models.BookingStatus{
		models.StatusApproved,
		models.StatusRejected,
		models.StatusCompleted,
		models.StatusCancelled,
	} {
		t.Run(string(status), func(t *testing.T) {
			f := newBookingFixture(t)
			b := f.book(t)
			f.e.db.Model(&models.Booking{}).Where("id = ?", b.ID).Update("status", status)

			_, err := f.e.bookings.Cancel(context.Background(), f.customer.ID, b.ID)
			if !errors.Is(err, ErrInvalidTransition) {
				t.Fatalf("expected ErrInvalidTransition, got %v", err)
			}
			var stored models.Booking
			f.e.db.First(&stored, b.ID)
			if stored.Status != status {
				t.Errorf("expected status to stay %s, got %s", status, stored.Status)
			}
		})
	}
}

func TestCancelPending(t *testing.T) {
	f := newBookingFixture(t)
	b := f.book(t)

	cancelled, err := f.e.bookings.Cancel(context.Background(), f.customer.ID, b.ID)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if cancelled.Status != models.StatusCancelled {
		t.Errorf("expected cancelled, got %s", cancelled.Status)
	}
}

func TestCancelForeignBooking(t *testing.T) {
	f := newBookingFixture(t)
	b := f.book(t)
	stranger := f.e.customer(t, "stranger@example.com", "9876543299")

	if _, err := f.e.bookings.Cancel(context.Background(), stranger.ID, b.ID); !errors.Is(err, ErrBookingNotFound) {
		t.Fatalf("expected ErrBookingNotFound, got %v", err)
	}
}

func TestUpdateStatusByOwnerOnly(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()
	b := f.book(t)
	other, _ := f.e.provider(t, "other@example.com", "9123456789", models.CategoryElectrical)

	if _, err := f.e.bookings.UpdateStatus(ctx, other.ID, b.ID, ActionApprove); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if _, err := f.e.bookings.UpdateStatus(ctx, f.customer.ID, b.ID, ActionApprove); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for the customer, got %v", err)
	}

	approved, err := f.e.bookings.UpdateStatus(ctx, f.owner.ID, b.ID, ActionApprove)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if approved.Status != models.StatusApproved {
		t.Errorf("expected approved, got %s", approved.Status)
	}

	if _, err := f.e.bookings.UpdateStatus(ctx, f.owner.ID, b.ID, ActionReject); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition once decided, got %v", err)
	}
	if _, err := f.e.bookings.Cancel(ctx, f.customer.ID, b.ID); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition on cancelling an approved booking, got %v", err)
	}
}

func TestUpdateStatusUnknownAction(t *testing.T) {
	f := newBookingFixture(t)
	b := f.book(t)

	_, err := f.e.bookings.UpdateStatus(context.Background(), f.owner.ID, b.ID, "complete")
	assertFieldError(t, err, "action")
}

func TestUpdateStatusAfterServiceDeleted(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()
	b := f.book(t)

	if err := f.e.catalog.Delete(ctx, f.owner.ID, f.service.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := f.e.bookings.UpdateStatus(ctx, f.owner.ID, b.ID, ActionReject); err != nil {
		t.Fatalf("expected the owner to still decide, got %v", err)
	}
	bookings, _ := f.e.bookings.CustomerBookings(ctx, f.customer.ID)
	if len(bookings) != 1 || bookings[0].Service.Name != "Wiring check" {
		t.Errorf("expected booking history to keep the service, got %+v", bookings)
	}
}

func TestProviderDashboardCounts(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()

	first := f.book(t)
	second := f.book(t)
	f.book(t)
	f.e.bookings.UpdateStatus(ctx, f.owner.ID, first.ID, ActionApprove)
	f.e.bookings.UpdateStatus(ctx, f.owner.ID, second.ID, ActionReject)

	d, err := f.e.bookings.ProviderDashboard(ctx, f.owner.ID)
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if len(d.Bookings) != 3 || d.PendingCount != 1 || d.ApprovedCount != 1 || d.CompletedCount != 0 {
		t.Errorf("unexpected dashboard: %+v", d)
	}
	if !d.IsVerified {
		t.Error("expected verified provider")
	}

	if _, err := f.e.bookings.ProviderDashboard(ctx, f.customer.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("expected ErrForbidden for a customer, got %v", err)
	}
}
