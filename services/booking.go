package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/meinhoongagan/homeservice/metrics"
	"github.com/meinhoongagan/homeservice/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BookingService struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewBookingService(db *gorm.DB, log *zap.Logger) *BookingService {
	return &BookingService{db: db, log: log}
}

type BookingInput struct {
	BookingTime string `json:"booking_time" form:"booking_time" validate:"omitempty,datetime=15:04"`
	Location    string `json:"location" form:"location" validate:"max=255"`
}

// BookingAction is what a provider may do with a pending booking.
type BookingAction string

const (
	ActionApprove BookingAction = "approve"
	ActionReject  BookingAction = "reject"
)

var actionStatus = map[BookingAction]models.BookingStatus{
	ActionApprove: models.StatusApproved,
	ActionReject:  models.StatusRejected,
}

// withService preloads the booked service even when it has since been deleted.
func withService(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Service", func(tx *gorm.DB) *gorm.DB { return tx.Unscoped() }).
		Preload("Service.Provider.User")
}

// Create books an active service for the customer. Time and location are
// copied from the request as given.
func (s *BookingService) Create(ctx context.Context, customerID, serviceID uint, in BookingInput) (*models.Booking, error) {
	in.BookingTime = strings.TrimSpace(in.BookingTime)
	in.Location = strings.TrimSpace(in.Location)
	if verr := validateStruct(in); verr != nil {
		return nil, verr
	}

	var svc models.Service
	err := s.db.WithContext(ctx).Where("is_active = ?", true).First(&svc, serviceID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrServiceNotFound
	}
	if err != nil {
		return nil, err
	}

	booking := &models.Booking{
		CustomerID:  customerID,
		ServiceID:   svc.ID,
		BookingTime: in.BookingTime,
		Location:    in.Location,
		Status:      models.StatusPending,
	}
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(booking).Error; err != nil {
		return nil, fmt.Errorf("create booking: %w", err)
	}
	booking.Service = svc

	metrics.BookingsCreatedTotal.Inc()
	s.log.Info("booking created",
		zap.Uint("booking_id", booking.ID),
		zap.Uint("service_id", svc.ID),
		zap.Uint("customer_id", customerID),
	)
	return booking, nil
}

// Cancel is only available to the booking's customer while it is pending.
func (s *BookingService) Cancel(ctx context.Context, customerID, bookingID uint) (*models.Booking, error) {
	var booking models.Booking
	err := s.db.WithContext(ctx).Where("customer_id = ?", customerID).First(&booking, bookingID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := s.transition(ctx, &booking, models.StatusCancelled); err != nil {
		return nil, err
	}
	return &booking, nil
}

// UpdateStatus lets the provider owning the booked service approve or reject it.
func (s *BookingService) UpdateStatus(ctx context.Context, providerUserID, bookingID uint, action BookingAction) (*models.Booking, error) {
	next, ok := actionStatus[action]
	if !ok {
		return nil, invalidField("action", "must be approve or reject")
	}

	var booking models.Booking
	err := withService(s.db.WithContext(ctx)).First(&booking, bookingID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, err
	}
	if booking.Service.Provider.UserID != providerUserID {
		return nil, ErrForbidden
	}
	if err := s.transition(ctx, &booking, next); err != nil {
		return nil, err
	}
	return &booking, nil
}

func (s *BookingService) transition(ctx context.Context, booking *models.Booking, next models.BookingStatus) error {
	from := booking.Status
	if err := booking.TransitionTo(s.db.WithContext(ctx), next); err != nil {
		return err
	}
	metrics.BookingTransitionsTotal.WithLabelValues(string(next)).Inc()
	s.log.Info("booking status changed",
		zap.Uint("booking_id", booking.ID),
		zap.String("from", string(from)),
		zap.String("to", string(next)),
	)
	return nil
}

// CustomerBookings lists the customer's bookings, newest first.
func (s *BookingService) CustomerBookings(ctx context.Context, customerID uint) ([]models.Booking, error) {
	var bookings []models.Booking
	err := withService(s.db.WithContext(ctx)).
		Where("customer_id = ?", customerID).
		Order("booking_date desc, id desc").
		Find(&bookings).Error
	return bookings, err
}

type ProviderDashboard struct {
	IsVerified     bool             `json:"is_verified"`
	Bookings       []models.Booking `json:"bookings"`
	PendingCount   int              `json:"pending_count"`
	ApprovedCount  int              `json:"approved_count"`
	CompletedCount int              `json:"completed_count"`
}

// ProviderDashboard lists bookings of the provider's services with status counts.
func (s *BookingService) ProviderDashboard(ctx context.Context, userID uint) (*ProviderDashboard, error) {
	var profile models.Profile
	err := s.db.WithContext(ctx).Where("user_id = ? AND role = ?", userID, models.RoleProvider).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrForbidden
	}
	if err != nil {
		return nil, err
	}

	var bookings []models.Booking
	err = s.db.WithContext(ctx).
		Preload("Customer").
		Preload("Service", func(tx *gorm.DB) *gorm.DB { return tx.Unscoped() }).
		Joins("JOIN services s ON s.id = bookings.service_id").
		Where("s.profile_id = ?", profile.ID).
		Order("bookings.booking_date desc, bookings.id desc").
		Find(&bookings).Error
	if err != nil {
		return nil, err
	}

	d := &ProviderDashboard{IsVerified: profile.IsVerified, Bookings: bookings}
	for _, b := range bookings {
		switch b.Status {
		case models.StatusPending:
			d.PendingCount++
		case models.StatusApproved:
			d.ApprovedCount++
		case models.StatusCompleted:
			d.CompletedCount++
		}
	}
	return d, nil
}
