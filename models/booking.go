package models

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusApproved  BookingStatus = "approved"
	StatusRejected  BookingStatus = "rejected"
	StatusCompleted BookingStatus = "completed"
	StatusCancelled BookingStatus = "cancelled"
)

var ErrInvalidTransition = errors.New("invalid booking status transition")

// Completed is a valid status but nothing moves a booking into it yet.
var bookingTransitions = map[BookingStatus][]BookingStatus{
	StatusPending: {StatusApproved, StatusRejected, StatusCancelled},
}

func (s BookingStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	for _, allowed := range bookingTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Booking snapshots the requested time and location. BookingDate is set once on
// creation and never updated.
type Booking struct {
	ID          uint          `json:"id" gorm:"primaryKey"`
	CustomerID  uint          `json:"customer_id" gorm:"not null;index"`
	Customer    User          `json:"customer" gorm:"foreignKey:CustomerID"`
	ServiceID   uint          `json:"service_id" gorm:"not null;index"`
	Service     Service       `json:"service" gorm:"foreignKey:ServiceID"`
	BookingDate time.Time     `json:"booking_date" gorm:"not null;autoCreateTime"`
	BookingTime string        `json:"booking_time" gorm:"type:varchar(5)"`
	Location    string        `json:"location" gorm:"type:varchar(255)"`
	Status      BookingStatus `json:"status" gorm:"type:varchar(20);not null;index"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

func (b *Booking) BeforeCreate(tx *gorm.DB) error {
	if b.Status == "" {
		b.Status = StatusPending
	}
	if !b.Status.IsValid() {
		return fmt.Errorf("unknown booking status %q", b.Status)
	}
	return nil
}

// TransitionTo moves the booking to next when the state machine allows it. Only
// the status column is written.
func (b *Booking) TransitionTo(tx *gorm.DB, next BookingStatus) error {
	if !b.Status.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s to %s", ErrInvalidTransition, b.Status, next)
	}
	if err := tx.Model(&Booking{}).Where("id = ?", b.ID).Update("status", next).Error; err != nil {
		return err
	}
	b.Status = next
	return nil
}
