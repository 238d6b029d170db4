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

const maxMessageLength = 2000

type MessagingService struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewMessagingService(db *gorm.DB, log *zap.Logger) *MessagingService {
	return &MessagingService{db: db, log: log}
}

type Conversation struct {
	Booking    *models.Booking  `json:"booking"`
	Messages   []models.Message `json:"messages"`
	IsCustomer bool             `json:"is_customer"`
}

type InboxEntry struct {
	Booking     models.Booking  `json:"booking"`
	LastMessage *models.Message `json:"last_message"`
	UnreadCount int64           `json:"unread_count"`
}

// participant loads the booking and reports whether userID is its customer.
// Anyone who is neither the customer nor the service's provider is refused.
func (s *MessagingService) participant(ctx context.Context, userID, bookingID uint) (*models.Booking, bool, error) {
	var booking models.Booking
	err := withService(s.db.WithContext(ctx)).Preload("Customer").First(&booking, bookingID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, ErrBookingNotFound
	}
	if err != nil {
		return nil, false, err
	}
	switch userID {
	case booking.CustomerID:
		return &booking, true, nil
	case booking.Service.Provider.UserID:
		return &booking, false, nil
	}
	return nil, false, ErrForbidden
}

// Conversation marks every unread message from the other party as read and
// returns the full log, oldest first.
func (s *MessagingService) Conversation(ctx context.Context, viewerID, bookingID uint) (*Conversation, error) {
	booking, isCustomer, err := s.participant(ctx, viewerID, bookingID)
	if err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	if err := s.markRead(db, booking.ID, viewerID); err != nil {
		return nil, err
	}

	var messages []models.Message
	err = db.Preload("Sender").
		Where("booking_id = ?", booking.ID).
		Order("created_at asc, id asc").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return &Conversation{Booking: booking, Messages: messages, IsCustomer: isCustomer}, nil
}

// markRead flags the other party's unread messages on the booking as read.
func (s *MessagingService) markRead(db *gorm.DB, bookingID, viewerID uint) error {
	err := db.Model(&models.Message{}).
		Where("booking_id = ? AND sender_id <> ? AND is_read = ?", bookingID, viewerID, false).
		Update("is_read", true).Error
	if err != nil {
		return fmt.Errorf("mark messages read: %w", err)
	}
	return nil
}

// Post appends a message and marks the other party's messages read.
func (s *MessagingService) Post(ctx context.Context, senderID, bookingID uint, content string) (*models.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, invalidField("content", "this field is required")
	}
	if len([]rune(content)) > maxMessageLength {
		return nil, invalidField("content", fmt.Sprintf("must be at most %d characters", maxMessageLength))
	}

	booking, _, err := s.participant(ctx, senderID, bookingID)
	if err != nil {
		return nil, err
	}

	msg := &models.Message{
		BookingID: booking.ID,
		SenderID:  senderID,
		Content:   content,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(msg).Error; err != nil {
			return fmt.Errorf("create message: %w", err)
		}
		// replying means the sender has seen the thread
		return s.markRead(tx, booking.ID, senderID)
	})
	if err != nil {
		return nil, err
	}
	metrics.MessagesSentTotal.Inc()
	s.log.Debug("message posted", zap.Uint("booking_id", booking.ID), zap.Uint("sender_id", senderID))
	return msg, nil
}

// Inbox summarizes every booking the viewer takes part in: as provider for the
// services they own, otherwise as customer.
func (s *MessagingService) Inbox(ctx context.Context, viewerID uint) ([]InboxEntry, error) {
	db := s.db.WithContext(ctx)

	var profile models.Profile
	err := db.Where("user_id = ?", viewerID).First(&profile).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	q := withService(db).Preload("Customer")
	if profile.IsProvider() {
		q = q.Joins("JOIN services s ON s.id = bookings.service_id").
			Where("s.profile_id = ?", profile.ID)
	} else {
		q = q.Where("bookings.customer_id = ?", viewerID)
	}
	var bookings []models.Booking
	if err := q.Order("bookings.booking_date desc, bookings.id desc").Find(&bookings).Error; err != nil {
		return nil, err
	}

	entries := make([]InboxEntry, 0, len(bookings))
	for _, b := range bookings {
		entry := InboxEntry{Booking: b}

		var last []models.Message
		err := db.Where("booking_id = ?", b.ID).Order("created_at desc, id desc").Limit(1).Find(&last).Error
		if err != nil {
			return nil, err
		}
		if len(last) > 0 {
			entry.LastMessage = &last[0]
		}

		err = db.Model(&models.Message{}).
			Where("booking_id = ? AND sender_id <> ? AND is_read = ?", b.ID, viewerID, false).
			Count(&entry.UnreadCount).Error
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
