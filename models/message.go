package models

import (
	"time"
)

type Message struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	BookingID uint      `json:"booking_id" gorm:"not null;index"`
	SenderID  uint      `json:"sender_id" gorm:"not null;index"`
	Sender    User      `json:"sender" gorm:"foreignKey:SenderID"`
	Content   string    `json:"content" gorm:"type:text;not null"`
	IsRead    bool      `json:"is_read" gorm:"not null"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
}
