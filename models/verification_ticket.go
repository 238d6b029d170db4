package models

import (
	"time"
)

// VerificationTicket tracks one pending email verification. The code itself
// lives on Profile.EmailToken; the ticket bounds how long and how often it may
// be tried.
type VerificationTicket struct {
	ID         string     `json:"id" gorm:"type:varchar(36);primaryKey"`
	ProfileID  uint       `json:"profile_id" gorm:"not null;index"`
	ExpiresAt  time.Time  `json:"expires_at" gorm:"not null;index"`
	Attempts   int        `json:"attempts" gorm:"not null"`
	ConsumedAt *time.Time `json:"consumed_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

func (t *VerificationTicket) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

func (t *VerificationTicket) Open(now time.Time) bool {
	return t.ConsumedAt == nil && !t.Expired(now)
}
