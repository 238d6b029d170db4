package models

import (
	"gorm.io/gorm"
)

// Service is soft-deleted so bookings keep pointing at what was booked.
type Service struct {
	gorm.Model
	ProfileID   uint     `json:"provider_id" gorm:"not null;index"`
	Provider    Profile  `json:"provider" gorm:"foreignKey:ProfileID"`
	Name        string   `json:"name" gorm:"type:varchar(200);not null"`
	Description string   `json:"description" gorm:"type:text"`
	Category    Category `json:"category" gorm:"type:varchar(50);not null;index"`
	Price       float64  `json:"price" gorm:"type:decimal(10,2);not null"`
	Location    string   `json:"location" gorm:"type:varchar(255)"`
	IsActive    bool     `json:"is_active" gorm:"not null;index"`
}
