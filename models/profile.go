package models

import (
	"time"
)

// Profile carries the marketplace side of an account. For providers IsVerified is
// the admin approval flag; EmailVerified only records that the OTP was confirmed.
type Profile struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	UserID        uint      `json:"user_id" gorm:"uniqueIndex;not null"`
	User          User      `json:"user" gorm:"foreignKey:UserID"`
	Role          Role      `json:"role" gorm:"type:varchar(20);not null;index"`
	IsVerified    bool      `json:"is_verified" gorm:"not null"`
	EmailVerified bool      `json:"email_verified" gorm:"not null"`
	Phone         *string   `json:"phone,omitempty" gorm:"type:varchar(15);uniqueIndex"`
	Location      string    `json:"location,omitempty" gorm:"type:varchar(255)"`
	Latitude      *float64  `json:"latitude,omitempty"`
	Longitude     *float64  `json:"longitude,omitempty"`
	EmailToken    *string   `json:"-" gorm:"type:varchar(6)"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	Provider     *ProviderDetails      `json:"provider,omitempty" gorm:"foreignKey:ProfileID"`
	Categories   []ProviderCategory    `json:"categories,omitempty" gorm:"foreignKey:ProfileID"`
	Certificates []ProviderCertificate `json:"certificates,omitempty" gorm:"foreignKey:ProfileID"`
}

func (p *Profile) IsProvider() bool { return p.Role == RoleProvider }

// ProviderDetails holds the fields only providers have.
type ProviderDetails struct {
	ProfileID  uint      `json:"profile_id" gorm:"primaryKey;autoIncrement:false"`
	Experience string    `json:"experience" gorm:"type:text"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ProviderCategory is a category a provider declared at registration. It is
// publicly listed only once both it and the provider profile are verified.
type ProviderCategory struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	ProfileID  uint      `json:"profile_id" gorm:"not null;uniqueIndex:idx_provider_category"`
	Category   Category  `json:"category" gorm:"type:varchar(50);not null;uniqueIndex:idx_provider_category"`
	IsVerified bool      `json:"is_verified" gorm:"not null"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type ProviderCertificate struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	ProfileID uint      `json:"profile_id" gorm:"not null;index"`
	Category  Category  `json:"category" gorm:"type:varchar(50)"`
	FileRef   string    `json:"file_ref" gorm:"not null"`
	URL       string    `json:"url"`
	FileName  string    `json:"file_name"`
	CreatedAt time.Time `json:"uploaded_at"`
}
