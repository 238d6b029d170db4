package db

import (
	"fmt"

	"github.com/meinhoongagan/homeservice/models"
	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Profile{},
		&models.ProviderDetails{},
		&models.ProviderCategory{},
		&models.ProviderCertificate{},
		&models.VerificationTicket{},
		&models.Service{},
		&models.Booking{},
		&models.Message{},
	)
	if err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}
