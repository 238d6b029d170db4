package services

import (
	"context"
	"errors"
	"strings"

	"github.com/meinhoongagan/homeservice/models"
	"gorm.io/gorm"
)

type ProfileService struct {
	db *gorm.DB
}

func NewProfileService(db *gorm.DB) *ProfileService {
	return &ProfileService{db: db}
}

type LocationInput struct {
	Latitude  *float64 `json:"latitude" form:"latitude" validate:"required,gte=-90,lte=90"`
	Longitude *float64 `json:"longitude" form:"longitude" validate:"required,gte=-180,lte=180"`
	Address   string   `json:"address" form:"address" validate:"max=255"`
}

func (s *ProfileService) Get(ctx context.Context, userID uint) (*models.Profile, error) {
	var profile models.Profile
	err := s.db.WithContext(ctx).
		Preload("User").
		Preload("Provider").
		Preload("Categories").
		Preload("Certificates").
		Where("user_id = ?", userID).
		First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// SaveLocation stores the coordinates and, when given, the address.
func (s *ProfileService) SaveLocation(ctx context.Context, userID uint, in LocationInput) (*models.Profile, error) {
	in.Address = strings.TrimSpace(in.Address)
	if verr := validateStruct(in); verr != nil {
		return nil, verr
	}

	updates := map[string]interface{}{
		"latitude":  *in.Latitude,
		"longitude": *in.Longitude,
	}
	if in.Address != "" {
		updates["location"] = in.Address
	}
	res := s.db.WithContext(ctx).Model(&models.Profile{}).Where("user_id = ?", userID).Updates(updates)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrProfileNotFound
	}
	return s.Get(ctx, userID)
}
