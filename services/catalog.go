package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/meinhoongagan/homeservice/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CatalogService struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewCatalogService(db *gorm.DB, log *zap.Logger) *CatalogService {
	return &CatalogService{db: db, log: log}
}

type ServiceInput struct {
	Name        string          `json:"name" validate:"required,max=200"`
	Description string          `json:"description" validate:"max=2000"`
	Category    models.Category `json:"category" validate:"required,category"`
	Price       float64         `json:"price" validate:"gte=0"`
	Location    string          `json:"location" validate:"max=255"`
}

// ServiceUpdate changes only the fields that are set.
type ServiceUpdate struct {
	Name        *string          `json:"name" validate:"omitempty,min=1,max=200"`
	Description *string          `json:"description" validate:"omitempty,max=2000"`
	Category    *models.Category `json:"category" validate:"omitempty,category"`
	Price       *float64         `json:"price" validate:"omitempty,gte=0"`
	Location    *string          `json:"location" validate:"omitempty,max=255"`
}

type CategoryInfo struct {
	Key   models.Category `json:"key"`
	Label string          `json:"label"`
}

func (s *CatalogService) Categories() []CategoryInfo {
	out := make([]CategoryInfo, len(models.Categories))
	for i, c := range models.Categories {
		out[i] = CategoryInfo{Key: c, Label: c.Label()}
	}
	return out
}

// ProvidersByCategory lists providers whose profile and category claim are
// both verified.
func (s *CatalogService) ProvidersByCategory(ctx context.Context, category models.Category) ([]models.Profile, error) {
	if !category.IsValid() {
		return nil, ErrCategoryNotFound
	}
	var profiles []models.Profile
	err := s.db.WithContext(ctx).
		Preload("User").
		Preload("Provider").
		Joins("JOIN provider_categories pc ON pc.profile_id = profiles.id").
		Where("pc.category = ? AND pc.is_verified = ?", category, true).
		Where("profiles.role = ? AND profiles.is_verified = ?", models.RoleProvider, true).
		Order("profiles.id").
		Find(&profiles).Error
	if err != nil {
		return nil, fmt.Errorf("providers by category: %w", err)
	}
	return profiles, nil
}

type ProviderPage struct {
	Profile  *models.Profile  `json:"profile"`
	Services []models.Service `json:"services"`
}

// ProviderPage is the public view of a verified provider and its active services.
func (s *CatalogService) ProviderPage(ctx context.Context, profileID uint) (*ProviderPage, error) {
	var profile models.Profile
	err := s.db.WithContext(ctx).
		Preload("User").
		Preload("Provider").
		Preload("Categories", "is_verified = ?", true).
		Where("role = ? AND is_verified = ?", models.RoleProvider, true).
		First(&profile, profileID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProviderNotFound
	}
	if err != nil {
		return nil, err
	}

	var services []models.Service
	err = s.db.WithContext(ctx).
		Where("profile_id = ? AND is_active = ?", profileID, true).
		Order("created_at desc").
		Find(&services).Error
	if err != nil {
		return nil, err
	}
	return &ProviderPage{Profile: &profile, Services: services}, nil
}

type SearchQuery struct {
	Text     string          `query:"q"`
	Category models.Category `query:"category"`
	Location string          `query:"location"`
}

// Search matches active services of verified providers, limited to categories
// the provider declared and an admin approved.
func (s *CatalogService) Search(ctx context.Context, q SearchQuery) ([]models.Service, error) {
	if q.Category != "" && !q.Category.IsValid() {
		return nil, invalidField("category", fmt.Sprintf("%q is not a valid service category", q.Category))
	}

	tx := s.db.WithContext(ctx).
		Preload("Provider.User").
		Joins("JOIN profiles p ON p.id = services.profile_id").
		Joins("JOIN provider_categories pc ON pc.profile_id = services.profile_id AND pc.category = services.category").
		Where("services.is_active = ?", true).
		Where("p.role = ? AND p.is_verified = ?", models.RoleProvider, true).
		Where("pc.is_verified = ?", true)
	if text := strings.TrimSpace(q.Text); text != "" {
		like := "%" + strings.ToLower(text) + "%"
		tx = tx.Where("LOWER(services.name) LIKE ? OR LOWER(services.description) LIKE ?", like, like)
	}
	if q.Category != "" {
		tx = tx.Where("services.category = ?", q.Category)
	}
	if loc := strings.TrimSpace(q.Location); loc != "" {
		tx = tx.Where("LOWER(services.location) LIKE ?", "%"+strings.ToLower(loc)+"%")
	}

	var services []models.Service
	if err := tx.Order("services.created_at desc").Find(&services).Error; err != nil {
		return nil, fmt.Errorf("search services: %w", err)
	}
	return services, nil
}

// providerProfile returns the provider profile owned by userID.
func (s *CatalogService) providerProfile(ctx context.Context, userID uint) (*models.Profile, error) {
	var profile models.Profile
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}
	if !profile.IsProvider() {
		return nil, ErrForbidden
	}
	return &profile, nil
}

func (s *CatalogService) ListOwn(ctx context.Context, userID uint) ([]models.Service, error) {
	profile, err := s.providerProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	var services []models.Service
	err = s.db.WithContext(ctx).Where("profile_id = ?", profile.ID).Order("created_at desc").Find(&services).Error
	return services, err
}

// Add creates an active service. Only verified providers may add services.
func (s *CatalogService) Add(ctx context.Context, userID uint, in ServiceInput) (*models.Service, error) {
	in.Name = strings.TrimSpace(in.Name)
	if verr := validateStruct(in); verr != nil {
		return nil, verr
	}
	profile, err := s.providerProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !profile.IsVerified {
		return nil, ErrProviderNotVerified
	}

	svc := &models.Service{
		ProfileID:   profile.ID,
		Name:        in.Name,
		Description: in.Description,
		Category:    in.Category,
		Price:       in.Price,
		Location:    in.Location,
		IsActive:    true,
	}
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(svc).Error; err != nil {
		return nil, fmt.Errorf("create service: %w", err)
	}
	s.log.Info("service added", zap.Uint("service_id", svc.ID), zap.Uint("profile_id", profile.ID))
	return svc, nil
}

// owned loads a service only if it belongs to the provider behind userID.
func (s *CatalogService) owned(ctx context.Context, userID, serviceID uint) (*models.Profile, *models.Service, error) {
	profile, err := s.providerProfile(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	var svc models.Service
	err = s.db.WithContext(ctx).Where("profile_id = ?", profile.ID).First(&svc, serviceID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, ErrServiceNotFound
	}
	if err != nil {
		return nil, nil, err
	}
	return profile, &svc, nil
}

func (s *CatalogService) Update(ctx context.Context, userID, serviceID uint, in ServiceUpdate) (*models.Service, error) {
	if verr := validateStruct(in); verr != nil {
		return nil, verr
	}
	_, svc, err := s.owned(ctx, userID, serviceID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if in.Name != nil && strings.TrimSpace(*in.Name) != "" {
		updates["name"] = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		updates["description"] = *in.Description
	}
	if in.Category != nil {
		updates["category"] = *in.Category
	}
	if in.Price != nil {
		updates["price"] = *in.Price
	}
	if in.Location != nil {
		updates["location"] = *in.Location
	}
	if len(updates) == 0 {
		return svc, nil
	}
	if err := s.db.WithContext(ctx).Model(&models.Service{}).Where("id = ?", svc.ID).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("update service: %w", err)
	}
	if err := s.db.WithContext(ctx).First(svc, svc.ID).Error; err != nil {
		return nil, err
	}
	return svc, nil
}

// SetActive toggles visibility. Activating requires a verified provider;
// deactivating never does.
func (s *CatalogService) SetActive(ctx context.Context, userID, serviceID uint, active bool) (*models.Service, error) {
	profile, svc, err := s.owned(ctx, userID, serviceID)
	if err != nil {
		return nil, err
	}
	if active && !profile.IsVerified {
		return nil, ErrProviderNotVerified
	}
	if err := s.db.WithContext(ctx).Model(&models.Service{}).Where("id = ?", svc.ID).Update("is_active", active).Error; err != nil {
		return nil, err
	}
	svc.IsActive = active
	return svc, nil
}

// Delete soft-deletes the service; existing bookings keep their reference.
func (s *CatalogService) Delete(ctx context.Context, userID, serviceID uint) error {
	_, svc, err := s.owned(ctx, userID, serviceID)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Delete(svc).Error; err != nil {
		return fmt.Errorf("delete service: %w", err)
	}
	s.log.Info("service deleted", zap.Uint("service_id", svc.ID))
	return nil
}
