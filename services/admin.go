package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/meinhoongagan/homeservice/metrics"
	"github.com/meinhoongagan/homeservice/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type AdminService struct {
	db       *gorm.DB
	identity *Identity
	log      *zap.Logger
}

func NewAdminService(db *gorm.DB, identity *Identity, log *zap.Logger) *AdminService {
	return &AdminService{db: db, identity: identity, log: log}
}

type AdminStats struct {
	Users            int64 `json:"users"`
	Customers        int64 `json:"customers"`
	Providers        int64 `json:"providers"`
	PendingProviders int64 `json:"pending_providers"`
	Services         int64 `json:"services"`
	Bookings         int64 `json:"bookings"`
	PendingBookings  int64 `json:"pending_bookings"`
}

func (s *AdminService) Dashboard(ctx context.Context) (*AdminStats, error) {
	db := s.db.WithContext(ctx)
	var st AdminStats
	counts := []struct {
		dst   *int64
		query *gorm.DB
	}{
		{&st.Users, db.Model(&models.User{})},
		{&st.Customers, db.Model(&models.Profile{}).Where("role = ?", models.RoleCustomer)},
		{&st.Providers, db.Model(&models.Profile{}).Where("role = ?", models.RoleProvider)},
		{&st.PendingProviders, db.Model(&models.Profile{}).Where("role = ? AND is_verified = ?", models.RoleProvider, false)},
		{&st.Services, db.Model(&models.Service{})},
		{&st.Bookings, db.Model(&models.Booking{})},
		{&st.PendingBookings, db.Model(&models.Booking{}).Where("status = ?", models.StatusPending)},
	}
	for _, c := range counts {
		if err := c.query.Count(c.dst).Error; err != nil {
			return nil, fmt.Errorf("admin dashboard: %w", err)
		}
	}
	return &st, nil
}

// ListUsers returns every profile with its user, newest first.
func (s *AdminService) ListUsers(ctx context.Context) ([]models.Profile, error) {
	var profiles []models.Profile
	err := s.db.WithContext(ctx).Preload("User").Order("id desc").Find(&profiles).Error
	return profiles, err
}

// ProviderFilter narrows ListProviders: "pending", "verified" or empty for all.
type ProviderFilter string

const (
	ProvidersAll      ProviderFilter = ""
	ProvidersPending  ProviderFilter = "pending"
	ProvidersVerified ProviderFilter = "verified"
)

func (s *AdminService) ListProviders(ctx context.Context, filter ProviderFilter) ([]models.Profile, error) {
	q := s.db.WithContext(ctx).
		Preload("User").
		Preload("Categories").
		Where("role = ?", models.RoleProvider)
	switch filter {
	case ProvidersPending:
		q = q.Where("is_verified = ?", false)
	case ProvidersVerified:
		q = q.Where("is_verified = ?", true)
	case ProvidersAll:
	default:
		return nil, invalidField("status", "must be pending or verified")
	}
	var profiles []models.Profile
	err := q.Order("created_at desc").Find(&profiles).Error
	return profiles, err
}

type ProviderDetail struct {
	Profile  *models.Profile  `json:"profile"`
	Services []models.Service `json:"services"`
}

func (s *AdminService) Provider(ctx context.Context, profileID uint) (*ProviderDetail, error) {
	profile, err := s.loadProvider(s.db.WithContext(ctx).
		Preload("User").
		Preload("Provider").
		Preload("Categories").
		Preload("Certificates"), profileID)
	if err != nil {
		return nil, err
	}
	var services []models.Service
	if err := s.db.WithContext(ctx).Where("profile_id = ?", profileID).Order("created_at desc").Find(&services).Error; err != nil {
		return nil, err
	}
	return &ProviderDetail{Profile: profile, Services: services}, nil
}

func (s *AdminService) loadProvider(q *gorm.DB, profileID uint) (*models.Profile, error) {
	var profile models.Profile
	err := q.Where("role = ?", models.RoleProvider).First(&profile, profileID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProviderNotFound
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// ApproveProvider marks the provider profile verified. Category approvals are
// separate; a provider is listed under a category only when both are verified.
func (s *AdminService) ApproveProvider(ctx context.Context, profileID uint) (*models.Profile, error) {
	profile, err := s.loadProvider(s.db.WithContext(ctx), profileID)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(&models.Profile{}).Where("id = ?", profile.ID).Update("is_verified", true).Error; err != nil {
		return nil, err
	}
	profile.IsVerified = true
	metrics.ProviderDecisionsTotal.WithLabelValues("provider", "approved").Inc()
	s.log.Info("provider approved", zap.Uint("profile_id", profileID))
	return profile, nil
}

// RejectProvider clears the verified flag and optionally deactivates the
// provider's account, which blocks future logins.
func (s *AdminService) RejectProvider(ctx context.Context, profileID uint, deactivate bool) (*models.Profile, error) {
	profile, err := s.loadProvider(s.db.WithContext(ctx), profileID)
	if err != nil {
		return nil, err
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Profile{}).Where("id = ?", profile.ID).Update("is_verified", false).Error; err != nil {
			return err
		}
		if deactivate {
			return s.identity.SetActive(tx, profile.UserID, false)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	profile.IsVerified = false
	metrics.ProviderDecisionsTotal.WithLabelValues("provider", "rejected").Inc()
	s.log.Info("provider rejected", zap.Uint("profile_id", profileID), zap.Bool("deactivated", deactivate))
	return profile, nil
}

// SetCategoryVerified approves or rejects one declared category of a provider.
func (s *AdminService) SetCategoryVerified(ctx context.Context, profileID uint, category models.Category, verified bool) (*models.ProviderCategory, error) {
	var pc models.ProviderCategory
	err := s.db.WithContext(ctx).
		Where("profile_id = ? AND category = ?", profileID, category).
		First(&pc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCategoryNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(&models.ProviderCategory{}).Where("id = ?", pc.ID).Update("is_verified", verified).Error; err != nil {
		return nil, err
	}
	pc.IsVerified = verified

	decision := "rejected"
	if verified {
		decision = "approved"
	}
	metrics.ProviderDecisionsTotal.WithLabelValues("category", decision).Inc()
	s.log.Info("provider category reviewed",
		zap.Uint("profile_id", profileID),
		zap.String("category", string(category)),
		zap.String("decision", decision),
	)
	return &pc, nil
}

// ListServices returns every service, active or not, with its provider.
func (s *AdminService) ListServices(ctx context.Context) ([]models.Service, error) {
	var services []models.Service
	err := s.db.WithContext(ctx).
		Preload("Provider.User").
		Order("created_at desc").
		Find(&services).Error
	return services, err
}
