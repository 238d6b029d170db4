package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/meinhoongagan/homeservice/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const emailTakenMessage = "an account with this email already exists"

// Identity owns user records: creation, password checks and the active flag.
// Emails passed in must already be normalized.
type Identity struct {
	db   *gorm.DB
	cost int
}

func NewIdentity(db *gorm.DB) *Identity {
	return &Identity{db: db, cost: bcrypt.DefaultCost}
}

func (i *Identity) EmailExists(ctx context.Context, email string) (bool, error) {
	var n int64
	if err := i.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// Create inserts a new active user inside tx.
func (i *Identity) Create(tx *gorm.DB, name, email, password string) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), i.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := &models.User{
		Name:     name,
		Email:    email,
		Password: string(hash),
		IsActive: true,
	}
	if err := tx.Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, invalidField("email", emailTakenMessage)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// Authenticate returns the user for a matching email and password. Inactive
// users are returned too; the caller decides what to do with them.
func (i *Identity) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	var user models.User
	err := i.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

func (i *Identity) SetActive(tx *gorm.DB, userID uint, active bool) error {
	return tx.Model(&models.User{}).Where("id = ?", userID).Update("is_active", active).Error
}

// EnsureAdmin creates a verified admin account unless the email is already taken.
func (i *Identity) EnsureAdmin(ctx context.Context, email, password string) error {
	email = NormalizeEmail(email)
	exists, err := i.EmailExists(ctx, email)
	if err != nil || exists {
		return err
	}
	return i.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := i.Create(tx, "Administrator", email, password)
		if err != nil {
			return err
		}
		return tx.Create(&models.Profile{
			UserID:        user.ID,
			Role:          models.RoleAdmin,
			IsVerified:    true,
			EmailVerified: true,
		}).Error
	})
}
