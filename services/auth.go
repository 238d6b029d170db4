package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/meinhoongagan/homeservice/metrics"
	"github.com/meinhoongagan/homeservice/models"
	"github.com/meinhoongagan/homeservice/utils"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const certificateFolder = "certificates"

// TokenRevoker stores logged-out token ids. A nil revoker disables logout
// revocation.
type TokenRevoker interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
}

type AuthOptions struct {
	TicketTTL   time.Duration
	MaxAttempts int
}

type AuthService struct {
	db       *gorm.DB
	identity *Identity
	mailer   utils.Mailer
	files    utils.FileStore
	tokens   *TokenIssuer
	revoker  TokenRevoker
	opts     AuthOptions
	log      *zap.Logger
	now      func() time.Time
}

func NewAuthService(
	db *gorm.DB,
	identity *Identity,
	mailer utils.Mailer,
	files utils.FileStore,
	tokens *TokenIssuer,
	revoker TokenRevoker,
	opts AuthOptions,
	log *zap.Logger,
) *AuthService {
	return &AuthService{
		db:       db,
		identity: identity,
		mailer:   mailer,
		files:    files,
		tokens:   tokens,
		revoker:  revoker,
		opts:     opts,
		log:      log,
		now:      time.Now,
	}
}

type RegisterInput struct {
	FullName        string            `json:"full_name" form:"full_name" validate:"required,min=2,max=100"`
	Email           string            `json:"email" form:"email" validate:"required,email,max=254"`
	Phone           string            `json:"phone" form:"phone" validate:"required,phone"`
	Password        string            `json:"password" form:"password" validate:"required,min=8,max=128,strongpassword"`
	ConfirmPassword string            `json:"confirm_password" form:"confirm_password" validate:"required,eqfield=Password"`
	Experience      string            `json:"experience" form:"experience" validate:"max=500"`
	Categories      []models.Category `json:"service_categories" form:"service_categories"`
}

// Registration is the outcome of a successful sign-up. VerificationCode is only
// set when the email could not be delivered.
type Registration struct {
	User             *models.User    `json:"user"`
	Profile          *models.Profile `json:"profile"`
	TicketID         string          `json:"ticket_id"`
	ExpiresAt        time.Time       `json:"expires_at"`
	EmailSent        bool            `json:"email_sent"`
	VerificationCode string          `json:"verification_code,omitempty"`
}

type LoginResult struct {
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expires_at"`
	User      *models.User    `json:"user"`
	Profile   *models.Profile `json:"profile"`
}

func (s *AuthService) RegisterCustomer(ctx context.Context, in RegisterInput) (*Registration, error) {
	return s.register(ctx, models.RoleCustomer, in, nil)
}

// RegisterProvider expects exactly one certificate per declared category, in
// the same order.
func (s *AuthService) RegisterProvider(ctx context.Context, in RegisterInput, certs []CertificateFile) (*Registration, error) {
	return s.register(ctx, models.RoleProvider, in, certs)
}

func (s *AuthService) register(ctx context.Context, role models.Role, in RegisterInput, certs []CertificateFile) (*Registration, error) {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Email = NormalizeEmail(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Experience = strings.TrimSpace(in.Experience)
	if role != models.RoleProvider {
		in.Categories = nil
		in.Experience = ""
		certs = nil
	}

	if err := s.validateRegistration(ctx, role, in, certs); err != nil {
		return nil, err
	}

	code, err := utils.GenerateOTP()
	if err != nil {
		return nil, err
	}

	stored, err := s.storeCertificates(ctx, in.Categories, certs)
	if err != nil {
		return nil, err
	}

	reg := &Registration{}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := s.identity.Create(tx, in.FullName, in.Email, in.Password)
		if err != nil {
			return err
		}

		phone := in.Phone
		profile := &models.Profile{
			UserID:     user.ID,
			Role:       role,
			Phone:      &phone,
			EmailToken: &code,
		}
		if err := tx.Omit(clause.Associations).Create(profile).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return invalidField("phone", "this phone number is already registered")
			}
			return fmt.Errorf("create profile: %w", err)
		}

		if role == models.RoleProvider {
			details := &models.ProviderDetails{ProfileID: profile.ID, Experience: in.Experience}
			if err := tx.Create(details).Error; err != nil {
				return fmt.Errorf("create provider details: %w", err)
			}
			profile.Provider = details

			categories := make([]models.ProviderCategory, len(in.Categories))
			for i, c := range in.Categories {
				categories[i] = models.ProviderCategory{ProfileID: profile.ID, Category: c}
			}
			if err := tx.Create(&categories).Error; err != nil {
				return fmt.Errorf("create provider categories: %w", err)
			}
			profile.Categories = categories

			for i := range stored {
				stored[i].ProfileID = profile.ID
			}
			if err := tx.Create(&stored).Error; err != nil {
				return fmt.Errorf("create certificates: %w", err)
			}
			profile.Certificates = stored
		}

		ticket, err := s.newTicket(tx, profile.ID)
		if err != nil {
			return err
		}

		profile.User = *user
		reg.User = user
		reg.Profile = profile
		reg.TicketID = ticket.ID
		reg.ExpiresAt = ticket.ExpiresAt
		return nil
	})
	if err != nil {
		s.discardCertificates(ctx, stored)
		return nil, err
	}

	metrics.RegistrationsTotal.WithLabelValues(string(role)).Inc()
	s.log.Info("account registered",
		zap.Uint("user_id", reg.User.ID),
		zap.String("role", string(role)),
		zap.Int("categories", len(in.Categories)),
	)

	reg.EmailSent = s.sendCode(ctx, reg.User.Email, code)
	if !reg.EmailSent {
		reg.VerificationCode = code
	}
	return reg, nil
}

func (s *AuthService) validateRegistration(ctx context.Context, role models.Role, in RegisterInput, certs []CertificateFile) error {
	verr := validateStruct(in)
	if verr == nil {
		verr = &ValidationError{Fields: map[string]string{}}
	}

	if role == models.RoleProvider {
		checkProviderFields(in, certs, verr.Fields)
	}

	if _, bad := verr.Fields["email"]; !bad {
		exists, err := s.identity.EmailExists(ctx, in.Email)
		if err != nil {
			return err
		}
		if exists {
			verr.Fields["email"] = emailTakenMessage
		}
	}
	if _, bad := verr.Fields["phone"]; !bad {
		var n int64
		if err := s.db.WithContext(ctx).Model(&models.Profile{}).Where("phone = ?", in.Phone).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			verr.Fields["phone"] = "this phone number is already registered"
		}
	}

	if len(verr.Fields) > 0 {
		return verr
	}
	return nil
}

func checkProviderFields(in RegisterInput, certs []CertificateFile, fields map[string]string) {
	if in.Experience == "" {
		fields["experience"] = "this field is required"
	}

	if len(in.Categories) == 0 {
		fields["service_categories"] = "select at least one service category"
	}
	seen := make(map[models.Category]bool, len(in.Categories))
	for _, c := range in.Categories {
		if !c.IsValid() {
			fields["service_categories"] = fmt.Sprintf("%q is not a valid service category", c)
			break
		}
		if seen[c] {
			fields["service_categories"] = fmt.Sprintf("%q was selected more than once", c)
			break
		}
		seen[c] = true
	}

	if len(certs) != len(in.Categories) {
		fields["certificates"] = fmt.Sprintf(
			"upload exactly one certificate per selected category (%d categories, %d files)",
			len(in.Categories), len(certs))
		return
	}
	for _, f := range certs {
		if msg := checkCertificate(f); msg != "" {
			fields["certificates"] = msg
			return
		}
	}
}

func (s *AuthService) storeCertificates(ctx context.Context, categories []models.Category, certs []CertificateFile) ([]models.ProviderCertificate, error) {
	out := make([]models.ProviderCertificate, 0, len(certs))
	for i, f := range certs {
		file, err := s.files.Save(ctx, utils.Upload{
			Name:        f.Name,
			ContentType: f.ContentType,
			Folder:      certificateFolder,
			Body:        f.Body,
		})
		if err != nil {
			s.discardCertificates(ctx, out)
			return nil, fmt.Errorf("store certificate %s: %w", f.Name, err)
		}
		out = append(out, models.ProviderCertificate{
			Category: categories[i],
			FileRef:  file.Ref,
			URL:      file.URL,
			FileName: f.Name,
		})
	}
	return out, nil
}

func (s *AuthService) discardCertificates(ctx context.Context, certs []models.ProviderCertificate) {
	for _, c := range certs {
		if err := s.files.Delete(ctx, c.FileRef); err != nil {
			s.log.Warn("failed to delete orphaned certificate", zap.String("ref", c.FileRef), zap.Error(err))
		}
	}
}

func (s *AuthService) newTicket(tx *gorm.DB, profileID uint) (*models.VerificationTicket, error) {
	ticket := &models.VerificationTicket{
		ID:        uuid.NewString(),
		ProfileID: profileID,
		ExpiresAt: s.now().Add(s.opts.TicketTTL),
	}
	if err := tx.Create(ticket).Error; err != nil {
		return nil, fmt.Errorf("create verification ticket: %w", err)
	}
	return ticket, nil
}

// sendCode emails the OTP. Failures are logged and reported as false, never
// returned.
func (s *AuthService) sendCode(ctx context.Context, email, code string) bool {
	if err := s.mailer.Send(ctx, utils.VerificationEmail(email, code)); err != nil {
		metrics.EmailFailuresTotal.Inc()
		s.log.Warn("verification email not sent", zap.String("email", email), zap.Error(err))
		return false
	}
	return true
}

// VerifyEmail checks code against the profile behind the ticket. Wrong codes
// count against the ticket and leave the pending state untouched.
func (s *AuthService) VerifyEmail(ctx context.Context, ticketID, code string) (*models.Profile, error) {
	if ticketID == "" {
		metrics.VerificationsTotal.WithLabelValues("not_found").Inc()
		return nil, ErrVerificationNotFound
	}

	db := s.db.WithContext(ctx)
	var ticket models.VerificationTicket
	err := db.First(&ticket, "id = ?", ticketID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && ticket.ConsumedAt != nil) {
		metrics.VerificationsTotal.WithLabelValues("not_found").Inc()
		return nil, ErrVerificationNotFound
	}
	if err != nil {
		return nil, err
	}

	now := s.now()
	if ticket.Expired(now) {
		metrics.VerificationsTotal.WithLabelValues("expired").Inc()
		return nil, ErrVerificationExpired
	}
	// Reserve the attempt before comparing so parallel guesses cannot all pass
	// the limit check.
	res := db.Model(&models.VerificationTicket{}).
		Where("id = ? AND consumed_at IS NULL AND attempts < ?", ticket.ID, s.opts.MaxAttempts).
		UpdateColumn("attempts", gorm.Expr("attempts + ?", 1))
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		metrics.VerificationsTotal.WithLabelValues("exhausted").Inc()
		return nil, ErrTooManyAttempts
	}

	var profile models.Profile
	err = db.First(&profile, ticket.ProfileID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		metrics.VerificationsTotal.WithLabelValues("not_found").Inc()
		return nil, ErrVerificationNotFound
	}
	if err != nil {
		return nil, err
	}

	if profile.EmailToken == nil || code != *profile.EmailToken {
		metrics.VerificationsTotal.WithLabelValues("invalid_code").Inc()
		return nil, ErrInvalidCode
	}

	updates := map[string]interface{}{
		"email_verified": true,
		"email_token":    nil,
	}
	// providers stay unverified until an admin approves them
	if !profile.IsProvider() {
		updates["is_verified"] = true
	}
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Profile{}).Where("id = ?", profile.ID).Updates(updates).Error; err != nil {
			return err
		}
		return tx.Model(&ticket).Update("consumed_at", now).Error
	})
	if err != nil {
		return nil, fmt.Errorf("complete verification: %w", err)
	}

	metrics.VerificationsTotal.WithLabelValues("success").Inc()
	var verified models.Profile
	if err := db.Preload("User").First(&verified, profile.ID).Error; err != nil {
		return nil, err
	}
	return &verified, nil
}

// Login authenticates and issues an access token. Accounts with an unconfirmed
// email get a VerificationRequiredError instead.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.identity.Authenticate(ctx, NormalizeEmail(email), password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
		}
		return nil, err
	}
	if !user.IsActive {
		metrics.LoginsTotal.WithLabelValues("inactive").Inc()
		return nil, ErrAccountInactive
	}

	profile, err := s.profileFor(ctx, user)
	if err != nil {
		return nil, err
	}

	if !profile.EmailVerified {
		metrics.LoginsTotal.WithLabelValues("unverified").Inc()
		return nil, s.resumeVerification(ctx, user, profile)
	}

	token, exp, err := s.tokens.Issue(user, profile.Role)
	if err != nil {
		return nil, err
	}
	metrics.LoginsTotal.WithLabelValues("success").Inc()
	profile.User = *user
	return &LoginResult{Token: token, ExpiresAt: exp, User: user, Profile: profile}, nil
}

// profileFor loads the user's profile. Accounts created without one are
// treated as verified customers.
func (s *AuthService) profileFor(ctx context.Context, user *models.User) (*models.Profile, error) {
	var profile models.Profile
	err := s.db.WithContext(ctx).Where("user_id = ?", user.ID).First(&profile).Error
	if err == nil {
		return &profile, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	profile = models.Profile{
		UserID:        user.ID,
		Role:          models.RoleCustomer,
		IsVerified:    true,
		EmailVerified: true,
	}
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(&profile).Error; err != nil {
		return nil, fmt.Errorf("create default profile: %w", err)
	}
	s.log.Info("created default customer profile", zap.Uint("user_id", user.ID))
	return &profile, nil
}

// resumeVerification resends the code of an open ticket, or rotates the code and
// sends a new one when the previous ticket is spent.
func (s *AuthService) resumeVerification(ctx context.Context, user *models.User, profile *models.Profile) error {
	now := s.now()
	db := s.db.WithContext(ctx)

	var open models.VerificationTicket
	err := db.Where("profile_id = ? AND attempts < ?", profile.ID, s.opts.MaxAttempts).
		Order("created_at desc").
		First(&open).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	if err == nil && open.Open(now) && profile.EmailToken != nil {
		verr := &VerificationRequiredError{TicketID: open.ID}
		if !s.sendCode(ctx, user.Email, *profile.EmailToken) {
			verr.VerificationCode = *profile.EmailToken
		}
		return verr
	}

	code, err := utils.GenerateOTP()
	if err != nil {
		return err
	}
	var ticket *models.VerificationTicket
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Profile{}).Where("id = ?", profile.ID).Update("email_token", code).Error; err != nil {
			return err
		}
		ticket, err = s.newTicket(tx, profile.ID)
		return err
	})
	if err != nil {
		return fmt.Errorf("reissue verification: %w", err)
	}

	verr := &VerificationRequiredError{TicketID: ticket.ID}
	if !s.sendCode(ctx, user.Email, code) {
		verr.VerificationCode = code
	}
	return verr
}

// Logout revokes the token id until the token's own expiry.
func (s *AuthService) Logout(ctx context.Context, tokenID string, expiresAt time.Time) error {
	if s.revoker == nil || tokenID == "" {
		return nil
	}
	return s.revoker.Revoke(ctx, tokenID, expiresAt.Sub(s.now()))
}

// PurgeTickets removes consumed and expired verification tickets.
func (s *AuthService) PurgeTickets(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).
		Where("consumed_at IS NOT NULL OR expires_at <= ?", s.now()).
		Delete(&models.VerificationTicket{})
	return res.RowsAffected, res.Error
}
