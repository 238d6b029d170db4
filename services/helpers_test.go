package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/meinhoongagan/homeservice/db/dbtest"
	"github.com/meinhoongagan/homeservice/models"
	"github.com/meinhoongagan/homeservice/utils"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const testPassword = "Secret#123"

type stubMailer struct {
	mu   sync.Mutex
	sent []utils.Email
	err  error
}

func (m *stubMailer) Send(_ context.Context, e utils.Email) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, e)
	return nil
}

// stubStore fails the failOn-th save (1-based) when failOn is set.
type stubStore struct {
	saved   []string
	deleted []string
	failOn  int
}

func (s *stubStore) Save(_ context.Context, u utils.Upload) (utils.StoredFile, error) {
	if s.failOn > 0 && len(s.saved)+1 == s.failOn {
		return utils.StoredFile{}, errors.New("storage unavailable")
	}
	ref := fmt.Sprintf("%s/%d-%s", u.Folder, len(s.saved)+1, u.Name)
	s.saved = append(s.saved, ref)
	return utils.StoredFile{Ref: ref, URL: "https://files.test/" + ref}, nil
}

func (s *stubStore) Delete(_ context.Context, ref string) error {
	s.deleted = append(s.deleted, ref)
	return nil
}

type stubRevoker struct {
	revoked map[string]time.Duration
}

func (r *stubRevoker) Revoke(_ context.Context, tokenID string, ttl time.Duration) error {
	if r.revoked == nil {
		r.revoked = map[string]time.Duration{}
	}
	r.revoked[tokenID] = ttl
	return nil
}

type testEnv struct {
	db        *gorm.DB
	clock     time.Time
	mailer    *stubMailer
	files     *stubStore
	revoker   *stubRevoker
	identity  *Identity
	auth      *AuthService
	admin     *AdminService
	catalog   *CatalogService
	bookings  *BookingService
	messaging *MessagingService
	profiles  *ProfileService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gdb := dbtest.New(t)
	log := zap.NewNop()

	e := &testEnv{
		db:      gdb,
		clock:   time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		mailer:  &stubMailer{},
		files:   &stubStore{},
		revoker: &stubRevoker{},
	}
	e.identity = NewIdentity(gdb)
	e.identity.cost = bcrypt.MinCost

	tokens := NewTokenIssuer("test-secret", time.Hour)
	tokens.now = e.now
	e.auth = NewAuthService(gdb, e.identity, e.mailer, e.files, tokens, e.revoker,
		AuthOptions{TicketTTL: 15 * time.Minute, MaxAttempts: 5}, log)
	e.auth.now = e.now
	e.admin = NewAdminService(gdb, e.identity, log)
	e.catalog = NewCatalogService(gdb, log)
	e.bookings = NewBookingService(gdb, log)
	e.messaging = NewMessagingService(gdb, log)
	e.profiles = NewProfileService(gdb)
	return e
}

func (e *testEnv) now() time.Time { return e.clock }

func (e *testEnv) advance(d time.Duration) { e.clock = e.clock.Add(d) }

func customerInput(email, phone string) RegisterInput {
	return RegisterInput{
		FullName:        "Asha Rao",
		Email:           email,
		Phone:           phone,
		Password:        testPassword,
		ConfirmPassword: testPassword,
	}
}

func providerInput(email, phone string, cats ...models.Category) RegisterInput {
	in := customerInput(email, phone)
	in.Experience = "Ten years of residential work"
	in.Categories = cats
	return in
}

func certificates(n int) []CertificateFile {
	out := make([]CertificateFile, n)
	for i := range out {
		out[i] = CertificateFile{
			Name:        fmt.Sprintf("cert%d.pdf", i+1),
			ContentType: "application/pdf",
			Size:        1024,
			Body:        strings.NewReader("%PDF-1.4"),
		}
	}
	return out
}

func (e *testEnv) count(t *testing.T, model interface{}) int64 {
	t.Helper()
	var n int64
	if err := e.db.Model(model).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func (e *testEnv) profile(t *testing.T, id uint) models.Profile {
	t.Helper()
	var p models.Profile
	if err := e.db.First(&p, id).Error; err != nil {
		t.Fatalf("load profile %d: %v", id, err)
	}
	return p
}

func (e *testEnv) verify(t *testing.T, reg *Registration) {
	t.Helper()
	p := e.profile(t, reg.Profile.ID)
	if p.EmailToken == nil {
		t.Fatal("expected a pending verification code")
	}
	if _, err := e.auth.VerifyEmail(context.Background(), reg.TicketID, *p.EmailToken); err != nil {
		t.Fatalf("verify email: %v", err)
	}
}

func (e *testEnv) customer(t *testing.T, email, phone string) *models.User {
	t.Helper()
	reg, err := e.auth.RegisterCustomer(context.Background(), customerInput(email, phone))
	if err != nil {
		t.Fatalf("register customer: %v", err)
	}
	e.verify(t, reg)
	return reg.User
}

// provider registers, verifies and approves a provider along with every
// declared category.
func (e *testEnv) provider(t *testing.T, email, phone string, cats ...models.Category) (*models.User, *models.Profile) {
	t.Helper()
	ctx := context.Background()
	reg, err := e.auth.RegisterProvider(ctx, providerInput(email, phone, cats...), certificates(len(cats)))
	if err != nil {
		t.Fatalf("register provider: %v", err)
	}
	e.verify(t, reg)
	if _, err := e.admin.ApproveProvider(ctx, reg.Profile.ID); err != nil {
		t.Fatalf("approve provider: %v", err)
	}
	for _, c := range cats {
		if _, err := e.admin.SetCategoryVerified(ctx, reg.Profile.ID, c, true); err != nil {
			t.Fatalf("approve category: %v", err)
		}
	}
	p := e.profile(t, reg.Profile.ID)
	return reg.User, &p
}

func (e *testEnv) service(t *testing.T, providerUserID uint, cat models.Category, name string) *models.Service {
	t.Helper()
	svc, err := e.catalog.Add(context.Background(), providerUserID, ServiceInput{
		Name:     name,
		Category: cat,
		Price:    499.5,
		Location: "Pune",
	})
	if err != nil {
		t.Fatalf("add service: %v", err)
	}
	return svc
}

func assertFieldError(t *testing.T, err error, field string) {
	t.Helper()
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error on %q, got %v", field, err)
	}
	if _, ok := verr.Fields[field]; !ok {
		t.Fatalf("expected error on %q, got %v", field, verr.Fields)
	}
}
