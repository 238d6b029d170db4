package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/meinhoongagan/homeservice/models"
	"go.uber.org/zap"
)

const testSecret = "test-secret"

type denylist map[string]bool

func (d denylist) IsRevoked(_ context.Context, id string) (bool, error) {
	if id == "broken" {
		return false, errors.New("redis down")
	}
	return d[id], nil
}

func sign(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return s
}

func claimsFor(id uint, role models.Role, jti string) jwt.MapClaims {
	return jwt.MapClaims{
		"id":   id,
		"role": string(role),
		"jti":  jti,
		"exp":  time.Now().Add(time.Hour).Unix(),
	}
}

func protectedApp(revoked RevocationChecker, policies ...Policy) *fiber.App {
	app := fiber.New()
	handlers := []fiber.Handler{Protected(testSecret, revoked, zap.NewNop())}
	if len(policies) > 0 {
		handlers = append(handlers, Authorize(policies...))
	}
	handlers = append(handlers, func(c *fiber.Ctx) error {
		p, _ := PrincipalFrom(c)
		return c.JSON(fiber.Map{"id": p.UserID, "role": p.Role, "jti": p.TokenID})
	})
	app.Get("/me", handlers...)
	return app
}

func get(t *testing.T, app *fiber.App, token string) int {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()
	return resp.StatusCode
}

func TestProtected(t *testing.T) {
	app := protectedApp(denylist{"revoked-jti": true})

	expired := claimsFor(7, models.RoleCustomer, "a")
	expired["exp"] = time.Now().Add(-time.Minute).Unix()
	badRole := claimsFor(7, "superuser", "b")
	noID := claimsFor(7, models.RoleCustomer, "c")
	delete(noID, "id")

	tests := []struct {
		name  string
		token string
		want  int
	}{
		{"valid", sign(t, testSecret, claimsFor(7, models.RoleCustomer, "ok")), fiber.StatusOK},
		{"missing", "", fiber.StatusUnauthorized},
		{"wrong secret", sign(t, "other", claimsFor(7, models.RoleCustomer, "ok")), fiber.StatusUnauthorized},
		{"expired", sign(t, testSecret, expired), fiber.StatusUnauthorized},
		{"unknown role", sign(t, testSecret, badRole), fiber.StatusUnauthorized},
		{"no id", sign(t, testSecret, noID), fiber.StatusUnauthorized},
		{"revoked", sign(t, testSecret, claimsFor(7, models.RoleCustomer, "revoked-jti")), fiber.StatusUnauthorized},
		{"denylist error", sign(t, testSecret, claimsFor(7, models.RoleCustomer, "broken")), fiber.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := get(t, app, tt.token); got != tt.want {
				t.Errorf("expected %d, got %d", tt.want, got)
			}
		})
	}
}

func TestProtectedWithoutDenylist(t *testing.T) {
	app := protectedApp(nil)
	if got := get(t, app, sign(t, testSecret, claimsFor(3, models.RoleAdmin, "x"))); got != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", got)
	}
}

func TestExtractUserID(t *testing.T) {
	tests := []struct {
		in   interface{}
		want uint
		ok   bool
	}{
		{float64(12), 12, true},
		{"12", 12, true},
		{"abc", 0, false},
		{float64(0), 0, false},
		{true, 0, false},
	}
	for _, tt := range tests {
		got, err := extractUserID(jwt.MapClaims{"id": tt.in})
		if (err == nil) != tt.ok || got != tt.want {
			t.Errorf("extractUserID(%v) = %d, %v", tt.in, got, err)
		}
	}
}

func TestAuthorizeRoles(t *testing.T) {
	app := protectedApp(nil, RequireRole(models.RoleProvider, models.RoleAdmin))

	if got := get(t, app, sign(t, testSecret, claimsFor(1, models.RoleProvider, "p"))); got != fiber.StatusOK {
		t.Errorf("provider: expected 200, got %d", got)
	}
	if got := get(t, app, sign(t, testSecret, claimsFor(1, models.RoleAdmin, "a"))); got != fiber.StatusOK {
		t.Errorf("admin: expected 200, got %d", got)
	}
	if got := get(t, app, sign(t, testSecret, claimsFor(1, models.RoleCustomer, "c"))); got != fiber.StatusForbidden {
		t.Errorf("customer: expected 403, got %d", got)
	}
}

func TestAuthorizeCustomStatus(t *testing.T) {
	onlyUserOne := func(p Principal) Decision {
		if p.UserID == 1 {
			return Allow()
		}
		return Deny(fiber.StatusNotFound, "not found")
	}
	app := protectedApp(nil, RequireRole(models.RoleCustomer), onlyUserOne)

	if got := get(t, app, sign(t, testSecret, claimsFor(2, models.RoleCustomer, "c"))); got != fiber.StatusNotFound {
		t.Errorf("expected 404 from the second policy, got %d", got)
	}
	if got := get(t, app, sign(t, testSecret, claimsFor(1, models.RoleCustomer, "c"))); got != fiber.StatusOK {
		t.Errorf("expected 200, got %d", got)
	}
}

func TestAuthorizeWithoutPrincipal(t *testing.T) {
	app := fiber.New()
	app.Get("/", Authorize(RequireRole(models.RoleAdmin)), func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}
