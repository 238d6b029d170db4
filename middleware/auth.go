package middleware

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	jwtware "github.com/gofiber/jwt/v3"
	"github.com/golang-jwt/jwt/v4"
	"github.com/meinhoongagan/homeservice/models"
	"go.uber.org/zap"
)

const principalKey = "principal"

// Principal is the authenticated caller, as read from the bearer token.
type Principal struct {
	UserID    uint
	Role      models.Role
	TokenID   string
	ExpiresAt time.Time
}

// RevocationChecker reports whether a token id was revoked by a logout.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// Protected verifies the HS256 bearer token and stores the Principal in
// the request locals. revoked may be nil.
func Protected(secret string, revoked RevocationChecker, log *zap.Logger) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey:    []byte(secret),
		SigningMethod: "HS256",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Debug("jwt rejected", zap.Error(err), zap.String("path", c.Path()))
			return unauthorized(c, "invalid or expired token")
		},
		SuccessHandler: func(c *fiber.Ctx) error {
			token, ok := c.Locals("user").(*jwt.Token)
			if !ok {
				return unauthorized(c, "invalid token")
			}
			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				return unauthorized(c, "invalid token claims")
			}
			p, err := principalFromClaims(claims)
			if err != nil {
				log.Debug("jwt claims", zap.Error(err))
				return unauthorized(c, "invalid token claims")
			}

			if revoked != nil && p.TokenID != "" {
				isRevoked, err := revoked.IsRevoked(c.UserContext(), p.TokenID)
				if err != nil {
					log.Error("token denylist lookup failed", zap.Error(err))
					return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
						"error": "authentication temporarily unavailable",
					})
				}
				if isRevoked {
					return unauthorized(c, "token has been revoked")
				}
			}

			c.Locals(principalKey, p)
			return c.Next()
		},
	})
}

// PrincipalFrom returns the caller set by Protected.
func PrincipalFrom(c *fiber.Ctx) (Principal, bool) {
	p, ok := c.Locals(principalKey).(Principal)
	return p, ok
}

func principalFromClaims(claims jwt.MapClaims) (Principal, error) {
	id, err := extractUserID(claims)
	if err != nil {
		return Principal{}, err
	}
	role, _ := claims["role"].(string)
	if !models.Role(role).IsValid() {
		return Principal{}, fmt.Errorf("unsupported role %q", role)
	}
	p := Principal{UserID: id, Role: models.Role(role)}
	p.TokenID, _ = claims["jti"].(string)
	if exp, ok := claims["exp"].(float64); ok {
		p.ExpiresAt = time.Unix(int64(exp), 0)
	}
	return p, nil
}

// extractUserID accepts the id as a JSON number or a numeric string.
func extractUserID(claims jwt.MapClaims) (uint, error) {
	switch v := claims["id"].(type) {
	case nil:
		return 0, fmt.Errorf("no id in claims")
	case float64:
		if v <= 0 {
			return 0, fmt.Errorf("invalid id %v", v)
		}
		return uint(v), nil
	case string:
		parsed, err := strconv.ParseUint(v, 10, 64)
		if err != nil || parsed == 0 {
			return 0, fmt.Errorf("could not parse id %q", v)
		}
		return uint(parsed), nil
	default:
		return 0, fmt.Errorf("unsupported id type: %T", v)
	}
}

func unauthorized(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": msg})
}
