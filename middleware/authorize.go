package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/meinhoongagan/homeservice/models"
)

// Decision is the outcome of a Policy. A zero Status means 403.
type Decision struct {
	Allowed bool
	Status  int
	Reason  string
}

// Policy decides whether a principal may continue.
type Policy func(Principal) Decision

func Allow() Decision { return Decision{Allowed: true} }

func Deny(status int, reason string) Decision {
	return Decision{Status: status, Reason: reason}
}

// RequireRole admits principals holding any of roles.
func RequireRole(roles ...models.Role) Policy {
	return func(p Principal) Decision {
		for _, r := range roles {
			if p.Role == r {
				return Allow()
			}
		}
		return Deny(fiber.StatusForbidden, "you don't have the required role to perform this action")
	}
}

// Authorize runs every policy in order after Protected and stops at the
// first denial.
func Authorize(policies ...Policy) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, ok := PrincipalFrom(c)
		if !ok {
			return unauthorized(c, "authentication required")
		}
		for _, policy := range policies {
			d := policy(p)
			if d.Allowed {
				continue
			}
			status := d.Status
			if status == 0 {
				status = fiber.StatusForbidden
			}
			return c.Status(status).JSON(fiber.Map{"error": d.Reason})
		}
		return c.Next()
	}
}
