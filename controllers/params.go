package controllers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/meinhoongagan/homeservice/middleware"
)

// Caller returns the authenticated principal or a 401.
func Caller(c *fiber.Ctx) (middleware.Principal, error) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return middleware.Principal{}, fiber.NewError(fiber.StatusUnauthorized, "authentication required")
	}
	return p, nil
}

// ParamID parses a positive numeric route parameter.
func ParamID(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || id == 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "invalid "+name)
	}
	return uint(id), nil
}

// ParseBody decodes JSON, form or multipart bodies into out.
func ParseBody(c *fiber.Ctx, out interface{}) error {
	if err := c.BodyParser(out); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "cannot parse request body")
	}
	return nil
}
