package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/meinhoongagan/homeservice/services"
	"github.com/meinhoongagan/homeservice/utils"
	"go.uber.org/zap"
)

type errorMapping struct {
	err    error
	status int
	code   string
}

var errorMappings = []errorMapping{
	{services.ErrInvalidCredentials, fiber.StatusUnauthorized, "invalid_credentials"},
	{services.ErrAccountInactive, fiber.StatusForbidden, "account_inactive"},
	{services.ErrVerificationNotFound, fiber.StatusUnauthorized, "verification_not_found"},
	{services.ErrVerificationExpired, fiber.StatusGone, "verification_expired"},
	{services.ErrTooManyAttempts, fiber.StatusTooManyRequests, "too_many_attempts"},
	{services.ErrInvalidCode, fiber.StatusBadRequest, "invalid_code"},
	{services.ErrForbidden, fiber.StatusForbidden, "forbidden"},
	{services.ErrProviderNotVerified, fiber.StatusForbidden, "provider_not_verified"},
	{services.ErrProfileNotFound, fiber.StatusNotFound, "profile_not_found"},
	{services.ErrProviderNotFound, fiber.StatusNotFound, "provider_not_found"},
	{services.ErrCategoryNotFound, fiber.StatusNotFound, "category_not_found"},
	{services.ErrServiceNotFound, fiber.StatusNotFound, "service_not_found"},
	{services.ErrBookingNotFound, fiber.StatusNotFound, "booking_not_found"},
	{services.ErrInvalidTransition, fiber.StatusConflict, "invalid_transition"},
}

// ErrorHandler turns service errors into JSON responses. Unknown errors are
// logged and reported as 500.
func ErrorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status, body := errorResponse(err)
		if status >= fiber.StatusInternalServerError {
			log.Error("request failed",
				zap.Error(err),
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
			)
		}
		return c.Status(status).JSON(body)
	}
}

func errorResponse(err error) (int, utils.ErrorResponse) {
	var verr *services.ValidationError
	if errors.As(err, &verr) {
		return fiber.StatusBadRequest, utils.ErrorResponse{
			Error:  "validation failed",
			Code:   "validation_failed",
			Fields: verr.Fields,
		}
	}

	var required *services.VerificationRequiredError
	if errors.As(err, &required) {
		return fiber.StatusForbidden, utils.ErrorResponse{
			Error:            "please verify your email before logging in",
			Code:             "verification_required",
			TicketID:         required.TicketID,
			VerificationCode: required.VerificationCode,
		}
	}

	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			return m.status, utils.ErrorResponse{Error: m.err.Error(), Code: m.code}
		}
	}

	var ferr *fiber.Error
	if errors.As(err, &ferr) {
		return ferr.Code, utils.ErrorResponse{Error: ferr.Message, Code: "request_error"}
	}

	return fiber.StatusInternalServerError, utils.ErrorResponse{
		Error: "internal server error",
		Code:  "internal",
	}
}
