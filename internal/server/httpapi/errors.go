package httpapi

import (
	"errors"

	"github.com/dmitrijs2005/rms/internal/common"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofiber/fiber/v2"
)

type errorResponse struct {
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors,omitempty"`
}

func (s *Server) handleError(c *fiber.Ctx, err error) error {
	code, msg := statusFor(err)

	resp := errorResponse{Message: msg}
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		resp.Errors = make(map[string]string, len(verrs))
		for field, ferr := range verrs {
			resp.Errors[field] = ferr.Error()
		}
	}

	if code >= fiber.StatusInternalServerError {
		s.logger.Error(c.UserContext(), "request failed", "method", c.Method(), "path", c.Path(), "error", err)
	}

	return c.Status(code).JSON(resp)
}

// statusFor maps an error to its HTTP status and client-facing message.
// Unknown errors become a generic 500.
func statusFor(err error) (int, string) {
	var ferr *fiber.Error
	var verrs validation.Errors

	switch {
	case errors.As(err, &ferr):
		return ferr.Code, ferr.Message
	case errors.As(err, &verrs):
		return fiber.StatusBadRequest, "Validation failed"
	case errors.Is(err, common.ErrValidation):
		return fiber.StatusBadRequest, err.Error()
	case errors.Is(err, common.ErrInvalidCredentials):
		return fiber.StatusBadRequest, "Incorrect password"
	case errors.Is(err, common.ErrorUnauthorized),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired):
		return fiber.StatusUnauthorized, "Unauthorized"
	case errors.Is(err, common.ErrSessionInvalid),
		errors.Is(err, common.ErrForbidden):
		return fiber.StatusForbidden, "Forbidden"
	case errors.Is(err, common.ErrorAlreadyExists):
		return fiber.StatusForbidden, "Email already in use"
	case errors.Is(err, common.ErrorNotFound):
		return fiber.StatusNotFound, "User not found"
	default:
		return fiber.StatusInternalServerError, "Internal server error"
	}
}
