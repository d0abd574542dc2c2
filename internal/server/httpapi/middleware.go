package httpapi

import (
	"errors"
	"strconv"
	"time"

	"github.com/dmitrijs2005/rms/internal/common"
	"github.com/dmitrijs2005/rms/internal/logging"
	"github.com/dmitrijs2005/rms/internal/server/auth"
	"github.com/gofiber/fiber/v2"
)

// Guard rejection reasons recorded in metrics.
const (
	rejectMissingToken = "missing_token"
	rejectInvalidToken = "invalid_token"
	rejectExpiredToken = "expired_token"
	rejectUnknownUser  = "unknown_identity"
)

// observe logs and measures every request and tags the request context with
// its id for every log line below. Errors are rendered here so the recorded
// status is the one the client receives.
func (s *Server) observe(c *fiber.Ctx) error {
	start := time.Now()
	c.SetUserContext(logging.WithFields(c.UserContext(), "request_id", c.GetRespHeader(fiber.HeaderXRequestID)))

	if err := c.Next(); err != nil {
		if herr := s.handleError(c, err); herr != nil {
			_ = c.SendStatus(fiber.StatusInternalServerError)
		}
	}

	status := c.Response().StatusCode()
	route := c.Route().Path
	elapsed := time.Since(start)

	s.metrics.HTTPRequests.WithLabelValues(c.Method(), route, strconv.Itoa(status)).Inc()
	s.metrics.HTTPDuration.WithLabelValues(c.Method(), route).Observe(elapsed.Seconds())

	s.logger.Info(c.UserContext(), "request",
		"method", c.Method(),
		"path", c.Path(),
		"status", status,
		"duration", elapsed.String(),
	)

	return nil
}

// guard requires a valid bearer access token. On success the principal is
// stored in the request's user context; any failure ends the request.
func (s *Server) guard(c *fiber.Ctx) error {
	token, ok := auth.ParseBearer(c.Get(common.AuthorizationHeaderName))
	if !ok {
		s.metrics.GuardRejected(rejectMissingToken)
		return common.ErrorUnauthorized
	}

	p, err := s.auth.VerifyAccess(c.UserContext(), token)
	switch {
	case err == nil:
	case errors.Is(err, common.ErrTokenExpired):
		s.metrics.GuardRejected(rejectExpiredToken)
		return err
	case errors.Is(err, common.ErrInvalidToken):
		s.metrics.GuardRejected(rejectInvalidToken)
		return err
	case errors.Is(err, common.ErrorUnauthorized):
		s.metrics.GuardRejected(rejectUnknownUser)
		return err
	default:
		return err
	}

	c.SetUserContext(auth.WithPrincipal(c.UserContext(), p))
	return c.Next()
}

// principal returns the caller stored by guard.
func principal(c *fiber.Ctx) auth.Principal {
	p, _ := auth.PrincipalFromContext(c.UserContext())
	return p
}
