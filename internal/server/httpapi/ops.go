package httpapi

import (
	"github.com/gofiber/fiber/v2"
)

type statusResponse struct {
	Status string `json:"status"`
}

func (s *Server) healthz(c *fiber.Ctx) error {
	return c.JSON(statusResponse{Status: "ok"})
}

func (s *Server) readyz(c *fiber.Ctx) error {
	if err := s.db.PingContext(c.UserContext()); err != nil {
		s.logger.Warn(c.UserContext(), "readiness check failed", "error", err)
		return c.Status(fiber.StatusServiceUnavailable).JSON(statusResponse{Status: "unavailable"})
	}
	return c.JSON(statusResponse{Status: "ready"})
}
