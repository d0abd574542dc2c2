package httpapi

import (
	"github.com/dmitrijs2005/rms/internal/server/metrics"
	"github.com/dmitrijs2005/rms/internal/server/models"
	"github.com/dmitrijs2005/rms/internal/server/services"
	"github.com/gofiber/fiber/v2"
)

type registerResponse struct {
	ID          string `json:"id"`
	FullName    string `json:"fullName"`
	Email       string `json:"email"`
	AccessToken string `json:"accessToken"`
}

type loginResponse struct {
	ID                string  `json:"id"`
	FullName          string  `json:"fullName"`
	Email             string  `json:"email"`
	Role              string  `json:"role"`
	IsProfileComplete bool    `json:"isProfileComplete"`
	Vendor            string  `json:"vendor"`
	VendorID          *string `json:"vendorId"`
	AccessToken       string  `json:"accessToken"`
}

type persistResponse struct {
	ID          string `json:"id"`
	FullName    string `json:"fullName"`
	Email       string `json:"email"`
	Role        string `json:"role"`
	AccessToken string `json:"accessToken"`
}

type accessTokenResponse struct {
	AccessToken string `json:"accessToken"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// bind parses the JSON body into v and validates it.
func bind[T interface{ Validate() error }](c *fiber.Ctx, v *T) error {
	if err := c.BodyParser(v); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	return (*v).Validate()
}

func (s *Server) register(c *fiber.Ctx) error {
	var req registerRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	res, err := s.auth.Register(c.UserContext(), services.RegisterInput{
		FullName: req.FullName,
		Email:    req.Email,
		Password: req.Password,
		Role:     models.Role(req.Role),
		VendorID: req.VendorID,
	})
	s.metrics.Session(metrics.EventRegister, err)
	if err != nil {
		return err
	}

	s.setRefreshCookie(c, res.RefreshToken)
	return c.Status(fiber.StatusCreated).JSON(registerResponse{
		ID:          res.Identity.ID,
		FullName:    res.Identity.FullName,
		Email:       res.Identity.Email,
		AccessToken: res.AccessToken,
	})
}

func (s *Server) login(c *fiber.Ctx) error {
	var req loginRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	res, err := s.auth.Login(c.UserContext(), req.Email, req.Password)
	s.metrics.Session(metrics.EventLogin, err)
	if err != nil {
		return err
	}

	s.setRefreshCookie(c, res.RefreshToken)
	return c.JSON(loginResponse{
		ID:                res.Identity.ID,
		FullName:          res.Identity.FullName,
		Email:             res.Identity.Email,
		Role:              string(res.Identity.Role),
		IsProfileComplete: res.Identity.ProfileComplete,
		Vendor:            res.VendorName,
		VendorID:          res.Identity.VendorID,
		AccessToken:       res.AccessToken,
	})
}

func (s *Server) refresh(c *fiber.Ctx) error {
	access, err := s.auth.Refresh(c.UserContext(), refreshCookie(c))
	s.metrics.Session(metrics.EventRefresh, err)
	if err != nil {
		return err
	}
	return c.JSON(accessTokenResponse{AccessToken: access})
}

func (s *Server) persistentLogin(c *fiber.Ctx) error {
	res, err := s.auth.ResumeSession(c.UserContext(), refreshCookie(c))
	s.metrics.Session(metrics.EventPersist, err)
	if err != nil {
		return err
	}

	return c.JSON(persistResponse{
		ID:          res.Identity.ID,
		FullName:    res.Identity.FullName,
		Email:       res.Identity.Email,
		Role:        string(res.Identity.Role),
		AccessToken: res.AccessToken,
	})
}

// logout always answers 204 and clears the cookie once the store is updated.
func (s *Server) logout(c *fiber.Ctx) error {
	err := s.auth.Logout(c.UserContext(), refreshCookie(c))
	s.metrics.Session(metrics.EventLogout, err)
	if err != nil {
		return err
	}

	s.clearRefreshCookie(c)
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) resetPassword(c *fiber.Ctx) error {
	var req resetRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	err := s.auth.ResetPassword(c.UserContext(), principal(c), req.Password)
	s.metrics.Session(metrics.EventReset, err)
	if err != nil {
		return err
	}
	return c.JSON(messageResponse{Message: "Password reset successful"})
}

func (s *Server) adminResetPassword(c *fiber.Ctx) error {
	var req adminResetRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	err := s.auth.AdminResetPassword(c.UserContext(), principal(c), req.UserID, req.Password)
	s.metrics.Session(metrics.EventReset, err)
	if err != nil {
		return err
	}
	return c.JSON(messageResponse{Message: "Password reset successful"})
}
