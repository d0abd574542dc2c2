package httpapi

import (
	"github.com/dmitrijs2005/rms/internal/server/models"
	"github.com/dmitrijs2005/rms/internal/server/repositories/identities"
	"github.com/dmitrijs2005/rms/internal/server/services"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
)

const (
	defaultPage  = 1
	defaultLimit = 10
)

type userResponse struct {
	ID       string `json:"id"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

type listUsersResponse struct {
	Users    []userResponse `json:"users"`
	NumFound int            `json:"numFound"`
}

func toUserResponse(i *models.Identity) userResponse {
	return userResponse{ID: i.ID, FullName: i.FullName, Email: i.Email, Role: string(i.Role)}
}

func (s *Server) listUsers(c *fiber.Ctx) error {
	page := c.QueryInt("page", defaultPage)
	limit := c.QueryInt("limit", defaultLimit)
	if page < 1 {
		page = defaultPage
	}
	if limit < 1 {
		limit = defaultLimit
	}

	list, err := s.users.List(c.UserContext(), principal(c), identities.ListFilter{
		Search: c.Query("search"),
		Role:   models.Role(c.Query("role")),
		Limit:  limit,
		Offset: (page - 1) * limit,
	})
	if err != nil {
		return err
	}

	resp := listUsersResponse{Users: make([]userResponse, 0, len(list)), NumFound: len(list)}
	for _, i := range list {
		resp.Users = append(resp.Users, toUserResponse(i))
	}
	return c.JSON(resp)
}

// userIDParam returns the :userId path parameter, which must be a UUID.
func userIDParam(c *fiber.Ctx) (string, error) {
	id := c.Params("userId")
	if err := validation.Validate(id, validation.Required, is.UUID); err != nil {
		return "", validation.Errors{"userId": err}
	}
	return id, nil
}

func (s *Server) updateUser(c *fiber.Ctx) error {
	id, err := userIDParam(c)
	if err != nil {
		return err
	}

	var req updateUserRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	updated, err := s.users.Update(c.UserContext(), principal(c), id, services.UpdateUserInput{
		FullName: req.FullName,
		Email:    req.Email,
		Role:     models.Role(req.Role),
	})
	if err != nil {
		return err
	}
	return c.JSON(toUserResponse(updated))
}

func (s *Server) disableUser(c *fiber.Ctx) error {
	id, err := userIDParam(c)
	if err != nil {
		return err
	}

	if err := s.users.Disable(c.UserContext(), principal(c), id); err != nil {
		return err
	}
	return c.JSON(messageResponse{Message: "User disabled (soft-deleted) and email updated successfully"})
}
