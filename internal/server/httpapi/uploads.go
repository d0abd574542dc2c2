package httpapi

import (
	"github.com/gofiber/fiber/v2"
)

type uploadURLResponse struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

func (s *Server) uploadURL(c *fiber.Ctx) error {
	var req uploadURLRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	target, err := s.uploads.UploadURL(c.UserContext(), principal(c), req.Filename)
	if err != nil {
		return err
	}
	return c.JSON(uploadURLResponse{Key: target.Key, URL: target.URL})
}

func (s *Server) deleteUpload(c *fiber.Ctx) error {
	var req deleteUploadRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	if err := s.uploads.Delete(c.UserContext(), principal(c), req.Key); err != nil {
		return err
	}
	return c.JSON(messageResponse{Message: "File deleted successfully"})
}
