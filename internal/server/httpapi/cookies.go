package httpapi

import (
	"time"

	"github.com/dmitrijs2005/rms/internal/common"
	"github.com/gofiber/fiber/v2"
)

func (s *Server) setRefreshCookie(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     common.RefreshTokenCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.opts.RefreshTTL.Seconds()),
		Secure:   s.opts.CookieSecure,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteNoneMode,
	})
}

// clearRefreshCookie expires the cookie using the attributes it was set with.
func (s *Server) clearRefreshCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     common.RefreshTokenCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		Secure:   s.opts.CookieSecure,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteNoneMode,
	})
}

func refreshCookie(c *fiber.Ctx) string {
	return c.Cookies(common.RefreshTokenCookieName)
}
