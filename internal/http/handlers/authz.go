package handlers

import (
	"cellar/internal/domain"
	applog "cellar/internal/log"
	"cellar/internal/services"

	"github.com/gofiber/fiber/v2"
)

func sessionUser(c *fiber.Ctx, auth *services.AuthService) *domain.User {
	if u, ok := c.Locals("user").(*domain.User); ok && u != nil {
		return u
	}
	sid := c.Cookies("sid")
	if sid == "" {
		return nil
	}
	u, err := auth.CurrentUser(sid)
	if err != nil || u == nil {
		return nil
	}
	c.Locals("user", u)
	return u
}

// RequireUser enforces that a user is logged in; otherwise redirect to login.
func RequireUser(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if sessionUser(c, auth) == nil {
			return c.Redirect("/login")
		}
		return c.Next()
	}
}

// RequireAPIUser is RequireUser for JSON endpoints: 401 instead of a redirect.
func RequireAPIUser(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if sessionUser(c, auth) == nil {
			applog.Security(c, "access.denied.api", nil)
			return jsonError(c, fiber.StatusUnauthorized, "login required")
		}
		return c.Next()
	}
}

func isAdmin(c *fiber.Ctx) bool {
	u, ok := c.Locals("user").(*domain.User)
	return ok && u != nil && u.Role == domain.RoleAdmin
}

func userEmail(c *fiber.Ctx) string {
	if u, ok := c.Locals("user").(*domain.User); ok && u != nil {
		return u.Email
	}
	return ""
}
