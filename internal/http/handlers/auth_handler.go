package handlers

import (
	"time"

	"cellar/internal/log"
	"cellar/internal/services"
	"cellar/internal/validate"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type AuthHandler struct {
	Auth          *services.AuthService
	SecureCookies bool
}

func (h *AuthHandler) sidCookie(value string, expires time.Time) *fiber.Cookie {
	return &fiber.Cookie{
		Name:     "sid",
		Value:    value,
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Secure:   h.SecureCookies,
		Expires:  expires,
	}
}

func (h *AuthHandler) ensureSID(c *fiber.Ctx) string {
	sid := c.Cookies("sid")
	if sid == "" {
		sid = uuid.NewString()
		c.Cookie(h.sidCookie(sid, time.Time{}))
	}
	return sid
}

func (h *AuthHandler) LoginForm(c *fiber.Ctx) error {
	return render(c, "login", fiber.Map{"Err": ""})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	sid := h.ensureSID(c)
	email := c.FormValue("email")
	pass := c.FormValue("password")
	fail := func(reason string) error {
		log.Security(c, "auth.login.fail", map[string]any{"email": email, "reason": reason})
		return c.Status(fiber.StatusUnauthorized).Render("login", fiber.Map{
			"Err": "Invalid email or password", "CSRFToken": c.Cookies("csrf_"),
		})
	}
	if _, ok := validate.Email(email); !ok {
		return fail("bad_format")
	}
	if !validate.Password(pass) {
		return fail("bad_password_format")
	}
	if _, err := h.Auth.Login(sid, email, pass); err != nil {
		return fail("bad_credentials")
	}

	log.Audit(c, "auth.login.success", map[string]any{"email": email})
	return c.Redirect("/")
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	sid := h.ensureSID(c)
	_ = h.Auth.Logout(sid)
	c.Cookie(h.sidCookie("", time.Now().Add(-1*time.Hour)))
	log.Audit(c, "auth.logout", map[string]any{"sid": sid})
	return c.Redirect("/login")
}
