package handlers

import "github.com/gofiber/fiber/v2"

func render(c *fiber.Ctx, tmpl string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	// Inject user if present
	if u := c.Locals("user"); u != nil {
		data["User"] = u
	}
	// Token from the CSRF middleware, falling back to the cookie so forms
	// never carry an empty hidden field.
	tok, _ := c.Locals("CSRFToken").(string)
	if tok == "" {
		tok = c.Cookies("csrf_")
	}
	if tok != "" {
		data["CSRFToken"] = tok
	}
	return c.Render(tmpl, data)
}

func notFound(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).Render("notfound", fiber.Map{"Message": msg})
}

func jsonError(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"error": msg})
}
