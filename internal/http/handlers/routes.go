package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	applog "cellar/internal/log"
)

// Routes mounts every page and API endpoint on app. Global middleware
// (request id, CSRF, helmet) is installed by the caller.
func Routes(app *fiber.App, d *Deps) {
	page := RequireUser(d.Auth)
	api := app.Group("/api/v1", RequireAPIUser(d.Auth))

	// Pages
	app.Get("/", page, d.InventoryHandler.Page)
	app.Get("/import", page, d.ImportHandler.Form)
	app.Post("/import", page, d.ImportHandler.Upload)
	app.Get("/export", page, d.ExportHandler.Download)
	app.Get("/counts", page, d.CountHandler.HistoryPage)
	app.Post("/inventory/:id/count", page, d.CountHandler.CountForm)

	// API
	api.Post("/import", limiter.New(limiter.Config{
		Max:        10,
		Expiration: time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP() + "|import"
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.import.hit", nil)
			return jsonError(c, fiber.StatusTooManyRequests, "rate limit exceeded, retry soon")
		},
	}), d.ImportHandler.API)
	api.Get("/inventory", d.InventoryHandler.List)
	api.Get("/inventory/low", d.InventoryHandler.Low)
	api.Post("/inventory/:id/count", d.CountHandler.Count)
	api.Get("/counts", d.CountHandler.History)
	api.Get("/locations", d.InventoryHandler.Locations)
	api.Post("/locations", d.InventoryHandler.CreateLocation)

	// Auth routes (login throttled)
	app.Get("/login", d.AuthHandler.LoginForm)
	app.Post("/login", limiter.New(limiter.Config{
		Max:        5,
		Expiration: 10 * time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.login.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).Render("login", fiber.Map{"Err": "Too many attempts. Please try again later."})
		},
	}), d.AuthHandler.Login)
	app.Post("/logout", d.AuthHandler.Logout)

	// Health & 404
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })
	app.Use(func(c *fiber.Ctx) error {
		return notFound(c, fiber.StatusNotFound, "Page not found")
	})
}
