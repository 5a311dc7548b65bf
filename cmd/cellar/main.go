package main

import (
	"errors"
	"io"
	"log"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/joho/godotenv"

	"cellar/internal/config"
	"cellar/internal/http/handlers"
	applog "cellar/internal/log"
	"cellar/internal/repos"
	"cellar/internal/services"
	"cellar/web"
)

var errMissingCSRF = errors.New("missing csrf token")

func main() {
	// .env is optional; real environment variables win.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("[warn] could not read .env: %v", err)
	}
	cfg := config.Load()

	// Optional file logging
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			log.Printf("[warn] could not open log file %s: %v", cfg.LogFile, err)
		} else {
			mw := io.MultiWriter(os.Stdout, f)
			log.SetOutput(mw)
		}
	}
	if err := os.MkdirAll(cfg.UploadDir, 0o750); err != nil {
		log.Fatalf("upload dir %s: %v", cfg.UploadDir, err)
	}

	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		log.Fatal(err)
	}

	// Auth wiring
	userRepo := repos.NewUserRepo(db)
	authSvc := &services.AuthService{Users: userRepo}
	if _, err := authSvc.BootstrapAdmin(cfg.AdminEmail, cfg.AdminPassword, cfg.IsDevelopment()); err != nil {
		log.Fatalf("admin bootstrap: %v", err)
	}

	app := fiber.New(fiber.Config{
		Views:     web.Engine(false),
		BodyLimit: (cfg.MaxUploadMB + 1) << 20,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Error(c, "server.error", err, nil)
			code := fiber.StatusInternalServerError
			var fe *fiber.Error
			if errors.As(err, &fe) {
				code = fe.Code
			}
			if rerr := c.Status(code).Render("notfound", fiber.Map{
				"Message": "Something went wrong. Please try again.",
			}); rerr != nil {
				return c.Status(code).SendString("Something went wrong. Please try again.")
			}
			return nil
		},
	})

	// ---------- Middlewares ----------
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(helmet.New())
	// Attach user to context if logged in (for templates/headers)
	app.Use(func(c *fiber.Ctx) error {
		if sid := c.Cookies("sid"); sid != "" {
			if u, err := authSvc.CurrentUser(sid); err == nil && u != nil {
				c.Locals("user", u)
			}
		}
		return c.Next()
	})
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: time.Minute,
	}))
	app.Use(csrf.New(csrf.Config{
		// Forms post the token as a field; API clients send it as a header.
		Extractor: func(c *fiber.Ctx) (string, error) {
			if tok := c.Get("X-Csrf-Token"); tok != "" {
				return tok, nil
			}
			if tok := c.FormValue("csrf"); tok != "" {
				return tok, nil
			}
			return "", errMissingCSRF
		},
		ContextKey:     "csrf",
		CookieName:     "csrf_",
		CookieSameSite: "Lax",
		CookieSecure:   cfg.CookieSecure,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Security(c, "csrf.fail", map[string]any{"err": err.Error()})
			return c.Status(fiber.StatusForbidden).Render("notfound", fiber.Map{"Message": "Security check failed. Please refresh and try again."})
		},
	}))
	app.Use(func(c *fiber.Ctx) error {
		if tok, ok := c.Locals("csrf").(string); ok {
			c.Locals("CSRFToken", tok)
		}
		return c.Next()
	})

	// ---------- App handlers ----------
	deps := handlers.NewDeps(db, cfg, authSvc)
	handlers.Routes(app, deps)

	log.Fatal(app.Listen(":" + cfg.Port))
}
