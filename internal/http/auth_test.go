package handlers_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"cellar/internal/http/handlers"
	applog "cellar/internal/log"
	"cellar/internal/repos"
	"cellar/internal/services"
	"cellar/web"
)

func extractCookie(resp *http.Response, name string) string {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

func TestLoginFlowAndLogging(t *testing.T) {
	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()
	authSvc := &services.AuthService{Users: repos.NewUserRepo(db)}
	pw, err := authSvc.BootstrapAdmin("admin@cellar.test", "Cellar123!", true)
	if err != nil || pw == "" {
		t.Fatalf("bootstrap: %v", err)
	}
	authH := &handlers.AuthHandler{Auth: authSvc}

	app := fiber.New(fiber.Config{Views: web.Engine(false)})
	app.Use(csrf.New(csrf.Config{KeyLookup: "form:csrf", CookieName: "csrf_", CookieSameSite: "Lax"}))
	app.Get("/login", authH.LoginForm)
	app.Post("/login", limiter.New(limiter.Config{Max: 100, Expiration: time.Minute}), authH.Login)
	app.Post("/logout", authH.Logout)
	app.Get("/", handlers.RequireUser(authSvc), func(c *fiber.Ctx) error { return c.SendString("home") })

	respLogin, _ := app.Test(httptest.NewRequest("GET", "/login", nil))
	csrfTok := extractCookie(respLogin, "csrf_")
	if csrfTok == "" {
		t.Fatal("csrf token missing")
	}
	post := func(path, form, sid string) *http.Response {
		req := httptest.NewRequest("POST", path, strings.NewReader(form+"&csrf="+csrfTok))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.AddCookie(&http.Cookie{Name: "csrf_", Value: csrfTok})
		if sid != "" {
			req.AddCookie(&http.Cookie{Name: "sid", Value: sid})
		}
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("request: %v", err)
		}
		return resp
	}

	var resp *http.Response
	logs := captureLogs(t, func() { resp = post("/login", "email=admin@cellar.test&password=Wrong123!", "") })
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
	if !hasAction(logs, "auth.login.fail") {
		t.Fatalf("expected auth.login.fail, got %+v", logs)
	}
	for _, e := range logs {
		if strings.Contains(strings.ToLower(e.Action), "password") {
			t.Fatalf("password leaked into logs: %+v", e)
		}
	}

	logs = captureLogs(t, func() { resp = post("/login", "email=admin@cellar.test&password=Cellar123!", "") })
	if resp.StatusCode != fiber.StatusFound {
		t.Fatalf("expected redirect after login, got %d", resp.StatusCode)
	}
	if !hasAction(logs, "auth.login.success") {
		t.Fatal("expected auth.login.success log")
	}
	sid := extractCookie(resp, "sid")
	if sid == "" {
		t.Fatal("session cookie missing")
	}

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: "sid", Value: sid})
	home, _ := app.Test(req)
	body, _ := io.ReadAll(home.Body)
	if home.StatusCode != 200 || string(body) != "home" {
		t.Fatalf("expected access with session, got %d", home.StatusCode)
	}

	resp = post("/logout", "x=1", sid)
	if resp.StatusCode != fiber.StatusFound {
		t.Fatalf("expected redirect after logout, got %d", resp.StatusCode)
	}
	req = httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: "sid", Value: sid})
	home, _ = app.Test(req)
	if home.StatusCode != fiber.StatusFound {
		t.Fatalf("expected redirect after logout, got %d", home.StatusCode)
	}
}

func TestErrorHandlerFriendlyMessage(t *testing.T) {
	app := fiber.New(fiber.Config{
		Views: web.Engine(false),
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Error(c, "server.error", err, nil)
			if rerr := c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{
				"Message": "Something went wrong. Please try again.",
			}); rerr != nil {
				return c.Status(fiber.StatusInternalServerError).SendString("Something went wrong. Please try again.")
			}
			return nil
		},
	})
	app.Use(requestid.New())
	app.Get("/err", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusInternalServerError, "db timeout: secret trace")
	})

	var resp *http.Response
	logs := captureLogs(t, func() {
		resp, _ = app.Test(httptest.NewRequest("GET", "/err", nil))
	})
	if resp.StatusCode != fiber.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "Something went wrong") || strings.Contains(string(body), "secret") {
		t.Fatalf("unexpected error body %s", body)
	}
	if !hasAction(logs, "server.error") {
		t.Fatal("expected server.error log")
	}
}
