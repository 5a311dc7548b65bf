package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"

	"cellar/internal/config"
	"cellar/internal/domain"
	"cellar/internal/http/handlers"
	"cellar/internal/repos"
	"cellar/internal/services"
	"cellar/web"
)

type testApp struct {
	app   *fiber.App
	db    *sqlx.DB
	users *repos.UserRepo
}

// newApp wires the real routes without CSRF so API calls can be made directly.
func newApp(t *testing.T) testApp {
	t.Helper()
	cfg := config.Config{DBDSN: ":memory:", UploadDir: t.TempDir(), MaxUploadMB: 1}
	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	userRepo := repos.NewUserRepo(db)
	authSvc := &services.AuthService{Users: userRepo}

	app := fiber.New(fiber.Config{Views: web.Engine(false)})
	app.Use(requestid.New())
	app.Use(func(c *fiber.Ctx) error {
		if sid := c.Cookies("sid"); sid != "" {
			if u, err := authSvc.CurrentUser(sid); err == nil && u != nil {
				c.Locals("user", u)
			}
		}
		return c.Next()
	})
	handlers.Routes(app, handlers.NewDeps(db, cfg, authSvc))
	return testApp{app: app, db: db, users: userRepo}
}

// session creates a user with the given role and returns a bound session id.
func (ta testApp) session(t *testing.T, role string) *http.Cookie {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("Cellar123!"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	u := domain.User{ID: uuid.NewString(), Email: strings.ToLower(role) + "-" + uuid.NewString()[:8] + "@cellar.test", Name: role, Hash: string(hash), Role: role}
	if err := ta.users.Create(u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	sid := uuid.NewString()
	if err := ta.users.BindSession(sid, u.ID); err != nil {
		t.Fatalf("bind session: %v", err)
	}
	return &http.Cookie{Name: "sid", Value: sid}
}

func (ta testApp) do(t *testing.T, req *http.Request, cookie *http.Cookie) (*http.Response, string) {
	t.Helper()
	if cookie != nil {
		req.AddCookie(cookie)
	}
	resp, err := ta.app.Test(req, -1)
	if err != nil {
		t.Fatalf("test request failed: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	return resp, string(body)
}

// uploadRequest builds a multipart import request.
func uploadRequest(t *testing.T, path, filename, content string, fields map[string]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatal(err)
		}
	}
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatal(err)
	}
	_, _ = io.WriteString(fw, content)
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest("POST", path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decode[T any](t *testing.T, body string) T {
	t.Helper()
	var v T
	if err := json.Unmarshal([]byte(body), &v); err != nil {
		t.Fatalf("decode %q: %v", body, err)
	}
	return v
}

type logEntry struct {
	Level  string         `json:"level"`
	Action string         `json:"action"`
	UserID string         `json:"user_id"`
	Fields map[string]any `json:"fields"`
}

// capture logs by temporarily replacing the standard logger output
func captureLogs(t *testing.T, fn func()) []logEntry {
	t.Helper()
	var buf bytes.Buffer
	var mu sync.Mutex
	oldW := log.Writer()
	oldFlags := log.Flags()
	log.SetOutput(&lockedWriter{w: &buf, mu: &mu})
	log.SetFlags(0) // remove timestamps to make JSON parseable
	defer func() {
		log.SetOutput(oldW)
		log.SetFlags(oldFlags)
	}()

	fn()

	var entries []logEntry
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var e logEntry
		if err := json.Unmarshal([]byte(strings.TrimSpace(line)), &e); err == nil {
			entries = append(entries, e)
		}
	}
	return entries
}

type lockedWriter struct {
	w  *bytes.Buffer
	mu *sync.Mutex
}

func (lw *lockedWriter) Write(p []byte) (int, error) {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	return lw.w.Write(p)
}

func hasAction(entries []logEntry, action string) bool {
	for _, e := range entries {
		if e.Action == action {
			return true
		}
	}
	return false
}
