package config

import (
	"log"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Port          string
	DBDSN         string
	LogFile       string
	Env           string
	UploadDir     string
	MaxUploadMB   int
	AdminEmail    string
	AdminPassword string
	CookieSecure  bool
}

// IsDevelopment reports whether development-only conveniences (admin bootstrap,
// template reload) are enabled.
func (c Config) IsDevelopment() bool {
	return c.Env == "development" || c.Env == "dev"
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func Load() Config {
	maxMB, err := strconv.Atoi(getenv("MAX_UPLOAD_MB", "10"))
	if err != nil || maxMB <= 0 {
		maxMB = 10
	}
	uploadDir := getenv("UPLOAD_DIR", os.TempDir())

	// LOG_FILE="" keeps the default sink; LOG_FILE=off disables file logging.
	logFile := getenv("LOG_FILE", "./cellar.log")
	if strings.EqualFold(logFile, "off") {
		logFile = ""
	}

	cfg := Config{
		Port:          getenv("PORT", "8080"),
		DBDSN:         getenv("DB_DSN", "cellar.db"), // sqlite file in working dir
		LogFile:       logFile,
		Env:           strings.ToLower(getenv("APP_ENV", "development")),
		UploadDir:     uploadDir,
		MaxUploadMB:   maxMB,
		AdminEmail:    getenv("ADMIN_EMAIL", "admin@cellar.local"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		CookieSecure:  getenv("COOKIE_SECURE", "false") == "true",
	}
	pw := "<generated>"
	if cfg.AdminPassword != "" {
		pw = "<redacted>"
	}
	log.Printf("[config] PORT=%s DB_DSN=%s LOG_FILE=%s APP_ENV=%s UPLOAD_DIR=%s MAX_UPLOAD_MB=%d ADMIN_EMAIL=%s ADMIN_PASSWORD=%s",
		cfg.Port, cfg.DBDSN, cfg.LogFile, cfg.Env, cfg.UploadDir, cfg.MaxUploadMB, cfg.AdminEmail, pw)
	return cfg
}
