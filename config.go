package mdblog

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/eringen/mdblog/views"
)

// SiteConfig holds all configuration for an mdblog site.
type SiteConfig struct {
	Name        string // Site name (default "Blog")
	URL         string // Canonical URL (default "http://localhost:3000")
	Description string // Site description for RSS and meta tags
	Author      string // Author name for JSON-LD

	Addr       string // Listen address (default ":3000")
	ContentDir string // Directory holding the markdown posts (default "posts")
	StaticDir  string // Directory served under /public (default "public")

	AnalyticsEnabled      bool          // Record page views (default false)
	AnalyticsDatabasePath string        // Analytics SQLite path (default "data/analytics.db")
	AnalyticsRetention    time.Duration // How long page views are kept (default 365 days)

	PreviewSecret string // Enables draft preview when set
	SessionSecret string // Required when PreviewSecret is set
	CookieSecure  bool   // Set true for HTTPS

	LogLevel  string // debug, info, warn, error (default "info")
	LogFormat string // json or pretty (default "json")
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Blog"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.ContentDir == "" {
		c.ContentDir = "posts"
	}
	if c.StaticDir == "" {
		c.StaticDir = "public"
	}
	if c.AnalyticsDatabasePath == "" {
		c.AnalyticsDatabasePath = "data/analytics.db"
	}
	if c.AnalyticsRetention == 0 {
		c.AnalyticsRetention = 365 * 24 * time.Hour
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogFormat == "" {
		c.LogFormat = "json"
	}
}

// WithDefaults returns a copy of c with empty fields set to their defaults.
func (c SiteConfig) WithDefaults() SiteConfig {
	c.setDefaults()
	return c
}

// Site returns the subset of the config the templates read.
func (c SiteConfig) Site() views.SiteConfig {
	return views.SiteConfig{
		Name:        c.Name,
		URL:         c.URL,
		Description: c.Description,
		Author:      c.Author,
	}
}

// ConfigFromEnv reads a SiteConfig from environment variables. Unset values
// are left empty so defaults apply.
func ConfigFromEnv() SiteConfig {
	return SiteConfig{
		Name:                  os.Getenv("SITE_NAME"),
		URL:                   os.Getenv("SITE_URL"),
		Description:           os.Getenv("SITE_DESCRIPTION"),
		Author:                os.Getenv("SITE_AUTHOR"),
		Addr:                  os.Getenv("ADDR"),
		ContentDir:            os.Getenv("CONTENT_DIR"),
		StaticDir:             os.Getenv("STATIC_DIR"),
		AnalyticsEnabled:      envBool("ANALYTICS_ENABLED", false),
		AnalyticsDatabasePath: os.Getenv("ANALYTICS_DATABASE_PATH"),
		AnalyticsRetention:    envDuration("ANALYTICS_RETENTION", 0),
		PreviewSecret:         os.Getenv("PREVIEW_SECRET"),
		SessionSecret:         os.Getenv("SESSION_SECRET"),
		CookieSecure:          envBool("COOKIE_SECURE", false),
		LogLevel:              os.Getenv("LOG_LEVEL"),
		LogFormat:             os.Getenv("LOG_FORMAT"),
	}
}

// EnvOr returns the value of the environment variable key, or fallback if empty.
func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// MustEnv returns the value of the environment variable key, or fatally exits if empty.
func MustEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		log.Fatalf("mdblog: required environment variable %s is not set", key)
	}
	return v
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App before the server starts.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithPostStore replaces the store built from ContentDir.
func WithPostStore(s PostStore) Option {
	return func(a *App) {
		a.Posts = s
	}
}
