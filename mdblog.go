// Package mdblog is a markdown blog built with Go, Echo, and templ.
// Posts are markdown files with a YAML front-matter block, read from a
// content directory on every request. The App serves an index page, one page
// per post, a JSON API, RSS and a sitemap; Build exports the same pages as a
// static site.
package mdblog

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/eringen/mdblog/analytics"
	"github.com/eringen/mdblog/logger"
	"github.com/eringen/mdblog/posts"
)

// PostStore is the part of posts.Store the web layer calls.
type PostStore interface {
	Identifiers(ctx context.Context) ([]string, error)
	ListPosts(ctx context.Context) ([]posts.Summary, error)
	LoadFull(ctx context.Context, id string) (posts.Post, error)
}

// App is the central mdblog application. It wires together the post store,
// analytics, handlers, and middleware.
type App struct {
	Config SiteConfig
	Echo   *echo.Echo
	Posts  PostStore
	Log    zerolog.Logger

	previewLimiter *AttemptLimiter
	analyticsStore *analytics.Store
	tracker        *analytics.Handler
	stopCleanup    func()
	customRoutes   []func(*App)
	initialized    bool
}

// New creates a new App with the given configuration.
func New(cfg SiteConfig, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config: cfg,
		Echo:   echo.New(),
		Log:    logger.New(cfg.LogLevel, cfg.LogFormat),
	}
	a.Echo.HideBanner = true
	a.Echo.HidePort = true

	for _, opt := range opts {
		opt(a)
	}
	if a.Posts == nil {
		a.Posts = posts.Open(cfg.ContentDir)
	}
	return a
}

// Init opens analytics, installs middleware and registers routes. Start calls
// it; tests call it directly and drive a.Echo with httptest.
func (a *App) Init() error {
	if a.initialized {
		return nil
	}
	if a.Config.PreviewSecret != "" && a.Config.SessionSecret == "" {
		return fmt.Errorf("mdblog: SessionSecret is required when PreviewSecret is set")
	}

	a.previewLimiter = NewAttemptLimiter(5, time.Minute)

	if a.Config.AnalyticsEnabled {
		if err := os.MkdirAll(filepath.Dir(a.Config.AnalyticsDatabasePath), 0o755); err != nil {
			return fmt.Errorf("mdblog: init analytics: %w", err)
		}
		store, err := analytics.NewStore(a.Config.AnalyticsDatabasePath)
		if err != nil {
			return fmt.Errorf("mdblog: init analytics: %w", err)
		}
		if err := analytics.InitSalt(store); err != nil {
			store.Close()
			return fmt.Errorf("mdblog: init analytics salt: %w", err)
		}
		a.analyticsStore = store
		a.tracker = analytics.NewHandler(store, a.Log)
		a.stopCleanup = store.StartCleanupScheduler(a.Config.AnalyticsRetention, 24*time.Hour, a.Log)
	}

	a.setupMiddleware()
	a.setupRoutes()
	for _, fn := range a.customRoutes {
		fn(a)
	}
	a.initialized = true
	return nil
}

// Start initializes the app and serves HTTP until the server is shut down.
func (a *App) Start() error {
	if err := a.Init(); err != nil {
		return err
	}
	a.Log.Info().
		Str("addr", a.Config.Addr).
		Str("content_dir", a.Config.ContentDir).
		Msg("server starting")
	if err := a.Echo.Start(a.Config.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the HTTP server gracefully.
func (a *App) Shutdown(ctx context.Context) error {
	return a.Echo.Shutdown(ctx)
}

func (a *App) setupRoutes() {
	e := a.Echo

	e.GET("/public/styles.css", handleStyles)
	e.Static("/public", a.Config.StaticDir)

	e.GET("/", a.handleHome)
	e.GET("/posts/:id/", a.handlePost)
	e.GET("/feed.xml", a.handleFeed)
	e.GET("/sitemap.xml", a.handleSitemap)

	api := e.Group("/api")
	api.GET("/hello", handleHello)
	api.GET("/posts", a.handleAPIPosts)
	api.GET("/posts/:id", a.handleAPIPost)
	api.POST("/preview", a.handlePreviewEnable)
	api.DELETE("/preview", a.handlePreviewDisable)

	if a.tracker != nil {
		a.tracker.RegisterRoutes(api, a.requirePreview)
	}
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.stopCleanup != nil {
		a.stopCleanup()
	}
	if a.analyticsStore != nil {
		return a.analyticsStore.Close()
	}
	return nil
}
