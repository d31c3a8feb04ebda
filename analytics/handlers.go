package analytics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// Handler records page views and serves the stats endpoint.
type Handler struct {
	store   *Store
	log     zerolog.Logger
	limiter *windowCounter
	now     func() time.Time
}

// NewHandler creates a new analytics handler. Each client IP may record at
// most 60 views per minute.
func NewHandler(store *Store, log zerolog.Logger) *Handler {
	return &Handler{
		store:   store,
		log:     log,
		limiter: newWindowCounter(60, time.Minute),
		now:     time.Now,
	}
}

// tracked reports whether a request path is a page worth counting.
func tracked(path string) bool {
	switch {
	case strings.HasPrefix(path, "/api/"),
		strings.HasPrefix(path, "/public/"),
		path == "/feed.xml",
		path == "/sitemap.xml",
		path == "/robots.txt",
		path == "/favicon.ico":
		return false
	}
	return true
}

// Track is echo middleware that records successful GET page views after the
// handler has run. Storage failures are logged and never fail the request.
func (h *Handler) Track(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		err := next(c)

		req := c.Request()
		if err != nil || req.Method != http.MethodGet || c.Response().Status != http.StatusOK {
			return err
		}
		if !tracked(req.URL.Path) || req.Header.Get("DNT") == "1" {
			return nil
		}
		ip := c.RealIP()
		if !h.limiter.allow(ip) {
			return nil
		}
		h.record(c, ip)
		return nil
	}
}

func (h *Handler) record(c echo.Context, ip string) {
	req := c.Request()
	ctx := req.Context()
	ua := req.UserAgent()
	now := h.now().UTC()

	if IsBot(ua) {
		bv := &BotVisit{
			BotName:   BotName(ua),
			IPHash:    h.store.HashIP(ip),
			UserAgent: ua,
			Path:      req.URL.Path,
			Timestamp: now,
		}
		if err := h.store.SaveBotVisit(ctx, bv); err != nil {
			h.log.Error().Err(err).Str("path", bv.Path).Msg("save bot visit")
		}
		return
	}

	visitorID := h.store.VisitorID(ip, ua)
	browser, os, device := ParseUserAgent(ua)
	v := &Visit{
		VisitorID: visitorID,
		SessionID: sessionID(visitorID, now),
		IPHash:    h.store.HashIP(ip),
		Browser:   browser,
		OS:        os,
		Device:    device,
		Path:      req.URL.Path,
		Referrer:  CleanReferrer(req.Referer()),
		Timestamp: now,
	}
	if err := h.store.SaveVisit(ctx, v); err != nil {
		h.log.Error().Err(err).Str("path", v.Path).Msg("save visit")
	}
}

// StatsResponse is the JSON body of GET /api/stats.
type StatsResponse struct {
	Stats      *Stats `json:"stats"`
	PeriodDays int    `json:"period_days"`
}

// parsePeriod accepts "7d", "30d", "90d", "365d" or a bare day count; other
// values fall back to 7 days.
func parsePeriod(period string) int {
	n, err := strconv.Atoi(strings.TrimSuffix(period, "d"))
	if err != nil || n < 1 || n > 365 {
		return 7
	}
	return n
}

// GetStats returns analytics statistics as JSON.
func (h *Handler) GetStats(c echo.Context) error {
	days := parsePeriod(c.QueryParam("period"))
	now := h.now().UTC()
	from := now.AddDate(0, 0, -days).Truncate(24 * time.Hour)
	to := now.Add(24 * time.Hour).Truncate(24 * time.Hour)

	stats, err := h.store.GetStats(c.Request().Context(), from, to)
	if err != nil {
		h.log.Error().Err(err).Msg("get stats")
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
	return c.JSON(http.StatusOK, StatsResponse{Stats: stats, PeriodDays: days})
}

// RegisterRoutes mounts GET /stats on g behind auth.
func (h *Handler) RegisterRoutes(g *echo.Group, auth echo.MiddlewareFunc) {
	g.GET("/stats", h.GetStats, auth)
}
