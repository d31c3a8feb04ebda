package mdblog

import (
	"crypto/subtle"
	"net/http"

	"github.com/labstack/echo/v4"
)

type previewRequest struct {
	Secret string `json:"secret" form:"secret"`
}

// handlePreviewEnable starts a preview session when the posted secret matches
// PreviewSecret. Failed attempts are rate limited per client IP.
func (a *App) handlePreviewEnable(c echo.Context) error {
	if !a.previewEnabled() {
		return echo.ErrNotFound
	}
	ip := c.RealIP()
	if !a.previewLimiter.Check(ip) {
		return echo.NewHTTPError(http.StatusTooManyRequests, "too many attempts, try again later")
	}
	var req previewRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request")
	}
	if subtle.ConstantTimeCompare([]byte(req.Secret), []byte(a.Config.PreviewSecret)) != 1 {
		a.previewLimiter.Record(ip)
		a.Log.Warn().Str("ip", ip).Msg("rejected preview secret")
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid secret")
	}
	if err := setPreviewSession(c); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (a *App) handlePreviewDisable(c echo.Context) error {
	if !a.previewEnabled() {
		return echo.ErrNotFound
	}
	if err := clearPreviewSession(c); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
