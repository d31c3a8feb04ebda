package mdblog

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/eringen/mdblog/posts"
	"github.com/eringen/mdblog/views"
)

// visiblePosts returns the listing, hiding drafts outside preview mode.
func (a *App) visiblePosts(c echo.Context) ([]posts.Summary, error) {
	list, err := a.Posts.ListPosts(c.Request().Context())
	if err != nil {
		return nil, err
	}
	if IsPreview(c) {
		return list, nil
	}
	return PublishedOnly(list), nil
}

// loadPost loads one post; drafts are reported as not found outside preview mode.
func (a *App) loadPost(c echo.Context) (posts.Post, error) {
	post, err := a.Posts.LoadFull(c.Request().Context(), c.Param("id"))
	if err != nil {
		return posts.Post{}, err
	}
	if post.Draft() && !IsPreview(c) {
		return posts.Post{}, posts.ErrPostNotFound
	}
	return post, nil
}

func (a *App) handleHome(c echo.Context) error {
	list, err := a.visiblePosts(c)
	if err != nil {
		return err
	}
	return Render(c, views.Home(a.Config.Site(), list))
}

func (a *App) handlePost(c echo.Context) error {
	post, err := a.loadPost(c)
	if err != nil {
		if errors.Is(err, posts.ErrPostNotFound) {
			return RenderStatus(c, http.StatusNotFound, views.NotFound(a.Config.Site()))
		}
		return err
	}
	return Render(c, views.Post(a.Config.Site(), post))
}

func (a *App) handleAPIPosts(c echo.Context) error {
	list, err := a.visiblePosts(c)
	if err != nil {
		return err
	}
	if list == nil {
		list = []posts.Summary{}
	}
	return c.JSON(http.StatusOK, list)
}

func (a *App) handleAPIPost(c echo.Context) error {
	post, err := a.loadPost(c)
	if err != nil {
		if errors.Is(err, posts.ErrPostNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "post not found")
		}
		return err
	}
	return c.JSON(http.StatusOK, post)
}

func handleHello(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"text": "Hello"})
}

func (a *App) handleSitemap(c echo.Context) error {
	list, err := a.visiblePosts(c)
	if err != nil {
		return err
	}
	return writeXML(c, "application/xml; charset=utf-8", a.sitemap(list))
}

func (a *App) handleFeed(c echo.Context) error {
	list, err := a.visiblePosts(c)
	if err != nil {
		return err
	}
	return writeXML(c, "application/rss+xml; charset=utf-8", a.rss(list))
}

func handleStyles(c echo.Context) error {
	data, err := EmbeddedAssets.ReadFile("embedded/styles.css")
	if err != nil {
		return err
	}
	return c.Blob(http.StatusOK, "text/css; charset=utf-8", data)
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	isAPI := strings.HasPrefix(c.Request().URL.Path, "/api/")

	code := http.StatusInternalServerError
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
	}

	if code >= 500 {
		a.Log.Error().
			Err(err).
			Str("method", c.Request().Method).
			Str("uri", c.Request().RequestURI).
			Msg("server error")
		if !isAPI {
			_ = RenderStatus(c, code, views.ServerError(a.Config.Site()))
			return
		}
	}
	if code == http.StatusNotFound && !isAPI {
		_ = RenderStatus(c, http.StatusNotFound, views.NotFound(a.Config.Site()))
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}
