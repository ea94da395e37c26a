package sni

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"

	"github.com/eringen/sni/mempool"
	"github.com/eringen/sni/urls"
	"github.com/eringen/sni/views"
)

func (a *App) handleRoot(c echo.Context) error {
	locale := a.Locales.Match(c.Request().Header.Get("Accept-Language"))
	return c.Redirect(http.StatusFound, urls.For(locale).Mempool.Index)
}

func (a *App) localeParam(c echo.Context) (string, error) {
	locale := c.Param("locale")
	if !a.Locales.Supported(locale) {
		return "", echo.ErrNotFound
	}
	return locale, nil
}

func (a *App) handleIndex(c echo.Context) error {
	locale, err := a.localeParam(c)
	if err != nil {
		return err
	}
	cmp, err := a.Pages.RenderIndex(c.Request().Context(), locale)
	if err != nil {
		return err
	}
	return Render(c, cmp)
}

func (a *App) handlePost(c echo.Context) error {
	locale, err := a.localeParam(c)
	if err != nil {
		return err
	}
	slug, err := pathParam(c, "slug")
	if err != nil {
		return echo.ErrNotFound
	}
	cmp, err := a.Pages.Render(c.Request().Context(), mempool.Params{Locale: locale, Slug: slug})
	if err != nil {
		return err
	}
	return Render(c, cmp)
}

// pathParam returns the decoded value of a route parameter. Echo matches on
// the raw path only when the request carries one; otherwise the parameter is
// already decoded.
func pathParam(c echo.Context, name string) (string, error) {
	v := c.Param(name)
	if c.Request().URL.RawPath == "" {
		return v, nil
	}
	return url.PathUnescape(v)
}

func (a *App) handleFeed(c echo.Context) error {
	locale, err := a.localeParam(c)
	if err != nil {
		return err
	}
	b, err := a.feed(c.Request().Context(), locale)
	if err != nil {
		return err
	}
	return c.Blob(http.StatusOK, "application/rss+xml; charset=utf-8", b)
}

func (a *App) handleSitemap(c echo.Context) error {
	b, err := a.sitemap(c.Request().Context())
	if err != nil {
		return err
	}
	return c.Blob(http.StatusOK, "application/xml; charset=utf-8", b)
}

func (a *App) handleHealth(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	he, ok := err.(*echo.HTTPError)
	if errors.Is(err, mempool.ErrNotFound) || (ok && he.Code == http.StatusNotFound) {
		if rerr := RenderStatus(c, http.StatusNotFound, a.Pages.RenderNotFound(c.Param("locale"))); rerr != nil {
			c.Logger().Errorf("render not found: %v", rerr)
			_ = c.NoContent(http.StatusNotFound)
		}
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		c.Logger().Errorf("server error: %v", err)
		if rerr := RenderStatus(c, code, views.ServerError()); rerr != nil {
			_ = c.NoContent(code)
		}
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}
