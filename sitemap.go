package mdblog

import (
	"encoding/xml"

	"github.com/eringen/mdblog/posts"
)

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

func (a *App) sitemap(list []posts.Summary) sitemapURLSet {
	return buildSitemap(a.Config, list)
}

func buildSitemap(cfg SiteConfig, list []posts.Summary) sitemapURLSet {
	urls := []sitemapURL{
		{Loc: BuildURL(cfg.URL)},
	}
	for _, p := range list {
		urls = append(urls, sitemapURL{
			Loc:     BuildURL(cfg.URL, "posts", p.ID),
			LastMod: p.Date,
		})
	}
	return sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  urls,
	}
}
