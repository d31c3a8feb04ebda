package views

import (
	"context"
	"io"
	"strings"

	"github.com/a-h/templ"

	"github.com/eringen/mdblog/posts"
)

// htmlWriter accumulates the first write error so components can emit markup
// without checking every call.
type htmlWriter struct {
	w   io.Writer
	err error
}

func (hw *htmlWriter) raw(parts ...string) {
	for _, p := range parts {
		if hw.err != nil {
			return
		}
		_, hw.err = io.WriteString(hw.w, p)
	}
}

func (hw *htmlWriter) text(s string) {
	hw.raw(templ.EscapeString(s))
}

func (hw *htmlWriter) component(ctx context.Context, c templ.Component) {
	if hw.err != nil {
		return
	}
	hw.err = c.Render(ctx, hw.w)
}

// Layout wraps body in the document shell shared by every page.
func Layout(site SiteConfig, meta PageMeta, home bool, jsonLD string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := &htmlWriter{w: w}
		title := site.Name
		if meta.Title != "" && meta.Title != site.Name {
			title = meta.Title + " | " + site.Name
		}
		ogType := meta.OGType
		if ogType == "" {
			ogType = "website"
		}

		hw.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8"/>`,
			`<meta name="viewport" content="width=device-width, initial-scale=1"/>`)
		hw.raw(`<title>`)
		hw.text(title)
		hw.raw(`</title>`)
		if meta.Description != "" {
			hw.raw(`<meta name="description" content="`)
			hw.text(meta.Description)
			hw.raw(`"/><meta property="og:description" content="`)
			hw.text(meta.Description)
			hw.raw(`"/>`)
		}
		hw.raw(`<meta property="og:title" content="`)
		hw.text(title)
		hw.raw(`"/><meta property="og:type" content="`)
		hw.text(ogType)
		hw.raw(`"/>`)
		if meta.URL != "" {
			hw.raw(`<link rel="canonical" href="`)
			hw.text(meta.URL)
			hw.raw(`"/><meta property="og:url" content="`)
			hw.text(meta.URL)
			hw.raw(`"/>`)
		}
		hw.raw(`<link rel="alternate" type="application/rss+xml" title="`)
		hw.text(site.Name)
		hw.raw(`" href="/feed.xml"/>`)
		hw.raw(`<link rel="stylesheet" href="/public/styles.css"/>`)
		if jsonLD != "" {
			hw.raw(`<script type="application/ld+json">`, jsonLD, `</script>`)
		}
		hw.raw(`</head><body><div class="container"><header class="header">`)
		if home {
			hw.raw(`<h1 class="heading-2xl">`)
			hw.text(site.Name)
			hw.raw(`</h1>`)
			if site.Description != "" {
				hw.raw(`<p class="lead">`)
				hw.text(site.Description)
				hw.raw(`</p>`)
			}
		} else {
			hw.raw(`<h2 class="heading-lg"><a href="/">`)
			hw.text(site.Name)
			hw.raw(`</a></h2>`)
		}
		hw.raw(`</header><main>`)
		hw.component(ctx, body)
		hw.raw(`</main>`)
		if !home {
			hw.raw(`<div class="back-to-home"><a href="/">← Back to home</a></div>`)
		}
		hw.raw(`</div></body></html>`)
		return hw.err
	})
}

// PostList renders the listing section: title link and formatted date per post.
func PostList(list []posts.Summary) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := &htmlWriter{w: w}
		hw.raw(`<section class="heading-md padding-1px"><h2 class="heading-lg">Blog</h2><ul class="list">`)
		for _, p := range list {
			hw.raw(`<li class="list-item"><a href="`)
			hw.text(PostPath(p.ID))
			hw.raw(`">`)
			hw.text(p.Title)
			hw.raw(`</a><br/><small class="light-text">`)
			dateTag(hw, p.Date)
			hw.raw(`</small></li>`)
		}
		hw.raw(`</ul></section>`)
		return hw.err
	})
}

// Home is the index page.
func Home(site SiteConfig, list []posts.Summary) templ.Component {
	meta := PageMeta{
		Title:       site.Name,
		Description: site.Description,
		URL:         buildURL(site.URL),
	}
	return Layout(site, meta, true, WebsiteJsonLD(site), PostList(list))
}

// Article renders the title, date and HTML body of one post.
func Article(p posts.Post) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := &htmlWriter{w: w}
		hw.raw(`<article><h1 class="heading-xl">`)
		hw.text(p.Title)
		hw.raw(`</h1><div class="light-text">`)
		dateTag(hw, p.Date)
		hw.raw(`</div><div class="post-body">`)
		hw.component(ctx, templ.Raw(p.ContentHTML))
		hw.raw(`</div></article>`)
		return hw.err
	})
}

// Post is the detail page of one post.
func Post(site SiteConfig, p posts.Post) templ.Component {
	meta := PageMeta{
		Title:       p.Title,
		Description: Description(p.Metadata),
		URL:         buildURL(site.URL, "posts", p.ID),
		OGType:      "article",
	}
	return Layout(site, meta, false, BlogPostingJsonLD(site, p), Article(p))
}

// NotFound is rendered for unknown routes and identifiers.
func NotFound(site SiteConfig) templ.Component {
	return Layout(site, PageMeta{Title: "Not found"}, false, "", message("404", "This page could not be found."))
}

// ServerError is rendered when a page fails to load.
func ServerError(site SiteConfig) templ.Component {
	return Layout(site, PageMeta{Title: "Error"}, false, "", message("500", "Something went wrong."))
}

func message(code, text string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := &htmlWriter{w: w}
		hw.raw(`<section class="message"><h1 class="heading-xl">`)
		hw.text(code)
		hw.raw(`</h1><p>`)
		hw.text(text)
		hw.raw(`</p></section>`)
		return hw.err
	})
}

func dateTag(hw *htmlWriter, date string) {
	hw.raw(`<time datetime="`)
	hw.text(strings.TrimSpace(date))
	hw.raw(`">`)
	hw.text(FormatDate(date))
	hw.raw(`</time>`)
}
