package views

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/a-h/templ"

	"github.com/eringen/mdblog/posts"
)

func renderString(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	if err := c.Render(context.Background(), &buf); err != nil {
		t.Fatalf("render failed: %v", err)
	}
	return buf.String()
}

func TestFormatDate(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"2020-01-01", "January 1, 2020"},
		{"2023-06-15T10:30:00Z", "June 15, 2023"},
		{"2023-06-15 10:30:00", "June 15, 2023"},
		{"someday", "someday"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := FormatDate(tt.input); got != tt.expected {
			t.Errorf("FormatDate(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestPostPath(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"ssg-ssr", "/posts/ssg-ssr/"},
		{"hello world", "/posts/hello%20world/"},
	}
	for _, tt := range tests {
		if got := PostPath(tt.input); got != tt.expected {
			t.Errorf("PostPath(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestBuildURL(t *testing.T) {
	tests := []struct {
		base     string
		segments []string
		expected string
	}{
		{"https://example.com", nil, "https://example.com"},
		{"https://example.com", []string{"posts", "hello"}, "https://example.com/posts/hello/"},
		{"https://example.com/blog", []string{"posts", "a"}, "https://example.com/blog/posts/a/"},
	}
	for _, tt := range tests {
		if got := buildURL(tt.base, tt.segments...); got != tt.expected {
			t.Errorf("buildURL(%q, %v) = %q, want %q", tt.base, tt.segments, got, tt.expected)
		}
	}
}

func TestHomeListsPostsInOrder(t *testing.T) {
	site := SiteConfig{Name: "My Blog", URL: "https://example.com"}
	list := []posts.Summary{
		{ID: "b", Metadata: posts.Metadata{Title: "B & more", Date: "2023-06-01"}},
		{ID: "a", Metadata: posts.Metadata{Title: "A", Date: "2023-01-01"}},
	}
	got := renderString(t, Home(site, list))

	if !strings.Contains(got, `<a href="/posts/b/">B &amp; more</a>`) {
		t.Errorf("home should link and escape post B: %q", got)
	}
	if strings.Index(got, "/posts/b/") > strings.Index(got, "/posts/a/") {
		t.Errorf("home should keep listing order: %q", got)
	}
	if !strings.Contains(got, `<time datetime="2023-06-01">June 1, 2023</time>`) {
		t.Errorf("home should format dates: %q", got)
	}
	if !strings.Contains(got, "<title>My Blog</title>") {
		t.Errorf("home title missing: %q", got)
	}
}

func TestPostRendersBodyUnescaped(t *testing.T) {
	site := SiteConfig{Name: "My Blog", URL: "https://example.com", Author: "Site Author"}
	p := posts.Post{
		ID:          "hello",
		ContentHTML: "<p><strong>Hi</strong></p>\n",
		Metadata: posts.Metadata{
			Title: "Hello <World>",
			Date:  "2024-02-03",
			Extra: map[string]any{"description": "A greeting"},
		},
	}
	got := renderString(t, Post(site, p))

	checks := []string{
		"<title>Hello &lt;World&gt; | My Blog</title>",
		`<h1 class="heading-xl">Hello &lt;World&gt;</h1>`,
		"<p><strong>Hi</strong></p>",
		`<meta name="description" content="A greeting"/>`,
		`<link rel="canonical" href="https://example.com/posts/hello/"/>`,
		"February 3, 2024",
		`"@type":"BlogPosting"`,
	}
	for _, c := range checks {
		if !strings.Contains(got, c) {
			t.Errorf("post page missing %q in %q", c, got)
		}
	}
}

func TestBlogPostingJsonLDPrefersPostAuthor(t *testing.T) {
	site := SiteConfig{Name: "Blog", URL: "https://example.com", Author: "Site"}
	p := posts.Post{ID: "x", Metadata: posts.Metadata{Title: "X", Date: "2024-01-01", Extra: map[string]any{"author": "Jane"}}}
	got := BlogPostingJsonLD(site, p)
	if !strings.Contains(got, `"name":"Jane"`) {
		t.Errorf("expected post author in JSON-LD: %s", got)
	}
}

func TestNotFoundPage(t *testing.T) {
	got := renderString(t, NotFound(SiteConfig{Name: "Blog"}))
	if !strings.Contains(got, "This page could not be found.") {
		t.Errorf("not found page missing message: %q", got)
	}
}
