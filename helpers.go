package mdblog

import (
	"net/url"
	"path"
	"strings"

	"github.com/eringen/mdblog/posts"
)

// BuildURL joins a base URL with path segments, ensuring a trailing slash.
func BuildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join(u.Path, path.Join(pathSegments...))
	if len(pathSegments) > 0 && !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u.String()
}

// PublishedOnly drops drafts from a listing, keeping order.
func PublishedOnly(list []posts.Summary) []posts.Summary {
	out := make([]posts.Summary, 0, len(list))
	for _, p := range list {
		if !p.Draft() {
			out = append(out, p)
		}
	}
	return out
}
