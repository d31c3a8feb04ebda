package mdblog

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/a-h/templ"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/eringen/mdblog/posts"
	"github.com/eringen/mdblog/views"
)

// BuildConfig configures a static export.
type BuildConfig struct {
	Site   SiteConfig
	Posts  PostStore // defaults to posts.Open(Site.ContentDir)
	OutDir string    // default "dist"
	Drafts bool      // include posts with draft: true
	Log    zerolog.Logger
}

// BuildManifest is written to build.json at the root of the output.
type BuildManifest struct {
	BuildID     string    `json:"build_id"`
	GeneratedAt time.Time `json:"generated_at"`
	Posts       []string  `json:"posts"`
}

// Build renders the whole site into cfg.OutDir: the index page, one page per
// post, feed.xml, sitemap.xml, the public assets and build.json. Any error
// aborts the build; files already written are left in place.
func Build(ctx context.Context, cfg BuildConfig) (BuildManifest, error) {
	cfg.Site.setDefaults()
	if cfg.OutDir == "" {
		cfg.OutDir = "dist"
	}
	if cfg.Posts == nil {
		cfg.Posts = posts.Open(cfg.Site.ContentDir)
	}
	site := cfg.Site.Site()

	ids, err := cfg.Posts.Identifiers(ctx)
	if err != nil {
		return BuildManifest{}, fmt.Errorf("mdblog: build: %w", err)
	}
	list, err := cfg.Posts.ListPosts(ctx)
	if err != nil {
		return BuildManifest{}, fmt.Errorf("mdblog: build: %w", err)
	}
	if !cfg.Drafts {
		list = PublishedOnly(list)
	}

	manifest := BuildManifest{
		BuildID:     uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
		Posts:       []string{},
	}

	if err := writeComponent(ctx, filepath.Join(cfg.OutDir, "index.html"), views.Home(site, list)); err != nil {
		return manifest, err
	}

	for _, id := range ids {
		post, err := cfg.Posts.LoadFull(ctx, id)
		if err != nil {
			return manifest, fmt.Errorf("mdblog: build %s: %w", id, err)
		}
		if post.Draft() && !cfg.Drafts {
			cfg.Log.Debug().Str("id", id).Msg("skipping draft")
			continue
		}
		out := filepath.Join(cfg.OutDir, "posts", id, "index.html")
		if err := writeComponent(ctx, out, views.Post(site, post)); err != nil {
			return manifest, err
		}
		manifest.Posts = append(manifest.Posts, id)
		cfg.Log.Debug().Str("id", id).Str("path", out).Msg("wrote post")
	}

	if err := writeXMLFile(filepath.Join(cfg.OutDir, "feed.xml"), buildRSS(cfg.Site, list)); err != nil {
		return manifest, err
	}
	if err := writeXMLFile(filepath.Join(cfg.OutDir, "sitemap.xml"), buildSitemap(cfg.Site, list)); err != nil {
		return manifest, err
	}
	if err := copyPublic(cfg.Site.StaticDir, filepath.Join(cfg.OutDir, "public")); err != nil {
		return manifest, err
	}

	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return manifest, err
	}
	if err := writeFile(filepath.Join(cfg.OutDir, "build.json"), data); err != nil {
		return manifest, err
	}

	cfg.Log.Info().
		Str("build_id", manifest.BuildID).
		Str("out", cfg.OutDir).
		Int("posts", len(manifest.Posts)).
		Msg("build complete")
	return manifest, nil
}

func writeFile(name string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(name), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(name, data, 0o644); err != nil {
		return fmt.Errorf("mdblog: write %s: %w", name, err)
	}
	return nil
}

func writeComponent(ctx context.Context, name string, cmp templ.Component) error {
	var buf bytes.Buffer
	if err := cmp.Render(ctx, &buf); err != nil {
		return fmt.Errorf("mdblog: render %s: %w", name, err)
	}
	return writeFile(name, buf.Bytes())
}

func writeXMLFile(name string, v any) error {
	data, err := xml.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("mdblog: encode %s: %w", name, err)
	}
	return writeFile(name, append([]byte(xml.Header), data...))
}

// copyPublic copies the static directory, if any, and the embedded
// stylesheet into dst. Files from the static directory win.
func copyPublic(staticDir, dst string) error {
	if staticDir != "" {
		err := copyTree(os.DirFS(staticDir), dst)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	styles := filepath.Join(dst, "styles.css")
	if _, err := os.Stat(styles); err == nil {
		return nil
	}
	css, err := EmbeddedAssets.ReadFile("embedded/styles.css")
	if err != nil {
		return err
	}
	return writeFile(styles, css)
}

func copyTree(src fs.FS, dst string) error {
	return fs.WalkDir(src, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		data, err := fs.ReadFile(src, p)
		if err != nil {
			return err
		}
		return writeFile(filepath.Join(dst, filepath.FromSlash(p)), data)
	})
}
