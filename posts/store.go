// Package posts loads blog posts from a directory of markdown files.
//
// Each file starts with a YAML front-matter block fenced by "---" lines,
// followed by a markdown body. A post's identifier is its file name with the
// extension stripped. The Store lists identifiers, loads metadata, renders
// bodies to HTML and assembles the date-sorted listing. It holds no cache:
// every call reads the files again.
package posts

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"runtime"

	"github.com/eringen/mdblog/markdown"
)

// DefaultPatterns matches the file names recognized as posts.
var DefaultPatterns = []string{"*.{md,markdown}"}

// Renderer converts a markdown body to HTML.
type Renderer interface {
	Render(ctx context.Context, source []byte) ([]byte, error)
}

// Store reads posts from a content root.
type Store struct {
	fsys        fs.FS
	patterns    []string
	renderer    Renderer
	concurrency int
}

// Option configures a Store.
type Option func(*Store)

// WithPatterns replaces the doublestar patterns used to recognize post files.
func WithPatterns(patterns ...string) Option {
	return func(s *Store) {
		s.patterns = append([]string(nil), patterns...)
	}
}

// WithRenderer sets the markdown renderer used by LoadFull.
func WithRenderer(r Renderer) Option {
	return func(s *Store) {
		s.renderer = r
	}
}

// WithConcurrency bounds how many files ListPosts reads at once.
func WithConcurrency(n int) Option {
	return func(s *Store) {
		s.concurrency = n
	}
}

// NewStore returns a Store reading posts from fsys.
func NewStore(fsys fs.FS, opts ...Option) *Store {
	s := &Store{
		fsys:        fsys,
		patterns:    DefaultPatterns,
		concurrency: runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.renderer == nil {
		s.renderer = markdown.NewRenderer(markdown.Options{})
	}
	if s.concurrency < 1 {
		s.concurrency = 1
	}
	return s
}

// Open returns a Store reading posts from the directory dir.
func Open(dir string, opts ...Option) *Store {
	return NewStore(os.DirFS(dir), opts...)
}

// LoadMetadata reads the post with the given identifier and returns its
// metadata without rendering the body.
func (s *Store) LoadMetadata(ctx context.Context, id string) (Summary, error) {
	meta, _, err := s.read(ctx, id)
	if err != nil {
		return Summary{}, err
	}
	return Summary{ID: id, Metadata: meta}, nil
}

// LoadFull reads the post with the given identifier and renders its body.
func (s *Store) LoadFull(ctx context.Context, id string) (Post, error) {
	meta, body, err := s.read(ctx, id)
	if err != nil {
		return Post{}, err
	}
	html, err := s.renderer.Render(ctx, body)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Post{}, ctxErr
		}
		return Post{}, fmt.Errorf("posts: render %q: %w: %w", id, ErrRender, err)
	}
	return Post{ID: id, ContentHTML: string(html), Metadata: meta}, nil
}

func (s *Store) read(ctx context.Context, id string) (Metadata, []byte, error) {
	if err := ctx.Err(); err != nil {
		return Metadata{}, nil, err
	}
	name, err := s.resolve(id)
	if err != nil {
		return Metadata{}, nil, err
	}
	return s.readFile(id, name)
}

func (s *Store) readFile(id, name string) (Metadata, []byte, error) {
	source, err := fs.ReadFile(s.fsys, name)
	if err != nil {
		if isNotExist(err) {
			return Metadata{}, nil, fmt.Errorf("posts: %q: %w", id, ErrPostNotFound)
		}
		return Metadata{}, nil, fmt.Errorf("posts: read %s: %w", name, err)
	}
	meta, body, err := parseFrontMatter(source)
	if err != nil {
		return Metadata{}, nil, fmt.Errorf("posts: %s: %w: %w", name, ErrMetadata, err)
	}
	return meta, body, nil
}
