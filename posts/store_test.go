package posts

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func file(body string) *fstest.MapFile {
	return &fstest.MapFile{Data: []byte(body)}
}

func post(title, date, body string) *fstest.MapFile {
	return file("---\ntitle: \"" + title + "\"\ndate: \"" + date + "\"\n---\n" + body)
}

func fixtureFS() fstest.MapFS {
	return fstest.MapFS{
		"pre-rendering.md": post("Two Forms of Pre-rendering", "2020-01-01",
			"Next.js has two forms of pre-rendering: **Static Generation** and **Server-side Rendering**.\n"),
		"ssg-ssr.md": post("When to Use Static Generation v.s. Server-side Rendering", "2020-01-02",
			"We recommend using **Static Generation** whenever possible.\n\nYou can also use *Server-side Rendering*.\n"),
		"extras.markdown": file("---\ntitle: \"Go: a tour\"\ndate: 2021-03-04\nauthor: Jane\nreading_minutes: 7\ndraft: true\n---\n# Hello\n"),
		"notes.txt":       file("not a post"),
		".hidden.md":      post("Hidden", "2030-01-01", "hidden"),
		"drafts/deep.md":  post("Nested", "2030-01-01", "nested"),
	}
}

func TestIdentifiers(t *testing.T) {
	s := NewStore(fixtureFS())
	ids, err := s.Identifiers(context.Background())
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"pre-rendering", "ssg-ssr", "extras"}, ids)
}

func TestIdentifiersStoreUnavailable(t *testing.T) {
	s := Open(filepath.Join(t.TempDir(), "missing"))
	ids, err := s.Identifiers(context.Background())
	require.ErrorIs(t, err, ErrStoreUnavailable)
	assert.Nil(t, ids)

	_, err = s.ListPosts(context.Background())
	require.ErrorIs(t, err, ErrStoreUnavailable)
}

func TestIdentifiersCustomPatterns(t *testing.T) {
	s := NewStore(fixtureFS(), WithPatterns("*.md"))
	ids, err := s.Identifiers(context.Background())
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"pre-rendering", "ssg-ssr"}, ids)
}

func TestLoadMetadata(t *testing.T) {
	s := NewStore(fixtureFS())
	got, err := s.LoadMetadata(context.Background(), "extras")
	require.NoError(t, err)

	assert.Equal(t, "extras", got.ID)
	assert.Equal(t, "Go: a tour", got.Title)
	assert.Equal(t, "2021-03-04", got.Date)
	assert.Equal(t, "Jane", got.String("author"))
	assert.Equal(t, 7, got.Extra["reading_minutes"])
	assert.True(t, got.Draft())
	assert.NotContains(t, got.Extra, "title")
	assert.NotContains(t, got.Extra, "date")
}

func TestLoadFull(t *testing.T) {
	s := NewStore(fixtureFS())
	got, err := s.LoadFull(context.Background(), "ssg-ssr")
	require.NoError(t, err)

	assert.Equal(t, "ssg-ssr", got.ID)
	assert.Equal(t, "2020-01-02", got.Date)
	assert.Contains(t, got.ContentHTML, "<strong>Static Generation</strong>")
	assert.Contains(t, got.ContentHTML, "<em>Server-side Rendering</em>")
	assert.Equal(t, 2, strings.Count(got.ContentHTML, "<p>"))
	assert.NotContains(t, got.ContentHTML, "title:")
}

func TestMetadataSameInBothLoadModes(t *testing.T) {
	s := NewStore(fixtureFS())
	ctx := context.Background()
	ids, err := s.Identifiers(ctx)
	require.NoError(t, err)
	for _, id := range ids {
		summary, err := s.LoadMetadata(ctx, id)
		require.NoError(t, err, id)
		full, err := s.LoadFull(ctx, id)
		require.NoError(t, err, id)
		assert.True(t, summary.Metadata.Equal(full.Metadata), "metadata differs for %s", id)
		assert.Equal(t, summary, full.Summary())
	}
}

func TestListPostsSortedNewestFirst(t *testing.T) {
	s := NewStore(fixtureFS())
	ctx := context.Background()
	listing, err := s.ListPosts(ctx)
	require.NoError(t, err)

	ids, err := s.Identifiers(ctx)
	require.NoError(t, err)
	require.Len(t, listing, len(ids))

	got := make([]string, len(listing))
	for i, p := range listing {
		got[i] = p.ID
	}
	assert.Equal(t, []string{"extras", "ssg-ssr", "pre-rendering"}, got)

	for i := 0; i < len(listing); i++ {
		for j := i + 1; j < len(listing); j++ {
			if listing[i].Date != listing[j].Date {
				assert.Greater(t, listing[i].Date, listing[j].Date)
			}
		}
	}
}

func TestListPostsScenarioA(t *testing.T) {
	fsys := fstest.MapFS{
		"2023-01-01.md": post("A", "2023-01-01", "a"),
		"2023-06-01.md": post("B", "2023-06-01", "b"),
	}
	listing, err := NewStore(fsys).ListPosts(context.Background())
	require.NoError(t, err)
	require.Len(t, listing, 2)
	assert.Equal(t, "B", listing[0].Title)
	assert.Equal(t, "A", listing[1].Title)
}

func TestListPostsComparesDatesAsStrings(t *testing.T) {
	fsys := fstest.MapFS{
		"a.md": post("A", "2023-9-01", "a"),
		"b.md": post("B", "2023-10-01", "b"),
	}
	listing, err := NewStore(fsys).ListPosts(context.Background())
	require.NoError(t, err)
	require.Len(t, listing, 2)
	// "2023-9-01" > "2023-10-01" as strings.
	assert.Equal(t, "A", listing[0].Title)
}

func TestListPostsEmptyStore(t *testing.T) {
	listing, err := NewStore(fstest.MapFS{}).ListPosts(context.Background())
	require.NoError(t, err)
	assert.Empty(t, listing)
}

func TestListPostsSequential(t *testing.T) {
	listing, err := NewStore(fixtureFS(), WithConcurrency(1)).ListPosts(context.Background())
	require.NoError(t, err)
	assert.Len(t, listing, 3)
}

func TestListPostsAbortsOnMalformedPost(t *testing.T) {
	fsys := fixtureFS()
	fsys["broken.md"] = file("---\ntitle: Broken\ndate: 2020-01-01\n")
	listing, err := NewStore(fsys).ListPosts(context.Background())
	require.ErrorIs(t, err, ErrMetadata)
	assert.Nil(t, listing)
}

func TestLoadFullMissingPost(t *testing.T) {
	s := NewStore(fixtureFS())
	_, err := s.LoadFull(context.Background(), "missing")
	require.ErrorIs(t, err, ErrPostNotFound)

	_, err = s.LoadMetadata(context.Background(), "missing")
	require.ErrorIs(t, err, ErrPostNotFound)
}

func TestLoadRejectsNonPostIdentifiers(t *testing.T) {
	s := NewStore(fixtureFS())
	for _, id := range []string{"", ".", "notes", ".hidden", "drafts/deep", "../ssg-ssr", "drafts"} {
		_, err := s.LoadMetadata(context.Background(), id)
		assert.ErrorIs(t, err, ErrPostNotFound, "id %q", id)
	}
}

func TestUnterminatedFrontMatter(t *testing.T) {
	fsys := fstest.MapFS{
		"open.md": file("---\ntitle: Open\ndate: 2020-01-01\n\nbody without closing fence\n"),
	}
	s := NewStore(fsys)

	_, err := s.LoadMetadata(context.Background(), "open")
	require.ErrorIs(t, err, ErrMetadata)

	_, err = s.LoadFull(context.Background(), "open")
	require.ErrorIs(t, err, ErrMetadata)
}

func TestMalformedFrontMatter(t *testing.T) {
	tests := map[string]string{
		"invalid yaml":      "---\ntitle: [unclosed\ndate: 2020-01-01\n---\nbody",
		"duplicate key":     "---\ntitle: A\ntitle: B\ndate: 2020-01-01\n---\nbody",
		"missing title":     "---\ndate: 2020-01-01\n---\nbody",
		"missing date":      "---\ntitle: A\n---\nbody",
		"blank title":       "---\ntitle: \"   \"\ndate: 2020-01-01\n---\nbody",
		"no front matter":   "# just markdown\n",
		"fence not first":   "\n---\ntitle: A\ndate: 2020-01-01\n---\nbody",
		"empty file":        "",
		"empty front block": "---\n---\nbody",
	}
	for name, source := range tests {
		t.Run(name, func(t *testing.T) {
			s := NewStore(fstest.MapFS{"p.md": file(source)})
			_, err := s.LoadMetadata(context.Background(), "p")
			assert.ErrorIs(t, err, ErrMetadata)
		})
	}
}

func TestQuotedValueWithColon(t *testing.T) {
	s := NewStore(fstest.MapFS{
		"p.md": file("---\ntitle: 'Time: 10:30'\ndate: \"2020-01-01T10:30:00Z\"\n---\nbody"),
	})
	got, err := s.LoadMetadata(context.Background(), "p")
	require.NoError(t, err)
	assert.Equal(t, "Time: 10:30", got.Title)
	assert.Equal(t, "2020-01-01T10:30:00Z", got.Date)
}

func TestCRLFFrontMatter(t *testing.T) {
	s := NewStore(fstest.MapFS{
		"p.md": file("---\r\ntitle: Windows\r\ndate: 2020-01-01\r\n---\r\nbody\r\n"),
	})
	got, err := s.LoadFull(context.Background(), "p")
	require.NoError(t, err)
	assert.Equal(t, "Windows", got.Title)
	assert.Contains(t, got.ContentHTML, "body")
}

func TestIdentifierConflict(t *testing.T) {
	fsys := fstest.MapFS{
		"post.md":       post("One", "2020-01-01", "one"),
		"post.markdown": post("Two", "2020-01-02", "two"),
		"other.md":      post("Other", "2020-01-03", "other"),
	}
	s := NewStore(fsys)
	ctx := context.Background()

	_, err := s.Identifiers(ctx)
	require.ErrorIs(t, err, ErrIdentifierConflict)

	_, err = s.ListPosts(ctx)
	require.ErrorIs(t, err, ErrIdentifierConflict)

	_, err = s.LoadFull(ctx, "post")
	require.ErrorIs(t, err, ErrIdentifierConflict)

	other, err := s.LoadMetadata(ctx, "other")
	require.NoError(t, err)
	assert.Equal(t, "Other", other.Title)
}

type failingRenderer struct{}

func (failingRenderer) Render(context.Context, []byte) ([]byte, error) {
	return nil, errors.New("boom")
}

func TestRenderError(t *testing.T) {
	s := NewStore(fixtureFS(), WithRenderer(failingRenderer{}))
	_, err := s.LoadFull(context.Background(), "ssg-ssr")
	require.ErrorIs(t, err, ErrRender)
	assert.Contains(t, err.Error(), "boom")

	// Metadata loads and the listing never render.
	_, err = s.ListPosts(context.Background())
	require.NoError(t, err)
}

func TestCancelledContext(t *testing.T) {
	s := NewStore(fixtureFS())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Identifiers(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	_, err = s.LoadFull(ctx, "ssg-ssr")
	assert.ErrorIs(t, err, context.Canceled)
	_, err = s.ListPosts(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestOpenDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "hello.md"),
		[]byte("---\ntitle: Hello\ndate: 2024-05-01\n---\nFirst post.\n"), 0o644))

	s := Open(dir)
	got, err := s.LoadFull(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "Hello", got.Title)
	assert.Equal(t, "<p>First post.</p>\n", got.ContentHTML)
}

func TestSummaryJSON(t *testing.T) {
	s := NewStore(fixtureFS())
	p, err := s.LoadFull(context.Background(), "extras")
	require.NoError(t, err)

	data, err := p.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"id": "extras",
		"title": "Go: a tour",
		"date": "2021-03-04",
		"author": "Jane",
		"reading_minutes": 7,
		"draft": true,
		"contentHtml": "<h1 id=\"hello\">Hello</h1>\n"
	}`, string(data))

	data, err = p.Summary().MarshalJSON()
	require.NoError(t, err)
	assert.NotContains(t, string(data), "contentHtml")
}
