package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writePosts(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"a.md":     "---\ntitle: \"Alpha\"\ndate: \"2020-01-01\"\n---\nA\n",
		"b.md":     "---\ntitle: \"Beta\"\ndate: \"2020-01-02\"\n---\nB\n",
		"draft.md": "---\ntitle: \"Draft\"\ndate: \"2020-01-03\"\ndraft: true\n---\nD\n",
	}
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	return dir
}

func TestListJSON(t *testing.T) {
	dir := writePosts(t)
	out, err := run(t, "list", "--json", "--content-dir", dir)
	require.NoError(t, err)

	var list []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &list))
	require.Len(t, list, 2)
	assert.Equal(t, "b", list[0]["id"])
	assert.Equal(t, "a", list[1]["id"])
}

func TestListTableWithDrafts(t *testing.T) {
	dir := writePosts(t)
	out, err := run(t, "list", "--drafts", "--content-dir", dir)
	require.NoError(t, err)

	assert.Contains(t, out, "Alpha")
	assert.Contains(t, out, "January 3, 2020")
	assert.Contains(t, out, "yes")
}

func TestListMissingContentDir(t *testing.T) {
	_, err := run(t, "list", "--content-dir", filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestBuildCommand(t *testing.T) {
	dir := writePosts(t)
	out := filepath.Join(t.TempDir(), "site")
	stdout, err := run(t, "build", "--content-dir", dir, "--out", out, "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Built 2 posts")
	assert.FileExists(t, filepath.Join(out, "posts", "a", "index.html"))
}

func TestNewCommand(t *testing.T) {
	parent := t.TempDir()
	out, err := run(t, "new", "my-blog", "--dir", parent)
	require.NoError(t, err)
	assert.Contains(t, out, "Creating new mdblog project: my-blog")
	assert.FileExists(t, filepath.Join(parent, "my-blog", "posts", "ssg-ssr.md"))
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "mdblog dev\n", out)
}
