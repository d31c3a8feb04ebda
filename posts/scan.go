package posts

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

type entry struct {
	id   string
	name string
}

// Identifiers lists the identifiers of all posts in the content root, in
// directory enumeration order. Two files normalizing to the same identifier
// fail the whole scan with ErrIdentifierConflict.
func (s *Store) Identifiers(ctx context.Context) ([]string, error) {
	entries, err := s.scan(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.id
	}
	return ids, nil
}

func (s *Store) scan(ctx context.Context) ([]entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	dirEntries, err := fs.ReadDir(s.fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("posts: list content root: %w: %w", ErrStoreUnavailable, err)
	}

	var entries []entry
	seen := make(map[string]string)
	for _, d := range dirEntries {
		name := d.Name()
		if d.IsDir() || strings.HasPrefix(name, ".") || !s.matches(name) {
			continue
		}
		id := identifier(name)
		if prev, ok := seen[id]; ok {
			return nil, fmt.Errorf("posts: %s and %s both map to %q: %w", prev, name, id, ErrIdentifierConflict)
		}
		seen[id] = name
		entries = append(entries, entry{id: id, name: name})
	}
	return entries, nil
}

// resolve finds the single file backing id.
func (s *Store) resolve(id string) (string, error) {
	if id == "" || id == "." || strings.ContainsAny(id, `/\`) || !fs.ValidPath(id) {
		return "", fmt.Errorf("posts: %q: %w", id, ErrPostNotFound)
	}
	dirEntries, err := fs.ReadDir(s.fsys, ".")
	if err != nil {
		return "", fmt.Errorf("posts: list content root: %w: %w", ErrStoreUnavailable, err)
	}
	var found string
	for _, d := range dirEntries {
		name := d.Name()
		if d.IsDir() || strings.HasPrefix(name, ".") || identifier(name) != id || !s.matches(name) {
			continue
		}
		if found != "" {
			return "", fmt.Errorf("posts: %s and %s both map to %q: %w", found, name, id, ErrIdentifierConflict)
		}
		found = name
	}
	if found == "" {
		return "", fmt.Errorf("posts: %q: %w", id, ErrPostNotFound)
	}
	return found, nil
}

func (s *Store) matches(name string) bool {
	for _, p := range s.patterns {
		if ok, err := doublestar.Match(p, name); err == nil && ok {
			return true
		}
	}
	return false
}

// identifier strips the last extension from a file name.
func identifier(name string) string {
	return strings.TrimSuffix(name, path.Ext(name))
}

func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
