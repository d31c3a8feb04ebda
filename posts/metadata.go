package posts

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/adrg/frontmatter"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"
)

// fence opens and closes the metadata block. It must be the first line.
const fence = "---"

// yamlFormat is the only front-matter dialect accepted. yaml.v3 rejects
// duplicate keys, which keeps keys unique within one post.
var yamlFormat = frontmatter.NewFormat(fence, fence, yaml.Unmarshal)

// Metadata is the front matter of one post. Title and Date are required;
// every other key lands in Extra.
type Metadata struct {
	Title string
	Date  string
	Extra map[string]any
}

// Get returns the value stored under key, including title and date.
func (m Metadata) Get(key string) (any, bool) {
	switch key {
	case "title":
		return m.Title, true
	case "date":
		return m.Date, true
	}
	v, ok := m.Extra[key]
	return v, ok
}

// String returns the value under key when it is a string, or "".
func (m Metadata) String(key string) string {
	v, _ := m.Get(key)
	s, _ := v.(string)
	return s
}

// Draft reports whether the post carries "draft: true".
func (m Metadata) Draft() bool {
	v, _ := m.Extra["draft"].(bool)
	return v
}

// Fields returns a flat copy of all metadata keys.
func (m Metadata) Fields() map[string]any {
	out := make(map[string]any, len(m.Extra)+2)
	for k, v := range m.Extra {
		out[k] = v
	}
	out["title"] = m.Title
	out["date"] = m.Date
	return out
}

// Equal reports whether two metadata values carry the same keys and values.
func (m Metadata) Equal(o Metadata) bool {
	a, err := json.Marshal(m.Fields())
	if err != nil {
		return false
	}
	b, err := json.Marshal(o.Fields())
	if err != nil {
		return false
	}
	return bytes.Equal(a, b)
}

type frontMatter struct {
	Title string         `yaml:"title" json:"title"`
	Date  string         `yaml:"date" json:"date"`
	Extra map[string]any `yaml:",inline" json:"-"`
}

func (f *frontMatter) validate() error {
	f.Title = strings.TrimSpace(f.Title)
	f.Date = strings.TrimSpace(f.Date)
	return validation.ValidateStruct(f,
		validation.Field(&f.Title, validation.Required),
		validation.Field(&f.Date, validation.Required),
	)
}

// parseFrontMatter splits source into metadata and markdown body.
func parseFrontMatter(source []byte) (Metadata, []byte, error) {
	first, _, _ := bytes.Cut(source, []byte("\n"))
	if string(bytes.TrimRight(first, "\r")) != fence {
		return Metadata{}, nil, errors.New("missing front matter: first line must be " + fence)
	}

	var fm frontMatter
	body, err := frontmatter.MustParse(bytes.NewReader(source), &fm, yamlFormat)
	if err != nil {
		if errors.Is(err, frontmatter.ErrNotFound) {
			return Metadata{}, nil, errors.New("unterminated front matter: no closing " + fence)
		}
		return Metadata{}, nil, fmt.Errorf("parse front matter: %w", err)
	}
	if err := fm.validate(); err != nil {
		return Metadata{}, nil, fmt.Errorf("front matter: %w", err)
	}
	if fm.Extra == nil {
		fm.Extra = map[string]any{}
	}
	return Metadata{Title: fm.Title, Date: fm.Date, Extra: fm.Extra}, body, nil
}
