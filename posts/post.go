package posts

import "encoding/json"

// Summary is the listing form of a post: identifier plus metadata.
type Summary struct {
	ID string
	Metadata
}

// Post is the detail form of a post with its body rendered to HTML.
type Post struct {
	ID          string
	ContentHTML string
	Metadata
}

// Summary drops the rendered body.
func (p Post) Summary() Summary {
	return Summary{ID: p.ID, Metadata: p.Metadata}
}

// MarshalJSON flattens the summary into {"id": ..., "title": ..., ...}.
func (s Summary) MarshalJSON() ([]byte, error) {
	fields := s.Fields()
	fields["id"] = s.ID
	return json.Marshal(fields)
}

// MarshalJSON flattens the post into {"id": ..., "contentHtml": ..., ...}.
func (p Post) MarshalJSON() ([]byte, error) {
	fields := p.Fields()
	fields["id"] = p.ID
	fields["contentHtml"] = p.ContentHTML
	return json.Marshal(fields)
}
