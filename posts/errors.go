package posts

import "errors"

var (
	// ErrStoreUnavailable is returned when the content root is missing or
	// cannot be listed.
	ErrStoreUnavailable = errors.New("content store unavailable")

	// ErrPostNotFound is returned when no content file backs an identifier.
	ErrPostNotFound = errors.New("post not found")

	// ErrMetadata is returned when a front-matter block is absent, unterminated,
	// not valid YAML, or lacks a required field.
	ErrMetadata = errors.New("malformed metadata")

	// ErrRender is returned when the markdown body cannot be converted to HTML.
	ErrRender = errors.New("render failed")

	// ErrIdentifierConflict is returned when two content files normalize to the
	// same identifier, e.g. post.md and post.markdown.
	ErrIdentifierConflict = errors.New("identifier conflict")
)
