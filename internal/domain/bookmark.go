package domain

import (
	"time"

	"github.com/google/uuid"
)

// DefaultBookmarkName is used when a bookmark is saved without a label.
const DefaultBookmarkName = "Untitled"

// Bookmark is a saved return point on a page.
// Bookmarks are grouped per URL; within one URL's list every ID is unique.
type Bookmark struct {
	// ID is the canonical unique identifier, generated at creation.
	ID string `json:"id"`

	// Name is the user-supplied label. Never empty after creation
	// (defaults to "Untitled").
	Name string `json:"name"`

	// ScrollPosition is the encoded position value. For plain documents it
	// is the pixel offset from the top; for paginated documents it packs a
	// (page, offset) pair — see EncodePosition.
	ScrollPosition int `json:"scrollPosition"`

	// URL is the exact page URL the bookmark belongs to. No normalization.
	URL string `json:"url"`

	// Timestamp is the creation time as an ISO-8601 string. Readers sort
	// by it descending for display.
	Timestamp string `json:"timestamp"`
}

// NewBookmark builds a bookmark with a fresh ID and the current time.
func NewBookmark(url, name string, position int) Bookmark {
	if name == "" {
		name = DefaultBookmarkName
	}
	if position < 0 {
		position = 0
	}
	return Bookmark{
		ID:             uuid.NewString(),
		Name:           name,
		ScrollPosition: position,
		URL:            url,
		Timestamp:      time.Now().UTC().Format(time.RFC3339),
	}
}
