package gallery

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Image is a single gallery record.
type Image struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt,omitzero"`
	Category    string    `json:"folder,omitempty"`
}

// Fields is the payload used to create an image.
type Fields struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description,omitempty"`
}

// Patch carries the changed fields of an update. Nil fields are left untouched.
type Patch struct {
	ID          string
	Title       *string
	URL         *string
	Description *string
}

// Apply returns img with the non-nil patch fields merged over it.
// ID and CreatedAt are never changed.
func (p Patch) Apply(img Image) Image {
	if p.Title != nil {
		img.Title = *p.Title
	}
	if p.URL != nil {
		img.URL = *p.URL
	}
	if p.Description != nil {
		img.Description = *p.Description
	}
	return img
}

// PatchFrom builds a patch that sets every editable field from f.
func PatchFrom(id string, f Fields) Patch {
	title, link, desc := f.Title, f.URL, f.Description
	return Patch{ID: id, Title: &title, URL: &link, Description: &desc}
}

// Fields returns the editable fields of the image.
func (img Image) Fields() Fields {
	return Fields{Title: img.Title, URL: img.URL, Description: img.Description}
}

// NewID returns a random record identifier.
func NewID() string {
	return uuid.NewString()
}

// ValidationError reports the first invalid field of a payload.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

// Validate checks that title and url are present and that url is an absolute
// http(s) URL. Values are trimmed before checking.
func Validate(f Fields) error {
	if strings.TrimSpace(f.Title) == "" {
		return &ValidationError{Field: "title", Reason: "is required"}
	}
	raw := strings.TrimSpace(f.URL)
	if raw == "" {
		return &ValidationError{Field: "url", Reason: "is required"}
	}
	u, err := url.ParseRequestURI(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return &ValidationError{Field: "url", Reason: "must be a valid http(s) URL"}
	}
	return nil
}

// ReservedCategory is the path segment of the category listing endpoint. A
// category with this name would be shadowed by it, so it cannot be used.
const ReservedCategory = "categories"

// ValidateCategory rejects empty and reserved category names.
func ValidateCategory(name string) error {
	switch strings.TrimSpace(name) {
	case "":
		return &ValidationError{Field: "category", Reason: "is required"}
	case ReservedCategory:
		return &ValidationError{Field: "category", Reason: "is reserved"}
	}
	return nil
}

// Normalize trims surrounding whitespace from every field.
func (f Fields) Normalize() Fields {
	return Fields{
		Title:       strings.TrimSpace(f.Title),
		URL:         strings.TrimSpace(f.URL),
		Description: strings.TrimSpace(f.Description),
	}
}
