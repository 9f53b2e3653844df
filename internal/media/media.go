// Package media stores gallery images for the proxy server. Two backends
// exist: Minio (any S3-compatible store) and Memory (development and tests).
package media

import (
	"context"
	"errors"
	"strings"

	"github.com/five82/folio/internal/gallery"
)

// RootPrefix is the key prefix every stored image lives under. Image ids are
// full keys, e.g. "gallery/anime/3f0c...".
const RootPrefix = "gallery/"

// ErrInvalidID is returned for ids outside RootPrefix.
var ErrInvalidID = errors.New("media: invalid image id")

// Backend is the storage behind the gallery HTTP routes.
type Backend interface {
	// List returns the images of folder, newest first.
	List(ctx context.Context, folder string) ([]gallery.Image, error)
	// Upload stores an image fetched from fields.URL.
	Upload(ctx context.Context, folder string, fields gallery.Fields) (gallery.Image, error)
	// Delete removes the image with id. Missing images are not an error.
	Delete(ctx context.Context, id string) error
	// Categories returns the known folder names.
	Categories(ctx context.Context) ([]string, error)
}

// UntitledTitle is reported for images stored without a title.
const UntitledTitle = "Untitled"

func folderPrefix(folder string) string {
	return RootPrefix + strings.Trim(folder, "/") + "/"
}

func checkID(id string) error {
	if !strings.HasPrefix(id, RootPrefix) || strings.Contains(id, "..") || len(id) == len(RootPrefix) {
		return ErrInvalidID
	}
	return nil
}

// folderOf returns the folder segment of an id.
func folderOf(id string) string {
	rest := strings.TrimPrefix(id, RootPrefix)
	if i := strings.Index(rest, "/"); i >= 0 {
		return rest[:i]
	}
	return ""
}
