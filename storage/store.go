package storage

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// URLPath is where the local backend's files are served from.
const URLPath = "/static/uploads/"

var ErrImageNotFound = errors.New("image not found")

// ImageStore persists uploaded images and resolves them back from their
// public URL.
type ImageStore interface {
	// Save writes data under filename and returns its public URL. An
	// existing object is never overwritten.
	Save(ctx context.Context, filename string, data []byte) (string, error)
	// Remove deletes the image the URL points at. It returns ErrImageNotFound
	// when there is nothing to delete.
	Remove(ctx context.Context, imageURL string) error
}

// NewFilename returns img_<unix>_<token><ext>. The token keeps two uploads in
// the same second apart.
func NewFilename(ext string, now time.Time) string {
	token := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return fmt.Sprintf("img_%d_%s%s", now.Unix(), token, ext)
}

// FilenameFromURL returns the trailing path segment of imageURL.
func FilenameFromURL(imageURL string) (string, error) {
	name := imageURL
	if i := strings.LastIndex(imageURL, "/"); i >= 0 {
		name = imageURL[i+1:]
	}
	if i := strings.IndexAny(name, "?#"); i >= 0 {
		name = name[:i]
	}

	if name == "" || name == "." || name == ".." || name != path.Base(name) || strings.Contains(name, `\`) {
		return "", fmt.Errorf("%w: no file name in %q", ErrImageNotFound, imageURL)
	}

	return name, nil
}
