// Package media stores uploaded article images and turns them into the
// references kept on articles and order line items.
package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

type Store interface {
	// Save writes the object and returns its public reference.
	Save(ctx context.Context, filename string, r io.Reader) (string, error)
	// Delete removes the object behind ref.
	Delete(ctx context.Context, ref string) error
}

var allowedExt = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
	".gif":  "image/gif",
}

// ErrUnsupportedFormat is returned for files that are not an accepted image type.
var ErrUnsupportedFormat = errors.New("unsupported image format")

func Ext(filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := allowedExt[ext]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	return ext, nil
}

func contentType(ext string) string {
	return allowedExt[ext]
}

func objectKey(filename string) (string, error) {
	ext, err := Ext(filename)
	if err != nil {
		return "", err
	}
	return "articles/" + uuid.NewString() + ext, nil
}
