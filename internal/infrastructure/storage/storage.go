package storage

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
)

var ErrDisabled = errors.New("image storage not configured")

// ImageStore keeps uploaded images and hands back a public URL.
type ImageStore interface {
	Upload(ctx context.Context, folder, filename, contentType string, r io.Reader) (string, error)
	// Delete removes an object previously returned by Upload. URLs the store
	// does not own are ignored.
	Delete(ctx context.Context, url string) error
}

// Disabled rejects uploads. It is used when no driver is configured.
type Disabled struct{}

func (Disabled) Upload(context.Context, string, string, string, io.Reader) (string, error) {
	return "", ErrDisabled
}

func (Disabled) Delete(context.Context, string) error { return nil }

// objectName builds "<folder>/<uuid><ext>" with a lower-cased extension.
func objectName(folder, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	return path.Join(strings.Trim(folder, "/"), uuid.NewString()+ext)
}
