package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
)

type Cloudinary struct {
	cld  *cloudinary.Cloudinary
	root string
}

func NewCloudinary(cloudName, apiKey, apiSecret, root string) (*Cloudinary, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("cloudinary config: %w", err)
	}
	return &Cloudinary{cld: cld, root: strings.Trim(root, "/")}, nil
}

// Upload ignores filename; Cloudinary derives the format from the content.
func (s *Cloudinary) Upload(ctx context.Context, folder, _, _ string, r io.Reader) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	res, err := s.cld.Upload.Upload(ctx, r, uploader.UploadParams{
		Folder:   path.Join(s.root, folder),
		PublicID: uuid.NewString(),
	})
	if err != nil {
		return "", fmt.Errorf("cloudinary upload: %w", err)
	}
	if res.Error.Message != "" {
		return "", fmt.Errorf("cloudinary upload: %s", res.Error.Message)
	}
	return res.SecureURL, nil
}

func (s *Cloudinary) Delete(ctx context.Context, imageURL string) error {
	publicID, err := PublicID(imageURL)
	if err != nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err = s.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	if err != nil {
		return fmt.Errorf("cloudinary delete: %w", err)
	}
	return nil
}

var errNotCloudinary = errors.New("not a cloudinary upload url")

// PublicID extracts the public id from a delivery URL such as
// https://res.cloudinary.com/demo/image/upload/v1712/village-market/pools/abc.jpg
func PublicID(imageURL string) (string, error) {
	u, err := url.Parse(imageURL)
	if err != nil {
		return "", err
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")

	i := 0
	for i < len(parts) && parts[i] != "upload" {
		i++
	}
	if i >= len(parts)-1 {
		return "", errNotCloudinary
	}
	rest := parts[i+1:]
	if len(rest) > 1 && len(rest[0]) > 1 && rest[0][0] == 'v' && isDigits(rest[0][1:]) {
		rest = rest[1:]
	}
	id := path.Join(rest...)
	return strings.TrimSuffix(id, path.Ext(id)), nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
