package storage

import (
	"context"
	"io"
	"strings"

	gcs "cloud.google.com/go/storage"

	"github.com/villagemarket/village-market/pkg/helpers"
)

type GCS struct {
	client *gcs.Client
	bucket string
}

func NewGCS(client *gcs.Client, bucket string) *GCS {
	return &GCS{client: client, bucket: bucket}
}

func (s *GCS) Upload(ctx context.Context, folder, filename, contentType string, r io.Reader) (string, error) {
	return helpers.UploadObject(ctx, s.client, s.bucket, objectName(folder, filename), contentType, r)
}

func (s *GCS) Delete(ctx context.Context, url string) error {
	prefix := helpers.PublicURL(s.bucket, "")
	if !strings.HasPrefix(url, prefix) {
		return nil
	}
	return helpers.DeleteObject(ctx, s.client, s.bucket, strings.TrimPrefix(url, prefix))
}
