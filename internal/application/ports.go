package application

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/villagemarket/village-market/internal/domain/entity"
	"github.com/villagemarket/village-market/internal/infrastructure/payment"
	"github.com/villagemarket/village-market/internal/infrastructure/storage"
)

// PaymentGateway is the subset of the Paystack client the services use.
type PaymentGateway interface {
	Initialize(ctx context.Context, req payment.InitializeRequest) (*payment.InitializeResult, error)
	Verify(ctx context.Context, reference string) (*payment.Transaction, error)
	VerifySignature(body []byte, signature string) bool
}

// PoolSearcher mirrors pools into a full-text index.
type PoolSearcher interface {
	IndexPool(ctx context.Context, pool *entity.Pool)
	DeletePool(ctx context.Context, id string)
	SearchPools(ctx context.Context, q, status string, size int) ([]string, error)
}

// Upload is an image received from a multipart form.
type Upload struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

var imageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
}

// storeImage validates the content type and stores the image under folder.
func storeImage(ctx context.Context, store storage.ImageStore, folder string, up Upload) (string, error) {
	ct := strings.ToLower(strings.TrimSpace(strings.Split(up.ContentType, ";")[0]))
	if !imageTypes[ct] {
		return "", ErrInvalidImage
	}
	if store == nil {
		return "", ErrUploadsDisabled
	}
	url, err := store.Upload(ctx, folder, up.Filename, ct, up.Body)
	if errors.Is(err, storage.ErrDisabled) {
		return "", ErrUploadsDisabled
	}
	return url, err
}

// dropImage removes a replaced image. Failures only leave an orphan object.
func dropImage(ctx context.Context, store storage.ImageStore, url string) error {
	if store == nil || url == "" {
		return nil
	}
	return store.Delete(ctx, url)
}
