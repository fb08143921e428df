package objectstore

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"sync"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

type cloudinaryUploader interface {
	Upload(ctx context.Context, file interface{}, params uploader.UploadParams) (*uploader.UploadResult, error)
}

var newCloudinary = func(cloudName, apiKey, apiSecret string) (cloudinaryUploader, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, err
	}
	return &cld.Upload, nil
}

// CloudinaryStorage maps buckets to Cloudinary folders. Cloudinary picks the
// delivery URL itself, so PublicURL returns the URL reported by the upload
// and falls back to the conventional delivery path for unknown keys.
type CloudinaryStorage struct {
	up        cloudinaryUploader
	cloudName string

	mu   sync.Mutex
	urls map[string]string
}

func NewCloudinaryStorage(cloudName, apiKey, apiSecret string) (*CloudinaryStorage, error) {
	up, err := newCloudinary(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Cloudinary: %w", err)
	}
	return &CloudinaryStorage{up: up, cloudName: cloudName, urls: make(map[string]string)}, nil
}

// Upload streams body to Cloudinary. The SDK accepts an io.Reader but not a
// byte slice, so body is passed through as is.
func (c *CloudinaryStorage) Upload(ctx context.Context, bucket, key string, body io.Reader, _ string) error {
	res, err := c.up.Upload(ctx, body, uploader.UploadParams{
		Folder:       bucket,
		PublicID:     publicID(key),
		ResourceType: "image",
	})
	if err != nil {
		return fmt.Errorf("failed to upload to Cloudinary: %w", err)
	}
	if res.Error.Message != "" {
		return fmt.Errorf("failed to upload to Cloudinary: %s", res.Error.Message)
	}

	c.mu.Lock()
	c.urls[bucket+"/"+key] = res.SecureURL
	c.mu.Unlock()
	return nil
}

func (c *CloudinaryStorage) PublicURL(bucket, key string) string {
	c.mu.Lock()
	u, ok := c.urls[bucket+"/"+key]
	c.mu.Unlock()
	if ok && u != "" {
		return u
	}
	return joinURL("https://res.cloudinary.com", c.cloudName, "image/upload", bucket, key)
}

func publicID(key string) string {
	return strings.TrimSuffix(key, path.Ext(key))
}
