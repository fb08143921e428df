package objectstore

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dmitrijs2005/recipebox/internal/netx"
)

// HTTPStorage talks to a storage REST API laid out as
// PUT {base}/object/{bucket}/{key} for uploads and
// {base}/object/public/{bucket}/{key} for public reads.
type HTTPStorage struct {
	base   string
	token  string
	client *http.Client
}

func NewHTTPStorage(baseURL, token string, timeout time.Duration) *HTTPStorage {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPStorage{base: baseURL, token: token, client: &http.Client{Timeout: timeout}}
}

func (h *HTTPStorage) Upload(ctx context.Context, bucket, key string, body io.Reader, contentType string) error {
	header := http.Header{}
	if h.token != "" {
		header.Set("Authorization", "Bearer "+h.token)
	}
	if err := netx.Put(ctx, h.client, joinURL(h.base, "object", bucket, key), body, contentType, header); err != nil {
		return fmt.Errorf("http storage put %s/%s: %w", bucket, key, err)
	}
	return nil
}

func (h *HTTPStorage) PublicURL(bucket, key string) string {
	return joinURL(h.base, "object/public", bucket, key)
}
