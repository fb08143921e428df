package objectstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/recipebox/internal/backend"
)

const (
	DriverNone       = "none"
	DriverS3         = "s3"
	DriverCloudinary = "cloudinary"
	DriverHTTP       = "http"
)

type Options struct {
	Driver string
	S3     S3Options

	CloudName string
	APIKey    string
	APISecret string

	HTTPBaseURL string
	HTTPToken   string
	HTTPTimeout time.Duration
}

// Open returns the storage for o.Driver. DriverNone (or "") yields nil: the
// catalog then keeps the image URL it was given.
func Open(ctx context.Context, o Options) (backend.Storage, error) {
	switch strings.ToLower(o.Driver) {
	case "", DriverNone:
		return nil, nil
	case DriverS3:
		s, err := NewS3Storage(ctx, o.S3)
		if err != nil {
			return nil, err
		}
		return s, nil
	case DriverCloudinary:
		c, err := NewCloudinaryStorage(o.CloudName, o.APIKey, o.APISecret)
		if err != nil {
			return nil, err
		}
		return c, nil
	case DriverHTTP:
		if o.HTTPBaseURL == "" {
			return nil, fmt.Errorf("http storage: base url is required")
		}
		return NewHTTPStorage(o.HTTPBaseURL, o.HTTPToken, o.HTTPTimeout), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", o.Driver)
	}
}
