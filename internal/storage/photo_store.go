// Package storage uploads vehicle photos to Google Cloud Storage and issues
// signed read URLs for buckets that are not public.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	gcs "cloud.google.com/go/storage"
	"github.com/google/uuid"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
)

var allowedContentTypes = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
}

type PhotoStore struct {
	client *gcs.Client
	bucket string
}

func NewPhotoStore(ctx context.Context, bucket string, opts ...option.ClientOption) (*PhotoStore, error) {
	if bucket == "" {
		return nil, errors.New("storage bucket is not set")
	}
	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return &PhotoStore{client: client, bucket: bucket}, nil
}

func (s *PhotoStore) Close() error {
	return s.client.Close()
}

// UploadVehiclePhoto streams one photo under vehicles/<id>/ and returns the
// object's public URL. Content type must be one of the allowed image types.
func (s *PhotoStore) UploadVehiclePhoto(ctx context.Context, vehicleID uint64, contentType string, r io.Reader) (string, error) {
	ext, ok := allowedContentTypes[contentType]
	if !ok {
		return "", fmt.Errorf("unsupported content type %q", contentType)
	}
	object := fmt.Sprintf("vehicles/%d/%s.%s", vehicleID, uuid.NewString(), ext)

	w := s.client.Bucket(s.bucket).Object(object).NewWriter(ctx)
	w.ContentType = contentType
	w.CacheControl = "public, max-age=86400"
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("upload %s: %w", object, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("finalize %s: %w", object, err)
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.bucket, object), nil
}

// SignedReadURL issues a V4 signed GET URL from the default service-account
// credentials. Used when the bucket does not allow public reads.
func (s *PhotoStore) SignedReadURL(ctx context.Context, object string, ttl time.Duration) (string, error) {
	creds, err := google.FindDefaultCredentials(ctx, gcs.ScopeReadOnly)
	if err != nil {
		return "", fmt.Errorf("default credentials: %w", err)
	}
	conf, err := google.JWTConfigFromJSON(creds.JSON)
	if err != nil {
		return "", fmt.Errorf("jwt config: %w", err)
	}
	return gcs.SignedURL(s.bucket, object, &gcs.SignedURLOptions{
		GoogleAccessID: conf.Email,
		PrivateKey:     conf.PrivateKey,
		Method:         "GET",
		Expires:        time.Now().Add(ttl),
		Scheme:         gcs.SigningSchemeV4,
	})
}
