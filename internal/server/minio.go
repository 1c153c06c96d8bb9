// minio.go - Object store client and presigned URL issuance.
package server

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ObjectStore issues time-limited capability URLs and removes objects.
// The byte transfer itself always happens directly between the client
// and the store; this process never proxies file content.
type ObjectStore interface {
	PresignPut(ctx context.Context, key string, expiry time.Duration) (string, error)
	PresignGet(ctx context.Context, key, filename string, expiry time.Duration) (string, error)
	Remove(ctx context.Context, key string) error
}

type minioStore struct {
	client *minio.Client
	bucket string
}

func newMinioStore(client *minio.Client, bucket string) *minioStore {
	return &minioStore{client: client, bucket: bucket}
}

func (s *minioStore) PresignPut(ctx context.Context, key string, expiry time.Duration) (string, error) {
	u, err := s.client.PresignedPutObject(ctx, s.bucket, key, expiry)
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

func (s *minioStore) PresignGet(ctx context.Context, key, filename string, expiry time.Duration) (string, error) {
	// Force a download with the original display name; percent-encode it
	// so quoting survives arbitrary filenames.
	reqParams := make(url.Values)
	reqParams.Set("response-content-disposition",
		fmt.Sprintf(`attachment; filename="%s"`, url.PathEscape(filename)))

	u, err := s.client.PresignedGetObject(ctx, s.bucket, key, expiry, reqParams)
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

func (s *minioStore) Remove(ctx context.Context, key string) error {
	return s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{})
}

func normaliseEndpoint(raw string) (endpoint string, secure bool, err error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false, fmt.Errorf("empty endpoint")
	}

	// Accept either "minio:9000" or "http://minio:9000" / "https://minio:9000".
	if strings.Contains(raw, "://") {
		u, err := url.Parse(raw)
		if err != nil {
			return "", false, err
		}
		if u.Host == "" {
			return "", false, fmt.Errorf("invalid endpoint")
		}
		if u.Path != "" && u.Path != "/" {
			return "", false, fmt.Errorf("endpoint must not contain a path")
		}
		secure = (u.Scheme == "https")
		return u.Host, secure, nil
	}

	// No scheme provided, treat as host:port (insecure by default for local MinIO).
	return raw, false, nil
}

// NewObjectStoreFromEnv builds the MinIO-backed store from VAULT_S3_*
// configuration. A missing or unreachable configuration is reported to
// the caller; the server still starts and the broker endpoints answer
// with a configuration error instead.
func NewObjectStoreFromEnv() (ObjectStore, error) {
	rawEndpoint := os.Getenv("VAULT_S3_ENDPOINT")
	accessKey := os.Getenv("VAULT_S3_ACCESS_KEY")
	secretKey := os.Getenv("VAULT_S3_SECRET_KEY")
	bucket := os.Getenv("VAULT_BUCKET")

	if rawEndpoint == "" || accessKey == "" || secretKey == "" || bucket == "" {
		return nil, fmt.Errorf("object store configuration incomplete")
	}

	endpoint, secure, err := normaliseEndpoint(rawEndpoint)
	if err != nil {
		return nil, err
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: secure,
	})
	if err != nil {
		return nil, err
	}

	// Sanity check: bucket must exist.
	exists, err := client.BucketExists(context.Background(), bucket)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("bucket does not exist: %s", bucket)
	}

	return newMinioStore(client, bucket), nil
}
