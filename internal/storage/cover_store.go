// Package storage hosts listing cover images on S3-compatible object
// storage. The cover URL ends up in the ledger so exports can show the
// photo next to the row.
package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"resale_support_backend/internal/intake/ports"
	"resale_support_backend/platform/config"
	"resale_support_backend/platform/logger"
)

// CoverStore implements cover image hosting on MinIO.
type CoverStore struct {
	client   *minio.Client
	bucket   string
	endpoint string
	useSSL   bool
	log      *logger.Logger
}

// Compile-time check that CoverStore implements the intake port.
var _ ports.CoverStore = (*CoverStore)(nil)

// NewCoverStore creates the MinIO-backed cover store.
func NewCoverStore(cfg config.MinIOConfig, log *logger.Logger) (*CoverStore, error) {
	if !cfg.IsMinIOEnabled() {
		return nil, fmt.Errorf("MinIO is not configured")
	}

	client, err := minio.New(cfg.GetMinIOEndpoint(), &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.GetMinIOAccessKey(), cfg.GetMinIOSecretKey(), ""),
		Secure: cfg.GetMinIOUseSSL(),
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	return &CoverStore{
		client:   client,
		bucket:   cfg.GetMinioBucketProductImages(),
		endpoint: cfg.GetMinIOEndpoint(),
		useSSL:   cfg.GetMinIOUseSSL(),
		log:      log,
	}, nil
}

// EnsureBucketExists creates the cover bucket if it is missing. Called once
// at startup.
func (s *CoverStore) EnsureBucketExists(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket existence: %w", err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("create bucket %s: %w", s.bucket, err)
		}
	}
	return nil
}

// UploadCover stores the image under the product's management number and
// returns its public URL. Re-listing the same number replaces the cover.
func (s *CoverStore) UploadCover(ctx context.Context, localPath, managementID string) (string, error) {
	file, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("open cover image: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()

	info, err := file.Stat()
	if err != nil {
		return "", fmt.Errorf("stat cover image: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(localPath))
	if ext == "" {
		ext = ".jpg"
	}
	key := "covers/" + managementID + ext

	_, err = s.client.PutObject(ctx, s.bucket, key, file, info.Size(), minio.PutObjectOptions{
		ContentType: contentTypeFor(ext),
	})
	if err != nil {
		return "", fmt.Errorf("upload cover %s: %w", key, err)
	}

	url := s.publicURL(key)
	s.log.Info("cover image uploaded", "management_id", managementID, "url", url)
	return url, nil
}

func (s *CoverStore) publicURL(key string) string {
	scheme := "http"
	if s.useSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, s.endpoint, s.bucket, key)
}

func contentTypeFor(ext string) string {
	switch ext {
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}
