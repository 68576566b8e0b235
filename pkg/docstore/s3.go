package docstore

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/MGhunch/dot-file/pkg/lifecycle"
)

// S3 stores the hierarchy in one bucket using the same key layout as Azure.
type S3 struct {
	client *minio.Client
	bucket string
	region string
	logger *slog.Logger
}

// NewS3 builds a minio client for any S3-compatible endpoint.
func NewS3(cfg *S3Config, logger *slog.Logger) (*S3, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create s3 client: %w", err)
	}
	return &S3{
		client: client,
		bucket: cfg.Bucket,
		region: cfg.Region,
		logger: logger.With("system", "docstore", "backend", BackendS3),
	}, nil
}

func (s *S3) Start(lc *lifecycle.Coordinator) error {
	lc.OnStartup("docstore", func(ctx context.Context) error {
		exists, err := s.client.BucketExists(ctx, s.bucket)
		if err != nil {
			s.logger.Error("bucket check failed", "error", err)
			return fmt.Errorf("check bucket %s: %w", s.bucket, err)
		}
		if !exists {
			if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: s.region}); err != nil {
				return fmt.Errorf("create bucket %s: %w", s.bucket, err)
			}
		}
		s.logger.Info("bucket ready", "bucket", s.bucket)
		return nil
	})
	return nil
}

func (s *S3) ListFolders(ctx context.Context, folder Location) ([]Item, error) {
	if err := validate(folder); err != nil {
		return nil, err
	}

	prefix := blobKey(folder) + "/"
	var items []Item
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Prefix: prefix}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("list %s: %w", folder, mapS3Error(obj.Err))
		}
		if !strings.HasSuffix(obj.Key, "/") {
			continue
		}
		name := strings.TrimSuffix(strings.TrimPrefix(obj.Key, prefix), "/")
		items = append(items, Item{
			Name:     name,
			Location: folder.Child(name),
			WebURL:   s.url(folder.Child(name)),
		})
	}
	return items, nil
}

func (s *S3) CreateFolder(ctx context.Context, parent Location, name string) (Item, error) {
	if err := validate(parent); err != nil {
		return Item{}, err
	}

	child := parent.Child(name)
	opts := minio.ListObjectsOptions{Prefix: blobKey(child) + "/", MaxKeys: 1}
	for obj := range s.client.ListObjects(ctx, s.bucket, opts) {
		if obj.Err != nil {
			return Item{}, fmt.Errorf("create %s: %w", child, mapS3Error(obj.Err))
		}
		return Item{}, fmt.Errorf("create %s: %w", child, ErrConflict)
	}

	key := blobKey(child.Child(folderMarker))
	if _, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(nil), 0, minio.PutObjectOptions{}); err != nil {
		return Item{}, fmt.Errorf("create %s: %w", child, mapS3Error(err))
	}
	return Item{Name: name, Location: child, WebURL: s.url(child)}, nil
}

func (s *S3) Move(ctx context.Context, file, folder Location) error {
	if err := validate(file); err != nil {
		return err
	}
	if err := validate(folder); err != nil {
		return err
	}

	src := minio.CopySrcOptions{Bucket: s.bucket, Object: blobKey(file)}
	dst := minio.CopyDestOptions{Bucket: s.bucket, Object: blobKey(folder.Child(file.Name()))}

	if _, err := s.client.CopyObject(ctx, dst, src); err != nil {
		return fmt.Errorf("copy %s: %w", file, mapS3Error(err))
	}
	if err := s.client.RemoveObject(ctx, s.bucket, src.Object, minio.RemoveObjectOptions{}); err != nil {
		s.logger.Warn("source not removed after copy", "file", file.String(), "error", err)
	}
	return nil
}

func (s *S3) Write(ctx context.Context, file Location, data []byte, contentType string) error {
	if err := validate(file); err != nil {
		return err
	}

	opts := minio.PutObjectOptions{ContentType: contentType, SendContentMd5: true}
	if _, err := s.client.PutObject(ctx, s.bucket, blobKey(file), bytes.NewReader(data), int64(len(data)), opts); err != nil {
		return fmt.Errorf("write %s: %w", file, mapS3Error(err))
	}
	return nil
}

func (s *S3) url(l Location) string {
	return strings.TrimSuffix(s.client.EndpointURL().String(), "/") + "/" + s.bucket + "/" + blobKey(l)
}

func mapS3Error(err error) error {
	resp := minio.ToErrorResponse(err)
	switch {
	case resp.Code == "NoSuchKey", resp.Code == "NoSuchBucket", resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	case resp.Code == "SlowDown", resp.StatusCode == http.StatusTooManyRequests, resp.StatusCode >= 500:
		return fmt.Errorf("%w: %w", ErrTransient, err)
	}
	return err
}
