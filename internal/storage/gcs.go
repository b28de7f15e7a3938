package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// GCSStore keeps template sources and exports in a Google Cloud Storage
// bucket. Slide images always stay on local disk so they can be served
// directly from /uploads.
type GCSStore struct {
	client     *storage.Client
	bucketName string
}

func NewGCSStore(ctx context.Context, bucketName, credentialsPath string) (*GCSStore, error) {
	var client *storage.Client
	var err error

	if credentialsPath != "" {
		client, err = storage.NewClient(ctx, option.WithCredentialsFile(credentialsPath))
	} else {
		client, err = storage.NewClient(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}

	return &GCSStore{
		client:     client,
		bucketName: bucketName,
	}, nil
}

func (g *GCSStore) Save(ctx context.Context, relPath string, reader io.Reader) (int64, error) {
	canonical, err := CanonicalPath(relPath)
	if err != nil {
		return 0, err
	}

	writer := g.client.Bucket(g.bucketName).Object(canonical).NewWriter(ctx)
	size, err := io.Copy(writer, reader)
	if err != nil {
		writer.Close()
		return 0, fmt.Errorf("failed to copy data to GCS: %w", err)
	}
	if err := writer.Close(); err != nil {
		return 0, fmt.Errorf("failed to close GCS writer: %w", err)
	}

	return size, nil
}

func (g *GCSStore) Open(ctx context.Context, relPath string) (io.ReadCloser, error) {
	canonical, err := CanonicalPath(relPath)
	if err != nil {
		return nil, err
	}
	return g.client.Bucket(g.bucketName).Object(canonical).NewReader(ctx)
}

func (g *GCSStore) Delete(ctx context.Context, relPath string) error {
	canonical, err := CanonicalPath(relPath)
	if err != nil {
		return err
	}
	err = g.client.Bucket(g.bucketName).Object(canonical).Delete(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil
	}
	return err
}

func (g *GCSStore) DeletePrefix(ctx context.Context, relPrefix string) error {
	canonical, err := CanonicalPath(relPrefix)
	if err != nil {
		return err
	}

	bucket := g.client.Bucket(g.bucketName)
	it := bucket.Objects(ctx, &storage.Query{Prefix: canonical + "/"})
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to list objects under %s: %w", canonical, err)
		}
		if err := bucket.Object(attrs.Name).Delete(ctx); err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
			return fmt.Errorf("failed to delete object %s: %w", attrs.Name, err)
		}
	}
}

func (g *GCSStore) Close() error {
	return g.client.Close()
}
