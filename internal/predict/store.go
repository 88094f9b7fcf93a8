package predict

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// Store provides read access to serialized model documents by target name.
type Store interface {
	Open(ctx context.Context, target string) (io.ReadCloser, error)
}

// LocalStore reads model documents from a directory of "<target>.json" files.
type LocalStore struct {
	dir string
}

func NewLocalStore(dir string) *LocalStore {
	return &LocalStore{dir: dir}
}

func (s *LocalStore) Open(_ context.Context, target string) (io.ReadCloser, error) {
	f, err := os.Open(filepath.Join(s.dir, target+".json"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrModelNotFound, target)
		}
		return nil, err
	}
	return f, nil
}

// GCSStore reads model documents from a Google Cloud Storage bucket under
// an optional object prefix.
type GCSStore struct {
	client *storage.Client
	bucket string
	prefix string
}

// NewGCSStore creates a GCS-backed model store. When credentialsFile is
// empty, application default credentials are used.
func NewGCSStore(ctx context.Context, bucket, prefix, credentialsFile string) (*GCSStore, error) {
	var client *storage.Client
	var err error

	if credentialsFile != "" {
		client, err = storage.NewClient(ctx, option.WithCredentialsFile(credentialsFile))
	} else {
		client, err = storage.NewClient(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}

	return &GCSStore{
		client: client,
		bucket: bucket,
		prefix: prefix,
	}, nil
}

func (s *GCSStore) Open(ctx context.Context, target string) (io.ReadCloser, error) {
	object := path.Join(s.prefix, target+".json")
	r, err := s.client.Bucket(s.bucket).Object(object).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrModelNotFound, target)
		}
		return nil, fmt.Errorf("failed to open gs://%s/%s: %w", s.bucket, object, err)
	}
	return r, nil
}

// Close releases the underlying GCS client.
func (s *GCSStore) Close() error {
	return s.client.Close()
}
