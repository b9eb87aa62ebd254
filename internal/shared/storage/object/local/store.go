package local

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"records-backend/internal/shared/storage/object"
)

// LocalBucket is the bucket name reported for filesystem-stored objects.
const LocalBucket = "local"

// Store implements object.Store on the local filesystem. It backs dev and
// test runs that have no S3 access.
type Store struct {
	baseDir string
}

// New creates a filesystem-backed store rooted at baseDir.
func New(baseDir string) *Store {
	if strings.TrimSpace(baseDir) == "" {
		baseDir = "./data"
	}
	return &Store{baseDir: baseDir}
}

// Save writes the reader contents under a uuid-prefixed name.
func (s *Store) Save(ctx context.Context, name string, r io.Reader) (object.Location, error) {
	if err := ctx.Err(); err != nil {
		return object.Location{}, err
	}

	key := fmt.Sprintf("%s_%s", uuid.NewString(), sanitizeName(name))
	if err := os.MkdirAll(s.baseDir, 0o755); err != nil {
		return object.Location{}, fmt.Errorf("create store dir: %w", err)
	}

	path := filepath.Join(s.baseDir, key)
	f, err := os.Create(path)
	if err != nil {
		return object.Location{}, fmt.Errorf("create object %s: %w", path, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return object.Location{}, fmt.Errorf("write object %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return object.Location{}, fmt.Errorf("close object %s: %w", path, err)
	}

	return object.Location{Bucket: LocalBucket, Key: key}, nil
}

// Open reads a stored object.
func (s *Store) Open(ctx context.Context, loc object.Location) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(filepath.Join(s.baseDir, filepath.Base(loc.Key)))
	if err != nil {
		return nil, fmt.Errorf("open object %s: %w", loc.Key, err)
	}
	return f, nil
}

func sanitizeName(name string) string {
	name = filepath.Base(strings.TrimSpace(name))
	return strings.ReplaceAll(name, " ", "_")
}

var _ object.Store = (*Store)(nil)
