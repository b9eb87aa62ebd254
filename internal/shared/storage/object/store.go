package object

import (
	"context"
	"io"
)

// Location addresses a stored object. Bucket is the S3 bucket name, or the
// literal "local" for the filesystem store.
type Location struct {
	Bucket string
	Key    string
}

// Store defines the contract for saving and retrieving binary objects.
type Store interface {
	Save(ctx context.Context, name string, r io.Reader) (Location, error)
	Open(ctx context.Context, loc Location) (io.ReadCloser, error)
}
