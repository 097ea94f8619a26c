// Package fetcher retrieves uploaded documents from their storage backend.
// A stored reference names a bucket and a path; the bucket's scheme picks
// the backend: a local directory, an HTTP(S) object store, or an FTP server.
package fetcher

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
)

// Fetcher retrieves a stored document's bytes.
type Fetcher interface {
	Fetch(ctx context.Context, bucket, path string) ([]byte, error)
}

// Options configures the backend constructors used by For.
type Options struct {
	HTTP HTTPOptions
	FTP  FTPOptions
	// LocalRoot anchors plain bucket names to a directory on disk.
	LocalRoot string
}

// For returns the backend matching the bucket's scheme.
func For(bucket string, opts Options) (Fetcher, error) {
	switch {
	case strings.HasPrefix(bucket, "http://"), strings.HasPrefix(bucket, "https://"):
		return NewHTTPFetcher(opts.HTTP), nil
	case strings.HasPrefix(bucket, "ftp://"):
		return NewFTPFetcher(opts.FTP), nil
	case strings.Contains(bucket, "://"):
		return nil, eris.Errorf("fetcher: unsupported bucket scheme %q", bucket)
	default:
		return NewLocalFetcher(opts.LocalRoot), nil
	}
}
