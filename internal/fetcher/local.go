package fetcher

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
)

// LocalFetcher reads documents from a directory tree. The bucket becomes a
// subdirectory of the configured root.
type LocalFetcher struct {
	root string
}

// NewLocalFetcher creates a LocalFetcher rooted at dir ("." when empty).
func NewLocalFetcher(dir string) *LocalFetcher {
	if dir == "" {
		dir = "."
	}
	return &LocalFetcher{root: dir}
}

func (f *LocalFetcher) Fetch(_ context.Context, bucket, path string) ([]byte, error) {
	full := filepath.Join(f.root, bucket, filepath.FromSlash(path))

	// Reject references that escape the root.
	rel, err := filepath.Rel(f.root, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return nil, eris.Errorf("local: path escapes storage root: %s", path)
	}

	data, err := os.ReadFile(full)
	if err != nil {
		return nil, eris.Wrapf(err, "local: read %s", full)
	}
	return data, nil
}
