package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// LocalSource reads files under a base directory
type LocalSource struct {
	dir string
}

func NewLocalSource(dir string) *LocalSource {
	if dir == "" {
		dir = "."
	}
	return &LocalSource{dir: dir}
}

func (l *LocalSource) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	clean := filepath.Clean("/" + filepath.FromSlash(path))
	full := filepath.Join(l.dir, clean)
	if rel, err := filepath.Rel(l.dir, full); err != nil || strings.HasPrefix(rel, "..") {
		return nil, fmt.Errorf("path %q escapes storage directory", path)
	}

	f, err := os.Open(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, err
	}
	return f, nil
}

var _ Source = (*LocalSource)(nil)
