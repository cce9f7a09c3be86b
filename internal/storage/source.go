package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/outreachly/outreach-backend/internal/config"
)

// ErrNotFound is returned when the referenced object does not exist
var ErrNotFound = errors.New("object not found")

// Source opens previously uploaded files by path
type Source interface {
	Open(ctx context.Context, path string) (io.ReadCloser, error)
}

// New builds the Source selected by cfg.Provider
func New(cfg config.StorageConfig) (Source, error) {
	switch cfg.Provider {
	case "", "s3":
		s, err := NewS3Source(cfg)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "local":
		return NewLocalSource(cfg.LocalDir), nil
	}
	return nil, fmt.Errorf("unknown storage provider %q", cfg.Provider)
}
