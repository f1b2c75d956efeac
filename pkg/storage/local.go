package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// LocalStore writes uploads to a directory on disk. It is the default
// storage backend for development and single-node deployments.
type LocalStore struct {
	dir    string
	logger zerolog.Logger
}

// NewLocalStore creates the upload directory if needed and returns the store.
func NewLocalStore(dir string, logger zerolog.Logger) (*LocalStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("upload directory must not be empty")
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}

	return &LocalStore{
		dir:    dir,
		logger: logger.With().Str("component", "local_storage").Logger(),
	}, nil
}

// Upload writes the file to disk and returns its path.
func (s *LocalStore) Upload(ctx context.Context, name string, reader io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	// The caller already sanitises names; Base guards against traversal
	// should that ever change.
	target := filepath.Join(s.dir, filepath.Base(name))

	file, err := os.Create(target)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if _, err := io.Copy(file, reader); err != nil {
		os.Remove(target)
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	s.logger.Info().Str("path", target).Msg("file stored")
	return target, nil
}

// Remove deletes the stored file. A missing file is not an error.
func (s *LocalStore) Remove(ctx context.Context, location string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	cleaned := filepath.Clean(location)
	if !strings.HasPrefix(cleaned, filepath.Clean(s.dir)+string(filepath.Separator)) {
		return fmt.Errorf("location %q is outside the upload directory", location)
	}

	if err := os.Remove(cleaned); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove file: %w", err)
	}
	return nil
}
