package service

import (
	"context"
	"io"
)

// FileUploader stores submission files and returns a retrievable location.
type FileUploader interface {
	Upload(ctx context.Context, name string, reader io.Reader) (string, error)
	// Remove deletes a previously uploaded file. Implementations treat a
	// missing file as success.
	Remove(ctx context.Context, location string) error
}
