package storage

import (
	"context"
	"errors"
	"io"
)

// ErrDisabled is returned by stores that were not configured.
var ErrDisabled = errors.New("media storage is not configured")

// Asset identifies an uploaded object at the media provider.
type Asset struct {
	URL      string
	PublicID string
}

// MediaStore uploads and removes user supplied images.
type MediaStore interface {
	Upload(ctx context.Context, folder string, file io.Reader) (Asset, error)
	Destroy(ctx context.Context, publicID string) error
}

// Disabled is a MediaStore that rejects uploads and ignores deletions.
type Disabled struct{}

func (Disabled) Upload(context.Context, string, io.Reader) (Asset, error) {
	return Asset{}, ErrDisabled
}

func (Disabled) Destroy(context.Context, string) error {
	return nil
}
