// Package sink persists downloaded images, either to Cloudinary or to a local directory.
package sink

import (
	"context"

	"threadscraper/pkg/config"
	apperrors "threadscraper/pkg/errors"
	"threadscraper/pkg/models"
)

// Hint describes where stored bytes came from
type Hint struct {
	URL         string
	ContentType string
}

// Sink stores one image and reports where it ended up
type Sink interface {
	Store(ctx context.Context, data []byte, hint Hint, namePrefix string) (models.MediaAsset, error)
	Name() string
}

// FromConfig builds the sink selected by the storage mode
func FromConfig(cfg config.StorageConfig) (Sink, error) {
	switch cfg.Mode {
	case config.StorageLocal:
		l, err := NewLocal(cfg.Local.OutputDir)
		if err != nil {
			return nil, apperrors.Fatal("sink.local", "failed to prepare image directory", err)
		}
		return l, nil
	case config.StorageRemote:
		up, err := NewCloudinaryUploader(cfg.Cloudinary)
		if err != nil {
			return nil, err
		}
		return NewRemote(up, cfg.Cloudinary.Tags), nil
	default:
		return nil, apperrors.Fatal("sink", "unknown storage mode "+cfg.Mode, nil)
	}
}
