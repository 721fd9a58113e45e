package sink

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"threadscraper/pkg/models"
)

// Local writes images into a directory
type Local struct {
	dir string
}

// NewLocal creates the directory if needed and returns a Local sink writing to it
func NewLocal(dir string) (*Local, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve output directory: %w", err)
	}
	if err := os.MkdirAll(abs, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	return &Local{dir: abs}, nil
}

func (l *Local) Name() string { return "local" }

// Dir returns the absolute output directory
func (l *Local) Dir() string { return l.dir }

// Store writes data to {dir}/{namePrefix}{ext} via a temp file and rename,
// so a crash never leaves a truncated image under the final name.
func (l *Local) Store(ctx context.Context, data []byte, hint Hint, namePrefix string) (models.MediaAsset, error) {
	if err := ctx.Err(); err != nil {
		return models.MediaAsset{}, err
	}

	ext := ExtensionFor(hint)
	filename := filepath.Join(l.dir, namePrefix+ext)

	tmp, err := os.CreateTemp(l.dir, namePrefix+"-*.tmp")
	if err != nil {
		return models.MediaAsset{}, fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpName := tmp.Name()

	_, err = tmp.Write(data)
	closeErr := tmp.Close()

	if err != nil {
		os.Remove(tmpName)
		return models.MediaAsset{}, fmt.Errorf("failed to write image data: %w", err)
	}
	if closeErr != nil {
		os.Remove(tmpName)
		return models.MediaAsset{}, fmt.Errorf("failed to close file: %w", closeErr)
	}

	if err := os.Rename(tmpName, filename); err != nil {
		os.Remove(tmpName)
		return models.MediaAsset{}, fmt.Errorf("failed to rename temporary file: %w", err)
	}

	return models.MediaAsset{
		OriginalURL:    hint.URL,
		StoredLocation: filename,
		Extension:      ext,
		ContentType:    contentTypeOf(hint, data),
	}, nil
}
