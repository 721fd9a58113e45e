package sink

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
	"threadscraper/pkg/config"
	apperrors "threadscraper/pkg/errors"
	"threadscraper/pkg/models"
)

// Uploader pushes image bytes to a CDN and returns the public URL
type Uploader interface {
	Upload(ctx context.Context, data []byte, publicID string, tags []string) (string, error)
}

// CloudinaryUploader uploads through the Cloudinary upload API
type CloudinaryUploader struct {
	cld    *cloudinary.Cloudinary
	folder string
}

// NewCloudinaryUploader builds an uploader from credentials.
// Missing credentials are a fatal configuration error.
func NewCloudinaryUploader(cfg config.CloudinaryConfig) (*CloudinaryUploader, error) {
	if cfg.CloudName == "" || cfg.APIKey == "" || cfg.APISecret == "" {
		return nil, apperrors.Fatal("sink.remote", "cloudinary credentials are not set", nil)
	}
	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, apperrors.Fatal("sink.remote", "failed to create cloudinary client", err)
	}
	return &CloudinaryUploader{cld: cld, folder: cfg.Folder}, nil
}

func (u *CloudinaryUploader) Upload(ctx context.Context, data []byte, publicID string, tags []string) (string, error) {
	res, err := u.cld.Upload.Upload(ctx, bytes.NewReader(data), uploader.UploadParams{
		PublicID:     publicID,
		Folder:       u.folder,
		Tags:         api.CldAPIArray(tags),
		ResourceType: "image",
	})
	if err != nil {
		return "", err
	}
	if res.Error.Message != "" {
		return "", errors.New(res.Error.Message)
	}
	if res.SecureURL == "" {
		return "", errors.New("upload returned no secure url")
	}
	return res.SecureURL, nil
}

// Remote stores images on a CDN
type Remote struct {
	uploader Uploader
	tags     []string
}

// NewRemote creates a Remote sink tagging every upload with tags
func NewRemote(up Uploader, tags []string) *Remote {
	return &Remote{uploader: up, tags: tags}
}

func (r *Remote) Name() string { return "cloudinary" }

// Store uploads data under the public id {namePrefix}_{random hex}
func (r *Remote) Store(ctx context.Context, data []byte, hint Hint, namePrefix string) (models.MediaAsset, error) {
	publicID := namePrefix + "_" + strings.ReplaceAll(uuid.NewString(), "-", "")

	secureURL, err := r.uploader.Upload(ctx, data, publicID, r.tags)
	if err != nil {
		return models.MediaAsset{}, fmt.Errorf("upload %s: %w", publicID, err)
	}

	return models.MediaAsset{
		OriginalURL:    hint.URL,
		StoredLocation: secureURL,
	}, nil
}
