package cloudinary

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"

	"github.com/angelmondragon/placeshare-backend/pkg/config"
	"github.com/angelmondragon/placeshare-backend/pkg/logger"
	"github.com/angelmondragon/placeshare-backend/pkg/storage"
)

const destroyNotFound = "not found"

type uploaderAPI interface {
	Upload(ctx context.Context, file interface{}, params uploader.UploadParams) (*uploader.UploadResult, error)
	Destroy(ctx context.Context, params uploader.DestroyParams) (*uploader.DestroyResult, error)
}

// Client stores images in Cloudinary and addresses them by public id.
type Client struct {
	upload uploaderAPI
	logg   *logger.Logger
}

var _ storage.MediaStore = (*Client)(nil)

// New builds a client from the CLOUDINARY_URL style connection string.
func New(cfg config.CloudinaryConfig, logg *logger.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, errors.New("cloudinary url is required")
	}
	cld, err := cloudinary.NewFromURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("cloudinary init: %w", err)
	}
	return &Client{upload: &cld.Upload, logg: logg}, nil
}

// Upload streams file into folder under a generated public id.
func (c *Client) Upload(ctx context.Context, folder string, file io.Reader) (storage.Asset, error) {
	if file == nil {
		return storage.Asset{}, errors.New("file is required")
	}
	res, err := c.upload.Upload(ctx, file, uploader.UploadParams{
		Folder:       folder,
		PublicID:     uuid.NewString(),
		Overwrite:    api.Bool(false),
		ResourceType: "image",
	})
	if err != nil {
		return storage.Asset{}, fmt.Errorf("cloudinary upload: %w", err)
	}
	if res == nil {
		return storage.Asset{}, errors.New("cloudinary upload: empty response")
	}
	if res.Error.Message != "" {
		return storage.Asset{}, fmt.Errorf("cloudinary upload: %s", res.Error.Message)
	}
	return storage.Asset{URL: res.SecureURL, PublicID: res.PublicID}, nil
}

// Destroy removes the asset. Missing assets are not an error.
func (c *Client) Destroy(ctx context.Context, publicID string) error {
	publicID = strings.TrimSpace(publicID)
	if publicID == "" {
		return nil
	}
	res, err := c.upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	if err != nil {
		return fmt.Errorf("cloudinary destroy %s: %w", publicID, err)
	}
	if res == nil {
		return nil
	}
	if res.Error.Message != "" {
		return fmt.Errorf("cloudinary destroy %s: %s", publicID, res.Error.Message)
	}
	if res.Result == destroyNotFound && c.logg != nil {
		c.logg.Warn(c.logg.WithField(ctx, "public_id", publicID), "cloudinary asset already gone")
	}
	return nil
}
