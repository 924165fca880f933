package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"bananaserver/internal/config"
	"bananaserver/internal/logger"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

const uploadFolder = "detect_banana"

// CloudinaryUploader implements Uploader on top of the Cloudinary API.
type CloudinaryUploader struct {
	cld    *cloudinary.Cloudinary
	logger *logger.Logger
}

// NewCloudinaryUploader builds an uploader from the configured credentials.
func NewCloudinaryUploader(cfg *config.Config, logger *logger.Logger) (*CloudinaryUploader, error) {
	if cfg.CloudinaryCloudName == "" || cfg.CloudinaryAPIKey == "" || cfg.CloudinaryAPISecret == "" {
		return nil, errors.New("cloudinary credentials not configured")
	}

	cld, err := cloudinary.NewFromParams(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary: %w", err)
	}

	return &CloudinaryUploader{cld: cld, logger: logger}, nil
}

// Upload pushes image bytes to the detect_banana folder under a
// timestamped public id. Failures are reported in the result, never
// propagated as an error.
func (u *CloudinaryUploader) Upload(ctx context.Context, data []byte) UploadResult {
	publicID := fmt.Sprintf("detection_%s", time.Now().Format("20060102_150405"))

	resp, err := u.cld.Upload.Upload(ctx, bytes.NewReader(data), uploader.UploadParams{
		PublicID:     publicID,
		Folder:       uploadFolder,
		ResourceType: "image",
	})
	if err != nil {
		u.logger.Error("Cloudinary upload error: %v", err)
		return UploadResult{Success: false, Error: err.Error()}
	}
	if resp.Error.Message != "" {
		u.logger.Error("Cloudinary upload error: %s", resp.Error.Message)
		return UploadResult{Success: false, Error: resp.Error.Message}
	}

	return UploadResult{
		Success:  true,
		URL:      resp.SecureURL,
		PublicID: resp.PublicID,
		Format:   resp.Format,
		Width:    resp.Width,
		Height:   resp.Height,
	}
}

// Destroy removes a previously uploaded image.
func (u *CloudinaryUploader) Destroy(ctx context.Context, publicID string) error {
	resp, err := u.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	if err != nil {
		return fmt.Errorf("failed to destroy %s: %w", publicID, err)
	}
	if resp.Result != "ok" {
		return fmt.Errorf("failed to destroy %s: %s", publicID, resp.Result)
	}
	return nil
}
