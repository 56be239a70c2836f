package storage

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"log"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
	"github.com/nfnt/resize"

	"github.com/teja-0311/Kisanmarket/internal/config"
)

// IImageStorage defines the interface for listing image uploads.
type IImageStorage interface {
	UploadImage(ctx context.Context, r io.Reader, filename string) (string, error)
}

// cloudinaryStorage implements IImageStorage on Cloudinary.
type cloudinaryStorage struct {
	cfg *config.Config
	cld *cloudinary.Cloudinary
}

// NewCloudinaryStorage creates a new Cloudinary-backed image store.
func NewCloudinaryStorage(cfg *config.Config) (IImageStorage, error) {
	cld, err := cloudinary.NewFromParams(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
	if err != nil {
		return nil, fmt.Errorf("failed to init Cloudinary client: %w", err)
	}
	return &cloudinaryStorage{cfg: cfg, cld: cld}, nil
}

// UploadImage decodes the image, downscales it if it exceeds the
// configured dimension, and uploads it under the configured folder.
// Returns the public HTTPS URL of the stored image.
func (s *cloudinaryStorage) UploadImage(ctx context.Context, r io.Reader, filename string) (string, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return "", fmt.Errorf("failed to decode image %s: %w", filename, err)
	}

	maxDim := uint(s.cfg.ImageMaxDimension)
	bounds := img.Bounds()
	if uint(bounds.Dx()) > maxDim || uint(bounds.Dy()) > maxDim {
		img = resize.Thumbnail(maxDim, maxDim, img, resize.Lanczos3)
		log.Printf("Downscaled image %s (%s) from %dx%d", filename, format, bounds.Dx(), bounds.Dy())
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 85}); err != nil {
		return "", fmt.Errorf("failed to encode image %s: %w", filename, err)
	}

	result, err := s.cld.Upload.Upload(ctx, &buf, uploader.UploadParams{
		Folder:   s.cfg.CloudinaryFolder,
		PublicID: uuid.NewString(),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload image %s: %w", filename, err)
	}
	if result.Error.Message != "" {
		return "", fmt.Errorf("cloudinary rejected image %s: %s", filename, result.Error.Message)
	}

	return result.SecureURL, nil
}
