package storage

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/google/uuid"
)

// StubStorage implements IImageStorage without calling Cloudinary. Used
// when MOCK_SERVICES is set so listings can be created offline.
type StubStorage struct{}

// NewStubStorage creates a new StubStorage.
func NewStubStorage() *StubStorage {
	return &StubStorage{}
}

// UploadImage drains the reader and returns a synthetic URL.
func (s *StubStorage) UploadImage(ctx context.Context, r io.Reader, filename string) (string, error) {
	n, err := io.Copy(io.Discard, r)
	if err != nil {
		return "", fmt.Errorf("failed to read image %s: %w", filename, err)
	}
	url := fmt.Sprintf("https://mock-storage.local/%s.jpg", uuid.NewString())
	log.Printf("Mock image upload: %s (%d bytes) stored as %s", filename, n, url)
	return url, nil
}
