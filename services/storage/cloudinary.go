package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// CloudinaryStorage implements CloudStorage on Cloudinary.
type CloudinaryStorage struct {
	cld    *cloudinary.Cloudinary
	folder string
}

// NewCloudinaryStorage creates a new CloudinaryStorage instance uploading
// into the given folder.
func NewCloudinaryStorage(cld *cloudinary.Cloudinary, folder string) *CloudinaryStorage {
	return &CloudinaryStorage{cld: cld, folder: folder}
}

// Upload stores the stream and returns the permanent identifier plus the
// public URL.
func (s *CloudinaryStorage) Upload(ctx context.Context, r io.Reader, name string) (string, string, error) {
	uploadParams := uploader.UploadParams{
		Folder:   s.folder,
		PublicID: name,
	}
	result, err := s.cld.Upload.Upload(ctx, r, uploadParams)
	if err != nil {
		return "", "", fmt.Errorf("CloudinaryStorage: failed to upload file: %w", err)
	}
	if result.PublicID == "" {
		return "", "", fmt.Errorf("CloudinaryStorage: no public ID returned")
	}
	return result.PublicID, result.SecureURL, nil
}

// Delete removes a file from Cloudinary given its public ID.
func (s *CloudinaryStorage) Delete(ctx context.Context, objectID string) error {
	_, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: objectID})
	if err != nil {
		return fmt.Errorf("CloudinaryStorage: failed to delete file: %w", err)
	}
	return nil
}
