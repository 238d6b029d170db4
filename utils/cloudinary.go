package utils

import (
	"context"
	"errors"
	"fmt"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
)

type CloudinaryStore struct {
	cld          *cloudinary.Cloudinary
	uploadPreset string
}

func NewCloudinaryStore(cloudName, apiKey, apiSecret, uploadPreset string) (*CloudinaryStore, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("init cloudinary: %w", err)
	}
	return &CloudinaryStore{cld: cld, uploadPreset: uploadPreset}, nil
}

// Save uploads the file as-is; certificates are documents so no transformation
// is applied.
func (s *CloudinaryStore) Save(ctx context.Context, u Upload) (StoredFile, error) {
	resp, err := s.cld.Upload.Upload(ctx, u.Body, uploader.UploadParams{
		PublicID:     uuid.NewString(),
		Folder:       u.Folder,
		UploadPreset: s.uploadPreset,
		ResourceType: "auto",
	})
	if err != nil {
		return StoredFile{}, fmt.Errorf("cloudinary upload: %w", err)
	}
	if resp.Error.Message != "" {
		return StoredFile{}, errors.New("cloudinary upload: " + resp.Error.Message)
	}
	return StoredFile{Ref: resp.PublicID, URL: resp.SecureURL}, nil
}

func (s *CloudinaryStore) Delete(ctx context.Context, ref string) error {
	_, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: ref})
	if err != nil {
		return fmt.Errorf("cloudinary destroy: %w", err)
	}
	return nil
}
