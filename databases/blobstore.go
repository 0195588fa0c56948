package databases

// go generate: mockery --name BlobStore

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"github.com/linesmerrill/rider-safety-api/config"
)

// ErrBlobStoreNotConfigured is returned when no blob credentials are set
var ErrBlobStoreNotConfigured = errors.New("blob store not configured")

// StoredBlob is where an uploaded object ended up
type StoredBlob struct {
	URL      string
	PublicID string
}

// BlobStore persists image bytes outside the database
type BlobStore interface {
	Put(ctx context.Context, key string, r io.Reader) (StoredBlob, error)
	Delete(ctx context.Context, publicID string) error
}

type cloudinaryBlobStore struct {
	cld    *cloudinary.Cloudinary
	folder string
}

// NewCloudinaryBlobStore builds a BlobStore on the Cloudinary upload API
func NewCloudinaryBlobStore(conf *config.Config) (BlobStore, error) {
	if conf.CloudinaryCloudName == "" || conf.CloudinaryAPIKey == "" || conf.CloudinaryAPISecret == "" {
		return nil, ErrBlobStoreNotConfigured
	}
	cld, err := cloudinary.NewFromParams(conf.CloudinaryCloudName, conf.CloudinaryAPIKey, conf.CloudinaryAPISecret)
	if err != nil {
		return nil, err
	}
	return &cloudinaryBlobStore{cld: cld, folder: conf.CloudinaryFolder}, nil
}

func (c *cloudinaryBlobStore) Put(ctx context.Context, key string, r io.Reader) (StoredBlob, error) {
	resp, err := c.cld.Upload.Upload(ctx, r, uploader.UploadParams{
		PublicID: key,
		Folder:   c.folder,
	})
	if err != nil {
		return StoredBlob{}, err
	}
	if resp.Error.Message != "" {
		return StoredBlob{}, fmt.Errorf("cloudinary upload: %s", resp.Error.Message)
	}
	return StoredBlob{URL: resp.SecureURL, PublicID: resp.PublicID}, nil
}

func (c *cloudinaryBlobStore) Delete(ctx context.Context, publicID string) error {
	resp, err := c.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	if err != nil {
		return err
	}
	if resp.Error.Message != "" {
		return fmt.Errorf("cloudinary destroy: %s", resp.Error.Message)
	}
	return nil
}
