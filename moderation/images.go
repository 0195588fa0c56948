package moderation

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/linesmerrill/rider-safety-api/databases"
	"github.com/linesmerrill/rider-safety-api/models"
)

// Upload errors
var (
	ErrUnsupportedImageType = errors.New("unsupported image type")
	ErrImageTooLarge        = errors.New("image too large")
	ErrEmptyImage           = errors.New("image is empty")
)

var allowedImageTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/gif":  {},
	"image/webp": {},
}

// VerdictClassifier is the image moderation gate
type VerdictClassifier interface {
	Classify(ctx context.Context, image []byte, contentType string) models.Verdict
}

// Images gates uploads on the moderation verdict and serves the admin image
// review list
type Images struct {
	Classifier VerdictClassifier
	Blobs      databases.BlobStore
	DB         databases.ImageDatabase
	Audit      *AuditLog
	MaxBytes   int64
	now        func() time.Time
}

// NewImages ...
func NewImages(classifier VerdictClassifier, blobs databases.BlobStore, db databases.ImageDatabase, audit *AuditLog, maxBytes int64) *Images {
	return &Images{
		Classifier: classifier,
		Blobs:      blobs,
		DB:         db,
		Audit:      audit,
		MaxBytes:   maxBytes,
		now:        time.Now,
	}
}

// Upload classifies data before anything is written. A rejected image returns
// ErrImageRejected and touches neither the blob store nor the database. A
// pending image is stored like an approved one and shows up in the review
// list.
func (s *Images) Upload(ctx context.Context, uploaderID string, data []byte) (*models.Image, error) {
	if len(data) == 0 {
		return nil, ErrEmptyImage
	}
	if s.MaxBytes > 0 && int64(len(data)) > s.MaxBytes {
		return nil, ErrImageTooLarge
	}
	contentType := http.DetectContentType(data)
	if _, ok := allowedImageTypes[contentType]; !ok {
		return nil, ErrUnsupportedImageType
	}
	if s.Blobs == nil {
		return nil, databases.ErrBlobStoreNotConfigured
	}

	verdict := s.Classifier.Classify(ctx, data, contentType)
	if verdict == models.VerdictRejected {
		zap.S().Infow("image upload rejected by moderation", "uploaderId", uploaderID, "contentType", contentType)
		return nil, ErrImageRejected
	}

	key := uuid.New().String()
	blob, err := s.Blobs.Put(ctx, key, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("store image blob: %w", err)
	}

	image := models.Image{
		UploaderID:       uploaderID,
		URL:              blob.URL,
		PublicID:         blob.PublicID,
		ContentType:      contentType,
		Size:             int64(len(data)),
		ModerationStatus: models.ImageStatus(verdict),
		CreatedAt:        primitive.NewDateTimeFromTime(s.now()),
	}
	id, err := s.DB.InsertOne(ctx, image)
	if err != nil {
		if derr := s.Blobs.Delete(ctx, blob.PublicID); derr != nil {
			zap.S().Errorw("failed to clean up orphaned image blob", "publicId", blob.PublicID, "error", derr)
		}
		return nil, fmt.Errorf("insert image: %w", err)
	}
	image.ID = id

	if verdict == models.VerdictPending {
		zap.S().Infow("image held for review", "imageId", id.Hex(), "uploaderId", uploaderID)
	}
	return &image, nil
}

// List returns stored images for review, newest first. status is "pending",
// "approved" or "all"; empty means pending.
func (s *Images) List(ctx context.Context, actor models.Identity, status string) ([]models.Image, error) {
	if err := authorize(actor); err != nil {
		return nil, err
	}
	query := bson.M{}
	switch status {
	case "", string(models.ImagePending):
		query["moderationStatus"] = models.ImagePending
	case string(models.ImageApproved):
		query["moderationStatus"] = models.ImageApproved
	case models.FlagFilterAll:
	default:
		return nil, ErrInvalidFilter
	}
	images, err := s.DB.Find(ctx, query, databases.SortedOpts(bson.D{{Key: "createdAt", Value: -1}}, databases.MaxListLimit))
	if err != nil {
		return nil, fmt.Errorf("list images: %w", err)
	}
	return images, nil
}

// PendingCount counts images waiting for review
func (s *Images) PendingCount(ctx context.Context) (int64, error) {
	return s.DB.CountDocuments(ctx, bson.M{"moderationStatus": models.ImagePending})
}

// Approve clears a pending image. Approving an approved image does nothing.
func (s *Images) Approve(ctx context.Context, actor models.Identity, imageID string) error {
	if err := authorize(actor); err != nil {
		return err
	}
	id, err := parseID(imageID)
	if err != nil {
		return err
	}
	res, err := s.DB.UpdateOne(ctx,
		bson.M{"_id": id, "moderationStatus": bson.M{"$ne": models.ImageApproved}},
		bson.M{"$set": bson.M{
			"moderationStatus": models.ImageApproved,
			"reviewedBy":       actor.UserID,
			"reviewedAt":       primitive.NewDateTimeFromTime(s.now()),
		}})
	if err != nil {
		return fmt.Errorf("approve image: %w", err)
	}
	if res != nil && res.MatchedCount > 0 {
		s.Audit.Record(ctx, models.ModerationAction{Action: models.AuditApproveImage, ActorID: actor.UserID, ImageID: &id})
		return nil
	}
	if _, err := s.DB.FindOne(ctx, bson.M{"_id": id}); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrImageNotFound
		}
		return fmt.Errorf("find image: %w", err)
	}
	return nil
}

// Remove deletes an image row and its blob. The row goes first so a failed
// blob delete leaves an orphaned blob rather than a broken image.
func (s *Images) Remove(ctx context.Context, actor models.Identity, imageID string) error {
	if err := authorize(actor); err != nil {
		return err
	}
	id, err := parseID(imageID)
	if err != nil {
		return err
	}
	image, err := s.DB.FindOne(ctx, bson.M{"_id": id})
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrImageNotFound
	}
	if err != nil {
		return fmt.Errorf("find image: %w", err)
	}
	res, err := s.DB.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete image: %w", err)
	}
	if res == nil || res.DeletedCount == 0 {
		return ErrImageNotFound
	}
	if s.Blobs != nil && image.PublicID != "" {
		if err := s.Blobs.Delete(ctx, image.PublicID); err != nil {
			zap.S().Errorw("failed to delete image blob", "publicId", image.PublicID, "error", err)
		}
	}
	s.Audit.Record(ctx, models.ModerationAction{
		Action:       models.AuditRemoveImage,
		ActorID:      actor.UserID,
		TargetUserID: image.UploaderID,
		ImageID:      &id,
	})
	return nil
}
