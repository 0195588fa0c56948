package databases

// go generate: mockery --name ImageDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/linesmerrill/rider-safety-api/models"
)

const imageName = "images"

// ImageDatabase contains the methods to use with the image database
type ImageDatabase interface {
	InsertOne(ctx context.Context, image models.Image) (primitive.ObjectID, error)
	FindOne(ctx context.Context, filter interface{}) (*models.Image, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Image, error)
	UpdateOne(ctx context.Context, filter interface{}, update interface{}) (*mongo.UpdateResult, error)
	DeleteOne(ctx context.Context, filter interface{}) (*mongo.DeleteResult, error)
	CountDocuments(ctx context.Context, filter interface{}) (int64, error)
}

type imageDatabase struct {
	db DatabaseHelper
}

// NewImageDatabase initializes a new instance of image database with the provided db connection
func NewImageDatabase(db DatabaseHelper) ImageDatabase {
	return &imageDatabase{
		db: db,
	}
}

func (i *imageDatabase) InsertOne(ctx context.Context, image models.Image) (primitive.ObjectID, error) {
	return insertedID(i.db.Collection(imageName).InsertOne(ctx, image))
}

func (i *imageDatabase) FindOne(ctx context.Context, filter interface{}) (*models.Image, error) {
	image := &models.Image{}
	err := i.db.Collection(imageName).FindOne(ctx, filter).Decode(&image)
	if err != nil {
		return nil, err
	}
	return image, nil
}

func (i *imageDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Image, error) {
	cursor, err := i.db.Collection(imageName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	images := []models.Image{}
	if err := cursor.All(ctx, &images); err != nil {
		return nil, err
	}
	return images, nil
}

func (i *imageDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}) (*mongo.UpdateResult, error) {
	return i.db.Collection(imageName).UpdateOne(ctx, filter, update)
}

func (i *imageDatabase) DeleteOne(ctx context.Context, filter interface{}) (*mongo.DeleteResult, error) {
	return i.db.Collection(imageName).DeleteOne(ctx, filter)
}

func (i *imageDatabase) CountDocuments(ctx context.Context, filter interface{}) (int64, error) {
	return i.db.Collection(imageName).CountDocuments(ctx, filter)
}
