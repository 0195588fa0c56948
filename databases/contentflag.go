package databases

// go generate: mockery --name ContentFlagDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/linesmerrill/rider-safety-api/models"
)

const contentFlagName = "content_flags"

// ContentFlagDatabase contains the methods to use with the content flag database
type ContentFlagDatabase interface {
	FindOne(ctx context.Context, filter interface{}) (*models.ContentFlag, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.ContentFlag, error)
	// InsertOne reports false without error when a flag for the same message
	// already exists.
	InsertOne(ctx context.Context, flag models.ContentFlag) (bool, error)
	UpdateOne(ctx context.Context, filter interface{}, update interface{}) (*mongo.UpdateResult, error)
	CountDocuments(ctx context.Context, filter interface{}) (int64, error)
	EnsureIndexes(ctx context.Context) error
}

type contentFlagDatabase struct {
	db DatabaseHelper
}

// NewContentFlagDatabase initializes a new instance of content flag database with the provided db connection
func NewContentFlagDatabase(db DatabaseHelper) ContentFlagDatabase {
	return &contentFlagDatabase{
		db: db,
	}
}

func (c *contentFlagDatabase) FindOne(ctx context.Context, filter interface{}) (*models.ContentFlag, error) {
	flag := &models.ContentFlag{}
	err := c.db.Collection(contentFlagName).FindOne(ctx, filter).Decode(&flag)
	if err != nil {
		return nil, err
	}
	return flag, nil
}

func (c *contentFlagDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.ContentFlag, error) {
	cursor, err := c.db.Collection(contentFlagName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	flags := []models.ContentFlag{}
	if err := cursor.All(ctx, &flags); err != nil {
		return nil, err
	}
	return flags, nil
}

func (c *contentFlagDatabase) InsertOne(ctx context.Context, flag models.ContentFlag) (bool, error) {
	_, err := c.db.Collection(contentFlagName).InsertOne(ctx, flag)
	if mongo.IsDuplicateKeyError(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (c *contentFlagDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}) (*mongo.UpdateResult, error) {
	return c.db.Collection(contentFlagName).UpdateOne(ctx, filter, update)
}

func (c *contentFlagDatabase) CountDocuments(ctx context.Context, filter interface{}) (int64, error) {
	return c.db.Collection(contentFlagName).CountDocuments(ctx, filter)
}

// EnsureIndexes creates the one-flag-per-message unique index and the queue
// listing index. Flags without a message id are not covered by the unique
// index.
func (c *contentFlagDatabase) EnsureIndexes(ctx context.Context) error {
	_, err := c.db.Collection(contentFlagName).CreateIndexes(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "messageId", Value: 1}},
			Options: options.Index().
				SetName("messageId_unique").
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"messageId": bson.M{"$type": "objectId"}}),
		},
		{
			Keys: bson.D{
				{Key: "status", Value: 1},
				{Key: "riskScore", Value: -1},
				{Key: "createdAt", Value: -1},
			},
			Options: options.Index().SetName("status_riskScore_createdAt"),
		},
	})
	return err
}
