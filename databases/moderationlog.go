package databases

// go generate: mockery --name ModerationLogDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/linesmerrill/rider-safety-api/models"
)

const moderationLogName = "moderation_actions"

// ModerationLogDatabase contains the methods to use with the moderation audit log
type ModerationLogDatabase interface {
	InsertOne(ctx context.Context, action models.ModerationAction) error
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.ModerationAction, error)
}

type moderationLogDatabase struct {
	db DatabaseHelper
}

// NewModerationLogDatabase initializes a new instance of the audit log database with the provided db connection
func NewModerationLogDatabase(db DatabaseHelper) ModerationLogDatabase {
	return &moderationLogDatabase{
		db: db,
	}
}

func (m *moderationLogDatabase) InsertOne(ctx context.Context, action models.ModerationAction) error {
	_, err := m.db.Collection(moderationLogName).InsertOne(ctx, action)
	return err
}

func (m *moderationLogDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.ModerationAction, error) {
	cursor, err := m.db.Collection(moderationLogName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	actions := []models.ModerationAction{}
	if err := cursor.All(ctx, &actions); err != nil {
		return nil, err
	}
	return actions, nil
}
