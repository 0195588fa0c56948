package databases

// go generate: mockery --name MessageDatabase

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/linesmerrill/rider-safety-api/models"
)

const messageName = "messages"

// MessageDatabase contains the methods to use with the message database
type MessageDatabase interface {
	InsertOne(ctx context.Context, message models.Message) (primitive.ObjectID, error)
	FindOne(ctx context.Context, filter interface{}) (*models.Message, error)
}

type messageDatabase struct {
	db DatabaseHelper
}

// NewMessageDatabase initializes a new instance of message database with the provided db connection
func NewMessageDatabase(db DatabaseHelper) MessageDatabase {
	return &messageDatabase{
		db: db,
	}
}

func (m *messageDatabase) InsertOne(ctx context.Context, message models.Message) (primitive.ObjectID, error) {
	return insertedID(m.db.Collection(messageName).InsertOne(ctx, message))
}

func (m *messageDatabase) FindOne(ctx context.Context, filter interface{}) (*models.Message, error) {
	message := &models.Message{}
	err := m.db.Collection(messageName).FindOne(ctx, filter).Decode(&message)
	if err != nil {
		return nil, err
	}
	return message, nil
}

// insertedID unwraps the ObjectID of an InsertOne result
func insertedID(res InsertOneResultHelper, err error) (primitive.ObjectID, error) {
	if err != nil {
		return primitive.NilObjectID, err
	}
	id, ok := res.Decode().(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, fmt.Errorf("unexpected inserted id type %T", res.Decode())
	}
	return id, nil
}
