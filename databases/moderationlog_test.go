package databases_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/linesmerrill/rider-safety-api/databases"
	"github.com/linesmerrill/rider-safety-api/databases/mocks"
	"github.com/linesmerrill/rider-safety-api/models"
)

func TestModerationLogDatabase_InsertOne(t *testing.T) {
	dbHelper := &mocks.DatabaseHelper{}
	collectionHelper := &mocks.CollectionHelper{}
	action := models.ModerationAction{Action: models.AuditBan, ActorID: "mod-1", TargetUserID: "rider-9"}

	collectionHelper.On("InsertOne", context.Background(), action).Return(&mocks.InsertOneResultHelper{}, nil).Once()
	collectionHelper.On("InsertOne", context.Background(), mock.Anything).Return(nil, errors.New("mocked-error"))
	dbHelper.On("Collection", "moderation_actions").Return(collectionHelper)

	logDB := databases.NewModerationLogDatabase(dbHelper)

	assert.NoError(t, logDB.InsertOne(context.Background(), action))
	assert.EqualError(t, logDB.InsertOne(context.Background(), models.ModerationAction{}), "mocked-error")
}

func TestModerationLogDatabase_FindError(t *testing.T) {
	dbHelper := &mocks.DatabaseHelper{}
	collectionHelper := &mocks.CollectionHelper{}

	collectionHelper.On("Find", context.Background(), bson.M{"targetUserId": "rider-9"}).Return(nil, errors.New("mocked-error"))
	dbHelper.On("Collection", "moderation_actions").Return(collectionHelper)

	actions, err := databases.NewModerationLogDatabase(dbHelper).Find(context.Background(), bson.M{"targetUserId": "rider-9"})

	assert.Nil(t, actions)
	assert.EqualError(t, err, "mocked-error")
}
