package moderation_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/linesmerrill/rider-safety-api/databases"
	"github.com/linesmerrill/rider-safety-api/databases/mocks"
	"github.com/linesmerrill/rider-safety-api/models"
	"github.com/linesmerrill/rider-safety-api/moderation"
)

var (
	moderator = models.Identity{UserID: "mod-1", Roles: []string{models.RoleModerator}}
	rider     = models.Identity{UserID: "rider-1"}
)

type queueFixture struct {
	flags *mocks.ContentFlagDatabase
	users *mocks.UserDatabase
	logs  *mocks.ModerationLogDatabase
	queue *moderation.Queue
}

func newQueueFixture() queueFixture {
	flags := &mocks.ContentFlagDatabase{}
	users := &mocks.UserDatabase{}
	logs := &mocks.ModerationLogDatabase{}
	audit := moderation.NewAuditLog(logs)
	logs.On("InsertOne", mock.Anything, mock.Anything).Return(nil).Maybe()
	return queueFixture{
		flags: flags,
		users: users,
		logs:  logs,
		queue: moderation.NewQueue(flags, moderation.NewAccounts(users, audit), audit),
	}
}

func TestQueueRejectsNonModerators(t *testing.T) {
	f := newQueueFixture()
	ctx := context.Background()
	id := primitive.NewObjectID().Hex()

	_, err := f.queue.List(ctx, rider, "all")
	assert.ErrorIs(t, err, moderation.ErrNotAuthorized)
	_, err = f.queue.PendingCount(ctx, rider)
	assert.ErrorIs(t, err, moderation.ErrNotAuthorized)
	assert.ErrorIs(t, f.queue.Dismiss(ctx, rider, id), moderation.ErrNotAuthorized)
	assert.ErrorIs(t, f.queue.MarkReviewed(ctx, rider, id), moderation.ErrNotAuthorized)
	assert.ErrorIs(t, f.queue.ResolveWithBan(ctx, rider, id, "rider-2", ""), moderation.ErrNotAuthorized)

	f.flags.AssertNotCalled(t, "UpdateOne", mock.Anything, mock.Anything, mock.Anything)
	f.users.AssertNotCalled(t, "UpdateOne", mock.Anything, mock.Anything, mock.Anything)
}

func TestQueueList(t *testing.T) {
	tests := []struct {
		filter    string
		wantQuery bson.M
	}{
		{filter: "", wantQuery: bson.M{"status": "pending"}},
		{filter: "pending", wantQuery: bson.M{"status": "pending"}},
		{filter: "reviewed", wantQuery: bson.M{"status": "reviewed"}},
		{filter: "dismissed", wantQuery: bson.M{"status": "dismissed"}},
		{filter: "all", wantQuery: bson.M{}},
	}
	for _, tt := range tests {
		t.Run(tt.filter, func(t *testing.T) {
			f := newQueueFixture()
			f.flags.On("Find", mock.Anything, tt.wantQuery, mock.MatchedBy(func(o *options.FindOptions) bool {
				sort := o.Sort.(bson.D)
				return *o.Limit == databases.MaxListLimit &&
					sort[0].Key == "riskScore" && sort[0].Value == -1 &&
					sort[1].Key == "createdAt" && sort[1].Value == -1
			})).Return([]models.ContentFlag{{SenderID: "a"}}, nil).Once()

			flags, err := f.queue.List(context.Background(), moderator, tt.filter)

			require.NoError(t, err)
			assert.Len(t, flags, 1)
			f.flags.AssertExpectations(t)
		})
	}
}

func TestQueueListInvalidFilter(t *testing.T) {
	f := newQueueFixture()

	_, err := f.queue.List(context.Background(), moderator, "spicy")

	assert.ErrorIs(t, err, moderation.ErrInvalidFilter)
}

func TestQueuePendingCount(t *testing.T) {
	f := newQueueFixture()
	f.flags.On("CountDocuments", mock.Anything, bson.M{"status": models.FlagPending}).Return(int64(7), nil)

	n, err := f.queue.PendingCount(context.Background(), moderator)

	require.NoError(t, err)
	assert.Equal(t, int64(7), n)
	f.flags.AssertNotCalled(t, "Find", mock.Anything, mock.Anything)
}

func TestQueueDismissIsIdempotent(t *testing.T) {
	f := newQueueFixture()
	id := primitive.NewObjectID()
	filter := bson.M{"_id": id, "status": bson.M{"$ne": models.FlagDismissed}}

	f.flags.On("UpdateOne", mock.Anything, filter, mock.Anything).
		Return(&mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil).Once()
	f.flags.On("UpdateOne", mock.Anything, filter, mock.Anything).
		Return(&mongo.UpdateResult{}, nil).Once()
	f.flags.On("FindOne", mock.Anything, bson.M{"_id": id}).
		Return(&models.ContentFlag{ID: id, Status: models.FlagDismissed}, nil).Once()

	assert.NoError(t, f.queue.Dismiss(context.Background(), moderator, id.Hex()))
	assert.NoError(t, f.queue.Dismiss(context.Background(), moderator, id.Hex()))
	f.flags.AssertExpectations(t)
	f.logs.AssertNumberOfCalls(t, "InsertOne", 1)
}

func TestQueueMarkReviewed(t *testing.T) {
	f := newQueueFixture()
	id := primitive.NewObjectID()

	f.flags.On("UpdateOne", mock.Anything,
		bson.M{"_id": id, "status": bson.M{"$ne": models.FlagReviewed}},
		mock.MatchedBy(func(u bson.M) bool {
			set := u["$set"].(bson.M)
			return set["status"] == models.FlagReviewed && set["reviewedBy"] == "mod-1"
		})).Return(&mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil).Once()

	assert.NoError(t, f.queue.MarkReviewed(context.Background(), moderator, id.Hex()))
	f.flags.AssertExpectations(t)
}

func TestQueueUnknownAndMalformedIDs(t *testing.T) {
	f := newQueueFixture()
	id := primitive.NewObjectID()

	f.flags.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).Return(&mongo.UpdateResult{}, nil)
	f.flags.On("FindOne", mock.Anything, bson.M{"_id": id}).Return(nil, mongo.ErrNoDocuments)

	assert.ErrorIs(t, f.queue.Dismiss(context.Background(), moderator, id.Hex()), moderation.ErrFlagNotFound)
	assert.ErrorIs(t, f.queue.MarkReviewed(context.Background(), moderator, "not-an-id"), moderation.ErrInvalidID)
}

func TestQueueResolveWithBan(t *testing.T) {
	f := newQueueFixture()
	id := primitive.NewObjectID()
	var order []string

	f.flags.On("FindOne", mock.Anything, bson.M{"_id": id}).
		Return(&models.ContentFlag{ID: id, SenderID: "rider-2", Reason: strPtr("crypto pitch")}, nil)
	f.users.On("UpdateOne", mock.Anything, bson.M{"_id": "rider-2"}, mock.MatchedBy(func(u bson.M) bool {
		set := u["$set"].(bson.M)
		return set["user.accountStatus"] == models.AccountBanned &&
			set["user.statusReason"] == "Banned by moderator after review: crypto pitch"
	})).Run(func(mock.Arguments) { order = append(order, "ban") }).
		Return(&mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil)
	f.flags.On("UpdateOne", mock.Anything, bson.M{"_id": id, "status": bson.M{"$ne": models.FlagReviewed}}, mock.Anything).
		Run(func(mock.Arguments) { order = append(order, "review") }).
		Return(&mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil)

	err := f.queue.ResolveWithBan(context.Background(), moderator, id.Hex(), "rider-2", "")

	require.NoError(t, err)
	assert.Equal(t, []string{"ban", "review"}, order)
}

func TestQueueResolveWithBanTwice(t *testing.T) {
	f := newQueueFixture()
	id := primitive.NewObjectID()
	reviewFilter := bson.M{"_id": id, "status": bson.M{"$ne": models.FlagReviewed}}

	f.flags.On("FindOne", mock.Anything, bson.M{"_id": id}).
		Return(&models.ContentFlag{ID: id, Status: models.FlagReviewed}, nil)
	f.users.On("UpdateOne", mock.Anything, bson.M{"_id": "rider-2"}, mock.Anything).
		Return(&mongo.UpdateResult{MatchedCount: 1}, nil)
	f.flags.On("UpdateOne", mock.Anything, reviewFilter, mock.Anything).
		Return(&mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil).Once()
	f.flags.On("UpdateOne", mock.Anything, reviewFilter, mock.Anything).
		Return(&mongo.UpdateResult{}, nil).Once()

	assert.NoError(t, f.queue.ResolveWithBan(context.Background(), moderator, id.Hex(), "rider-2", "manual"))
	assert.NoError(t, f.queue.ResolveWithBan(context.Background(), moderator, id.Hex(), "rider-2", "manual"))
}

func TestQueueResolveWithBanLeavesFlagWhenBanFails(t *testing.T) {
	f := newQueueFixture()
	id := primitive.NewObjectID()

	f.flags.On("FindOne", mock.Anything, bson.M{"_id": id}).Return(&models.ContentFlag{ID: id}, nil)
	f.users.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("mocked-error"))

	err := f.queue.ResolveWithBan(context.Background(), moderator, id.Hex(), "rider-2", "")

	assert.EqualError(t, err, "ban user: mocked-error")
	f.flags.AssertNotCalled(t, "UpdateOne", mock.Anything, mock.Anything, mock.Anything)
}

func TestQueueResolveWithBanUnknownFlag(t *testing.T) {
	f := newQueueFixture()
	id := primitive.NewObjectID()

	f.flags.On("FindOne", mock.Anything, bson.M{"_id": id}).Return(nil, mongo.ErrNoDocuments)

	err := f.queue.ResolveWithBan(context.Background(), moderator, id.Hex(), "rider-2", "")

	assert.ErrorIs(t, err, moderation.ErrFlagNotFound)
	f.users.AssertNotCalled(t, "UpdateOne", mock.Anything, mock.Anything, mock.Anything)
}
