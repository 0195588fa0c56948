package moderation_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/linesmerrill/rider-safety-api/databases/mocks"
	"github.com/linesmerrill/rider-safety-api/models"
	"github.com/linesmerrill/rider-safety-api/moderation"
)

func TestAutoBanTwiceBansOnce(t *testing.T) {
	users := &mocks.UserDatabase{}
	logs := &mocks.ModerationLogDatabase{}
	accounts := moderation.NewAccounts(users, moderation.NewAuditLog(logs))

	// the conditional update matches only while the account is still active
	users.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).
		Return(&mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil).Once()
	users.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).
		Return(&mongo.UpdateResult{}, nil).Once()
	logs.On("InsertOne", mock.Anything, mock.Anything).Return(nil)

	first, err := accounts.AutoBan(context.Background(), "rider-1", "reason", nil)
	require.NoError(t, err)
	second, err := accounts.AutoBan(context.Background(), "rider-1", "reason", nil)
	require.NoError(t, err)

	assert.True(t, first)
	assert.False(t, second)
	logs.AssertNumberOfCalls(t, "InsertOne", 1)
}

func TestAutoBanMatchesEveryActiveStatus(t *testing.T) {
	users := &mocks.UserDatabase{}
	users.On("UpdateOne", mock.Anything, mock.MatchedBy(func(f bson.M) bool {
		in := f["user.accountStatus"].(bson.M)["$in"].(bson.A)
		// every status IsActive accepts must be banned by the filter
		for _, status := range []models.AccountStatus{models.AccountActive, ""} {
			if !(models.UserDetails{AccountStatus: status}).IsActive() {
				return false
			}
			found := false
			for _, v := range in {
				if v != nil && fmt.Sprint(v) == string(status) {
					found = true
				}
			}
			if !found {
				return false
			}
		}
		return f["_id"] == "rider-1"
	}), mock.Anything).Return(&mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil).Once()

	banned, err := moderation.NewAccounts(users, nil).AutoBan(context.Background(), "rider-1", "reason", nil)

	require.NoError(t, err)
	assert.True(t, banned)
	users.AssertExpectations(t)
}

func TestAutoBanError(t *testing.T) {
	users := &mocks.UserDatabase{}
	users.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("mocked-error"))

	banned, err := moderation.NewAccounts(users, nil).AutoBan(context.Background(), "rider-1", "reason", nil)

	assert.False(t, banned)
	assert.EqualError(t, err, "mocked-error")
}

func TestBanIsUnconditional(t *testing.T) {
	users := &mocks.UserDatabase{}
	logs := &mocks.ModerationLogDatabase{}

	users.On("UpdateOne", mock.Anything, bson.M{"_id": "rider-1"}, mock.MatchedBy(func(u bson.M) bool {
		set := u["$set"].(bson.M)
		return set["user.accountStatus"] == models.AccountBanned && set["user.bannedBy"] == "mod-1"
	})).Return(&mongo.UpdateResult{MatchedCount: 1}, nil).Twice()
	logs.On("InsertOne", mock.Anything, mock.MatchedBy(func(a models.ModerationAction) bool {
		return a.Action == models.AuditBan && a.ActorID == "mod-1"
	})).Return(nil)

	accounts := moderation.NewAccounts(users, moderation.NewAuditLog(logs))
	assert.NoError(t, accounts.Ban(context.Background(), "rider-1", "spam", "mod-1", nil))
	// already banned: still matched, still fine
	assert.NoError(t, accounts.Ban(context.Background(), "rider-1", "spam", "mod-1", nil))
	users.AssertExpectations(t)
}

func TestBanUnknownUser(t *testing.T) {
	users := &mocks.UserDatabase{}
	users.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).Return(&mongo.UpdateResult{}, nil)

	err := moderation.NewAccounts(users, nil).Ban(context.Background(), "ghost", "spam", "mod-1", nil)

	assert.ErrorIs(t, err, moderation.ErrUserNotFound)
}

func TestRequireActive(t *testing.T) {
	tests := []struct {
		name    string
		user    *models.User
		findErr error
		wantErr error
	}{
		{name: "active", user: &models.User{ID: "u", Details: models.UserDetails{AccountStatus: models.AccountActive}}},
		{name: "missing status counts as active", user: &models.User{ID: "u"}},
		{name: "banned", user: &models.User{ID: "u", Details: models.UserDetails{AccountStatus: models.AccountBanned}}, wantErr: moderation.ErrSenderNotActive},
		{name: "suspended", user: &models.User{ID: "u", Details: models.UserDetails{AccountStatus: models.AccountSuspended}}, wantErr: moderation.ErrSenderNotActive},
		{name: "unknown user", findErr: mongo.ErrNoDocuments, wantErr: moderation.ErrUserNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := &mocks.UserDatabase{}
			users.On("FindOne", mock.Anything, bson.M{"_id": "u"}).Return(tt.user, tt.findErr)

			err := moderation.NewAccounts(users, nil).RequireActive(context.Background(), "u")

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
