package handlers_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/linesmerrill/rider-safety-api/models"
)

func activeSender(f *fixture, userID string) {
	f.users.On("FindOne", mock.Anything, bson.M{"_id": userID}).
		Return(&models.User{ID: userID, Details: models.UserDetails{AccountStatus: models.AccountActive}}, nil)
}

func TestSendMessageSchedulesScan(t *testing.T) {
	f := newFixture()
	activeSender(f, "rider-1")
	id := primitive.NewObjectID()
	f.messages.On("InsertOne", mock.Anything, mock.MatchedBy(func(m models.Message) bool {
		return m.SenderID == "rider-1" && m.RecipientID == "rider-2" && m.Body == "see you at the rally"
	})).Return(id, nil).Once()

	rr := do(t, f.router(), "POST", "/api/v1/messages",
		strings.NewReader(`{"recipientId": "rider-2", "body": "see you at the rally"}`), "rider-1")

	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var got models.Message
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, id, got.ID)

	select {
	case msg := <-f.scans.dispatched:
		assert.Equal(t, id, msg.ID)
		assert.Equal(t, "see you at the rally", msg.Body)
	case <-time.After(time.Second):
		t.Fatal("scan was never dispatched")
	}
	assert.Len(t, f.scans.dispatched, 0, "scan dispatched more than once")
}

func TestSendMessageRejectsInactiveSender(t *testing.T) {
	for _, status := range []models.AccountStatus{models.AccountBanned, models.AccountSuspended} {
		t.Run(string(status), func(t *testing.T) {
			f := newFixture()
			f.users.On("FindOne", mock.Anything, mock.Anything).
				Return(&models.User{ID: "rider-1", Details: models.UserDetails{AccountStatus: status}}, nil)

			rr := do(t, f.router(), "POST", "/api/v1/messages",
				strings.NewReader(`{"recipientId": "rider-2", "body": "hi"}`), "rider-1")

			assert.Equal(t, http.StatusForbidden, rr.Code)
			assert.JSONEq(t, `{"success": false, "error": "sender account is not active", "code": "ACCOUNT_NOT_ACTIVE"}`, rr.Body.String())
			f.messages.AssertNotCalled(t, "InsertOne", mock.Anything, mock.Anything)
			assert.Len(t, f.scans.dispatched, 0)
		})
	}
}

func TestSendMessageUnknownSender(t *testing.T) {
	f := newFixture()
	f.users.On("FindOne", mock.Anything, mock.Anything).Return(nil, mongo.ErrNoDocuments)

	rr := do(t, f.router(), "POST", "/api/v1/messages",
		strings.NewReader(`{"recipientId": "rider-2", "body": "hi"}`), "ghost")

	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestSendMessageValidation(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"empty body", `{"recipientId": "rider-2", "body": ""}`, "body"},
		{"missing recipient", `{"body": "hi"}`, "recipientId"},
		{"body too long", `{"recipientId": "rider-2", "body": "` + strings.Repeat("a", 5001) + `"}`, "body"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()

			rr := do(t, f.router(), "POST", "/api/v1/messages", strings.NewReader(tt.body), "rider-1")

			require.Equal(t, http.StatusBadRequest, rr.Code)
			var resp models.ValidationErrorResponse
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
			require.Len(t, resp.Errors, 1)
			assert.Equal(t, tt.field, resp.Errors[0].Field)
			f.messages.AssertNotCalled(t, "InsertOne", mock.Anything, mock.Anything)
		})
	}
}

func TestSendMessageToSelf(t *testing.T) {
	f := newFixture()

	rr := do(t, f.router(), "POST", "/api/v1/messages",
		strings.NewReader(`{"recipientId": "rider-1", "body": "note to self"}`), "rider-1")

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "INVALID_RECIPIENT")
}

func TestSendMessageBadJSON(t *testing.T) {
	rr := do(t, newFixture().router(), "POST", "/api/v1/messages", strings.NewReader(`{"body":`), "rider-1")

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestSendMessageInsertFailureIsNotScanned(t *testing.T) {
	f := newFixture()
	activeSender(f, "rider-1")
	f.messages.On("InsertOne", mock.Anything, mock.Anything).Return(primitive.NilObjectID, errors.New("mocked-error"))

	rr := do(t, f.router(), "POST", "/api/v1/messages",
		strings.NewReader(`{"recipientId": "rider-2", "body": "hi"}`), "rider-1")

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"success": false, "error": "failed to send message, mocked-error", "code": "INTERNAL_SERVER_ERROR"}`, rr.Body.String())
	time.Sleep(20 * time.Millisecond)
	assert.Len(t, f.scans.dispatched, 0)
}

func TestSendMessageRateLimited(t *testing.T) {
	f := newFixture()
	f.conf.RateLimitMessages = 2
	activeSender(f, "rider-1")
	f.messages.On("InsertOne", mock.Anything, mock.Anything).Return(primitive.NewObjectID(), nil)
	r := f.router()

	for i := 0; i < 2; i++ {
		rr := do(t, r, "POST", "/api/v1/messages", strings.NewReader(`{"recipientId": "rider-2", "body": "hi"}`), "rider-1")
		assert.Equal(t, http.StatusCreated, rr.Code)
	}
	rr := do(t, r, "POST", "/api/v1/messages", strings.NewReader(`{"recipientId": "rider-2", "body": "hi"}`), "rider-1")

	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
}
