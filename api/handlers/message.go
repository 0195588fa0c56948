package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/linesmerrill/rider-safety-api/api"
	"github.com/linesmerrill/rider-safety-api/config"
	"github.com/linesmerrill/rider-safety-api/databases"
	"github.com/linesmerrill/rider-safety-api/models"
	"github.com/linesmerrill/rider-safety-api/moderation"
)

const maxMessagePayload = 64 << 10

var errMessageToSelf = errors.New("recipientId must not be the sender")

// ScanDispatcher hands a stored message to the background scam scan
type ScanDispatcher interface {
	Dispatch(msg models.Message) bool
}

// Message exported for testing purposes
type Message struct {
	DB        databases.MessageDatabase
	Accounts  *moderation.Accounts
	Scans     ScanDispatcher
	Validator *Validator
}

// SendMessageHandler stores a direct message and schedules its scam scan for
// after the response
func (m Message) SendMessageHandler(w http.ResponseWriter, r *http.Request) {
	sender, ok := identity(w, r)
	if !ok {
		return
	}

	var req models.SendMessageRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxMessagePayload)).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request", http.StatusBadRequest, w, err)
		return
	}
	if errs := m.Validator.Validate(req); errs != nil {
		writeValidationErrors(w, errs)
		return
	}
	if req.RecipientID == sender.UserID {
		writeError(w, http.StatusBadRequest, "INVALID_RECIPIENT", errMessageToSelf)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if err := m.Accounts.RequireActive(ctx, sender.UserID); err != nil {
		if errors.Is(err, moderation.ErrUserNotFound) {
			// a token for a deleted account is treated like a banned one
			err = moderation.ErrSenderNotActive
		}
		writeServiceError("failed to check sender", w, err)
		return
	}

	msg := models.Message{
		SenderID:    sender.UserID,
		RecipientID: req.RecipientID,
		Body:        req.Body,
		CreatedAt:   primitive.NewDateTimeFromTime(time.Now()),
	}
	id, err := m.DB.InsertOne(ctx, msg)
	if err != nil {
		config.ErrorStatus("failed to send message", http.StatusInternalServerError, w, err)
		return
	}
	msg.ID = id

	api.Defer(r.Context(), func() {
		if !m.Scans.Dispatch(msg) {
			zap.S().Warnw("scam scan not scheduled", "messageId", msg.ID.Hex())
		}
	})

	writeJSON(w, http.StatusCreated, msg)
}
