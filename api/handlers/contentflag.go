package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/linesmerrill/rider-safety-api/api"
	"github.com/linesmerrill/rider-safety-api/config"
	"github.com/linesmerrill/rider-safety-api/models"
	"github.com/linesmerrill/rider-safety-api/moderation"
)

// ContentFlag exported for testing purposes
type ContentFlag struct {
	Queue     *moderation.Queue
	Validator *Validator
}

// ContentFlagsHandler lists flags by status, pending when no status is given
func (c ContentFlag) ContentFlagsHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := identity(w, r)
	if !ok {
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	flags, err := c.Queue.List(ctx, actor, r.URL.Query().Get("status"))
	if err != nil {
		writeServiceError("failed to list content flags", w, err)
		return
	}
	if flags == nil {
		flags = []models.ContentFlag{}
	}
	writeJSON(w, http.StatusOK, flags)
}

// PendingCountHandler returns the number of pending flags
func (c ContentFlag) PendingCountHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := identity(w, r)
	if !ok {
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	n, err := c.Queue.PendingCount(ctx, actor)
	if err != nil {
		writeServiceError("failed to count content flags", w, err)
		return
	}
	writeJSON(w, http.StatusOK, models.PendingCountResponse{Count: n})
}

// DismissFlagHandler closes a flag without action
func (c ContentFlag) DismissFlagHandler(w http.ResponseWriter, r *http.Request) {
	c.transition(w, r, c.Queue.Dismiss, "failed to dismiss content flag")
}

// ReviewFlagHandler closes a flag as handled
func (c ContentFlag) ReviewFlagHandler(w http.ResponseWriter, r *http.Request) {
	c.transition(w, r, c.Queue.MarkReviewed, "failed to review content flag")
}

func (c ContentFlag) transition(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, actor models.Identity, flagID string) error, message string) {
	actor, ok := identity(w, r)
	if !ok {
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if err := fn(ctx, actor, mux.Vars(r)["flagId"]); err != nil {
		writeServiceError(message, w, err)
		return
	}
	writeJSON(w, http.StatusOK, models.SuccessResponse{Success: true})
}

// BanFromFlagHandler bans the user behind a flag and closes it as reviewed
func (c ContentFlag) BanFromFlagHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := identity(w, r)
	if !ok {
		return
	}

	var req models.BanRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxMessagePayload)).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		config.ErrorStatus("failed to decode request", http.StatusBadRequest, w, err)
		return
	}
	if errs := c.Validator.Validate(req); errs != nil {
		writeValidationErrors(w, errs)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if err := c.Queue.ResolveWithBan(ctx, actor, mux.Vars(r)["flagId"], req.UserID, req.Reason); err != nil {
		writeServiceError("failed to ban user", w, err)
		return
	}
	writeJSON(w, http.StatusOK, models.SuccessResponse{Success: true})
}
