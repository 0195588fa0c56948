package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/linesmerrill/rider-safety-api/api"
	"github.com/linesmerrill/rider-safety-api/models"
	"github.com/linesmerrill/rider-safety-api/moderation"
)

// Risk exported for testing purposes
type Risk struct {
	Accounts *moderation.Accounts
}

// RiskFlagsHandler shows moderators the signup risk indicators of a user
func (rk Risk) RiskFlagsHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := identity(w, r)
	if !ok {
		return
	}
	if !actor.IsModerator() {
		writeServiceError("", w, moderation.ErrNotAuthorized)
		return
	}

	userID := mux.Vars(r)["userId"]

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	user, err := rk.Accounts.Get(ctx, userID)
	if err != nil {
		writeServiceError("failed to get user", w, err)
		return
	}

	flags := moderation.EvaluateRiskFlags(moderation.RiskInput{
		Country: user.Details.SignupCountry,
		City:    user.Details.City,
		State:   user.Details.State,
	})
	writeJSON(w, http.StatusOK, models.RiskFlagsResponse{UserID: userID, Flags: flags})
}
