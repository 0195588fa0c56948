package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/linesmerrill/rider-safety-api/api"
	"github.com/linesmerrill/rider-safety-api/config"
	"github.com/linesmerrill/rider-safety-api/databases"
	"github.com/linesmerrill/rider-safety-api/models"
	"github.com/linesmerrill/rider-safety-api/moderation"
)

// Validator checks request payloads and reports failures by their json names
type Validator struct {
	validate *validator.Validate
}

// NewValidator ...
func NewValidator() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{validate: v}
}

// Validate returns nil when s passes its validate tags
func (v *Validator) Validate(s interface{}) []models.ValidationError {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return []models.ValidationError{{Msg: err.Error()}}
	}
	out := make([]models.ValidationError, 0, len(ve))
	for _, fe := range ve {
		out = append(out, models.ValidationError{Field: fe.Field(), Msg: validationMessage(fe)})
	}
	return out
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters long", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters long", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}

func writeValidationErrors(w http.ResponseWriter, errs []models.ValidationError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	_ = json.NewEncoder(w).Encode(models.ValidationErrorResponse{Success: false, Errors: errs})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	b, err := json.Marshal(v)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(b)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(models.ErrorResponse{Success: false, Error: err.Error(), Code: code})
}

type knownError struct {
	err    error
	status int
	code   string
}

// knownErrors are answered with their own message; anything else is a 500
var knownErrors = []knownError{
	{moderation.ErrNotAuthorized, http.StatusForbidden, "FORBIDDEN"},
	{moderation.ErrSenderNotActive, http.StatusForbidden, "ACCOUNT_NOT_ACTIVE"},
	{moderation.ErrFlagNotFound, http.StatusNotFound, "FLAG_NOT_FOUND"},
	{moderation.ErrImageNotFound, http.StatusNotFound, "IMAGE_NOT_FOUND"},
	{moderation.ErrUserNotFound, http.StatusNotFound, "USER_NOT_FOUND"},
	{moderation.ErrInvalidID, http.StatusBadRequest, "INVALID_ID"},
	{moderation.ErrInvalidFilter, http.StatusBadRequest, "INVALID_FILTER"},
	{moderation.ErrImageRejected, http.StatusUnprocessableEntity, "IMAGE_REJECTED"},
	{moderation.ErrImageTooLarge, http.StatusRequestEntityTooLarge, "IMAGE_TOO_LARGE"},
	{moderation.ErrUnsupportedImageType, http.StatusUnsupportedMediaType, "UNSUPPORTED_IMAGE_TYPE"},
	{moderation.ErrEmptyImage, http.StatusBadRequest, "EMPTY_IMAGE"},
	{databases.ErrBlobStoreNotConfigured, http.StatusServiceUnavailable, "UPLOADS_UNAVAILABLE"},
}

// writeServiceError maps moderation errors onto responses. message is only
// used for unexpected errors.
func writeServiceError(message string, w http.ResponseWriter, err error) {
	for _, k := range knownErrors {
		if errors.Is(err, k.err) {
			writeError(w, k.status, k.code, k.err)
			return
		}
	}
	config.ErrorStatus(message, http.StatusInternalServerError, w, err)
}

var errUnauthorized = errors.New("unauthorized")

// identity returns the caller or writes a 401
func identity(w http.ResponseWriter, r *http.Request) (models.Identity, bool) {
	id, ok := api.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", errUnauthorized)
	}
	return id, ok
}
