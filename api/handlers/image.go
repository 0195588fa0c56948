package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/linesmerrill/rider-safety-api/api"
	"github.com/linesmerrill/rider-safety-api/config"
	"github.com/linesmerrill/rider-safety-api/models"
	"github.com/linesmerrill/rider-safety-api/moderation"
)

const (
	// multipart overhead allowed on top of the image itself
	uploadSlack      = 1 << 20
	defaultMaxUpload = 10 << 20
)

// Image exported for testing purposes
type Image struct {
	Images *moderation.Images
}

// UploadImageHandler screens the multipart "image" part and stores it unless
// it is rejected
func (i Image) UploadImageHandler(w http.ResponseWriter, r *http.Request) {
	uploader, ok := identity(w, r)
	if !ok {
		return
	}

	limit := i.Images.MaxBytes
	if limit <= 0 {
		limit = defaultMaxUpload
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit+uploadSlack)
	file, _, err := r.FormFile("image")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeServiceError("", w, moderation.ErrImageTooLarge)
			return
		}
		config.ErrorStatus("missing image file", http.StatusBadRequest, w, err)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, limit+1))
	if err != nil {
		config.ErrorStatus("failed to read image", http.StatusBadRequest, w, err)
		return
	}

	img, err := i.Images.Upload(r.Context(), uploader.UserID, data)
	if err != nil {
		writeServiceError("failed to upload image", w, err)
		return
	}
	writeJSON(w, http.StatusCreated, img)
}

// ImagesHandler lists images for the admin browser
func (i Image) ImagesHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := identity(w, r)
	if !ok {
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	images, err := i.Images.List(ctx, actor, r.URL.Query().Get("status"))
	if err != nil {
		writeServiceError("failed to list images", w, err)
		return
	}
	if images == nil {
		images = []models.Image{}
	}
	writeJSON(w, http.StatusOK, images)
}

// ApproveImageHandler marks a pending image approved
func (i Image) ApproveImageHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := identity(w, r)
	if !ok {
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if err := i.Images.Approve(ctx, actor, mux.Vars(r)["imageId"]); err != nil {
		writeServiceError("failed to approve image", w, err)
		return
	}
	writeJSON(w, http.StatusOK, models.SuccessResponse{Success: true})
}

// DeleteImageHandler removes the stored blob and its row
func (i Image) DeleteImageHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := identity(w, r)
	if !ok {
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if err := i.Images.Remove(ctx, actor, mux.Vars(r)["imageId"]); err != nil {
		writeServiceError("failed to delete image", w, err)
		return
	}
	writeJSON(w, http.StatusOK, models.SuccessResponse{Success: true})
}
