package moderation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/linesmerrill/rider-safety-api/models"
)

const sightengineSuccess = "success"

// SightengineScorer calls the Sightengine check endpoint with the nudity, gore
// and weapon models
type SightengineScorer struct {
	APIUser    string
	APISecret  string
	Endpoint   string
	HTTPClient *http.Client
}

// NewSightengineScorer ...
func NewSightengineScorer(apiUser, apiSecret, endpoint string, timeout time.Duration) *SightengineScorer {
	return &SightengineScorer{
		APIUser:    apiUser,
		APISecret:  apiSecret,
		Endpoint:   endpoint,
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

type sightengineResponse struct {
	Status string `json:"status"`
	Error  *struct {
		Message string `json:"message"`
	} `json:"error"`
	Nudity struct {
		Raw     float64 `json:"raw"`
		Partial float64 `json:"partial"`
	} `json:"nudity"`
	Gore struct {
		Prob float64 `json:"prob"`
	} `json:"gore"`
	Weapon struct {
		Prob float64 `json:"prob"`
	} `json:"weapon"`
}

// Score uploads the image as multipart form data
func (s *SightengineScorer) Score(ctx context.Context, image []byte, contentType string) (models.ImageScores, error) {
	if strings.TrimSpace(s.APIUser) == "" || strings.TrimSpace(s.APISecret) == "" {
		return models.ImageScores{}, ErrScorerNotConfigured
	}

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	_ = mw.WriteField("models", "nudity,gore,weapon")
	_ = mw.WriteField("api_user", s.APIUser)
	_ = mw.WriteField("api_secret", s.APISecret)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="media"; filename="upload"`)
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	if err != nil {
		return models.ImageScores{}, err
	}
	if _, err := part.Write(image); err != nil {
		return models.ImageScores{}, err
	}
	if err := mw.Close(); err != nil {
		return models.ImageScores{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.Endpoint, body)
	if err != nil {
		return models.ImageScores{}, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	client := s.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		return models.ImageScores{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return models.ImageScores{}, fmt.Errorf("sightengine http %d", resp.StatusCode)
	}

	var out sightengineResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return models.ImageScores{}, fmt.Errorf("decode sightengine response: %w", err)
	}
	if out.Status != sightengineSuccess {
		msg := ""
		if out.Error != nil {
			msg = out.Error.Message
		}
		return models.ImageScores{}, fmt.Errorf("sightengine status %q: %s", out.Status, msg)
	}

	return models.ImageScores{
		NudityRaw:     out.Nudity.Raw,
		NudityPartial: out.Nudity.Partial,
		Gore:          out.Gore.Prob,
		Weapon:        out.Weapon.Prob,
	}, nil
}
