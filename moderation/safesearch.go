package moderation

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"

	"google.golang.org/api/option"
	vision "google.golang.org/api/vision/v1"

	"github.com/linesmerrill/rider-safety-api/models"
)

// likelihoodScores maps Vision SafeSearch likelihoods onto probabilities so the
// same thresholds apply to both providers
var likelihoodScores = map[string]float64{
	"VERY_UNLIKELY": 0.05,
	"UNLIKELY":      0.2,
	"POSSIBLE":      0.5,
	"LIKELY":        0.8,
	"VERY_LIKELY":   0.95,
}

// VisionScorer scores images with Google Vision SAFE_SEARCH_DETECTION.
// Vision has no weapon category, so Weapon is always zero.
type VisionScorer struct {
	svc *vision.Service
}

// NewVisionScorer builds a scorer authenticated with an API key. Extra client
// options (endpoint, http client) are appended after the key.
func NewVisionScorer(ctx context.Context, apiKey string, opts ...option.ClientOption) (*VisionScorer, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrScorerNotConfigured
	}
	svc, err := vision.NewService(ctx, append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)...)
	if err != nil {
		return nil, err
	}
	return &VisionScorer{svc: svc}, nil
}

// Score sends the image inline
func (v *VisionScorer) Score(ctx context.Context, image []byte, _ string) (models.ImageScores, error) {
	if v == nil || v.svc == nil {
		return models.ImageScores{}, ErrScorerNotConfigured
	}

	req := &vision.AnnotateImageRequest{
		Image:    &vision.Image{Content: base64.StdEncoding.EncodeToString(image)},
		Features: []*vision.Feature{{Type: "SAFE_SEARCH_DETECTION"}},
	}
	resp, err := v.svc.Images.Annotate(&vision.BatchAnnotateImagesRequest{
		Requests: []*vision.AnnotateImageRequest{req},
	}).Context(ctx).Do()
	if err != nil {
		return models.ImageScores{}, err
	}
	if len(resp.Responses) == 0 {
		return models.ImageScores{}, errors.New("vision returned no responses")
	}
	r := resp.Responses[0]
	if r.Error != nil {
		return models.ImageScores{}, errors.New("vision: " + r.Error.Message)
	}
	ss := r.SafeSearchAnnotation
	if ss == nil {
		return models.ImageScores{}, errors.New("vision returned no safe search annotation")
	}

	return models.ImageScores{
		NudityRaw:     likelihood(ss.Adult),
		NudityPartial: likelihood(ss.Racy),
		Gore:          likelihood(ss.Violence),
	}, nil
}

// likelihood treats UNKNOWN and unexpected values as zero
func likelihood(l string) float64 {
	return likelihoodScores[l]
}
