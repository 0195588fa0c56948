package moderation

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/linesmerrill/rider-safety-api/config"
	"github.com/linesmerrill/rider-safety-api/models"
)

// ErrScorerNotConfigured is returned by scorers that have no credentials
var ErrScorerNotConfigured = errors.New("image scorer not configured")

// ImageScorer asks a moderation provider for raw probabilities
type ImageScorer interface {
	Score(ctx context.Context, image []byte, contentType string) (models.ImageScores, error)
}

// ImageClassifier turns provider scores into a verdict. Every failure of the
// provider, including missing credentials, yields VerdictPending.
type ImageClassifier struct {
	Scorer     ImageScorer
	Thresholds Thresholds
	Timeout    time.Duration
}

// NewImageClassifier picks the configured provider
func NewImageClassifier(ctx context.Context, conf *config.Config) *ImageClassifier {
	c := &ImageClassifier{Thresholds: DefaultThresholds(), Timeout: conf.ClassifierTimeout}

	switch conf.ImageProvider {
	case config.ProviderVision:
		scorer, err := NewVisionScorer(ctx, conf.VisionAPIKey)
		if err != nil {
			zap.S().Warnw("vision scorer unavailable, uploads will be held for review", "error", err)
			return c
		}
		c.Scorer = scorer
	default:
		c.Scorer = NewSightengineScorer(conf.SightengineAPIUser, conf.SightengineAPISecret, conf.SightengineEndpoint, conf.ClassifierTimeout)
	}
	return c
}

// Classify scores one image. It blocks until the provider answers or the
// timeout passes.
func (c *ImageClassifier) Classify(ctx context.Context, image []byte, contentType string) (verdict models.Verdict) {
	if c == nil || c.Scorer == nil {
		return models.VerdictPending
	}
	defer func() {
		if r := recover(); r != nil {
			zap.S().Errorw("image scorer panicked", "panic", r)
			verdict = models.VerdictPending
		}
	}()

	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	scores, err := c.Scorer.Score(ctx, image, contentType)
	if err != nil {
		if errors.Is(err, ErrScorerNotConfigured) {
			zap.S().Warn("image moderation not configured, holding upload for review")
		} else {
			zap.S().Warnw("image moderation failed, holding upload for review", "error", err)
		}
		return models.VerdictPending
	}
	return c.Thresholds.DecideImage(scores)
}
