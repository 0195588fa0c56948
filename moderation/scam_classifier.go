package moderation

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/linesmerrill/rider-safety-api/config"
	"github.com/linesmerrill/rider-safety-api/models"
)

const scamMaxTokens = 150

const scamSystemPrompt = `You screen direct messages on a social network for motorcycle riders and enthusiasts.
Rate how likely the message is a scam attempt on a scale from 0.0 to 1.0.

Signals of a scam:
- romance-scam tactics: quick declarations of love, moving the chat off the platform, sob stories
- requests for money, wire transfers, gift cards, cryptocurrency or payment app transfers
- investment, trading or "guaranteed return" pitches
- phishing links, fake login pages, requests for codes or passwords
- fabricated emergencies: stranded abroad, hospital bills, customs fees, stuck shipments
- offers that are too good to be true: free bikes, prizes, unrealistic deals
- excessive flattery aimed at building trust fast

Ordinary motorcycle conversation (bikes, gear, routes, rides, maintenance, meetups, trading parts at normal prices) scores 0.0.

Respond with a JSON object only: {"score": <number between 0 and 1>, "reason": "<short reason, at most 100 characters>"}`

// TextClassifier scores message text for scam risk. Implementations never
// fail: any problem scores zero.
type TextClassifier interface {
	Classify(ctx context.Context, text string) models.ScamScore
}

// ScamClassifier scores text with a chat completion model
type ScamClassifier struct {
	client  *openai.Client
	model   string
	timeout time.Duration
}

// NewScamClassifier returns a classifier for the configured model. Without an
// API key the classifier scores everything zero.
func NewScamClassifier(conf *config.Config) *ScamClassifier {
	if conf.OpenAIAPIKey == "" {
		zap.S().Warn("OPENAI_API_KEY not set, scam scanning disabled")
		return &ScamClassifier{timeout: conf.ClassifierTimeout}
	}
	cc := openai.DefaultConfig(conf.OpenAIAPIKey)
	if conf.OpenAIBaseURL != "" {
		cc.BaseURL = conf.OpenAIBaseURL
	}
	cc.HTTPClient = &http.Client{Timeout: conf.ClassifierTimeout}

	return &ScamClassifier{
		client:  openai.NewClientWithConfig(cc),
		model:   conf.ScamModel,
		timeout: conf.ClassifierTimeout,
	}
}

// Configured reports whether calls reach the model
func (c *ScamClassifier) Configured() bool {
	return c != nil && c.client != nil
}

// Classify scores one message
func (c *ScamClassifier) Classify(ctx context.Context, text string) (score models.ScamScore) {
	if !c.Configured() || strings.TrimSpace(text) == "" {
		return models.ScamScore{}
	}
	defer func() {
		if r := recover(); r != nil {
			zap.S().Errorw("scam classifier panicked", "panic", r)
			score = models.ScamScore{}
		}
	}()

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: scamSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
		// a literal 0 is dropped from the request by omitempty
		Temperature: math.SmallestNonzeroFloat32,
		MaxTokens:   scamMaxTokens,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		zap.S().Warnw("scam classifier request failed", "error", err)
		return models.ScamScore{}
	}
	if len(resp.Choices) == 0 {
		zap.S().Warn("scam classifier returned no choices")
		return models.ScamScore{}
	}
	return ParseScamResponse(resp.Choices[0].Message.Content)
}

type scamPayload struct {
	Score  *float64 `json:"score"`
	Reason *string  `json:"reason"`
}

// ParseScamResponse reads the model output. Anything that is not a JSON
// object with a numeric score in [0,1] scores zero.
func ParseScamResponse(raw string) models.ScamScore {
	var p scamPayload
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &p); err != nil {
		return models.ScamScore{}
	}
	if p.Score == nil || math.IsNaN(*p.Score) || *p.Score < 0 || *p.Score > 1 {
		return models.ScamScore{}
	}
	return models.ScamScore{Score: *p.Score, Reason: clampReason(p.Reason)}
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if i := strings.Index(s, "\n"); i >= 0 {
		s = s[i+1:]
	} else {
		s = strings.TrimPrefix(s, "```")
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "```"))
}

func clampReason(r *string) *string {
	if r == nil {
		return nil
	}
	s := strings.TrimSpace(*r)
	if s == "" {
		return nil
	}
	if runes := []rune(s); len(runes) > models.ReasonMaxLength {
		s = string(runes[:models.ReasonMaxLength])
	}
	return &s
}
