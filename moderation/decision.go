package moderation

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/linesmerrill/rider-safety-api/databases"
	"github.com/linesmerrill/rider-safety-api/models"
)

// Message thresholds. A score at or above FlagThreshold queues a flag; at or
// above AutobanThreshold it also bans an active sender.
const (
	FlagThreshold    = 0.55
	AutobanThreshold = 0.85
)

// Image thresholds. Every comparison is strictly greater-than.
const (
	RejectNudityRaw = 0.5
	RejectGore      = 0.75
	ReviewNudityRaw = 0.3
	ReviewGore      = 0.4
	ReviewWeapon    = 0.75
)

// Thresholds groups the tunable cut-offs of the decision engine
type Thresholds struct {
	Flag            float64
	Autoban         float64
	RejectNudityRaw float64
	RejectGore      float64
	ReviewNudityRaw float64
	ReviewGore      float64
	ReviewWeapon    float64
}

// DefaultThresholds returns the production thresholds
func DefaultThresholds() Thresholds {
	return Thresholds{
		Flag:            FlagThreshold,
		Autoban:         AutobanThreshold,
		RejectNudityRaw: RejectNudityRaw,
		RejectGore:      RejectGore,
		ReviewNudityRaw: ReviewNudityRaw,
		ReviewGore:      ReviewGore,
		ReviewWeapon:    ReviewWeapon,
	}
}

// DecideImage maps provider scores to a verdict
func (t Thresholds) DecideImage(s models.ImageScores) models.Verdict {
	switch {
	case s.NudityRaw > t.RejectNudityRaw || s.Gore > t.RejectGore:
		return models.VerdictRejected
	case s.NudityRaw > t.ReviewNudityRaw || s.Gore > t.ReviewGore || s.Weapon > t.ReviewWeapon:
		return models.VerdictPending
	default:
		return models.VerdictApproved
	}
}

// DecideMessage maps a scam score to the action taken on the message
func (t Thresholds) DecideMessage(score float64) models.MessageAction {
	switch {
	case score >= t.Autoban:
		return models.ActionFlagAutoban
	case score >= t.Flag:
		return models.ActionFlag
	default:
		return models.ActionIgnore
	}
}

// AutobanReason is the status reason written on an automatic ban
func AutobanReason(score float64, reason *string) string {
	pct := int(math.Round(score * 100))
	text := "no reason given"
	if reason != nil && strings.TrimSpace(*reason) != "" {
		text = *reason
	}
	return fmt.Sprintf("Auto-banned by scam detection (%d%% confidence): %s", pct, text)
}

// Engine applies scan results to the flag queue and account state
type Engine struct {
	Thresholds Thresholds
	Flags      databases.ContentFlagDatabase
	Accounts   *Accounts
	now        func() time.Time
}

// NewEngine builds an engine with the default thresholds
func NewEngine(flags databases.ContentFlagDatabase, accounts *Accounts) *Engine {
	return &Engine{
		Thresholds: DefaultThresholds(),
		Flags:      flags,
		Accounts:   accounts,
		now:        time.Now,
	}
}

// ScanResult reports what ApplyScan did
type ScanResult struct {
	Action      models.MessageAction
	FlagCreated bool
	Banned      bool
}

// ApplyScan flags and possibly bans the sender of an already persisted
// message. The flag is written before the ban is attempted. A flag that
// already exists for the message is left alone and the ban precondition makes
// a repeated autoban a no-op.
func (e *Engine) ApplyScan(ctx context.Context, msg models.Message, score models.ScamScore) (ScanResult, error) {
	res := ScanResult{Action: e.Thresholds.DecideMessage(score.Score)}
	if res.Action == models.ActionIgnore {
		return res, nil
	}

	msgID := msg.ID
	flag := models.ContentFlag{
		ID:        primitive.NewObjectID(),
		MessageID: &msgID,
		SenderID:  msg.SenderID,
		Content:   msg.Body,
		RiskScore: score.Score,
		Reason:    score.Reason,
		Status:    models.FlagPending,
		CreatedAt: primitive.NewDateTimeFromTime(e.now()),
	}
	created, err := e.Flags.InsertOne(ctx, flag)
	if err != nil {
		return res, fmt.Errorf("insert content flag: %w", err)
	}
	res.FlagCreated = created
	if !created {
		zap.S().Infow("content flag already exists for message", "messageId", msg.ID.Hex())
	}

	if res.Action != models.ActionFlagAutoban {
		return res, nil
	}

	var flagRef *primitive.ObjectID
	if created {
		flagRef = &flag.ID
	}
	banned, err := e.Accounts.AutoBan(ctx, msg.SenderID, AutobanReason(score.Score, score.Reason), flagRef)
	if err != nil {
		return res, fmt.Errorf("autoban sender: %w", err)
	}
	res.Banned = banned
	return res, nil
}
