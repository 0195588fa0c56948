package moderation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/linesmerrill/rider-safety-api/databases"
	"github.com/linesmerrill/rider-safety-api/models"
)

// flagSort puts the riskiest flags first and the newest first within a score
var flagSort = bson.D{
	{Key: "riskScore", Value: -1},
	{Key: "createdAt", Value: -1},
}

// Queue is the moderator view of content flags. Every method rejects callers
// that are not moderators with ErrNotAuthorized.
type Queue struct {
	Flags    databases.ContentFlagDatabase
	Accounts *Accounts
	Audit    *AuditLog
	now      func() time.Time
}

// NewQueue ...
func NewQueue(flags databases.ContentFlagDatabase, accounts *Accounts, audit *AuditLog) *Queue {
	return &Queue{Flags: flags, Accounts: accounts, Audit: audit, now: time.Now}
}

func authorize(actor models.Identity) error {
	if !actor.IsModerator() {
		return ErrNotAuthorized
	}
	return nil
}

func parseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return primitive.NilObjectID, ErrInvalidID
	}
	return oid, nil
}

// List returns at most databases.MaxListLimit flags with the given status, or
// of any status for "all". An empty filter means pending.
func (q *Queue) List(ctx context.Context, actor models.Identity, filter string) ([]models.ContentFlag, error) {
	if err := authorize(actor); err != nil {
		return nil, err
	}
	if filter == "" {
		filter = string(models.FlagPending)
	}
	if !models.ValidFlagFilter(filter) {
		return nil, ErrInvalidFilter
	}

	query := bson.M{}
	if filter != models.FlagFilterAll {
		query["status"] = filter
	}
	flags, err := q.Flags.Find(ctx, query, databases.SortedOpts(flagSort, databases.MaxListLimit))
	if err != nil {
		return nil, fmt.Errorf("list content flags: %w", err)
	}
	return flags, nil
}

// PendingCount counts pending flags without loading them
func (q *Queue) PendingCount(ctx context.Context, actor models.Identity) (int64, error) {
	if err := authorize(actor); err != nil {
		return 0, err
	}
	n, err := q.Flags.CountDocuments(ctx, bson.M{"status": models.FlagPending})
	if err != nil {
		return 0, fmt.Errorf("count pending flags: %w", err)
	}
	return n, nil
}

// Dismiss closes a flag as not actionable. Dismissing a dismissed flag does
// nothing.
func (q *Queue) Dismiss(ctx context.Context, actor models.Identity, flagID string) error {
	if err := authorize(actor); err != nil {
		return err
	}
	id, err := parseID(flagID)
	if err != nil {
		return err
	}
	return q.setStatus(ctx, actor, id, models.FlagDismissed, models.AuditDismiss)
}

// MarkReviewed closes a flag as handled. Reviewing a reviewed flag does
// nothing.
func (q *Queue) MarkReviewed(ctx context.Context, actor models.Identity, flagID string) error {
	if err := authorize(actor); err != nil {
		return err
	}
	id, err := parseID(flagID)
	if err != nil {
		return err
	}
	return q.setStatus(ctx, actor, id, models.FlagReviewed, models.AuditReview)
}

// ResolveWithBan bans userID and then marks the flag reviewed. The ban goes
// first: a banned sender with an open flag is safe to leave behind, a closed
// flag with an unbanned sender is not. When the ban fails the flag is left
// untouched.
func (q *Queue) ResolveWithBan(ctx context.Context, actor models.Identity, flagID, userID, reason string) error {
	if err := authorize(actor); err != nil {
		return err
	}
	id, err := parseID(flagID)
	if err != nil {
		return err
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return ErrInvalidID
	}

	flag, err := q.Flags.FindOne(ctx, bson.M{"_id": id})
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrFlagNotFound
	}
	if err != nil {
		return fmt.Errorf("find content flag: %w", err)
	}

	if strings.TrimSpace(reason) == "" {
		reason = banReason(flag)
	}
	if err := q.Accounts.Ban(ctx, userID, reason, actor.UserID, &id); err != nil {
		return fmt.Errorf("ban user: %w", err)
	}
	return q.setStatus(ctx, actor, id, models.FlagReviewed, models.AuditReview)
}

func banReason(flag *models.ContentFlag) string {
	if flag.Reason != nil && *flag.Reason != "" {
		return "Banned by moderator after review: " + *flag.Reason
	}
	return "Banned by moderator after review of flagged message"
}

// setStatus moves a flag to status unless it is already there. A flag that
// already has the status is a no-op, not an error.
func (q *Queue) setStatus(ctx context.Context, actor models.Identity, id primitive.ObjectID, status models.FlagStatus, action models.ModerationActionType) error {
	filter := bson.M{"_id": id, "status": bson.M{"$ne": status}}
	update := bson.M{"$set": bson.M{
		"status":     status,
		"reviewedBy": actor.UserID,
		"reviewedAt": primitive.NewDateTimeFromTime(q.now()),
	}}
	res, err := q.Flags.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("update content flag: %w", err)
	}
	if res != nil && res.MatchedCount > 0 {
		q.Audit.Record(ctx, models.ModerationAction{
			Action:  action,
			ActorID: actor.UserID,
			FlagID:  &id,
		})
		return nil
	}

	// nothing matched: either the flag is already in status or it is gone
	if _, err := q.Flags.FindOne(ctx, bson.M{"_id": id}); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrFlagNotFound
		}
		return fmt.Errorf("find content flag: %w", err)
	}
	return nil
}
