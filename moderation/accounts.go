package moderation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/linesmerrill/rider-safety-api/databases"
	"github.com/linesmerrill/rider-safety-api/models"
)

// Accounts moves user accounts between moderation states
type Accounts struct {
	Users databases.UserDatabase
	Audit *AuditLog
	now   func() time.Time
}

// NewAccounts ...
func NewAccounts(users databases.UserDatabase, audit *AuditLog) *Accounts {
	return &Accounts{Users: users, Audit: audit, now: time.Now}
}

// Get loads a user by id
func (a *Accounts) Get(ctx context.Context, userID string) (*models.User, error) {
	user, err := a.Users.FindOne(ctx, bson.M{"_id": userID})
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

// RequireActive returns ErrSenderNotActive unless the user may send content
func (a *Accounts) RequireActive(ctx context.Context, userID string) error {
	user, err := a.Get(ctx, userID)
	if err != nil {
		return err
	}
	if !user.Details.IsActive() {
		return ErrSenderNotActive
	}
	return nil
}

// AutoBan bans userID only if the account is currently active, using the
// same rule as UserDetails.IsActive (missing or empty status counts). The status
// check and the write are one conditional update, so concurrent scans or a
// concurrent manual ban cannot produce a second ban. Reports whether this call
// performed the transition.
func (a *Accounts) AutoBan(ctx context.Context, userID, reason string, flagID *primitive.ObjectID) (bool, error) {
	filter := bson.M{
		"_id":                userID,
		"user.accountStatus": bson.M{"$in": bson.A{models.AccountActive, "", nil}},
	}
	res, err := a.Users.UpdateOne(ctx, filter, a.banUpdate(reason, models.SystemActor))
	if err != nil {
		return false, err
	}
	if res == nil || res.ModifiedCount == 0 {
		zap.S().Infow("autoban skipped, account not active", "userId", userID)
		return false, nil
	}

	zap.S().Infow("account auto-banned", "userId", userID, "reason", reason)
	a.Audit.Record(ctx, models.ModerationAction{
		Action:       models.AuditAutoban,
		ActorID:      models.SystemActor,
		TargetUserID: userID,
		FlagID:       flagID,
		Reason:       reason,
	})
	return true, nil
}

// Ban bans userID regardless of its current status. Banning an already
// banned account rewrites the reason and is not an error.
func (a *Accounts) Ban(ctx context.Context, userID, reason, actorID string, flagID *primitive.ObjectID) error {
	res, err := a.Users.UpdateOne(ctx, bson.M{"_id": userID}, a.banUpdate(reason, actorID))
	if err != nil {
		return err
	}
	if res == nil || res.MatchedCount == 0 {
		return ErrUserNotFound
	}

	a.Audit.Record(ctx, models.ModerationAction{
		Action:       models.AuditBan,
		ActorID:      actorID,
		TargetUserID: userID,
		FlagID:       flagID,
		Reason:       reason,
	})
	return nil
}

func (a *Accounts) banUpdate(reason, actor string) bson.M {
	return bson.M{"$set": bson.M{
		"user.accountStatus": models.AccountBanned,
		"user.statusReason":  reason,
		"user.bannedAt":      primitive.NewDateTimeFromTime(a.now()),
		"user.bannedBy":      actor,
	}}
}
