package moderation

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/linesmerrill/rider-safety-api/databases"
	"github.com/linesmerrill/rider-safety-api/models"
)

// AuditLog writes moderation actions. Writes are best effort and never fail
// the action being recorded. A nil AuditLog records nothing.
type AuditLog struct {
	DB  databases.ModerationLogDatabase
	now func() time.Time
}

// NewAuditLog ...
func NewAuditLog(db databases.ModerationLogDatabase) *AuditLog {
	return &AuditLog{DB: db, now: time.Now}
}

// Record stores one action
func (l *AuditLog) Record(ctx context.Context, action models.ModerationAction) {
	if l == nil || l.DB == nil {
		return
	}
	if action.ID.IsZero() {
		action.ID = primitive.NewObjectID()
	}
	action.CreatedAt = primitive.NewDateTimeFromTime(l.now())
	if err := l.DB.InsertOne(ctx, action); err != nil {
		zap.S().Warnw("failed to record moderation action",
			"action", action.Action,
			"actorId", action.ActorID,
			"error", err)
	}
}
