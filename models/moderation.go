package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// ScamScore is the text classifier output. Score is in [0,1]; Reason is nil
// when the classifier gave none.
type ScamScore struct {
	Score  float64 `json:"score"`
	Reason *string `json:"reason"`
}

// MessageAction is what the decision engine does with a scanned message
type MessageAction string

// Message actions
const (
	ActionIgnore      MessageAction = "ignore"
	ActionFlag        MessageAction = "flag"
	ActionFlagAutoban MessageAction = "flag_autoban"
)

// ModerationActionType names an entry in the moderation audit log
type ModerationActionType string

// Audit log actions
const (
	AuditAutoban      ModerationActionType = "autoban"
	AuditBan          ModerationActionType = "ban"
	AuditDismiss      ModerationActionType = "dismiss"
	AuditReview       ModerationActionType = "review"
	AuditApproveImage ModerationActionType = "approve_image"
	AuditRemoveImage  ModerationActionType = "remove_image"
)

// SystemActor is the actor id recorded for automatic actions
const SystemActor = "system"

// ModerationAction is an audit record of a moderator or system action
type ModerationAction struct {
	ID           primitive.ObjectID   `json:"_id" bson:"_id,omitempty"`
	Action       ModerationActionType `json:"action" bson:"action"`
	ActorID      string               `json:"actorId" bson:"actorId"`
	TargetUserID string               `json:"targetUserId,omitempty" bson:"targetUserId,omitempty"`
	FlagID       *primitive.ObjectID  `json:"flagId,omitempty" bson:"flagId,omitempty"`
	ImageID      *primitive.ObjectID  `json:"imageId,omitempty" bson:"imageId,omitempty"`
	Reason       string               `json:"reason,omitempty" bson:"reason,omitempty"`
	CreatedAt    primitive.DateTime   `json:"createdAt" bson:"createdAt"`
}

// Identity is the authenticated caller
type Identity struct {
	UserID string   `json:"userId"`
	Roles  []string `json:"roles"`
}

// Moderator roles
const (
	RoleModerator = "moderator"
	RoleAdmin     = "admin"
)

// IsModerator reports whether the identity may act on the moderation queues
func (i Identity) IsModerator() bool {
	for _, r := range i.Roles {
		if r == RoleModerator || r == RoleAdmin {
			return true
		}
	}
	return false
}

// BanRequest is the payload of a moderator ban-and-resolve
type BanRequest struct {
	UserID string `json:"userId" validate:"required"`
	Reason string `json:"reason" validate:"max=500"`
}

// RiskFlagsResponse lists the signup risk indicators of a user
type RiskFlagsResponse struct {
	UserID string   `json:"userId"`
	Flags  []string `json:"flags"`
}

// PendingCountResponse is the moderator badge count
type PendingCountResponse struct {
	Count int64 `json:"count"`
}
