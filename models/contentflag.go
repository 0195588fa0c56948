package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// FlagStatus is the review state of a content flag
type FlagStatus string

// Flag states
const (
	FlagPending   FlagStatus = "pending"
	FlagReviewed  FlagStatus = "reviewed"
	FlagDismissed FlagStatus = "dismissed"
)

// FlagFilter "all" lists every status
const FlagFilterAll = "all"

// ReasonMaxLength caps the classifier reason stored on a flag
const ReasonMaxLength = 100

// ContentFlag is a piece of user text queued for moderator review
type ContentFlag struct {
	ID         primitive.ObjectID  `json:"_id" bson:"_id,omitempty"`
	MessageID  *primitive.ObjectID `json:"messageId" bson:"messageId"`
	SenderID   string              `json:"senderId" bson:"senderId"`
	Content    string              `json:"content" bson:"content"`
	RiskScore  float64             `json:"riskScore" bson:"riskScore"`
	Reason     *string             `json:"reason" bson:"reason"`
	Status     FlagStatus          `json:"status" bson:"status"`
	CreatedAt  primitive.DateTime  `json:"createdAt" bson:"createdAt"`
	ReviewedBy string              `json:"reviewedBy,omitempty" bson:"reviewedBy,omitempty"`
	ReviewedAt *primitive.DateTime `json:"reviewedAt,omitempty" bson:"reviewedAt,omitempty"`
}

// ValidFlagFilter reports whether f names a status or "all"
func ValidFlagFilter(f string) bool {
	switch f {
	case FlagFilterAll, string(FlagPending), string(FlagReviewed), string(FlagDismissed):
		return true
	}
	return false
}
