package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Verdict is the outcome of image moderation
type Verdict string

// Moderation verdicts
const (
	VerdictApproved Verdict = "approved"
	VerdictPending  Verdict = "pending"
	VerdictRejected Verdict = "rejected"
)

// ImageStatus is the stored moderation state of an image. Rejected images are
// never stored.
type ImageStatus string

// Image states
const (
	ImageApproved ImageStatus = "approved"
	ImagePending  ImageStatus = "pending"
)

// ImageScores are provider-neutral probabilities in [0,1]
type ImageScores struct {
	NudityRaw     float64 `json:"nudityRaw"`
	NudityPartial float64 `json:"nudityPartial"`
	Gore          float64 `json:"gore"`
	Weapon        float64 `json:"weapon"`
}

// Image is an uploaded photo that passed the moderation gate
type Image struct {
	ID               primitive.ObjectID  `json:"_id" bson:"_id,omitempty"`
	UploaderID       string              `json:"uploaderId" bson:"uploaderId"`
	URL              string              `json:"url" bson:"url"`
	PublicID         string              `json:"publicId" bson:"publicId"`
	ContentType      string              `json:"contentType" bson:"contentType"`
	Size             int64               `json:"size" bson:"size"`
	ModerationStatus ImageStatus         `json:"moderationStatus" bson:"moderationStatus"`
	CreatedAt        primitive.DateTime  `json:"createdAt" bson:"createdAt"`
	ReviewedBy       string              `json:"reviewedBy,omitempty" bson:"reviewedBy,omitempty"`
	ReviewedAt       *primitive.DateTime `json:"reviewedAt,omitempty" bson:"reviewedAt,omitempty"`
}
