package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Message is a direct message between two riders
type Message struct {
	ID          primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	SenderID    string             `json:"senderId" bson:"senderId"`
	RecipientID string             `json:"recipientId" bson:"recipientId"`
	Body        string             `json:"body" bson:"body"`
	CreatedAt   primitive.DateTime `json:"createdAt" bson:"createdAt"`
}

// SendMessageRequest is the payload for sending a direct message
type SendMessageRequest struct {
	RecipientID string `json:"recipientId" validate:"required,max=64"`
	Body        string `json:"body" validate:"required,min=1,max=5000"`
}
