package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// AccountStatus is the moderation state of a user account
type AccountStatus string

// Account states
const (
	AccountActive    AccountStatus = "active"
	AccountSuspended AccountStatus = "suspended"
	AccountBanned    AccountStatus = "banned"
)

// User holds the structure for the user collection in mongo
type User struct {
	ID      string      `json:"_id" bson:"_id"`
	Details UserDetails `json:"user" bson:"user"`
}

// UserDetails holds the structure for the inner user structure as defined in the user collection in mongo
type UserDetails struct {
	Username      string              `json:"username" bson:"username"`
	Email         string              `json:"email" bson:"email"`
	AccountStatus AccountStatus       `json:"accountStatus" bson:"accountStatus"`
	StatusReason  string              `json:"statusReason,omitempty" bson:"statusReason,omitempty"`
	BannedAt      *primitive.DateTime `json:"bannedAt,omitempty" bson:"bannedAt,omitempty"`
	BannedBy      string              `json:"bannedBy,omitempty" bson:"bannedBy,omitempty"`
	City          string              `json:"city" bson:"city"`
	State         string              `json:"state" bson:"state"`
	// SignupCountry is resolved from the signup IP, not entered by the user.
	SignupCountry string             `json:"signupCountry" bson:"signupCountry"`
	Roles         []string           `json:"roles,omitempty" bson:"roles,omitempty"`
	CreatedAt     primitive.DateTime `json:"createdAt" bson:"createdAt"`
}

// IsActive reports whether the account may send content. A missing status
// counts as active.
func (d UserDetails) IsActive() bool {
	return d.AccountStatus == "" || d.AccountStatus == AccountActive
}
