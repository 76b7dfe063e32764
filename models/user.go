package models

import "time"

type User struct {
	UserID        string    `json:"userid" bson:"userid"`
	Email         string    `json:"email" bson:"email"`
	DisplayName   string    `json:"displayName" bson:"displayName"`
	Password      string    `json:"password,omitempty" bson:"password"`
	GoogleID      string    `json:"-" bson:"googleId,omitempty"`
	Role          []string  `json:"role" bson:"role"`
	RefreshToken  string    `json:"-" bson:"refresh_token,omitempty"`
	RefreshExpiry time.Time `json:"-" bson:"refresh_expiry,omitempty"`
	CreatedAt     time.Time `json:"createdAt" bson:"createdAt"`
	LastLogin     time.Time `json:"-" bson:"last_login,omitempty"`
}

// Profile is the session-state view of a user returned by /api/auth/me.
type Profile struct {
	UserID      string `json:"uid"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
}

func (u *User) Profile() Profile {
	return Profile{UserID: u.UserID, Email: u.Email, DisplayName: u.DisplayName}
}
