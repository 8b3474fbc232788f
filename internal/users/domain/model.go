package domain

import "errors"

var ErrUserNotFound = errors.New("user not found")

// UserProfile is the per-user record stored under users/{uid}.
type UserProfile struct {
	UID         string `json:"uid" firestore:"uid" validate:"required"`
	DisplayName string `json:"displayName" firestore:"displayName"`
	Email       string `json:"email" firestore:"email" validate:"omitempty,email"`
	PhotoURL    string `json:"photoURL" firestore:"photoURL" validate:"omitempty,url"`
}

// ProfileUpdate carries the fields a profile edit may change.
type ProfileUpdate struct {
	DisplayName string
	PhotoURL    string
}
