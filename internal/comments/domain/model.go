package domain

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

var ErrSignInRequired = errors.New("sign in required")

// Comment is one entry of a project's comment thread.
type Comment struct {
	ID        string `json:"id" validate:"required"`
	Text      string `json:"text" validate:"required"`
	UserID    string `json:"userId" validate:"required"`
	UserName  string `json:"userName"`
	UserPhoto string `json:"userPhoto"`
	Timestamp int64  `json:"timestamp" validate:"gte=0"`
}

// Author is who a new comment is attributed to.
type Author struct {
	UID         string
	DisplayName string
	PhotoURL    string
}

// SortNewestFirst orders by Timestamp descending, keeping input order among equal timestamps.
func SortNewestFirst(comments []Comment) {
	sort.SliceStable(comments, func(i, j int) bool {
		return comments[i].Timestamp > comments[j].Timestamp
	})
}

// RelativeTime renders the age of a millisecond timestamp as "Just now", "Nm", "Nh" or "Nd".
func RelativeTime(timestampMillis int64, now time.Time) string {
	age := now.Sub(time.UnixMilli(timestampMillis))
	switch {
	case age < time.Minute:
		return "Just now"
	case age < time.Hour:
		return fmt.Sprintf("%dm", int(age/time.Minute))
	case age < 24*time.Hour:
		return fmt.Sprintf("%dh", int(age/time.Hour))
	}
	return fmt.Sprintf("%dd", int(age/(24*time.Hour)))
}
