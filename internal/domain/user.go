package domain

import (
	"time"
)

// UserSource records where a directory entry came from.
type UserSource string

const (
	UserSourceSlack   UserSource = "slack"
	UserSourceWebchat UserSource = "webchat"
)

// User is a directory entry used to greet people by name.
type User struct {
	UserID    string     `json:"user_id"`
	Username  string     `json:"username"`
	Source    UserSource `json:"source"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Stale reports whether the entry is older than maxAge.
// A zero maxAge means entries never go stale.
func (u *User) Stale(maxAge time.Duration, now time.Time) bool {
	if maxAge <= 0 {
		return false
	}
	return now.Sub(u.UpdatedAt) > maxAge
}
