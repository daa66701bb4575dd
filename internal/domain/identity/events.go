package identity

import "time"

const (
	EventLoggedIn       = "UserLoggedIn"
	EventLoggedOut      = "UserLoggedOut"
	EventProfileUpdated = "UserProfileUpdated"
)

type UserLoggedIn struct {
	SessionID string    `json:"session_id"`
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	LoggedAt  time.Time `json:"logged_at"`
}

type UserLoggedOut struct {
	SessionID string    `json:"session_id"`
	UserID    string    `json:"user_id"`
	LoggedAt  time.Time `json:"logged_at"`
}

type UserProfileUpdated struct {
	SessionID string    `json:"session_id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	UpdatedAt time.Time `json:"updated_at"`
}
