package models

import "time"

// User is the identity issued by the auth gateway
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// Session is an authenticated session. AccessToken is sent as a bearer token.
type Session struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
	User        User      `json:"user"`
}

// Credentials is the login / registration form
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
