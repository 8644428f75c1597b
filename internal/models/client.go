package models

import "time"

// Client is a registered API client. Handlers never serialize this type
// directly; responses carry only the id and username.
type Client struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
}

// APIToken maps an opaque bearer token to a client
type APIToken struct {
	Token     string    `json:"token"`
	ClientID  string    `json:"client_id"`
	CreatedAt time.Time `json:"created_at"`
}
