package handlers

import (
	"context"
	"net/http"
)

type contextKey string

const clientIDKey contextKey = "client_id"

// WithClientID returns a context carrying the authenticated client ID
func WithClientID(ctx context.Context, clientID string) context.Context {
	return context.WithValue(ctx, clientIDKey, clientID)
}

// ClientIDFrom extracts the authenticated client ID from the request
func ClientIDFrom(r *http.Request) (string, bool) {
	clientID, ok := r.Context().Value(clientIDKey).(string)
	return clientID, ok && clientID != ""
}

// RequireClientID extracts the client ID or writes a 401 response
func RequireClientID(w http.ResponseWriter, r *http.Request) (string, bool) {
	clientID, ok := ClientIDFrom(r)
	if !ok {
		WriteError(w, http.StatusUnauthorized, "authentication required")
		return "", false
	}
	return clientID, true
}
