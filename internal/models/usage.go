package models

import "time"

// UsageRecord is one append-only usage ledger row
type UsageRecord struct {
	ID         string    `json:"id"`
	ClientID   string    `json:"client_id"`
	Action     string    `json:"action"` // free-form tag, e.g. "image_upload", "excel_upload"
	TokensUsed int       `json:"tokens_used"`
	Endpoint   string    `json:"endpoint,omitempty"`
	Model      string    `json:"model,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// UsageItem is a single entry in a batch usage report
type UsageItem struct {
	Action     string `json:"action" validate:"required"`
	TokensUsed int    `json:"tokens_used" validate:"gte=0"`
}
