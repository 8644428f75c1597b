package common

import (
	"github.com/google/uuid"
)

// NewSheetID generates a unique sheet ID with the "sheet_" prefix
// Format: sheet_<uuid>
func NewSheetID() string {
	return "sheet_" + uuid.New().String()
}

// NewRationaleID generates a unique rationale ID with the "rat_" prefix
func NewRationaleID() string {
	return "rat_" + uuid.New().String()
}

// NewUsageID generates a unique usage record ID with the "use_" prefix
func NewUsageID() string {
	return "use_" + uuid.New().String()
}

// NewClientID generates a unique client ID with the "cli_" prefix
func NewClientID() string {
	return "cli_" + uuid.New().String()
}

// NewToken generates an opaque bearer token
func NewToken() string {
	return uuid.New().String() + uuid.New().String()
}
