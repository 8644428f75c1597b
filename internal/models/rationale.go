package models

import "time"

// RowRationale is the stored commentary for one row of a sheet.
// At most one rationale exists per (SheetID, RowIndex) pair.
type RowRationale struct {
	ID                string          `json:"id"`
	SheetID           string          `json:"sheet_id"`
	RowIndex          int             `json:"row_index"`
	RationaleText     string          `json:"rationale_text"`
	RationaleResult   *AnalysisResult `json:"rationale_result,omitempty"`
	ImagePreview      string          `json:"image_preview,omitempty"` // base64 chart snapshot
	EditableRationale string          `json:"editable_rationale"`
	GeneratedDate     time.Time       `json:"generated_date"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// RationaleUpdate carries a partial update. Nil pointers mean the field was
// not provided; non-nil pointers to empty values clear the field.
type RationaleUpdate struct {
	RationaleText     *string         `json:"rationale_text"`
	RationaleResult   *AnalysisResult `json:"rationale_result"`
	ImagePreview      *string         `json:"image_preview"`
	EditableRationale *string         `json:"editable_rationale"`
}
