package interfaces

import (
	"context"

	"github.com/chartnote/chartnote/internal/models"
)

// SheetStorage manages sheet persistence. Every read is scoped to the
// owning client; a sheet owned by another client behaves as if absent.
type SheetStorage interface {
	// CreateSheet stores a new sheet, assigning timestamps
	CreateSheet(ctx context.Context, sheet *models.Sheet) error

	// GetSheet returns the sheet if it exists and belongs to clientID
	GetSheet(ctx context.Context, clientID, sheetID string) (*models.Sheet, error)

	// ListSheets returns the client's sheets newest-created first,
	// optionally filtered to an exact upload date (YYYY-MM-DD)
	ListSheets(ctx context.Context, clientID, dateFilter string) ([]*models.Sheet, error)

	// ReplaceProcessedRows replaces the processed-rows marker set wholesale
	ReplaceProcessedRows(ctx context.Context, clientID, sheetID string, rows []int) (*models.Sheet, error)

	// DeleteSheet removes the sheet and all of its rationales
	DeleteSheet(ctx context.Context, clientID, sheetID string) error
}

// RationaleStorage manages per-row commentary. Callers resolve sheet
// ownership before reaching these methods.
type RationaleStorage interface {
	// Upsert creates or overwrites the rationale for (SheetID, RowIndex).
	// Creation also marks the row processed on the owning sheet; both
	// writes happen in one transaction. Overwrite preserves the existing
	// id and created_at.
	Upsert(ctx context.Context, rationale *models.RowRationale) (*models.RowRationale, error)

	// GetByRow returns the rationale for one row of a sheet
	GetByRow(ctx context.Context, sheetID string, rowIndex int) (*models.RowRationale, error)

	// GetByID returns a rationale by its id
	GetByID(ctx context.Context, id string) (*models.RowRationale, error)

	// ListForSheet returns all rationales of a sheet ordered by row index
	ListForSheet(ctx context.Context, sheetID string) ([]*models.RowRationale, error)

	// Update applies a partial update; nil fields are left untouched
	Update(ctx context.Context, id string, update *models.RationaleUpdate) (*models.RowRationale, error)

	// Delete removes the rationale and clears the row's processed marker
	Delete(ctx context.Context, id string) error
}

// UsageStorage manages the append-only usage ledger
type UsageStorage interface {
	// AppendUsage stores a batch of records atomically
	AppendUsage(ctx context.Context, records []*models.UsageRecord) error

	// ListUsage returns a client's records newest first
	ListUsage(ctx context.Context, clientID string) ([]*models.UsageRecord, error)
}

// ClientStorage manages registered clients and their bearer tokens
type ClientStorage interface {
	CreateClient(ctx context.Context, client *models.Client) error
	GetClientByUsername(ctx context.Context, username string) (*models.Client, error)
	GetClientByID(ctx context.Context, id string) (*models.Client, error)
	SaveToken(ctx context.Context, token *models.APIToken) error
	GetToken(ctx context.Context, token string) (*models.APIToken, error)
}

// StorageManager provides access to all storage implementations
type StorageManager interface {
	SheetStorage() SheetStorage
	RationaleStorage() RationaleStorage
	UsageStorage() UsageStorage
	ClientStorage() ClientStorage

	// DB returns the underlying database connection
	DB() interface{}

	// Close closes the database connection
	Close() error
}
