package badger

import (
	"context"
	"fmt"
	"sort"
	"time"

	badgerdb "github.com/dgraph-io/badger/v4"
	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/chartnote/chartnote/internal/common"
	"github.com/chartnote/chartnote/internal/interfaces"
	"github.com/chartnote/chartnote/internal/models"
)

// SheetStorage implements the SheetStorage interface for Badger
type SheetStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewSheetStorage creates a new SheetStorage instance
func NewSheetStorage(db *BadgerDB, logger arbor.ILogger) interfaces.SheetStorage {
	return &SheetStorage{
		db:     db,
		logger: logger,
	}
}

func (s *SheetStorage) CreateSheet(ctx context.Context, sheet *models.Sheet) error {
	if sheet.ID == "" {
		sheet.ID = common.NewSheetID()
	}
	if sheet.ClientID == "" {
		return fmt.Errorf("sheet client ID is required")
	}

	now := time.Now()
	sheet.CreatedAt = now
	sheet.UpdatedAt = now
	sheet.ProcessedRows = normalizeRowSet(sheet.ProcessedRows)

	if err := s.db.Store().Insert(sheet.ID, sheet); err != nil {
		return fmt.Errorf("failed to save sheet: %w", err)
	}

	s.logger.Debug().Str("sheet_id", sheet.ID).Int("rows", len(sheet.RowsData)).Msg("Sheet created")
	return nil
}

func (s *SheetStorage) GetSheet(ctx context.Context, clientID, sheetID string) (*models.Sheet, error) {
	var sheet models.Sheet
	if err := s.db.Store().Get(sheetID, &sheet); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, common.NewNotFoundError("sheet", sheetID)
		}
		return nil, fmt.Errorf("failed to get sheet: %w", err)
	}

	// Another client's sheet looks exactly like a missing one
	if sheet.ClientID != clientID {
		return nil, common.NewNotFoundError("sheet", sheetID)
	}

	return &sheet, nil
}

func (s *SheetStorage) ListSheets(ctx context.Context, clientID, dateFilter string) ([]*models.Sheet, error) {
	query := badgerhold.Where("ClientID").Eq(clientID)
	if dateFilter != "" {
		query = query.And("UploadDate").Eq(dateFilter)
	}

	var sheets []models.Sheet
	if err := s.db.Store().Find(&sheets, query); err != nil {
		return nil, fmt.Errorf("failed to list sheets: %w", err)
	}

	// Newest created first
	sort.Slice(sheets, func(i, j int) bool {
		return sheets[i].CreatedAt.After(sheets[j].CreatedAt)
	})

	result := make([]*models.Sheet, len(sheets))
	for i := range sheets {
		result[i] = &sheets[i]
	}
	return result, nil
}

func (s *SheetStorage) ReplaceProcessedRows(ctx context.Context, clientID, sheetID string, rows []int) (*models.Sheet, error) {
	sheet, err := s.GetSheet(ctx, clientID, sheetID)
	if err != nil {
		return nil, err
	}

	normalized := normalizeRowSet(rows)
	for _, idx := range normalized {
		if idx < 0 || idx >= len(sheet.RowsData) {
			return nil, common.NewValidationError("row index %d out of range for sheet with %d rows", idx, len(sheet.RowsData))
		}
	}

	sheet.ProcessedRows = normalized
	sheet.UpdatedAt = time.Now()

	if err := s.db.Store().Update(sheet.ID, sheet); err != nil {
		return nil, fmt.Errorf("failed to update processed rows: %w", err)
	}

	return sheet, nil
}

func (s *SheetStorage) DeleteSheet(ctx context.Context, clientID, sheetID string) error {
	if _, err := s.GetSheet(ctx, clientID, sheetID); err != nil {
		return err
	}

	// Sheet and its rationales go together
	err := s.db.Store().Badger().Update(func(txn *badgerdb.Txn) error {
		store := s.db.Store()
		if err := store.TxDelete(txn, sheetID, &models.Sheet{}); err != nil && err != badgerhold.ErrNotFound {
			return err
		}
		return store.TxDeleteMatching(txn, &models.RowRationale{}, badgerhold.Where("SheetID").Eq(sheetID))
	})
	if err != nil {
		return fmt.Errorf("failed to delete sheet: %w", err)
	}

	s.logger.Debug().Str("sheet_id", sheetID).Msg("Sheet deleted")
	return nil
}

// normalizeRowSet sorts ascending and drops duplicates
func normalizeRowSet(rows []int) []int {
	seen := make(map[int]bool, len(rows))
	result := make([]int, 0, len(rows))
	for _, r := range rows {
		if !seen[r] {
			seen[r] = true
			result = append(result, r)
		}
	}
	sort.Ints(result)
	return result
}
