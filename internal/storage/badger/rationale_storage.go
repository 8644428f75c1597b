package badger

import (
	"context"
	"errors"
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

// RationaleStorage implements the RationaleStorage interface for Badger.
// The upsert and delete paths touch both the rationale and its sheet's
// processed-rows marker, so they run inside a single badger transaction.
// Badger's SSI conflict detection is the backstop against two concurrent
// creates for the same (sheet, row); a conflicting transaction is retried
// once and then fails.
type RationaleStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewRationaleStorage creates a new RationaleStorage instance
func NewRationaleStorage(db *BadgerDB, logger arbor.ILogger) interfaces.RationaleStorage {
	return &RationaleStorage{
		db:     db,
		logger: logger,
	}
}

func (s *RationaleStorage) Upsert(ctx context.Context, rationale *models.RowRationale) (*models.RowRationale, error) {
	if rationale.SheetID == "" {
		return nil, common.NewValidationError("sheet_id is required")
	}
	if rationale.RowIndex < 0 {
		return nil, common.NewValidationError("row_index must not be negative")
	}

	var saved models.RowRationale

	op := func(txn *badgerdb.Txn) error {
		store := s.db.Store()

		var sheet models.Sheet
		if err := store.TxGet(txn, rationale.SheetID, &sheet); err != nil {
			if err == badgerhold.ErrNotFound {
				return common.NewNotFoundError("sheet", rationale.SheetID)
			}
			return err
		}

		if rationale.RowIndex >= len(sheet.RowsData) {
			return common.NewValidationError("row index %d out of range for sheet with %d rows", rationale.RowIndex, len(sheet.RowsData))
		}

		var existing []models.RowRationale
		err := store.TxFind(txn, &existing,
			badgerhold.Where("SheetID").Eq(rationale.SheetID).And("RowIndex").Eq(rationale.RowIndex))
		if err != nil {
			return err
		}

		now := time.Now()

		if len(existing) > 0 {
			// Overwrite in place: id and created_at survive
			current := existing[0]
			current.RationaleText = rationale.RationaleText
			current.RationaleResult = rationale.RationaleResult
			current.ImagePreview = rationale.ImagePreview
			current.EditableRationale = rationale.EditableRationale
			current.GeneratedDate = now
			current.UpdatedAt = now

			if err := store.TxUpdate(txn, current.ID, &current); err != nil {
				return err
			}
			saved = current
			return nil
		}

		rationale.ID = common.NewRationaleID()
		rationale.GeneratedDate = now
		rationale.CreatedAt = now
		rationale.UpdatedAt = now

		if err := store.TxInsert(txn, rationale.ID, rationale); err != nil {
			return err
		}

		if !containsRow(sheet.ProcessedRows, rationale.RowIndex) {
			sheet.ProcessedRows = append(sheet.ProcessedRows, rationale.RowIndex)
			sort.Ints(sheet.ProcessedRows)
			sheet.UpdatedAt = now
			if err := store.TxUpdate(txn, sheet.ID, &sheet); err != nil {
				return err
			}
		}

		saved = *rationale
		return nil
	}

	err := s.db.Store().Badger().Update(op)
	if errors.Is(err, badgerdb.ErrConflict) {
		err = s.db.Store().Badger().Update(op)
	}
	if err != nil {
		var ve *common.ValidationError
		var nfe *common.NotFoundError
		if errors.As(err, &ve) || errors.As(err, &nfe) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to save rationale: %w", err)
	}

	s.logger.Debug().
		Str("rationale_id", saved.ID).
		Str("sheet_id", saved.SheetID).
		Int("row_index", saved.RowIndex).
		Msg("Rationale saved")

	return &saved, nil
}

func (s *RationaleStorage) GetByRow(ctx context.Context, sheetID string, rowIndex int) (*models.RowRationale, error) {
	var rationales []models.RowRationale
	err := s.db.Store().Find(&rationales,
		badgerhold.Where("SheetID").Eq(sheetID).And("RowIndex").Eq(rowIndex))
	if err != nil {
		return nil, fmt.Errorf("failed to find rationale: %w", err)
	}
	if len(rationales) == 0 {
		return nil, common.NewNotFoundError("rationale", fmt.Sprintf("%s/%d", sheetID, rowIndex))
	}
	return &rationales[0], nil
}

func (s *RationaleStorage) GetByID(ctx context.Context, id string) (*models.RowRationale, error) {
	var rationale models.RowRationale
	if err := s.db.Store().Get(id, &rationale); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, common.NewNotFoundError("rationale", id)
		}
		return nil, fmt.Errorf("failed to get rationale: %w", err)
	}
	return &rationale, nil
}

func (s *RationaleStorage) ListForSheet(ctx context.Context, sheetID string) ([]*models.RowRationale, error) {
	var rationales []models.RowRationale
	if err := s.db.Store().Find(&rationales, badgerhold.Where("SheetID").Eq(sheetID)); err != nil {
		return nil, fmt.Errorf("failed to list rationales: %w", err)
	}

	sort.Slice(rationales, func(i, j int) bool {
		return rationales[i].RowIndex < rationales[j].RowIndex
	})

	result := make([]*models.RowRationale, len(rationales))
	for i := range rationales {
		result[i] = &rationales[i]
	}
	return result, nil
}

func (s *RationaleStorage) Update(ctx context.Context, id string, update *models.RationaleUpdate) (*models.RowRationale, error) {
	rationale, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if update.RationaleText != nil {
		rationale.RationaleText = *update.RationaleText
	}
	if update.RationaleResult != nil {
		rationale.RationaleResult = update.RationaleResult
	}
	if update.ImagePreview != nil {
		rationale.ImagePreview = *update.ImagePreview
	}
	if update.EditableRationale != nil {
		rationale.EditableRationale = *update.EditableRationale
	}
	rationale.UpdatedAt = time.Now()

	if err := s.db.Store().Update(id, rationale); err != nil {
		return nil, fmt.Errorf("failed to update rationale: %w", err)
	}

	return rationale, nil
}

func (s *RationaleStorage) Delete(ctx context.Context, id string) error {
	op := func(txn *badgerdb.Txn) error {
		store := s.db.Store()

		var rationale models.RowRationale
		if err := store.TxGet(txn, id, &rationale); err != nil {
			if err == badgerhold.ErrNotFound {
				return common.NewNotFoundError("rationale", id)
			}
			return err
		}

		if err := store.TxDelete(txn, id, &models.RowRationale{}); err != nil {
			return err
		}

		// Clear the processed marker on the owning sheet
		var sheet models.Sheet
		if err := store.TxGet(txn, rationale.SheetID, &sheet); err != nil {
			if err == badgerhold.ErrNotFound {
				return nil
			}
			return err
		}

		if containsRow(sheet.ProcessedRows, rationale.RowIndex) {
			filtered := sheet.ProcessedRows[:0]
			for _, r := range sheet.ProcessedRows {
				if r != rationale.RowIndex {
					filtered = append(filtered, r)
				}
			}
			sheet.ProcessedRows = filtered
			sheet.UpdatedAt = time.Now()
			if err := store.TxUpdate(txn, sheet.ID, &sheet); err != nil {
				return err
			}
		}

		return nil
	}

	err := s.db.Store().Badger().Update(op)
	if errors.Is(err, badgerdb.ErrConflict) {
		err = s.db.Store().Badger().Update(op)
	}
	if err != nil {
		var nfe *common.NotFoundError
		if errors.As(err, &nfe) {
			return err
		}
		return fmt.Errorf("failed to delete rationale: %w", err)
	}

	s.logger.Debug().Str("rationale_id", id).Msg("Rationale deleted")
	return nil
}

func containsRow(rows []int, idx int) bool {
	for _, r := range rows {
		if r == idx {
			return true
		}
	}
	return false
}
