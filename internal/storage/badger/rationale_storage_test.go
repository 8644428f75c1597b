package badger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/chartnote/chartnote/internal/common"
	"github.com/chartnote/chartnote/internal/models"
)

func setupRationaleTest(t *testing.T) (*BadgerDB, *models.Sheet, func()) {
	db, cleanup := setupTestDB(t)

	sheet := &models.Sheet{ClientID: "cli_1", FileName: "t.csv", UploadDate: "2026-08-31", RowsData: testRows(3)}
	require.NoError(t, NewSheetStorage(db, arbor.NewLogger()).CreateSheet(context.Background(), sheet))

	return db, sheet, cleanup
}

func TestRationaleStorage_UpsertCreatesAndMarksRow(t *testing.T) {
	db, sheet, cleanup := setupRationaleTest(t)
	defer cleanup()

	logger := arbor.NewLogger()
	storage := NewRationaleStorage(db, logger)
	sheetStorage := NewSheetStorage(db, logger)
	ctx := context.Background()

	saved, err := storage.Upsert(ctx, &models.RowRationale{
		SheetID:       sheet.ID,
		RowIndex:      1,
		RationaleText: "Trend supports the long entry",
	})
	require.NoError(t, err)
	require.NotEmpty(t, saved.ID)
	assert.False(t, saved.CreatedAt.IsZero())
	assert.False(t, saved.GeneratedDate.IsZero())

	loaded, err := sheetStorage.GetSheet(ctx, "cli_1", sheet.ID)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, loaded.ProcessedRows)
}

func TestRationaleStorage_UpsertOverwritesInPlace(t *testing.T) {
	db, sheet, cleanup := setupRationaleTest(t)
	defer cleanup()

	logger := arbor.NewLogger()
	storage := NewRationaleStorage(db, logger)
	sheetStorage := NewSheetStorage(db, logger)
	ctx := context.Background()

	first, err := storage.Upsert(ctx, &models.RowRationale{SheetID: sheet.ID, RowIndex: 0, RationaleText: "first"})
	require.NoError(t, err)

	second, err := storage.Upsert(ctx, &models.RowRationale{SheetID: sheet.ID, RowIndex: 0, RationaleText: "second"})
	require.NoError(t, err)

	// Same record: id and created_at survive the overwrite
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.CreatedAt.Unix(), second.CreatedAt.Unix())
	assert.Equal(t, "second", second.RationaleText)

	// No duplicate marker
	loaded, err := sheetStorage.GetSheet(ctx, "cli_1", sheet.ID)
	require.NoError(t, err)
	assert.Equal(t, []int{0}, loaded.ProcessedRows)

	all, err := storage.ListForSheet(ctx, sheet.ID)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestRationaleStorage_UpsertValidation(t *testing.T) {
	db, sheet, cleanup := setupRationaleTest(t)
	defer cleanup()

	storage := NewRationaleStorage(db, arbor.NewLogger())
	ctx := context.Background()

	var ve *common.ValidationError
	_, err := storage.Upsert(ctx, &models.RowRationale{RowIndex: 0, RationaleText: "x"})
	require.ErrorAs(t, err, &ve)

	_, err = storage.Upsert(ctx, &models.RowRationale{SheetID: sheet.ID, RowIndex: -1, RationaleText: "x"})
	require.ErrorAs(t, err, &ve)

	// Sheet has 3 rows, index 3 is past the end
	_, err = storage.Upsert(ctx, &models.RowRationale{SheetID: sheet.ID, RowIndex: 3, RationaleText: "x"})
	require.ErrorAs(t, err, &ve)

	var nfe *common.NotFoundError
	_, err = storage.Upsert(ctx, &models.RowRationale{SheetID: "sheet_missing", RowIndex: 0, RationaleText: "x"})
	require.ErrorAs(t, err, &nfe)
}

func TestRationaleStorage_GetByRowAndID(t *testing.T) {
	db, sheet, cleanup := setupRationaleTest(t)
	defer cleanup()

	storage := NewRationaleStorage(db, arbor.NewLogger())
	ctx := context.Background()

	saved, err := storage.Upsert(ctx, &models.RowRationale{SheetID: sheet.ID, RowIndex: 2, RationaleText: "text"})
	require.NoError(t, err)

	byRow, err := storage.GetByRow(ctx, sheet.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, saved.ID, byRow.ID)

	byID, err := storage.GetByID(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, byID.RowIndex)

	var nfe *common.NotFoundError
	_, err = storage.GetByRow(ctx, sheet.ID, 0)
	require.ErrorAs(t, err, &nfe)
	_, err = storage.GetByID(ctx, "rat_missing")
	require.ErrorAs(t, err, &nfe)
}

func TestRationaleStorage_ListSortedByRowIndex(t *testing.T) {
	db, sheet, cleanup := setupRationaleTest(t)
	defer cleanup()

	storage := NewRationaleStorage(db, arbor.NewLogger())
	ctx := context.Background()

	for _, idx := range []int{2, 0, 1} {
		_, err := storage.Upsert(ctx, &models.RowRationale{SheetID: sheet.ID, RowIndex: idx, RationaleText: "text"})
		require.NoError(t, err)
	}

	all, err := storage.ListForSheet(ctx, sheet.ID)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, 0, all[0].RowIndex)
	assert.Equal(t, 1, all[1].RowIndex)
	assert.Equal(t, 2, all[2].RowIndex)
}

func TestRationaleStorage_UpdateAppliesOnlyProvidedFields(t *testing.T) {
	db, sheet, cleanup := setupRationaleTest(t)
	defer cleanup()

	storage := NewRationaleStorage(db, arbor.NewLogger())
	ctx := context.Background()

	saved, err := storage.Upsert(ctx, &models.RowRationale{
		SheetID:           sheet.ID,
		RowIndex:          0,
		RationaleText:     "generated",
		EditableRationale: "generated",
	})
	require.NoError(t, err)

	edited := "trader edited this"
	updated, err := storage.Update(ctx, saved.ID, &models.RationaleUpdate{EditableRationale: &edited})
	require.NoError(t, err)

	assert.Equal(t, "trader edited this", updated.EditableRationale)
	assert.Equal(t, "generated", updated.RationaleText)

	var nfe *common.NotFoundError
	_, err = storage.Update(ctx, "rat_missing", &models.RationaleUpdate{EditableRationale: &edited})
	require.ErrorAs(t, err, &nfe)
}

func TestRationaleStorage_DeleteClearsProcessedMarker(t *testing.T) {
	db, sheet, cleanup := setupRationaleTest(t)
	defer cleanup()

	logger := arbor.NewLogger()
	storage := NewRationaleStorage(db, logger)
	sheetStorage := NewSheetStorage(db, logger)
	ctx := context.Background()

	kept, err := storage.Upsert(ctx, &models.RowRationale{SheetID: sheet.ID, RowIndex: 0, RationaleText: "keep"})
	require.NoError(t, err)
	removed, err := storage.Upsert(ctx, &models.RowRationale{SheetID: sheet.ID, RowIndex: 1, RationaleText: "remove"})
	require.NoError(t, err)

	require.NoError(t, storage.Delete(ctx, removed.ID))

	loaded, err := sheetStorage.GetSheet(ctx, "cli_1", sheet.ID)
	require.NoError(t, err)
	assert.Equal(t, []int{0}, loaded.ProcessedRows)

	var nfe *common.NotFoundError
	_, err = storage.GetByID(ctx, removed.ID)
	require.ErrorAs(t, err, &nfe)
	_, err = storage.GetByID(ctx, kept.ID)
	require.NoError(t, err)

	err = storage.Delete(ctx, removed.ID)
	require.ErrorAs(t, err, &nfe)
}

func TestRationaleStorage_MarkerLifecycle(t *testing.T) {
	db, sheet, cleanup := setupRationaleTest(t)
	defer cleanup()

	logger := arbor.NewLogger()
	storage := NewRationaleStorage(db, logger)
	sheetStorage := NewSheetStorage(db, logger)
	ctx := context.Background()

	processedRows := func() []int {
		loaded, err := sheetStorage.GetSheet(ctx, "cli_1", sheet.ID)
		require.NoError(t, err)
		return loaded.ProcessedRows
	}

	assert.Empty(t, processedRows())

	saved, err := storage.Upsert(ctx, &models.RowRationale{SheetID: sheet.ID, RowIndex: 1, RationaleText: "x"})
	require.NoError(t, err)
	assert.Equal(t, []int{1}, processedRows())

	require.NoError(t, storage.Delete(ctx, saved.ID))
	assert.Empty(t, processedRows())
}
