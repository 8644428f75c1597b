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

// setupTestDB creates a test database and returns cleanup function
func setupTestDB(t *testing.T) (*BadgerDB, func()) {
	config := &common.BadgerConfig{
		Path: t.TempDir() + "/badger",
	}

	logger := arbor.NewLogger()
	db, err := NewBadgerDB(logger, config)
	require.NoError(t, err)

	cleanup := func() {
		db.Close()
	}

	return db, cleanup
}

func testRows(n int) []models.Row {
	rows := make([]models.Row, 0, n)
	for i := 0; i < n; i++ {
		row := models.NewRow()
		row.Set("Symbol", "AAPL")
		row.Set("Qty", int64(10+i))
		rows = append(rows, row)
	}
	return rows
}

func TestSheetStorage_CreateAndGet(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	storage := NewSheetStorage(db, arbor.NewLogger())
	ctx := context.Background()

	sheet := &models.Sheet{
		ClientID:   "cli_1",
		FileName:   "trades.xlsx",
		UploadDate: "2026-08-31",
		RowsData:   testRows(3),
	}
	require.NoError(t, storage.CreateSheet(ctx, sheet))
	require.NotEmpty(t, sheet.ID)
	assert.False(t, sheet.CreatedAt.IsZero())

	loaded, err := storage.GetSheet(ctx, "cli_1", sheet.ID)
	require.NoError(t, err)
	assert.Equal(t, "trades.xlsx", loaded.FileName)
	assert.Equal(t, 3, loaded.RowCount())

	// Row column order survives storage
	assert.Equal(t, []string{"Symbol", "Qty"}, loaded.RowsData[0].Columns)
	qty, ok := loaded.RowsData[1].Get("Qty")
	require.True(t, ok)
	assert.EqualValues(t, 11, qty)
}

func TestSheetStorage_GetSheet_OtherClientLooksMissing(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	storage := NewSheetStorage(db, arbor.NewLogger())
	ctx := context.Background()

	sheet := &models.Sheet{ClientID: "cli_owner", FileName: "t.csv", UploadDate: "2026-08-31", RowsData: testRows(1)}
	require.NoError(t, storage.CreateSheet(ctx, sheet))

	_, err := storage.GetSheet(ctx, "cli_other", sheet.ID)
	var nfe *common.NotFoundError
	require.ErrorAs(t, err, &nfe)

	_, err = storage.GetSheet(ctx, "cli_owner", "sheet_missing")
	require.ErrorAs(t, err, &nfe)
}

func TestSheetStorage_ListSheets(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	storage := NewSheetStorage(db, arbor.NewLogger())
	ctx := context.Background()

	for _, upload := range []struct {
		client string
		date   string
	}{
		{"cli_1", "2026-08-30"},
		{"cli_1", "2026-08-31"},
		{"cli_2", "2026-08-31"},
	} {
		sheet := &models.Sheet{ClientID: upload.client, FileName: "t.csv", UploadDate: upload.date, RowsData: testRows(1)}
		require.NoError(t, storage.CreateSheet(ctx, sheet))
	}

	all, err := storage.ListSheets(ctx, "cli_1", "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	filtered, err := storage.ListSheets(ctx, "cli_1", "2026-08-31")
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "2026-08-31", filtered[0].UploadDate)

	none, err := storage.ListSheets(ctx, "cli_3", "")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSheetStorage_ReplaceProcessedRows(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	storage := NewSheetStorage(db, arbor.NewLogger())
	ctx := context.Background()

	sheet := &models.Sheet{ClientID: "cli_1", FileName: "t.csv", UploadDate: "2026-08-31", RowsData: testRows(4)}
	require.NoError(t, storage.CreateSheet(ctx, sheet))

	// Duplicates collapse, order normalizes
	updated, err := storage.ReplaceProcessedRows(ctx, "cli_1", sheet.ID, []int{3, 1, 1, 0})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 3}, updated.ProcessedRows)

	// Out of range rejected
	_, err = storage.ReplaceProcessedRows(ctx, "cli_1", sheet.ID, []int{4})
	var ve *common.ValidationError
	require.ErrorAs(t, err, &ve)

	_, err = storage.ReplaceProcessedRows(ctx, "cli_1", sheet.ID, []int{-1})
	require.ErrorAs(t, err, &ve)

	// Empty list clears all markers
	updated, err = storage.ReplaceProcessedRows(ctx, "cli_1", sheet.ID, []int{})
	require.NoError(t, err)
	assert.Empty(t, updated.ProcessedRows)
}

func TestSheetStorage_DeleteCascadesRationales(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	logger := arbor.NewLogger()
	sheetStorage := NewSheetStorage(db, logger)
	rationaleStorage := NewRationaleStorage(db, logger)
	ctx := context.Background()

	sheet := &models.Sheet{ClientID: "cli_1", FileName: "t.csv", UploadDate: "2026-08-31", RowsData: testRows(2)}
	require.NoError(t, sheetStorage.CreateSheet(ctx, sheet))

	_, err := rationaleStorage.Upsert(ctx, &models.RowRationale{SheetID: sheet.ID, RowIndex: 0, RationaleText: "text"})
	require.NoError(t, err)
	_, err = rationaleStorage.Upsert(ctx, &models.RowRationale{SheetID: sheet.ID, RowIndex: 1, RationaleText: "text"})
	require.NoError(t, err)

	require.NoError(t, sheetStorage.DeleteSheet(ctx, "cli_1", sheet.ID))

	var nfe *common.NotFoundError
	_, err = sheetStorage.GetSheet(ctx, "cli_1", sheet.ID)
	require.ErrorAs(t, err, &nfe)

	rationales, err := rationaleStorage.ListForSheet(ctx, sheet.ID)
	require.NoError(t, err)
	assert.Empty(t, rationales)
}

func TestSheetStorage_DeleteRequiresOwnership(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	storage := NewSheetStorage(db, arbor.NewLogger())
	ctx := context.Background()

	sheet := &models.Sheet{ClientID: "cli_owner", FileName: "t.csv", UploadDate: "2026-08-31", RowsData: testRows(1)}
	require.NoError(t, storage.CreateSheet(ctx, sheet))

	var nfe *common.NotFoundError
	err := storage.DeleteSheet(ctx, "cli_other", sheet.ID)
	require.ErrorAs(t, err, &nfe)

	// Still there for the owner
	_, err = storage.GetSheet(ctx, "cli_owner", sheet.ID)
	require.NoError(t, err)
}
