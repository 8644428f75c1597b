package sheets

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/chartnote/chartnote/internal/common"
	"github.com/chartnote/chartnote/internal/models"
)

// ParseSheetFile reads an .xlsx or .csv spreadsheet into rows. The first
// row supplies column names; empty cells are omitted from their row so a
// row only carries the columns that actually hold a value.
func ParseSheetFile(fileName string, file io.Reader) ([]models.Row, error) {
	var records [][]string
	var err error

	switch {
	case strings.HasSuffix(strings.ToLower(fileName), ".xlsx"):
		records, err = readExcel(file)
	case strings.HasSuffix(strings.ToLower(fileName), ".csv"):
		records, err = readCSV(file)
	default:
		return nil, common.NewValidationError("only Excel (.xlsx) or CSV allowed")
	}
	if err != nil {
		return nil, err
	}

	if len(records) < 2 {
		return nil, common.NewValidationError("uploaded sheet is empty")
	}

	header := records[0]
	rows := make([]models.Row, 0, len(records)-1)

	for _, record := range records[1:] {
		row := models.NewRow()
		for i, column := range header {
			if column == "" || i >= len(record) {
				continue
			}
			cell := strings.TrimSpace(record[i])
			if cell == "" {
				continue
			}
			row.Set(column, parseCellValue(cell))
		}
		rows = append(rows, row)
	}

	return rows, nil
}

func readExcel(file io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(file)
	if err != nil {
		return nil, common.NewValidationError("failed to read Excel file: %v", err)
	}
	defer f.Close()

	sheetNames := f.GetSheetList()
	if len(sheetNames) == 0 {
		return nil, common.NewValidationError("uploaded sheet is empty")
	}

	rows, err := f.GetRows(sheetNames[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read worksheet %s: %w", sheetNames[0], err)
	}

	return rows, nil
}

func readCSV(file io.Reader) ([][]string, error) {
	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1 // Ragged rows are fine, short rows just omit columns

	records, err := reader.ReadAll()
	if err != nil {
		return nil, common.NewValidationError("failed to read CSV file: %v", err)
	}

	return records, nil
}

// parseCellValue coerces a cell to int64, float64, or string
func parseCellValue(cell string) interface{} {
	if i, err := strconv.ParseInt(cell, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(cell, 64); err == nil {
		return f
	}
	return cell
}
