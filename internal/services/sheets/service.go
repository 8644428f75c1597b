package sheets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/arbor"

	"github.com/chartnote/chartnote/internal/common"
	"github.com/chartnote/chartnote/internal/interfaces"
	"github.com/chartnote/chartnote/internal/models"
)

// CreateSheetRequest is the payload for creating a sheet from pre-parsed rows
type CreateSheetRequest struct {
	FileName      string       `json:"file_name" validate:"required"`
	UploadDate    string       `json:"upload_date" validate:"required,datetime=2006-01-02"`
	RowsData      []models.Row `json:"rows_data"`
	ProcessedRows []int        `json:"processed_rows"`
}

// UpsertRationaleRequest is the payload for creating or overwriting a
// row rationale
type UpsertRationaleRequest struct {
	SheetID           string                 `json:"sheet_id" validate:"required"`
	RowIndex          int                    `json:"row_index" validate:"gte=0"`
	RationaleText     string                 `json:"rationale_text" validate:"required"`
	RationaleResult   *models.AnalysisResult `json:"rationale_result"`
	ImagePreview      string                 `json:"image_preview"`
	EditableRationale string                 `json:"editable_rationale"`
}

// Service implements sheet and rationale operations over storage,
// enforcing ownership and defaulting rules
type Service struct {
	sheets     interfaces.SheetStorage
	rationales interfaces.RationaleStorage
	validate   *validator.Validate
	logger     arbor.ILogger
}

// NewService creates a new sheet service
func NewService(sheets interfaces.SheetStorage, rationales interfaces.RationaleStorage, logger arbor.ILogger) *Service {
	return &Service{
		sheets:     sheets,
		rationales: rationales,
		validate:   validator.New(),
		logger:     logger,
	}
}

// CreateSheet stores a new sheet for the client
func (s *Service) CreateSheet(ctx context.Context, clientID string, req *CreateSheetRequest) (*models.Sheet, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, common.NewValidationError("invalid sheet payload: %v", err)
	}

	for _, idx := range req.ProcessedRows {
		if idx < 0 || idx >= len(req.RowsData) {
			return nil, common.NewValidationError("processed row index %d out of range for sheet with %d rows", idx, len(req.RowsData))
		}
	}

	sheet := &models.Sheet{
		ClientID:      clientID,
		FileName:      req.FileName,
		UploadDate:    req.UploadDate,
		RowsData:      req.RowsData,
		ProcessedRows: req.ProcessedRows,
	}

	if err := s.sheets.CreateSheet(ctx, sheet); err != nil {
		return nil, err
	}

	return sheet, nil
}

// UploadSheet parses an uploaded spreadsheet file and stores it as a new
// sheet dated today
func (s *Service) UploadSheet(ctx context.Context, clientID, fileName string, file io.Reader) (*models.Sheet, error) {
	rows, err := ParseSheetFile(fileName, file)
	if err != nil {
		return nil, err
	}

	sheet := &models.Sheet{
		ClientID:   clientID,
		FileName:   fileName,
		UploadDate: time.Now().Format("2006-01-02"),
		RowsData:   rows,
	}

	if err := s.sheets.CreateSheet(ctx, sheet); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("sheet_id", sheet.ID).
		Str("file_name", fileName).
		Int("rows", len(rows)).
		Msg("Sheet uploaded")

	return sheet, nil
}

// ListSheets returns the client's sheets newest first
func (s *Service) ListSheets(ctx context.Context, clientID, dateFilter string) ([]*models.Sheet, error) {
	return s.sheets.ListSheets(ctx, clientID, dateFilter)
}

// GetSheet returns one of the client's sheets
func (s *Service) GetSheet(ctx context.Context, clientID, sheetID string) (*models.Sheet, error) {
	return s.sheets.GetSheet(ctx, clientID, sheetID)
}

// ReplaceProcessedRows replaces the processed-rows marker set
func (s *Service) ReplaceProcessedRows(ctx context.Context, clientID, sheetID string, rows []int) (*models.Sheet, error) {
	return s.sheets.ReplaceProcessedRows(ctx, clientID, sheetID, rows)
}

// DeleteSheet removes a sheet and all of its rationales
func (s *Service) DeleteSheet(ctx context.Context, clientID, sheetID string) error {
	return s.sheets.DeleteSheet(ctx, clientID, sheetID)
}

// UpsertRationale creates or overwrites the rationale for one row. The
// editable text defaults to the generated text when not supplied.
func (s *Service) UpsertRationale(ctx context.Context, clientID string, req *UpsertRationaleRequest) (*models.RowRationale, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, common.NewValidationError("invalid rationale payload: %v", err)
	}

	// Ownership gate: a foreign sheet is indistinguishable from a missing one
	if _, err := s.sheets.GetSheet(ctx, clientID, req.SheetID); err != nil {
		return nil, err
	}

	editable := req.EditableRationale
	if editable == "" {
		editable = req.RationaleText
	}

	rationale := &models.RowRationale{
		SheetID:           req.SheetID,
		RowIndex:          req.RowIndex,
		RationaleText:     req.RationaleText,
		RationaleResult:   req.RationaleResult,
		ImagePreview:      req.ImagePreview,
		EditableRationale: editable,
	}

	return s.rationales.Upsert(ctx, rationale)
}

// GetRationale returns the rationale for one row of the client's sheet
func (s *Service) GetRationale(ctx context.Context, clientID, sheetID string, rowIndex int) (*models.RowRationale, error) {
	if _, err := s.sheets.GetSheet(ctx, clientID, sheetID); err != nil {
		return nil, err
	}
	return s.rationales.GetByRow(ctx, sheetID, rowIndex)
}

// ListRationales returns all rationales of the client's sheet ordered by row
func (s *Service) ListRationales(ctx context.Context, clientID, sheetID string) ([]*models.RowRationale, error) {
	if _, err := s.sheets.GetSheet(ctx, clientID, sheetID); err != nil {
		return nil, err
	}
	return s.rationales.ListForSheet(ctx, sheetID)
}

// UpdateRationale applies a partial update to a rationale the client owns
// through its sheet. A rationale that exists under another client's sheet
// yields AccessDenied, not NotFound.
func (s *Service) UpdateRationale(ctx context.Context, clientID, rationaleID string, update *models.RationaleUpdate) (*models.RowRationale, error) {
	rationale, err := s.rationales.GetByID(ctx, rationaleID)
	if err != nil {
		return nil, err
	}

	if err := s.checkRationaleAccess(ctx, clientID, rationale); err != nil {
		return nil, err
	}

	return s.rationales.Update(ctx, rationaleID, update)
}

// DeleteRationale removes a rationale and its processed-row marker
func (s *Service) DeleteRationale(ctx context.Context, clientID, rationaleID string) error {
	rationale, err := s.rationales.GetByID(ctx, rationaleID)
	if err != nil {
		return err
	}

	if err := s.checkRationaleAccess(ctx, clientID, rationale); err != nil {
		return err
	}

	return s.rationales.Delete(ctx, rationaleID)
}

// ExportPDF renders the client's sheet and its rationales as a PDF report
func (s *Service) ExportPDF(ctx context.Context, clientID, sheetID string) ([]byte, error) {
	sheet, err := s.sheets.GetSheet(ctx, clientID, sheetID)
	if err != nil {
		return nil, err
	}

	rationales, err := s.rationales.ListForSheet(ctx, sheetID)
	if err != nil {
		return nil, err
	}

	return RenderRationaleReport(sheet, rationales)
}

func (s *Service) checkRationaleAccess(ctx context.Context, clientID string, rationale *models.RowRationale) error {
	_, err := s.sheets.GetSheet(ctx, clientID, rationale.SheetID)
	if err != nil {
		var nfe *common.NotFoundError
		if errors.As(err, &nfe) {
			return common.NewAccessDeniedError("access denied")
		}
		return fmt.Errorf("failed to verify sheet ownership: %w", err)
	}
	return nil
}
