package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/ternarybob/arbor"

	"github.com/chartnote/chartnote/internal/models"
	"github.com/chartnote/chartnote/internal/services/sheets"
	"github.com/chartnote/chartnote/internal/services/usage"
)

// SheetHandler serves sheet and rationale CRUD endpoints
type SheetHandler struct {
	sheets *sheets.Service
	usage  *usage.Service
	logger arbor.ILogger
}

// NewSheetHandler creates a new SheetHandler
func NewSheetHandler(sheetService *sheets.Service, usageService *usage.Service, logger arbor.ILogger) *SheetHandler {
	return &SheetHandler{
		sheets: sheetService,
		usage:  usageService,
		logger: logger,
	}
}

// CreateSheetHandler handles POST /sheets
func (h *SheetHandler) CreateSheetHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	clientID, ok := RequireClientID(w, r)
	if !ok {
		return
	}

	var req sheets.CreateSheetRequest
	if err := DecodeJSONBody(r, &req); err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	sheet, err := h.sheets.CreateSheet(r.Context(), clientID, &req)
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	WriteJSON(w, http.StatusCreated, sheet)
}

// UploadSheetHandler handles POST /sheets/upload (multipart .xlsx/.csv)
func (h *SheetHandler) UploadSheetHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	clientID, ok := RequireClientID(w, r)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	sheet, err := h.sheets.UploadSheet(r.Context(), clientID, header.Filename, file)
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	if err := h.usage.Record(r.Context(), clientID, []models.UsageItem{{Action: "excel_upload"}}); err != nil {
		h.logger.Warn().Err(err).Str("client_id", clientID).Msg("Failed to record upload usage")
	}

	WriteJSON(w, http.StatusCreated, sheet)
}

// ListSheetsHandler handles GET /sheets?date_filter=YYYY-MM-DD
func (h *SheetHandler) ListSheetsHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	clientID, ok := RequireClientID(w, r)
	if !ok {
		return
	}

	sheetList, err := h.sheets.ListSheets(r.Context(), clientID, r.URL.Query().Get("date_filter"))
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"sheets": sheetList,
		"total":  len(sheetList),
	})
}

// GetSheetHandler handles GET /sheets/{id}
func (h *SheetHandler) GetSheetHandler(w http.ResponseWriter, r *http.Request, sheetID string) {
	clientID, ok := RequireClientID(w, r)
	if !ok {
		return
	}

	sheet, err := h.sheets.GetSheet(r.Context(), clientID, sheetID)
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	WriteJSON(w, http.StatusOK, sheet)
}

// UpdateProcessedRowsHandler handles PUT /sheets/{id}/processed-rows
func (h *SheetHandler) UpdateProcessedRowsHandler(w http.ResponseWriter, r *http.Request, sheetID string) {
	clientID, ok := RequireClientID(w, r)
	if !ok {
		return
	}

	var rows []int
	if err := DecodeJSONBody(r, &rows); err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	sheet, err := h.sheets.ReplaceProcessedRows(r.Context(), clientID, sheetID, rows)
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	WriteJSON(w, http.StatusOK, sheet)
}

// DeleteSheetHandler handles DELETE /sheets/{id}
func (h *SheetHandler) DeleteSheetHandler(w http.ResponseWriter, r *http.Request, sheetID string) {
	clientID, ok := RequireClientID(w, r)
	if !ok {
		return
	}

	if err := h.sheets.DeleteSheet(r.Context(), clientID, sheetID); err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ExportPDFHandler handles GET /sheets/{id}/export.pdf
func (h *SheetHandler) ExportPDFHandler(w http.ResponseWriter, r *http.Request, sheetID string) {
	clientID, ok := RequireClientID(w, r)
	if !ok {
		return
	}

	pdfData, err := h.sheets.ExportPDF(r.Context(), clientID, sheetID)
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", sheetID+".pdf"))
	w.WriteHeader(http.StatusOK)
	w.Write(pdfData)
}

// UpsertRationaleHandler handles POST /sheets/rationales
func (h *SheetHandler) UpsertRationaleHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	clientID, ok := RequireClientID(w, r)
	if !ok {
		return
	}

	var req sheets.UpsertRationaleRequest
	if err := DecodeJSONBody(r, &req); err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	rationale, err := h.sheets.UpsertRationale(r.Context(), clientID, &req)
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	WriteJSON(w, http.StatusCreated, rationale)
}

// GetRationaleHandler handles GET /sheets/rationales/{sheet_id}/{row_index}
func (h *SheetHandler) GetRationaleHandler(w http.ResponseWriter, r *http.Request, sheetID, rowIndexRaw string) {
	clientID, ok := RequireClientID(w, r)
	if !ok {
		return
	}

	rowIndex, err := strconv.Atoi(rowIndexRaw)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "row index must be an integer")
		return
	}

	rationale, err := h.sheets.GetRationale(r.Context(), clientID, sheetID, rowIndex)
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	WriteJSON(w, http.StatusOK, rationale)
}

// ListRationalesHandler handles GET /sheets/rationales/sheet/{sheet_id}
func (h *SheetHandler) ListRationalesHandler(w http.ResponseWriter, r *http.Request, sheetID string) {
	clientID, ok := RequireClientID(w, r)
	if !ok {
		return
	}

	rationales, err := h.sheets.ListRationales(r.Context(), clientID, sheetID)
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	WriteJSON(w, http.StatusOK, rationales)
}

// UpdateRationaleHandler handles PUT /sheets/rationales/{rationale_id}
func (h *SheetHandler) UpdateRationaleHandler(w http.ResponseWriter, r *http.Request, rationaleID string) {
	clientID, ok := RequireClientID(w, r)
	if !ok {
		return
	}

	var update models.RationaleUpdate
	if err := DecodeJSONBody(r, &update); err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	rationale, err := h.sheets.UpdateRationale(r.Context(), clientID, rationaleID, &update)
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	WriteJSON(w, http.StatusOK, rationale)
}

// DeleteRationaleHandler handles DELETE /sheets/rationales/{rationale_id}
func (h *SheetHandler) DeleteRationaleHandler(w http.ResponseWriter, r *http.Request, rationaleID string) {
	clientID, ok := RequireClientID(w, r)
	if !ok {
		return
	}

	if err := h.sheets.DeleteRationale(r.Context(), clientID, rationaleID); err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
